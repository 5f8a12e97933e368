package pipeline

import "net/http"

// The decide functions hold the once-per-generation transition rules. They
// only read their arguments, so calling one twice with the same headers
// yields the same state.

// decideChunked activates framing unless the response is already framed or
// delimited: a declared Content-Length, an existing chunked coding, a
// Connection: close, or a request older than HTTP/1.1.
func decideChunked(req *http.Request, h http.Header) state {
	switch {
	case hasHeader(h, "Content-Length"):
		return stateNotWorking
	case hasTokenFold(h, "Transfer-Encoding", "chunked"):
		return stateNotWorking
	case hasTokenFold(h, "Connection", "close"):
		return stateNotWorking
	case req != nil && !req.ProtoAtLeast(1, 1):
		return stateNotWorking
	}
	return stateWorking
}

// decideGzip picks the header that will announce the gzip coding. A
// transfer-coding wins over a content-coding because intermediaries can
// remove it without changing the representation.
func decideGzip(reqHeader http.Header) (state, string) {
	switch {
	case hasToken(reqHeader, "TE", "gzip"):
		return stateWorking, "Transfer-Encoding"
	case hasToken(reqHeader, "Accept-Encoding", "gzip"):
		return stateWorking, "Content-Encoding"
	}
	return stateNotWorking, ""
}

// decideBuffer refuses to buffer once an inner layer has committed to a
// transfer-coding.
func decideBuffer(h http.Header) state {
	if hasHeader(h, "Transfer-Encoding") {
		return stateNotWorking
	}
	return stateWorking
}
