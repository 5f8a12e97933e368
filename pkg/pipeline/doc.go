// Package pipeline implements the response-body transformers: chunked
// transfer-coding framing, gzip compression, full in-memory buffering with
// restart support, and the pre-commit settle chain.
//
// Every transformer is a transport.Middleware. When its stage runs it
// installs a DelegatingBody in front of the current response body and
// restores the displaced body when the stage returns, on every exit path.
// The DelegatingBody forwards each write, flush and reset to the
// transformer's Handler, which decides lazily, once per generation, whether
// to transform the bytes or pass them through to the displaced body.
//
// Transformers are installed in registration order, outermost first, so the
// transformer registered last sees application bytes first:
//
//	transport.Chain(
//		pipeline.SuppressNegotiation(),
//		pipeline.Chunked(),
//		pipeline.Buffer(),
//		pipeline.Gzip(),
//	)(app)
//
// Here the application writes into the gzip body, gzip writes into the
// buffer body, and the buffer releases its content into the chunked body,
// which frames it onto the host sink. Because the buffer declares a
// Content-Length before releasing, the chunked transformer never frames a
// fully buffered response.
//
// A generation ends when the body is reset to zero (Response.Restart); each
// generation takes its own decision. Decisions read only response headers
// and request negotiation headers, and are pure functions of them.
package pipeline
