package pipeline

import (
	"net/http"
	"net/textproto"
	"strings"
)

// headerTokens splits every value of key into its comma-separated tokens,
// trimming surrounding whitespace and dropping empty ones.
func headerTokens(h http.Header, key string) []string {
	var tokens []string
	for _, v := range h.Values(key) {
		for _, tok := range strings.Split(v, ",") {
			if tok = strings.TrimSpace(tok); tok != "" {
				tokens = append(tokens, tok)
			}
		}
	}
	return tokens
}

// hasToken reports whether key lists token exactly, case included.
func hasToken(h http.Header, key, token string) bool {
	for _, tok := range headerTokens(h, key) {
		if tok == token {
			return true
		}
	}
	return false
}

// hasTokenFold is hasToken with ASCII case folding, for headers whose
// tokens are case-insensitive such as Connection.
func hasTokenFold(h http.Header, key, token string) bool {
	for _, tok := range headerTokens(h, key) {
		if strings.EqualFold(tok, token) {
			return true
		}
	}
	return false
}

// hasHeader reports whether key is present at all, even with an empty value.
func hasHeader(h http.Header, key string) bool {
	_, ok := h[textproto.CanonicalMIMEHeaderKey(key)]
	return ok
}

// appendToken adds token to the comma-separated list held by key.
func appendToken(h http.Header, key, token string) {
	tokens := append(headerTokens(h, key), token)
	h.Set(key, strings.Join(tokens, ", "))
}
