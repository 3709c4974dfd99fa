package client

import "net/http"

// BearerTransport attaches the stored session token to every request. The
// store is read before the request is sent; without a token the request goes
// out unauthenticated.
type BearerTransport struct {
	Base    http.RoundTripper
	Session SessionStore
}

func (t *BearerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}
	if token, ok := t.Session.Get(req.Context()); ok {
		req = req.Clone(req.Context())
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return base.RoundTrip(req)
}
