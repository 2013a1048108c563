package transportclient

import "context"

// TokenProvider is the external capability C3 uses to obtain a bearer
// token before each request. Authentication/OAuth token acquisition
// itself is explicitly out of scope for this module (spec §1); only
// this contract is.
type TokenProvider interface {
	Token(ctx context.Context) (string, error)
}

// StaticToken is a TokenProvider that always returns the same token,
// useful for tests and for deployments fronted by a gateway that
// injects auth itself.
type StaticToken string

func (s StaticToken) Token(context.Context) (string, error) {
	return string(s), nil
}
