// Package client holds OAuth 2.0 client registrations and the directory
// used to resolve them during authorization.
package client

import (
	"time"

	dErrors "signet/pkg/domain-errors"
)

// Client is a registered OAuth 2.0 client.
//
// Invariants:
//   - ClientID is non-empty (the public client_id used in authorize requests)
//   - RedirectURIs is non-empty; entries are matched exactly, case-sensitive
//   - ResponseTypes records which grant encodings the registration permits
type Client struct {
	ClientID      string
	Name          string
	RedirectURIs  []string
	ResponseTypes []string
	CreatedAt     time.Time
}

// New validates registration invariants and builds a Client.
func New(clientID, name string, redirectURIs, responseTypes []string, now time.Time) (*Client, error) {
	if clientID == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "client_id cannot be empty")
	}
	if len(redirectURIs) == 0 {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "redirect_uris cannot be empty")
	}
	return &Client{
		ClientID:      clientID,
		Name:          name,
		RedirectURIs:  redirectURIs,
		ResponseTypes: responseTypes,
		CreatedAt:     now,
	}, nil
}

// IsRedirectTrusted reports whether uri is an exact, case-sensitive member
// of the registered redirect-URI set. This is the open-redirect gate: no
// redirect may be constructed for a URI that fails this check.
func (c *Client) IsRedirectTrusted(uri string) bool {
	for _, registered := range c.RedirectURIs {
		if registered == uri {
			return true
		}
	}
	return false
}
