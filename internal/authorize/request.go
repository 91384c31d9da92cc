// Package authorize implements the OAuth 2.0 authorize endpoint's state
// machine: request validation, client trust resolution, the
// authenticate-or-reprompt decision, and grant-issuance redirect encoding.
package authorize

import (
	"net/url"

	dErrors "signet/pkg/domain-errors"
)

// ResponseType is the closed set of grant encodings the endpoint supports.
// It is resolved once during validation so downstream branches switch over a
// two-variant type instead of re-inspecting strings.
type ResponseType int

const (
	// ResponseTypeCode is the authorization-code grant: a single-use code
	// delivered in the redirect query string.
	ResponseTypeCode ResponseType = iota
	// ResponseTypeToken is the implicit grant: an access token delivered in
	// the redirect fragment.
	ResponseTypeToken
)

// String returns the wire form of the response type.
func (t ResponseType) String() string {
	if t == ResponseTypeToken {
		return "token"
	}
	return "code"
}

// Request is a validated authorization request, reconstructed from the query
// string (GET) or form body (POST). State is opaque and echoed verbatim.
type Request struct {
	ResponseType ResponseType
	ClientID     string
	RedirectURI  string
	State        string
}

// Credentials are the interactive-login fields of a POST.
type Credentials struct {
	Username string
	Password string
	TOTP     string
}

// ParseRequest performs pure syntactic validation of the authorize
// parameters; no store access happens here. Failures carry CodeBadRequest
// and abort the request before any redirect can be constructed.
func ParseRequest(values url.Values) (Request, error) {
	var req Request

	switch values.Get("response_type") {
	case "code":
		req.ResponseType = ResponseTypeCode
	case "token":
		req.ResponseType = ResponseTypeToken
	default:
		return Request{}, dErrors.New(dErrors.CodeBadRequest,
			`The "response_type" parameter must be provided, and must be "token" or "code"`)
	}

	req.ClientID = values.Get("client_id")
	if req.ClientID == "" {
		return Request{}, dErrors.New(dErrors.CodeBadRequest,
			`The "client_id" parameter must be provided`)
	}

	req.RedirectURI = values.Get("redirect_uri")
	if req.RedirectURI == "" {
		return Request{}, dErrors.New(dErrors.CodeBadRequest,
			`The "redirect_uri" parameter must be provided`)
	}

	req.State = values.Get("state")
	return req, nil
}

// ParseCredentials extracts the login fields from a POST body. Validation of
// the values themselves is the verifier's job.
func ParseCredentials(values url.Values) Credentials {
	return Credentials{
		Username: values.Get("username"),
		Password: values.Get("password"),
		TOTP:     values.Get("totp"),
	}
}
