package authorize

import (
	"net/url"
	"strings"
)

// param is one key/value pair of a redirect payload. Encoding preserves
// insertion order; url.Values would sort keys and break the documented
// parameter layout clients already depend on.
type param struct {
	key   string
	value string
}

func encodeParams(params []param) string {
	var b strings.Builder
	for i, p := range params {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(p.key))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(p.value))
	}
	return b.String()
}

// LoginRedirect builds the /authorize re-prompt location carrying enough
// state for a fresh GET to reconstruct the original request, plus the
// user-visible message.
func LoginRedirect(req Request, msg string) string {
	return "/authorize?" + encodeParams([]param{
		{"redirect_uri", req.RedirectURI},
		{"client_id", req.ClientID},
		{"state", req.State},
		{"response_type", req.ResponseType.String()},
		{"msg", msg},
	})
}
