package authorize

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "signet/pkg/domain-errors"
)

func validValues() url.Values {
	return url.Values{
		"response_type": {"code"},
		"client_id":     {"abc"},
		"redirect_uri":  {"https://app.example/cb"},
		"state":         {"xyz"},
	}
}

func TestParseRequest(t *testing.T) {
	t.Run("accepts a complete code request", func(t *testing.T) {
		req, err := ParseRequest(validValues())
		require.NoError(t, err)
		assert.Equal(t, ResponseTypeCode, req.ResponseType)
		assert.Equal(t, "abc", req.ClientID)
		assert.Equal(t, "https://app.example/cb", req.RedirectURI)
		assert.Equal(t, "xyz", req.State)
	})

	t.Run("accepts a token request", func(t *testing.T) {
		values := validValues()
		values.Set("response_type", "token")
		req, err := ParseRequest(values)
		require.NoError(t, err)
		assert.Equal(t, ResponseTypeToken, req.ResponseType)
	})

	t.Run("state is optional and opaque", func(t *testing.T) {
		values := validValues()
		values.Del("state")
		req, err := ParseRequest(values)
		require.NoError(t, err)
		assert.Empty(t, req.State)
	})

	t.Run("rejects missing or unknown response_type", func(t *testing.T) {
		for _, rt := range []string{"", "id_token", "Code", "CODE"} {
			values := validValues()
			values.Set("response_type", rt)
			_, err := ParseRequest(values)
			require.Error(t, err, "response_type=%q", rt)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeBadRequest))
		}
	})

	t.Run("rejects missing client_id", func(t *testing.T) {
		values := validValues()
		values.Del("client_id")
		_, err := ParseRequest(values)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeBadRequest))
	})

	t.Run("rejects missing redirect_uri", func(t *testing.T) {
		values := validValues()
		values.Del("redirect_uri")
		_, err := ParseRequest(values)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeBadRequest))
	})
}

func TestLoginRedirect(t *testing.T) {
	req := Request{
		ResponseType: ResponseTypeCode,
		ClientID:     "abc",
		RedirectURI:  "https://app.example/cb",
		State:        "xyz",
	}

	location := LoginRedirect(req, "Incorrect username or password")

	parsed, err := url.Parse(location)
	require.NoError(t, err)
	assert.Equal(t, "/authorize", parsed.Path)

	query := parsed.Query()
	assert.Equal(t, "https://app.example/cb", query.Get("redirect_uri"))
	assert.Equal(t, "abc", query.Get("client_id"))
	assert.Equal(t, "xyz", query.Get("state"))
	assert.Equal(t, "code", query.Get("response_type"))
	assert.Equal(t, "Incorrect username or password", query.Get("msg"))
}
