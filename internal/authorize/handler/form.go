package handler

import (
	"html/template"
	"io"
)

// HiddenField is echoed back through the login form so a resubmission can
// reconstruct the original authorize request.
type HiddenField struct {
	Name  string
	Value string
}

// LoginForm renders the interactive login page. Markup stays minimal; the
// flow only needs the credential inputs and the hidden request state.
type LoginForm struct {
	tmpl *template.Template
}

// NewLoginForm parses the built-in login template.
func NewLoginForm() *LoginForm {
	return &LoginForm{tmpl: template.Must(template.New("login").Parse(loginHTML))}
}

// Render writes the login page. msg is informational (display-only, never
// used for control decisions); errMsg is reserved for render-level problems.
func (f *LoginForm) Render(w io.Writer, msg, errMsg string, fields []HiddenField) error {
	return f.tmpl.Execute(w, struct {
		Title        string
		Msg          string
		Error        string
		Action       string
		HiddenFields []HiddenField
	}{
		Title:        "Login",
		Msg:          msg,
		Error:        errMsg,
		Action:       "/authorize",
		HiddenFields: fields,
	})
}

const loginHTML = `<!DOCTYPE html>
<html>
<head><title>{{.Title}}</title></head>
<body>
  <h1>{{.Title}}</h1>
  {{if .Msg}}<p class="msg">{{.Msg}}</p>{{end}}
  {{if .Error}}<p class="error">{{.Error}}</p>{{end}}
  <form method="post" action="{{.Action}}">
    {{range .HiddenFields}}<input type="hidden" name="{{.Name}}" value="{{.Value}}">
    {{end}}<label>Username <input type="text" name="username" autocomplete="username"></label>
    <label>Password <input type="password" name="password" autocomplete="current-password"></label>
    <label>TOTP code <input type="text" name="totp" autocomplete="one-time-code"></label>
    <button type="submit">Log in</button>
  </form>
</body>
</html>
`
