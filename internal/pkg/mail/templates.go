package mail

import (
	"bytes"
	"html/template"
)

var passwordResetTmpl = template.Must(template.New("reset").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; color: #222;">
  <h2>Restablecer contraseña</h2>
  <p>Hola{{if .Name}} {{.Name}}{{end}},</p>
  <p>Recibimos una solicitud para restablecer tu contraseña de RecaudoPro.</p>
  <p><a href="{{.Link}}" style="background:#0f766e;color:#fff;padding:10px 18px;text-decoration:none;border-radius:4px;">Crear nueva contraseña</a></p>
  <p>El enlace vence en {{.ValidFor}}. Si no solicitaste el cambio, ignora este mensaje.</p>
</body>
</html>`))

// PasswordResetData fills the password reset email.
type PasswordResetData struct {
	Name     string
	Link     string
	ValidFor string
}

// PasswordResetSubject is the subject line of the reset email.
const PasswordResetSubject = "RecaudoPro: restablece tu contraseña"

// RenderPasswordReset renders the reset email body.
func RenderPasswordReset(data PasswordResetData) (string, error) {
	var buf bytes.Buffer
	if err := passwordResetTmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
