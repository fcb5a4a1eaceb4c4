package templates

import (
	"bytes"
	"errors"
	"html/template"

	_ "embed"

	types "github.com/tscrond/signin/internal/mailservice/types"
)

//go:embed signin.html
var signInTemplate string

var signIn = template.Must(template.New("signin").Parse(signInTemplate))

func RenderMailTemplate(templateType string, emailData types.MailData) (string, error) {
	switch templateType {
	case "signin":
		var buf bytes.Buffer
		if err := signIn.Execute(&buf, emailData); err != nil {
			return "", err
		}
		return buf.String(), nil

	default:
		return "", errors.New("no available template")
	}
}
