package notification

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
)

const (
	TypeInfo    = "info"
	TypeWarning = "warning"
	TypeSuccess = "success"
	TypeDefault = "default"
)

const footer = "El Mundo Fitness - Tu centro de entrenamiento"

type layout struct {
	Subject string
	Heading string
	Color   template.CSS
	Closing string
}

var layouts = map[string]layout{
	TypeWarning: {
		Subject: "⚠️ Alerta - El Mundo Fitness",
		Heading: "⚠️ Alerta Importante",
		Color:   "#ff9800",
		Closing: "Si tienes alguna pregunta, no dudes en contactarnos.",
	},
	TypeInfo: {
		Subject: "📢 Notificación - El Mundo Fitness",
		Heading: "📢 Notificación",
		Color:   "#2196F3",
	},
	TypeSuccess: {
		Subject: "✅ Confirmación - El Mundo Fitness",
		Heading: "✅ Confirmación",
		Color:   "#4CAF50",
		Closing: "¡Gracias por confiar en nosotros!",
	},
	TypeDefault: {
		Subject: "El Mundo Fitness",
		Heading: "El Mundo Fitness",
		Color:   "#333",
	},
}

var emailTemplate = template.Must(template.New("email").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="UTF-8">
<style>
body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
.container { max-width: 600px; margin: 0 auto; padding: 20px; }
.header { background-color: {{.Color}}; color: white; padding: 20px; text-align: center; }
.content { background-color: #f9f9f9; padding: 20px; }
.footer { text-align: center; padding: 20px; font-size: 12px; color: #666; }
</style>
</head>
<body>
<div class="container">
<div class="header"><h1>{{.Heading}}</h1></div>
<div class="content">
<p>Hola <strong>{{.Name}}</strong>,</p>
<p>{{.Message}}</p>
{{- if .Closing}}
<p>{{.Closing}}</p>
{{- end}}
</div>
<div class="footer"><p>{{.Footer}}</p></div>
</div>
</body>
</html>
`))

type Rendered struct {
	Type    string
	Subject string
	HTML    string
	Text    string
}

// normalizeType maps an empty type to info and anything unrecognized to default.
func normalizeType(t string) string {
	t = strings.ToLower(strings.TrimSpace(t))
	if t == "" {
		return TypeInfo
	}
	if _, ok := layouts[t]; !ok {
		return TypeDefault
	}
	return t
}

func Render(notificationType, name, message string) (Rendered, error) {
	kind := normalizeType(notificationType)
	l := layouts[kind]

	var buf bytes.Buffer
	err := emailTemplate.Execute(&buf, struct {
		Heading string
		Color   template.CSS
		Closing string
		Name    string
		Message string
		Footer  string
	}{l.Heading, l.Color, l.Closing, name, message, footer})
	if err != nil {
		return Rendered{}, fmt.Errorf("render %s email: %w", kind, err)
	}

	text := fmt.Sprintf("Hola %s,\n\n%s\n", name, message)
	if l.Closing != "" {
		text += "\n" + l.Closing + "\n"
	}
	text += "\n" + footer + "\n"

	return Rendered{Type: kind, Subject: l.Subject, HTML: buf.String(), Text: text}, nil
}
