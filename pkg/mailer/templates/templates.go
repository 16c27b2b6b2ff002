package templates

import (
	"bytes"
	"embed"
	"fmt"
	htmpl "html/template"
	"io"
	"reflect"
	"strings"
	texttpl "text/template"
	"time"
)

//go:embed *.tmpl
var FS embed.FS

// EmailData defines standard fields for email templates.
type EmailData struct {
	Name           string
	RecipientEmail string

	AppName     string
	CompanyName string
	SupportURL  string

	VerifyURL string

	ExpiresAt     time.Time
	ExpiresAtText string
	ExpiresIn     string
}

// defaultFn supports pipe usage: {{ .Value | default "Fallback" }}
func defaultFn(fallback any, value any) any {
	switch x := value.(type) {
	case string:
		if strings.TrimSpace(x) == "" {
			return fallback
		}
		return x
	case nil:
		return fallback
	default:
		rv := reflect.ValueOf(value)
		if !rv.IsValid() {
			return fallback
		}
		zero := reflect.Zero(rv.Type()).Interface()
		if reflect.DeepEqual(value, zero) {
			return fallback
		}
		return value
	}
}

func baseFuncs() map[string]any {
	return map[string]any{
		"now":        func() time.Time { return time.Now().UTC() },
		"formatTime": func(t time.Time, layout string) string { return t.Format(layout) },
		"default":    defaultFn,
	}
}

const VerifyEmail = "verify_email"

// Parsed once at init; a broken embedded template fails at startup.
var (
	htmlSet = htmpl.Must(htmpl.New("").Funcs(htmpl.FuncMap(baseFuncs())).ParseFS(FS, "*.html.tmpl"))
	textSet = texttpl.Must(texttpl.New("").Funcs(texttpl.FuncMap(baseFuncs())).ParseFS(FS, "*.subject.tmpl", "*.text.tmpl"))
)

type executor interface {
	ExecuteTemplate(w io.Writer, name string, data any) error
}

func execute(set executor, filename string, data any) (string, error) {
	var buf bytes.Buffer
	if err := set.ExecuteTemplate(&buf, filename, data); err != nil {
		return "", fmt.Errorf("render %q: %w", filename, err)
	}
	return buf.String(), nil
}

// Render renders <name>.subject.tmpl, <name>.text.tmpl and <name>.html.tmpl.
func Render(name string, data any) (subject, text, html string, err error) {
	if subject, err = execute(textSet, name+".subject.tmpl", data); err != nil {
		return "", "", "", err
	}
	if text, err = execute(textSet, name+".text.tmpl", data); err != nil {
		return "", "", "", err
	}
	if html, err = execute(htmlSet, name+".html.tmpl", data); err != nil {
		return "", "", "", err
	}
	return strings.TrimSpace(subject), text, html, nil
}
