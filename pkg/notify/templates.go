package notify

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/moses-ayandau/image-sharing-microservice-sub000/pkg/errors"
)

// Kind of lifecycle email.
type Kind string

const (
	None            Kind = ""
	Started         Kind = "started"
	Complete        Kind = "complete"
	FailedRetrying  Kind = "failed_retrying"
	FailedPermanent Kind = "failed_permanent"
)

// Data is what templates get to work with.
type Data struct {
	Name     string
	Title    string
	Attempt  int
	Location string
}

type email struct {
	subject string
	body    *template.Template
}

const layout = `<html><body style="font-family: sans-serif">
<p>Hi {{if .Name}}{{.Name}}{{else}}there{{end}},</p>
{{template "content" .}}
</body></html>`

var emails = map[Kind]*email{
	Started: mustEmail("Your image is being processed", `
<p>We've received your image{{if .Title}} <b>{{.Title}}</b>{{end}} and started processing it.
We'll let you know when it's ready.</p>`),
	Complete: mustEmail("Your image is ready", `
<p>Your image{{if .Title}} <b>{{.Title}}</b>{{end}} has been processed and is now available.</p>`),
	FailedRetrying: mustEmail("We hit a problem processing your image", `
<p>Processing your image{{if .Title}} <b>{{.Title}}</b>{{end}} failed. We'll retry automatically,
there's nothing you need to do.</p>`),
	FailedPermanent: mustEmail("We couldn't process your image", `
<p>Sorry, we were unable to process your image{{if .Title}} <b>{{.Title}}</b>{{end}} after {{.Attempt}} attempts.
Our team has been notified and may retry it later.</p>`),
}

func mustEmail(subject, content string) *email {
	t := template.Must(template.New("layout").Parse(layout))
	template.Must(t.New("content").Parse(content))
	return &email{subject: subject, body: t}
}

// Render returns the subject & html body for the given kind of email.
func Render(kind Kind, d *Data) (string, string, error) {
	e, ok := emails[kind]
	if !ok {
		return "", "", fmt.Errorf("%w email kind %q", errors.ErrNotSupported, kind)
	}
	var buf bytes.Buffer
	err := e.body.Execute(&buf, d)
	if err != nil {
		return "", "", err
	}
	return e.subject, buf.String(), nil
}
