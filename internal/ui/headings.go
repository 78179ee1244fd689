package ui

import (
	"bytes"
	"html/template"

	"github.com/desertthunder/oneshot/internal/models"
)

const (
	titleSuccess = "You are now logged in."
	titleFailed  = "Login failed."
	closeWindow  = "Please close the window."
)

// Headings is the title and subheader pair shown for an outcome.
type Headings struct {
	Title     string
	Subheader string
}

var (
	SuccessHeadings       = Headings{Title: titleSuccess, Subheader: closeWindow}
	InvalidHeadings       = Headings{Title: titleFailed, Subheader: "Received invalid OAuth2 response."}
	InternalErrorHeadings = Headings{Title: titleFailed, Subheader: "Internal error receiving response."}
	CompletedHeadings     = Headings{Title: "Login already completed.", Subheader: closeWindow}
)

// HeadingsFor maps an outcome to its headings.
//
// Provider errors use the error code as the subheader, followed by ": description" and
// " (uri)" when those are present.
func HeadingsFor(o models.Outcome) Headings {
	switch o.Kind {
	case models.OutcomeSuccess:
		return SuccessHeadings
	case models.OutcomeRemoteError:
		if o.Remote == nil {
			return InvalidHeadings
		}
		return Headings{Title: titleFailed, Subheader: o.Remote.Error()}
	case models.OutcomeMalformed:
		return InvalidHeadings
	default:
		return InternalErrorHeadings
	}
}

var page = template.Must(template.New("page").Parse(`<html>
    <body>
        <div style="
            width: 100%;
            top: 50%;
            margin-top: 100px;
            text-align: center;
            font-family: sans-serif;
        ">
            <h1>{{.Title}}</h1>
            <h2>{{.Subheader}}</h2>
        </div>
    </body>
</html>
`))

// HTML renders the callback page. Provider-supplied text is escaped.
func (h Headings) HTML() []byte {
	var buf bytes.Buffer
	if err := page.Execute(&buf, h); err != nil {
		return []byte(template.HTMLEscapeString(h.Title + " " + h.Subheader))
	}
	return buf.Bytes()
}

// Failed reports whether the headings describe a failed login.
func (h Headings) Failed() bool {
	return h.Title == titleFailed
}
