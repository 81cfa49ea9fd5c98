package mailer

import (
	"bytes"
	"fmt"
	"strings"
	"sync"
	"text/template"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// Bodies are written in markdown. The text part is the rendered template
// itself; the HTML part is the same template passed through goldmark, which
// drops raw HTML coming from event titles.

const dateLayout = "Monday, 02 January 2006 15:04 MST"

const notApplicable = "N/A"

const confirmationTemplate = `Hi {{esc .Name}},

You are registered for **{{esc .Title}}**.

- Date: {{.Date}}
{{- if .Venue}}
- Venue: {{esc .Venue}}
{{- end}}
{{- if .MeetingLink}}
- Meeting link: {{.MeetingLink}}
{{- end}}

Show this ticket at check-in.
{{if .QRCode}}
![Your ticket]({{.QRCode}})
{{end}}
See you there!
`

const reminderTemplate = `Hi {{esc .Name}},

This is a reminder that **{{esc .Title}}** takes place tomorrow.

- Date: {{.Date}}
- Meeting link: {{.MeetingLink}}

See you there!
`

var (
	markdownOnce sync.Once
	markdown     goldmark.Markdown
)

func markdownRenderer() goldmark.Markdown {
	markdownOnce.Do(func() {
		markdown = goldmark.New(goldmark.WithExtensions(extension.Linkify))
	})
	return markdown
}

type Confirmation struct {
	To          string
	Name        string
	Title       string
	Date        time.Time
	Venue       string
	MeetingLink string
	// QRCode is a data:image/png URI embedded in the HTML part only.
	QRCode string
}

type Reminder struct {
	To          string
	Name        string
	Title       string
	Date        time.Time
	MeetingLink string
}

func RegistrationConfirmation(c Confirmation) (Message, error) {
	data := map[string]string{
		"Name":        c.Name,
		"Title":       c.Title,
		"Date":        c.Date.Format(dateLayout),
		"Venue":       c.Venue,
		"MeetingLink": c.MeetingLink,
		"QRCode":      c.QRCode,
	}
	text, html, err := render("confirmation", confirmationTemplate, data)
	if err != nil {
		return Message{}, err
	}
	return Message{
		To:      c.To,
		Subject: fmt.Sprintf("Registration confirmed: %s", c.Title),
		Text:    text,
		HTML:    html,
		Kind:    KindConfirmation,
	}, nil
}

func ReminderMessage(r Reminder) (Message, error) {
	link := r.MeetingLink
	if link == "" {
		link = notApplicable
	}
	data := map[string]string{
		"Name":        r.Name,
		"Title":       r.Title,
		"Date":        r.Date.Format(dateLayout),
		"MeetingLink": link,
	}
	text, html, err := render("reminder", reminderTemplate, data)
	if err != nil {
		return Message{}, err
	}
	return Message{
		To:      r.To,
		Subject: fmt.Sprintf("Reminder: %s is tomorrow", r.Title),
		Text:    text,
		HTML:    html,
		Kind:    KindReminder,
	}, nil
}

func render(name, body string, data map[string]string) (string, string, error) {
	textData := make(map[string]string, len(data))
	for k, v := range data {
		textData[k] = v
	}
	delete(textData, "QRCode")

	text, err := execute(name, body, textData, func(s string) string { return s })
	if err != nil {
		return "", "", err
	}
	source, err := execute(name, body, data, escapeMarkdown)
	if err != nil {
		return "", "", err
	}

	var html bytes.Buffer
	if err := markdownRenderer().Convert([]byte(source), &html); err != nil {
		return "", "", fmt.Errorf("rendering %s html: %w", name, err)
	}
	return text, html.String(), nil
}

func execute(name, body string, data map[string]string, esc func(string) string) (string, error) {
	tmpl, err := template.New(name).Funcs(template.FuncMap{"esc": esc}).Parse(body)
	if err != nil {
		return "", fmt.Errorf("parsing %s template: %w", name, err)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("executing %s template: %w", name, err)
	}
	return buf.String(), nil
}

var markdownEscaper = strings.NewReplacer(
	`\`, `\\`, "`", "\\`", `*`, `\*`, `_`, `\_`,
	`[`, `\[`, `]`, `\]`, `<`, `\<`, `>`, `\>`, `#`, `\#`, `!`, `\!`,
)

func escapeMarkdown(s string) string {
	return markdownEscaper.Replace(s)
}
