package email

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"curator/internal/core"
	"curator/internal/extract"
)

// Message is a fully rendered digest email.
type Message struct {
	Subject  string
	Markdown string
	HTML     string
}

// digestTemplate is the HTML body. Styling follows common email-client
// constraints: inline-safe CSS in a style block, max-width container, no
// external assets.
const digestTemplate = `<!DOCTYPE html>
<html>
<head>
	<meta charset="utf-8">
	<meta name="viewport" content="width=device-width, initial-scale=1.0">
	<style>
		body {
			font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, 'Helvetica Neue', Arial, sans-serif;
			line-height: 1.6;
			color: #333;
			max-width: 600px;
			margin: 0 auto;
			padding: 20px;
			background-color: #ffffff;
		}
		h2 {
			font-size: 18px;
			font-weight: 600;
			color: #1a1a1a;
			margin-top: 24px;
			margin-bottom: 8px;
			line-height: 1.4;
		}
		p {
			margin: 8px 0;
			color: #4a4a4a;
		}
		a {
			color: #0066cc;
			text-decoration: none;
			font-weight: 500;
		}
		a:hover {
			text-decoration: underline;
		}
		hr {
			border: none;
			border-top: 1px solid #e5e5e5;
			margin: 20px 0;
		}
		.greeting {
			font-size: 16px;
			font-weight: 500;
			color: #1a1a1a;
			margin-bottom: 12px;
		}
		.introduction {
			color: #4a4a4a;
			margin-bottom: 20px;
		}
		.article-link {
			display: inline-block;
			margin-top: 8px;
			color: #0066cc;
			font-size: 14px;
		}
	</style>
</head>
<body>
	<p class="greeting">{{.Greeting}}</p>
	<p class="introduction">{{.Introduction}}</p>
	<hr>
	{{range .Articles}}
	<h2>{{.Title}}</h2>
	<p>{{.Summary}}</p>
	<a class="article-link" href="{{.URL}}">Read more &rarr;</a>
	<hr>
	{{end}}
</body>
</html>`

var digestTmpl = template.Must(template.New("digest").Parse(digestTemplate))

type templateData struct {
	Greeting     string
	Introduction string
	Articles     []core.Digest
}

// Render produces the subject, markdown and HTML bodies for one digest
// email.
func Render(intro extract.Introduction, articles []core.Digest) (Message, error) {
	html, err := renderHTML(intro, articles)
	if err != nil {
		return Message{}, err
	}

	return Message{
		Subject:  Subject(intro.Greeting),
		Markdown: renderMarkdown(intro, articles),
		HTML:     html,
	}, nil
}

// Subject derives the email subject from the greeting's trailing date, with
// "Today" covering greetings that carry none.
func Subject(greeting string) string {
	date := "Today"
	if idx := strings.LastIndex(greeting, "for "); idx >= 0 {
		date = strings.TrimSuffix(strings.TrimSpace(greeting[idx+len("for "):]), ".")
	}
	return fmt.Sprintf("Daily AI News Digest - %s", date)
}

func renderMarkdown(intro extract.Introduction, articles []core.Digest) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s\n\n", intro.Greeting)
	fmt.Fprintf(&b, "%s\n\n", intro.Introduction)
	b.WriteString("---\n\n")

	for _, article := range articles {
		fmt.Fprintf(&b, "## %s\n\n", article.Title)
		fmt.Fprintf(&b, "%s\n\n", article.Summary)
		fmt.Fprintf(&b, "[Read more →](%s)\n\n", article.URL)
		b.WriteString("---\n\n")
	}

	return b.String()
}

func renderHTML(intro extract.Introduction, articles []core.Digest) (string, error) {
	var buf bytes.Buffer
	data := templateData{
		Greeting:     intro.Greeting,
		Introduction: intro.Introduction,
		Articles:     articles,
	}
	if err := digestTmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render email template: %w", err)
	}
	return buf.String(), nil
}
