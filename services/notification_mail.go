package services

import (
	"fmt"
	"html/template"
	"strings"

	"iris-api/models"
)

const notificationMailSubject = "IRIS notification"

type mailMetaItem struct {
	Label string
	Value string
}

// mailLayout is the shared shell of every notification e-mail.
var mailLayout = template.Must(template.New("mail").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Subject}}</title>
</head>
<body style="margin:0;padding:0;background-color:#f9fafb;font-family:'Segoe UI',Tahoma,Arial,sans-serif;">
<div style="max-width:640px;margin:0 auto;padding:24px 20px;">
<div style="background-color:#ffffff;border:1px solid #e5e7eb;border-radius:12px;padding:24px 24px 28px 24px;">
<h1 style="margin:0;font-size:22px;font-weight:700;color:#111827;line-height:1.35;">{{.Subject}}</h1>
<div style="margin-top:20px;color:#1f2937;font-size:16px;line-height:1.75;word-break:break-word;">
{{range .Paragraphs}}<p style="margin:0 0 18px 0;">{{.}}</p>
{{end}}</div>
{{if .Meta}}<table role="presentation" cellpadding="0" cellspacing="0" width="100%" style="margin:0 0 24px 0;border:1px solid #e5e7eb;border-radius:12px;background-color:#f9fafb;">
<tbody>
{{range .Meta}}<tr>
<td style="padding:12px 16px;font-size:13px;color:#6b7280;width:38%;">{{.Label}}</td>
<td style="padding:12px 16px;font-size:15px;color:#111827;font-weight:600;">{{.Value}}</td>
</tr>
{{end}}</tbody>
</table>
{{end}}{{if .ButtonURL}}<div style="text-align:center;margin:12px 0 24px 0;">
<a href="{{.ButtonURL}}" style="display:inline-block;padding:12px 28px;background-color:#2563eb;color:#ffffff;text-decoration:none;border-radius:999px;font-weight:600;">Open in IRIS</a>
</div>
{{end}}<div style="color:#6b7280;font-size:13px;line-height:1.7;">This message was sent automatically by IRIS. Please do not reply.</div>
</div>
</div>
</body>
</html>`))

type mailView struct {
	Subject    string
	Paragraphs []string
	Meta       []mailMetaItem
	ButtonURL  string
}

// renderNotificationMail builds the HTML body for n. linkBase is prefixed
// to relative notification links.
func renderNotificationMail(recipientName, linkBase string, n models.Notification) (string, error) {
	name := strings.TrimSpace(recipientName)
	if name == "" {
		name = "there"
	}
	view := mailView{
		Subject:    notificationMailSubject,
		Paragraphs: []string{fmt.Sprintf("Hello %s,", name), n.Message},
		Meta: []mailMetaItem{
			{Label: "Received", Value: n.CreatedAt.Format("2006-01-02 15:04")},
		},
	}
	if n.Link != nil && *n.Link != "" {
		link := *n.Link
		if strings.HasPrefix(link, "/") {
			link = strings.TrimRight(linkBase, "/") + link
		}
		view.ButtonURL = link
	}

	var b strings.Builder
	if err := mailLayout.Execute(&b, view); err != nil {
		return "", fmt.Errorf("render notification mail: %w", err)
	}
	return b.String(), nil
}
