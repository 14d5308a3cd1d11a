package email

import (
	"fmt"
	"html"
	"strings"
	"time"
)

// ContactNotificationData is what the shop sees about a new contact message.
type ContactNotificationData struct {
	ShopName    string
	To          []string
	ID          int
	FirstName   string
	LastName    string
	Email       string
	Service     string
	Message     string
	SubmittedAt time.Time
}

// BuildContactNotificationEmail creates the message sent to the shop inbox
// when a visitor submits the contact form. Replies go to the visitor.
func BuildContactNotificationEmail(data ContactNotificationData) Message {
	shopName := data.ShopName
	if shopName == "" {
		shopName = "Boppa"
	}

	name := strings.TrimSpace(data.FirstName + " " + data.LastName)
	submitted := data.SubmittedAt.UTC().Format("Jan 2, 2006 15:04 MST")

	subject := fmt.Sprintf("[%s] New contact request from %s", shopName, name)

	textBody := fmt.Sprintf(`New contact request #%d

Name:      %s
Email:     %s
Service:   %s
Submitted: %s

%s

Reply to this email to answer %s directly.`,
		data.ID, name, data.Email, data.Service, submitted, data.Message, data.FirstName)

	// Everything but the layout is visitor input.
	esc := html.EscapeString
	htmlBody := fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
</head>
<body style="font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px;">
    <h2 style="color: #15803d;">New contact request #%d</h2>
    <table style="border-collapse: collapse; margin-bottom: 20px;">
        <tr><td style="padding: 4px 12px 4px 0; color: #6b7280;">Name</td><td>%s</td></tr>
        <tr><td style="padding: 4px 12px 4px 0; color: #6b7280;">Email</td><td><a href="mailto:%s">%s</a></td></tr>
        <tr><td style="padding: 4px 12px 4px 0; color: #6b7280;">Service</td><td>%s</td></tr>
        <tr><td style="padding: 4px 12px 4px 0; color: #6b7280;">Submitted</td><td>%s</td></tr>
    </table>
    <p style="background-color: #f3f4f6; padding: 12px 16px; border-radius: 4px; white-space: pre-wrap;">%s</p>
    <p style="color: #6b7280; font-size: 14px; margin-top: 30px;">Reply to this email to answer %s directly.</p>
</body>
</html>`,
		data.ID, esc(name), esc(data.Email), esc(data.Email), esc(data.Service), submitted, esc(data.Message), esc(data.FirstName))

	return Message{
		To:       data.To,
		ReplyTo:  data.Email,
		Subject:  subject,
		TextBody: textBody,
		HTMLBody: htmlBody,
	}
}
