package utils

import (
	"fmt"
	"html"
	"log/slog"
	"strings"

	"brilliora/models"

	"github.com/keighl/postmark"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// Mailer sends a single HTML email
type Mailer interface {
	SendEmail(toEmail, subject, htmlContent string) error
}

// MailerConfig selects and configures a mail transport
type MailerConfig struct {
	PostmarkToken string
	SendGridKey   string
	Sender        string
}

// NewMailer picks Postmark when a server token is configured, SendGrid when an
// API key is, and falls back to logging the message otherwise.
func NewMailer(cfg MailerConfig, logger *slog.Logger) Mailer {
	switch {
	case cfg.PostmarkToken != "":
		return &PostmarkMailer{client: postmark.NewClient(cfg.PostmarkToken, ""), from: cfg.Sender}
	case cfg.SendGridKey != "":
		return &SendGridMailer{client: sendgrid.NewSendClient(cfg.SendGridKey), from: cfg.Sender}
	default:
		return &LogMailer{logger: logger}
	}
}

// PostmarkMailer handles sending emails using Postmark
type PostmarkMailer struct {
	client *postmark.Client
	from   string
}

func (pm *PostmarkMailer) SendEmail(toEmail, subject, htmlContent string) error {
	_, err := pm.client.SendEmail(postmark.Email{
		From:     pm.from,
		To:       toEmail,
		Subject:  subject,
		HtmlBody: htmlContent,
		TextBody: plainText(htmlContent),
	})
	if err != nil {
		return fmt.Errorf("postmark: failed to send email: %w", err)
	}
	return nil
}

// SendGridMailer handles sending emails using SendGrid
type SendGridMailer struct {
	client *sendgrid.Client
	from   string
}

func (sg *SendGridMailer) SendEmail(toEmail, subject, htmlContent string) error {
	message := mail.NewSingleEmail(
		mail.NewEmail("Brilliora", sg.from),
		subject,
		mail.NewEmail("", toEmail),
		plainText(htmlContent),
		htmlContent,
	)
	resp, err := sg.client.Send(message)
	if err != nil {
		return fmt.Errorf("sendgrid: failed to send email: %w", err)
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("sendgrid: status %d: %s", resp.StatusCode, resp.Body)
	}
	return nil
}

// LogMailer records messages in the log instead of delivering them
type LogMailer struct {
	logger *slog.Logger
}

func (lm *LogMailer) SendEmail(toEmail, subject, _ string) error {
	lm.logger.Info("email not sent: no mail transport configured", "to", toEmail, "subject", subject)
	return nil
}

// OrderConfirmation renders the subject and HTML body of an order confirmation
func OrderConfirmation(order models.Order) (string, string) {
	var b strings.Builder
	b.WriteString("<strong>Thank you for shopping with Brilliora!</strong><br><br>")
	fmt.Fprintf(&b, "Your order (ID: %s) has been placed and is now <strong>%s</strong>.<br><br>",
		order.ID.Hex(), order.Status)
	b.WriteString("<ul>")
	for _, item := range order.Items {
		fmt.Fprintf(&b, "<li>%s x %d &mdash; &#8377;%.2f</li>", html.EscapeString(item.Title), item.Quantity, item.Price)
	}
	b.WriteString("</ul>")
	fmt.Fprintf(&b, "Total Amount: <strong>&#8377;%.2f</strong>", order.Total)
	return "Order Confirmation - Brilliora", b.String()
}

// SendOrderConfirmationEmail sends an order confirmation email to the user
func SendOrderConfirmationEmail(m Mailer, toEmail string, order models.Order) error {
	subject, body := OrderConfirmation(order)
	return m.SendEmail(toEmail, subject, body)
}

func plainText(htmlContent string) string {
	r := strings.NewReplacer("<br>", "\n", "<li>", "- ", "</li>", "\n")
	s := r.Replace(htmlContent)
	var b strings.Builder
	inTag := false
	for _, c := range s {
		switch {
		case c == '<':
			inTag = true
		case c == '>':
			inTag = false
		case !inTag:
			b.WriteRune(c)
		}
	}
	return html.UnescapeString(b.String())
}
