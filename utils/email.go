package utils

import (
	"fmt"
	"log"
	"os"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// EmailService sends transactional mail through SendGrid. All sends are
// best-effort: callers log failures and move on.
type EmailService struct {
	client *sendgrid.Client
	sender string
}

// NewEmailService returns nil when SENDGRID_API_KEY is unset so mail can be
// disabled entirely in local and test environments.
func NewEmailService() *EmailService {
	apiKey := os.Getenv("SENDGRID_API_KEY")
	if apiKey == "" {
		log.Println("SENDGRID_API_KEY not set, email disabled")
		return nil
	}
	return &EmailService{
		client: sendgrid.NewSendClient(apiKey),
		sender: os.Getenv("EMAIL_SENDER"),
	}
}

// SendEmail sends a basic HTML email to the specified recipient.
func (es *EmailService) SendEmail(toEmail, subject, htmlContent string) error {
	from := mail.NewEmail("Phi-Mart", es.sender)
	to := mail.NewEmail("", toEmail)
	message := mail.NewSingleEmail(from, subject, to, htmlContent, htmlContent)

	resp, err := es.client.Send(message)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("sendgrid rejected email: %d %s", resp.StatusCode, resp.Body)
	}
	return nil
}

// SendOrderPaidEmail notifies a customer that payment was received and the
// order is being prepared.
func (es *EmailService) SendOrderPaidEmail(toEmail string, orderID uint, total float64) error {
	subject := fmt.Sprintf("Payment received for order #%d", orderID)
	htmlContent := fmt.Sprintf(
		"<strong>Thanks for your purchase!</strong> Payment of %.2f for order #%d was received. Your order is now being prepared for shipping.",
		total, orderID,
	)
	return es.SendEmail(toEmail, subject, htmlContent)
}
