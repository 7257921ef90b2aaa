package utils

import (
	"fmt"
	"os"

	"github.com/keighl/postmark"
)

// EmailService sends customer notification mail using Postmark.
type EmailService struct {
	client *postmark.Client
}

// NewEmailService returns a Postmark-backed mail service, or nil when no
// POSTMARK_API_TOKEN is configured (notifications are then skipped).
func NewEmailService() *EmailService {
	apiToken := os.Getenv("POSTMARK_API_TOKEN")
	if apiToken == "" {
		return nil
	}
	return &EmailService{client: postmark.NewClient(apiToken, "")}
}

// SendEmail sends a basic email to the specified recipient.
func (es *EmailService) SendEmail(toEmail, subject, htmlContent string) error {
	_, err := es.client.SendEmail(postmark.Email{
		From:     os.Getenv("EMAIL_SENDER"),
		To:       toEmail,
		Subject:  subject,
		HtmlBody: htmlContent,
		TextBody: htmlContent,
	})
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

// SendOrderConfirmation notifies a customer that their order was placed.
func (es *EmailService) SendOrderConfirmation(toEmail, name, orderID string, total float64) error {
	subject := "Order Confirmation - Last Minute Pantry"
	content := fmt.Sprintf(
		"<strong>Dear %s,</strong><br><br>Thank you for your order (ID: %s). Total amount: <strong>Rs. %.2f</strong>.<br><br>We will let you know as soon as its status changes.",
		name, orderID, total,
	)
	return es.SendEmail(toEmail, subject, content)
}

// SendOrderStatusUpdate notifies a customer of an order status change.
func (es *EmailService) SendOrderStatusUpdate(toEmail, name, orderID, status string) error {
	subject := "Order Status Updated - Last Minute Pantry"
	content := fmt.Sprintf(
		"<strong>Dear %s,</strong><br><br>Your order (ID: %s) is now <strong>%s</strong>.",
		name, orderID, status,
	)
	return es.SendEmail(toEmail, subject, content)
}

// SendPaymentStatusUpdate notifies a customer of a payment status change.
func (es *EmailService) SendPaymentStatusUpdate(toEmail, name, orderID, status string) error {
	subject := "Payment Status Updated - Last Minute Pantry"
	content := fmt.Sprintf(
		"<strong>Dear %s,</strong><br><br>The payment for your order (ID: %s) is now <strong>%s</strong>.",
		name, orderID, status,
	)
	return es.SendEmail(toEmail, subject, content)
}
