package utils

import (
	"fmt"
	"log"

	"sefy/config"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// SendCertificateEmail notifies a user that their course certificate was
// issued. Skipped quietly when no SendGrid key is configured.
func SendCertificateEmail(email, userName, courseName, certificateNumber string) error {
	if config.AppConfig == nil || config.AppConfig.SendgridApiKey == "" {
		log.Printf("[EMAIL] SendGrid not configured, skipping certificate email to %s", email)
		return nil
	}

	from := mail.NewEmail("Sefy", config.AppConfig.EmailSender)
	to := mail.NewEmail(userName, email)
	subject := "Your Course Completion Certificate"

	plain := fmt.Sprintf("Hi %s, you completed %s. Your certificate number is %s.",
		userName, courseName, certificateNumber)
	html := fmt.Sprintf(`
		<html>
			<body style="font-family: Arial, sans-serif; background-color: #f4f4f4; padding: 20px;">
				<div style="max-width: 500px; margin: auto; background-color: #ffffff; border-radius: 8px; padding: 30px;">
					<h2 style="color: #333333; text-align: center;">Congratulations, %s!</h2>
					<p style="font-size: 16px; color: #555555; text-align: center;">You completed <b>%s</b>.</p>
					<p style="font-size: 16px; color: #555555; text-align: center;">Certificate number:</p>
					<h1 style="text-align: center; color: #4CAF50; font-size: 28px; margin: 20px 0;">%s</h1>
					<p style="text-align: center; font-size: 12px; color: #bbbbbb; margin-top: 30px;">Keep this number to verify your certificate.</p>
				</div>
			</body>
		</html>
	`, userName, courseName, certificateNumber)

	message := mail.NewSingleEmail(from, subject, to, plain, html)
	client := sendgrid.NewSendClient(config.AppConfig.SendgridApiKey)

	resp, err := client.Send(message)
	if err != nil {
		log.Printf("[EMAIL] failed to send certificate email to %s: %v", email, err)
		return err
	}
	if resp.StatusCode >= 300 {
		log.Printf("[EMAIL] certificate email to %s rejected with status %d", email, resp.StatusCode)
		return fmt.Errorf("sendgrid status %d", resp.StatusCode)
	}

	log.Println("[EMAIL] certificate email sent to", email)
	return nil
}
