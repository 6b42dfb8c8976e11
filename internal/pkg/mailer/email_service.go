// FILE: internal/pkg/mailer/email_service.go
package mailer

import (
	"fmt"

	"gopkg.in/gomail.v2"
)

type IEmailService interface {
	SendThankYou(toEmail string, questionsCount int) error
}

type emailService struct {
	dialer      *gomail.Dialer
	senderEmail string
}

func NewEmailService(host string, port int, username, password, senderEmail string) IEmailService {
	d := gomail.NewDialer(host, port, username, password)

	return &emailService{
		dialer:      d,
		senderEmail: senderEmail,
	}
}

// SendThankYou is sent once a respondent who consented to be recontacted
// finishes the questionnaire.
func (s *emailService) SendThankYou(toEmail string, questionsCount int) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.senderEmail)
	m.SetHeader("To", toEmail)
	m.SetHeader("Subject", "Merci pour votre participation !")

	body := fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; padding: 20px; color: #333;">
			<h2>Merci pour votre participation !</h2>
			<p>Vous avez répondu à %d questions de notre questionnaire.</p>
			<p>Vos retours nous aident à construire un outil qui répond réellement à vos besoins.</p>
			<p>Comme vous avez accepté d'être recontacté, nous vous tiendrons informé de nos évolutions.</p>
		</div>
	`, questionsCount)

	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		fmt.Printf("[MAILER ERROR] Failed to send thank-you to %s: %v\n", toEmail, err)
		return err
	}

	fmt.Printf("[MAILER] Thank-you sent to %s\n", toEmail)
	return nil
}
