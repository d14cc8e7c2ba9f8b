// mailer/mailer.go
package mailer

import (
	"fmt"

	"gopkg.in/gomail.v2"

	"crmhub/config"
	"crmhub/logger"
)

// Enabled reports whether SMTP credentials are configured. Without them the
// OTP code is logged instead of mailed, which keeps local development usable.
func Enabled() bool {
	return config.EmailUser != "" && config.EmailPass != ""
}

func send(to, subject, htmlBody string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", config.EmailUser)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", htmlBody)

	d := gomail.NewDialer(config.SMTPHost, config.SMTPPort, config.EmailUser, config.EmailPass)
	return d.DialAndSend(m)
}

// SendOTP delivers a registration code. The 10 minute validity window is
// stated in the mail body so it matches the stored expiry.
func SendOTP(to, code string) error {
	if !Enabled() {
		logger.WithField("email", to).Warnf("SMTP not configured, OTP for %s: %s", to, code)
		return nil
	}

	body := fmt.Sprintf(`
		<div style="font-family:Arial,sans-serif;max-width:480px;margin:0 auto;">
			<h2>Your verification code</h2>
			<p>Use the code below to finish creating your account. It expires in 10 minutes.</p>
			<p style="font-size:32px;letter-spacing:8px;font-weight:bold;">%s</p>
			<p style="color:#888;">If you did not request this, you can ignore this email.</p>
		</div>`, code)

	return send(to, "Your verification code", body)
}

// SendNotification mirrors a high-priority in-app notification to email.
func SendNotification(to, title, message string) error {
	if !Enabled() {
		return nil
	}

	body := fmt.Sprintf(`
		<div style="font-family:Arial,sans-serif;max-width:480px;margin:0 auto;">
			<h2>%s</h2>
			<p>%s</p>
		</div>`, title, message)

	return send(to, title, body)
}
