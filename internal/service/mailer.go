package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/jellydator/ttlcache/v2"
	"github.com/spf13/viper"
	"gopkg.in/gomail.v2"
)

// ErrMailCooldown is returned when another mail for the same address is
// requested before the resend window has passed
var ErrMailCooldown = errors.New("a mail was sent to this address recently")

// Mailer is the outgoing email surface the handlers depend on. Failures are
// surfaced but never roll back whatever triggered the mail
type Mailer interface {
	SendVerification(to, token, firstName string) error
	SendPasswordReset(to, token, firstName string) error
	SendTemporaryPassword(to, tempPassword, firstName string) error
}

// SMTPMailer sends through the SMTP relay from the mail.* config section.
// A small TTL cache keeps one address from being spammed with resends
type SMTPMailer struct {
	cooldowns *ttlcache.Cache
}

func NewSMTPMailer(cooldown time.Duration) *SMTPMailer {
	c := ttlcache.NewCache()
	c.SetTTL(cooldown)
	c.SkipTTLExtensionOnHit(true)

	return &SMTPMailer{cooldowns: c}
}

func (m *SMTPMailer) SendVerification(to, token, firstName string) error {
	link := buildLink("/verify-email", token)

	body := fmt.Sprintf(
		"Hi %s,<br><br>Click <a href='%s'>here</a> to verify your email address.<br><br>This link will expire in %d hours.",
		firstName, link, viper.GetInt("tokens.verify_ttl_hours"))

	return m.send(to, "Verify your email address", body)
}

func (m *SMTPMailer) SendPasswordReset(to, token, firstName string) error {
	link := buildLink("/reset-password", token)

	body := fmt.Sprintf(
		"Hi %s,<br><br>Click <a href='%s'>here</a> to reset your password.<br><br>This link will expire in %d minutes. If you didn't request this you can ignore this mail.",
		firstName, link, viper.GetInt("tokens.reset_ttl_minutes"))

	return m.send(to, "Reset your password", body)
}

func (m *SMTPMailer) SendTemporaryPassword(to, tempPassword, firstName string) error {
	body := fmt.Sprintf(
		"Hi %s,<br><br>An administrator set a temporary password for your account:<br><br><b>%s</b><br><br>Please log in and change it right away.",
		firstName, tempPassword)

	return m.send(to, "Your temporary password", body)
}

func (m *SMTPMailer) send(to, subject, htmlBody string) error {
	from := viper.GetString("mail.sender")
	if to == from {
		return errors.New("invalid email address")
	}

	if _, err := m.cooldowns.Get(to); err == nil {
		return ErrMailCooldown
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", htmlBody)

	d := gomail.NewDialer(
		viper.GetString("mail.host"),
		viper.GetInt("mail.port"),
		from,
		viper.GetString("mail.password"),
	)

	if err := d.DialAndSend(msg); err != nil {
		return err
	}

	m.cooldowns.Set(to, time.Now())
	return nil
}

func buildLink(path, token string) string {
	scheme := "http"
	if viper.GetBool("host.ssl.enabled") {
		scheme = "https"
	}

	return fmt.Sprintf("%s://%s%s?token=%s", scheme, viper.GetString("host.domain"), path, token)
}
