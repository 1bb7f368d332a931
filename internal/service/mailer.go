package service

import (
	"context"
	"errors"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/gomail.v2"
)

var ErrInvalidRecipient = errors.New("invalid email address")

// SMTPMailer delivers verification mails over SMTP. Port 465 uses implicit SSL
type SMTPMailer struct {
	From   string
	dialer *gomail.Dialer
}

// NewSMTPMailer builds a mailer from the mail.* config keys
func NewSMTPMailer() *SMTPMailer {
	username := viper.GetString("mail.username")
	if username == "" {
		username = viper.GetString("mail.sender")
	}

	return &SMTPMailer{
		From: viper.GetString("mail.sender"),
		dialer: gomail.NewDialer(
			viper.GetString("mail.host"),
			viper.GetInt("mail.port"),
			username,
			viper.GetString("mail.password"),
		),
	}
}

// Send gives up waiting once ctx is done. gomail has no context support so the
// dial itself keeps running in the background until the server answers.
func (m *SMTPMailer) Send(ctx context.Context, to, subject, htmlBody string) error {
	if strings.EqualFold(to, m.From) {
		return ErrInvalidRecipient
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.From)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", htmlBody)

	done := make(chan error, 1)
	go func() {
		done <- m.dialer.DialAndSend(msg)
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}
