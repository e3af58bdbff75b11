package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"net"
	"net/smtp"
	"net/textproto"
	"strings"
)

const resetCodeSubject = "Hidden Mood Password Reset Code"

var ErrMailerNotConfigured = errors.New("smtp credentials are not configured")

// Mailer delivers forgot-password codes.
type Mailer interface {
	SendResetCode(ctx context.Context, to, code string) error
}

// SMTPMailer sends mail through an authenticated SMTP relay (STARTTLS on 587).
type SMTPMailer struct {
	host     string
	port     string
	from     string
	password string
}

func NewSMTPMailer(host, port, from, password string) *SMTPMailer {
	return &SMTPMailer{host: host, port: port, from: from, password: password}
}

func (m *SMTPMailer) SendResetCode(ctx context.Context, to, code string) error {
	if m.from == "" || m.password == "" {
		return ErrMailerNotConfigured
	}
	msg, err := buildResetMessage(m.from, to, code)
	if err != nil {
		return err
	}

	// net/smtp has no context support; run it so a cancelled request stops waiting.
	done := make(chan error, 1)
	go func() {
		auth := smtp.PlainAuth("", m.from, m.password, m.host)
		done <- smtp.SendMail(net.JoinHostPort(m.host, m.port), auth, m.from, []string{to}, msg)
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// buildResetMessage renders a multipart/alternative mail with a text and an
// HTML body.
func buildResetMessage(from, to, code string) ([]byte, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	parts := []struct {
		contentType string
		content     string
	}{
		{"text/plain; charset=UTF-8", fmt.Sprintf("Your verification code is: %s. It expires in 10 minutes.", code)},
		{"text/html; charset=UTF-8", fmt.Sprintf("<p>Your verification code is: <strong>%s</strong>. It expires in 10 minutes.</p>", code)},
	}
	for _, p := range parts {
		pw, err := mw.CreatePart(textproto.MIMEHeader{"Content-Type": {p.contentType}})
		if err != nil {
			return nil, err
		}
		if _, err := pw.Write([]byte(p.content)); err != nil {
			return nil, err
		}
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	var msg bytes.Buffer
	headers := []string{
		"From: " + from,
		"To: " + to,
		"Subject: " + resetCodeSubject,
		"MIME-Version: 1.0",
		"Content-Type: multipart/alternative; boundary=" + mw.Boundary(),
	}
	msg.WriteString(strings.Join(headers, "\r\n"))
	msg.WriteString("\r\n\r\n")
	msg.Write(body.Bytes())
	return msg.Bytes(), nil
}
