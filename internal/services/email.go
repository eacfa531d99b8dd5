package services

import (
	"crypto/tls"
	"fmt"
	"net/smtp"

	"github.com/filoshare/backend/internal/config"
)

// EmailService handles sending emails via SMTP
type EmailService struct {
	cfg *config.Config
}

// NewEmailService creates a new email service
func NewEmailService(cfg *config.Config) *EmailService {
	return &EmailService{cfg: cfg}
}

// SendEmail sends an email
func (s *EmailService) SendEmail(to, subject, body string, isHTML bool) error {
	if s.cfg.SMTPHost == "" || s.cfg.SMTPPort == "" {
		return fmt.Errorf("SMTP not configured")
	}

	// Build email headers
	from := s.cfg.SMTPFromAddr
	if from == "" {
		from = s.cfg.SMTPUsername
	}
	fromHeader := from
	if s.cfg.SMTPFromName != "" {
		fromHeader = fmt.Sprintf("%s <%s>", s.cfg.SMTPFromName, from)
	}

	contentType := "text/plain"
	if isHTML {
		contentType = "text/html"
	}

	msg := fmt.Sprintf("From: %s\r\n"+
		"To: %s\r\n"+
		"Subject: %s\r\n"+
		"MIME-Version: 1.0\r\n"+
		"Content-Type: %s; charset=UTF-8\r\n"+
		"\r\n"+
		"%s", fromHeader, to, subject, contentType, body)

	addr := fmt.Sprintf("%s:%s", s.cfg.SMTPHost, s.cfg.SMTPPort)

	// Determine if we should use TLS
	port := s.cfg.SMTPPort
	useTLS := port == "465"
	useStartTLS := port == "587" || port == "25"

	var auth smtp.Auth
	if s.cfg.SMTPUsername != "" && s.cfg.SMTPPassword != "" {
		auth = smtp.PlainAuth("", s.cfg.SMTPUsername, s.cfg.SMTPPassword, s.cfg.SMTPHost)
	}

	if useTLS {
		// Direct TLS connection (port 465)
		return s.sendWithTLS(addr, from, auth, to, []byte(msg))
	} else if useStartTLS {
		// STARTTLS connection (port 587)
		return s.sendWithStartTLS(addr, from, auth, to, []byte(msg))
	}
	// Plain connection
	return smtp.SendMail(addr, auth, from, []string{to}, []byte(msg))
}

// sendWithTLS sends email using direct TLS (port 465)
func (s *EmailService) sendWithTLS(addr, from string, auth smtp.Auth, to string, msg []byte) error {
	tlsConfig := &tls.Config{
		ServerName: s.cfg.SMTPHost,
	}

	conn, err := tls.Dial("tcp", addr, tlsConfig)
	if err != nil {
		return fmt.Errorf("TLS dial failed: %v", err)
	}
	defer conn.Close()

	client, err := smtp.NewClient(conn, s.cfg.SMTPHost)
	if err != nil {
		return fmt.Errorf("SMTP client failed: %v", err)
	}
	defer client.Close()

	return s.sendMail(client, from, auth, to, msg)
}

// sendWithStartTLS sends email using STARTTLS (port 587)
func (s *EmailService) sendWithStartTLS(addr, from string, auth smtp.Auth, to string, msg []byte) error {
	client, err := smtp.Dial(addr)
	if err != nil {
		return fmt.Errorf("SMTP dial failed: %v", err)
	}
	defer client.Close()

	if err := client.Hello("localhost"); err != nil {
		return fmt.Errorf("HELLO failed: %v", err)
	}

	tlsConfig := &tls.Config{
		ServerName: s.cfg.SMTPHost,
	}
	if err := client.StartTLS(tlsConfig); err != nil {
		return fmt.Errorf("STARTTLS failed: %v", err)
	}

	return s.sendMail(client, from, auth, to, msg)
}

func (s *EmailService) sendMail(client *smtp.Client, from string, auth smtp.Auth, to string, msg []byte) error {
	if auth != nil {
		if err := client.Auth(auth); err != nil {
			return fmt.Errorf("SMTP auth failed: %v", err)
		}
	}

	if err := client.Mail(from); err != nil {
		return fmt.Errorf("MAIL FROM failed: %v", err)
	}

	if err := client.Rcpt(to); err != nil {
		return fmt.Errorf("RCPT TO failed: %v", err)
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("DATA failed: %v", err)
	}

	if _, err = w.Write(msg); err != nil {
		return fmt.Errorf("Write failed: %v", err)
	}

	if err = w.Close(); err != nil {
		return fmt.Errorf("Close failed: %v", err)
	}

	return client.Quit()
}
