package services

import (
	"bytes"
	"crypto/tls"
	"fmt"
	"html/template"
	"log"
	"net"
	"net/smtp"
	"net/url"
	"strings"
	"time"
)

type MailService struct {
	gmailUser    string
	gmailAppPass string
	mailFrom     string
	mailFromName string
	subject      string
	resetBaseURL string
}

func NewMailService(
	gmailUser string,
	gmailAppPass string,
	mailFrom string,
	mailFromName string,
	subject string,
	resetBaseURL string,
) *MailService {
	return &MailService{
		gmailUser:    gmailUser,
		gmailAppPass: gmailAppPass,
		mailFrom:     mailFrom,
		mailFromName: mailFromName,
		subject:      subject,
		resetBaseURL: resetBaseURL,
	}
}

func (s *MailService) SendResetEmail(to string, token string) error {
	link := fmt.Sprintf("%s?token=%s",
		s.resetBaseURL,
		url.QueryEscape(token),
	)

	htmlBody, err := s.renderResetTemplate(link)
	if err != nil {
		return err
	}

	fromHeader := fmt.Sprintf("%s <%s>", s.mailFromName, s.mailFrom)

	msg := strings.Join([]string{
		fmt.Sprintf("From: %s", fromHeader),
		fmt.Sprintf("To: %s", to),
		fmt.Sprintf("Subject: %s", s.subject),
		"MIME-Version: 1.0",
		`Content-Type: text/html; charset="UTF-8"`,
		"",
		htmlBody,
	}, "\r\n")

	log.Printf("[MAIL] smtp sending to=%s via=%s", to, "smtp.gmail.com:587")

	if err := s.sendSMTPWithTimeout(to, []byte(msg)); err != nil {
		return err
	}

	log.Printf("[MAIL] sent to=%s", to)
	return nil
}

func (s *MailService) renderResetTemplate(link string) (string, error) {
	tmpl, err := template.ParseFiles("internal/templates/reset-password.html")
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	err = tmpl.Execute(&buf, map[string]string{
		"Link": link,
	})
	if err != nil {
		return "", err
	}

	return buf.String(), nil
}

func (s *MailService) sendSMTPWithTimeout(to string, msg []byte) error {
	addr := "smtp.gmail.com:587"

	conn, err := net.DialTimeout("tcp", addr, 8*time.Second)
	if err != nil {
		return err
	}
	_ = conn.SetDeadline(time.Now().Add(15 * time.Second))

	c, err := smtp.NewClient(conn, "smtp.gmail.com")
	if err != nil {
		return err
	}
	defer func() { _ = c.Quit() }()

	if ok, _ := c.Extension("STARTTLS"); ok {
		if err := c.StartTLS(&tls.Config{ServerName: "smtp.gmail.com"}); err != nil {
			return err
		}
	}

	auth := smtp.PlainAuth("", s.gmailUser, s.gmailAppPass, "smtp.gmail.com")
	if err := c.Auth(auth); err != nil {
		return err
	}

	if err := c.Mail(s.mailFrom); err != nil {
		return err
	}
	if err := c.Rcpt(to); err != nil {
		return err
	}

	w, err := c.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(msg); err != nil {
		_ = w.Close()
		return err
	}
	return w.Close()
}
