package notify

import (
	"bytes"
	"crypto/tls"
	"fmt"
	"html/template"
	"net"
	"net/smtp"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// Mailer sends one HTML message.
type Mailer interface {
	Send(to, subject, htmlBody string) error
}

type MailService struct {
	host     string
	port     string
	user     string
	password string
	from     string
	fromName string
	log      logrus.FieldLogger
}

func NewMailService(host, port, user, password, from, fromName string, log logrus.FieldLogger) *MailService {
	if from == "" {
		from = user
	}
	return &MailService{
		host:     host,
		port:     port,
		user:     user,
		password: password,
		from:     from,
		fromName: fromName,
		log:      log,
	}
}

func (s *MailService) Send(to, subject, htmlBody string) error {
	fromHeader := fmt.Sprintf("%s <%s>", s.fromName, s.from)

	msg := strings.Join([]string{
		fmt.Sprintf("From: %s", fromHeader),
		fmt.Sprintf("To: %s", to),
		fmt.Sprintf("Subject: %s", subject),
		"MIME-Version: 1.0",
		`Content-Type: text/html; charset="UTF-8"`,
		"",
		htmlBody,
	}, "\r\n")

	addr := net.JoinHostPort(s.host, s.port)
	s.log.WithFields(logrus.Fields{"to": to, "via": addr}).Info("smtp sending")

	if err := s.sendSMTPWithTimeout(addr, to, []byte(msg)); err != nil {
		return err
	}

	s.log.WithField("to", to).Info("mail sent")
	return nil
}

func (s *MailService) sendSMTPWithTimeout(addr, to string, msg []byte) error {
	conn, err := net.DialTimeout("tcp", addr, 8*time.Second)
	if err != nil {
		return err
	}
	_ = conn.SetDeadline(time.Now().Add(15 * time.Second))

	c, err := smtp.NewClient(conn, s.host)
	if err != nil {
		return err
	}
	defer func() { _ = c.Quit() }()

	if ok, _ := c.Extension("STARTTLS"); ok {
		if err := c.StartTLS(&tls.Config{ServerName: s.host}); err != nil {
			return err
		}
	}
	if s.user != "" {
		auth := smtp.PlainAuth("", s.user, s.password, s.host)
		if err := c.Auth(auth); err != nil {
			return err
		}
	}

	if err := c.Mail(s.from); err != nil {
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

var decisionTemplate = template.Must(template.New("decision").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: sans-serif">
  <p>Hi {{.Name}},</p>
  {{if .Accepted}}
  <p>Good news: your application #{{.ApplicationID}} has been <strong>accepted</strong>. You are now part of the project team.</p>
  {{else}}
  <p>Your application #{{.ApplicationID}} was not selected this time. You are welcome to apply again while the role is recruiting.</p>
  {{end}}
  <p>RoleMatch</p>
</body>
</html>`))

func renderDecision(name string, applicationID uint, accepted bool) (string, error) {
	var buf bytes.Buffer
	err := decisionTemplate.Execute(&buf, map[string]any{
		"Name":          name,
		"ApplicationID": applicationID,
		"Accepted":      accepted,
	})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}
