package report

import (
	"fmt"
	"net/smtp"
	"strings"
)

// SMTPSender delivers report e-mails through a plain SMTP relay.
type SMTPSender struct {
	addr string
	from string
}

// NewSMTPSender creates a sender using the relay at addr (host:port).
func NewSMTPSender(addr, from string) *SMTPSender {
	return &SMTPSender{addr: addr, from: from}
}

// Send builds a minimal message and hands it to the relay.
func (s *SMTPSender) Send(to []string, subject, body string) error {
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s\r\n",
		s.from, strings.Join(to, ", "), subject, body)
	return smtp.SendMail(s.addr, nil, s.from, to, []byte(msg))
}
