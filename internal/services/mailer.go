package services

import (
	"context"
	"log"
)

// MailMessage is an outgoing email
type MailMessage struct {
	To      string
	Subject string
	Body    string
}

// Mailer delivers email
type Mailer interface {
	Send(ctx context.Context, msg MailMessage) error
}

// LogMailer writes messages to the process log instead of delivering them
type LogMailer struct{}

func (LogMailer) Send(_ context.Context, msg MailMessage) error {
	log.Printf("Mail to=%s subject=%q\n%s", msg.To, msg.Subject, msg.Body)
	return nil
}
