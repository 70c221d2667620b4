package email

import (
	"context"
	"net/mail"
)

// Message is one outbound email. HTMLBody is required, TextBody is the plain alternative.
type Message struct {
	To       string `json:"to"`
	ToName   string `json:"toName,omitempty"`
	Subject  string `json:"subject"`
	HTMLBody string `json:"htmlBody"`
	TextBody string `json:"textBody,omitempty"`
}

// Sender dispatches a message and returns the channel's message id.
type Sender interface {
	Send(ctx context.Context, msg Message) (string, error)
}

func formatAddress(name, addr string) string {
	if name == "" {
		return addr
	}
	return (&mail.Address{Name: name, Address: addr}).String()
}
