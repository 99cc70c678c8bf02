// Package email defines the outbound-mail boundary of the server and the
// messages the auth flows send through it.
package email

import (
	"context"
	"fmt"
)

// Message is a plain-text email ready for delivery.
type Message struct {
	To      string
	Subject string
	Body    string
}

// Sender delivers messages. Implementations must be safe for concurrent use;
// sends happen on background goroutines off the request path.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// ConfirmationMessage builds the email-verification message. link embeds a
// fresh email-action token.
func ConfirmationMessage(to, username, link string) Message {
	return Message{
		To:      to,
		Subject: "Confirm your email",
		Body: fmt.Sprintf(
			"Hello %s,\n\nPlease confirm your email address by opening the link below:\n\n%s\n\nIf you did not sign up, ignore this message.\n",
			username, link),
	}
}

// PasswordResetMessage builds the password-reset request message.
func PasswordResetMessage(to, username, link string) Message {
	return Message{
		To:      to,
		Subject: "Reset your credentials",
		Body: fmt.Sprintf(
			"Hello %s,\n\nA password reset was requested for your account. Open the link below to continue:\n\n%s\n\nIf you did not request this, ignore this message.\n",
			username, link),
	}
}

// NewPasswordMessage delivers the freshly generated password after a reset
// token was consumed. This is the only channel the plaintext travels through.
func NewPasswordMessage(to, username, password string) Message {
	return Message{
		To:      to,
		Subject: "Your New Credentials",
		Body: fmt.Sprintf(
			"Hello %s,\n\nYour password has been reset. Your new password is:\n\n%s\n\nPlease log in and change it as soon as possible.\n",
			username, password),
	}
}
