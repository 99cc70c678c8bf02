package email

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfirmationMessage(t *testing.T) {
	msg := ConfirmationMessage("a@x.com", "agent007", "http://host/auth/confirm-email/tok123")

	assert.Equal(t, "a@x.com", msg.To)
	assert.Equal(t, "Confirm your email", msg.Subject)
	assert.Contains(t, msg.Body, "agent007")
	assert.Contains(t, msg.Body, "http://host/auth/confirm-email/tok123")
}

func TestPasswordResetMessage(t *testing.T) {
	msg := PasswordResetMessage("a@x.com", "agent007", "http://host/auth/reset-password?token=tok123")

	assert.Contains(t, msg.Body, "http://host/auth/reset-password?token=tok123")
	assert.Equal(t, "Reset your credentials", msg.Subject)
}

func TestNewPasswordMessage_CarriesPlaintext(t *testing.T) {
	msg := NewPasswordMessage("a@x.com", "agent007", "s3cretPW9xyz")

	assert.Contains(t, msg.Body, "s3cretPW9xyz")
	assert.Equal(t, "Your New Credentials", msg.Subject)
}

func TestMemorySender_CollectsInOrder(t *testing.T) {
	s := NewMemorySender()

	require.NoError(t, s.Send(context.Background(), Message{To: "1@x.com", Subject: "a"}))
	require.NoError(t, s.Send(context.Background(), Message{To: "2@x.com", Subject: "b"}))

	sent := s.Sent()
	require.Len(t, sent, 2)
	assert.Equal(t, "1@x.com", sent[0].To)
	assert.Equal(t, "2@x.com", sent[1].To)
}

func TestSMTPSender_CancelledContext(t *testing.T) {
	s := NewSMTPSender("smtp.example.com", 465, "u", "p", "from@x.com")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := s.Send(ctx, Message{To: "a@x.com"})
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "context canceled"))
}
