package notify

import (
	"fmt"
	"strings"

	"github.com/bitstarkbridge/aframp-backend/internal/utils"
)

// Message is an outbound transactional notification, e.g. a refund-initiated
// or transaction-completed alert sent to an operator mailbox.
type Message struct {
	ToEmail string
	Subject string
	Body    string
}

// Validate checks that the message has everything needed to be sent by an
// email-only MessengerClient.
func (m *Message) Validate() error {
	sanitizedEmail, err := utils.SanitizeAndValidateEmail(m.ToEmail)
	if err != nil {
		return fmt.Errorf("invalid e-mail: %w", err)
	}
	m.ToEmail = sanitizedEmail

	if strings.TrimSpace(m.Subject) == "" {
		return fmt.Errorf("subject is empty")
	}

	if strings.TrimSpace(m.Body) == "" {
		return fmt.Errorf("message body is empty")
	}

	return nil
}

func (m *Message) String() string {
	return fmt.Sprintf("Message{ToEmail: %s, Subject: %s, Body: %s}",
		utils.TruncateString(m.ToEmail, 3),
		utils.TruncateString(m.Subject, 3),
		utils.TruncateString(m.Body, 3))
}
