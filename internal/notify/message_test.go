package notify

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMessage_Validate(t *testing.T) {
	testCases := []struct {
		name    string
		message Message
		wantErr bool
	}{
		{
			name:    "valid message",
			message: Message{ToEmail: "Ops@Example.com", Subject: "refund initiated", Body: "a refund was initiated"},
			wantErr: false,
		},
		{
			name:    "invalid email",
			message: Message{ToEmail: "not-an-email", Subject: "x", Body: "y"},
			wantErr: true,
		},
		{
			name:    "empty subject",
			message: Message{ToEmail: "ops@example.com", Subject: "  ", Body: "y"},
			wantErr: true,
		},
		{
			name:    "empty body",
			message: Message{ToEmail: "ops@example.com", Subject: "x", Body: " "},
			wantErr: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.message.Validate()
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestMessage_Validate_SanitizesEmail(t *testing.T) {
	m := Message{ToEmail: "  Ops@Example.com  ", Subject: "x", Body: "y"}
	err := m.Validate()
	assert.NoError(t, err)
	assert.Equal(t, "ops@example.com", m.ToEmail)
}
