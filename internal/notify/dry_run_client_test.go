package notify

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDryRunClient_SendMessage(t *testing.T) {
	client, err := NewDryRunClient()
	require.NoError(t, err)

	err = client.SendMessage(context.Background(), Message{
		ToEmail: "ops@example.com",
		Subject: "refund initiated",
		Body:    "a refund was initiated for transaction tx_123",
	})
	assert.NoError(t, err)
	assert.Equal(t, MessengerTypeDryRun, client.MessengerType())
}
