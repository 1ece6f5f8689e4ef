package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
)

func sign(secret string, payload []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

func TestVerifySignature(t *testing.T) {
	payload := []byte(`{"event":"transfer.success"}`)

	assert.True(t, VerifySignature("shared-secret", payload, sign("shared-secret", payload)))
	assert.False(t, VerifySignature("shared-secret", payload, sign("wrong-secret", payload)))
	assert.False(t, VerifySignature("", payload, sign("shared-secret", payload)))
	assert.False(t, VerifySignature("shared-secret", payload, ""))
	assert.False(t, VerifySignature("shared-secret", payload, "not-hex"))
}
