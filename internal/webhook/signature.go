package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// VerifySignature checks an inbound webhook's HMAC-SHA256 signature
// against the shared secret configured for provider. The corpus's
// provider clients (flutterwave, paystack, mpesa) each compute an
// outbound Authorization header from a shared secret; this is the same
// primitive inverted for an inbound check. There is no ecosystem
// substitute for crypto/hmac here — it is the primitive itself, not a
// convenience wrapper a third-party library would meaningfully improve
// on.
func VerifySignature(secret string, payload []byte, signatureHex string) bool {
	if secret == "" || signatureHex == "" {
		return false
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	expected := mac.Sum(nil)

	got, err := hex.DecodeString(signatureHex)
	if err != nil {
		return false
	}

	return hmac.Equal(expected, got)
}
