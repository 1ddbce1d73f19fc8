package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// Verifier checks checkout signatures: hex HMAC-SHA256 of
// "gatewayOrderID|paymentID" under the key secret.
type Verifier struct {
	secret []byte
}

func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: []byte(secret)}
}

func (v *Verifier) Sign(gatewayOrderID, paymentID string) string {
	mac := hmac.New(sha256.New, v.secret)
	mac.Write([]byte(gatewayOrderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify compares signature with the expected one byte for byte in
// constant time.
func (v *Verifier) Verify(gatewayOrderID, paymentID, signature string) bool {
	return hmac.Equal([]byte(v.Sign(gatewayOrderID, paymentID)), []byte(signature))
}
