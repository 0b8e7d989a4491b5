package usecase

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// VerifySignature checks that the checkout confirmation genuinely originated
// from the gateway: the signature must equal the hex-encoded HMAC-SHA256 of
// "<orderID>|<paymentID>" under the merchant key secret.
//
// The comparison is constant-time. No normalization is applied to either side.
func VerifySignature(orderID, paymentID, signature, secret string) bool {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}
