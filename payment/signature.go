package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"

	"github.com/Raqibreyaz/EcommerceBackend/apperror"
)

// Sign returns hex(HMAC-SHA256(secret, orderRef + "|" + paymentRef)).
func Sign(secret, orderRef, paymentRef string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderRef + "|" + paymentRef))
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature fails with InvalidPaymentSignature unless signature matches Sign.
func VerifySignature(secret, orderRef, paymentRef, signature string) error {
	expected := Sign(secret, orderRef, paymentRef)
	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return apperror.InvalidPaymentSignature()
	}
	return nil
}
