package utils

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// CallbackToken derives the token the workflow engine must present on the
// session callback route. It is an HMAC over the session id, so a token is
// only valid for the session it was issued for.
func CallbackToken(secret, sessionID string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(sessionID))
	return hex.EncodeToString(mac.Sum(nil))
}

func VerifyCallbackToken(secret, sessionID, token string) bool {
	want := CallbackToken(secret, sessionID)
	return hmac.Equal([]byte(want), []byte(token))
}
