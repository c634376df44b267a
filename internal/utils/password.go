package utils

import "golang.org/x/crypto/bcrypt"

// MinPasswordLen matches the registration form's client-side rule.
const MinPasswordLen = 8

func HashPassword(password string) (string, error) {
	if len(password) < MinPasswordLen {
		return "", E(CodeInvalidArgument, "utils.HashPassword", "password too short", nil)
	}
	b, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(b), err
}

func CheckPassword(hash, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}
