package service

import "golang.org/x/crypto/bcrypt"

// bcryptCost trades login latency for brute-force resistance. 12 keeps
// a single verify in the tens of milliseconds on current hardware.
const bcryptCost = 12

// HashPassword returns a salted bcrypt hash of the plaintext password.
func HashPassword(plaintext string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plaintext), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// VerifyPassword reports whether plaintext matches the stored hash,
// using bcrypt's own constant-time comparison.
func VerifyPassword(plaintext, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)) == nil
}
