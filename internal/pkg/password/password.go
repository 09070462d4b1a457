package password

import (
	"golang.org/x/crypto/bcrypt"
)

// MinLength is the shortest password accepted for new accounts.
const MinLength = 6

const cost = 12

// Hash hashes password using bcrypt
func Hash(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	return string(bytes), err
}

// Verify compares password with hash
func Verify(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// LongEnough reports whether password meets MinLength.
func LongEnough(password string) bool {
	return len([]rune(password)) >= MinLength
}
