package auth

import (
	"regexp"

	"golang.org/x/crypto/bcrypt"
)

// HashPassword returns a salted bcrypt hash of the plain-text password.
func HashPassword(plain string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	return string(bytes), err
}

// CheckPassword compares a bcrypt hash against the plain-text candidate.
func CheckPassword(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}

var (
	lowerRE   = regexp.MustCompile(`[a-z]`)
	upperRE   = regexp.MustCompile(`[A-Z]`)
	digitRE   = regexp.MustCompile(`\d`)
	specialRE = regexp.MustCompile(`[!@#$%^&*(),.?":{}|<>]`)
)

// PasswordRequirements is the message shown when StrongPassword fails.
const PasswordRequirements = "Password must be at least 8 characters long and include " +
	"one uppercase letter, one lowercase letter, one number, and one special character."

// StrongPassword reports whether p has at least 8 characters with one lower,
// one upper, one digit and one special character.
func StrongPassword(p string) bool {
	return len(p) >= 8 &&
		lowerRE.MatchString(p) &&
		upperRE.MatchString(p) &&
		digitRE.MatchString(p) &&
		specialRE.MatchString(p)
}
