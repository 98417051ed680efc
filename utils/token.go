package utils

import "github.com/google/uuid"

// tokenLen is the length of the hyphenated 8-4-4-4-12 form.
const tokenLen = 36

// NewToken returns a fresh random (v4) UUID string. Used for session tokens and meal ids.
func NewToken() string {
	return uuid.NewString()
}

// CanonicalToken accepts only the hyphenated UUID form and returns it lowercased.
// urn:uuid:, braced and unhyphenated spellings are rejected.
func CanonicalToken(s string) (string, bool) {
	if len(s) != tokenLen {
		return "", false
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return "", false
	}
	return u.String(), true
}

// IsWellFormedToken reports whether s looks like a token we could have issued.
// It says nothing about whether the token was ever issued.
func IsWellFormedToken(s string) bool {
	_, ok := CanonicalToken(s)
	return ok
}
