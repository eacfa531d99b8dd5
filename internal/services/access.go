package services

import (
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// HashSharePassword hashes a share password if one was supplied.
// A blank password means the link is public and nil is returned.
func HashSharePassword(password string) (*string, error) {
	if strings.TrimSpace(password) == "" {
		return nil, nil
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	s := string(hashed)
	return &s, nil
}

// CheckAccess gates a password-protected resource. Both the direct file
// path and the bundle path call this with their own stored hash, so the
// two never diverge. A nil hash means the resource is public.
func CheckAccess(hash *string, supplied string) error {
	if hash == nil {
		return nil
	}
	if supplied == "" {
		return ErrPasswordRequired
	}
	if bcrypt.CompareHashAndPassword([]byte(*hash), []byte(supplied)) != nil {
		return ErrWrongPassword
	}
	return nil
}
