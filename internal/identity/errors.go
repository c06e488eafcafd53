package identity

import "errors"

var (
	ErrInvalidGender   = errors.New("identity: invalid gender")
	ErrInvalidRole     = errors.New("identity: invalid role")
	ErrInvalidProvider = errors.New("identity: unknown provider")
)
