package errors

import (
	"strings"
	"unicode"
)

// Length limits for caller-supplied identifiers.
const (
	MaxNodeIDLength    = 256
	MaxGraphNameLength = 128
)

// ValidateNodeID validates a course identifier sent by a caller.
//
// The validation rules are intentionally conservative:
//   - No empty IDs
//   - No control characters
//   - Maximum length of 256 bytes
//
// IDs end up in cache keys, DOT labels and JSON map keys, so anything that
// could break those encodings is rejected here.
func ValidateNodeID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidInput, "node id cannot be empty")
	}
	if len(id) > MaxNodeIDLength {
		return New(ErrCodeInvalidInput, "node id too long (max %d characters)", MaxNodeIDLength)
	}
	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "node id %q contains invalid control characters", id)
		}
	}
	return nil
}

// ValidateGraphName validates the display name of a saved graph.
// An empty name is allowed; callers substitute the default name.
func ValidateGraphName(name string) error {
	if len(name) > MaxGraphNameLength {
		return New(ErrCodeInvalidInput, "graph name too long (max %d characters)", MaxGraphNameLength)
	}
	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "graph name contains invalid control characters")
		}
	}
	return nil
}

// ValidatePassword enforces the minimum password policy for registration.
func ValidatePassword(password string) error {
	if len(password) < 8 {
		return New(ErrCodeInvalidInput, "password must be at least 8 characters")
	}
	// bcrypt silently ignores anything past 72 bytes
	if len(password) > 72 {
		return New(ErrCodeInvalidInput, "password too long (max 72 bytes)")
	}
	if strings.TrimSpace(password) == "" {
		return New(ErrCodeInvalidInput, "password cannot be blank")
	}
	return nil
}
