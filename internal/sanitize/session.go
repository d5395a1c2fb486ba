package sanitize

import (
	"fmt"
	"regexp"
)

// UnknownSession stands in for a missing or malformed session ID.
const UnknownSession = "unknown"

// sessionIDPattern also keeps IDs safe as a single directory name.
var sessionIDPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]{1,64}$`)

// ValidateSessionID checks that id is 1-64 characters of [a-zA-Z0-9_-].
func ValidateSessionID(id string) error {
	if id == "" {
		return fmt.Errorf("%w: empty", ErrInvalidSessionID)
	}
	if !sessionIDPattern.MatchString(id) {
		return fmt.Errorf("%w: must be 1-64 characters of letters, digits, '_' or '-'", ErrInvalidSessionID)
	}
	return nil
}

// SessionID returns id when it is valid and UnknownSession otherwise.
func SessionID(id string) string {
	if ValidateSessionID(id) != nil {
		return UnknownSession
	}
	return id
}
