package session

import (
	"strings"

	"github.com/koustreak/duckgate/internal/errs"
)

const bearerPrefix = "Bearer "

// Unauthenticated messages returned to callers.
const (
	MsgMissingHeader  = "Missing authorization header"
	MsgInvalidFormat  = "Invalid authorization format"
	MsgInvalidSession = "Invalid or expired session"
)

// ParseBearer extracts the token from an Authorization header value.
func ParseBearer(header string) (string, error) {
	if header == "" {
		return "", errs.New(errs.ErrKindUnauthenticated, MsgMissingHeader)
	}
	token, ok := strings.CutPrefix(header, bearerPrefix)
	if !ok {
		return "", errs.New(errs.ErrKindUnauthenticated, MsgInvalidFormat)
	}
	if token = strings.TrimSpace(token); token == "" {
		return "", errs.New(errs.ErrKindUnauthenticated, MsgInvalidSession)
	}
	return token, nil
}
