package api

import (
	"context"
	"strings"

	"ArmeriaCorpAdmin/api/auth"
)

// SessionFromCtx returns the validated session, or nil outside the
// session middleware.
func SessionFromCtx(ctx context.Context) *auth.UserSession {
	if s, ok := ctx.Value(SessionKey).(*auth.UserSession); ok {
		return s
	}
	return nil
}

// RequestedByFromCtx resolves the display name for audit trails.
func RequestedByFromCtx(ctx context.Context, userID string) string {
	if s := SessionFromCtx(ctx); s != nil {
		if strings.TrimSpace(s.Name) != "" {
			return s.Name
		}
		if strings.TrimSpace(s.UserID) != "" {
			return s.UserID
		}
	}
	for _, s := range auth.GetActiveSessions() {
		if s.UserID == userID {
			return s.Name
		}
	}
	return ""
}
