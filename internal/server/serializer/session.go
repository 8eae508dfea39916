package serializer

import (
	"time"

	"github.com/riekert/todo/internal/model"
)

// Session serializes the credentials of a session.
func Session(m *model.Session, access string, accessExpiration time.Time) map[string]any {
	return map[string]any{
		"access_token":       access,
		"refresh_token":      m.RefreshToken,
		"access_expiration":  accessExpiration.UTC(),
		"refresh_expiration": m.ExpireAt.UTC(),
	}
}

// Sessions serializes the render of sessions.
// Tokens are never rendered.
func Sessions(m []*model.Session) []map[string]any {
	sessions := make([]map[string]any, len(m))
	for i, s := range m {
		sessions[i] = map[string]any{
			"id":         s.ID,
			"created_at": s.CreatedAt,
			"updated_at": s.UpdatedAt,
			"user_agent": s.UserAgent,
			"current":    s.Current,
		}
	}
	return sessions
}
