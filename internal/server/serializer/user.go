package serializer

import "github.com/riekert/todo/internal/model"

// User serializes the render of a user.
func User(m *model.User) map[string]any {
	return map[string]any{
		"id":         m.ID,
		"username":   m.Username,
		"created_at": m.CreatedAt.UTC(),
	}
}
