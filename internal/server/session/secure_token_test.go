package session_test

import (
	"regexp"
	"testing"

	"github.com/riekert/todo/internal/server/session"
	"github.com/stretchr/testify/assert"
)

func TestSecureToken(t *testing.T) {
	assert.Panics(t, func() { session.SecureToken(-1) })
	assert.Len(t, session.SecureToken(24), 24)
	assert.Regexp(t, regexp.MustCompile(`^[1-9A-HJ-NP-Za-km-z]+$`), session.SecureToken(24))

	n := 4096
	h := make(map[string]bool, n)
	for i := 0; i < n; i++ {
		h[session.SecureToken(24)] = true
	}
	assert.Len(t, h, n, "tokens must be unique")
}

func TestSecureCompare(t *testing.T) {
	assert.True(t, session.SecureCompare("refresh42", "refresh42"))
	assert.False(t, session.SecureCompare("refresh42", "refresh43"))
}
