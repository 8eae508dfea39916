package client

import (
	"context"
)

// Logout disconnects from a todo service.
func Logout(ctx context.Context) error {
	w, err := open()
	if err != nil {
		return err
	}

	// The session may need a refresh before being terminated.
	if err = w.Auth.Refresh(ctx); err != nil {
		return err
	}

	return w.Auth.SignOut(ctx)
}
