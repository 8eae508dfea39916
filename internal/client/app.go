package client

import (
	"context"
	"fmt"
	"runtime"

	"github.com/pkg/errors"
	"github.com/riekert/todo/internal/client/tui"
)

// App runs the text-based todo application.
func App(ctx context.Context) error {
	w, err := open()
	if err != nil {
		return err
	}

	logger := tui.NewLogger(w.Environment.Log)
	defer func() {
		if r := recover(); r != nil {
			var err error
			switch r := r.(type) {
			case error:
				err = r
			default:
				err = fmt.Errorf("%v", r)
			}
			stack := make([]byte, 4<<10)
			length := runtime.Stack(stack, true)

			logger.Printf("[PANIC RECOVER] %s %s\n", err, stack[:length])
		}
	}()

	// Refreshes the session before the screen is owned by the UI.
	username, err := w.Auth.CurrentUser(ctx)
	if err != nil {
		return errors.Wrap(err, "could not get current user")
	}

	sync, err := w.Synchronizer(logger)
	if err != nil {
		return err
	}

	ui, err := tui.New(ctx, tui.Options{
		Username:     username,
		Synchronizer: sync,
		SignOut:      w.Auth.SignOut,
		Logger:       logger,
	})
	if err != nil {
		return err
	}
	defer ui.Cleanup()

	ui.Run()
	return nil
}
