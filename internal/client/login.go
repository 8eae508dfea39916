package client

import (
	"context"
	"fmt"

	"github.com/chzyer/readline"
	"github.com/pkg/errors"
	"github.com/riekert/todo/pkg/libtodo"
)

// Login connects to a todo service.
func Login(ctx context.Context) error {
	return prompt(ctx, false)
}

// Signup registers a new user on a todo service and connects to it.
func Signup(ctx context.Context) error {
	return prompt(ctx, true)
}

func prompt(ctx context.Context, register bool) error {
	e, err := LoadEnvironment()
	if err != nil {
		return err
	}

	endpoint, err := readline.Line("Endpoint: ")
	if err != nil {
		return errors.Wrap(err, "could not read endpoint from stdin")
	}

	username, err := readline.Line("Username: ")
	if err != nil {
		return errors.Wrap(err, "could not read username from stdin")
	}

	password, err := readline.Password("Password: ")
	if err != nil {
		return errors.Wrap(err, "could not read password from stdin")
	}

	if err = Authenticate(ctx, NewStore(e), endpoint, username, string(password), register); err != nil {
		return err
	}

	fmt.Println("Logged in as", username)
	return nil
}

// Authenticate signs in (or signs up when register is true) and stores the resulting credentials.
func Authenticate(ctx context.Context, store *Store, endpoint, username, password string, register bool) error {
	client, err := libtodo.NewDefaultClient(endpoint)
	if err != nil {
		return errors.Wrap(err, "could not reach given endpoint")
	}

	if register {
		err = client.SignUp(ctx, username, password)
		if err != nil {
			return errors.Wrap(err, "could not sign up")
		}
	} else {
		err = client.Login(ctx, username, password)
		if err != nil {
			return errors.Wrap(err, "could not login")
		}
	}

	cfg := Config{
		Endpoint: endpoint,
		Session:  client.Session(),
	}

	// The service may normalize the username.
	cfg.Username, err = client.Me(ctx)
	if err != nil {
		return errors.Wrap(err, "could not get current user")
	}

	return store.Save(cfg)
}
