package client

import (
	"os"

	"github.com/pkg/errors"
	"github.com/riekert/todo/internal/todo"
	"github.com/riekert/todo/pkg/libtodo"
	"github.com/sirupsen/logrus"
)

// A Workspace gathers everything needed to talk to the todo service on behalf of the signed in user.
type Workspace struct {
	Environment Environment
	Store       *Store
	Config      Config
	Client      libtodo.Client
	Auth        *Authenticator
}

// Open loads the credentials described by the environment and connects a client to their endpoint.
func Open(e Environment) (*Workspace, error) {
	store := NewStore(e)

	cfg, err := store.Load()
	if err != nil {
		return nil, errors.Wrap(err, "could not load config (are you logged in?)")
	}

	client, err := libtodo.NewDefaultClient(cfg.Endpoint)
	if err != nil {
		return nil, errors.Wrap(err, "could not reach todo endpoint")
	}

	if !cfg.Session.Defined() {
		return nil, errors.New("session is not defined, please login again")
	}

	return &Workspace{
		Environment: e,
		Store:       store,
		Config:      cfg,
		Client:      client,
		Auth:        NewAuthenticator(client, store, cfg),
	}, nil
}

// Synchronizer returns a todo synchronizer backed by the workspace's client.
func (w *Workspace) Synchronizer(log logrus.FieldLogger) (*todo.Synchronizer, error) {
	policy, err := todo.ParsePolicy(w.Environment.Reconcile)
	if err != nil {
		return nil, err
	}

	return todo.New(w.Auth, NewRemote(w.Client, w.Auth), log, policy), nil
}

func open() (*Workspace, error) {
	e, err := LoadEnvironment()
	if err != nil {
		return nil, err
	}
	return Open(e)
}

// newLogger returns the logger of the one-shot commands.
func newLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stderr)
	log.SetLevel(logrus.WarnLevel)
	log.SetFormatter(&logrus.TextFormatter{
		DisableTimestamp: true,
	})
	return log
}
