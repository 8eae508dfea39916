package client

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/riekert/todo/pkg/libtodo"
)

// refreshMargin is how long before its expiration the access token is refreshed.
const refreshMargin = time.Minute

// An Authenticator provides the identity of the signed in user and keeps its session fresh.
type Authenticator struct {
	mu     sync.Mutex
	client libtodo.Client
	store  *Store
	cfg    Config
}

// NewAuthenticator returns a new Authenticator for the given credentials.
func NewAuthenticator(client libtodo.Client, store *Store, cfg Config) *Authenticator {
	client.SetSession(cfg.Session)

	return &Authenticator{
		client: client,
		store:  store,
		cfg:    cfg,
	}
}

// CurrentUser returns the username of the signed in user.
func (a *Authenticator) CurrentUser(ctx context.Context) (string, error) {
	if err := a.Refresh(ctx); err != nil {
		return "", err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	return a.cfg.Username, nil
}

// Refresh refreshes the session if the access token expires soon and persists it.
func (a *Authenticator) Refresh(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.cfg.Session.AccessExpiredAt(time.Now().Add(refreshMargin)) {
		return nil
	}

	if a.cfg.Session.RefreshExpired() {
		return errors.New("session has expired, please login again")
	}

	session, err := a.client.RefreshSession(ctx, a.cfg.Session.AccessToken, a.cfg.Session.RefreshToken)
	if err != nil {
		return errors.Wrap(err, "could not refresh session")
	}
	a.cfg.Session = *session
	a.client.SetSession(a.cfg.Session)

	err = a.store.Save(a.cfg)
	return errors.Wrap(err, "could not save refreshed session")
}

// SignOut terminates the session and removes the credentials.
func (a *Authenticator) SignOut(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.client.Logout(ctx); err != nil {
		return errors.Wrap(err, "could not logout")
	}

	return errors.Wrap(a.store.Remove(), "could not remove credentials file")
}
