// Package todo keeps the authenticated user's todo list in memory and mirrors it against the remote service.
package todo

import (
	"context"

	"github.com/pkg/errors"
)

type (
	// An Item is a todo item of the local list.
	Item struct {
		ID          string  `json:"id"`
		Name        *string `json:"name"`
		Description string  `json:"description"`
		Owner       string  `json:"owner"`
	}

	// An Identity provides the authenticated user.
	Identity interface {
		// CurrentUser returns the username of the authenticated user.
		CurrentUser(ctx context.Context) (string, error)
	}

	// A Remote persists todo items. All calls are authenticated with the current user's session.
	Remote interface {
		// List returns all the items owned by the given user.
		List(ctx context.Context, owner string) ([]Item, error)
		// Create creates an item owned by the given user.
		Create(ctx context.Context, description, owner string) (Item, error)
		// Update replaces the description of an item.
		Update(ctx context.Context, id, description string) (Item, error)
		// Delete deletes an item.
		Delete(ctx context.Context, id string) error
	}
)

// A Policy defines how local state is reconciled after a successful mutation.
type Policy string

const (
	// PolicyLocal applies the mutation response to the local list.
	PolicyLocal Policy = "local"
	// PolicyRefetch fetches the whole list again after each mutation.
	PolicyRefetch Policy = "refetch"
)

// ParsePolicy returns the policy for the given name. An empty name is PolicyLocal.
func ParsePolicy(name string) (Policy, error) {
	switch Policy(name) {
	case "", PolicyLocal:
		return PolicyLocal, nil
	case PolicyRefetch:
		return PolicyRefetch, nil
	default:
		return "", errors.Errorf("unsupported reconcile policy: %s", name)
	}
}

// DisplayName returns the name of the item or an empty string.
func (i Item) DisplayName() string {
	if i.Name == nil {
		return ""
	}
	return *i.Name
}
