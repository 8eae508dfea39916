package client

import (
	"context"

	"github.com/riekert/todo/internal/todo"
	"github.com/riekert/todo/pkg/libtodo"
)

type remote struct {
	client libtodo.Client
	auth   *Authenticator
}

// NewRemote returns the todo service as seen by the synchronizer.
// The session is refreshed before each call.
func NewRemote(client libtodo.Client, auth *Authenticator) todo.Remote {
	return &remote{
		client: client,
		auth:   auth,
	}
}

func (r *remote) List(ctx context.Context, owner string) ([]todo.Item, error) {
	if err := r.auth.Refresh(ctx); err != nil {
		return nil, err
	}

	todos, err := r.client.ListTodos(ctx, &libtodo.TodoFilter{
		Owner: &libtodo.StringFilter{Eq: libtodo.String(owner)},
	})
	if err != nil {
		return nil, err
	}

	items := make([]todo.Item, len(todos))
	for i, t := range todos {
		items[i] = item(&t)
	}
	return items, nil
}

func (r *remote) Create(ctx context.Context, description, owner string) (todo.Item, error) {
	if err := r.auth.Refresh(ctx); err != nil {
		return todo.Item{}, err
	}

	t, err := r.client.CreateTodo(ctx, libtodo.CreateTodoInput{
		Description: libtodo.String(description),
		Owner:       libtodo.String(owner),
	})
	if err != nil {
		return todo.Item{}, err
	}
	return item(t), nil
}

func (r *remote) Update(ctx context.Context, id, description string) (todo.Item, error) {
	if err := r.auth.Refresh(ctx); err != nil {
		return todo.Item{}, err
	}

	t, err := r.client.UpdateTodo(ctx, libtodo.UpdateTodoInput{
		ID:          id,
		Description: libtodo.String(description),
	})
	if err != nil {
		return todo.Item{}, err
	}
	return item(t), nil
}

func (r *remote) Delete(ctx context.Context, id string) error {
	if err := r.auth.Refresh(ctx); err != nil {
		return err
	}

	_, err := r.client.DeleteTodo(ctx, id)
	return err
}

func item(t *libtodo.Todo) todo.Item {
	return todo.Item{
		ID:          t.ID,
		Name:        t.Name,
		Description: t.Description,
		Owner:       t.Owner,
	}
}
