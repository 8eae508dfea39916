package libtodo

import "time"

type (
	// A Todo is a todo item stored by the service.
	Todo struct {
		ID          string    `json:"id"`
		Name        *string   `json:"name"`
		Description string    `json:"description"`
		Owner       string    `json:"owner"`
		CreatedAt   time.Time `json:"createdAt"`
		UpdatedAt   time.Time `json:"updatedAt"`
	}

	// A TodoConnection is a page of listed todos.
	TodoConnection struct {
		Items     []*Todo `json:"items"`
		NextToken *string `json:"nextToken"`
	}

	// A StringFilter holds conditions on a string field.
	StringFilter struct {
		Eq         *string `json:"eq,omitempty"`
		Ne         *string `json:"ne,omitempty"`
		Contains   *string `json:"contains,omitempty"`
		BeginsWith *string `json:"beginsWith,omitempty"`
	}

	// A TodoFilter filters listed todos.
	TodoFilter struct {
		Owner       *StringFilter `json:"owner,omitempty"`
		Description *StringFilter `json:"description,omitempty"`
	}

	// ListTodosParams select a page of todos.
	ListTodosParams struct {
		Filter    *TodoFilter
		Limit     int
		NextToken string
	}

	// CreateTodoInput is used to create a todo.
	CreateTodoInput struct {
		Name        *string `json:"name,omitempty"`
		Description *string `json:"description,omitempty"`
		Owner       *string `json:"owner,omitempty"`
	}

	// UpdateTodoInput is used to update the description of a todo.
	UpdateTodoInput struct {
		ID          string  `json:"id"`
		Description *string `json:"description"`
	}
)

// DisplayName returns the name of the todo or an empty string.
func (t Todo) DisplayName() string {
	if t.Name == nil {
		return ""
	}
	return *t.Name
}

// String returns a pointer to the given string.
func String(s string) *string {
	return &s
}
