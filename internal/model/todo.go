package model

import "fmt"

// A Todo represents a database record.
type Todo struct {
	Base `msgpack:",inline" codec:",inline" storm:"inline"`

	Owner       string  `msgpack:"owner"       codec:"owner"       storm:"index"`
	Sequence    int64   `msgpack:"sequence"    codec:"sequence"    storm:"index"`
	Name        *string `msgpack:"name"        codec:"name"`
	Description string  `msgpack:"description" codec:"description"`
}

// NewTodo returns a new todo owned by the given user.
// It consumes one slot of the user's creation counter, which the caller must persist.
func NewTodo(owner *User, name *string, description string) *Todo {
	owner.Created++
	if name == nil {
		n := fmt.Sprintf("Todo #%d", owner.Created)
		name = &n
	}

	return &Todo{
		Owner:       owner.Username,
		Sequence:    owner.Created,
		Name:        name,
		Description: description,
	}
}
