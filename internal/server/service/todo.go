package service

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"github.com/riekert/todo/internal/database"
	"github.com/riekert/todo/internal/model"
)

// DefaultPageSize is the page size used when listing todos without limit.
const DefaultPageSize = 100

type (
	// A TodoService performs the owner-scoped operations on todos.
	TodoService struct {
		db       database.Client
		user     *model.User
		pageSize int
	}

	// A StringFilter holds conditions on a string field.
	StringFilter struct {
		Eq         *string
		Ne         *string
		Contains   *string
		BeginsWith *string
	}

	// A TodoFilter filters listed todos.
	TodoFilter struct {
		Owner       *StringFilter
		Description *StringFilter
	}

	// A ListParams selects a page of todos.
	ListParams struct {
		Filter    *TodoFilter
		Limit     *int32
		NextToken *string
	}

	// A TodoPage is a page of listed todos.
	TodoPage struct {
		Items     []*model.Todo
		NextToken *string
	}

	// CreateTodoParams are used to create a todo.
	CreateTodoParams struct {
		Name        *string
		Description *string
		Owner       *string
	}

	// UpdateTodoParams are used to update a todo.
	UpdateTodoParams struct {
		ID          string
		Description *string
	}
)

// A NotAuthorizedError is returned when the user acts on a todo owned by someone else.
type NotAuthorizedError struct {
	Field string
}

func (e *NotAuthorizedError) Error() string {
	return fmt.Sprintf("Not Authorized to access %s on type Todo", e.Field)
}

// Extensions are rendered along the error in GraphQL responses.
func (e *NotAuthorizedError) Extensions() map[string]any {
	return map[string]any{"errorType": "Unauthorized"}
}

// A ConditionalCheckError is returned when the todo to mutate does not exist.
type ConditionalCheckError struct{}

func (e *ConditionalCheckError) Error() string {
	return "The conditional request failed"
}

// Extensions are rendered along the error in GraphQL responses.
func (e *ConditionalCheckError) Extensions() map[string]any {
	return map[string]any{"errorType": "ConditionalCheckFailedException"}
}

// ErrConditionalCheck is returned when the todo to mutate does not exist.
var ErrConditionalCheck error = &ConditionalCheckError{}

var sequence sync.Mutex

// NewTodo returns a new TodoService acting for the given user.
func NewTodo(db database.Client, user *model.User, pageSize int) *TodoService {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	return &TodoService{
		db:       db,
		user:     user,
		pageSize: pageSize,
	}
}

// List returns a page of the user's todos matching the given filter.
// Todos of other owners are never returned, whatever the filter.
func (s *TodoService) List(params ListParams) (*TodoPage, error) {
	query := database.TodoQuery{
		Owner: s.user.Username,
		Limit: s.pageSize,
	}

	if params.Limit != nil && *params.Limit > 0 {
		query.Limit = int(*params.Limit)
	}

	if params.NextToken != nil && *params.NextToken != "" {
		after, err := decodeToken(*params.NextToken)
		if err != nil {
			return nil, err
		}
		query.After = after
	}

	if f := params.Filter; f != nil {
		if !s.ownerMatches(f.Owner) {
			return &TodoPage{Items: []*model.Todo{}}, nil
		}
		query.Description = f.Description.match()
	}

	todos, more, err := s.db.FindTodos(query)
	if err != nil {
		return nil, errors.Wrap(err, "could not list todos")
	}

	page := &TodoPage{Items: todos}
	if more && len(todos) > 0 {
		token := encodeToken(todos[len(todos)-1].Sequence)
		page.NextToken = &token
	}
	return page, nil
}

// Get returns the todo for the given id or nil if the user does not own it.
func (s *TodoService) Get(id string) (*model.Todo, error) {
	todo, err := s.db.FindTodo(id)
	if err != nil {
		if s.db.IsNotFound(err) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "could not get todo")
	}

	if todo.Owner != s.user.Username {
		return nil, &NotAuthorizedError{Field: "getTodo"}
	}
	return todo, nil
}

// Create creates a todo owned by the user.
func (s *TodoService) Create(params CreateTodoParams) (*model.Todo, error) {
	if params.Owner != nil && *params.Owner != s.user.Username {
		return nil, &NotAuthorizedError{Field: "createTodo"}
	}

	var description string
	if params.Description != nil {
		description = *params.Description
	}

	// The creation counter is shared by all the sessions of the owner.
	sequence.Lock()
	defer sequence.Unlock()

	owner, err := s.db.FindUser(s.user.ID)
	if err != nil {
		return nil, errors.Wrap(err, "could not get todo owner")
	}

	todo := model.NewTodo(owner, params.Name, description)
	if err := s.db.Save(owner); err != nil {
		return nil, errors.Wrap(err, "could not persist todo sequence")
	}
	s.user.Created = owner.Created

	if err := s.db.Save(todo); err != nil {
		return nil, errors.Wrap(err, "could not persist todo")
	}
	return todo, nil
}

// Update replaces the description of one of the user's todos.
func (s *TodoService) Update(params UpdateTodoParams) (*model.Todo, error) {
	todo, err := s.owned(params.ID, "updateTodo")
	if err != nil {
		return nil, err
	}

	if params.Description != nil {
		todo.Description = *params.Description
	}

	if err = s.db.Save(todo); err != nil {
		return nil, errors.Wrap(err, "could not persist todo")
	}
	return todo, nil
}

// Delete removes one of the user's todos and returns it.
func (s *TodoService) Delete(id string) (*model.Todo, error) {
	todo, err := s.owned(id, "deleteTodo")
	if err != nil {
		return nil, err
	}

	if err = s.db.Delete(todo); err != nil {
		return nil, errors.Wrap(err, "could not delete todo")
	}
	return todo, nil
}

func (s *TodoService) owned(id, field string) (*model.Todo, error) {
	todo, err := s.db.FindTodo(id)
	if err != nil {
		if s.db.IsNotFound(err) {
			return nil, ErrConditionalCheck
		}
		return nil, errors.Wrap(err, "could not get todo")
	}

	if todo.Owner != s.user.Username {
		return nil, &NotAuthorizedError{Field: field}
	}
	return todo, nil
}

// ownerMatches tells whether the user's own todos can satisfy the owner filter.
func (s *TodoService) ownerMatches(f *StringFilter) bool {
	if f == nil {
		return true
	}

	owner := s.user.Username
	switch {
	case f.Eq != nil && *f.Eq != owner:
		return false
	case f.Ne != nil && *f.Ne == owner:
		return false
	case f.Contains != nil && !strings.Contains(owner, *f.Contains):
		return false
	case f.BeginsWith != nil && !strings.HasPrefix(owner, *f.BeginsWith):
		return false
	}
	return true
}

func (f *StringFilter) match() *database.StringMatch {
	if f == nil {
		return nil
	}

	return &database.StringMatch{
		Eq:         f.Eq,
		Ne:         f.Ne,
		Contains:   f.Contains,
		BeginsWith: f.BeginsWith,
	}
}

func encodeToken(sequence int64) string {
	return base64.RawURLEncoding.EncodeToString([]byte(strconv.FormatInt(sequence, 10)))
}

func decodeToken(token string) (int64, error) {
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return 0, errors.New("Invalid nextToken")
	}

	sequence, err := strconv.ParseInt(string(raw), 10, 64)
	if err != nil {
		return 0, errors.New("Invalid nextToken")
	}
	return sequence, nil
}
