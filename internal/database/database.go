package database

import (
	"github.com/riekert/todo/internal/model"
)

type (
	// A Client can interacts with the database.
	Client interface {
		// Save inserts or updates the entry in database with the given model.
		Save(m model.Model) error
		// Delete deletes the entry in database with the given model.
		Delete(m model.Model) error
		// Close the database.
		Close() error
		// IsNotFound returns true if err is a not found error.
		IsNotFound(err error) bool
		// IsAlreadyExists returns true if err is an unique constraint error.
		IsAlreadyExists(err error) bool

		UserInteraction
		SessionInteraction
		TodoInteraction
	}

	// An UserInteraction defines all the methods used to interact with a user record.
	UserInteraction interface {
		// FindUser returns the user for the given id (UUID).
		FindUser(id string) (*model.User, error)
		// FindUserByUsername returns the user for the given username.
		FindUserByUsername(username string) (*model.User, error)
	}

	// An SessionInteraction defines all the methods used to interact with a session record.
	SessionInteraction interface {
		// FindSession returns the session for the given id (UUID).
		FindSession(id string) (*model.Session, error)
		// FindSessionByUserID returns the session for the given id and user id.
		FindSessionByUserID(id, userID string) (*model.Session, error)
		// FindSessionByRefreshToken returns the session for the given id and refresh token.
		FindSessionByRefreshToken(id, token string) (*model.Session, error)
		// FindActiveSessionsByUserID returns all active sessions for the given user id.
		FindActiveSessionsByUserID(userID string) ([]*model.Session, error)
	}

	// A TodoInteraction defines all the methods used to interact with todo record(s).
	TodoInteraction interface {
		// FindTodo returns the todo for the given id (UUID).
		FindTodo(id string) (*model.Todo, error)
		// FindTodos returns the owner's todos matching the given query, ordered by creation.
		// It also returns a boolean to true if there is more todos than the query's limit.
		FindTodos(query TodoQuery) ([]*model.Todo, bool, error)
	}

	// A TodoQuery selects a page of an owner's todos.
	TodoQuery struct {
		Owner string
		// After excludes the todos whose sequence is lower or equal.
		After int64
		// Limit equals to 0 means all todos.
		Limit       int
		Description *StringMatch
	}

	// A StringMatch is a set of conditions on a string field.
	// Unset conditions are ignored.
	StringMatch struct {
		Eq         *string
		Ne         *string
		Contains   *string
		BeginsWith *string
	}
)
