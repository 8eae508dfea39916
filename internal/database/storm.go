package database

import (
	"regexp"
	"time"

	"github.com/asdine/storm/v3"
	"github.com/asdine/storm/v3/q"
	"github.com/gofrs/uuid"
	"github.com/pkg/errors"
	"github.com/riekert/todo/internal/model"
)

type strm struct {
	db *storm.DB
}

// StormInit initializes Storm database.
func StormInit(database, codec string) error {
	db, err := open(database, codec)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.Init(&model.User{}); err != nil {
		return errors.Wrap(err, "could not init user index")
	}

	if err := db.Init(&model.Session{}); err != nil {
		return errors.Wrap(err, "could not init session index")
	}

	err = db.Init(&model.Todo{})
	return errors.Wrap(err, "could not init todo index")
}

// StormReIndex reindex Storm database.
func StormReIndex(database, codec string) error {
	db, err := open(database, codec)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.ReIndex(&model.User{}); err != nil {
		return errors.Wrap(err, "could not ReIndex users")
	}

	if err := db.ReIndex(&model.Session{}); err != nil {
		return errors.Wrap(err, "could not ReIndex sessions")
	}

	err = db.ReIndex(&model.Todo{})
	return errors.Wrap(err, "could not ReIndex todos")
}

// StormOpen returns a new Storm database connection.
func StormOpen(database, codec string) (Client, error) {
	db, err := open(database, codec)
	if err != nil {
		return nil, err
	}

	return &strm{
		db: db,
	}, nil
}

func open(database, name string) (*storm.DB, error) {
	c, err := Codec(name)
	if err != nil {
		return nil, err
	}

	db, err := storm.Open(database, storm.Codec(c))
	return db, errors.Wrap(err, "could not get database connection")
}

// Save inserts or updates the entry in database with the given model.
func (c *strm) Save(m model.Model) error {
	t := time.Now().UTC()
	m.SetUpdatedAt(t)

	if m.GetID() == "" {
		m.SetID(uuid.Must(uuid.NewV4()).String())
		m.SetCreatedAt(t)
	}

	return errors.Wrap(c.db.Save(m), "could not save the model")
}

// Delete deletes the entry in database with the given model.
func (c *strm) Delete(m model.Model) error {
	return errors.Wrap(c.db.DeleteStruct(m), "could not delete the model")
}

// Close the database.
func (c *strm) Close() error {
	return c.db.Close()
}

// IsNotFound returns true if err is a not found error.
func (c *strm) IsNotFound(err error) bool {
	return errors.Cause(err) == storm.ErrNotFound
}

// IsAlreadyExists returns true if err is an unique constraint error.
func (c *strm) IsAlreadyExists(err error) bool {
	return errors.Cause(err) == storm.ErrAlreadyExists
}

// FindUser returns the user for the given id (UUID).
func (c *strm) FindUser(id string) (*model.User, error) {
	var user model.User
	if err := c.db.One("ID", id, &user); err != nil {
		return nil, errors.Wrap(err, "find user by id")
	}
	return &user, nil
}

// FindUserByUsername returns the user for the given username.
func (c *strm) FindUserByUsername(username string) (*model.User, error) {
	var user model.User
	if err := c.db.One("Username", username, &user); err != nil {
		return nil, errors.Wrap(err, "find user by username")
	}
	return &user, nil
}

// FindSession returns the session for the given id (UUID).
func (c *strm) FindSession(id string) (*model.Session, error) {
	var session model.Session
	if err := c.db.One("ID", id, &session); err != nil {
		return nil, errors.Wrap(err, "find session by id")
	}
	return &session, nil
}

// FindSessionByUserID returns the session for the given id and user id.
func (c *strm) FindSessionByUserID(id, userID string) (*model.Session, error) {
	var session model.Session
	err := c.db.Select(q.Eq("ID", id), q.Eq("UserID", userID)).First(&session)
	if err != nil {
		return nil, errors.Wrap(err, "find session by id and user id")
	}
	return &session, nil
}

// FindSessionByRefreshToken returns the session for the given id and refresh token.
func (c *strm) FindSessionByRefreshToken(id, token string) (*model.Session, error) {
	var session model.Session
	err := c.db.Select(q.Eq("ID", id), q.Eq("RefreshToken", token)).First(&session)
	if err != nil {
		return nil, errors.Wrap(err, "find session by refresh token")
	}
	return &session, nil
}

// FindActiveSessionsByUserID returns all active sessions for the given user id.
func (c *strm) FindActiveSessionsByUserID(userID string) ([]*model.Session, error) {
	sessions := make([]*model.Session, 0)
	err := c.db.Select(q.Eq("UserID", userID), q.Gt("ExpireAt", time.Now())).OrderBy("CreatedAt").Find(&sessions)
	if err != nil && !c.IsNotFound(err) {
		return nil, errors.Wrap(err, "could not find sessions by user id")
	}
	return sessions, nil
}

// FindTodo returns the todo for the given id (UUID).
func (c *strm) FindTodo(id string) (*model.Todo, error) {
	var todo model.Todo
	if err := c.db.One("ID", id, &todo); err != nil {
		return nil, errors.Wrap(err, "could not find todo")
	}
	return &todo, nil
}

// FindTodos returns the owner's todos matching the given query, ordered by creation.
// It also returns a boolean to true if there is more todos than the query's limit.
func (c *strm) FindTodos(query TodoQuery) ([]*model.Todo, bool, error) {
	matchers := []q.Matcher{q.Eq("Owner", query.Owner)}
	if query.After > 0 {
		matchers = append(matchers, q.Gt("Sequence", query.After))
	}
	matchers = append(matchers, stringMatchers("Description", query.Description)...)

	todos := make([]*model.Todo, 0)
	stmt := c.db.Select(matchers...).OrderBy("Sequence")
	if query.Limit > 0 {
		stmt = stmt.Limit(query.Limit + 1)
	}
	err := stmt.Find(&todos)
	if err != nil && !c.IsNotFound(err) {
		return nil, false, errors.Wrap(err, "could not find todos")
	}

	var overLimit bool
	if query.Limit != 0 && len(todos) > query.Limit {
		todos = todos[:query.Limit]
		overLimit = true
	}

	return todos, overLimit, nil
}

func stringMatchers(field string, m *StringMatch) []q.Matcher {
	if m == nil {
		return nil
	}

	var matchers []q.Matcher
	if m.Eq != nil {
		matchers = append(matchers, q.Eq(field, *m.Eq))
	}
	if m.Ne != nil {
		matchers = append(matchers, q.Not(q.Eq(field, *m.Ne)))
	}
	if m.Contains != nil {
		matchers = append(matchers, q.Re(field, regexp.QuoteMeta(*m.Contains)))
	}
	if m.BeginsWith != nil {
		matchers = append(matchers, q.Re(field, "^"+regexp.QuoteMeta(*m.BeginsWith)))
	}
	return matchers
}
