package service

import (
	"net/http"
	"strings"
	"time"

	argon2 "github.com/mdouchement/simple-argon2"
	"github.com/pkg/errors"
	"github.com/riekert/todo/internal/database"
	"github.com/riekert/todo/internal/model"
	"github.com/riekert/todo/internal/server/serializer"
	"github.com/riekert/todo/internal/server/session"
	"github.com/riekert/todo/internal/todoerror"
)

type (
	// A UserService is a service used for the authentication of users.
	UserService struct {
		db       database.Client
		sessions session.Manager
	}

	// RegisterParams are used to register a user.
	RegisterParams struct {
		Params
		Username string `json:"username"`
		Password string `json:"password"`
	}

	// LoginParams are used to login a user.
	LoginParams struct {
		Params
		Username string `json:"username"`
		Password string `json:"password"`
	}
)

// NewUser returns a new UserService.
func NewUser(db database.Client, sessions session.Manager) *UserService {
	return &UserService{
		db:       db,
		sessions: sessions,
	}
}

// Register creates a user and opens its first session.
func (s *UserService) Register(params RegisterParams) (Render, error) {
	params.Username = strings.TrimSpace(params.Username)

	// Check if the username is free to use.
	u, err := s.db.FindUserByUsername(params.Username)
	if err != nil && !s.db.IsNotFound(err) {
		return nil, errors.Wrap(err, "could not get access to database")
	}
	if u != nil {
		return nil, todoerror.NewWithTagCode(http.StatusConflict, "", "This username is already registered.")
	}

	user := model.NewUser(params.Username)

	// Crypt password
	user.Password, err = argon2.GenerateFromPasswordString(params.Password, argon2.Default)
	if err != nil {
		return nil, errors.Wrap(err, "could not store user password safe")
	}
	user.PasswordUpdatedAt = time.Now().Unix()

	// Persist the model
	if err := s.db.Save(user); err != nil {
		if s.db.IsAlreadyExists(err) {
			return nil, todoerror.NewWithTagCode(http.StatusConflict, "", "This username is already registered.")
		}
		return nil, errors.Wrap(err, "could not persist user")
	}

	return s.SuccessfulAuthentication(user, params.Params)
}

// Login authenticates a user and opens a session.
func (s *UserService) Login(params LoginParams) (Render, error) {
	// Retrieve user
	user, err := s.db.FindUserByUsername(params.Username)
	if err != nil {
		if s.db.IsNotFound(err) {
			return nil, todoerror.NewWithTagCode(http.StatusUnauthorized, todoerror.TagInvalidAuth, "Incorrect username or password.")
		}
		return nil, errors.Wrap(err, "could not get user")
	}

	// Verify password
	if err = argon2.CompareHashAndPasswordString(user.Password, params.Password); err != nil {
		if err == argon2.ErrMismatchedHashAndPassword {
			return nil, todoerror.NewWithTagCode(http.StatusUnauthorized, todoerror.TagInvalidAuth, "Incorrect username or password.")
		}
		return nil, errors.Wrap(err, "could not validate password")
	}

	return s.SuccessfulAuthentication(user, params.Params)
}

// Refresh rotates the refresh token of the given session and mints a new access token.
func (s *UserService) Refresh(user *model.User, sess *model.Session) (Render, error) {
	if err := s.sessions.Regenerate(sess); err != nil {
		return nil, err
	}

	return s.render(user, sess)
}

// SuccessfulAuthentication returns the rendering of an authenticated user.
// A session is created unless the request already carries one.
func (s *UserService) SuccessfulAuthentication(u *model.User, params Params) (Render, error) {
	sess := params.Session
	if sess == nil {
		sess = s.sessions.Generate(u)
		sess.UserAgent = params.UserAgent

		if err := s.db.Save(sess); err != nil {
			return nil, todoerror.NewWithTagCode(http.StatusBadRequest, "", "Could not create a session.")
		}
	}

	return s.render(u, sess)
}

func (s *UserService) render(u *model.User, sess *model.Session) (Render, error) {
	token, expiration, err := s.sessions.Token(sess, u)
	if err != nil {
		return nil, err
	}

	return map[string]any{
		"user":    serializer.User(u),
		"session": serializer.Session(sess, token, expiration),
	}, nil
}
