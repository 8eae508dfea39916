package server

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/riekert/todo/internal/database"
	"github.com/riekert/todo/internal/server/middlewares"
	"github.com/riekert/todo/internal/server/serializer"
	"github.com/riekert/todo/internal/server/service"
	sessionpkg "github.com/riekert/todo/internal/server/session"
	"github.com/riekert/todo/internal/todoerror"
)

type (
	sess struct {
		db       database.Client
		sessions sessionpkg.Manager
	}

	refreshSessionParams struct {
		RefreshToken string `json:"refresh_token"`
	}

	deleteSessionParams struct {
		ID string `json:"id"`
	}
)

// List lists all active sessions for the current user.
func (s *sess) List(c echo.Context) error {
	session := currentSession(c)
	user := currentUser(c)

	sessions, err := s.db.FindActiveSessionsByUserID(user.ID)
	if err != nil {
		return errors.Wrap(err, "could not get active sessions")
	}

	for _, s := range sessions {
		if s.ID == session.ID {
			s.Current = true
			break
		}
	}

	return c.JSON(http.StatusOK, serializer.Sessions(sessions))
}

// Refresh obtains a new pair of access token and refresh token.
// The access token may be expired but must be well signed.
func (s *sess) Refresh(c echo.Context) error {
	access := middlewares.BearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
	if access == "" {
		return todoerror.InvalidAuth()
	}

	claims, err := s.sessions.Claims(access)
	if err != nil {
		return err
	}

	// Filter params
	var params refreshSessionParams
	if err := c.Bind(&params); err != nil || params.RefreshToken == "" {
		return c.JSON(http.StatusBadRequest, todoerror.NewWithTagCode(
			http.StatusBadRequest,
			todoerror.TagInvalidParameters,
			"Please provide all required parameters.",
		))
	}

	// Retrieve session
	session, err := s.db.FindSessionByRefreshToken(claims.ID, params.RefreshToken)
	if err != nil {
		if s.db.IsNotFound(err) {
			return c.JSON(http.StatusBadRequest, todoerror.NewWithTagCode(
				http.StatusBadRequest,
				todoerror.TagInvalidParameters,
				"The provided parameters are not valid.",
			))
		}
		return errors.Wrap(err, "could not get session")
	}

	user, err := s.db.FindUser(session.UserID)
	if err != nil {
		if s.db.IsNotFound(err) {
			return todoerror.InvalidAuth()
		}
		return errors.Wrap(err, "could not get session's user")
	}

	render, err := service.NewUser(s.db, s.sessions).Refresh(user, session)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, render)
}

// Delete terminates one of the sessions of the current user.
func (s *sess) Delete(c echo.Context) error {
	var params deleteSessionParams
	if err := c.Bind(&params); err != nil || params.ID == "" {
		return c.JSON(http.StatusBadRequest, todoerror.NewWithTagCode(
			http.StatusBadRequest,
			todoerror.TagInvalidParameters,
			"Please provide the session identifier.",
		))
	}

	if params.ID == currentSession(c).ID {
		return c.JSON(http.StatusBadRequest, todoerror.NewWithTagCode(
			http.StatusBadRequest,
			todoerror.TagInvalidParameters,
			"You can not delete your current session.",
		))
	}

	session, err := s.db.FindSessionByUserID(params.ID, currentUser(c).ID)
	if err != nil {
		if s.db.IsNotFound(err) {
			return c.JSON(http.StatusBadRequest, todoerror.NewWithTagCode(
				http.StatusBadRequest,
				todoerror.TagInvalidParameters,
				"No session exists with the provided identifier.",
			))
		}
		return errors.Wrap(err, "could not get session")
	}

	if err = s.db.Delete(session); err != nil {
		return errors.Wrap(err, "could not delete session")
	}

	return c.NoContent(http.StatusNoContent)
}
