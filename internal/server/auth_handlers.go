package server

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/riekert/todo/internal/database"
	"github.com/riekert/todo/internal/server/service"
	"github.com/riekert/todo/internal/server/session"
	"github.com/riekert/todo/internal/todoerror"
)

// auth contains all authentication handlers.
type auth struct {
	db       database.Client
	sessions session.Manager
}

///// Register
////
//

// Register handler is used to register the user.
func (h *auth) Register(c echo.Context) error {
	// Filter params
	var params service.RegisterParams
	if err := c.Bind(&params); err != nil {
		return c.JSON(http.StatusBadRequest, todoerror.New("Could not get user's params."))
	}
	params.UserAgent = c.Request().UserAgent()

	if params.Username == "" {
		return c.JSON(http.StatusBadRequest, todoerror.New("No username provided."))
	}
	if params.Password == "" {
		return c.JSON(http.StatusBadRequest, todoerror.New("No password provided."))
	}

	register, err := service.NewUser(h.db, h.sessions).Register(params)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, register)
}

///// Login
////
//

// Login used for authenticates a user and opens a session.
func (h *auth) Login(c echo.Context) error {
	// Filter params
	var params service.LoginParams
	if err := c.Bind(&params); err != nil {
		return c.JSON(http.StatusBadRequest, todoerror.New("Could not get credentials."))
	}
	params.UserAgent = c.Request().UserAgent()

	if params.Username == "" || params.Password == "" {
		return c.JSON(http.StatusBadRequest, todoerror.New("No username or password provided."))
	}

	login, err := service.NewUser(h.db, h.sessions).Login(params)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, login)
}

///// Logout
////
//

// Logout used for terminates the current session.
func (h *auth) Logout(c echo.Context) error {
	session := currentSession(c)
	if session != nil {
		err := h.db.Delete(session)
		if err != nil && !h.db.IsNotFound(err) {
			return err
		}
	}

	return c.NoContent(http.StatusNoContent)
}

///// Me
////
//

// Me returns the identity of the authenticated user.
func (h *auth) Me(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"username": currentUser(c).Username,
	})
}
