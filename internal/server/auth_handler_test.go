package server_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/appleboy/gofight/v2"
	"github.com/riekert/todo/internal/server"
	sessionpkg "github.com/riekert/todo/internal/server/session"
	"github.com/stretchr/testify/assert"
	"github.com/valyala/fastjson"
)

func TestRequestRegistration(t *testing.T) {
	engine, _, r, cleanup := setup()
	defer cleanup()

	r.POST("/auth/sign_up").Run(engine, func(r gofight.HTTPResponse, rq gofight.HTTPRequest) {
		assert.Equal(t, http.StatusBadRequest, r.Code)
		assert.JSONEq(t, `{"error":{"message":"Could not get user's params."}}`, r.Body.String())
	})

	params := gofight.D{
		"username": "",
	}
	r.POST("/auth/sign_up").SetJSON(params).Run(engine, func(r gofight.HTTPResponse, rq gofight.HTTPRequest) {
		assert.Equal(t, http.StatusBadRequest, r.Code)
		assert.JSONEq(t, `{"error":{"message":"No username provided."}}`, r.Body.String())
	})

	params["username"] = "george"
	r.POST("/auth/sign_up").SetJSON(params).Run(engine, func(r gofight.HTTPResponse, rq gofight.HTTPRequest) {
		assert.Equal(t, http.StatusBadRequest, r.Code)
		assert.JSONEq(t, `{"error":{"message":"No password provided."}}`, r.Body.String())
	})

	params["password"] = "password42"
	r.POST("/auth/sign_up").SetJSON(params).Run(engine, func(r gofight.HTTPResponse, rq gofight.HTTPRequest) {
		assert.Equal(t, http.StatusOK, r.Code)

		v, err := fastjson.Parse(r.Body.String())
		assert.NoError(t, err)

		assert.Equal(t, "george", string(v.GetStringBytes("user", "username")))
		assert.Regexp(t, `^[a-fA-F0-9]{8}-[a-fA-F0-9]{4}-4[a-fA-F0-9]{3}-[8|9|aA|bB][a-fA-F0-9]{3}-[a-fA-F0-9]{12}$`, string(v.GetStringBytes("user", "id")))
		assert.Regexp(t, `.*\..*\..*`, string(v.GetStringBytes("session", "access_token")))
		assert.NotEmpty(t, string(v.GetStringBytes("session", "refresh_token")))

		timestamp, err := time.Parse(time.RFC3339, string(v.GetStringBytes("user", "created_at")))
		assert.NoError(t, err)
		assert.Less(t, time.Since(timestamp), 5*time.Second)

		timestamp, err = time.Parse(time.RFC3339, string(v.GetStringBytes("session", "access_expiration")))
		assert.NoError(t, err)
		assert.WithinDuration(t, time.Now().Add(time.Hour), timestamp, 5*time.Second)
	})

	r.POST("/auth/sign_up").SetJSON(params).Run(engine, func(r gofight.HTTPResponse, rq gofight.HTTPRequest) {
		assert.Equal(t, http.StatusConflict, r.Code)
		assert.JSONEq(t, `{"error":{"message":"This username is already registered."}}`, r.Body.String())
	})
}

func TestRequestRegistrationDisabled(t *testing.T) {
	engine, ctrl, r, cleanup := setup()
	defer cleanup()

	ctrl.NoRegistration = true
	engine = server.EchoEngine(ctrl)

	params := gofight.D{
		"username": "george",
		"password": "password42",
	}
	r.POST("/auth/sign_up").SetJSON(params).Run(engine, func(r gofight.HTTPResponse, rq gofight.HTTPRequest) {
		assert.NotEqual(t, http.StatusOK, r.Code)
	})

	_, err := ctrl.Database.FindUserByUsername("george")
	assert.True(t, ctrl.Database.IsNotFound(err))
}

func TestRequestLogin(t *testing.T) {
	engine, ctrl, r, cleanup := setup()
	defer cleanup()
	user := createUser(ctrl, "george")

	r.POST("/auth/sign_in").Run(engine, func(r gofight.HTTPResponse, rq gofight.HTTPRequest) {
		assert.Equal(t, http.StatusBadRequest, r.Code)
		assert.JSONEq(t, `{"error":{"message":"Could not get credentials."}}`, r.Body.String())
	})

	params := gofight.D{
		"username": "",
		"password": "",
	}

	r.POST("/auth/sign_in").SetJSON(params).Run(engine, func(r gofight.HTTPResponse, rq gofight.HTTPRequest) {
		assert.Equal(t, http.StatusBadRequest, r.Code)
		assert.JSONEq(t, `{"error":{"message":"No username or password provided."}}`, r.Body.String())
	})

	params["username"] = "george"
	r.POST("/auth/sign_in").SetJSON(params).Run(engine, func(r gofight.HTTPResponse, rq gofight.HTTPRequest) {
		assert.Equal(t, http.StatusBadRequest, r.Code)
		assert.JSONEq(t, `{"error":{"message":"No username or password provided."}}`, r.Body.String())
	})

	params["password"] = "password24"
	r.POST("/auth/sign_in").SetJSON(params).Run(engine, func(r gofight.HTTPResponse, rq gofight.HTTPRequest) {
		assert.Equal(t, http.StatusUnauthorized, r.Code)
		assert.JSONEq(t, `{"error":{"tag":"invalid-auth","message":"Incorrect username or password."}}`, r.Body.String())
	})

	params["password"] = "password42"
	r.POST("/auth/sign_in").SetJSON(params).Run(engine, func(r gofight.HTTPResponse, rq gofight.HTTPRequest) {
		assert.Equal(t, http.StatusOK, r.Code)

		v, err := fastjson.Parse(r.Body.String())
		assert.NoError(t, err)

		assert.Equal(t, user.ID, string(v.GetStringBytes("user", "id")))
		assert.Equal(t, user.Username, string(v.GetStringBytes("user", "username")))
		assert.Regexp(t, `.*\..*\..*`, string(v.GetStringBytes("session", "access_token")))

		claims, err := manager(ctrl).Claims(string(v.GetStringBytes("session", "access_token")))
		assert.NoError(t, err)
		assert.Equal(t, user.ID, claims.Subject)
		assert.Equal(t, "george", claims.Username)
	})

	params["username"] = "nobody"
	r.POST("/auth/sign_in").SetJSON(params).Run(engine, func(r gofight.HTTPResponse, rq gofight.HTTPRequest) {
		assert.Equal(t, http.StatusUnauthorized, r.Code)
		assert.JSONEq(t, `{"error":{"tag":"invalid-auth","message":"Incorrect username or password."}}`, r.Body.String())
	})
}

func TestRequestMe(t *testing.T) {
	engine, ctrl, _, cleanup := setup()
	defer cleanup()
	user, session := createUserWithSession(ctrl, "george")

	gofight.New().GET("/auth/me").Run(engine, func(r gofight.HTTPResponse, rq gofight.HTTPRequest) {
		assert.Equal(t, http.StatusUnauthorized, r.Code)
		assert.JSONEq(t, `{"error":{"tag":"invalid-auth","message":"Invalid login credentials."}}`, r.Body.String())
	})

	gofight.New().GET("/auth/me").SetHeader(gofight.H{"Authorization": "Bearer forged"}).Run(engine, func(r gofight.HTTPResponse, rq gofight.HTTPRequest) {
		assert.Equal(t, http.StatusUnauthorized, r.Code)
		assert.JSONEq(t, `{"error":{"tag":"invalid-auth","message":"Invalid login credentials."}}`, r.Body.String())
	})

	gofight.New().GET("/auth/me").SetHeader(bearer(ctrl, user, session)).Run(engine, func(r gofight.HTTPResponse, rq gofight.HTTPRequest) {
		assert.Equal(t, http.StatusOK, r.Code)
		assert.JSONEq(t, `{"username":"george"}`, r.Body.String())
	})
}

func TestRequestExpiredAccessToken(t *testing.T) {
	engine, ctrl, r, cleanup := setup()
	defer cleanup()
	user, session := createUserWithSession(ctrl, "george")

	expired := sessionpkg.NewManager(ctrl.Database, ctrl.SigningKey, -time.Minute, ctrl.RefreshTokenExpirationTime)
	token, _, err := expired.Token(session, user)
	assert.NoError(t, err)

	r.GET("/auth/me").SetHeader(gofight.H{"Authorization": "Bearer " + token}).Run(engine, func(r gofight.HTTPResponse, rq gofight.HTTPRequest) {
		assert.Equal(t, 498, r.Code)
		assert.JSONEq(t, `{"error":{"tag":"expired-access-token","message":"The provided access token has expired."}}`, r.Body.String())
	})
}

func TestRequestLogout(t *testing.T) {
	engine, ctrl, _, cleanup := setup()
	defer cleanup()
	user, session := createUserWithSession(ctrl, "george")
	header := bearer(ctrl, user, session)

	gofight.New().POST("/auth/sign_out").Run(engine, func(r gofight.HTTPResponse, rq gofight.HTTPRequest) {
		assert.Equal(t, http.StatusUnauthorized, r.Code)
	})

	gofight.New().POST("/auth/sign_out").SetHeader(header).Run(engine, func(r gofight.HTTPResponse, rq gofight.HTTPRequest) {
		assert.Equal(t, http.StatusNoContent, r.Code)
	})

	_, err := ctrl.Database.FindSession(session.ID)
	assert.True(t, ctrl.Database.IsNotFound(err))

	gofight.New().GET("/auth/me").SetHeader(header).Run(engine, func(r gofight.HTTPResponse, rq gofight.HTTPRequest) {
		assert.Equal(t, http.StatusUnauthorized, r.Code)
	})
}
