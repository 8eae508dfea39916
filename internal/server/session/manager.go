package session

import (
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
	"github.com/riekert/todo/internal/database"
	"github.com/riekert/todo/internal/model"
	"github.com/riekert/todo/internal/todoerror"
)

// Issuer is the issuer of the access tokens.
const Issuer = "todoserver"

type (
	// A Manager manages sessions.
	Manager interface {
		// Generate creates a new session for the given user.
		Generate(user *model.User) *model.Session
		// Token returns a signed access token for the given session.
		Token(session *model.Session, user *model.User) (string, time.Time, error)
		// Validate validates an access token and returns its session and user.
		Validate(token string) (*model.Session, *model.User, error)
		// Claims returns the claims of a well signed access token, even if it is expired.
		Claims(token string) (*Claims, error)
		// Regenerate regenerates the session's refresh token and expiration.
		Regenerate(session *model.Session) error
	}

	// Claims are the claims carried by an access token.
	Claims struct {
		jwt.RegisteredClaims
		Username string `json:"username"`
	}

	manager struct {
		db         database.Client
		signingKey []byte
		// Session params
		accessTokenExpirationTime  time.Duration
		refreshTokenExpirationTime time.Duration
	}
)

// NewManager returns a new manager.
func NewManager(db database.Client, signingKey []byte, accessTokenExpirationTime, refreshTokenExpirationTime time.Duration) Manager {
	return &manager{
		db:                         db,
		signingKey:                 signingKey,
		accessTokenExpirationTime:  accessTokenExpirationTime,
		refreshTokenExpirationTime: refreshTokenExpirationTime,
	}
}

func (m *manager) Generate(user *model.User) *model.Session {
	return &model.Session{
		UserID:       user.ID,
		ExpireAt:     time.Now().Add(m.refreshTokenExpirationTime).UTC(),
		RefreshToken: SecureToken(24),
	}
}

func (m *manager) Token(session *model.Session, user *model.User) (string, time.Time, error) {
	now := time.Now()
	expiration := now.Add(m.accessTokenExpirationTime).UTC()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    Issuer,
			Subject:   user.ID,
			ID:        session.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiration),
		},
		Username: user.Username,
	})

	signed, err := token.SignedString(m.signingKey)
	return signed, expiration, errors.Wrap(err, "could not sign access token")
}

func (m *manager) Validate(token string) (*model.Session, *model.User, error) {
	claims, err := m.parse(token)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, nil, todoerror.NewWithTagCode(
				todoerror.StatusExpiredAccessToken,
				todoerror.TagExpiredAccessToken,
				"The provided access token has expired.",
			)
		}
		return nil, nil, todoerror.InvalidAuth()
	}

	session, err := m.db.FindSessionByUserID(claims.ID, claims.Subject)
	if err != nil {
		if m.db.IsNotFound(err) {
			return nil, nil, todoerror.InvalidAuth()
		}
		return nil, nil, errors.Wrap(err, "could not get access to database")
	}

	if m.isSessionExpired(session) {
		return nil, nil, todoerror.InvalidAuth()
	}

	// Get current_user.
	user, err := m.db.FindUser(session.UserID)
	if err != nil {
		if m.db.IsNotFound(err) {
			return nil, nil, todoerror.InvalidAuth()
		}
		return nil, nil, errors.Wrap(err, "could not get access to database")
	}

	// Check if password has changed since token was generated.
	if claims.IssuedAt == nil || claims.IssuedAt.Unix() < user.PasswordUpdatedAt {
		return nil, nil, todoerror.NewWithTagCode(http.StatusUnauthorized, todoerror.TagInvalidAuth, "Revoked token.")
	}

	return session, user, nil
}

func (m *manager) Claims(token string) (*Claims, error) {
	claims := new(Claims)
	_, err := jwt.ParseWithClaims(token, claims, m.keyfunc,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithoutClaimsValidation(),
	)
	if err != nil || claims.Issuer != Issuer {
		return nil, todoerror.InvalidAuth()
	}
	return claims, nil
}

func (m *manager) Regenerate(session *model.Session) error {
	if m.isSessionExpired(session) {
		return todoerror.NewWithTagCode(
			http.StatusBadRequest,
			todoerror.TagExpiredRefreshToken,
			"The refresh token has expired.",
		)
	}

	session.RefreshToken = SecureToken(24)
	session.ExpireAt = time.Now().Add(m.refreshTokenExpirationTime).UTC()

	return errors.Wrap(m.db.Save(session), "could not save session after refreshing session")
}

func (m *manager) parse(token string) (*Claims, error) {
	claims := new(Claims)
	_, err := jwt.ParseWithClaims(token, claims, m.keyfunc,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(Issuer),
		jwt.WithExpirationRequired(),
	)
	return claims, err
}

func (m *manager) keyfunc(*jwt.Token) (any, error) {
	return m.signingKey, nil
}

func (m *manager) isSessionExpired(session *model.Session) bool {
	return session.ExpireAt.Before(time.Now())
}
