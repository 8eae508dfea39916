package model

// A User represents a database record.
type User struct {
	Base `msgpack:",inline" codec:",inline" storm:"inline"`

	Username string `msgpack:"username"           codec:"username"           storm:"unique"`
	Password string `msgpack:"password,omitempty" codec:"password,omitempty"`

	// Created counts the todos ever created by the user.
	// It sequences the user's todos and names them.
	Created int64 `msgpack:"created" codec:"created"`

	PasswordUpdatedAt int64 `msgpack:"password_updated_at" codec:"password_updated_at"`
}

// NewUser returns a new user.
func NewUser(username string) *User {
	return &User{
		Username: username,
	}
}
