package model

import (
	"time"
)

// A Session represents a database record.
type Session struct {
	Base `msgpack:",inline" codec:",inline" storm:"inline"`

	ExpireAt     time.Time `msgpack:"expire_at"     codec:"expire_at"`
	UserID       string    `msgpack:"user_id"       codec:"user_id"       storm:"index"`
	UserAgent    string    `msgpack:"user_agent"    codec:"user_agent"`
	RefreshToken string    `msgpack:"refresh_token" codec:"refresh_token" storm:"unique"`

	Current bool `msgpack:"-" codec:"-"`
}
