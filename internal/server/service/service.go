package service

import "github.com/riekert/todo/internal/model"

// A Render is an arbitrary payload serializable in JSON by the API.
type Render any

// Params are the basic fields used in requests.
type Params struct {
	UserAgent string         `json:"-"`
	Session   *model.Session `json:"-"`
}
