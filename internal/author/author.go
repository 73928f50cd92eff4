package author

import (
	"errors"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// ErrNotFound is returned when an author is not found.
var ErrNotFound = errors.New("author not found")

// Author represents an author entity.
type Author struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// Request is the body accepted by create and update.
type Request struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

func (r Request) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.FirstName, validation.Required, validation.Length(1, 100)),
		validation.Field(&r.LastName, validation.Required, validation.Length(1, 100)),
	)
}

func (r Request) toAuthor() Author {
	return Author{FirstName: r.FirstName, LastName: r.LastName}
}
