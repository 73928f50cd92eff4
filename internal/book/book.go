package book

import (
	"errors"
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/shopspring/decimal"
)

// Prices are written as JSON numbers, not quoted strings.
func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

// ErrNotFound is returned when a book is not found.
var ErrNotFound = errors.New("book not found")

// Book represents a book entity. AuthorID points into the author service and is not checked locally.
type Book struct {
	ID       int64           `json:"id"`
	ISBN     string          `json:"isbn"`
	Title    string          `json:"title"`
	Price    decimal.Decimal `json:"price"`
	AuthorID int64           `json:"author_id"`
}

// View is a book joined with its author's display name. It is built per request and never stored.
type View struct {
	Book
	AuthorName string `json:"author_name"`
}

// AuthorLookupError reports that a book could not be composed because its author lookup failed.
type AuthorLookupError struct {
	BookID   int64
	AuthorID int64
	Err      error
}

func (e *AuthorLookupError) Error() string {
	return fmt.Sprintf("book %d: author %d lookup: %v", e.BookID, e.AuthorID, e.Err)
}

func (e *AuthorLookupError) Unwrap() error { return e.Err }

// Request is the body accepted by create and update.
type Request struct {
	ISBN     string          `json:"isbn"`
	Title    string          `json:"title"`
	Price    decimal.Decimal `json:"price"`
	AuthorID int64           `json:"author_id"`
}

func (r Request) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.ISBN, validation.Required, validation.Length(1, 20)),
		validation.Field(&r.Title, validation.Required, validation.Length(1, 255)),
		validation.Field(&r.Price, validation.By(nonNegative)),
		validation.Field(&r.AuthorID, validation.Required, validation.Min(int64(1))),
	)
}

func nonNegative(value any) error {
	var d decimal.Decimal
	switch v := value.(type) {
	case decimal.Decimal:
		d = v
	case string:
		parsed, err := decimal.NewFromString(v)
		if err != nil {
			return errors.New("must be a number")
		}
		d = parsed
	}
	if d.IsNegative() {
		return errors.New("must not be negative")
	}
	return nil
}

func (r Request) toBook() Book {
	return Book{ISBN: r.ISBN, Title: r.Title, Price: r.Price, AuthorID: r.AuthorID}
}
