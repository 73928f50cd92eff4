package book

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"bookmesh/internal/platform/authorsvc"
	"bookmesh/internal/testutil"

	"github.com/golang/mock/gomock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHandler(t *testing.T) (*MockRepository, *MockAuthorClient, http.Handler) {
	ctrl := gomock.NewController(t)
	repo := NewMockRepository(ctrl)
	authors := NewMockAuthorClient(ctrl)
	mux := http.NewServeMux()
	NewHTTPHandler(NewService(repo, authors)).Register(mux)
	return repo, authors, mux
}

func TestHTTPHandler_Get(t *testing.T) {
	repo, authors, handler := newTestHandler(t)

	t.Run("success", func(t *testing.T) {
		repo.EXPECT().FindByID(gomock.Any(), int64(1)).Return(testBook(1, 7), nil)
		authors.EXPECT().FetchAuthor(gomock.Any(), int64(7)).Return(ada, nil)

		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/books/1", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		env := testutil.DecodeEnvelope(t, w)
		var got map[string]any
		require.NoError(t, json.Unmarshal(env.Data, &got))
		assert.Equal(t, "Lovelace, Ada", got["author_name"])
		assert.Equal(t, float64(7), got["author_id"])
		assert.Equal(t, "111", got["isbn"])
		assert.Equal(t, 19.99, got["price"])
	})

	t.Run("book not found", func(t *testing.T) {
		repo.EXPECT().FindByID(gomock.Any(), int64(2)).Return(Book{}, ErrNotFound)

		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/books/2", nil))

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "NOT_FOUND", testutil.DecodeEnvelope(t, w).Error.Code)
	})

	t.Run("author unavailable", func(t *testing.T) {
		repo.EXPECT().FindByID(gomock.Any(), int64(3)).Return(testBook(3, 7), nil)
		authors.EXPECT().FetchAuthor(gomock.Any(), int64(7)).
			Return(authorsvc.Author{}, &authorsvc.UnavailableError{AuthorID: 7, Attempts: 3, Err: authorsvc.ErrTimeout})

		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/books/3", nil))

		assert.Equal(t, http.StatusBadGateway, w.Code)
		assert.Equal(t, "AUTHOR_LOOKUP_FAILED", testutil.DecodeEnvelope(t, w).Error.Code)
	})

	t.Run("author missing upstream is not a book 404", func(t *testing.T) {
		repo.EXPECT().FindByID(gomock.Any(), int64(4)).Return(testBook(4, 9), nil)
		authors.EXPECT().FetchAuthor(gomock.Any(), int64(9)).Return(authorsvc.Author{}, authorsvc.ErrNotFound)

		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/books/4", nil))

		assert.Equal(t, http.StatusBadGateway, w.Code)
	})

	t.Run("invalid id", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/books/0", nil))

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestHTTPHandler_List(t *testing.T) {
	repo, authors, handler := newTestHandler(t)

	t.Run("success", func(t *testing.T) {
		repo.EXPECT().FindAll(gomock.Any()).Return([]Book{testBook(1, 7), testBook(2, 7)}, nil)
		authors.EXPECT().FetchAuthor(gomock.Any(), int64(7)).Return(ada, nil).Times(2)

		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/books", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		var views []View
		require.NoError(t, json.Unmarshal(testutil.DecodeEnvelope(t, w).Data, &views))
		assert.Len(t, views, 2)
	})

	t.Run("author lookup failure fails the list", func(t *testing.T) {
		repo.EXPECT().FindAll(gomock.Any()).Return([]Book{testBook(1, 7)}, nil)
		authors.EXPECT().FetchAuthor(gomock.Any(), int64(7)).
			Return(authorsvc.Author{}, &authorsvc.UnavailableError{AuthorID: 7, Attempts: 3, Err: errors.New("refused")})

		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/books", nil))

		assert.Equal(t, http.StatusBadGateway, w.Code)
		env := testutil.DecodeEnvelope(t, w)
		assert.False(t, env.Success)
		assert.Empty(t, env.Data)
	})

	t.Run("store error", func(t *testing.T) {
		repo.EXPECT().FindAll(gomock.Any()).Return(nil, errors.New("db down"))

		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/books", nil))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}

func TestHTTPHandler_Create(t *testing.T) {
	repo, _, handler := newTestHandler(t)

	t.Run("success", func(t *testing.T) {
		repo.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, b Book) (int64, error) {
			assert.Equal(t, "111", b.ISBN)
			assert.True(t, decimal.RequireFromString("12.5").Equal(b.Price))
			assert.Equal(t, int64(7), b.AuthorID)
			return 10, nil
		})

		w := httptest.NewRecorder()
		body := `{"isbn":"111","title":"T1","price":12.5,"author_id":7}`
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/books", strings.NewReader(body)))

		assert.Equal(t, http.StatusCreated, w.Code)
		var created Book
		require.NoError(t, json.Unmarshal(testutil.DecodeEnvelope(t, w).Data, &created))
		assert.Equal(t, int64(10), created.ID)
	})

	t.Run("validation error", func(t *testing.T) {
		w := httptest.NewRecorder()
		body := `{"isbn":"","title":"T1","price":-1,"author_id":0}`
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/books", strings.NewReader(body)))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "VALIDATION_ERROR", testutil.DecodeEnvelope(t, w).Error.Code)
	})

	t.Run("malformed json", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/books", strings.NewReader(`{`)))

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestHTTPHandler_UpdateAndDelete(t *testing.T) {
	repo, _, handler := newTestHandler(t)

	t.Run("update", func(t *testing.T) {
		repo.EXPECT().Update(gomock.Any(), gomock.Any()).Return(nil)

		w := httptest.NewRecorder()
		body := `{"isbn":"222","title":"T2","price":"3.00","author_id":7}`
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodPut, "/books/5", strings.NewReader(body)))

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("update missing book", func(t *testing.T) {
		repo.EXPECT().Update(gomock.Any(), gomock.Any()).Return(ErrNotFound)

		w := httptest.NewRecorder()
		body := `{"isbn":"222","title":"T2","price":"3.00","author_id":7}`
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodPut, "/books/99", strings.NewReader(body)))

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("delete", func(t *testing.T) {
		repo.EXPECT().Delete(gomock.Any(), int64(5)).Return(nil)

		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/books/5", nil))

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("delete missing book", func(t *testing.T) {
		repo.EXPECT().Delete(gomock.Any(), int64(99)).Return(ErrNotFound)

		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/books/99", nil))

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
