package http

import (
	"context"
	"fmt"
	"html/template"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/mrlokans/bookclub/internal/auth"
	"github.com/mrlokans/bookclub/internal/database/books"
	"github.com/mrlokans/bookclub/internal/database/reviews"
	"github.com/mrlokans/bookclub/internal/entities"
)

const bookTestTemplate = `{{define "book.html"}}{{if .Book}}<h1>{{.Book.Title}}</h1>rating:{{.RatingAverage}}{{else}}missing{{end}}{{.Error}}{{range .Reviews}}<p>{{.Username}}:{{.Text}}:{{.Rating}}</p>{{end}}{{end}}`

// fixedRatingClient serves a constant rating without touching the network.
type fixedRatingClient struct {
	rating float64
	err    error
}

func (f *fixedRatingClient) AverageRating(ctx context.Context, isbn string) (float64, error) {
	return f.rating, f.err
}

type booksFixture struct {
	router *gin.Engine
	db     *gorm.DB
	alice  *entities.Person
	bob    *entities.Person
	book   *entities.Book
}

func setupBooksRouter(t *testing.T, ratingsClient *fixedRatingClient) *booksFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := setupTestDB(t)
	controller := NewBooksController(books.NewRepository(db), reviews.NewRepository(db), ratingsClient)

	alice := &entities.Person{Username: "alice", PasswordHash: "x"}
	bob := &entities.Person{Username: "bob", PasswordHash: "x"}
	require.NoError(t, db.Create(alice).Error)
	require.NoError(t, db.Create(bob).Error)

	book := &entities.Book{ISBN: "0618260307", Title: "The Hobbit", Author: "J.R.R. Tolkien", Year: 1937}
	require.NoError(t, db.Create(book).Error)

	router := gin.New()
	router.SetHTMLTemplate(template.Must(template.New("").Parse(bookTestTemplate)))

	// Stand-in for the session guard: the header picks which person the
	// request acts as.
	router.Use(func(c *gin.Context) {
		switch c.GetHeader("X-Test-User") {
		case "alice":
			c.Set(auth.ContextKeyPersonID, alice.ID)
			c.Set(auth.ContextKeyUsername, alice.Username)
		case "bob":
			c.Set(auth.ContextKeyPersonID, bob.ID)
			c.Set(auth.ContextKeyUsername, bob.Username)
		}
		c.Next()
	})

	router.GET("/book/:id", controller.BookPage)
	router.POST("/book/:id", controller.SubmitReview)

	return &booksFixture{router: router, db: db, alice: alice, bob: bob, book: book}
}

func (f *booksFixture) getPage(t *testing.T, path string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	req, err := http.NewRequest("GET", path, nil)
	require.NoError(t, err)
	req.Header.Set("X-Test-User", "alice")
	f.router.ServeHTTP(w, req)
	return w
}

func (f *booksFixture) postReview(t *testing.T, user, text, rating string) *httptest.ResponseRecorder {
	t.Helper()
	form := url.Values{"review": {text}, "rating": {rating}}
	w := httptest.NewRecorder()
	req, err := http.NewRequest("POST", fmt.Sprintf("/book/%d", f.book.ID), strings.NewReader(form.Encode()))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("X-Test-User", user)
	f.router.ServeHTTP(w, req)
	return w
}

func (f *booksFixture) reviewCount(t *testing.T) int64 {
	t.Helper()
	var count int64
	require.NoError(t, f.db.Model(&entities.Review{}).Where("book_id = ?", f.book.ID).Count(&count).Error)
	return count
}

func TestBooksController_BookPage(t *testing.T) {
	fixture := setupBooksRouter(t, &fixedRatingClient{rating: 4.27})

	t.Run("renders book and external rating", func(t *testing.T) {
		w := fixture.getPage(t, fmt.Sprintf("/book/%d", fixture.book.ID))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "The Hobbit")
		assert.Contains(t, w.Body.String(), "rating:4.27")
	})

	t.Run("unknown book renders 404 empty state", func(t *testing.T) {
		w := fixture.getPage(t, "/book/99999")

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Contains(t, w.Body.String(), "missing")
	})

	t.Run("unparseable id is a bad request", func(t *testing.T) {
		w := fixture.getPage(t, "/book/not-a-number")

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestBooksController_BookPage_RatingLookupFailure(t *testing.T) {
	fixture := setupBooksRouter(t, &fixedRatingClient{err: fmt.Errorf("upstream down")})

	w := fixture.getPage(t, fmt.Sprintf("/book/%d", fixture.book.ID))

	// The page still renders; the rating falls back to zero
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "The Hobbit")
	assert.Contains(t, w.Body.String(), "rating:0")
}

func TestBooksController_SubmitReview(t *testing.T) {
	fixture := setupBooksRouter(t, &fixedRatingClient{rating: 4.0})

	t.Run("first review is stored and shown", func(t *testing.T) {
		w := fixture.postReview(t, "alice", "A fine adventure.", "5")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "alice:A fine adventure.:5")
		assert.NotContains(t, w.Body.String(), MsgReviewRejected)
		assert.Equal(t, int64(1), fixture.reviewCount(t))
	})

	t.Run("second review by the same person is rejected", func(t *testing.T) {
		w := fixture.postReview(t, "alice", "Changed my mind.", "1")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), MsgReviewRejected)
		assert.NotContains(t, w.Body.String(), "Changed my mind.")
		assert.Equal(t, int64(1), fixture.reviewCount(t))
	})

	t.Run("another person may review the same book", func(t *testing.T) {
		w := fixture.postReview(t, "bob", "Not for me.", "2")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "bob:Not for me.:2")
		assert.Equal(t, int64(2), fixture.reviewCount(t))
	})
}

func TestBooksController_SubmitReview_Validation(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		rating string
	}{
		{name: "missing text", text: "", rating: "4"},
		{name: "missing rating", text: "Good book.", rating: ""},
		{name: "rating not a number", text: "Good book.", rating: "five"},
		{name: "rating below range", text: "Good book.", rating: "0"},
		{name: "rating above range", text: "Good book.", rating: "6"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fixture := setupBooksRouter(t, &fixedRatingClient{})

			w := fixture.postReview(t, "alice", tt.text, tt.rating)

			assert.Equal(t, http.StatusOK, w.Code)
			assert.Contains(t, w.Body.String(), MsgReviewRejected)
			assert.Equal(t, int64(0), fixture.reviewCount(t))
		})
	}
}
