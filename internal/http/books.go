package http

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/mrlokans/bookclub/internal/auth"
	"github.com/mrlokans/bookclub/internal/database/reviews"
	"github.com/mrlokans/bookclub/internal/entities"
	"github.com/mrlokans/bookclub/internal/ratings"
)

// MsgReviewRejected covers every review validation failure: a missing text,
// a missing or unparseable rating, and an already-existing review.
const MsgReviewRejected = "There is a maximum of 1 review per person per book. To submit a review, please enter a review and a rating."

// BookGetter provides read access to the catalog.
type BookGetter interface {
	GetBookByID(id uint) (*entities.Book, error)
}

// ReviewStore provides the review operations the detail page needs.
type ReviewStore interface {
	CreateReview(review *entities.Review) error
	HasReview(personID, bookID uint) (bool, error)
	GetReviewsForBook(bookID uint) ([]reviews.BookReview, error)
}

// BooksController serves the book detail page and accepts review
// submissions.
type BooksController struct {
	books   BookGetter
	reviews ReviewStore
	ratings ratings.Client
}

func NewBooksController(books BookGetter, reviewStore ReviewStore, ratingsClient ratings.Client) *BooksController {
	return &BooksController{
		books:   books,
		reviews: reviewStore,
		ratings: ratingsClient,
	}
}

// BookPage renders the detail view: book metadata, all reviews with
// reviewer usernames (most recent first) and the external average rating.
func (controller *BooksController) BookPage(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	book, err := controller.books.GetBookByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Unknown book renders the empty-state page, never a server error.
			c.HTML(http.StatusNotFound, "book.html", gin.H{
				"Title":    "Book not found",
				"Username": auth.GetUsername(c),
				"Book":     nil,
			})
			return
		}
		c.String(http.StatusInternalServerError, "Error loading book")
		return
	}

	controller.renderDetail(c, book, "")
}

// SubmitReview accepts a review for a book. The person must not have
// reviewed this book before, and both text and rating are required; any
// violation renders the detail view with the combined message and skips
// the insert. On success the view is re-fetched so the new review shows
// immediately.
func (controller *BooksController) SubmitReview(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	book, err := controller.books.GetBookByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.HTML(http.StatusNotFound, "book.html", gin.H{
				"Title":    "Book not found",
				"Username": auth.GetUsername(c),
				"Book":     nil,
			})
			return
		}
		c.String(http.StatusInternalServerError, "Error loading book")
		return
	}

	personID := auth.GetPersonID(c)
	text := c.PostForm("review")
	rating, ratingErr := strconv.Atoi(c.PostForm("rating"))

	errorMsg := ""
	if text == "" || ratingErr != nil || rating < 1 || rating > 5 {
		errorMsg = MsgReviewRejected
	} else {
		exists, err := controller.reviews.HasReview(personID, book.ID)
		if err != nil {
			c.String(http.StatusInternalServerError, "Error checking reviews")
			return
		}
		if exists {
			errorMsg = MsgReviewRejected
		}
	}

	if errorMsg == "" {
		review := &entities.Review{
			BookID:   book.ID,
			PersonID: personID,
			Text:     text,
			Rating:   rating,
		}
		if err := controller.reviews.CreateReview(review); err != nil {
			// The unique index catches a concurrent duplicate submission
			// that slipped past the existence check.
			errorMsg = MsgReviewRejected
		}
	}

	controller.renderDetail(c, book, errorMsg)
}

// renderDetail fetches reviews and the external rating, then renders the
// detail template. The rating lookup is best-effort: any failure means 0.
func (controller *BooksController) renderDetail(c *gin.Context, book *entities.Book, errorMsg string) {
	bookReviews, err := controller.reviews.GetReviewsForBook(book.ID)
	if err != nil {
		c.String(http.StatusInternalServerError, "Error loading reviews")
		return
	}

	ratingAverage := 0.0
	if controller.ratings != nil {
		avg, err := controller.ratings.AverageRating(c.Request.Context(), book.ISBN)
		if err != nil {
			if !errors.Is(err, context.Canceled) {
				log.Printf("Rating lookup failed for ISBN %s: %v", book.ISBN, err)
			}
		} else {
			ratingAverage = avg
		}
	}

	c.HTML(http.StatusOK, "book.html", gin.H{
		"Title":         book.Title,
		"Username":      auth.GetUsername(c),
		"Book":          book,
		"Reviews":       bookReviews,
		"RatingAverage": ratingAverage,
		"Error":         errorMsg,
		"CSRFToken":     auth.GetCSRFToken(c),
	})
}
