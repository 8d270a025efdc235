package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/mrlokans/bookclub/internal/database/reviews"
	"github.com/mrlokans/bookclub/internal/entities"
)

// BookLookup provides ISBN lookup for the JSON API.
type BookLookup interface {
	GetBookByISBN(isbn string) (*entities.Book, error)
}

// ReviewStatsGetter aggregates a book's reviews for the JSON API.
type ReviewStatsGetter interface {
	GetStatsForBook(bookID uint) (*reviews.Stats, error)
}

// BookInfoResponse is the JSON body served for a known ISBN.
type BookInfoResponse struct {
	Title           string  `json:"title"`
	Author          string  `json:"author"`
	PublicationDate int     `json:"publication_date"`
	ISBN            string  `json:"isbn"`
	ReviewCount     int64   `json:"review_count"`
	AverageScore    float64 `json:"average_score"`
}

// APIController serves the public machine-readable book endpoint. No
// authentication is required here.
type APIController struct {
	books BookLookup
	stats ReviewStatsGetter
}

func NewAPIController(books BookLookup, stats ReviewStatsGetter) *APIController {
	return &APIController{
		books: books,
		stats: stats,
	}
}

// BookInfo returns a book's metadata plus its review count and average
// score. An unknown ISBN yields a 422 with a structured error body.
func (controller *APIController) BookInfo(c *gin.Context) {
	isbn := c.Param("isbn")

	book, err := controller.books.GetBookByISBN(isbn)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(c, http.StatusUnprocessableEntity, "Invalid isbn")
			return
		}
		respondError(c, http.StatusInternalServerError, "internal server error")
		return
	}

	stats, err := controller.stats.GetStatsForBook(book.ID)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "internal server error")
		return
	}

	c.JSON(http.StatusOK, BookInfoResponse{
		Title:           book.Title,
		Author:          book.Author,
		PublicationDate: book.Year,
		ISBN:            book.ISBN,
		ReviewCount:     stats.Count,
		AverageScore:    stats.Average,
	})
}
