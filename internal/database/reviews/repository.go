// Package reviews provides database operations for book reviews.
package reviews

import (
	"time"

	"gorm.io/gorm"

	"github.com/mrlokans/bookclub/internal/entities"
)

// BookReview is a review joined with its author's username, as shown on the
// book detail page.
type BookReview struct {
	Username  string    `json:"username"`
	Text      string    `json:"review"`
	Rating    int       `json:"rating"`
	CreatedAt time.Time `json:"created_at"`
}

// Stats aggregates the reviews of one book.
type Stats struct {
	Count   int64   `json:"review_count"`
	Average float64 `json:"average_score"`
}

// Repository handles all review database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new reviews repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// CreateReview inserts a review.
func (r *Repository) CreateReview(review *entities.Review) error {
	return r.db.Create(review).Error
}

// HasReview reports whether the person has already reviewed the book.
func (r *Repository) HasReview(personID, bookID uint) (bool, error) {
	var count int64
	err := r.db.Model(&entities.Review{}).
		Where("person_id = ? AND book_id = ?", personID, bookID).
		Count(&count).Error
	return count > 0, err
}

// GetReviewsForBook returns the book's reviews joined with the reviewer
// username, most recently submitted first.
func (r *Repository) GetReviewsForBook(bookID uint) ([]BookReview, error) {
	var result []BookReview
	err := r.db.Model(&entities.Review{}).
		Select("reviews.text, reviews.rating, reviews.created_at, people.username").
		Joins("INNER JOIN people ON people.id = reviews.person_id").
		Where("reviews.book_id = ?", bookID).
		Order("reviews.id DESC").
		Scan(&result).Error
	return result, err
}

// GetStatsForBook returns the review count and average rating of a book.
// A book with no reviews has an average of 0; the division is guarded
// explicitly rather than relying on SQL AVG semantics.
func (r *Repository) GetStatsForBook(bookID uint) (*Stats, error) {
	var agg struct {
		Count int64
		Sum   int64
	}
	err := r.db.Model(&entities.Review{}).
		Select("COUNT(*) as count, COALESCE(SUM(rating), 0) as sum").
		Where("book_id = ?", bookID).
		Scan(&agg).Error
	if err != nil {
		return nil, err
	}

	stats := &Stats{Count: agg.Count}
	if agg.Count > 0 {
		stats.Average = float64(agg.Sum) / float64(agg.Count)
	}
	return stats, nil
}
