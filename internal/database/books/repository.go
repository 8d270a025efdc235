// Package books provides database operations for the book catalog.
//
// # Usage
//
//	repo := books.NewRepository(db)
//	matches, err := repo.SearchBooks("tolkien")
package books

import (
	"strings"

	"gorm.io/gorm"

	"github.com/mrlokans/bookclub/internal/entities"
)

// Repository handles all book catalog database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new books repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// GetBookByID retrieves a book by its ID.
func (r *Repository) GetBookByID(id uint) (*entities.Book, error) {
	var book entities.Book
	err := r.db.First(&book, id).Error
	if err != nil {
		return nil, err
	}
	return &book, nil
}

// GetBookByISBN retrieves a book by its ISBN.
func (r *Repository) GetBookByISBN(isbn string) (*entities.Book, error) {
	var book entities.Book
	err := r.db.Where("isbn = ?", isbn).First(&book).Error
	if err != nil {
		return nil, err
	}
	return &book, nil
}

// SearchBooks finds all books whose isbn, title or author contains the query
// as a case-insensitive substring. Surrounding whitespace is trimmed first;
// an empty query matches every book.
func (r *Repository) SearchBooks(query string) ([]entities.Book, error) {
	pattern := "%" + strings.TrimSpace(query) + "%"

	var books []entities.Book
	err := r.db.
		Where("LOWER(isbn) LIKE LOWER(?) OR LOWER(title) LIKE LOWER(?) OR LOWER(author) LIKE LOWER(?)",
			pattern, pattern, pattern).
		Find(&books).Error
	return books, err
}

// CreateBook inserts a catalog entry. Used by the seed-books command only;
// no HTTP route creates books.
func (r *Repository) CreateBook(book *entities.Book) error {
	return r.db.Create(book).Error
}

// HasBookWithISBN reports whether a catalog entry with the given ISBN exists.
func (r *Repository) HasBookWithISBN(isbn string) (bool, error) {
	var count int64
	err := r.db.Model(&entities.Book{}).Where("isbn = ?", isbn).Count(&count).Error
	return count > 0, err
}

// CountBooks returns the catalog size.
func (r *Repository) CountBooks() (int64, error) {
	var count int64
	err := r.db.Model(&entities.Book{}).Count(&count).Error
	return count, err
}
