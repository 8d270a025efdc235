package entities

import "time"

// Person is a registered book-club member. Created at registration,
// read at login; the application never updates or deletes people.
type Person struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"uniqueIndex;size:100" json:"username"`
	PasswordHash string    `gorm:"size:100" json:"-"` // bcrypt hash, never plaintext
	CreatedAt    time.Time `json:"created_at"`

	Reviews []Review `gorm:"foreignKey:PersonID" json:"-"`
}

// Book is a catalog entry. Read-only from the application's perspective:
// rows are seeded via the seed-books command, never through HTTP routes.
type Book struct {
	ID     uint   `gorm:"primaryKey" json:"id"`
	ISBN   string `gorm:"uniqueIndex;size:20" json:"isbn"`
	Title  string `gorm:"index;size:512" json:"title"`
	Author string `gorm:"index;size:256" json:"author"`
	Year   int    `json:"publication_date"`

	Reviews []Review `gorm:"foreignKey:BookID" json:"-"`
}

// Review is a member's review of a book. The composite unique index backs
// the one-review-per-person-per-book invariant; the repositories also check
// it explicitly so the handler can show a friendly message instead of a
// constraint error.
type Review struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	BookID    uint      `gorm:"index;uniqueIndex:idx_reviews_person_book" json:"book_id"`
	PersonID  uint      `gorm:"index;uniqueIndex:idx_reviews_person_book" json:"person_id"`
	Text      string    `gorm:"type:text" json:"review"`
	Rating    int       `json:"rating"`
	CreatedAt time.Time `json:"created_at"`

	Book   Book   `gorm:"foreignKey:BookID" json:"-"`
	Person Person `gorm:"foreignKey:PersonID" json:"-"`
}
