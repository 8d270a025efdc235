// Package auth implements registration, login and session handling for the
// book club: bcrypt password storage, an scs-backed session manager, the
// guard middleware for protected pages, and the auth HTTP handlers.
package auth

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/mrlokans/bookclub/internal/config"
	"github.com/mrlokans/bookclub/internal/entities"
)

var (
	ErrPersonNotFound = errors.New("person not found")
	ErrUserExists     = errors.New("a user already exists with this username")
	ErrFieldsRequired = errors.New("username and password are required")

	// ErrInvalidCredentials covers both an unknown username and a wrong
	// password so that login failures cannot be used to enumerate usernames.
	ErrInvalidCredentials = errors.New("incorrect username or password")
)

// Service handles registration and authentication.
type Service struct {
	db     *gorm.DB
	config config.Auth
}

// NewService creates a new authentication service.
func NewService(db *gorm.DB, cfg config.Auth) *Service {
	return &Service{
		db:     db,
		config: cfg,
	}
}

// Register creates a new person with a hashed password. Both fields must be
// non-empty and the username must not be taken.
func (s *Service) Register(username, password string) (*entities.Person, error) {
	if username == "" || password == "" {
		return nil, ErrFieldsRequired
	}

	var existing entities.Person
	err := s.db.Where("username = ?", username).First(&existing).Error
	if err == nil {
		return nil, ErrUserExists
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check existing person: %w", err)
	}

	passwordHash, err := HashPassword(password, s.config.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	person := &entities.Person{
		Username:     username,
		PasswordHash: passwordHash,
	}

	if err := s.db.Create(person).Error; err != nil {
		return nil, fmt.Errorf("failed to create person: %w", err)
	}

	return person, nil
}

// Authenticate validates credentials and returns the person. An unknown
// username and a failed password check both return ErrInvalidCredentials.
func (s *Service) Authenticate(username, password string) (*entities.Person, error) {
	if username == "" || password == "" {
		return nil, ErrFieldsRequired
	}

	var person entities.Person
	err := s.db.Where("username = ?", username).First(&person).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find person: %w", err)
	}

	if err := CheckPassword(password, person.PasswordHash); err != nil {
		if errors.Is(err, ErrInvalidPassword) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	return &person, nil
}

// GetPersonByID retrieves a person by their ID.
func (s *Service) GetPersonByID(id uint) (*entities.Person, error) {
	var person entities.Person
	err := s.db.First(&person, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPersonNotFound
		}
		return nil, err
	}
	return &person, nil
}
