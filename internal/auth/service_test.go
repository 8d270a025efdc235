package auth

import (
	"errors"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/mrlokans/bookclub/internal/config"
	"github.com/mrlokans/bookclub/internal/entities"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	if err := db.AutoMigrate(&entities.Person{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return db
}

func TestService_Register(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db, config.Auth{BcryptCost: 4})

	tests := []struct {
		name     string
		username string
		password string
		wantErr  error
	}{
		{
			name:     "valid registration",
			username: "alice",
			password: "reading-is-fun",
			wantErr:  nil,
		},
		{
			name:     "missing username",
			username: "",
			password: "reading-is-fun",
			wantErr:  ErrFieldsRequired,
		},
		{
			name:     "missing password",
			username: "bob",
			password: "",
			wantErr:  ErrFieldsRequired,
		},
		{
			name:     "duplicate username",
			username: "alice",
			password: "another-password",
			wantErr:  ErrUserExists,
		},
		{
			name:     "different username succeeds",
			username: "bob",
			password: "reading-is-fun",
			wantErr:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			person, err := svc.Register(tt.username, tt.password)

			if tt.wantErr != nil {
				if err == nil {
					t.Errorf("Register() error = nil, wantErr %v", tt.wantErr)
					return
				}
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("Register() error = %v, wantErr %v", err, tt.wantErr)
				}
				return
			}

			if err != nil {
				t.Errorf("Register() unexpected error = %v", err)
				return
			}
			if person == nil {
				t.Error("Register() returned nil person")
				return
			}
			if person.Username != tt.username {
				t.Errorf("person.Username = %v, want %v", person.Username, tt.username)
			}
			if person.PasswordHash == "" {
				t.Error("person.PasswordHash is empty")
			}
			if person.PasswordHash == tt.password {
				t.Error("person.PasswordHash stores the plaintext password")
			}
		})
	}
}

func TestService_Authenticate(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db, config.Auth{BcryptCost: 4})

	if _, err := svc.Register("alice", "reading-is-fun"); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	tests := []struct {
		name     string
		username string
		password string
		wantErr  error
	}{
		{
			name:     "correct credentials",
			username: "alice",
			password: "reading-is-fun",
			wantErr:  nil,
		},
		{
			name:     "wrong password",
			username: "alice",
			password: "not-her-password",
			wantErr:  ErrInvalidCredentials,
		},
		{
			name:     "unknown username",
			username: "mallory",
			password: "reading-is-fun",
			wantErr:  ErrInvalidCredentials,
		},
		{
			name:     "missing fields",
			username: "",
			password: "",
			wantErr:  ErrFieldsRequired,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			person, err := svc.Authenticate(tt.username, tt.password)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("Authenticate() error = %v, wantErr %v", err, tt.wantErr)
				}
				return
			}

			if err != nil {
				t.Errorf("Authenticate() unexpected error = %v", err)
				return
			}
			if person == nil || person.Username != tt.username {
				t.Errorf("Authenticate() person = %+v, want username %v", person, tt.username)
			}
		})
	}
}

// Unknown usernames and wrong passwords must be indistinguishable so that
// login failures cannot enumerate accounts.
func TestService_Authenticate_NoUsernameEnumeration(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db, config.Auth{BcryptCost: 4})

	if _, err := svc.Register("alice", "reading-is-fun"); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	_, errWrongPassword := svc.Authenticate("alice", "wrong")
	_, errUnknownUser := svc.Authenticate("nobody", "wrong")

	if !errors.Is(errWrongPassword, ErrInvalidCredentials) || !errors.Is(errUnknownUser, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for both, got %v and %v", errWrongPassword, errUnknownUser)
	}
	if errWrongPassword.Error() != errUnknownUser.Error() {
		t.Errorf("error messages differ: %q vs %q", errWrongPassword, errUnknownUser)
	}
}
