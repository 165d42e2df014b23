package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"minimart/internal/domain"

	"github.com/google/uuid"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"golang.org/x/crypto/bcrypt"
)

// Property: stored passwords are always bcrypt hashes, never plaintext
func TestProperty_StoredPasswordsAreHashed(t *testing.T) {
	repo := NewUserRepository(testDB)
	ctx := context.Background()

	properties := gopter.NewProperties(nil)

	properties.Property("passwords round-trip as bcrypt hashes", prop.ForAll(
		func(username string, email string, password string) bool {
			// Clean up before each test
			_, _ = testDB.Exec("DELETE FROM users WHERE username = $1 OR email = $2", username, email)

			hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
			if err != nil {
				t.Logf("Failed to hash password: %v", err)
				return false
			}

			user := &domain.User{
				ID:           uuid.New(),
				Username:     username,
				Email:        email,
				PasswordHash: string(hashedPassword),
				CreatedAt:    time.Now(),
			}

			if err := repo.Create(ctx, user); err != nil {
				t.Logf("Failed to create user: %v", err)
				return false
			}

			retrieved, err := repo.FindByUsername(ctx, username)
			if err != nil {
				t.Logf("Failed to find user: %v", err)
				return false
			}

			if retrieved.PasswordHash == password {
				t.Logf("Password was stored as plaintext!")
				return false
			}

			if err := bcrypt.CompareHashAndPassword([]byte(retrieved.PasswordHash), []byte(password)); err != nil {
				t.Logf("Stored password is not a valid bcrypt hash: %v", err)
				return false
			}

			// Clean up after test
			_, _ = testDB.Exec("DELETE FROM users WHERE id = $1", user.ID)

			return true
		},
		// Generate usernames
		gen.RegexMatch(`[a-z]{5,12}`),
		// Generate valid email addresses
		gen.RegexMatch(`[a-z]{5,10}@[a-z]{3,8}\.(com|org|net)`),
		// Generate passwords with at least 8 characters
		gen.RegexMatch(`[A-Za-z0-9!@#$%]{8,20}`),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestUserCreateDuplicateUsernameRejected(t *testing.T) {
	repo := NewUserRepository(testDB)
	ctx := context.Background()

	username := "duplicate-check-" + uuid.NewString()[:8]

	first := &domain.User{
		ID:           uuid.New(),
		Username:     username,
		Email:        username + "-a@example.com",
		PasswordHash: "hash",
		CreatedAt:    time.Now(),
	}
	if err := repo.Create(ctx, first); err != nil {
		t.Fatalf("first create failed: %v", err)
	}
	t.Cleanup(func() {
		_, _ = testDB.Exec("DELETE FROM users WHERE username = $1", username)
	})

	second := &domain.User{
		ID:           uuid.New(),
		Username:     username,
		Email:        username + "-b@example.com",
		PasswordHash: "hash",
		CreatedAt:    time.Now(),
	}
	if err := repo.Create(ctx, second); !errors.Is(err, ErrUserAlreadyExists) {
		t.Fatalf("expected ErrUserAlreadyExists, got %v", err)
	}
}

func TestUpdatePasswordPersists(t *testing.T) {
	repo := NewUserRepository(testDB)
	ctx := context.Background()

	user := &domain.User{
		ID:           uuid.New(),
		Username:     "pwreset-" + uuid.NewString()[:8],
		Email:        uuid.NewString()[:8] + "@example.com",
		PasswordHash: "old-hash",
		CreatedAt:    time.Now(),
	}
	if err := repo.Create(ctx, user); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	t.Cleanup(func() {
		_, _ = testDB.Exec("DELETE FROM users WHERE id = $1", user.ID)
	})

	if err := repo.UpdatePassword(ctx, user.ID, "new-hash"); err != nil {
		t.Fatalf("update password failed: %v", err)
	}

	retrieved, err := repo.FindByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("find failed: %v", err)
	}
	if retrieved.PasswordHash != "new-hash" {
		t.Errorf("password hash %q, expected %q", retrieved.PasswordHash, "new-hash")
	}
}
