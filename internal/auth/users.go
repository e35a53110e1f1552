// Package auth provides the user registry and the signed-token session
// layer. The gateway resolves every request to a verified owner identity
// here before any worker runs; the workers themselves never see
// credentials.
package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/taskfolk/tasklistd/internal/kv"
)

var (
	// ErrDuplicateEmail is returned by Register when the email is taken.
	ErrDuplicateEmail = errors.New("email already registered")

	// ErrInvalidCredentials is returned when email or password do not match.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// User is a registered account. The password is stored only as a bcrypt
// hash.
type User struct {
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"password_hash"`
	CreatedAt    time.Time `json:"created_at"`
}

// Users is the account registry, persisted in the shared key-value store
// under its own namespace.
type Users struct {
	store kv.Store
}

// NewUsers creates a registry over the given store.
func NewUsers(store kv.Store) *Users {
	return &Users{store: store}
}

func userKey(email string) string {
	return "u/" + url.PathEscape(email)
}

// Register creates an account. A taken email fails with ErrDuplicateEmail;
// the conditional write makes the uniqueness check race-free.
func (u *Users) Register(name, email, password string) error {
	if name == "" || email == "" || password == "" {
		return errors.New("name, email and password are required")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	record, err := json.Marshal(User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}

	err = u.store.PutIfAbsent(userKey(email), string(record))
	if errors.Is(err, kv.ErrAlreadyExists) {
		return ErrDuplicateEmail
	}
	if err != nil {
		return fmt.Errorf("write user: %w", err)
	}
	return nil
}

// Authenticate verifies an email/password pair and returns the account.
// Unknown emails and wrong passwords are indistinguishable to the caller.
func (u *Users) Authenticate(email, password string) (*User, error) {
	value, err := u.store.Get(userKey(email))
	if errors.Is(err, kv.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("read user: %w", err)
	}

	var user User
	if err := json.Unmarshal([]byte(value), &user); err != nil {
		return nil, fmt.Errorf("decode user: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	return &user, nil
}
