package users

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"strix/models"
)

var (
	ErrEmailRequired    = errors.New("email is required")
	ErrUsernameRequired = errors.New("username is required")
	ErrPasswordRequired = errors.New("password is required")
	ErrEmailTaken       = errors.New("an account with this email already exists")
	ErrUnknownEmail     = errors.New("no account with this email")
	ErrWrongPassword    = errors.New("incorrect password")
)

// DocumentClient is the slice of the document store client the user service
// needs.
type DocumentClient interface {
	Fetch(ctx context.Context) models.UserDocument
	Mutate(ctx context.Context, fn func(doc *models.UserDocument) error) error
}

// Service manages accounts inside the shared remote document. Accounts are
// keyed by lowercased email. Passwords are stored as bcrypt hashes.
type Service struct {
	client DocumentClient
}

func NewService(client DocumentClient) *Service {
	return &Service{client: client}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates a new account and returns its public view.
func (s *Service) Register(ctx context.Context, email, username, password string) (models.User, error) {
	email = normalizeEmail(email)
	username = strings.TrimSpace(username)

	if email == "" {
		return models.User{}, ErrEmailRequired
	}
	if username == "" {
		return models.User{}, ErrUsernameRequired
	}
	if password == "" {
		return models.User{}, ErrPasswordRequired
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, fmt.Errorf("failed to hash password: %w", err)
	}

	record := models.UserRecord{
		ID:            uuid.NewString(),
		Email:         email,
		Username:      username,
		PasswordHash:  string(hash),
		CreatedAt:     time.Now().UTC().Format(time.RFC3339),
		WatchProgress: []models.WatchProgressEntry{},
	}

	err = s.client.Mutate(ctx, func(doc *models.UserDocument) error {
		if _, exists := doc.Users[email]; exists {
			return ErrEmailTaken
		}
		doc.Users[email] = record
		return nil
	})
	if err != nil {
		return models.User{}, err
	}

	log.Printf("[users] Registered account %s", email)
	return record.Public(), nil
}

// Login verifies credentials and returns the account's public view.
func (s *Service) Login(ctx context.Context, email, password string) (models.User, error) {
	email = normalizeEmail(email)
	if email == "" {
		return models.User{}, ErrEmailRequired
	}
	if password == "" {
		return models.User{}, ErrPasswordRequired
	}

	doc := s.client.Fetch(ctx)
	record, ok := doc.Users[email]
	if !ok {
		return models.User{}, ErrUnknownEmail
	}

	if err := bcrypt.CompareHashAndPassword([]byte(record.PasswordHash), []byte(password)); err != nil {
		return models.User{}, ErrWrongPassword
	}
	return record.Public(), nil
}
