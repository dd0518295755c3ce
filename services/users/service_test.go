package users

import (
	"context"
	"errors"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"strix/models"
)

type fakeDocumentClient struct {
	doc models.UserDocument
}

func (f *fakeDocumentClient) Fetch(ctx context.Context) models.UserDocument {
	return f.doc
}

func (f *fakeDocumentClient) Mutate(ctx context.Context, fn func(doc *models.UserDocument) error) error {
	doc := f.doc
	if doc.Users == nil {
		doc.Users = make(map[string]models.UserRecord)
	}
	if err := fn(&doc); err != nil {
		return err
	}
	f.doc = doc
	return nil
}

func newTestService() (*Service, *fakeDocumentClient) {
	client := &fakeDocumentClient{doc: models.NewUserDocument()}
	return NewService(client), client
}

func TestRegisterHashesPasswordAndStoresRecord(t *testing.T) {
	svc, client := newTestService()
	ctx := context.Background()

	user, err := svc.Register(ctx, "  Viewer@Example.COM ", " viewer ", "hunter2")
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if user.Email != "viewer@example.com" {
		t.Errorf("expected normalized email, got %q", user.Email)
	}
	if user.Username != "viewer" {
		t.Errorf("expected trimmed username, got %q", user.Username)
	}
	if user.ID == "" || user.CreatedAt == "" {
		t.Errorf("expected id and createdAt to be set, got %+v", user)
	}

	record, ok := client.doc.Users["viewer@example.com"]
	if !ok {
		t.Fatal("expected record stored under normalized email")
	}
	if record.PasswordHash == "hunter2" {
		t.Fatal("password must not be stored in plain text")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(record.PasswordHash), []byte("hunter2")); err != nil {
		t.Fatalf("stored hash does not match password: %v", err)
	}
	if record.WatchProgress == nil {
		t.Error("expected empty watch progress list, not nil")
	}
}

func TestRegisterRejectsTakenEmail(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	if _, err := svc.Register(ctx, "a@example.com", "alice", "pw"); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	_, err := svc.Register(ctx, "A@Example.com", "alice2", "pw2")
	if !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestRegisterValidation(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	if _, err := svc.Register(ctx, "", "name", "pw"); !errors.Is(err, ErrEmailRequired) {
		t.Errorf("expected ErrEmailRequired, got %v", err)
	}
	if _, err := svc.Register(ctx, "a@example.com", "  ", "pw"); !errors.Is(err, ErrUsernameRequired) {
		t.Errorf("expected ErrUsernameRequired, got %v", err)
	}
	if _, err := svc.Register(ctx, "a@example.com", "name", ""); !errors.Is(err, ErrPasswordRequired) {
		t.Errorf("expected ErrPasswordRequired, got %v", err)
	}
}

func TestLogin(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	if _, err := svc.Register(ctx, "a@example.com", "alice", "correct horse"); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	user, err := svc.Login(ctx, "A@Example.com", "correct horse")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if user.Username != "alice" {
		t.Errorf("unexpected user: %+v", user)
	}

	if _, err := svc.Login(ctx, "nobody@example.com", "pw"); !errors.Is(err, ErrUnknownEmail) {
		t.Errorf("expected ErrUnknownEmail, got %v", err)
	}
	if _, err := svc.Login(ctx, "a@example.com", "wrong"); !errors.Is(err, ErrWrongPassword) {
		t.Errorf("expected ErrWrongPassword, got %v", err)
	}
}
