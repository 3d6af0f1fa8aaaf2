package application

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/dongju2-lee/sample-micro-app/internal/user/domain"
)

type memRepo struct {
	nextID int64
	users  map[string]domain.User
}

func newMemRepo() *memRepo {
	return &memRepo{nextID: 1, users: map[string]domain.User{}}
}

func (r *memRepo) Create(_ context.Context, u domain.User) (domain.User, error) {
	u.ID = r.nextID
	r.nextID++
	u.CreatedAt = time.Now()
	r.users[u.Username] = u
	return u, nil
}

func (r *memRepo) ByUsername(_ context.Context, username string) (domain.User, error) {
	u, ok := r.users[username]
	if !ok {
		return domain.User{}, domain.ErrUserNotFound
	}
	return u, nil
}

func (r *memRepo) ByID(_ context.Context, id int64) (domain.User, error) {
	for _, u := range r.users {
		if u.ID == id {
			return u, nil
		}
	}
	return domain.User{}, domain.ErrUserNotFound
}

func newTestService(t *testing.T) (*Service, *memRepo) {
	t.Helper()
	repo := newMemRepo()
	return NewService(slog.New(slog.NewTextHandler(io.Discard, nil)), repo, "test-secret"), repo
}

func TestSignupLoginValidate(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	u, err := svc.Signup(ctx, "foodlover", "foodlover@example.com", "hunter22")
	if err != nil {
		t.Fatalf("signup: %v", err)
	}
	if u.ID == 0 || !u.Active {
		t.Fatalf("unexpected user: %+v", u)
	}

	token, err := svc.Login(ctx, "foodlover", "hunter22")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if token == "" {
		t.Fatal("empty token")
	}

	claims, err := svc.Validate(ctx, token)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if claims.UserID != u.ID || claims.Username != "foodlover" {
		t.Fatalf("claims = %+v", claims)
	}
}

func TestSignupDuplicateUsername(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Signup(ctx, "foodlover", "a@example.com", "pw1"); err != nil {
		t.Fatal(err)
	}
	_, err := svc.Signup(ctx, "foodlover", "b@example.com", "pw2")
	if !errors.Is(err, domain.ErrUsernameTaken) {
		t.Fatalf("got %v, want ErrUsernameTaken", err)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Signup(ctx, "foodlover", "a@example.com", "hunter22"); err != nil {
		t.Fatal(err)
	}

	if _, err := svc.Login(ctx, "foodlover", "wrong"); !errors.Is(err, domain.ErrInvalidCredential) {
		t.Fatalf("wrong password: got %v", err)
	}
	if _, err := svc.Login(ctx, "nobody", "hunter22"); !errors.Is(err, domain.ErrInvalidCredential) {
		t.Fatalf("unknown user: got %v", err)
	}

	u := repo.users["foodlover"]
	u.Active = false
	repo.users["foodlover"] = u
	if _, err := svc.Login(ctx, "foodlover", "hunter22"); !errors.Is(err, domain.ErrInvalidCredential) {
		t.Fatalf("inactive user: got %v", err)
	}
}

func TestValidateRejectsBadTokens(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Signup(ctx, "foodlover", "a@example.com", "hunter22"); err != nil {
		t.Fatal(err)
	}
	token, err := svc.Login(ctx, "foodlover", "hunter22")
	if err != nil {
		t.Fatal(err)
	}

	for _, bad := range []string{"", "not-a-token", token + "x"} {
		if _, err := svc.Validate(ctx, bad); !errors.Is(err, domain.ErrInvalidToken) {
			t.Errorf("token %.12q: got %v, want ErrInvalidToken", bad, err)
		}
	}

	// A token signed with a different secret must be rejected.
	other := NewService(slog.New(slog.NewTextHandler(io.Discard, nil)), newMemRepo(), "other-secret")
	if _, err := other.Signup(ctx, "foodlover", "a@example.com", "hunter22"); err != nil {
		t.Fatal(err)
	}
	foreign, err := other.Login(ctx, "foodlover", "hunter22")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Validate(ctx, foreign); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("foreign token: got %v, want ErrInvalidToken", err)
	}
}

func TestValidateRejectsExpiredToken(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Signup(ctx, "foodlover", "a@example.com", "hunter22"); err != nil {
		t.Fatal(err)
	}
	svc.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	token, err := svc.Login(ctx, "foodlover", "hunter22")
	if err != nil {
		t.Fatal(err)
	}
	svc.now = time.Now

	if _, err := svc.Validate(ctx, token); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("expired token: got %v, want ErrInvalidToken", err)
	}
}

func ExampleService_Signup() {
	svc := NewService(slog.New(slog.NewTextHandler(io.Discard, nil)), newMemRepo(), "secret")
	u, _ := svc.Signup(context.Background(), "foodlover", "foodlover@example.com", "hunter22")
	fmt.Println(u.Username, u.Active)
	// Output: foodlover true
}
