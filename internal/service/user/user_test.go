package user

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/willsigmon/boppa/internal/schema"
	"github.com/willsigmon/boppa/pkg/util/password"
)

type fakeStore struct {
	users   []*schema.User
	readErr error
}

func (f *fakeStore) GetUser(_ context.Context, id int) (*schema.User, error) {
	if f.readErr != nil {
		return nil, f.readErr
	}
	for _, u := range f.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) GetUserByUsername(_ context.Context, username string) (*schema.User, error) {
	if f.readErr != nil {
		return nil, f.readErr
	}
	for _, u := range f.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) CreateUser(_ context.Context, in schema.InsertUser) (*schema.User, error) {
	u := &schema.User{ID: len(f.users) + 1, Username: in.Username, Password: in.Password}
	f.users = append(f.users, u)
	return u, nil
}

func (f *fakeStore) CreateContactMessage(context.Context, schema.InsertContactMessage) (*schema.ContactMessage, error) {
	return nil, nil
}
func (f *fakeStore) ListContactMessages(context.Context) ([]*schema.ContactMessage, error) {
	return nil, nil
}
func (f *fakeStore) GetContactMessage(context.Context, int) (*schema.ContactMessage, error) {
	return nil, nil
}

func newTestService(store *fakeStore) *UserService {
	return New(store, password.NewHasher(password.Config{MemoryKiB: 8 * 1024, Iterations: 1, Parallelism: 1}))
}

func TestCreate_HashesPassword(t *testing.T) {
	store := &fakeStore{}
	svc := newTestService(store)

	u, err := svc.Create(context.Background(), schema.InsertUser{Username: " proshop ", Password: "fairway-greens"})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if u.Username != "proshop" {
		t.Errorf("Username = %q, want trimmed", u.Username)
	}
	if u.Password == "fairway-greens" || !strings.HasPrefix(u.Password, "$argon2id$") {
		t.Errorf("stored password is not an argon2id hash: %q", u.Password)
	}
}

func TestCreate_Errors(t *testing.T) {
	store := &fakeStore{}
	svc := newTestService(store)
	ctx := context.Background()

	if _, err := svc.Create(ctx, schema.InsertUser{Username: "proshop", Password: "fairway-greens"}); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	tests := []struct {
		name    string
		in      schema.InsertUser
		check   func(error) bool
		wantErr string
	}{
		{
			name:    "duplicate",
			in:      schema.InsertUser{Username: "proshop", Password: "another-pass"},
			check:   func(err error) bool { return errors.Is(err, ErrUsernameTaken) },
			wantErr: "ErrUsernameTaken",
		},
		{
			name: "invalid",
			in:   schema.InsertUser{Username: "x", Password: "short"},
			check: func(err error) bool {
				var verr *schema.ValidationError
				return errors.As(err, &verr)
			},
			wantErr: "*schema.ValidationError",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(ctx, tt.in)
			if !tt.check(err) {
				t.Errorf("Create() error = %v, want %s", err, tt.wantErr)
			}
		})
	}
}

func TestGet(t *testing.T) {
	store := &fakeStore{users: []*schema.User{{ID: 1, Username: "proshop"}}}
	svc := newTestService(store)
	ctx := context.Background()

	if u, err := svc.Get(ctx, 1); err != nil || u.Username != "proshop" {
		t.Errorf("Get(1) = (%v, %v)", u, err)
	}
	if _, err := svc.Get(ctx, 2); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("Get(2) error = %v, want ErrUserNotFound", err)
	}
	if u, err := svc.GetByUsername(ctx, "proshop"); err != nil || u.ID != 1 {
		t.Errorf("GetByUsername() = (%v, %v)", u, err)
	}
	if _, err := svc.GetByUsername(ctx, "nobody"); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("GetByUsername(nobody) error = %v, want ErrUserNotFound", err)
	}

	failing := newTestService(&fakeStore{readErr: errors.New("db down")})
	if _, err := failing.Get(ctx, 1); err == nil || errors.Is(err, ErrUserNotFound) {
		t.Errorf("Get() with failing store error = %v", err)
	}
}

func TestAuthenticate(t *testing.T) {
	store := &fakeStore{}
	svc := newTestService(store)
	ctx := context.Background()

	created, err := svc.Create(ctx, schema.InsertUser{Username: "proshop", Password: "fairway-greens"})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	store.users = append(store.users, &schema.User{ID: 99, Username: "legacy", Password: "plaintext"})

	tests := []struct {
		name     string
		username string
		password string
		wantErr  error
	}{
		{"correct", "proshop", "fairway-greens", nil},
		{"wrong password", "proshop", "bunker-sand", ErrInvalidCredentials},
		{"unknown user", "nobody", "fairway-greens", ErrInvalidCredentials},
		{"unhashed stored password", "legacy", "plaintext", ErrInvalidCredentials},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, err := svc.Authenticate(ctx, tt.username, tt.password)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Authenticate() error = %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr == nil && u.ID != created.ID {
				t.Errorf("Authenticate() user id = %d, want %d", u.ID, created.ID)
			}
		})
	}
}
