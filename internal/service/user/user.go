package user

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/willsigmon/boppa/internal/schema"
	"github.com/willsigmon/boppa/internal/storage"
	"github.com/willsigmon/boppa/pkg/util/password"
)

type Service interface {
	Create(ctx context.Context, in schema.InsertUser) (*schema.User, error)
	Get(ctx context.Context, id int) (*schema.User, error)
	GetByUsername(ctx context.Context, username string) (*schema.User, error)
	Authenticate(ctx context.Context, username, pass string) (*schema.User, error)
}

type UserService struct {
	store  storage.Storage
	hasher *password.Hasher

	// dummyHash is verified for unknown usernames so that both failure
	// paths cost one argon2 computation.
	dummyHash string
}

func New(store storage.Storage, hasher *password.Hasher) *UserService {
	dummy, err := hasher.Hash(password.Generate(24))
	if err != nil {
		slog.Warn("user: prepare dummy hash failed", "err", err)
	}
	return &UserService{store: store, hasher: hasher, dummyHash: dummy}
}

// Create stores a new user with an Argon2id hash of the given password.
func (s *UserService) Create(ctx context.Context, in schema.InsertUser) (*schema.User, error) {
	in, err := schema.ParseInsertUser(in)
	if err != nil {
		return nil, err
	}

	existing, err := s.store.GetUserByUsername(ctx, in.Username)
	if err != nil {
		return nil, fmt.Errorf("failed to check username: %w", err)
	}
	if existing != nil {
		return nil, ErrUsernameTaken
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	u, err := s.store.CreateUser(ctx, schema.InsertUser{Username: in.Username, Password: hash})
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return u, nil
}

func (s *UserService) Get(ctx context.Context, id int) (*schema.User, error) {
	u, err := s.store.GetUser(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query user: %w", err)
	}
	if u == nil {
		return nil, ErrUserNotFound
	}
	return u, nil
}

func (s *UserService) GetByUsername(ctx context.Context, username string) (*schema.User, error) {
	u, err := s.store.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("failed to query user: %w", err)
	}
	if u == nil {
		return nil, ErrUserNotFound
	}
	return u, nil
}

// Authenticate checks a username and password pair. Unknown users and wrong
// passwords both yield ErrInvalidCredentials.
func (s *UserService) Authenticate(ctx context.Context, username, pass string) (*schema.User, error) {
	u, err := s.store.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("failed to query user: %w", err)
	}
	if u == nil {
		_ = s.hasher.Verify(s.dummyHash, pass)
		return nil, ErrInvalidCredentials
	}

	if err := s.hasher.Verify(u.Password, pass); err != nil {
		if !errors.Is(err, password.ErrMismatch) {
			slog.WarnContext(ctx, "user: stored password is not a valid hash", "user_id", u.ID, "err", err)
		}
		return nil, ErrInvalidCredentials
	}

	if s.hasher.NeedsRehash(u.Password) {
		slog.InfoContext(ctx, "user: password hash uses outdated parameters", "user_id", u.ID)
	}
	return u, nil
}
