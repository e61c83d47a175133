package user

import (
	"context"
	"errors"

	"github.com/clinicdesk/clinicdesk/internal/platform/auth"
)

// ErrBadCredentials is returned for unknown usernames and wrong passwords
// alike, so login failures never reveal which half was wrong.
var ErrBadCredentials = errors.New("invalid username or password")

type Service struct {
	users  Repository
	tokens *auth.TokenIssuer
}

func NewService(users Repository, tokens *auth.TokenIssuer) *Service {
	return &Service{users: users, tokens: tokens}
}

// Login verifies credentials and issues a bearer token.
func (s *Service) Login(ctx context.Context, creds Credentials) (string, *User, error) {
	if err := creds.Validate(); err != nil {
		return "", nil, err
	}
	u, err := s.users.GetByUsername(ctx, creds.Username)
	if errors.Is(err, ErrNotFound) {
		return "", nil, ErrBadCredentials
	}
	if err != nil {
		return "", nil, err
	}
	if !u.CheckPassword(creds.Password) {
		return "", nil, ErrBadCredentials
	}
	token, err := s.tokens.Issue(u.ID, u.Username)
	if err != nil {
		return "", nil, err
	}
	return token, u, nil
}

// Register creates a staff account. There is no self-service signup route;
// this is reached from the CLI's "user create" command.
func (s *Service) Register(ctx context.Context, username, password string) (*User, error) {
	creds := Credentials{Username: username, Password: password}
	if err := creds.Validate(); err != nil {
		return nil, err
	}
	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}
	u := &User{Username: creds.Username, PasswordHash: hash}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}
