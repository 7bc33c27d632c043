package auth

import (
	"context"

	goerrors "github.com/goliatone/go-errors"
)

// Auther handles credential verification and session token issuance.
// Lookup failures and bad passwords carry distinct internal reasons for
// logging, but the HTTP layer maps both to the same response.
type Auther struct {
	repo         RepositoryManager
	tokenService TokenService
	logger       Logger
}

// NewAuthenticator returns a new Auther
func NewAuthenticator(repo RepositoryManager, opts Config) *Auther {
	tokenService := NewTokenService(
		[]byte(opts.GetSigningKey()),
		opts.GetTokenExpiration(),
		opts.GetIssuer(),
		defLogger{},
	)

	return &Auther{
		repo:         repo,
		tokenService: tokenService,
		logger:       defLogger{},
	}
}

func (s *Auther) WithLogger(logger Logger) *Auther {
	if logger != nil {
		s.logger = logger
	}
	return s
}

// TokenService returns the TokenService instance used by this Auther
func (s *Auther) TokenService() TokenService {
	return s.tokenService
}

// Login verifies the credentials and mints a session token. The password
// hash is fetched with the explicit opt-in projection and cleared from the
// returned record.
func (s *Auther) Login(ctx context.Context, email, password string) (*User, string, error) {
	user, err := s.repo.Users().GetByEmailWithPassword(ctx, email)
	if err != nil {
		if goerrors.Is(err, ErrAccountNotFound) {
			s.logger.Info("login failed", "reason", "user not found", "email", NormalizeEmail(email))
			return nil, "", ErrAccountNotFound
		}
		s.logger.Error("login lookup error", "error", err)
		return nil, "", goerrors.Wrap(err, goerrors.CategoryInternal, "failed to retrieve user during login")
	}

	if err := ComparePasswordAndHash(password, user.Password); err != nil {
		if goerrors.Is(err, ErrMismatchedHashAndPassword) || goerrors.Is(err, ErrNoEmptyPassword) {
			s.logger.Info("login failed", "reason", "invalid password", "user_id", user.ID)
			return nil, "", ErrMismatchedHashAndPassword
		}
		s.logger.Error("login compare error", "error", err)
		return nil, "", goerrors.Wrap(err, goerrors.CategoryInternal, "failed to verify credentials")
	}

	token, err := s.tokenService.Generate(user)
	if err != nil {
		s.logger.Error("login token issuance error", "error", err)
		return nil, "", err
	}

	user.Password = ""
	return user, token, nil
}

// IssueSessionToken mints a session token for an already verified account.
func (s *Auther) IssueSessionToken(user *User) (string, error) {
	return s.tokenService.Generate(user)
}
