package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"campushub/internal/auth"
	"campushub/internal/domain"
	"campushub/internal/limiter"
	"campushub/internal/model"
	"campushub/internal/qr"
	"campushub/internal/repo"
)

// Service is the registration orchestrator: it resolves authorization,
// delegates lifecycle decisions to the domain rules and persists the
// outcome through the repository. HTTP concerns stay in the api package.
type Service struct {
	repo     repo.Repository
	counter  limiter.AttemptCounter
	tokens   *auth.TokenIssuer
	log      *zerolog.Logger
	now      func() time.Time
	issueQR  func(registrationID, eventID, userID int64) (string, error)
	maxLogin int
	window   time.Duration
}

type Config struct {
	MaxLoginAttempts int
	LoginWindow      time.Duration
}

func New(r repo.Repository, counter limiter.AttemptCounter, tokens *auth.TokenIssuer, log *zerolog.Logger, cfg Config) *Service {
	if cfg.MaxLoginAttempts <= 0 {
		cfg.MaxLoginAttempts = 5
	}
	if cfg.LoginWindow <= 0 {
		cfg.LoginWindow = 15 * time.Minute
	}
	return &Service{
		repo:     r,
		counter:  counter,
		tokens:   tokens,
		log:      log,
		now:      time.Now,
		issueQR:  qr.Issue,
		maxLogin: cfg.MaxLoginAttempts,
		window:   cfg.LoginWindow,
	}
}

// Login verifies credentials and mints a bearer token. Every attempt bumps
// the shared failure counter first so a locked account stays locked even
// when the password is right; a successful login resets the counter.
func (s *Service) Login(ctx context.Context, email, password string) (string, *model.User, error) {
	attempts, err := s.counter.Incr(ctx, email, s.window)
	if err != nil {
		// Counter outage must not lock everyone out.
		s.log.Error().Err(err).Msg("attempt counter unavailable")
		attempts = 1
	}
	if attempts > s.maxLogin {
		return "", nil, domain.ErrTooManyAttempts
	}

	user, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return "", nil, domain.ErrInvalidCredentials
		}
		return "", nil, err
	}
	if !auth.CheckPassword(user.PasswordHash, password) {
		return "", nil, domain.ErrInvalidCredentials
	}

	if err := s.counter.Reset(ctx, email); err != nil {
		s.log.Error().Err(err).Msg("failed to reset attempt counter")
	}

	token, err := s.tokens.Mint(user, s.now())
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}
