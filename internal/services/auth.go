package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"sort"
	"strings"
	"time"

	"venuebooking/internal/domain"
)

const minPasswordLen = 8

var emailRegexp = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

type authService struct {
	userRepo       domain.UserRepository
	rosterRepo     domain.RosterRepository
	eventRepo      domain.EventRepository
	txManager      domain.TxManager
	hasher         domain.PasswordHasher
	issuer         domain.TokenIssuer
	emailService   domain.EmailService
	adminEmails    map[string]bool
	tokenExpiry    time.Duration
	logger         *slog.Logger
	contextTimeout time.Duration
}

// NewAuthService creates an AuthService. Accounts signing up with one of adminEmails get the admin flag.
func NewAuthService(userRepo domain.UserRepository,
	rosterRepo domain.RosterRepository,
	eventRepo domain.EventRepository,
	txManager domain.TxManager,
	hasher domain.PasswordHasher,
	issuer domain.TokenIssuer,
	emailService domain.EmailService,
	adminEmails []string,
	tokenExpiry time.Duration,
	logger *slog.Logger,
	timeout time.Duration,
) domain.AuthService {
	admins := make(map[string]bool, len(adminEmails))
	for _, e := range adminEmails {
		admins[normalizeEmail(e)] = true
	}
	return &authService{
		userRepo:       userRepo,
		rosterRepo:     rosterRepo,
		eventRepo:      eventRepo,
		txManager:      txManager,
		hasher:         hasher,
		issuer:         issuer,
		emailService:   emailService,
		adminEmails:    admins,
		tokenExpiry:    tokenExpiry,
		logger:         logger,
		contextTimeout: timeout,
	}
}

func normalizeEmail(email string) string {
	return strings.TrimSpace(strings.ToLower(email))
}

func (s *authService) SignUp(ctx context.Context, name, email, password string) (string, *domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	email = normalizeEmail(email)
	name = strings.TrimSpace(name)
	if !emailRegexp.MatchString(email) {
		return "", nil, fmt.Errorf("%w: invalid email format", domain.ErrInvalidInput)
	}
	if name == "" {
		return "", nil, fmt.Errorf("%w: name is required", domain.ErrInvalidInput)
	}
	if len(password) < minPasswordLen {
		return "", nil, fmt.Errorf("%w: password must be at least %d characters", domain.ErrInvalidInput, minPasswordLen)
	}

	salt, err := s.hasher.GenerateSalt()
	if err != nil {
		return "", nil, err
	}
	hash, err := s.hasher.Hash(salt, password)
	if err != nil {
		return "", nil, err
	}

	now := time.Now()
	user := domain.NewUser(email, name, s.adminEmails[email], now, now)
	user.PasswordHash = hash
	user.Salt = salt
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrDuplicateEmail) {
			return "", nil, domain.ErrDuplicateEmail
		}
		return "", nil, fmt.Errorf("create user: %w", err)
	}

	token, err := s.issuer.Issue(user, s.tokenExpiry)
	if err != nil {
		return "", nil, err
	}

	if err := s.emailService.SendWelcomeMessage(ctx, &domain.WelcomeMessageEmailData{Email: user.Email, Name: user.Name}); err != nil {
		s.logger.WarnContext(ctx, "welcome email failed", "user_id", user.ID, "err", err)
	}
	return token, user, nil
}

func (s *authService) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	user, err := s.userRepo.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", nil, domain.ErrInvalidCredentials
		}
		return "", nil, fmt.Errorf("get user: %w", err)
	}
	if err := s.hasher.Compare(user.PasswordHash, user.Salt, password); err != nil {
		return "", nil, domain.ErrInvalidCredentials
	}

	token, err := s.issuer.Issue(user, s.tokenExpiry)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

func (s *authService) GetByID(ctx context.Context, id string) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

// DeleteAccount removes the caller's own account. Hosted events and roster entries go with it.
func (s *authService) DeleteAccount(ctx context.Context, actor domain.Principal, id string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if actor.UserID == "" || actor.UserID != id {
		return domain.ErrForbidden
	}
	err := s.txManager.WithinTx(ctx, func(ctx context.Context) error {
		joined, err := s.rosterRepo.ListEvents(ctx, domain.RosterParticipant, id)
		if err != nil {
			return fmt.Errorf("list participating events: %w", err)
		}
		// Hosted events are removed by the cascade; only the others need their counter recomputed.
		var eventIDs []string
		for _, e := range joined {
			if e.HostID != id {
				eventIDs = append(eventIDs, e.ID)
			}
		}
		sort.Strings(eventIDs)
		for _, eventID := range eventIDs {
			if _, err := s.eventRepo.GetByIDForUpdate(ctx, eventID); err != nil {
				return fmt.Errorf("lock event: %w", err)
			}
		}
		if err := s.userRepo.Delete(ctx, id); err != nil {
			return err
		}
		for _, eventID := range eventIDs {
			if _, err := s.rosterRepo.SyncParticipantsNo(ctx, eventID); err != nil {
				return fmt.Errorf("sync participants: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return err
		}
		return fmt.Errorf("delete user: %w", err)
	}
	return nil
}
