package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"genrelab/internal/auth"
	apperrors "genrelab/internal/errors"
	"genrelab/internal/metrics"
	"genrelab/internal/model"
	"genrelab/internal/repository"
)

const (
	bcryptCost        = 10
	minPasswordLength = 6
)

const (
	// MaxFailedLogins is the number of consecutive failures that locks an account.
	MaxFailedLogins = 3
	// LockoutDuration is how long a locked account rejects every attempt.
	LockoutDuration = 30 * time.Minute
)

// ActivityLogger appends audit entries. A nil accountID marks a system action.
type ActivityLogger interface {
	LogActivity(ctx context.Context, accountID *uuid.UUID, action string) error
}

// AuthService authenticates accounts, enforces lockout and checks session tokens.
type AuthService interface {
	ActivityLogger
	Register(ctx context.Context, email, password string, role model.Role) (token string, account *model.Account, err error)
	CreateAccount(ctx context.Context, email, password string, role model.Role) (*model.Account, error)
	Authenticate(ctx context.Context, email, password string) (token string, account *model.Account, err error)
	Authorize(ctx context.Context, token string, requiredRole model.Role) (*auth.Claims, error)
	ResetPassword(ctx context.Context, email, newPassword string) error
}

type authService struct {
	accountRepo  repository.AccountRepository
	activityRepo repository.ActivityLogRepository
	jwtService   *auth.JWTService
	logger       *zap.Logger
	now          func() time.Time
}

// AuthOption customizes the authentication service.
type AuthOption func(*authService)

// WithClock replaces the wall clock used for lockout decisions.
func WithClock(now func() time.Time) AuthOption {
	return func(s *authService) {
		s.now = now
	}
}

// NewAuthService creates a new authentication service.
func NewAuthService(
	accountRepo repository.AccountRepository,
	activityRepo repository.ActivityLogRepository,
	jwtService *auth.JWTService,
	logger *zap.Logger,
	opts ...AuthOption,
) AuthService {
	s := &authService{
		accountRepo:  accountRepo,
		activityRepo: activityRepo,
		jwtService:   jwtService,
		logger:       logger,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register creates a User account through self-service sign-up and returns a
// session token for it. Administrator cannot be self-assigned.
func (s *authService) Register(ctx context.Context, email, password string, role model.Role) (string, *model.Account, error) {
	if role == "" || role == model.RoleAdministrator {
		role = model.RoleUser
	}

	account, err := s.CreateAccount(ctx, email, password, role)
	if err != nil {
		return "", nil, err
	}

	if err := s.LogActivity(ctx, &account.ID, model.ActionRegistration); err != nil {
		return "", nil, err
	}

	token, err := s.jwtService.GenerateToken(account.ID, account.Email, account.Role)
	if err != nil {
		return "", nil, fmt.Errorf("generate token: %w", err)
	}
	return token, account, nil
}

// CreateAccount stores a new account with a hashed password. It neither
// authenticates nor issues a token.
func (s *authService) CreateAccount(ctx context.Context, email, password string, role model.Role) (*model.Account, error) {
	if !role.Valid() {
		return nil, apperrors.ErrInvalidRole
	}
	if len(password) < minPasswordLength {
		return nil, apperrors.ErrWeakPassword
	}

	existing, err := s.accountRepo.FindByEmail(ctx, email)
	if err == nil && existing != nil {
		return nil, apperrors.ErrAccountExists
	}
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("check account existence: %w", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	account := &model.Account{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: string(hashedPassword),
		Role:         role,
	}
	if err := s.accountRepo.Create(ctx, account); err != nil {
		return nil, fmt.Errorf("create account: %w", err)
	}
	return account, nil
}

// Authenticate checks credentials against the stored hash and applies the
// lockout policy. A locked account is rejected before the password is compared.
func (s *authService) Authenticate(ctx context.Context, email, password string) (string, *model.Account, error) {
	account, err := s.accountRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			metrics.AuthAttemptsTotal.WithLabelValues(metrics.AuthResultInvalidCredentials).Inc()
			return "", nil, apperrors.ErrInvalidCredentials
		}
		return "", nil, fmt.Errorf("find account: %w", err)
	}

	now := s.now()
	if account.IsLocked(now) {
		metrics.AuthAttemptsTotal.WithLabelValues(metrics.AuthResultLocked).Inc()
		return "", nil, apperrors.ErrAccountLocked
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		return "", nil, s.recordFailure(ctx, account.ID, now)
	}

	if err := s.accountRepo.UpdateLoginState(ctx, account.ID, 0, nil); err != nil {
		return "", nil, fmt.Errorf("reset login state: %w", err)
	}
	account.FailedLoginCount = 0
	account.LockedUntil = nil

	if err := s.LogActivity(ctx, &account.ID, model.ActionLogin); err != nil {
		return "", nil, err
	}

	token, err := s.jwtService.GenerateToken(account.ID, account.Email, account.Role)
	if err != nil {
		return "", nil, fmt.Errorf("generate token: %w", err)
	}

	metrics.AuthAttemptsTotal.WithLabelValues(metrics.AuthResultSuccess).Inc()
	return token, account, nil
}

// recordFailure increments the failure counter under a row lock so that
// concurrent failures are all counted, and opens the lockout window on the
// threshold. It returns the error the caller should surface.
func (s *authService) recordFailure(ctx context.Context, accountID uuid.UUID, now time.Time) error {
	var alreadyLocked, tripped bool
	var failures int

	err := s.accountRepo.WithTransaction(ctx, func(ctx context.Context, repo repository.AccountRepository) error {
		account, err := repo.FindByIDForUpdate(ctx, accountID)
		if err != nil {
			return err
		}
		// A concurrent attempt may have opened the window since our first read.
		if account.IsLocked(now) {
			alreadyLocked = true
			return nil
		}

		failures = account.FailedLoginCount + 1
		var lockedUntil *time.Time
		if failures >= MaxFailedLogins {
			until := now.Add(LockoutDuration)
			lockedUntil = &until
			tripped = true
		}
		return repo.UpdateLoginState(ctx, accountID, failures, lockedUntil)
	})
	if err != nil {
		return fmt.Errorf("record failed login: %w", err)
	}

	switch {
	case tripped:
		metrics.AuthAttemptsTotal.WithLabelValues(metrics.AuthResultLocked).Inc()
		metrics.AccountLockoutsTotal.Inc()
		s.logger.Warn("account locked after repeated failed logins",
			zap.String("account_id", accountID.String()),
			zap.Int("failed_logins", failures),
			zap.Duration("lockout", LockoutDuration),
		)
		if err := s.LogActivity(ctx, &accountID, model.ActionAccountLocked); err != nil {
			s.logger.Error("record lockout activity", zap.Error(err))
		}
		return apperrors.ErrAccountLocked
	case alreadyLocked:
		metrics.AuthAttemptsTotal.WithLabelValues(metrics.AuthResultLocked).Inc()
		return apperrors.ErrAccountLocked
	default:
		metrics.AuthAttemptsTotal.WithLabelValues(metrics.AuthResultInvalidCredentials).Inc()
		return apperrors.ErrInvalidCredentials
	}
}

// Authorize verifies a session token and, when requiredRole is set, that the
// token's role satisfies it. Administrator satisfies every role. All failures
// are reported as ErrInvalidToken.
func (s *authService) Authorize(ctx context.Context, token string, requiredRole model.Role) (*auth.Claims, error) {
	claims, err := s.jwtService.ValidateToken(token)
	if err != nil {
		metrics.AuthorizationFailuresTotal.Inc()
		s.logger.Debug("token rejected", zap.Error(err))
		return nil, apperrors.ErrInvalidToken
	}

	if requiredRole != "" && claims.Role != requiredRole && claims.Role != model.RoleAdministrator {
		metrics.AuthorizationFailuresTotal.Inc()
		s.logger.Debug("insufficient role",
			zap.String("account_id", claims.AccountID.String()),
			zap.String("role", string(claims.Role)),
			zap.String("required_role", string(requiredRole)),
		)
		return nil, apperrors.ErrInvalidToken
	}

	return claims, nil
}

// LogActivity appends an audit entry.
func (s *authService) LogActivity(ctx context.Context, accountID *uuid.UUID, action string) error {
	entry := &model.ActivityLog{
		AccountID: accountID,
		Action:    action,
		CreatedAt: s.now(),
	}
	if err := s.activityRepo.Create(ctx, entry); err != nil {
		return fmt.Errorf("log activity %s: %w", action, err)
	}
	return nil
}

// ResetPassword sets a new password and clears any lockout.
func (s *authService) ResetPassword(ctx context.Context, email, newPassword string) error {
	if len(newPassword) < minPasswordLength {
		return apperrors.ErrWeakPassword
	}

	account, err := s.accountRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrAccountNotFound
		}
		return fmt.Errorf("find account: %w", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcryptCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.accountRepo.UpdatePassword(ctx, account.ID, string(hashedPassword)); err != nil {
		return fmt.Errorf("update password: %w", err)
	}

	return s.LogActivity(ctx, &account.ID, model.ActionPasswordReset)
}
