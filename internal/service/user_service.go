package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"genrelab/internal/cache"
	apperrors "genrelab/internal/errors"
	"genrelab/internal/model"
	"genrelab/internal/repository"
)

const profileCacheTTL = 5 * time.Minute

// Profile is the public view of an account.
type Profile struct {
	ID        uuid.UUID  `json:"id"`
	Email     string     `json:"email"`
	Role      model.Role `json:"role"`
	CreatedAt time.Time  `json:"created_at"`
}

// UserService exposes account administration.
type UserService interface {
	GetProfile(ctx context.Context, id uuid.UUID) (*Profile, error)
	ListAccounts(ctx context.Context) ([]model.Account, error)
	UpdateRole(ctx context.Context, actorID, targetID uuid.UUID, role model.Role) (*model.Account, error)
}

type userService struct {
	repo     repository.AccountRepository
	activity ActivityLogger
	cache    *cache.Client
	logger   *zap.Logger
}

// NewUserService builds a UserService with repository and cache.
func NewUserService(repo repository.AccountRepository, activity ActivityLogger, cache *cache.Client, logger *zap.Logger) UserService {
	return &userService{repo: repo, activity: activity, cache: cache, logger: logger}
}

func (s *userService) cacheKey(id uuid.UUID) string {
	return fmt.Sprintf("profile:%s", id)
}

func (s *userService) GetProfile(ctx context.Context, id uuid.UUID) (*Profile, error) {
	var cached Profile
	if s.cache.GetJSON(ctx, s.cacheKey(id), &cached) {
		return &cached, nil
	}

	account, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrAccountNotFound
		}
		return nil, fmt.Errorf("find account: %w", err)
	}

	profile := &Profile{
		ID:        account.ID,
		Email:     account.Email,
		Role:      account.Role,
		CreatedAt: account.CreatedAt,
	}
	_ = s.cache.SetJSON(ctx, s.cacheKey(id), profile, profileCacheTTL)
	return profile, nil
}

func (s *userService) ListAccounts(ctx context.Context) ([]model.Account, error) {
	accounts, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	return accounts, nil
}

// UpdateRole changes the role of targetID on behalf of actorID. An
// administrator cannot take the Administrator role away from themself.
func (s *userService) UpdateRole(ctx context.Context, actorID, targetID uuid.UUID, role model.Role) (*model.Account, error) {
	if !role.Valid() {
		return nil, apperrors.ErrInvalidRole
	}
	if actorID == targetID && role != model.RoleAdministrator {
		return nil, apperrors.ErrSelfDemotion
	}

	if err := s.repo.UpdateRole(ctx, targetID, role); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrAccountNotFound
		}
		return nil, fmt.Errorf("update role: %w", err)
	}
	_ = s.cache.Delete(ctx, s.cacheKey(targetID))

	if err := s.activity.LogActivity(ctx, &actorID, model.ActionRoleChanged); err != nil {
		return nil, err
	}
	s.logger.Info("account role changed",
		zap.String("actor_id", actorID.String()),
		zap.String("account_id", targetID.String()),
		zap.String("role", string(role)),
	)

	account, err := s.repo.FindByID(ctx, targetID)
	if err != nil {
		return nil, fmt.Errorf("reload account: %w", err)
	}
	return account, nil
}
