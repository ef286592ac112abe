package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"genrelab/internal/model"
)

// AccountRepository defines account persistence operations.
type AccountRepository interface {
	Create(ctx context.Context, account *model.Account) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Account, error)
	FindByEmail(ctx context.Context, email string) (*model.Account, error)
	List(ctx context.Context) ([]model.Account, error)
	UpdateRole(ctx context.Context, id uuid.UUID, role model.Role) error
	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error
	// UpdateLoginState writes the failure counter and lock deadline in one statement.
	UpdateLoginState(ctx context.Context, id uuid.UUID, failedLoginCount int, lockedUntil *time.Time) error
	// Transaction methods
	WithTransaction(ctx context.Context, fn func(ctx context.Context, repo AccountRepository) error) error
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Account, error)
}

type accountRepository struct {
	db *gorm.DB
}

// NewAccountRepository creates a new account repository.
func NewAccountRepository(db *gorm.DB) AccountRepository {
	return &accountRepository{db: db}
}

// Create creates a new account.
func (r *accountRepository) Create(ctx context.Context, account *model.Account) error {
	return r.db.WithContext(ctx).Create(account).Error
}

// FindByID finds an account by ID.
func (r *accountRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Account, error) {
	var account model.Account
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&account).Error; err != nil {
		return nil, err
	}
	return &account, nil
}

// FindByEmail finds an account by its exact email.
func (r *accountRepository) FindByEmail(ctx context.Context, email string) (*model.Account, error) {
	var account model.Account
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&account).Error; err != nil {
		return nil, err
	}
	return &account, nil
}

// List returns all accounts, newest first.
func (r *accountRepository) List(ctx context.Context) ([]model.Account, error) {
	var accounts []model.Account
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&accounts).Error; err != nil {
		return nil, err
	}
	return accounts, nil
}

// UpdateRole changes the role of an account.
func (r *accountRepository) UpdateRole(ctx context.Context, id uuid.UUID, role model.Role) error {
	res := r.db.WithContext(ctx).Model(&model.Account{}).
		Where("id = ?", id).
		Update("role", role)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// UpdatePassword replaces the password hash and clears any lockout.
func (r *accountRepository) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	return r.db.WithContext(ctx).Model(&model.Account{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"password_hash":      passwordHash,
			"failed_login_count": 0,
			"locked_until":       nil,
		}).Error
}

// UpdateLoginState updates the lockout fields together.
func (r *accountRepository) UpdateLoginState(ctx context.Context, id uuid.UUID, failedLoginCount int, lockedUntil *time.Time) error {
	return r.db.WithContext(ctx).Model(&model.Account{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"failed_login_count": failedLoginCount,
			"locked_until":       lockedUntil,
		}).Error
}

// WithTransaction executes a function within a database transaction.
func (r *accountRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context, repo AccountRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txRepo := &accountRepository{db: tx}
		return fn(ctx, txRepo)
	})
}

// FindByIDForUpdate finds an account by ID with a row-level lock. It only
// holds the lock when called on the repository handed to WithTransaction.
func (r *accountRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Account, error) {
	var account model.Account
	if err := r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).First(&account).Error; err != nil {
		return nil, err
	}
	return &account, nil
}
