package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/totegamma/liveboard/internal/domain"
	"github.com/totegamma/liveboard/internal/infra/database/models"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, account domain.Account) error {
	record := models.User{
		ID:           account.ID,
		Username:     account.Username,
		PasswordHash: account.PasswordHash,
	}
	err := r.db.WithContext(ctx).Create(&record).Error
	if err == gorm.ErrDuplicatedKey {
		return domain.ValidationError{Message: "User already exists"}
	}
	if err != nil {
		return domain.StorageError{Cause: err}
	}
	return nil
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (domain.Account, error) {
	var user models.User
	err := r.db.WithContext(ctx).Take(&user, "username = ?", username).Error
	if err == gorm.ErrRecordNotFound {
		return domain.Account{}, domain.NotFoundError{Resource: "User"}
	}
	if err != nil {
		return domain.Account{}, domain.StorageError{Cause: err}
	}
	return domain.Account{
		ID:           user.ID,
		Username:     user.Username,
		PasswordHash: user.PasswordHash,
	}, nil
}

func (r *UserRepository) GetByIDs(ctx context.Context, ids []string) ([]domain.Account, error) {
	var users []models.User
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&users).Error
	if err != nil {
		return nil, domain.StorageError{Cause: err}
	}
	accounts := make([]domain.Account, 0, len(users))
	for _, user := range users {
		accounts = append(accounts, domain.Account{
			ID:           user.ID,
			Username:     user.Username,
			PasswordHash: user.PasswordHash,
		})
	}
	return accounts, nil
}
