package repositories

import (
	"fleet-tracker/internal/models"
	"fleet-tracker/internal/repositories/base"

	"gorm.io/gorm"
)

// UserRepository persists HTTP layer accounts.
type UserRepository interface {
	Create(user *models.User) error
	GetByUsername(username string) (*models.User, error)
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a gorm-backed user repository.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(user *models.User) error {
	var count int64
	if err := r.db.Model(&models.User{}).Where("username = ?", user.Username).Count(&count).Error; err != nil {
		return base.WrapDBError("check uniqueness", "users", err)
	}
	if count > 0 {
		return base.NewDuplicateEntityError("users", "username", user.Username)
	}

	if err := r.db.Create(user).Error; err != nil {
		return base.WrapDBError("create", "users", err)
	}
	return nil
}

func (r *userRepository) GetByUsername(username string) (*models.User, error) {
	var user models.User
	err := r.db.Where("username = ?", username).First(&user).Error
	if err != nil {
		return nil, base.HandleDBError("get", "users", username, err)
	}
	return &user, nil
}
