package repository

import (
	"context"
	"time"

	"github.com/yukikurage/crm-api/internal/database"
	"github.com/yukikurage/crm-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormUserRepository is a GORM implementation of UserRepository
type GormUserRepository struct {
	*ArchivableStore[models.User]
	db *gorm.DB
}

// NewUserRepository creates a new UserRepository. Users are always loaded
// with their role.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &GormUserRepository{
		ArchivableStore: newArchivableStore[models.User](db, "users", "Role"),
		db:              db,
	}
}

// Create creates a new user
func (r *GormUserRepository) Create(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(user).Error; err != nil {
		return err
	}
	return r.db.WithContext(ctx).First(&user.Role, user.RoleID).Error
}

// Update saves every column of the user
func (r *GormUserRepository) Update(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Save(user).Error; err != nil {
		return err
	}
	if user.Role.ID != user.RoleID {
		user.Role = models.Role{}
		return r.db.WithContext(ctx).First(&user.Role, user.RoleID).Error
	}
	return nil
}

// FindActiveByUsername finds the non-archived user holding username
func (r *GormUserRepository) FindActiveByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).
		Preload("Role").
		Scopes(database.Active("users")).
		Where("users.username = ?", username).
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// CountActive counts non-archived users
func (r *GormUserRepository) CountActive(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.User{}).Scopes(database.Active("users")).Count(&count).Error
	return count, err
}

// TouchLastLogin stamps the last successful login
func (r *GormUserRepository) TouchLastLogin(ctx context.Context, id uint64, at time.Time) error {
	return r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Update("last_login_date", at).Error
}

// List retrieves active users with search, filtering and pagination
func (r *GormUserRepository) List(ctx context.Context, filter UserFilter) ([]models.User, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.User{}).Scopes(database.Active("users"))
	query = applySearch(query, filter.Search, "users.username", "users.first_name", "users.last_name", "users.email")
	if filter.RoleID != nil {
		query = query.Where("users.role_id = ?", *filter.RoleID)
	}
	return listPage[models.User](ctx, query, "users", filter.ListParams, "Role")
}
