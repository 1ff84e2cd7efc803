package repository

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"contesthub/internal/db"
	"contesthub/internal/model"
)

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository builds a GORM-backed repository.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicate
	case errors.Is(err, driver.ErrBadConn), errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	default:
		return err
	}
}

func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	return translate(r.db.WithContext(ctx).Create(user).Error)
}

// UpdateProfile writes only the supplied profile columns, leaving role and quota alone.
func (r *userRepository) UpdateProfile(ctx context.Context, email string, patch model.ProfilePatch) error {
	fields := map[string]interface{}{}
	if patch.Name != nil {
		fields["name"] = *patch.Name
	}
	if patch.Photo != nil {
		fields["photo"] = *patch.Photo
	}
	if patch.Bio != nil {
		fields["bio"] = *patch.Bio
	}
	if len(fields) == 0 {
		return r.exists(ctx, "email = ?", email)
	}
	res := r.db.WithContext(ctx).Model(&model.User{}).Where("email = ?", email).Updates(fields)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return r.exists(ctx, "email = ?", email)
	}
	return nil
}

func (r *userRepository) FindByID(ctx context.Context, id string) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (r *userRepository) FindByEmails(ctx context.Context, emails []string) ([]model.User, error) {
	if len(emails) == 0 {
		return nil, nil
	}
	var users []model.User
	if err := r.db.WithContext(ctx).Where("email IN ?", emails).Find(&users).Error; err != nil {
		return nil, translate(err)
	}
	return users, nil
}

func (r *userRepository) List(ctx context.Context) ([]model.User, error) {
	var users []model.User
	if err := r.db.WithContext(ctx).Order("created_at").Find(&users).Error; err != nil {
		return nil, translate(err)
	}
	return users, nil
}

func (r *userRepository) SetRole(ctx context.Context, id string, role model.Role) error {
	res := r.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", id).Update("role", role)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return r.exists(ctx, "id = ?", id)
	}
	return nil
}

func (r *userRepository) SetPackage(ctx context.Context, email, packageID string, limit int) error {
	res := r.db.WithContext(ctx).Model(&model.User{}).Where("email = ?", email).
		Updates(map[string]interface{}{"package_id": packageID, "contest_limit": limit})
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return r.exists(ctx, "email = ?", email)
	}
	return nil
}

// exists disambiguates a zero-row update: MySQL reports 0 affected rows when the
// new values equal the old ones.
func (r *userRepository) exists(ctx context.Context, query string, arg interface{}) error {
	var n int64
	if err := r.db.WithContext(ctx).Model(&model.User{}).Where(query, arg).Count(&n).Error; err != nil {
		return translate(err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *userRepository) Ping(ctx context.Context) error {
	return db.PingSQL(ctx, r.db)
}
