package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Pankaj72885/care.xyz/internal/apperr"
	"github.com/Pankaj72885/care.xyz/internal/user/domain"
)

type UserRepo struct{ db *gorm.DB }

func NewUserRepo(db *gorm.DB) *UserRepo {
	return &UserRepo{db: db}
}

func (r *UserRepo) Migrate() error {
	return r.db.AutoMigrate(&domain.User{})
}

func (r *UserRepo) Create(ctx context.Context, u *domain.User) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	u.Email = strings.ToLower(u.Email)
	if u.Role == "" {
		u.Role = domain.RoleUser
	}
	if err := r.db.WithContext(ctx).Create(u).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return apperr.ErrConflict
		}
		return err
	}
	return nil
}

func (r *UserRepo) ByID(ctx context.Context, id string) (*domain.User, error) {
	var u domain.User
	if err := r.db.WithContext(ctx).First(&u, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) ByEmail(ctx context.Context, email string) (*domain.User, error) {
	var u domain.User
	err := r.db.WithContext(ctx).Where("email = ?", strings.ToLower(email)).First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

// ByNID looks up the holder of a national id. Used for uniqueness checks
// before profile updates.
func (r *UserRepo) ByNID(ctx context.Context, nid string) (*domain.User, error) {
	var u domain.User
	err := r.db.WithContext(ctx).Where("nid = ?", nid).First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

// UpsertByEmail creates the user on first OAuth sign-in and refreshes the
// display fields on subsequent ones. Never touches role or password hash.
func (r *UserRepo) UpsertByEmail(ctx context.Context, u *domain.User) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	u.Email = strings.ToLower(u.Email)
	if u.Role == "" {
		u.Role = domain.RoleUser
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "email"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "image_url", "updated_at"}),
	}).Create(u).Error
}

func (r *UserRepo) UpdateFields(ctx context.Context, id string, fields map[string]any) (*domain.User, error) {
	res := r.db.WithContext(ctx).Model(&domain.User{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
			return nil, apperr.ErrConflict
		}
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, apperr.ErrNotFound
	}
	return r.ByID(ctx, id)
}

func (r *UserRepo) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&domain.User{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

func (r *UserRepo) List(ctx context.Context, page, size int32, query, role string) ([]domain.User, int64, error) {
	if size <= 0 {
		size = 20
	}
	if page < 0 {
		page = 0
	}
	qb := r.db.WithContext(ctx).Model(&domain.User{})
	if query != "" {
		like := "%" + strings.ToLower(query) + "%"
		qb = qb.Where("LOWER(name) LIKE ? OR LOWER(email) LIKE ?", like, like)
	}
	if role != "" {
		qb = qb.Where("role = ?", strings.ToUpper(role))
	}
	var total int64
	if err := qb.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var out []domain.User
	if err := qb.Order("created_at DESC").Limit(int(size)).Offset(int(page * size)).Find(&out).Error; err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// CountBookings reports how many bookings reference the user. Admin delete
// refuses users with history; bookings themselves live in the booking
// repository.
func (r *UserRepo) CountBookings(ctx context.Context, userID string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Table("bookings").Where("user_id = ?", userID).Count(&n).Error
	return n, err
}
