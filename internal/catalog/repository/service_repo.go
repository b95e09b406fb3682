package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Pankaj72885/care.xyz/internal/apperr"
	"github.com/Pankaj72885/care.xyz/internal/catalog/domain"
)

type ServiceRepo struct{ db *gorm.DB }

func NewServiceRepo(db *gorm.DB) *ServiceRepo {
	return &ServiceRepo{db: db}
}

func (r *ServiceRepo) Migrate() error {
	return r.db.AutoMigrate(&domain.Service{})
}

func (r *ServiceRepo) Create(ctx context.Context, s *domain.Service) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	if err := r.db.WithContext(ctx).Create(s).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return apperr.ErrConflict
		}
		return err
	}
	return nil
}

func (r *ServiceRepo) ByID(ctx context.Context, id string) (*domain.Service, error) {
	var s domain.Service
	if err := r.db.WithContext(ctx).First(&s, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}

func (r *ServiceRepo) BySlug(ctx context.Context, slug string) (*domain.Service, error) {
	var s domain.Service
	err := r.db.WithContext(ctx).Where("slug = ?", strings.ToLower(slug)).First(&s).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}

// List returns catalog entries. activeOnly hides deactivated services from
// the public browse pages; admin listings pass false.
func (r *ServiceRepo) List(ctx context.Context, page, size int32, category string, activeOnly bool) ([]domain.Service, int64, error) {
	if size <= 0 {
		size = 20
	}
	if page < 0 {
		page = 0
	}
	qb := r.db.WithContext(ctx).Model(&domain.Service{})
	if category != "" {
		qb = qb.Where("category = ?", category)
	}
	if activeOnly {
		qb = qb.Where("active = ?", true)
	}
	var total int64
	if err := qb.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var out []domain.Service
	if err := qb.Order("title ASC").Limit(int(size)).Offset(int(page * size)).Find(&out).Error; err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (r *ServiceRepo) Update(ctx context.Context, s *domain.Service) error {
	err := r.db.WithContext(ctx).Model(&domain.Service{}).Where("id = ?", s.ID).Updates(map[string]any{
		"title":       s.Title,
		"slug":        s.Slug,
		"description": s.Description,
		"category":    s.Category,
		"base_rate":   s.BaseRate,
		"image_url":   s.ImageURL,
	}).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return apperr.ErrConflict
	}
	return err
}

func (r *ServiceRepo) SetActive(ctx context.Context, id string, active bool) error {
	res := r.db.WithContext(ctx).Model(&domain.Service{}).Where("id = ?", id).Update("active", active)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

// DeleteIfUnbooked hard-deletes the service only when no booking references
// it. Runs in a transaction so a concurrent booking cannot slip in between
// the count and the delete.
func (r *ServiceRepo) DeleteIfUnbooked(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var s domain.Service
		if err := tx.First(&s, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.ErrNotFound
			}
			return err
		}
		var bookings int64
		if err := tx.Table("bookings").Where("service_id = ?", id).Count(&bookings).Error; err != nil {
			return err
		}
		if bookings > 0 {
			return apperr.ErrConflict
		}
		return tx.Delete(&domain.Service{}, "id = ?", id).Error
	})
}
