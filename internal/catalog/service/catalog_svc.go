package service

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/Pankaj72885/care.xyz/internal/apperr"
	"github.com/Pankaj72885/care.xyz/internal/catalog/domain"
	"github.com/Pankaj72885/care.xyz/internal/catalog/repository"
)

var slugRe = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

type CatalogSvc struct{ repo *repository.ServiceRepo }

func NewCatalogSvc(r *repository.ServiceRepo) *CatalogSvc { return &CatalogSvc{repo: r} }

type ServiceInput struct {
	Title       string
	Slug        string
	Description string
	Category    string
	BaseRate    int64
	ImageURL    string
}

func (in ServiceInput) validate() error {
	if in.Title == "" || in.Category == "" {
		return fmt.Errorf("%w: title and category are required", apperr.ErrValidation)
	}
	if !slugRe.MatchString(in.Slug) {
		return fmt.Errorf("%w: slug must be lowercase kebab-case", apperr.ErrValidation)
	}
	if in.BaseRate <= 0 {
		return fmt.Errorf("%w: base rate must be positive", apperr.ErrValidation)
	}
	return nil
}

func (s *CatalogSvc) Create(ctx context.Context, in ServiceInput) (*domain.Service, error) {
	in.Slug = strings.ToLower(in.Slug)
	if err := in.validate(); err != nil {
		return nil, err
	}
	if _, err := s.repo.BySlug(ctx, in.Slug); err == nil {
		return nil, fmt.Errorf("%w: service with this slug already exists", apperr.ErrConflict)
	}
	svc := &domain.Service{
		Title:       in.Title,
		Slug:        in.Slug,
		Description: in.Description,
		Category:    in.Category,
		BaseRate:    in.BaseRate,
		ImageURL:    in.ImageURL,
		Active:      true,
	}
	if err := s.repo.Create(ctx, svc); err != nil {
		return nil, err
	}
	return svc, nil
}

func (s *CatalogSvc) Update(ctx context.Context, id string, in ServiceInput) (*domain.Service, error) {
	in.Slug = strings.ToLower(in.Slug)
	if err := in.validate(); err != nil {
		return nil, err
	}
	cur, err := s.repo.ByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Slug != cur.Slug {
		if _, err := s.repo.BySlug(ctx, in.Slug); err == nil {
			return nil, fmt.Errorf("%w: service with this slug already exists", apperr.ErrConflict)
		}
	}
	cur.Title = in.Title
	cur.Slug = in.Slug
	cur.Description = in.Description
	cur.Category = in.Category
	cur.BaseRate = in.BaseRate
	cur.ImageURL = in.ImageURL
	if err := s.repo.Update(ctx, cur); err != nil {
		return nil, err
	}
	return cur, nil
}

func (s *CatalogSvc) Toggle(ctx context.Context, id string) (*domain.Service, error) {
	cur, err := s.repo.ByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.repo.SetActive(ctx, id, !cur.Active); err != nil {
		return nil, err
	}
	cur.Active = !cur.Active
	return cur, nil
}

// Delete refuses to remove a service that has bookings; deactivate instead.
func (s *CatalogSvc) Delete(ctx context.Context, id string) error {
	if err := s.repo.DeleteIfUnbooked(ctx, id); err != nil {
		if err == apperr.ErrConflict {
			return fmt.Errorf("%w: cannot delete service with existing bookings, deactivate it instead", apperr.ErrConflict)
		}
		return err
	}
	return nil
}

func (s *CatalogSvc) Get(ctx context.Context, id string) (*domain.Service, error) {
	return s.repo.ByID(ctx, id)
}

func (s *CatalogSvc) GetBySlug(ctx context.Context, slug string) (*domain.Service, error) {
	return s.repo.BySlug(ctx, slug)
}

func (s *CatalogSvc) List(ctx context.Context, page, size int32, category string, activeOnly bool) ([]domain.Service, int64, error) {
	return s.repo.List(ctx, page, size, category, activeOnly)
}
