package service

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/Pankaj72885/care.xyz/internal/apperr"
	"github.com/Pankaj72885/care.xyz/internal/user/domain"
	"github.com/Pankaj72885/care.xyz/internal/user/repository"
)

var (
	nidRe     = regexp.MustCompile(`^\d{13}$`)
	contactRe = regexp.MustCompile(`^\d{11}$`)
)

type UserSvc struct{ repo *repository.UserRepo }

func NewUserSvc(r *repository.UserRepo) *UserSvc { return &UserSvc{repo: r} }

func (s *UserSvc) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return s.repo.ByID(ctx, id)
}

type UpdateProfileInput struct {
	Name     string
	Contact  string
	NID      string
	Division string
	District string
	Upazila  string
	Address  string
	ImageURL string
}

// UpdateProfile handles the self-service settings form. NID and contact
// formats follow Bangladeshi national id / mobile number lengths.
func (s *UserSvc) UpdateProfile(ctx context.Context, userID string, in UpdateProfileInput) (*domain.User, error) {
	if in.NID != "" && !nidRe.MatchString(in.NID) {
		return nil, fmt.Errorf("%w: nid must be 13 digits", apperr.ErrValidation)
	}
	if in.Contact != "" && !contactRe.MatchString(in.Contact) {
		return nil, fmt.Errorf("%w: contact must be 11 digits", apperr.ErrValidation)
	}
	if in.NID != "" {
		if holder, err := s.repo.ByNID(ctx, in.NID); err == nil && holder.ID != userID {
			return nil, fmt.Errorf("%w: nid already in use", apperr.ErrConflict)
		}
	}

	fields := map[string]any{}
	if in.Name != "" {
		fields["name"] = in.Name
	}
	if in.Contact != "" {
		fields["contact"] = in.Contact
	}
	if in.NID != "" {
		fields["nid"] = in.NID
	}
	if in.Division != "" {
		fields["division"] = in.Division
	}
	if in.District != "" {
		fields["district"] = in.District
	}
	if in.Upazila != "" {
		fields["upazila"] = in.Upazila
	}
	if in.Address != "" {
		fields["address"] = in.Address
	}
	if in.ImageURL != "" {
		fields["image_url"] = in.ImageURL
	}
	if len(fields) == 0 {
		return s.repo.ByID(ctx, userID)
	}
	return s.repo.UpdateFields(ctx, userID, fields)
}

// CompleteProfile records NID and contact after a first OAuth sign-in.
func (s *UserSvc) CompleteProfile(ctx context.Context, userID, nid, contact string) error {
	if nid == "" || contact == "" {
		return fmt.Errorf("%w: nid and contact are required", apperr.ErrValidation)
	}
	if holder, err := s.repo.ByNID(ctx, nid); err == nil && holder.ID != userID {
		return fmt.Errorf("%w: nid already in use", apperr.ErrConflict)
	}
	_, err := s.repo.UpdateFields(ctx, userID, map[string]any{"nid": nid, "contact": contact})
	return err
}

func (s *UserSvc) List(ctx context.Context, page, size int32, query, role string) ([]domain.User, int64, error) {
	return s.repo.List(ctx, page, size, query, role)
}

type AdminUpdateUserInput struct {
	Name    string
	Email   string
	Contact string
	NID     string
}

func (s *UserSvc) AdminUpdate(ctx context.Context, userID string, in AdminUpdateUserInput) (*domain.User, error) {
	u, err := s.repo.ByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	email := strings.ToLower(in.Email)
	if email != "" && email != u.Email {
		if _, err := s.repo.ByEmail(ctx, email); err == nil {
			return nil, fmt.Errorf("%w: email already in use", apperr.ErrConflict)
		}
	}
	if in.NID != "" && (u.NID == nil || in.NID != *u.NID) {
		if holder, err := s.repo.ByNID(ctx, in.NID); err == nil && holder.ID != userID {
			return nil, fmt.Errorf("%w: nid already in use", apperr.ErrConflict)
		}
	}

	fields := map[string]any{"name": in.Name}
	if email != "" {
		fields["email"] = email
	}
	if in.Contact != "" {
		fields["contact"] = in.Contact
	}
	if in.NID != "" {
		fields["nid"] = in.NID
	}
	return s.repo.UpdateFields(ctx, userID, fields)
}

// UpdateRole changes a user's role. Admins cannot demote themselves, so
// the system can never lose its last reachable admin by accident.
func (s *UserSvc) UpdateRole(ctx context.Context, callerID, userID string, role domain.Role) (*domain.User, error) {
	if role != domain.RoleUser && role != domain.RoleAdmin {
		return nil, fmt.Errorf("%w: unknown role %q", apperr.ErrValidation, role)
	}
	if callerID == userID && role == domain.RoleUser {
		return nil, fmt.Errorf("%w: you cannot demote yourself", apperr.ErrConflict)
	}
	return s.repo.UpdateFields(ctx, userID, map[string]any{"role": role})
}

func (s *UserSvc) AdminDelete(ctx context.Context, callerID, userID string) error {
	if callerID == userID {
		return fmt.Errorf("%w: you cannot delete yourself", apperr.ErrConflict)
	}
	n, err := s.repo.CountBookings(ctx, userID)
	if err != nil {
		return err
	}
	if n > 0 {
		return fmt.Errorf("%w: user has %d bookings, deactivate instead of deleting", apperr.ErrConflict, n)
	}
	return s.repo.Delete(ctx, userID)
}

func (s *UserSvc) ResetPassword(ctx context.Context, userID, newPassword string) error {
	if len(newPassword) < 6 {
		return fmt.Errorf("%w: password must be at least 6 characters", apperr.ErrValidation)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	_, err = s.repo.UpdateFields(ctx, userID, map[string]any{"password_hash": string(hash)})
	return err
}
