package service

import (
	"context"
	"strings"

	"github.com/Skotchmaster/petstore/internal/models"
	"github.com/Skotchmaster/petstore/internal/repo"
	"github.com/Skotchmaster/petstore/internal/transport"
	pkg_hash "github.com/Skotchmaster/petstore/pkg/hash"
)

type UserService struct {
	Repo *repo.GormRepo
}

func (s *UserService) Get(ctx context.Context, id uint) (*models.User, error) {
	u, err := s.Repo.GetUser(ctx, id)
	if err != nil {
		return nil, notFound(err, "User not found")
	}
	return u, nil
}

func (s *UserService) List(ctx context.Context, offset, limit int) ([]models.User, int64, error) {
	return s.Repo.ListUsers(ctx, offset, limit)
}

func (s *UserService) UpdateProfile(ctx context.Context, id uint, req transport.UpdateProfileRequest) (*models.User, error) {
	fields := map[string]any{}
	setTrimmed(fields, "full_name", req.FullName)
	setTrimmed(fields, "phone", req.Phone)
	setTrimmed(fields, "address", req.Address)
	setTrimmed(fields, "city", req.City)
	setTrimmed(fields, "state", req.State)
	setTrimmed(fields, "postcode", req.Postcode)
	setTrimmed(fields, "country", req.Country)

	if req.Password != nil {
		if *req.Password == "" {
			return nil, newError(ErrValidation, "Password must not be empty")
		}
		h, err := pkg_hash.HashPassword(*req.Password)
		if err != nil {
			return nil, err
		}
		fields["hashed_password"] = h
	}

	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	u, err := s.Repo.UpdateUser(ctx, id, fields)
	if err != nil {
		return nil, notFound(err, "User not found")
	}
	return u, nil
}

// AdminUpdate changes account flags. An admin cannot lock themselves out.
func (s *UserService) AdminUpdate(ctx context.Context, actorID, id uint, req transport.AdminUpdateUserRequest) (*models.User, error) {
	if actorID == id {
		if req.IsActive != nil && !*req.IsActive {
			return nil, newError(ErrValidation, "Cannot deactivate your own account")
		}
		if req.IsAdmin != nil && !*req.IsAdmin {
			return nil, newError(ErrValidation, "Cannot revoke your own admin rights")
		}
	}

	fields := map[string]any{}
	setTrimmed(fields, "full_name", req.FullName)
	if req.IsActive != nil {
		fields["is_active"] = *req.IsActive
	}
	if req.IsAdmin != nil {
		fields["is_admin"] = *req.IsAdmin
	}

	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	u, err := s.Repo.UpdateUser(ctx, id, fields)
	if err != nil {
		return nil, notFound(err, "User not found")
	}
	return u, nil
}

func setTrimmed(fields map[string]any, column string, v *string) {
	if v != nil {
		fields[column] = strings.TrimSpace(*v)
	}
}
