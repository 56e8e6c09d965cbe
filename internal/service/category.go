package service

import (
	"context"
	"errors"
	"strings"
	"unicode"

	"gorm.io/gorm"

	"github.com/Skotchmaster/petstore/internal/models"
	"github.com/Skotchmaster/petstore/internal/repo"
	"github.com/Skotchmaster/petstore/internal/transport"
	"github.com/Skotchmaster/petstore/pkg/db"
)

type CategoryService struct {
	Repo *repo.GormRepo
}

func (s *CategoryService) List(ctx context.Context) ([]models.Category, error) {
	return s.Repo.ListCategories(ctx, true)
}

func (s *CategoryService) Get(ctx context.Context, id uint) (*models.Category, error) {
	c, err := s.Repo.GetCategory(ctx, id)
	if err != nil {
		return nil, notFound(err, "Category not found")
	}
	return c, nil
}

func (s *CategoryService) Create(ctx context.Context, req transport.CreateCategoryRequest) (*models.Category, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, newError(ErrValidation, "Category name is required")
	}
	slug := Slugify(req.Slug)
	if slug == "" {
		slug = Slugify(name)
	}
	if slug == "" {
		return nil, newError(ErrValidation, "Category slug is required")
	}
	if err := s.ensureSlugFree(ctx, slug, 0); err != nil {
		return nil, err
	}

	c := &models.Category{
		Name:        name,
		Slug:        slug,
		Description: req.Description,
		IsActive:    req.IsActive == nil || *req.IsActive,
	}
	if err := s.Repo.CreateCategory(ctx, c); err != nil {
		if db.IsUniqueViolation(err) {
			return nil, newError(ErrConflict, "Category slug already exists")
		}
		return nil, err
	}
	return c, nil
}

func (s *CategoryService) Update(ctx context.Context, id uint, req transport.UpdateCategoryRequest) (*models.Category, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}

	fields := map[string]any{}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, newError(ErrValidation, "Category name is required")
		}
		fields["name"] = name
	}
	if req.Slug != nil {
		slug := Slugify(*req.Slug)
		if slug == "" {
			return nil, newError(ErrValidation, "Category slug is required")
		}
		if err := s.ensureSlugFree(ctx, slug, id); err != nil {
			return nil, err
		}
		fields["slug"] = slug
	}
	if req.Description != nil {
		fields["description"] = *req.Description
	}
	if req.IsActive != nil {
		fields["is_active"] = *req.IsActive
	}

	c, err := s.Repo.UpdateCategory(ctx, id, fields)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return nil, newError(ErrConflict, "Category slug already exists")
		}
		return nil, notFound(err, "Category not found")
	}
	return c, nil
}

// Delete refuses while any product, active or not, still references the category.
func (s *CategoryService) Delete(ctx context.Context, id uint) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	n, err := s.Repo.CountCategoryProducts(ctx, id)
	if err != nil {
		return err
	}
	if n > 0 {
		return newError(ErrValidation, "Cannot delete category with existing products")
	}
	if err := s.Repo.DeleteCategory(ctx, id); err != nil {
		return notFound(err, "Category not found")
	}
	return nil
}

func (s *CategoryService) ensureSlugFree(ctx context.Context, slug string, selfID uint) error {
	existing, err := s.Repo.GetCategoryBySlug(ctx, slug)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil
	case err != nil:
		return err
	case existing.ID != selfID:
		return newError(ErrConflict, "Category slug already exists")
	}
	return nil
}

// Slugify lower-cases s and joins its letter and digit runs with single hyphens.
func Slugify(s string) string {
	var b strings.Builder
	pendingDash := false
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pendingDash && b.Len() > 0 {
				b.WriteByte('-')
			}
			b.WriteRune(r)
			pendingDash = false
			continue
		}
		pendingDash = true
	}
	return b.String()
}
