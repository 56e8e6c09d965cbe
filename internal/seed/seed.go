// Package seed fills an empty database with the admin account and a small
// demo catalogue.
package seed

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Skotchmaster/petstore/internal/config"
	"github.com/Skotchmaster/petstore/internal/migrate"
	"github.com/Skotchmaster/petstore/internal/models"
	"github.com/Skotchmaster/petstore/internal/repo"
	"github.com/Skotchmaster/petstore/pkg/db"
	"github.com/Skotchmaster/petstore/pkg/hash"
	"github.com/Skotchmaster/petstore/pkg/logging"
)

type Result struct {
	AdminCreated bool
	Categories   int
	Products     int
}

type category struct {
	name, slug, description string
}

type product struct {
	name, description, price string
	stock                    int
	categorySlug             string
	brand                    string
	weight                   string
	dimensions               string
}

var categories = []category{
	{"Dog Supplies", "dog-supplies", "Everything your dog needs"},
	{"Cat Supplies", "cat-supplies", "Everything your cat needs"},
	{"Small Pet Supplies", "small-pet-supplies", "Supplies for small pets like rabbits, hamsters, etc."},
}

var products = []product{
	{name: "Premium Dog Food", description: "High-quality nutritious dog food for all breeds", price: "29.99", stock: 100, categorySlug: "dog-supplies", brand: "PetNutrition", weight: "5.0"},
	{name: "Cat Scratching Post", description: "Durable scratching post for cats", price: "39.99", stock: 50, categorySlug: "cat-supplies", brand: "CatComfort", dimensions: "20x20x60cm"},
	{name: "Hamster Cage", description: "Spacious and comfortable hamster cage", price: "49.99", stock: 30, categorySlug: "small-pet-supplies", brand: "SmallPetHome", dimensions: "40x30x30cm"},
	{name: "Dog Chew Toy", description: "Durable rubber chew toy for dogs", price: "12.99", stock: 200, categorySlug: "dog-supplies", brand: "PlayPet"},
	{name: "Cat Litter", description: "Odor-control cat litter", price: "19.99", stock: 150, categorySlug: "cat-supplies", brand: "FreshPet", weight: "10.0"},
}

// Run recreates the schema and loads the demo data. With keep set the schema
// and existing rows are left alone and only the admin account is ensured.
func Run(ctx context.Context, gdb *gorm.DB, dialect db.Dialect, admin config.AdminConfig, keep bool) (*Result, error) {
	l := logging.FromContext(ctx).With().Str("component", "seed").Logger()
	r := repo.New(gdb)
	res := &Result{}

	if keep {
		created, err := EnsureAdmin(ctx, r, admin)
		if err != nil {
			return nil, err
		}
		res.AdminCreated = created
		l.Info().Bool("admin_created", created).Msg("seed_keep_done")
		return res, nil
	}

	if err := migrate.Reset(ctx, gdb, dialect); err != nil {
		return nil, fmt.Errorf("reset schema: %w", err)
	}
	l.Info().Str("dialect", string(dialect)).Msg("schema_recreated")

	err := r.WithTx(ctx, func(tx *repo.GormRepo) error {
		created, err := EnsureAdmin(ctx, tx, admin)
		if err != nil {
			return err
		}
		res.AdminCreated = created

		ids := make(map[string]uint, len(categories))
		for _, c := range categories {
			m := &models.Category{Name: c.name, Slug: c.slug, Description: c.description, IsActive: true}
			if err := tx.CreateCategory(ctx, m); err != nil {
				return fmt.Errorf("create category %s: %w", c.slug, err)
			}
			ids[c.slug] = m.ID
			res.Categories++
		}

		for _, p := range products {
			catID := ids[p.categorySlug]
			m := &models.Product{
				Name:        p.name,
				Description: p.description,
				Price:       decimal.RequireFromString(p.price),
				Stock:       p.stock,
				IsActive:    true,
				CategoryID:  &catID,
				Brand:       p.brand,
				Dimensions:  p.dimensions,
			}
			if p.weight != "" {
				m.Weight = decimal.NewNullDecimal(decimal.RequireFromString(p.weight))
			}
			if err := tx.CreateProduct(ctx, m); err != nil {
				return fmt.Errorf("create product %s: %w", p.name, err)
			}
			res.Products++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	l.Info().
		Bool("admin_created", res.AdminCreated).
		Int("categories", res.Categories).
		Int("products", res.Products).
		Msg("seed_done")
	return res, nil
}

// EnsureAdmin creates the admin account when no user has its email.
func EnsureAdmin(ctx context.Context, r *repo.GormRepo, admin config.AdminConfig) (bool, error) {
	email := strings.ToLower(strings.TrimSpace(admin.Email))
	if email == "" || admin.Password == "" {
		return false, errors.New("admin email and password are required")
	}

	_, err := r.GetUserByEmail(ctx, email)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, fmt.Errorf("lookup admin: %w", err)
	}

	hashed, err := hash.HashPassword(admin.Password)
	if err != nil {
		return false, fmt.Errorf("hash admin password: %w", err)
	}
	u := &models.User{
		Email:          email,
		HashedPassword: hashed,
		FullName:       admin.Name,
		IsActive:       true,
		IsAdmin:        true,
	}
	if err := r.CreateUser(ctx, u); err != nil {
		return false, fmt.Errorf("create admin: %w", err)
	}
	return true, nil
}
