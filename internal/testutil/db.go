// Package testutil holds fixtures shared by package tests.
package testutil

import (
	"context"
	"testing"

	"github.com/Skotchmaster/petstore/internal/migrate"
	"github.com/Skotchmaster/petstore/internal/models"
	"github.com/Skotchmaster/petstore/pkg/db"
	"github.com/Skotchmaster/petstore/pkg/hash"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// NewDB opens a private in-memory SQLite database with the full schema.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	gdb, _, err := db.Open(context.Background(), "sqlite::memory:")
	require.NoError(t, err)
	require.NoError(t, migrate.AutoMigrate(gdb))

	t.Cleanup(func() { _ = db.Close(gdb) })
	return gdb
}

func CreateUser(t *testing.T, gdb *gorm.DB, email, password string, admin bool) *models.User {
	t.Helper()

	hashed, err := hash.HashPassword(password)
	require.NoError(t, err)

	u := &models.User{Email: email, HashedPassword: hashed, FullName: "Test " + email, IsActive: true, IsAdmin: admin}
	require.NoError(t, gdb.Create(u).Error)
	return u
}

func CreateCategory(t *testing.T, gdb *gorm.DB, name, slug string) *models.Category {
	t.Helper()

	c := &models.Category{Name: name, Slug: slug, IsActive: true}
	require.NoError(t, gdb.Create(c).Error)
	return c
}

func CreateProduct(t *testing.T, gdb *gorm.DB, name, price string, stock int, categoryID *uint) *models.Product {
	t.Helper()

	p := &models.Product{
		Name:       name,
		Price:      decimal.RequireFromString(price),
		Stock:      stock,
		IsActive:   true,
		CategoryID: categoryID,
	}
	require.NoError(t, gdb.Omit("Category").Create(p).Error)
	return p
}
