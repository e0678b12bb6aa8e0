package categories

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/vancetran/medisupply-backend/pkg/db/models"
)

func setupCategoriesTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	categories := `
CREATE TABLE IF NOT EXISTS categories (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  slug TEXT NOT NULL UNIQUE,
  description TEXT,
  parent_id TEXT,
  display_order INTEGER NOT NULL DEFAULT 0,
  is_active INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME,
  updated_at DATETIME
);`
	products := `
CREATE TABLE IF NOT EXISTS products (
  id TEXT PRIMARY KEY,
  category_id TEXT NOT NULL,
  name TEXT NOT NULL,
  slug TEXT NOT NULL
);`
	require.NoError(t, db.Exec(categories).Error)
	require.NoError(t, db.Exec(products).Error)
	return db
}

func createCategory(t *testing.T, db *gorm.DB, name, slug string, parentID *uuid.UUID, order int) *models.Category {
	t.Helper()

	category := &models.Category{
		ID:           uuid.New(),
		Name:         name,
		Slug:         slug,
		ParentID:     parentID,
		DisplayOrder: order,
		IsActive:     true,
	}
	require.NoError(t, db.Create(category).Error)
	return category
}

func TestRepositoryListAll_ordering(t *testing.T) {
	db := setupCategoriesTestDB(t)
	repo := NewRepository(db)

	createCategory(t, db, "Consumables", "consumables", nil, 2)
	createCategory(t, db, "Devices", "devices", nil, 1)
	createCategory(t, db, "Apparel", "apparel", nil, 2)

	rows, err := repo.ListAll(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Devices", rows[0].Name)
	// Equal display order falls back to name.
	assert.Equal(t, "Apparel", rows[1].Name)
	assert.Equal(t, "Consumables", rows[2].Name)
}

func TestRepositoryUpdateClearsParent(t *testing.T) {
	db := setupCategoriesTestDB(t)
	repo := NewRepository(db)

	parent := createCategory(t, db, "Parent", "parent", nil, 0)
	child := createCategory(t, db, "Child", "child", &parent.ID, 0)

	err := repo.Update(context.Background(), child.ID, map[string]any{"parent_id": nil})
	require.NoError(t, err)

	reloaded, err := repo.FindByID(context.Background(), child.ID)
	require.NoError(t, err)
	assert.Nil(t, reloaded.ParentID)
}

func TestRepositoryDelete(t *testing.T) {
	db := setupCategoriesTestDB(t)
	repo := NewRepository(db)

	category := createCategory(t, db, "Doomed", "doomed", nil, 0)

	require.NoError(t, repo.Delete(context.Background(), category.ID))

	_, err := repo.FindByID(context.Background(), category.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRepositoryCountProducts(t *testing.T) {
	db := setupCategoriesTestDB(t)
	repo := NewRepository(db)

	category := createCategory(t, db, "Gloves", "gloves", nil, 0)
	other := createCategory(t, db, "Masks", "masks", nil, 0)

	insert := `INSERT INTO products (id, category_id, name, slug) VALUES (?, ?, ?, ?)`
	require.NoError(t, db.Exec(insert, uuid.NewString(), category.ID.String(), "Nitrile Gloves", "nitrile-gloves").Error)
	require.NoError(t, db.Exec(insert, uuid.NewString(), category.ID.String(), "Latex Gloves", "latex-gloves").Error)

	count, err := repo.CountProducts(context.Background(), category.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	empty, err := repo.CountProducts(context.Background(), other.ID)
	require.NoError(t, err)
	assert.Zero(t, empty)
}
