package repositories

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupCatalog(t *testing.T) ProductRepository {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "catalog.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	repository := NewProductRepository(db)
	require.NoError(t, repository.Migrate())
	return repository
}

func Test_Product_Catalog(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	repository := setupCatalog(t)
	at := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	// Given 12 bestsellers and 3 regular products
	for i := 0; i < 15; i++ {
		req.NoError(repository.Create(ctx, &Product{
			ID:          uuid.NewString(),
			CreatedAt:   at.Add(time.Duration(i) * time.Minute),
			Name:        fmt.Sprintf("Áo %d", i),
			Category:    "Women",
			SubCategory: "Topwear",
			Price:       float64(100 + i),
			Sizes:       []string{"S", "M"},
			Bestseller:  i < 12,
		}))
	}

	t.Run("should cap bestsellers and return newest first", func(t *testing.T) {
		req := require.New(t)
		bestsellers, err := repository.Bestsellers(ctx, ContextProductLimit)
		req.NoError(err)
		req.Len(bestsellers, ContextProductLimit)
		req.Equal("Áo 11", bestsellers[0].Name)
		req.Equal([]string{"S", "M"}, bestsellers[0].Sizes)
		for _, p := range bestsellers {
			req.True(p.Bestseller)
		}
	})

	t.Run("should only return regular products", func(t *testing.T) {
		req := require.New(t)
		others, err := repository.Others(ctx, ContextProductLimit)
		req.NoError(err)
		req.Len(others, 3)
		for _, p := range others {
			req.False(p.Bestseller)
		}
	})
}
