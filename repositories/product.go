//go:generate go run go.uber.org/mock/mockgen -source=product.go -destination=../mocks/mock_product_repository.go -package=mocks
package repositories

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// ContextProductLimit bounds each product group handed to the bot prompt.
const ContextProductLimit = 10

type IProductRepository interface {
	Bestsellers(ctx context.Context, limit int) ([]Product, error)
	Others(ctx context.Context, limit int) ([]Product, error)
}

// Product is a read model of the shop catalog, used to ground bot answers.
type Product struct {
	ID          string    `gorm:"primarykey;size:36" json:"id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Name        string    `gorm:"size:200;not null" json:"name"`
	Description string    `gorm:"size:2000" json:"description"`
	Category    string    `gorm:"size:100;index" json:"category"`
	SubCategory string    `gorm:"size:100" json:"subCategory"`
	Price       float64   `gorm:"not null" json:"price"`
	Sizes       []string  `gorm:"serializer:json" json:"sizes"`
	Bestseller  bool      `gorm:"index;not null;default:false" json:"bestseller"`
}

func (Product) TableName() string {
	return "products"
}

type ProductRepository struct {
	db *gorm.DB
}

var _ IProductRepository = ProductRepository{}

func NewProductRepository(db *gorm.DB) ProductRepository {
	return ProductRepository{db: db}
}

// Migrate creates or updates the products table.
func (r ProductRepository) Migrate() error {
	if err := r.db.AutoMigrate(&Product{}); err != nil {
		return fmt.Errorf("failed to migrate products: %w", err)
	}
	return nil
}

func (r ProductRepository) Create(ctx context.Context, product *Product) error {
	if err := r.db.WithContext(ctx).Create(product).Error; err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}
	return nil
}

func (r ProductRepository) Bestsellers(ctx context.Context, limit int) ([]Product, error) {
	return r.find(ctx, true, limit)
}

func (r ProductRepository) Others(ctx context.Context, limit int) ([]Product, error) {
	return r.find(ctx, false, limit)
}

func (r ProductRepository) find(ctx context.Context, bestseller bool, limit int) ([]Product, error) {
	var products []Product
	err := r.db.WithContext(ctx).
		Where("bestseller = ?", bestseller).
		Order("created_at desc").
		Limit(limit).
		Find(&products).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find products: %w", err)
	}
	return products, nil
}
