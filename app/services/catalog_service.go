package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/shashiranjanraj/campusmart/app/models"
	"github.com/shashiranjanraj/campusmart/pkg/collection"
	"github.com/shashiranjanraj/campusmart/pkg/logger"
)

// Cache is the read-through cache the catalog listing sits behind. A nil
// Cache disables caching entirely; cache errors degrade to store reads.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

const catalogCacheTTL = time.Minute

// ProductInput carries the fields a new listing is created from.
type ProductInput struct {
	Name        string  `json:"name" validate:"required"`
	Price       float64 `json:"price" validate:"required,gt=0"`
	Description string  `json:"description" validate:"required"`
	Category    string  `json:"category" validate:"required,in=clothing,grocery,electronics,furniture,other"`
	ImageURL    string  `json:"imageUrl"`
}

// ProductView is a product enriched with its seller's public profile and
// review aggregate.
type ProductView struct {
	models.Product
	Seller        *models.Profile `json:"seller,omitempty"`
	SellerRating  float64         `json:"sellerRating"`
	SellerReviews int             `json:"sellerReviews"`
}

// CatalogService serves the product catalog: cached listings, single-item
// lookups with seller info, and listing creation.
type CatalogService struct {
	products ProductRepository
	users    UserRepository
	cache    Cache
}

func NewCatalogService(products ProductRepository, users UserRepository, cache Cache) *CatalogService {
	return &CatalogService{products: products, users: users, cache: cache}
}

// List returns the catalog, optionally filtered to one category, newest
// first. Every item carries its seller's public profile and rating
// aggregate; a vanished seller leaves that item's seller fields empty.
// Enriched listings are cached per category for a minute; a cold or broken
// cache falls through to the store.
func (s *CatalogService) List(ctx context.Context, category string) ([]ProductView, error) {
	if category != "" && !models.ValidCategory(category) {
		return nil, fmt.Errorf("%w: unknown category %q", ErrValidation, category)
	}

	key := "products:" + category
	if s.cache != nil {
		if raw, err := s.cache.Get(ctx, key); err == nil && raw != "" {
			var cached []ProductView
			if err := json.Unmarshal([]byte(raw), &cached); err == nil {
				return cached, nil
			}
		}
	}

	products, err := s.products.All(ctx, category)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}

	views, err := s.enrich(ctx, products)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if raw, err := json.Marshal(views); err == nil {
			if err := s.cache.Set(ctx, key, string(raw), catalogCacheTTL); err != nil {
				logger.WithCtx(ctx).Warn("catalog cache write failed", "key", key, "error", err)
			}
		}
	}
	return views, nil
}

// enrich joins each product with its seller's public profile, one batched
// user lookup for the whole page.
func (s *CatalogService) enrich(ctx context.Context, products []models.Product) ([]ProductView, error) {
	if len(products) == 0 {
		return []ProductView{}, nil
	}

	sellerIDs := collection.Unique(collection.Map(products, func(p models.Product) primitive.ObjectID { return p.SellerID }))
	sellers, err := s.users.FindByIDs(ctx, sellerIDs)
	if err != nil {
		return nil, fmt.Errorf("load sellers: %w", err)
	}

	views := make([]ProductView, len(products))
	for i, product := range products {
		view := ProductView{Product: product}
		if u := sellers[product.SellerID]; u != nil {
			p := u.Profile()
			view.Seller = &p
			view.SellerRating = u.AverageRating
			view.SellerReviews = u.TotalReviews
		}
		views[i] = view
	}
	return views, nil
}

// Get returns one product together with its seller's public profile and
// rating aggregate.
func (s *CatalogService) Get(ctx context.Context, productID string) (*ProductView, error) {
	pid, err := primitive.ObjectIDFromHex(productID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid product id", ErrValidation)
	}
	product, err := s.products.FindByID(ctx, pid)
	if err != nil {
		return nil, fmt.Errorf("product %s: %w", productID, err)
	}

	view := &ProductView{Product: *product}
	if seller, err := s.users.FindByID(ctx, product.SellerID); err == nil {
		p := seller.Profile()
		view.Seller = &p
		view.SellerRating = seller.AverageRating
		view.SellerReviews = seller.TotalReviews
	}
	return view, nil
}

// Create persists a new listing owned by sellerID and invalidates the
// cached catalog pages it would appear on.
func (s *CatalogService) Create(ctx context.Context, sellerID string, in ProductInput) (*models.Product, error) {
	if !models.ValidCategory(in.Category) {
		return nil, fmt.Errorf("%w: unknown category %q", ErrValidation, in.Category)
	}
	if in.Price <= 0 {
		return nil, fmt.Errorf("%w: price must be positive", ErrValidation)
	}
	sid, err := primitive.ObjectIDFromHex(sellerID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid seller id", ErrValidation)
	}
	if _, err := s.users.FindByID(ctx, sid); err != nil {
		return nil, fmt.Errorf("seller %s: %w", sellerID, err)
	}

	now := time.Now()
	product := &models.Product{
		Name:        in.Name,
		Price:       in.Price,
		Description: in.Description,
		Category:    in.Category,
		ImageURL:    in.ImageURL,
		SellerID:    sid,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.products.Insert(ctx, product); err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.Delete(ctx, "products:", "products:"+in.Category); err != nil {
			logger.WithCtx(ctx).Warn("catalog cache invalidation failed", "error", err)
		}
	}
	return product, nil
}
