package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/nnvstore/backend/internal/cache"
	"github.com/nnvstore/backend/internal/logging"
	"github.com/nnvstore/backend/internal/models"
	"github.com/nnvstore/backend/internal/mykafka"
	"github.com/nnvstore/backend/internal/repo"
	"github.com/nnvstore/backend/internal/util"
)

const catalogFirstPageKey = "catalog:first_page"

type CatalogService struct {
	Repo     *repo.GormRepo
	Cache    *cache.Cache
	Search   *SearchService
	Producer *mykafka.Producer
}

type CatalogPage struct {
	Items      []models.Product `json:"items"`
	Pagination util.Pagination  `json:"pagination"`
}

func (f ProductInput) toModel() models.Product {
	images := make([]models.ProductImage, 0, len(f.Images))
	for i, img := range f.Images {
		images = append(images, models.ProductImage{
			ImageURL:  img.URL,
			IsPrimary: img.IsPrimary,
			SortOrder: i,
		})
	}
	return models.Product{
		Brand:         f.Brand,
		Model:         f.Model,
		Category:      f.Category,
		Color:         f.Color,
		Memory:        f.Memory,
		Description:   f.Description,
		Price:         f.Price,
		StockQuantity: f.StockQuantity,
		Images:        images,
	}
}

type ProductImageInput struct {
	URL       string `json:"url"`
	IsPrimary bool   `json:"is_primary"`
}

type ProductInput struct {
	Brand         string              `json:"brand"`
	Model         string              `json:"model"`
	Category      string              `json:"category"`
	Color         string              `json:"color"`
	Memory        string              `json:"memory"`
	Description   string              `json:"description"`
	Price         float64             `json:"price"`
	StockQuantity uint                `json:"stock_quantity"`
	Images        []ProductImageInput `json:"images"`
}

func (f ProductInput) validate() error {
	if f.Brand == "" || f.Model == "" || f.Category == "" {
		return fmt.Errorf("brand, model and category are required: %w", ErrValidation)
	}
	if f.Price <= 0 {
		return fmt.Errorf("price must be positive: %w", ErrValidation)
	}
	return nil
}

// List serves the catalog page. The unfiltered first page is the hottest
// read so it is held briefly in the shared cache.
func (s *CatalogService) List(ctx context.Context, page, perPage int, filters repo.ProductFilters) (*CatalogPage, error) {
	cacheable := page <= 1 && filters == (repo.ProductFilters{})
	if cacheable {
		var cached CatalogPage
		if err := s.Cache.GetJSON(ctx, catalogFirstPageKey, &cached); err == nil {
			return &cached, nil
		} else if !errors.Is(err, cache.ErrMiss) {
			logging.FromContext(ctx).Error("catalog cache read", "error", err)
		}
	}

	offset, limit := util.Calculate(page, perPage)
	items, total, err := s.Repo.ListProducts(ctx, offset, limit, filters)
	if err != nil {
		return nil, err
	}
	if page < 1 {
		page = 1
	}
	result := &CatalogPage{Items: items, Pagination: util.Paginate(page, limit, total)}

	if cacheable && limit == util.DefaultPageSize {
		if err := s.Cache.SetJSON(ctx, catalogFirstPageKey, result, cache.CatalogTTL); err != nil {
			logging.FromContext(ctx).Error("catalog cache write", "error", err)
		}
	}
	return result, nil
}

func (s *CatalogService) Get(ctx context.Context, id uint) (*models.Product, error) {
	return s.Repo.GetProduct(ctx, id)
}

func (s *CatalogService) FilterOptions(ctx context.Context, applied repo.ProductFilters) (map[string][]string, error) {
	return s.Repo.FilterOptions(ctx, applied)
}

func (s *CatalogService) invalidate(ctx context.Context) {
	if err := s.Cache.Store.Delete(ctx, catalogFirstPageKey); err != nil {
		logging.FromContext(ctx).Error("catalog cache invalidate", "error", err)
	}
}

func (s *CatalogService) CreateProduct(ctx context.Context, in ProductInput) (*models.Product, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	product := in.toModel()
	if err := s.Repo.CreateProduct(ctx, &product); err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	s.Search.indexBestEffort(ctx, &product)

	publish(ctx, s.Producer, mykafka.TopicProductEvents, fmt.Sprint(product.ID), map[string]any{
		"type":       "product_created",
		"product_id": product.ID,
		"name":       product.Name(),
	})
	return &product, nil
}

func (s *CatalogService) UpdateProduct(ctx context.Context, id uint, in ProductInput) (*models.Product, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	product := in.toModel()
	product.ID = id
	if err := s.Repo.UpdateProduct(ctx, &product); err != nil {
		return nil, err
	}
	updated, err := s.Repo.GetProductAny(ctx, id)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	s.Search.indexBestEffort(ctx, updated)

	publish(ctx, s.Producer, mykafka.TopicProductEvents, fmt.Sprint(id), map[string]any{
		"type":       "product_updated",
		"product_id": id,
		"name":       updated.Name(),
	})
	return updated, nil
}

func (s *CatalogService) DeleteProduct(ctx context.Context, id uint) error {
	if err := s.Repo.DeleteProduct(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx)
	if err := s.Search.DeleteProduct(ctx, id); err != nil {
		logging.FromContext(ctx).Error("search index delete", "product_id", id, "error", err)
	}

	publish(ctx, s.Producer, mykafka.TopicProductEvents, fmt.Sprint(id), map[string]any{
		"type":       "product_deleted",
		"product_id": id,
	})
	return nil
}
