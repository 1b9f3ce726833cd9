package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/elastic/go-elasticsearch/v9"

	"github.com/nnvstore/backend/internal/logging"
	"github.com/nnvstore/backend/internal/models"
)

type SearchService struct {
	ES    *elasticsearch.Client
	Index string
}

type ProductDoc struct {
	ID            uint    `json:"id"`
	Name          string  `json:"name"`
	Brand         string  `json:"brand"`
	Model         string  `json:"model"`
	Category      string  `json:"category"`
	Color         string  `json:"color"`
	Memory        string  `json:"memory"`
	Description   string  `json:"description"`
	Price         float64 `json:"price"`
	StockQuantity uint    `json:"stock_quantity"`
}

func docFromProduct(p *models.Product) ProductDoc {
	return ProductDoc{
		ID:            p.ID,
		Name:          p.Name(),
		Brand:         p.Brand,
		Model:         p.Model,
		Category:      p.Category,
		Color:         p.Color,
		Memory:        p.Memory,
		Description:   p.Description,
		Price:         p.Price,
		StockQuantity: p.StockQuantity,
	}
}

func (s *SearchService) Search(ctx context.Context, query string, from, size int) (int64, []ProductDoc, error) {
	if s == nil || s.ES == nil {
		return 0, nil, ErrSearchUnavailable
	}
	body := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":     query,
				"fields":    []string{"name^2", "brand", "category", "description"},
				"fuzziness": "AUTO",
			},
		},
		"from": from,
		"size": size,
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return 0, nil, err
	}

	res, err := s.ES.Search(
		s.ES.Search.WithContext(ctx),
		s.ES.Search.WithIndex(s.Index),
		s.ES.Search.WithBody(&buf),
	)
	if err != nil {
		return 0, nil, fmt.Errorf("search: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return 0, nil, fmt.Errorf("search: %s", res.Status())
	}

	var r struct {
		Hits struct {
			Total struct {
				Value int64 `json:"value"`
			} `json:"total"`
			Hits []struct {
				Source ProductDoc `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return 0, nil, err
	}

	docs := make([]ProductDoc, len(r.Hits.Hits))
	for i, hit := range r.Hits.Hits {
		docs[i] = hit.Source
	}
	return r.Hits.Total.Value, docs, nil
}

// IndexProduct upserts the product document. Callers treat failures as
// best-effort, the catalog DB stays the source of truth.
func (s *SearchService) IndexProduct(ctx context.Context, p *models.Product) error {
	if s == nil || s.ES == nil {
		return nil
	}
	data, err := json.Marshal(docFromProduct(p))
	if err != nil {
		return err
	}
	res, err := s.ES.Index(
		s.Index,
		bytes.NewReader(data),
		s.ES.Index.WithDocumentID(strconv.FormatUint(uint64(p.ID), 10)),
		s.ES.Index.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("index product %d: %w", p.ID, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("index product %d: %s", p.ID, res.Status())
	}
	return nil
}

func (s *SearchService) DeleteProduct(ctx context.Context, id uint) error {
	if s == nil || s.ES == nil {
		return nil
	}
	res, err := s.ES.Delete(
		s.Index,
		strconv.FormatUint(uint64(id), 10),
		s.ES.Delete.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("delete product %d from index: %w", id, err)
	}
	defer res.Body.Close()
	// 404 just means the document never made it into the index.
	if res.IsError() && res.StatusCode != 404 {
		return fmt.Errorf("delete product %d from index: %s", id, res.Status())
	}
	return nil
}

func (s *SearchService) indexBestEffort(ctx context.Context, p *models.Product) {
	if err := s.IndexProduct(ctx, p); err != nil {
		logging.FromContext(ctx).Error("search index update", "product_id", p.ID, "error", err)
	}
}
