// Package service exposes the read operations over cars, each delegating to
// exactly one backing store.
package service

import (
	"context"

	"cars-api/internal/common/logger"
	"cars-api/internal/models"
	"cars-api/internal/repository"
	"cars-api/internal/repository/search"
)

type CarService struct {
	cars   repository.CarRepository
	search search.CarSearchRepository
	logger logger.Logger
}

func NewCarService(cars repository.CarRepository, searchRepo search.CarSearchRepository, log logger.Logger) *CarService {
	return &CarService{
		cars:   cars,
		search: searchRepo,
		logger: log.WithFields(map[string]interface{}{"service": "car"}),
	}
}

// ListAll returns one page of all cars from the entity store.
// An empty page is a success.
func (s *CarService) ListAll(ctx context.Context, req models.PageRequest) (models.Page[models.Car], error) {
	s.logger.Debug("REST request to get a page of Cars", map[string]interface{}{
		"page": req.Page,
		"size": req.Size,
	})
	return s.cars.FindAll(ctx, req)
}

// Get returns the car with id. A missing car yields an error for which errors.IsNotFound holds.
func (s *CarService) Get(ctx context.Context, id int64) (models.Car, error) {
	s.logger.Debug("REST request to get Car", map[string]interface{}{"id": id})
	return s.cars.FindByID(ctx, id)
}

// Search runs query against the search index; the query text is not interpreted here.
func (s *CarService) Search(ctx context.Context, query string, req models.PageRequest) (models.Page[models.Car], error) {
	s.logger.Debug("REST request to search for a page of Cars", map[string]interface{}{
		"query": query,
		"page":  req.Page,
		"size":  req.Size,
	})
	return s.search.Search(ctx, query, req)
}
