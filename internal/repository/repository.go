// Package repository holds the read paths over the car entity store.
package repository

import (
	"context"

	"cars-api/internal/models"
)

// CarRepository is the entity store: paginated listing and lookup by id.
type CarRepository interface {
	FindAll(ctx context.Context, req models.PageRequest) (models.Page[models.Car], error)
	// FindByID returns an error satisfying errors.IsNotFound when no car has id.
	FindByID(ctx context.Context, id int64) (models.Car, error)
}

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}
