package commands

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"cars-api/internal/common/database"
	"cars-api/internal/repository"
	"cars-api/internal/repository/search"
)

// stores holds the two backing stores and their raw repositories.
type stores struct {
	sql    *database.SQLClient
	es     *database.ElasticsearchClient
	cars   *repository.SQLCarRepository
	search *search.ElasticsearchCarRepository
}

func (s *stores) pingers() map[string]repository.Pinger {
	return map[string]repository.Pinger{
		"entity_store": s.cars,
		"search_index": s.search,
	}
}

func (s *stores) Close() {
	if s.sql != nil {
		if err := s.sql.Close(); err != nil {
			zapLog.Error("error closing database", zap.Error(err))
		}
	}
}

// openStores connects both stores, retrying each up to attempts times.
func openStores(ctx context.Context, attempts int) (*stores, error) {
	s := &stores{}

	err := retryWithBackoff(func() error {
		client, err := database.NewSQL(cfg.Database)
		if err != nil {
			return err
		}
		if err := client.Ping(ctx); err != nil {
			_ = client.Close()
			return err
		}
		s.sql = client
		return nil
	}, attempts, 2*time.Second, fmt.Sprintf("%s connection", cfg.Database.Driver))
	if err != nil {
		return nil, err
	}
	zapLog.Info("Entity store connected", zap.String("driver", cfg.Database.Driver))

	err = retryWithBackoff(func() error {
		client, err := database.NewElasticsearch(cfg.Database.Elasticsearch)
		if err != nil {
			return err
		}
		if err := client.Ping(ctx); err != nil {
			return err
		}
		s.es = client
		return nil
	}, attempts, 2*time.Second, "Elasticsearch connection")
	if err != nil {
		s.Close()
		return nil, err
	}
	zapLog.Info("Search index connected", zap.String("index", s.es.Index))

	s.cars = repository.NewSQLCarRepository(s.sql.DB, s.sql.Driver, log)
	s.search = search.NewElasticsearchCarRepository(s.es.Client, s.es.Index, log)
	return s, nil
}

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			zapLog.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}
