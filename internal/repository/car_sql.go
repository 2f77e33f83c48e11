// internal/repository/car_sql.go
package repository

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"time"

	"cars-api/internal/common/config"
	apperrors "cars-api/internal/common/errors"
	"cars-api/internal/common/logger"
	"cars-api/internal/models"
	"cars-api/internal/pagination"
)

const carColumns = "id, make, model, model_year, color, price"

// SQLCarRepository reads cars from the "car" table.
type SQLCarRepository struct {
	db     *sql.DB
	driver string
	logger logger.Logger
}

func NewSQLCarRepository(db *sql.DB, driverName string, log logger.Logger) *SQLCarRepository {
	return &SQLCarRepository{
		db:     db,
		driver: driverName,
		logger: log.WithFields(map[string]interface{}{"repository": "car", "driver": driverName}),
	}
}

// placeholder returns the n-th (1-based) bind parameter for the configured dialect.
func (r *SQLCarRepository) placeholder(n int) string {
	if r.driver == config.DriverMySQL {
		return "?"
	}
	return fmt.Sprintf("$%d", n)
}

func (r *SQLCarRepository) FindAll(ctx context.Context, req models.PageRequest) (models.Page[models.Car], error) {
	start := time.Now()
	sp := pagination.ToSQL(req)

	var total int64
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM car").Scan(&total); err != nil {
		return models.Page[models.Car]{}, r.classify(ctx, "count", err)
	}

	query := fmt.Sprintf(
		"SELECT %s FROM car ORDER BY %s LIMIT %s OFFSET %s",
		carColumns, sp.OrderBy, r.placeholder(1), r.placeholder(2),
	)
	rows, err := r.db.QueryContext(ctx, query, sp.Limit, sp.Offset)
	if err != nil {
		return models.Page[models.Car]{}, r.classify(ctx, "findAll", err)
	}
	defer rows.Close()

	cars := make([]models.Car, 0, sp.Limit)
	for rows.Next() {
		car, err := scanCar(rows)
		if err != nil {
			return models.Page[models.Car]{}, r.classify(ctx, "findAll", err)
		}
		cars = append(cars, car)
	}
	if err := rows.Err(); err != nil {
		return models.Page[models.Car]{}, r.classify(ctx, "findAll", err)
	}

	r.logger.Debug("fetched car page", map[string]interface{}{
		"page":       req.Page,
		"size":       req.Size,
		"rowCount":   len(cars),
		"total":      total,
		"durationMs": time.Since(start).Milliseconds(),
	})

	return models.NewPage(cars, req, total), nil
}

func (r *SQLCarRepository) FindByID(ctx context.Context, id int64) (models.Car, error) {
	query := fmt.Sprintf("SELECT %s FROM car WHERE id = %s", carColumns, r.placeholder(1))

	car, err := scanCar(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Car{}, apperrors.NewResourceNotFoundError("Car", id)
	}
	if err != nil {
		return models.Car{}, r.classify(ctx, "findById", err)
	}
	return car, nil
}

func (r *SQLCarRepository) Ping(ctx context.Context) error {
	if err := r.db.PingContext(ctx); err != nil {
		return apperrors.NewDatabaseConnectionFailedError(err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanCar(row rowScanner) (models.Car, error) {
	var c models.Car
	err := row.Scan(&c.ID, &c.Make, &c.Model, &c.ModelYear, &c.Color, &c.Price)
	return c, err
}

func (r *SQLCarRepository) classify(ctx context.Context, operation string, err error) error {
	var netErr *net.OpError
	switch {
	case errors.Is(ctx.Err(), context.DeadlineExceeded), errors.Is(err, context.DeadlineExceeded):
		return apperrors.NewQueryTimeoutError(operation)
	case errors.Is(err, driver.ErrBadConn), errors.As(err, &netErr):
		return apperrors.NewDatabaseConnectionFailedError(err)
	default:
		return apperrors.NewQueryExecutionFailedError(operation, err)
	}
}
