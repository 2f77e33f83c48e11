// internal/common/database/sql.go
package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"

	"cars-api/internal/common/config"
)

// SQLClient wraps the relational database connection backing the car repository.
type SQLClient struct {
	DB     *sql.DB
	Driver string
}

// NewSQL opens a connection pool for cfg.Driver ("postgres" or "mysql").
func NewSQL(cfg config.DatabaseConfig) (*SQLClient, error) {
	var (
		dsn      string
		maxOpen  int
		maxIdle  int
		driverNm string
	)

	switch cfg.Driver {
	case config.DriverPostgres:
		driverNm = "postgres"
		dsn = cfg.Postgres.GetDSN()
		maxOpen, maxIdle = cfg.Postgres.MaxConnections, cfg.Postgres.MaxIdle
	case config.DriverMySQL:
		driverNm = "mysql"
		dsn = MySQLDSN(cfg.MySQL)
		maxOpen, maxIdle = cfg.MySQL.MaxConnections, cfg.MySQL.MaxIdle
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	db, err := sql.Open(driverNm, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", driverNm, err)
	}

	db.SetMaxOpenConns(maxOpen)
	db.SetMaxIdleConns(maxIdle)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(5 * time.Minute)

	return &SQLClient{DB: db, Driver: cfg.Driver}, nil
}

// MySQLDSN renders the go-sql-driver DSN for cfg.
func MySQLDSN(cfg config.MySQLConfig) string {
	mc := mysql.NewConfig()
	mc.User = cfg.User
	mc.Passwd = cfg.Password
	mc.Net = "tcp"
	mc.Addr = fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	mc.DBName = cfg.Database
	mc.ParseTime = true
	return mc.FormatDSN()
}

// Ping tests the database connection
func (c *SQLClient) Ping(ctx context.Context) error {
	return c.DB.PingContext(ctx)
}

// Close closes the database connection
func (c *SQLClient) Close() error {
	if c.DB != nil {
		return c.DB.Close()
	}
	return nil
}
