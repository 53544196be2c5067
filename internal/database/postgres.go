package database

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type PostgresConfig struct {
	User     string
	Password string
	Host     string
	Port     string
	DBName   string
	SSLMode  string

	MinConns int32
	MaxConns int32

	ConnectAttempts int
	ConnectDelay    time.Duration
}

// DSN renders the config as a postgres:// URL. User and password are escaped.
func (c PostgresConfig) DSN() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(c.User, c.Password),
		Host:   net.JoinHostPort(c.Host, c.Port),
		Path:   "/" + c.DBName,
	}
	if c.SSLMode != "" {
		u.RawQuery = url.Values{"sslmode": {c.SSLMode}}.Encode()
	}
	return u.String()
}

func (c PostgresConfig) poolConfig() (*pgxpool.Config, error) {
	poolCfg, err := pgxpool.ParseConfig(c.DSN())
	if err != nil {
		return nil, fmt.Errorf("parse database config: %w", err)
	}
	if c.MinConns > 0 {
		poolCfg.MinConns = c.MinConns
	}
	if c.MaxConns > 0 {
		poolCfg.MaxConns = c.MaxConns
	}
	return poolCfg, nil
}

// Initialize connects to PostgreSQL, retrying while the server is not ready,
// migrates the schema and returns a Store owning the pool. On failure the
// returned Store is nil, which callers treat as degraded mode.
func Initialize(ctx context.Context, logger *logrus.Logger, cfg PostgresConfig) (*Store, error) {
	log := logger.WithFields(logrus.Fields{
		"component": "database",
		"host":      cfg.Host,
		"database":  cfg.DBName,
	})

	poolCfg, err := cfg.poolConfig()
	if err != nil {
		log.WithError(err).Error("Invalid database configuration")
		return nil, err
	}

	var pool *pgxpool.Pool
	err = retry(ctx, log, cfg.ConnectAttempts, cfg.ConnectDelay, func(ctx context.Context) error {
		p, err := connect(ctx, poolCfg.Copy())
		if err != nil {
			return err
		}
		pool = p
		return nil
	})
	if err != nil {
		log.WithError(err).Error("Failed to connect to database after retries")
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	store, err := newStore(logger, pool)
	if err != nil {
		pool.Close()
		log.WithError(err).Error("Failed to open gorm over pool")
		return nil, err
	}

	seeded, err := Migrate(ctx, store.db)
	if err != nil {
		store.Close()
		log.WithError(err).Error("Database migration failed")
		return nil, fmt.Errorf("database migration failed: %w", err)
	}

	log.WithFields(logrus.Fields{
		"port":      cfg.Port,
		"min_conns": poolCfg.MinConns,
		"max_conns": poolCfg.MaxConns,
		"seeded":    seeded,
	}).Info("Database initialized")
	return store, nil
}

func connect(ctx context.Context, poolCfg *pgxpool.Config) (*pgxpool.Pool, error) {
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return pool, nil
}

func newStore(logger *logrus.Logger, pool *pgxpool.Pool) (*Store, error) {
	sqlDB := stdlib.OpenDBFromPool(pool)
	sqlDB.SetMaxOpenConns(int(pool.Config().MaxConns))

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger:                 newGormLogger(logger),
		SkipDefaultTransaction: true,
	})
	if err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("open gorm: %w", err)
	}

	return &Store{db: db, sqlDB: sqlDB, pool: pool}, nil
}

// Query errors are reported by the Store callers, so gorm stays quiet unless
// debug logging is on.
func newGormLogger(logger *logrus.Logger) gormlogger.Interface {
	level := gormlogger.Silent
	if logger.IsLevelEnabled(logrus.DebugLevel) {
		level = gormlogger.Info
	}
	return gormlogger.New(logger.WithField("component", "gorm"), gormlogger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  level,
		IgnoreRecordNotFoundError: true,
	})
}
