package store

import (
	"context"
	"strings"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/shaverlee/gearbox/config"
	"github.com/shaverlee/gearbox/core/errors"
	"github.com/shaverlee/gearbox/core/log"
)

// SQLOptions holds relational storage settings, bound from the sqlalchemy.*
// configuration group.
type SQLOptions struct {
	URL         string        `config:"sqlalchemy.url" validate:"required"`
	Driver      string        `config:"sqlalchemy.driver"`
	PoolSize    int           `config:"sqlalchemy.pool_size" default:"10"`
	MaxIdle     int           `config:"sqlalchemy.max_idle" default:"5"`
	PoolRecycle time.Duration `config:"sqlalchemy.pool_recycle" default:"1h"`
}

// SQLOptionsFromConfig binds SQLOptions from the resolved configuration.
func SQLOptionsFromConfig(conf *config.Store) (SQLOptions, error) {
	var opts SQLOptions
	if err := conf.Bind(&opts); err != nil {
		return SQLOptions{}, errors.Wrap(errors.CodeInvalidArgument, "store.sql.options", err)
	}
	if opts.Driver == "" {
		driver, err := driverFromURL(opts.URL)
		if err != nil {
			return SQLOptions{}, err
		}
		opts.Driver = driver
	}
	return opts, nil
}

// driverFromURL infers the driver name from a database URL scheme.
func driverFromURL(url string) (string, error) {
	scheme, _, ok := strings.Cut(url, "://")
	if !ok {
		return "", errors.Newf(errors.CodeInvalidArgument, "cannot infer driver from sqlalchemy.url %q, set sqlalchemy.driver", url)
	}
	switch {
	case scheme == "mysql":
		return "mysql", nil
	case scheme == "postgres" || strings.HasPrefix(scheme, "postgresql"):
		return "postgres", nil
	case scheme == "sqlite":
		return "sqlite", nil
	default:
		return "", errors.Newf(errors.CodeInvalidArgument, "unsupported database scheme %q", scheme)
	}
}

// SQLStore is a GORM-backed relational store.
type SQLStore struct {
	db     *gorm.DB
	logger log.Logger
}

// OpenSQL opens a pooled GORM connection for the given options.
func OpenSQL(opts SQLOptions, logger log.Logger) (*SQLStore, error) {
	if opts.URL == "" {
		return nil, errors.New(errors.CodeInvalidArgument, "sqlalchemy.url is required")
	}
	if logger == nil {
		logger = log.Discard()
	}

	dialector, err := dialectorFor(opts.Driver, opts.URL)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: &gormLogAdapter{logger: logger},
	})
	if err != nil {
		return nil, errors.Wrap(errors.CodeUnavailable, "store.sql.open", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, errors.Wrap(errors.CodeInternal, "store.sql.open", err)
	}
	sqlDB.SetMaxOpenConns(opts.PoolSize)
	sqlDB.SetMaxIdleConns(opts.MaxIdle)
	sqlDB.SetConnMaxLifetime(opts.PoolRecycle)

	return &SQLStore{db: db, logger: logger}, nil
}

func dialectorFor(driver, url string) (gorm.Dialector, error) {
	switch driver {
	case "mysql":
		return mysql.Open(strings.TrimPrefix(url, "mysql://")), nil
	case "postgres":
		return postgres.Open(url), nil
	case "sqlite":
		return sqlite.Open(strings.TrimPrefix(url, "sqlite://")), nil
	default:
		return nil, errors.Newf(errors.CodeInvalidArgument, "unsupported database driver %q", driver)
	}
}

// DB returns the underlying GORM handle.
func (s *SQLStore) DB() *gorm.DB {
	return s.db
}

// AutoMigrate migrates the given models.
func (s *SQLStore) AutoMigrate(models ...any) error {
	if len(models) == 0 {
		return nil
	}
	if err := s.db.AutoMigrate(models...); err != nil {
		return errors.Wrap(errors.CodeFailedSetup, "store.sql.migrate", err)
	}
	return nil
}

// Ping checks the connection.
func (s *SQLStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return errors.Wrap(errors.CodeInternal, "store.sql.ping", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return errors.Wrap(errors.CodeUnavailable, "store.sql.ping", err)
	}
	return nil
}

// Close closes the connection pool.
func (s *SQLStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return errors.Wrap(errors.CodeInternal, "store.sql.close", err)
	}
	return sqlDB.Close()
}

// gormLogAdapter bridges GORM's logger to core/log.
type gormLogAdapter struct {
	logger log.Logger
}

func (l *gormLogAdapter) LogMode(gormlogger.LogLevel) gormlogger.Interface { return l }

func (l *gormLogAdapter) Info(ctx context.Context, msg string, data ...any) {
	l.logger.Info(msg, data...)
}

func (l *gormLogAdapter) Warn(ctx context.Context, msg string, data ...any) {
	l.logger.Warn(msg, data...)
}

func (l *gormLogAdapter) Error(ctx context.Context, msg string, data ...any) {
	l.logger.Error(nil, msg, data...)
}

func (l *gormLogAdapter) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	elapsed := time.Since(begin)
	if err != nil && err != gorm.ErrRecordNotFound {
		sql, _ := fc()
		l.logger.Error(err, "query failed", log.Str("sql", sql), log.Dur("elapsed", elapsed))
		return
	}
	if elapsed > 200*time.Millisecond {
		sql, rows := fc()
		l.logger.Warn("slow query", log.Str("sql", sql), log.Int("rows", int(rows)), log.Dur("elapsed", elapsed))
	}
}
