package factory

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	conf "github.com/nestjam/linkshort/internal/config"
	"github.com/nestjam/linkshort/internal/domain"
	"github.com/nestjam/linkshort/internal/persistance/inmemory"
	"github.com/nestjam/linkshort/internal/persistance/pgsql"
	"github.com/nestjam/linkshort/internal/persistance/sqlite"
)

const (
	memoryScheme     = "memory://"
	postgresScheme   = "postgres://"
	postgresqlScheme = "postgresql://"
)

// ErrUnsupportedDatabase возвращается для строки подключения с неизвестной схемой.
var ErrUnsupportedDatabase = errors.New("unsupported database url scheme")

// NewStorage создает хранилище ссылок по схеме строки подключения и проверяет его доступность.
func NewStorage(ctx context.Context, conf conf.Config, logger *zap.Logger) (domain.LinkStore, func(), error) {
	const op = "new storage"
	dsn := conf.DatabaseURL

	switch {
	case strings.HasPrefix(dsn, postgresScheme), strings.HasPrefix(dsn, postgresqlScheme):
		logger.Info("Using postgres storage")
		store := pgsql.New(dsn)
		if err := store.Init(ctx); err != nil {
			return nil, nil, errors.Wrap(err, op)
		}
		return store, store.Close, nil
	case strings.HasPrefix(dsn, sqlite.Scheme):
		logger.Info("Using sqlite storage", zap.String("path", strings.TrimPrefix(dsn, sqlite.Scheme)))
		store := sqlite.New(dsn)
		if err := store.Init(ctx); err != nil {
			return nil, nil, errors.Wrap(err, op)
		}
		return store, store.Close, nil
	case strings.HasPrefix(dsn, memoryScheme):
		logger.Warn("Using in-memory storage, links will be lost on shutdown")
		return inmemory.New(), func() {}, nil
	default:
		return nil, nil, errors.Wrap(ErrUnsupportedDatabase, op)
	}
}

// NewLogger создает логер с указанным уровнем.
func NewLogger(level string) (*zap.Logger, func(), error) {
	const op = "new production logger"
	lvl, err := zap.ParseAtomicLevel(level)

	if err != nil {
		return nil, nil, errors.Wrap(err, op)
	}

	config := zap.NewProductionConfig()
	config.Level = lvl
	logger, err := config.Build()

	if err != nil {
		return nil, nil, errors.Wrap(err, op)
	}

	return logger, func() { _ = logger.Sync() }, nil
}
