package pgsql

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"

	"github.com/nestjam/linkshort/internal/domain"
	"github.com/nestjam/linkshort/internal/persistance/likepattern"
)

const linksTable = "links"

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// LinkStore хранит ссылки в PostgreSQL.
type LinkStore struct {
	pool       *pgxpool.Pool
	connString string
}

func New(connString string) *LinkStore {
	return &LinkStore{
		connString: connString,
	}
}

// Init применяет миграции и открывает пул соединений.
// Возвращает ошибку, если база данных недоступна.
func (s *LinkStore) Init(ctx context.Context) error {
	const op = "init store"

	if err := NewLinkStoreMigrator(s.connString).Up(); err != nil {
		return errors.Wrap(err, op)
	}

	pool, err := initPool(ctx, s.connString)

	if err != nil {
		return errors.Wrap(err, op)
	}

	s.pool = pool
	return nil
}

func (s *LinkStore) Close() {
	if s.pool == nil {
		return
	}
	s.pool.Close()
}

func initPool(ctx context.Context, connString string) (*pgxpool.Pool, error) {
	const op = "init connection pool"
	poolCfg, err := pgxpool.ParseConfig(connString)

	if err != nil {
		return nil, errors.Wrap(err, op)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)

	if err != nil {
		return nil, errors.Wrap(err, op)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, errors.Wrap(err, op)
	}

	return pool, nil
}

func (s *LinkStore) CreateLink(ctx context.Context, link domain.Link) error {
	const op = "create link"
	query, args, err := psql.Insert(linksTable).
		Columns("id", "url").
		Values(link.ID, link.URL).
		ToSql()

	if err != nil {
		return errors.Wrap(err, op)
	}

	_, err = s.pool.Exec(ctx, query, args...)

	if isUniqueViolation(err) {
		return domain.ErrLinkExists
	}

	if err != nil {
		return errors.Wrap(err, op)
	}

	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}

func (s *LinkStore) GetLink(ctx context.Context, id string) (domain.Link, error) {
	const op = "get link"
	query, args, err := psql.Select("id", "url").
		From(linksTable).
		Where(sq.Eq{"id": id}).
		ToSql()

	if err != nil {
		return domain.Link{}, errors.Wrap(err, op)
	}

	var link domain.Link
	err = s.pool.QueryRow(ctx, query, args...).Scan(&link.ID, &link.URL)

	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Link{}, domain.ErrLinkNotFound
	}

	if err != nil {
		return domain.Link{}, errors.Wrap(err, op)
	}

	return link, nil
}

func (s *LinkStore) DeleteLinks(ctx context.Context, pattern string) (int, error) {
	const op = "delete links"

	if pattern == "" {
		return 0, domain.ErrPatternIsEmpty
	}

	query, args, err := psql.Delete(linksTable).
		Where(likepattern.Contains("id", pattern)).
		ToSql()

	if err != nil {
		return 0, errors.Wrap(err, op)
	}

	tag, err := s.pool.Exec(ctx, query, args...)

	if err != nil {
		return 0, errors.Wrap(err, op)
	}

	return int(tag.RowsAffected()), nil
}

func (s *LinkStore) IsAvailable(ctx context.Context) bool {
	conn, err := s.pool.Acquire(ctx)

	if err != nil {
		return false
	}

	defer conn.Release()

	return conn.Ping(ctx) == nil
}
