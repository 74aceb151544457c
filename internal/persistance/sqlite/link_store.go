package sqlite

import (
	"context"
	"database/sql"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/pkg/errors"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/nestjam/linkshort/internal/domain"
)

const (
	// Scheme определяет префикс строки подключения к SQLite.
	Scheme = "sqlite://"

	driverName = "sqlite"
	linksTable = "links"
	pragmas    = "_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
)

// LinkStore хранит ссылки в файле базы данных SQLite.
type LinkStore struct {
	db  *sql.DB
	dsn string
}

// New создает хранилище. Строка подключения имеет вид sqlite://путь/к/файлу.
func New(connString string) *LinkStore {
	return &LinkStore{
		dsn: toDSN(connString),
	}
}

func toDSN(connString string) string {
	path := strings.TrimPrefix(connString, Scheme)

	if strings.Contains(path, "?") {
		return path + "&" + pragmas
	}

	return path + "?" + pragmas
}

// Init открывает базу данных и создает таблицу ссылок.
func (s *LinkStore) Init(ctx context.Context) error {
	const op = "init store"
	db, err := sql.Open(driverName, s.dsn)

	if err != nil {
		return errors.Wrap(err, op)
	}

	// SQLite допускает только одного писателя.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return errors.Wrap(err, op)
	}

	_, err = db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS links(
		id  TEXT PRIMARY KEY,
		url TEXT NOT NULL);`)

	if err != nil {
		_ = db.Close()
		return errors.Wrap(err, op)
	}

	s.db = db
	return nil
}

func (s *LinkStore) Close() {
	if s.db == nil {
		return
	}
	_ = s.db.Close()
}

func (s *LinkStore) CreateLink(ctx context.Context, link domain.Link) error {
	const op = "create link"
	query, args, err := sq.Insert(linksTable).
		Columns("id", "url").
		Values(link.ID, link.URL).
		ToSql()

	if err != nil {
		return errors.Wrap(err, op)
	}

	_, err = s.db.ExecContext(ctx, query, args...)

	if isConstraintViolation(err) {
		return domain.ErrLinkExists
	}

	if err != nil {
		return errors.Wrap(err, op)
	}

	return nil
}

func isConstraintViolation(err error) bool {
	var sqliteErr *sqlite.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}

	switch sqliteErr.Code() {
	case sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT:
		return true
	default:
		return false
	}
}

func (s *LinkStore) GetLink(ctx context.Context, id string) (domain.Link, error) {
	const op = "get link"
	query, args, err := sq.Select("id", "url").
		From(linksTable).
		Where(sq.Eq{"id": id}).
		ToSql()

	if err != nil {
		return domain.Link{}, errors.Wrap(err, op)
	}

	var link domain.Link
	err = s.db.QueryRowContext(ctx, query, args...).Scan(&link.ID, &link.URL)

	if errors.Is(err, sql.ErrNoRows) {
		return domain.Link{}, domain.ErrLinkNotFound
	}

	if err != nil {
		return domain.Link{}, errors.Wrap(err, op)
	}

	return link, nil
}

// DeleteLinks удаляет ссылки, идентификатор которых содержит pattern.
// LIKE в SQLite не различает регистр ASCII, поэтому подстрока ищется через instr.
func (s *LinkStore) DeleteLinks(ctx context.Context, pattern string) (int, error) {
	const op = "delete links"

	if pattern == "" {
		return 0, domain.ErrPatternIsEmpty
	}

	query, args, err := sq.Delete(linksTable).
		Where(sq.Expr("instr(id, ?) > 0", pattern)).
		ToSql()

	if err != nil {
		return 0, errors.Wrap(err, op)
	}

	res, err := s.db.ExecContext(ctx, query, args...)

	if err != nil {
		return 0, errors.Wrap(err, op)
	}

	count, err := res.RowsAffected()

	if err != nil {
		return 0, errors.Wrap(err, op)
	}

	return int(count), nil
}

func (s *LinkStore) IsAvailable(ctx context.Context) bool {
	return s.db.PingContext(ctx) == nil
}
