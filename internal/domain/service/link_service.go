package service

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/nestjam/linkshort/internal/domain"
)

// Параметры сервиса по умолчанию.
const (
	DefaultCreateAttempts = 5
	DefaultStoreTimeout   = 3 * time.Second
)

// ErrCapacityExhausted возвращается, когда все попытки создать ссылку завершились коллизией идентификатора.
var ErrCapacityExhausted = errors.New("failed to generate unique link id")

// IDGenerator создает кандидатов в идентификаторы ссылок.
type IDGenerator interface {
	Generate() (string, error)
}

// LinkService создает ссылки и возвращает сохраненные ссылки по идентификатору.
type LinkService struct {
	store          domain.LinkStore
	generator      IDGenerator
	logger         *zap.Logger
	createAttempts int
	storeTimeout   time.Duration
	reservedIDs    map[string]struct{}
}

// Option определяет опцию настройки сервиса.
type Option func(*LinkService)

// WithCreateAttempts задает количество попыток сохранить ссылку при коллизиях идентификатора.
func WithCreateAttempts(attempts int) Option {
	return func(s *LinkService) {
		s.createAttempts = attempts
	}
}

// WithStoreTimeout ограничивает время одной операции хранилища.
func WithStoreTimeout(timeout time.Duration) Option {
	return func(s *LinkService) {
		s.storeTimeout = timeout
	}
}

// WithReservedIDs запрещает выдавать перечисленные идентификаторы,
// например совпадающие со статическими путями сервера.
func WithReservedIDs(ids ...string) Option {
	return func(s *LinkService) {
		for _, id := range ids {
			s.reservedIDs[id] = struct{}{}
		}
	}
}

// WithLogger задает логер сервиса.
func WithLogger(logger *zap.Logger) Option {
	return func(s *LinkService) {
		s.logger = logger
	}
}

// New создает сервис ссылок.
func New(store domain.LinkStore, generator IDGenerator, options ...Option) *LinkService {
	s := &LinkService{
		store:          store,
		generator:      generator,
		logger:         zap.NewNop(),
		createAttempts: DefaultCreateAttempts,
		storeTimeout:   DefaultStoreTimeout,
		reservedIDs:    make(map[string]struct{}),
	}

	for _, opt := range options {
		opt(s)
	}

	if s.createAttempts < 1 {
		s.createAttempts = 1
	}

	return s
}

// CreateLink проверяет исходную ссылку и сохраняет ее под новым идентификатором.
// При коллизии идентификатора попытка повторяется с новым идентификатором.
func (s *LinkService) CreateLink(ctx context.Context, rawURL string) (domain.Link, error) {
	const op = "create link"

	if err := domain.ValidateURL(rawURL); err != nil {
		return domain.Link{}, err
	}

	for attempt := 1; attempt <= s.createAttempts; attempt++ {
		id, err := s.generator.Generate()
		if err != nil {
			return domain.Link{}, errors.Wrap(err, op)
		}

		if _, ok := s.reservedIDs[id]; ok {
			s.logger.Debug("reserved link id skipped",
				zap.String("id", id),
				zap.Int("attempt", attempt))
			continue
		}

		link := domain.Link{ID: id, URL: rawURL}
		err = s.createLink(ctx, link)
		if err == nil {
			return link, nil
		}
		if !errors.Is(err, domain.ErrLinkExists) {
			return domain.Link{}, errors.Wrap(err, op)
		}

		s.logger.Debug("link id collision",
			zap.String("id", id),
			zap.Int("attempt", attempt))
	}

	return domain.Link{}, errors.Wrap(ErrCapacityExhausted, op)
}

func (s *LinkService) createLink(ctx context.Context, link domain.Link) error {
	ctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	return s.store.CreateLink(ctx, link)
}

// GetLink возвращает ссылку по идентификатору.
func (s *LinkService) GetLink(ctx context.Context, id string) (domain.Link, error) {
	const op = "get link"

	ctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	link, err := s.store.GetLink(ctx, id)
	if err != nil {
		return domain.Link{}, errors.Wrap(err, op)
	}

	return link, nil
}

// DeleteLinks удаляет ссылки, идентификатор которых содержит pattern.
func (s *LinkService) DeleteLinks(ctx context.Context, pattern string) (int, error) {
	const op = "delete links"

	if pattern == "" {
		return 0, domain.ErrPatternIsEmpty
	}

	ctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	count, err := s.store.DeleteLinks(ctx, pattern)
	if err != nil {
		return 0, errors.Wrap(err, op)
	}

	s.logger.Info("links deleted",
		zap.String("pattern", pattern),
		zap.Int("count", count))
	return count, nil
}

// IsAvailable возвращает true, если хранилище доступно.
func (s *LinkService) IsAvailable(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	return s.store.IsAvailable(ctx)
}
