package inmemory

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/nestjam/linkshort/internal/domain"
)

// LinkStore хранит ссылки в памяти процесса.
type LinkStore struct {
	m sync.Map
}

func New() *LinkStore {
	return &LinkStore{}
}

func (s *LinkStore) CreateLink(ctx context.Context, link domain.Link) error {
	if _, loaded := s.m.LoadOrStore(link.ID, link.URL); loaded {
		return domain.ErrLinkExists
	}

	return nil
}

func (s *LinkStore) GetLink(ctx context.Context, id string) (domain.Link, error) {
	value, ok := s.m.Load(id)

	if !ok {
		return domain.Link{}, domain.ErrLinkNotFound
	}

	url, ok := value.(string)

	if !ok {
		return domain.Link{}, errors.New("failed type assertion")
	}

	return domain.Link{ID: id, URL: url}, nil
}

func (s *LinkStore) DeleteLinks(ctx context.Context, pattern string) (int, error) {
	if pattern == "" {
		return 0, domain.ErrPatternIsEmpty
	}

	count := 0
	s.m.Range(func(key, value any) bool {
		id, ok := key.(string)

		if !ok || !strings.Contains(id, pattern) {
			return true
		}

		if _, deleted := s.m.LoadAndDelete(id); deleted {
			count++
		}
		return true
	})

	return count, nil
}

func (s *LinkStore) IsAvailable(ctx context.Context) bool {
	return true
}
