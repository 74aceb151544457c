package domain

import "context"

// Link связывает короткий идентификатор с исходной ссылкой.
type Link struct {
	ID  string // короткий идентификатор
	URL string // исходная ссылка
}

// LinkStore определяет хранилище ссылок.
type LinkStore interface {
	// CreateLink атомарно сохраняет ссылку. Если идентификатор занят, возвращает ErrLinkExists.
	CreateLink(ctx context.Context, link Link) error
	// GetLink возвращает ссылку по идентификатору или ErrLinkNotFound.
	GetLink(ctx context.Context, id string) (Link, error)
	// DeleteLinks удаляет ссылки, идентификатор которых содержит pattern, и возвращает их количество.
	DeleteLinks(ctx context.Context, pattern string) (int, error)
	IsAvailable(ctx context.Context) bool
}
