package domain

import (
	"context"
	"fmt"
)

// A LinkStoreDelegate allows to extend the behavior of the test double for negative scenarios
// for LinkStore consumers.
type LinkStoreDelegate struct {
	CreateLinkFunc  func(ctx context.Context, link Link) error
	GetLinkFunc     func(ctx context.Context, id string) (Link, error)
	DeleteLinksFunc func(ctx context.Context, pattern string) (int, error)
	IsAvailableFunc func(ctx context.Context) bool
	delegate        LinkStore
}

func NewLinkStoreDelegate(delegate LinkStore) *LinkStoreDelegate {
	return &LinkStoreDelegate{delegate: delegate}
}

func (d *LinkStoreDelegate) CreateLink(ctx context.Context, link Link) error {
	if d.CreateLinkFunc != nil {
		return d.CreateLinkFunc(ctx, link)
	}

	if err := d.delegate.CreateLink(ctx, link); err != nil {
		return fmt.Errorf("create link in store delegate: %w", err)
	}

	return nil
}

func (d *LinkStoreDelegate) GetLink(ctx context.Context, id string) (Link, error) {
	if d.GetLinkFunc != nil {
		return d.GetLinkFunc(ctx, id)
	}

	link, err := d.delegate.GetLink(ctx, id)
	if err != nil {
		return Link{}, fmt.Errorf("get link from store delegate: %w", err)
	}

	return link, nil
}

func (d *LinkStoreDelegate) DeleteLinks(ctx context.Context, pattern string) (int, error) {
	if d.DeleteLinksFunc != nil {
		return d.DeleteLinksFunc(ctx, pattern)
	}

	count, err := d.delegate.DeleteLinks(ctx, pattern)
	if err != nil {
		return 0, fmt.Errorf("delete links in store delegate: %w", err)
	}

	return count, nil
}

func (d *LinkStoreDelegate) IsAvailable(ctx context.Context) bool {
	if d.IsAvailableFunc != nil {
		return d.IsAvailableFunc(ctx)
	}

	return d.delegate.IsAvailable(ctx)
}
