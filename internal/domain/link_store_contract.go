package domain

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// LinkStoreContract описывает поведение, общее для всех реализаций LinkStore.
type LinkStoreContract struct {
	NewLinkStore func() (LinkStore, func())
}

func (c LinkStoreContract) Test(t *testing.T) {
	const testURL = "https://example.com/path"

	t.Run("create link", func(t *testing.T) {
		sut, tearDown := c.NewLinkStore()
		t.Cleanup(tearDown)
		ctx := context.Background()
		link := Link{ID: "ab12c", URL: testURL}

		err := sut.CreateLink(ctx, link)
		require.NoError(t, err)

		got, err := sut.GetLink(ctx, link.ID)
		require.NoError(t, err)
		assert.Equal(t, link, got)
	})

	t.Run("link id already exists", func(t *testing.T) {
		sut, tearDown := c.NewLinkStore()
		t.Cleanup(tearDown)
		ctx := context.Background()
		link := Link{ID: "ab12c", URL: testURL}
		require.NoError(t, sut.CreateLink(ctx, link))

		err := sut.CreateLink(ctx, Link{ID: link.ID, URL: "https://other.example.com"})
		assert.ErrorIs(t, err, ErrLinkExists)

		got, err := sut.GetLink(ctx, link.ID)
		require.NoError(t, err)
		assert.Equal(t, testURL, got.URL)
	})

	t.Run("link not found", func(t *testing.T) {
		sut, tearDown := c.NewLinkStore()
		t.Cleanup(tearDown)

		_, err := sut.GetLink(context.Background(), "zzzzz")
		assert.ErrorIs(t, err, ErrLinkNotFound)
	})

	t.Run("get link twice", func(t *testing.T) {
		sut, tearDown := c.NewLinkStore()
		t.Cleanup(tearDown)
		ctx := context.Background()
		link := Link{ID: "ab12c", URL: testURL}
		require.NoError(t, sut.CreateLink(ctx, link))

		first, err := sut.GetLink(ctx, link.ID)
		require.NoError(t, err)
		second, err := sut.GetLink(ctx, link.ID)
		require.NoError(t, err)
		assert.Equal(t, first, second)
	})

	t.Run("concurrent create with same id", func(t *testing.T) {
		const workers = 16
		sut, tearDown := c.NewLinkStore()
		t.Cleanup(tearDown)
		ctx := context.Background()

		var wg sync.WaitGroup
		errs := make([]error, workers)
		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				errs[i] = sut.CreateLink(ctx, Link{ID: "same1", URL: fmt.Sprintf("%s/%d", testURL, i)})
			}(i)
		}
		wg.Wait()

		created := 0
		for _, err := range errs {
			if err == nil {
				created++
				continue
			}
			assert.ErrorIs(t, err, ErrLinkExists)
		}
		assert.Equal(t, 1, created)
	})

	t.Run("concurrent create with distinct ids", func(t *testing.T) {
		const workers = 16
		sut, tearDown := c.NewLinkStore()
		t.Cleanup(tearDown)
		ctx := context.Background()

		var wg sync.WaitGroup
		errs := make([]error, workers)
		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				errs[i] = sut.CreateLink(ctx, Link{ID: fmt.Sprintf("id%03d", i), URL: testURL})
			}(i)
		}
		wg.Wait()

		for i, err := range errs {
			require.NoError(t, err)
			got, err := sut.GetLink(ctx, fmt.Sprintf("id%03d", i))
			require.NoError(t, err)
			assert.Equal(t, testURL, got.URL)
		}
	})

	t.Run("delete links by pattern", func(t *testing.T) {
		sut, tearDown := c.NewLinkStore()
		t.Cleanup(tearDown)
		ctx := context.Background()
		for _, id := range []string{"xab1y", "zab2w", "qqqqq"} {
			require.NoError(t, sut.CreateLink(ctx, Link{ID: id, URL: testURL}))
		}

		count, err := sut.DeleteLinks(ctx, "ab")
		require.NoError(t, err)
		assert.Equal(t, 2, count)

		_, err = sut.GetLink(ctx, "xab1y")
		assert.ErrorIs(t, err, ErrLinkNotFound)
		_, err = sut.GetLink(ctx, "zab2w")
		assert.ErrorIs(t, err, ErrLinkNotFound)
		_, err = sut.GetLink(ctx, "qqqqq")
		assert.NoError(t, err)
	})

	t.Run("delete pattern wildcards are literal", func(t *testing.T) {
		sut, tearDown := c.NewLinkStore()
		t.Cleanup(tearDown)
		ctx := context.Background()
		for _, id := range []string{"a_b%c", "axbyc"} {
			require.NoError(t, sut.CreateLink(ctx, Link{ID: id, URL: testURL}))
		}

		count, err := sut.DeleteLinks(ctx, "_b%")
		require.NoError(t, err)
		assert.Equal(t, 1, count)

		_, err = sut.GetLink(ctx, "axbyc")
		assert.NoError(t, err)
	})

	t.Run("delete pattern is case sensitive", func(t *testing.T) {
		sut, tearDown := c.NewLinkStore()
		t.Cleanup(tearDown)
		ctx := context.Background()
		for _, id := range []string{"xAByz", "xabyz", "xAbyz"} {
			require.NoError(t, sut.CreateLink(ctx, Link{ID: id, URL: testURL}))
		}

		count, err := sut.DeleteLinks(ctx, "ab")
		require.NoError(t, err)
		assert.Equal(t, 1, count)

		_, err = sut.GetLink(ctx, "xabyz")
		assert.ErrorIs(t, err, ErrLinkNotFound)
		for _, id := range []string{"xAByz", "xAbyz"} {
			_, err = sut.GetLink(ctx, id)
			assert.NoError(t, err, id)
		}
	})

	t.Run("delete with empty pattern", func(t *testing.T) {
		sut, tearDown := c.NewLinkStore()
		t.Cleanup(tearDown)
		ctx := context.Background()
		require.NoError(t, sut.CreateLink(ctx, Link{ID: "ab12c", URL: testURL}))

		_, err := sut.DeleteLinks(ctx, "")
		assert.ErrorIs(t, err, ErrPatternIsEmpty)

		_, err = sut.GetLink(ctx, "ab12c")
		assert.NoError(t, err)
	})

	t.Run("deleted id can be reused", func(t *testing.T) {
		sut, tearDown := c.NewLinkStore()
		t.Cleanup(tearDown)
		ctx := context.Background()
		require.NoError(t, sut.CreateLink(ctx, Link{ID: "ab12c", URL: testURL}))
		_, err := sut.DeleteLinks(ctx, "ab12c")
		require.NoError(t, err)

		err = sut.CreateLink(ctx, Link{ID: "ab12c", URL: "https://other.example.com"})
		require.NoError(t, err)
	})

	t.Run("store is available", func(t *testing.T) {
		sut, tearDown := c.NewLinkStore()
		t.Cleanup(tearDown)

		assert.True(t, sut.IsAvailable(context.Background()))
	})
}
