package server

import (
	"context"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nestjam/linkshort/internal/domain"
	"github.com/nestjam/linkshort/internal/persistance/inmemory"
)

func BenchmarkLinkShortener(b *testing.B) {
	b.Run("with in memory store", func(b *testing.B) {
		LinkShortenerTest{
			CreateDependencies: func() (domain.LinkStore, Cleanup) {
				return inmemory.New(), func() {
				}
			},
		}.Benchmark(b)
	})
}

func (u LinkShortenerTest) Benchmark(b *testing.B) {
	b.Run("get link", func(b *testing.B) {
		const id = "ab12c"
		store, cleanup := u.CreateDependencies()
		b.Cleanup(cleanup)
		err := store.CreateLink(context.Background(), domain.Link{ID: id, URL: testURL})
		require.NoError(b, err)
		sut := u.newServer(b, store)

		b.ResetTimer()

		for i := 0; i < b.N; i++ {
			sut.ServeHTTP(httptest.NewRecorder(), newGetRequest(id))
		}
	})

	b.Run("create link", func(b *testing.B) {
		store, cleanup := u.CreateDependencies()
		b.Cleanup(cleanup)
		sut := u.newServer(b, store)

		b.ResetTimer()

		for i := 0; i < b.N; i++ {
			b.StopTimer()
			request := newCreateJSONRequest(testURL + strconv.Itoa(i))
			response := httptest.NewRecorder()
			b.StartTimer()

			sut.ServeHTTP(response, request)
		}
	})
}
