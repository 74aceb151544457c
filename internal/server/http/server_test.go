package server

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nestjam/linkshort/internal/domain"
	"github.com/nestjam/linkshort/internal/domain/service"
	"github.com/nestjam/linkshort/internal/persistance/inmemory"
	"github.com/nestjam/linkshort/internal/persistance/sqlite"
	"github.com/nestjam/linkshort/internal/shortener"
)

const (
	testURL               = "https://example.com/path"
	acceptEncodingHeader  = "Accept-Encoding"
	contentEncodingHeader = "Content-Encoding"
	gzipEncoding          = "gzip"
	createPath            = "/create"
	trustedSubnet         = "10.0.0.0/8"
)

func TestLinkShortener(t *testing.T) {
	t.Run("with in memory store", func(t *testing.T) {
		LinkShortenerTest{
			CreateDependencies: func() (domain.LinkStore, Cleanup) {
				return inmemory.New(), func() {
				}
			},
		}.Test(t)
	})

	t.Run("with sqlite store", func(t *testing.T) {
		LinkShortenerTest{
			CreateDependencies: func() (domain.LinkStore, Cleanup) {
				store := sqlite.New(sqlite.Scheme + filepath.Join(t.TempDir(), "links.db"))
				require.NoError(t, store.Init(context.Background()))
				return store, store.Close
			},
		}.Test(t)
	})
}

type Cleanup func()

type sequenceGenerator struct {
	ids []string
}

func (g *sequenceGenerator) Generate() (string, error) {
	if len(g.ids) == 0 {
		return "", errors.New("no more ids")
	}
	id := g.ids[0]
	g.ids = g.ids[1:]
	return id, nil
}

type LinkShortenerTest struct {
	CreateDependencies func() (domain.LinkStore, Cleanup)
}

func (u LinkShortenerTest) newServer(tb testing.TB, store domain.LinkStore, options ...service.Option) *Server {
	tb.Helper()

	generator, err := shortener.New()
	require.NoError(tb, err)
	options = append(options, service.WithReservedIDs(ReservedIDs()...))
	svc := service.New(store, generator, options...)
	return New(svc, WithTrustedSubnet(trustedSubnet))
}

func (u LinkShortenerTest) Test(t *testing.T) {
	t.Run("creating link", func(t *testing.T) {
		t.Run("create link from json", func(t *testing.T) {
			store, cleanup := u.CreateDependencies()
			t.Cleanup(cleanup)
			sut := u.newServer(t, store)
			response := httptest.NewRecorder()

			sut.ServeHTTP(response, newCreateJSONRequest(testURL))

			assert.Equal(t, http.StatusOK, response.Code)
			assert.Equal(t, applicationJSON, response.Header().Get(contentTypeHeader))
			id := decodeCreateResponse(t, response.Body)
			assert.Len(t, id, shortener.DefaultLength)
			assertStoredURL(t, store, id, testURL)
		})

		t.Run("create link from form", func(t *testing.T) {
			store, cleanup := u.CreateDependencies()
			t.Cleanup(cleanup)
			sut := u.newServer(t, store)
			response := httptest.NewRecorder()

			sut.ServeHTTP(response, newCreateFormRequest(testURL))

			assert.Equal(t, http.StatusOK, response.Code)
			id := decodeCreateResponse(t, response.Body)
			assertStoredURL(t, store, id, testURL)
		})

		t.Run("invalid url", func(t *testing.T) {
			store, cleanup := u.CreateDependencies()
			t.Cleanup(cleanup)
			sut := u.newServer(t, store)
			response := httptest.NewRecorder()

			sut.ServeHTTP(response, newCreateJSONRequest("not-a-url"))

			assert.Equal(t, http.StatusBadRequest, response.Code)
			assertError(t, "Invalid url: relative URL without a base", response.Body)
		})

		t.Run("url is empty", func(t *testing.T) {
			store, cleanup := u.CreateDependencies()
			t.Cleanup(cleanup)
			sut := u.newServer(t, store)
			response := httptest.NewRecorder()

			sut.ServeHTTP(response, newCreateFormRequest(""))

			assert.Equal(t, http.StatusBadRequest, response.Code)
			assertError(t, "Invalid url: empty url", response.Body)
		})

		t.Run("malformed json", func(t *testing.T) {
			store, cleanup := u.CreateDependencies()
			t.Cleanup(cleanup)
			sut := u.newServer(t, store)
			request := httptest.NewRequest(http.MethodPost, createPath, strings.NewReader("{"))
			request.Header.Set(contentTypeHeader, applicationJSON)
			response := httptest.NewRecorder()

			sut.ServeHTTP(response, request)

			assert.Equal(t, http.StatusBadRequest, response.Code)
			assertError(t, failedToParseRequestMessage, response.Body)
		})

		t.Run("unsupported content type", func(t *testing.T) {
			store, cleanup := u.CreateDependencies()
			t.Cleanup(cleanup)
			sut := u.newServer(t, store)
			request := newCreateJSONRequest(testURL)
			request.Header.Set(contentTypeHeader, "application/xml")
			response := httptest.NewRecorder()

			sut.ServeHTTP(response, request)

			assert.Equal(t, http.StatusUnsupportedMediaType, response.Code)
		})

		t.Run("create same url twice", func(t *testing.T) {
			store, cleanup := u.CreateDependencies()
			t.Cleanup(cleanup)
			sut := u.newServer(t, store)

			first := httptest.NewRecorder()
			sut.ServeHTTP(first, newCreateJSONRequest(testURL))
			second := httptest.NewRecorder()
			sut.ServeHTTP(second, newCreateJSONRequest(testURL))

			require.Equal(t, http.StatusOK, first.Code)
			require.Equal(t, http.StatusOK, second.Code)
			firstID := decodeCreateResponse(t, first.Body)
			secondID := decodeCreateResponse(t, second.Body)
			assert.NotEqual(t, firstID, secondID)
		})

		t.Run("client accepts gzip", func(t *testing.T) {
			store, cleanup := u.CreateDependencies()
			t.Cleanup(cleanup)
			sut := u.newServer(t, store)
			request := newCreateJSONRequest(testURL)
			request.Header.Set(acceptEncodingHeader, "br, "+gzipEncoding)
			response := httptest.NewRecorder()

			sut.ServeHTTP(response, request)

			assert.Equal(t, http.StatusOK, response.Code)
			assert.Equal(t, gzipEncoding, response.Header().Get(contentEncodingHeader))
			id := decodeCreateResponse(t, getDecoded(t, response.Body))
			assertStoredURL(t, store, id, testURL)
		})

		t.Run("client sends gzip encoded body", func(t *testing.T) {
			store, cleanup := u.CreateDependencies()
			t.Cleanup(cleanup)
			sut := u.newServer(t, store)
			request := newEncodedCreateRequest(t, testURL)
			response := httptest.NewRecorder()

			sut.ServeHTTP(response, request)

			assert.Equal(t, http.StatusOK, response.Code)
			id := decodeCreateResponse(t, response.Body)
			assertStoredURL(t, store, id, testURL)
		})

		t.Run("failed to store link", func(t *testing.T) {
			store, cleanup := u.CreateDependencies()
			t.Cleanup(cleanup)
			failingStore := domain.NewLinkStoreDelegate(store)
			failingStore.CreateLinkFunc = func(ctx context.Context, link domain.Link) error {
				return errors.New("connection reset by peer")
			}
			sut := u.newServer(t, failingStore)
			response := httptest.NewRecorder()

			sut.ServeHTTP(response, newCreateJSONRequest(testURL))

			assert.Equal(t, http.StatusInternalServerError, response.Code)
			assertError(t, failedToStoreLinkMessage, response.Body)
		})

		t.Run("link id space exhausted", func(t *testing.T) {
			store, cleanup := u.CreateDependencies()
			t.Cleanup(cleanup)
			collidingStore := domain.NewLinkStoreDelegate(store)
			collidingStore.CreateLinkFunc = func(ctx context.Context, link domain.Link) error {
				return domain.ErrLinkExists
			}
			sut := u.newServer(t, collidingStore, service.WithCreateAttempts(2))
			response := httptest.NewRecorder()

			sut.ServeHTTP(response, newCreateJSONRequest(testURL))

			assert.Equal(t, http.StatusInternalServerError, response.Code)
			assertError(t, failedToGenerateLinkIDMessage, response.Body)
		})
	})

	t.Run("getting link", func(t *testing.T) {
		t.Run("get link", func(t *testing.T) {
			store, cleanup := u.CreateDependencies()
			t.Cleanup(cleanup)
			require.NoError(t, store.CreateLink(context.Background(), domain.Link{ID: "ab12c", URL: testURL}))
			sut := u.newServer(t, store)
			response := httptest.NewRecorder()

			sut.ServeHTTP(response, newGetRequest("ab12c"))

			assert.Equal(t, http.StatusOK, response.Code)
			var got GetResponse
			require.NoError(t, json.NewDecoder(response.Body).Decode(&got))
			assert.Equal(t, testURL, got.URL)
		})

		t.Run("link not found", func(t *testing.T) {
			store, cleanup := u.CreateDependencies()
			t.Cleanup(cleanup)
			sut := u.newServer(t, store)
			response := httptest.NewRecorder()

			sut.ServeHTTP(response, newGetRequest("zzzzz"))

			assert.Equal(t, http.StatusNotFound, response.Code)
			assertError(t, "No links match with zzzzz", response.Body)
		})

		t.Run("failed to get link", func(t *testing.T) {
			store, cleanup := u.CreateDependencies()
			t.Cleanup(cleanup)
			failingStore := domain.NewLinkStoreDelegate(store)
			failingStore.GetLinkFunc = func(ctx context.Context, id string) (domain.Link, error) {
				return domain.Link{}, errors.New("relation \"links\" does not exist")
			}
			sut := u.newServer(t, failingStore)
			response := httptest.NewRecorder()

			sut.ServeHTTP(response, newGetRequest("ab12c"))

			assert.Equal(t, http.StatusInternalServerError, response.Code)
			assertError(t, failedToGetLinkMessage, response.Body)
		})

		t.Run("created link resolves to submitted url", func(t *testing.T) {
			store, cleanup := u.CreateDependencies()
			t.Cleanup(cleanup)
			sut := u.newServer(t, store)
			urls := []string{
				"https://example.com/path",
				"http://localhost:8080/a?b=c#d",
				"ftp://files.example.com/file.txt",
			}

			for _, want := range urls {
				created := httptest.NewRecorder()
				sut.ServeHTTP(created, newCreateJSONRequest(want))
				require.Equal(t, http.StatusOK, created.Code)
				id := decodeCreateResponse(t, created.Body)

				response := httptest.NewRecorder()
				sut.ServeHTTP(response, newGetRequest(id))

				require.Equal(t, http.StatusOK, response.Code)
				var got GetResponse
				require.NoError(t, json.NewDecoder(response.Body).Decode(&got))
				assert.Equal(t, want, got.URL)
			}
		})

		t.Run("redirect to original url", func(t *testing.T) {
			store, cleanup := u.CreateDependencies()
			t.Cleanup(cleanup)
			require.NoError(t, store.CreateLink(context.Background(), domain.Link{ID: "ab12c", URL: testURL}))
			sut := u.newServer(t, store)
			response := httptest.NewRecorder()

			sut.ServeHTTP(response, httptest.NewRequest(http.MethodGet, "/ab12c", nil))

			assert.Equal(t, http.StatusTemporaryRedirect, response.Code)
			assert.Equal(t, testURL, response.Header().Get("Location"))
		})

		t.Run("generated id never shadows static route", func(t *testing.T) {
			store, cleanup := u.CreateDependencies()
			t.Cleanup(cleanup)
			generator := &sequenceGenerator{ids: append(ReservedIDs(), "ab12c")}
			svc := service.New(store, generator, service.WithReservedIDs(ReservedIDs()...))
			sut := New(svc)
			request := httptest.NewRequest(http.MethodPost, createPath, strings.NewReader(`{"url":"`+testURL+`"}`))
			request.Header.Set("Content-Type", "application/json")
			response := httptest.NewRecorder()

			sut.ServeHTTP(response, request)

			require.Equal(t, http.StatusOK, response.Code)
			var created CreateResponse
			require.NoError(t, json.NewDecoder(response.Body).Decode(&created))
			assert.Equal(t, "ab12c", created.ID)

			response = httptest.NewRecorder()
			sut.ServeHTTP(response, httptest.NewRequest(http.MethodGet, "/"+created.ID, nil))
			assert.Equal(t, http.StatusTemporaryRedirect, response.Code)
		})

		t.Run("reserved ids match static routes", func(t *testing.T) {
			store, cleanup := u.CreateDependencies()
			t.Cleanup(cleanup)
			sut := u.newServer(t, store)

			for _, id := range ReservedIDs() {
				require.NoError(t, store.CreateLink(context.Background(), domain.Link{ID: id, URL: testURL}))
				response := httptest.NewRecorder()

				sut.ServeHTTP(response, httptest.NewRequest(http.MethodGet, "/"+id, nil))

				assert.NotEqual(t, http.StatusTemporaryRedirect, response.Code, id)
			}
		})

		t.Run("redirect to unknown link", func(t *testing.T) {
			store, cleanup := u.CreateDependencies()
			t.Cleanup(cleanup)
			sut := u.newServer(t, store)
			response := httptest.NewRecorder()

			sut.ServeHTTP(response, httptest.NewRequest(http.MethodGet, "/zzzzz", nil))

			assert.Equal(t, http.StatusNotFound, response.Code)
		})
	})

	t.Run("deleting links", func(t *testing.T) {
		t.Run("delete from trusted subnet", func(t *testing.T) {
			store, cleanup := u.CreateDependencies()
			t.Cleanup(cleanup)
			ctx := context.Background()
			require.NoError(t, store.CreateLink(ctx, domain.Link{ID: "ab12c", URL: testURL}))
			require.NoError(t, store.CreateLink(ctx, domain.Link{ID: "xyz99", URL: testURL}))
			sut := u.newServer(t, store)
			response := httptest.NewRecorder()

			sut.ServeHTTP(response, newDeleteRequest("ab", "10.1.1.1"))

			assert.Equal(t, http.StatusOK, response.Code)
			var got DeleteResponse
			require.NoError(t, json.NewDecoder(response.Body).Decode(&got))
			assert.Equal(t, 1, got.Deleted)
			_, err := store.GetLink(ctx, "ab12c")
			assert.ErrorIs(t, err, domain.ErrLinkNotFound)
		})

		t.Run("delete from untrusted address", func(t *testing.T) {
			store, cleanup := u.CreateDependencies()
			t.Cleanup(cleanup)
			ctx := context.Background()
			require.NoError(t, store.CreateLink(ctx, domain.Link{ID: "ab12c", URL: testURL}))
			sut := u.newServer(t, store)
			response := httptest.NewRecorder()

			sut.ServeHTTP(response, newDeleteRequest("ab", "192.168.1.1"))

			assert.Equal(t, http.StatusForbidden, response.Code)
			_, err := store.GetLink(ctx, "ab12c")
			assert.NoError(t, err)
		})

		t.Run("delete with empty pattern", func(t *testing.T) {
			store, cleanup := u.CreateDependencies()
			t.Cleanup(cleanup)
			sut := u.newServer(t, store)
			response := httptest.NewRecorder()

			sut.ServeHTTP(response, newDeleteRequest("", "10.1.1.1"))

			assert.Equal(t, http.StatusBadRequest, response.Code)
			assertError(t, domain.ErrPatternIsEmpty.Error(), response.Body)
		})
	})

	t.Run("pinging service", func(t *testing.T) {
		t.Run("service is available", func(t *testing.T) {
			store, cleanup := u.CreateDependencies()
			t.Cleanup(cleanup)
			sut := u.newServer(t, store)
			response := httptest.NewRecorder()

			sut.ServeHTTP(response, httptest.NewRequest(http.MethodGet, "/ping", nil))

			assert.Equal(t, http.StatusOK, response.Code)
		})

		t.Run("service is not available", func(t *testing.T) {
			store, cleanup := u.CreateDependencies()
			t.Cleanup(cleanup)
			unavailableStore := domain.NewLinkStoreDelegate(store)
			unavailableStore.IsAvailableFunc = func(ctx context.Context) bool {
				return false
			}
			sut := u.newServer(t, unavailableStore)
			response := httptest.NewRecorder()

			sut.ServeHTTP(response, httptest.NewRequest(http.MethodGet, "/ping", nil))

			assert.Equal(t, http.StatusInternalServerError, response.Code)
		})
	})
}

func newCreateJSONRequest(originalURL string) *http.Request {
	body, _ := json.Marshal(CreateRequest{URL: originalURL})
	r := httptest.NewRequest(http.MethodPost, createPath, bytes.NewReader(body))
	r.Header.Set(contentTypeHeader, applicationJSON)
	return r
}

func newCreateFormRequest(originalURL string) *http.Request {
	form := url.Values{urlFormKey: []string{originalURL}}
	r := httptest.NewRequest(http.MethodPost, createPath, strings.NewReader(form.Encode()))
	r.Header.Set(contentTypeHeader, applicationForm)
	return r
}

func newEncodedCreateRequest(t *testing.T, originalURL string) *http.Request {
	t.Helper()

	body, err := json.Marshal(CreateRequest{URL: originalURL})
	require.NoError(t, err)
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	_, err = gz.Write(body)
	require.NoError(t, err)
	require.NoError(t, gz.Close())

	r := httptest.NewRequest(http.MethodPost, createPath, &buf)
	r.Header.Set(contentTypeHeader, applicationJSON)
	r.Header.Set(contentEncodingHeader, gzipEncoding)
	return r
}

func newGetRequest(id string) *http.Request {
	return httptest.NewRequest(http.MethodGet, "/get/"+id, nil)
}

func newDeleteRequest(pattern, ip string) *http.Request {
	r := httptest.NewRequest(http.MethodDelete, "/api/internal/links?pattern="+url.QueryEscape(pattern), nil)
	r.Header.Set("X-Real-IP", ip)
	return r
}

func decodeCreateResponse(t *testing.T, body io.Reader) string {
	t.Helper()

	var resp CreateResponse
	require.NoError(t, json.NewDecoder(body).Decode(&resp))
	return resp.ID
}

func getDecoded(t *testing.T, r io.Reader) io.Reader {
	t.Helper()

	gz, err := gzip.NewReader(r)
	require.NoError(t, err)
	content, err := io.ReadAll(gz)
	require.NoError(t, err)
	return bytes.NewReader(content)
}

func assertError(t *testing.T, want string, body io.Reader) {
	t.Helper()

	var resp ErrorResponse
	require.NoError(t, json.NewDecoder(body).Decode(&resp))
	assert.Equal(t, want, resp.Error)
}

func assertStoredURL(t *testing.T, store domain.LinkStore, id, want string) {
	t.Helper()

	link, err := store.GetLink(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, want, link.URL)
}
