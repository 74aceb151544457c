package client

import (
	"net/http"
	"net/url"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"
)

// DefaultServerAddress адрес сервера по умолчанию.
const DefaultServerAddress = "http://localhost:8080"

// Client представляет клиент сервиса коротких ссылок.
type Client struct {
	inner         *resty.Client
	serverAddress string
}

type createRequest struct {
	URL string `json:"url"`
}

type createResponse struct {
	ID string `json:"id"`
}

type getResponse struct {
	URL string `json:"url"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Option определяет опцию настройки клиента.
type Option func(*Client)

// New создает экземпляр клиента с переданными опциями.
func New(options ...Option) *Client {
	client := &Client{
		inner:         resty.New(),
		serverAddress: DefaultServerAddress,
	}

	for _, opt := range options {
		opt(client)
	}

	client.inner.SetBaseURL(client.serverAddress)
	return client
}

// WithServerAddress возвращает опцию клиента с указанным адресом сервера.
func WithServerAddress(addr string) Option {
	return func(client *Client) {
		client.serverAddress = addr
	}
}

// Create создает короткую ссылку и возвращает ее идентификатор.
func (c *Client) Create(originalURL string) (string, error) {
	const op = "create link"
	var result createResponse
	var failure errorResponse

	response, err := c.inner.R().
		SetBody(createRequest{URL: originalURL}).
		SetResult(&result).
		SetError(&failure).
		Post("/create")

	if err != nil {
		return "", errors.Wrap(err, op)
	}

	if response.StatusCode() != http.StatusOK {
		return "", responseError(op, response, failure)
	}

	return result.ID, nil
}

// Get возвращает исходную ссылку по идентификатору.
func (c *Client) Get(id string) (string, error) {
	const op = "get link"
	var result getResponse
	var failure errorResponse

	response, err := c.inner.R().
		SetResult(&result).
		SetError(&failure).
		Get("/get/" + url.PathEscape(id))

	if err != nil {
		return "", errors.Wrap(err, op)
	}

	if response.StatusCode() != http.StatusOK {
		return "", responseError(op, response, failure)
	}

	return result.URL, nil
}

func responseError(op string, response *resty.Response, failure errorResponse) error {
	if failure.Error != "" {
		return errors.Errorf("%s: %s", op, failure.Error)
	}

	return errors.Errorf("%s: unexpected status %s", op, response.Status())
}
