package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"strconv"
	"time"

	chimiddleware "github.com/go-chi/chi/middleware"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/nestjam/linkshort/internal/domain"
	"github.com/nestjam/linkshort/internal/domain/service"
	"github.com/nestjam/linkshort/internal/middleware"
)

const (
	pingRoute   = "ping"
	createRoute = "create"

	contentTypeHeader   = "Content-Type"
	contentLengthHeader = "Content-Length"
	applicationJSON     = "application/json"
	applicationForm     = "application/x-www-form-urlencoded"
	urlFormKey          = "url"
	patternQueryKey     = "pattern"
	idPathParam         = "id"

	failedToParseRequestMessage    = "failed to parse request"
	failedToStoreLinkMessage       = "failed to store link"
	failedToGetLinkMessage         = "failed to get link"
	failedToDeleteLinksMessage     = "failed to delete links"
	failedToGenerateLinkIDMessage  = "failed to generate unique link id"
	failedToPrepareResponseMessage = "failed to prepare response"
	linkNotFoundMessageFormat      = "No links match with %s"

	defaultRequestTimeout = 10 * time.Second
)

// Server предоставляет HTTP API создания и получения коротких ссылок.
type Server struct {
	service        *service.LinkService
	router         chi.Router
	logger         *zap.Logger
	trustedSubnet  string
	requestTimeout time.Duration
}

// CreateRequest содержит исходную ссылку. Принимается в виде JSON или формы.
type CreateRequest struct {
	URL string `json:"url"` // исходная ссылка
}

// CreateResponse содержит идентификатор созданной ссылки.
type CreateResponse struct {
	ID string `json:"id"` // идентификатор ссылки
}

// GetResponse содержит исходную ссылку.
type GetResponse struct {
	URL string `json:"url"` // исходная ссылка
}

// DeleteResponse содержит количество удаленных ссылок.
type DeleteResponse struct {
	Deleted int `json:"deleted"` // количество удаленных ссылок
}

// ErrorResponse содержит описание ошибки.
type ErrorResponse struct {
	Error string `json:"error"` // описание ошибки
}

// ReservedIDs возвращает идентификаторы, которые совпадают со статическими
// путями сервера и не могут обслуживаться перенаправлением GET /{id}.
func ReservedIDs() []string {
	return []string{pingRoute, createRoute}
}

// Option определяет опцию настройки сервера.
type Option func(*Server)

// New создает сервер. Конструктор принимает на вход сервис ссылок и набор опций.
func New(svc *service.LinkService, options ...Option) *Server {
	r := chi.NewRouter()
	s := &Server{
		service:        svc,
		router:         r,
		logger:         zap.NewNop(),
		requestTimeout: defaultRequestTimeout,
	}

	for _, opt := range options {
		opt(s)
	}

	r.Use(middleware.ResponseLogger(s.logger))
	r.Use(middleware.Recovery(s.logger))
	r.Use(chimiddleware.Timeout(s.requestTimeout))

	r.Get("/"+pingRoute, s.ping)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequestDecoder)
		r.Use(chimiddleware.AllowContentType(applicationJSON, applicationForm))
		r.Use(middleware.ResponseEncoder)

		r.Post("/"+createRoute, s.create)
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.ResponseEncoder)

		r.Get("/get/{id}", s.get)
		r.Get("/{id}", s.redirect)
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.TrustedSubnet(s.trustedSubnet))

		r.Delete("/api/internal/links", s.deleteLinks)
	})

	return s
}

// ServeHTTP обрабатывает запрос.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) create(w http.ResponseWriter, r *http.Request) {
	req, err := decodeCreateRequest(r)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, failedToParseRequestMessage)
		return
	}

	link, err := s.service.CreateLink(r.Context(), req.URL)

	var invalidURL *domain.InvalidURLError
	switch {
	case errors.As(err, &invalidURL):
		s.writeError(w, http.StatusBadRequest, invalidURL.Error())
		return
	case errors.Is(err, service.ErrCapacityExhausted):
		s.logger.Error("link id space exhausted", zap.String("url", req.URL))
		s.writeError(w, http.StatusInternalServerError, failedToGenerateLinkIDMessage)
		return
	case err != nil:
		s.logger.Error(failedToStoreLinkMessage, zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, failedToStoreLinkMessage)
		return
	}

	s.writeJSON(w, http.StatusOK, CreateResponse{ID: link.ID})
}

func decodeCreateRequest(r *http.Request) (CreateRequest, error) {
	var req CreateRequest

	if isContentType(r, applicationForm) {
		if err := r.ParseForm(); err != nil {
			return req, fmt.Errorf("parse form: %w", err)
		}
		req.URL = r.PostForm.Get(urlFormKey)
		return req, nil
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return req, fmt.Errorf("decode json: %w", err)
	}

	return req, nil
}

func isContentType(r *http.Request, contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get(contentTypeHeader))
	return err == nil && mediaType == contentType
}

func (s *Server) get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, idPathParam)
	link, ok := s.getLink(w, r, id)
	if !ok {
		return
	}

	s.writeJSON(w, http.StatusOK, GetResponse{URL: link.URL})
}

func (s *Server) redirect(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, idPathParam)
	link, ok := s.getLink(w, r, id)
	if !ok {
		return
	}

	http.Redirect(w, r, link.URL, http.StatusTemporaryRedirect)
}

func (s *Server) getLink(w http.ResponseWriter, r *http.Request, id string) (domain.Link, bool) {
	link, err := s.service.GetLink(r.Context(), id)

	if errors.Is(err, domain.ErrLinkNotFound) {
		s.writeError(w, http.StatusNotFound, fmt.Sprintf(linkNotFoundMessageFormat, id))
		return link, false
	}
	if err != nil {
		s.logger.Error(failedToGetLinkMessage, zap.String("id", id), zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, failedToGetLinkMessage)
		return link, false
	}

	return link, true
}

func (s *Server) ping(w http.ResponseWriter, r *http.Request) {
	status := http.StatusInternalServerError
	if s.service.IsAvailable(r.Context()) {
		status = http.StatusOK
	}
	w.WriteHeader(status)
}

func (s *Server) deleteLinks(w http.ResponseWriter, r *http.Request) {
	pattern := r.URL.Query().Get(patternQueryKey)
	count, err := s.service.DeleteLinks(r.Context(), pattern)

	if errors.Is(err, domain.ErrPatternIsEmpty) {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		s.logger.Error(failedToDeleteLinksMessage, zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, failedToDeleteLinksMessage)
		return
	}

	s.writeJSON(w, http.StatusOK, DeleteResponse{Deleted: count})
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, ErrorResponse{Error: message})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	content, err := json.Marshal(v)
	if err != nil {
		http.Error(w, failedToPrepareResponseMessage, http.StatusInternalServerError)
		return
	}

	w.Header().Set(contentTypeHeader, applicationJSON)
	w.Header().Set(contentLengthHeader, strconv.Itoa(len(content)))
	w.WriteHeader(status)
	if _, err := w.Write(content); err != nil {
		s.logger.Debug("failed to write response", zap.Error(err))
	}
}

// WithLogger задает логер для сервера.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithTrustedSubnet задает доверенную подсеть для административных запросов.
func WithTrustedSubnet(subnet string) Option {
	return func(s *Server) {
		s.trustedSubnet = subnet
	}
}

// WithRequestTimeout ограничивает время обработки запроса.
func WithRequestTimeout(timeout time.Duration) Option {
	return func(s *Server) {
		s.requestTimeout = timeout
	}
}
