package grpc

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/nestjam/linkshort/internal/domain"
	"github.com/nestjam/linkshort/internal/domain/service"
)

const (
	failedToStoreLinkMessage      = "failed to store link"
	failedToGetLinkMessage        = "failed to get link"
	failedToGenerateLinkIDMessage = "failed to generate unique link id"
	linkNotFoundMessageFormat     = "No links match with %s"
)

// Server предоставляет gRPC API создания и получения коротких ссылок.
type Server struct {
	service *service.LinkService
	logger  *zap.Logger
}

// Option определяет опцию настройки сервера.
type Option func(*Server)

// WithLogger задает логер для сервера.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// New создает сервер. Конструктор принимает на вход сервис ссылок и набор опций.
func New(svc *service.LinkService, options ...Option) *Server {
	s := &Server{
		service: svc,
		logger:  zap.NewNop(),
	}

	for _, opt := range options {
		opt(s)
	}

	return s
}

// Create создает короткую ссылку.
func (s *Server) Create(ctx context.Context, request *wrapperspb.StringValue) (*wrapperspb.StringValue, error) {
	rawURL := request.GetValue()
	link, err := s.service.CreateLink(ctx, rawURL)

	var invalidURL *domain.InvalidURLError
	switch {
	case errors.As(err, &invalidURL):
		return nil, status.Error(codes.InvalidArgument, invalidURL.Error())
	case errors.Is(err, service.ErrCapacityExhausted):
		s.logger.Error("link id space exhausted", zap.String("url", rawURL))
		return nil, status.Error(codes.Internal, failedToGenerateLinkIDMessage)
	case err != nil:
		s.logger.Error(failedToStoreLinkMessage, zap.Error(err))
		return nil, status.Error(codes.Internal, failedToStoreLinkMessage)
	}

	return wrapperspb.String(link.ID), nil
}

// Get возвращает исходную ссылку по идентификатору.
func (s *Server) Get(ctx context.Context, request *wrapperspb.StringValue) (*wrapperspb.StringValue, error) {
	id := request.GetValue()
	link, err := s.service.GetLink(ctx, id)

	if errors.Is(err, domain.ErrLinkNotFound) {
		return nil, status.Error(codes.NotFound, fmt.Sprintf(linkNotFoundMessageFormat, id))
	}
	if err != nil {
		s.logger.Error(failedToGetLinkMessage, zap.String("id", id), zap.Error(err))
		return nil, status.Error(codes.Internal, failedToGetLinkMessage)
	}

	return wrapperspb.String(link.URL), nil
}

// Ping проверяет доступность сервиса.
func (s *Server) Ping(ctx context.Context, _ *emptypb.Empty) (*wrapperspb.BoolValue, error) {
	return wrapperspb.Bool(s.service.IsAvailable(ctx)), nil
}
