package main

import (
	"context"
	"crypto/tls"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"

	"github.com/nestjam/linkshort/internal/cert"
	conf "github.com/nestjam/linkshort/internal/config"
	env "github.com/nestjam/linkshort/internal/config/environment"
	"github.com/nestjam/linkshort/internal/domain/service"
	"github.com/nestjam/linkshort/internal/factory"
	"github.com/nestjam/linkshort/internal/interceptor"
	grpcserver "github.com/nestjam/linkshort/internal/server/grpc"
	httpserver "github.com/nestjam/linkshort/internal/server/http"
	"github.com/nestjam/linkshort/internal/shortener"
)

const (
	eventKey        = "event"
	shutdownTimeout = 10 * time.Second
)

func main() {
	config, err := loadConfig(os.Args)
	if err != nil {
		logger, _ := zap.NewProduction()
		logger.Fatal(err.Error(), zap.String(eventKey, "load config"))
	}

	logger, tearDownLogger, err := factory.NewLogger(config.LogLevel)
	if err != nil {
		fallback, _ := zap.NewProduction()
		fallback.Fatal(err.Error(), zap.String(eventKey, "create logger"))
	}
	defer tearDownLogger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, config, logger); err != nil {
		logger.Fatal(err.Error(), zap.String(eventKey, "run server"))
	}
	logger.Info("Server stopped")
}

func loadConfig(args []string) (conf.Config, error) {
	config, err := conf.New().
		FromArgs(args).
		FromEnv(env.New())
	if err != nil {
		return conf.Config{}, err
	}

	if err := config.Validate(); err != nil {
		return conf.Config{}, err
	}

	return config, nil
}

func run(ctx context.Context, config conf.Config, logger *zap.Logger) error {
	const op = "run"

	store, tearDownStorage, err := factory.NewStorage(ctx, config, logger)
	if err != nil {
		return errors.Wrap(err, op)
	}
	defer tearDownStorage()

	generator, err := shortener.New(
		shortener.WithLength(config.IDLength),
		shortener.WithAlphabet(config.IDAlphabet))
	if err != nil {
		return errors.Wrap(err, op)
	}

	svc := service.New(store, generator,
		service.WithCreateAttempts(config.CreateAttempts),
		service.WithStoreTimeout(config.StoreTimeout),
		service.WithReservedIDs(httpserver.ReservedIDs()...),
		service.WithLogger(logger))

	g, ctx := errgroup.WithContext(ctx)

	httpSrv, err := newHTTPServer(config, svc, logger)
	if err != nil {
		return errors.Wrap(err, op)
	}
	g.Go(func() error {
		logger.Info("Running http server",
			zap.String("address", config.ServerAddress),
			zap.Bool("https", config.EnableHTTPS))
		return serveHTTP(httpSrv, config.EnableHTTPS)
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return httpSrv.Shutdown(shutdownCtx)
	})

	if config.GRPCAddress != "" {
		listener, err := net.Listen("tcp", config.GRPCAddress)
		if err != nil {
			return errors.Wrap(err, op)
		}

		grpcSrv := grpc.NewServer(grpc.UnaryInterceptor(interceptor.NewLog(logger).Handle))
		grpcserver.Register(grpcSrv, grpcserver.New(svc, grpcserver.WithLogger(logger)))

		g.Go(func() error {
			logger.Info("Running grpc server", zap.String("address", config.GRPCAddress))
			return grpcSrv.Serve(listener)
		})
		g.Go(func() error {
			<-ctx.Done()
			grpcSrv.GracefulStop()
			return nil
		})
	}

	return g.Wait()
}

func newHTTPServer(config conf.Config, svc *service.LinkService, logger *zap.Logger) (*http.Server, error) {
	handler := httpserver.New(svc,
		httpserver.WithLogger(logger),
		httpserver.WithTrustedSubnet(config.TrustedSubnet),
		httpserver.WithRequestTimeout(config.RequestTimeout))

	srv := &http.Server{
		Addr:              config.ServerAddress,
		Handler:           handler,
		ReadHeaderTimeout: config.RequestTimeout,
	}

	if config.EnableHTTPS {
		certificate, err := cert.SelfSigned()
		if err != nil {
			return nil, err
		}
		srv.TLSConfig = &tls.Config{
			Certificates: []tls.Certificate{certificate},
			MinVersion:   tls.VersionTLS12,
		}
	}

	return srv, nil
}

func serveHTTP(srv *http.Server, enableHTTPS bool) error {
	var err error
	if enableHTTPS {
		err = srv.ListenAndServeTLS("", "")
	} else {
		err = srv.ListenAndServe()
	}

	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}
