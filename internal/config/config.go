package config

import (
	"flag"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/nestjam/linkshort/internal/domain/service"
	"github.com/nestjam/linkshort/internal/shortener"
)

// Config описывает конфигурацию сервиса коротких ссылок.
type Config struct {
	ServerAddress  string        `env:"SERVER_ADDRESS" validate:"required"`               // адрес HTTP сервера
	GRPCAddress    string        `env:"GRPC_ADDRESS"`                                     // адрес gRPC сервера, пустой адрес отключает gRPC
	DatabaseURL    string        `env:"DATABASE_URL" validate:"required"`                 // строка подключения к хранилищу ссылок
	TrustedSubnet  string        `env:"TRUSTED_SUBNET" validate:"omitempty,cidr"`         // подсеть, из которой доступно удаление ссылок
	IDAlphabet     string        `env:"ID_ALPHABET" validate:"min=2,max=66"`              // алфавит идентификатора
	LogLevel       string        `env:"LOG_LEVEL" validate:"oneof=debug info warn error"` // уровень логирования
	IDLength       int           `env:"ID_LENGTH" validate:"min=1,max=64"`                // длина идентификатора
	CreateAttempts int           `env:"CREATE_ATTEMPTS" validate:"min=1"`                 // количество попыток при коллизии идентификатора
	StoreTimeout   time.Duration `env:"STORE_TIMEOUT" validate:"gt=0"`                    // таймаут операции хранилища
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT" validate:"gt=0"`                  // таймаут обработки запроса
	EnableHTTPS    bool          `env:"ENABLE_HTTPS"`                                     // включить HTTPS
}

const (
	defaultServerAddr     = ":8080"
	defaultLogLevel       = "info"
	defaultRequestTimeout = 10 * time.Second
)

// Environment определяет доступ к переменным среды.
type Environment interface {
	Environ() map[string]string
}

// New создает экземпляр конфигурации с настройками по умолчанию.
func New() Config {
	return Config{
		ServerAddress:  defaultServerAddr,
		IDAlphabet:     shortener.DefaultAlphabet,
		LogLevel:       defaultLogLevel,
		IDLength:       shortener.DefaultLength,
		CreateAttempts: service.DefaultCreateAttempts,
		StoreTimeout:   service.DefaultStoreTimeout,
		RequestTimeout: defaultRequestTimeout,
	}
}

// FromArgs заполняет параметры конфигурации из аргументов командной строки.
func (conf Config) FromArgs(args []string) Config {
	flagSet := flag.NewFlagSet("", flag.PanicOnError)
	flagSet.StringVar(&conf.ServerAddress, "a", conf.ServerAddress, "server address")
	flagSet.StringVar(&conf.GRPCAddress, "g", conf.GRPCAddress, "grpc server address")
	flagSet.StringVar(&conf.DatabaseURL, "d", conf.DatabaseURL, "database url")
	flagSet.StringVar(&conf.TrustedSubnet, "t", conf.TrustedSubnet, "trusted subnet")
	flagSet.StringVar(&conf.IDAlphabet, "alphabet", conf.IDAlphabet, "link id alphabet")
	flagSet.StringVar(&conf.LogLevel, "log-level", conf.LogLevel, "log level")
	flagSet.IntVar(&conf.IDLength, "l", conf.IDLength, "link id length")
	flagSet.IntVar(&conf.CreateAttempts, "n", conf.CreateAttempts, "create attempts on id collision")
	flagSet.DurationVar(&conf.StoreTimeout, "store-timeout", conf.StoreTimeout, "store operation timeout")
	flagSet.DurationVar(&conf.RequestTimeout, "request-timeout", conf.RequestTimeout, "request timeout")
	flagSet.BoolVar(&conf.EnableHTTPS, "s", conf.EnableHTTPS, "enable https")

	_ = flagSet.Parse(args[1:]) // exclude command name
	return conf
}

// FromEnv заполняет параметры конфигурации из переменных среды.
// Переменные среды имеют приоритет над аргументами командной строки.
func (conf Config) FromEnv(environment Environment) (Config, error) {
	const op = "parse environment"

	err := env.Parse(&conf, env.Options{Environment: environment.Environ()})
	if err != nil {
		return conf, errors.Wrap(err, op)
	}

	return conf, nil
}

// Validate проверяет параметры конфигурации.
func (conf Config) Validate() error {
	const op = "validate config"

	if err := validator.New().Struct(conf); err != nil {
		return errors.Wrap(err, op)
	}

	return nil
}
