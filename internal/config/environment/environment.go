package environment

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// DefaultDotEnvFile файл с переменными среды, который читается при наличии.
const DefaultDotEnvFile = ".env"

// Environment предоставляет доступ к переменным среды процесса,
// дополненным значениями из файла .env.
type Environment struct {
	dotEnvFile string
}

// Option определяет опцию настройки Environment.
type Option func(*Environment)

// WithDotEnvFile задает путь к файлу .env. Пустой путь отключает чтение файла.
func WithDotEnvFile(path string) Option {
	return func(env *Environment) {
		env.dotEnvFile = path
	}
}

// New создает экземпляр Environment.
func New(options ...Option) Environment {
	env := Environment{dotEnvFile: DefaultDotEnvFile}

	for _, opt := range options {
		opt(&env)
	}

	return env
}

// Environ возвращает переменные среды в виде словаря.
// Переменные процесса имеют приоритет над значениями из файла .env;
// отсутствующий или нечитаемый файл пропускается.
func (env Environment) Environ() map[string]string {
	m := make(map[string]string)

	if env.dotEnvFile != "" {
		if vars, err := godotenv.Read(env.dotEnvFile); err == nil {
			for key, value := range vars {
				m[key] = value
			}
		}
	}

	for _, kv := range os.Environ() {
		if key, value, ok := strings.Cut(kv, "="); ok {
			m[key] = value
		}
	}

	return m
}

// Map позволяет задать переменные среды явно.
type Map map[string]string

// Environ возвращает заданные переменные среды.
func (m Map) Environ() map[string]string {
	return m
}
