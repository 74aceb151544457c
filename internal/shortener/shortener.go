package shortener

import (
	"crypto/rand"
	"io"
	"math/big"
	"strings"

	"github.com/pkg/errors"
)

// Параметры генератора по умолчанию.
const (
	DefaultLength   = 5
	DefaultAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789_-"
)

// urlSafeSymbols содержит незарезервированные символы URL.
const urlSafeSymbols = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789-._~"

// Ошибки настройки генератора.
var (
	ErrInvalidLength   = errors.New("id length must be positive")
	ErrInvalidAlphabet = errors.New("alphabet must contain at least 2 unique url-safe symbols")
)

// Generator создает короткие случайные идентификаторы фиксированной длины из заданного алфавита.
// Уникальность идентификаторов не гарантируется.
type Generator struct {
	random   io.Reader
	alphabet string
	length   int
}

// Option определяет опцию настройки генератора.
type Option func(*Generator)

// WithLength задает длину идентификатора.
func WithLength(length int) Option {
	return func(g *Generator) {
		g.length = length
	}
}

// WithAlphabet задает алфавит идентификатора.
func WithAlphabet(alphabet string) Option {
	return func(g *Generator) {
		g.alphabet = alphabet
	}
}

// WithRandom задает источник случайных байт. По умолчанию используется crypto/rand.
func WithRandom(r io.Reader) Option {
	return func(g *Generator) {
		g.random = r
	}
}

// New создает генератор. Возвращает ошибку, если длина или алфавит недопустимы.
func New(options ...Option) (*Generator, error) {
	g := &Generator{
		random:   rand.Reader,
		alphabet: DefaultAlphabet,
		length:   DefaultLength,
	}

	for _, opt := range options {
		opt(g)
	}

	if g.length < 1 {
		return nil, ErrInvalidLength
	}

	if !isValidAlphabet(g.alphabet) {
		return nil, ErrInvalidAlphabet
	}

	return g, nil
}

// Generate возвращает новый идентификатор.
func (g *Generator) Generate() (string, error) {
	const op = "generate id"

	id := make([]byte, g.length)
	max := big.NewInt(int64(len(g.alphabet)))

	for i := range id {
		n, err := rand.Int(g.random, max)
		if err != nil {
			return "", errors.Wrap(err, op)
		}
		id[i] = g.alphabet[n.Int64()]
	}

	return string(id), nil
}

// Length возвращает длину генерируемых идентификаторов.
func (g *Generator) Length() int {
	return g.length
}

func isValidAlphabet(alphabet string) bool {
	if len(alphabet) < 2 {
		return false
	}

	seen := make(map[byte]struct{}, len(alphabet))
	for i := 0; i < len(alphabet); i++ {
		if _, ok := seen[alphabet[i]]; ok {
			return false
		}
		if strings.IndexByte(urlSafeSymbols, alphabet[i]) < 0 {
			return false
		}
		seen[alphabet[i]] = struct{}{}
	}

	return true
}
