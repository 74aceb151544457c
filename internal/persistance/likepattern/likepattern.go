// Package likepattern строит условия SQL LIKE, в которых шаблон сравнивается буквально.
package likepattern

import (
	"strings"

	sq "github.com/Masterminds/squirrel"
)

const escapeChar = `\`

var escaper = strings.NewReplacer(
	escapeChar, escapeChar+escapeChar,
	"%", escapeChar+"%",
	"_", escapeChar+"_",
)

// Escape экранирует символы подстановки LIKE.
func Escape(pattern string) string {
	return escaper.Replace(pattern)
}

// Contains возвращает условие "column содержит pattern".
func Contains(column, pattern string) sq.Sqlizer {
	return sq.Expr(column+` LIKE ? ESCAPE '`+escapeChar+`'`, "%"+Escape(pattern)+"%")
}
