// Staticlint запускает набор статических анализаторов проекта.
//
// Состав:
//   - стандартные анализаторы golang.org/x/tools/go/analysis/passes;
//   - все анализаторы класса SA из staticcheck.io и выборочные из simple и stylecheck;
//   - go-critic;
//   - bodyclose, проверяющий закрытие тела http ответа;
//   - exitmain, запрещающий прямой вызов os.Exit в функции main пакета main.
//
// Запуск: staticlint ./...
package main

import (
	gocritic "github.com/go-critic/go-critic/checkers/analyzer"
	"github.com/timakin/bodyclose/passes/bodyclose"
	"golang.org/x/tools/go/analysis"
	"golang.org/x/tools/go/analysis/multichecker"
	"golang.org/x/tools/go/analysis/passes/assign"
	"golang.org/x/tools/go/analysis/passes/atomic"
	"golang.org/x/tools/go/analysis/passes/bools"
	"golang.org/x/tools/go/analysis/passes/composite"
	"golang.org/x/tools/go/analysis/passes/copylock"
	"golang.org/x/tools/go/analysis/passes/errorsas"
	"golang.org/x/tools/go/analysis/passes/httpresponse"
	"golang.org/x/tools/go/analysis/passes/loopclosure"
	"golang.org/x/tools/go/analysis/passes/lostcancel"
	"golang.org/x/tools/go/analysis/passes/nilfunc"
	"golang.org/x/tools/go/analysis/passes/printf"
	"golang.org/x/tools/go/analysis/passes/shadow"
	"golang.org/x/tools/go/analysis/passes/stdmethods"
	"golang.org/x/tools/go/analysis/passes/structtag"
	"golang.org/x/tools/go/analysis/passes/tests"
	"golang.org/x/tools/go/analysis/passes/unmarshal"
	"golang.org/x/tools/go/analysis/passes/unreachable"
	"golang.org/x/tools/go/analysis/passes/unusedresult"
	"honnef.co/go/tools/simple"
	"honnef.co/go/tools/staticcheck"
	"honnef.co/go/tools/stylecheck"

	"github.com/nestjam/linkshort/internal/staticlint"
)

var extraChecks = map[string]bool{
	"S1005":  true, // лишний пустой идентификатор
	"S1011":  true, // цикл вместо append
	"ST1005": true, // формат текста ошибок
	"ST1019": true, // повторный импорт пакета
}

func main() {
	multichecker.Main(analyzers()...)
}

func analyzers() []*analysis.Analyzer {
	checks := []*analysis.Analyzer{
		assign.Analyzer,
		atomic.Analyzer,
		bools.Analyzer,
		composite.Analyzer,
		copylock.Analyzer,
		errorsas.Analyzer,
		httpresponse.Analyzer,
		loopclosure.Analyzer,
		lostcancel.Analyzer,
		nilfunc.Analyzer,
		printf.Analyzer,
		shadow.Analyzer,
		stdmethods.Analyzer,
		structtag.Analyzer,
		tests.Analyzer,
		unmarshal.Analyzer,
		unreachable.Analyzer,
		unusedresult.Analyzer,
		gocritic.Analyzer,
		bodyclose.Analyzer,
		staticlint.ExitMainAnalyzer,
	}

	for _, a := range staticcheck.Analyzers {
		checks = append(checks, a.Analyzer)
	}

	for _, a := range simple.Analyzers {
		if extraChecks[a.Analyzer.Name] {
			checks = append(checks, a.Analyzer)
		}
	}

	for _, a := range stylecheck.Analyzers {
		if extraChecks[a.Analyzer.Name] {
			checks = append(checks, a.Analyzer)
		}
	}

	return checks
}
