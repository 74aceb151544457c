// Package staticlint содержит собственные анализаторы для multichecker.
package staticlint

import (
	"go/ast"
	"go/types"

	"golang.org/x/tools/go/analysis"
	"golang.org/x/tools/go/analysis/passes/inspect"
	"golang.org/x/tools/go/ast/inspector"
	"golang.org/x/tools/go/types/typeutil"
)

const exitInMainMessage = "direct call of os.Exit in main function"

// ExitMainAnalyzer запрещает прямой вызов os.Exit в функции main пакета main.
var ExitMainAnalyzer = &analysis.Analyzer{
	Name:     "exitmain",
	Doc:      "reports direct os.Exit calls in main function of main package",
	Requires: []*analysis.Analyzer{inspect.Analyzer},
	Run:      runExitMain,
}

func runExitMain(pass *analysis.Pass) (any, error) {
	if pass.Pkg.Name() != "main" {
		return nil, nil
	}

	insp := pass.ResultOf[inspect.Analyzer].(*inspector.Inspector)
	filter := []ast.Node{(*ast.CallExpr)(nil)}

	insp.WithStack(filter, func(n ast.Node, push bool, stack []ast.Node) bool {
		if !push || !insideMainFunc(stack) {
			return true
		}

		call := n.(*ast.CallExpr)
		if isOSExit(pass.TypesInfo, call) {
			pass.Reportf(call.Pos(), exitInMainMessage)
		}
		return true
	})

	return nil, nil
}

func insideMainFunc(stack []ast.Node) bool {
	for i := len(stack) - 1; i >= 0; i-- {
		if decl, ok := stack[i].(*ast.FuncDecl); ok {
			return decl.Recv == nil && decl.Name.Name == "main"
		}
	}
	return false
}

func isOSExit(info *types.Info, call *ast.CallExpr) bool {
	fn, ok := typeutil.Callee(info, call).(*types.Func)
	if !ok || fn.Pkg() == nil {
		return false
	}
	return fn.Pkg().Path() == "os" && fn.Name() == "Exit"
}
