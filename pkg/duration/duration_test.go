package duration_test

import (
	"go/ast"
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/webprobe/webprobe/pkg/duration"
)

func TestProbeTimeoutsArePositive(t *testing.T) {
	t.Parallel()

	for name, d := range map[string]interface{ Seconds() float64 }{
		"HeaderProbe":    duration.HeaderProbe,
		"BaselineProbe":  duration.BaselineProbe,
		"InjectionProbe": duration.InjectionProbe,
		"LandingPage":    duration.LandingPage,
		"CSPProbe":       duration.CSPProbe,
		"TLSHandshake":   duration.TLSHandshake,
		"DefaultProbe":   duration.DefaultProbe,
	} {
		require.Positive(t, d.Seconds(), name)
	}
}

// TestNoHardcodedTimeouts ensures Timeout fields in pkg/ and cmd/ reference
// duration.* constants instead of literal `N * time.Second` expressions.
func TestNoHardcodedTimeouts(t *testing.T) {
	root := findProjectRoot(t)

	var violations []string
	for _, dir := range []string{"pkg", "cmd"} {
		dirPath := filepath.Join(root, dir)
		if _, err := os.Stat(dirPath); os.IsNotExist(err) {
			continue
		}
		_ = filepath.Walk(dirPath, func(path string, info os.FileInfo, err error) error {
			if err != nil || info.IsDir() || !strings.HasSuffix(path, ".go") {
				return nil
			}
			if strings.HasSuffix(path, "_test.go") || strings.HasSuffix(path, "duration.go") {
				return nil
			}

			fset := token.NewFileSet()
			node, err := parser.ParseFile(fset, path, nil, 0)
			if err != nil {
				return nil
			}
			ast.Inspect(node, func(n ast.Node) bool {
				kv, ok := n.(*ast.KeyValueExpr)
				if !ok {
					return true
				}
				if ident, ok := kv.Key.(*ast.Ident); ok && ident.Name == "Timeout" && isHardcodedDuration(kv.Value) {
					pos := fset.Position(kv.Value.Pos())
					rel, _ := filepath.Rel(root, pos.Filename)
					violations = append(violations, rel+":"+strconv.Itoa(pos.Line))
				}
				return true
			})
			return nil
		})
	}

	require.Empty(t, violations, "hardcoded Timeout values, use duration.* instead")
}

// isHardcodedDuration matches "30 * time.Second" style expressions.
func isHardcodedDuration(expr ast.Expr) bool {
	bin, ok := expr.(*ast.BinaryExpr)
	if !ok {
		return false
	}
	if _, ok := bin.X.(*ast.BasicLit); !ok {
		return false
	}
	sel, ok := bin.Y.(*ast.SelectorExpr)
	if !ok {
		return false
	}
	ident, ok := sel.X.(*ast.Ident)
	return ok && ident.Name == "time"
}

func findProjectRoot(t *testing.T) string {
	t.Helper()

	dir, err := os.Getwd()
	require.NoError(t, err)
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			t.Fatalf("could not find project root (go.mod)")
		}
		dir = parent
	}
}
