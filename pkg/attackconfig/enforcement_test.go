package attackconfig

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

var baseFieldNames = map[string]bool{
	"Timeout":     true,
	"UserAgent":   true,
	"MaxPayloads": true,
	"MaxParams":   true,
	"Concurrency": true,
}

// Packages whose Config is not a detector config.
var enforcementAllowlist = map[string]bool{
	"attackconfig": true,
	"config":       true,
	"httpclient":   true,
}

// Detector packages that must embed Base.
var mustEmbed = []string{"sqli", "xss"}

func repoRoot(t *testing.T) string {
	t.Helper()
	dir, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			t.Fatal("go.mod not found")
		}
		dir = parent
	}
}

// configShape reports whether the Config struct declared in path embeds
// Base and how many Base field names it redeclares.
func configShape(t *testing.T, path string) (pkg string, embeds bool, overlap int, found bool) {
	t.Helper()
	f, err := parser.ParseFile(token.NewFileSet(), path, nil, 0)
	if err != nil {
		return "", false, 0, false
	}
	pkg = f.Name.Name
	ast.Inspect(f, func(n ast.Node) bool {
		ts, ok := n.(*ast.TypeSpec)
		if !ok || ts.Name.Name != "Config" {
			return true
		}
		st, ok := ts.Type.(*ast.StructType)
		if !ok || st.Fields == nil {
			return false
		}
		found = true
		for _, field := range st.Fields.List {
			if len(field.Names) == 0 {
				if sel, ok := field.Type.(*ast.SelectorExpr); ok && sel.Sel.Name == "Base" {
					embeds = true
				}
			}
			for _, ident := range field.Names {
				if baseFieldNames[ident.Name] {
					overlap++
				}
			}
		}
		return false
	})
	return pkg, embeds, overlap, found
}

// TestNoRedundantBaseFields keeps detector configs from re-declaring the
// shared fields instead of embedding Base.
func TestNoRedundantBaseFields(t *testing.T) {
	t.Parallel()

	root := repoRoot(t)
	embedded := map[string]bool{}
	var violations []string

	err := filepath.Walk(filepath.Join(root, "pkg"), func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || !strings.HasSuffix(path, ".go") || strings.HasSuffix(path, "_test.go") {
			return nil
		}
		pkg, embeds, overlap, found := configShape(t, path)
		if !found {
			return nil
		}
		if embeds {
			embedded[pkg] = true
		}
		if !enforcementAllowlist[pkg] && !embeds && overlap >= 3 {
			rel, _ := filepath.Rel(root, path)
			violations = append(violations, fmt.Sprintf("%s: Config has %d base fields without embedding attackconfig.Base", rel, overlap))
		}
		return nil
	})
	if err != nil {
		t.Fatalf("walk failed: %v", err)
	}

	for _, v := range violations {
		t.Errorf("%s", v)
	}
	for _, pkg := range mustEmbed {
		if !embedded[pkg] {
			t.Errorf("%s.Config must embed attackconfig.Base", pkg)
		}
	}
}
