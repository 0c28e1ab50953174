package architecture_test

import (
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestHexagonalLayerImports(t *testing.T) {
	t.Parallel()
	fset := token.NewFileSet()
	root := filepath.Join("..", "modules")
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".go") || strings.HasSuffix(path, "_test.go") {
			return nil
		}
		slash := filepath.ToSlash(path)
		module := moduleName(slash)
		layer := detectLayer(slash)
		if module == "" || layer == "" {
			return nil
		}
		node, parseErr := parser.ParseFile(fset, path, nil, parser.ImportsOnly)
		if parseErr != nil {
			return parseErr
		}
		for _, imp := range node.Imports {
			importPath := strings.Trim(imp.Path.Value, `"`)
			if !strings.Contains(importPath, "trackboard/internal/modules/") {
				continue
			}
			if violatesLayerRule(module, layer, importPath) {
				t.Fatalf("forbidden import in %s (%s): %s", slash, layer, importPath)
			}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("walk modules: %v", err)
	}
}

func moduleName(path string) string {
	parts := strings.Split(path, "/")
	for i := 0; i < len(parts)-1; i++ {
		if parts[i] == "modules" && i+1 < len(parts) {
			return parts[i+1]
		}
	}
	return ""
}

func detectLayer(path string) string {
	for _, layer := range []string{"adapter/in", "adapter/out", "usecase", "service", "domain", "port/in", "port/out", "dto"} {
		if strings.Contains(path, "/"+layer+"/") {
			return layer
		}
	}
	return ""
}

func isPortIn(path string) bool {
	return strings.Contains(path, "/port/in/") || strings.HasSuffix(path, "/port/in")
}

func isDTO(path string) bool {
	return strings.Contains(path, "/dto/") || strings.HasSuffix(path, "/dto")
}

// domainDeps lists the only cross-module imports a domain package may make.
// Stats scores sessions with the session domain's points table.
var domainDeps = map[string][]string{
	"stats": {"session"},
}

func TestDomainCrossModuleImports(t *testing.T) {
	t.Parallel()
	walkImports(t, filepath.Join("..", "modules"), func(path, importPath string) {
		module := moduleName(path)
		if detectLayer(path) != "domain" || !strings.Contains(importPath, "trackboard/internal/modules/") {
			return
		}
		if target := moduleName(importPath); target != module && !domainMayImport(module, importPath) {
			t.Errorf("domain of %s imports %s", module, importPath)
		}
	})
}

func TestUIAndPlatformStayOutsideModuleInternals(t *testing.T) {
	t.Parallel()
	walkImports(t, filepath.Join("..", "ui"), func(path, importPath string) {
		if !strings.Contains(importPath, "trackboard/internal/modules/") {
			return
		}
		if !isPortIn(importPath) && !isDTO(importPath) && !strings.HasSuffix(importPath, "/domain") {
			t.Errorf("ui package %s imports %s", path, importPath)
		}
	})
	walkImports(t, filepath.Join("..", "platform"), func(path, importPath string) {
		if strings.Contains(importPath, "trackboard/internal/modules/") || strings.Contains(importPath, "trackboard/internal/ui") {
			t.Errorf("platform package %s imports %s", path, importPath)
		}
	})
}

func TestDomainMayImport(t *testing.T) {
	t.Parallel()
	cases := []struct {
		module, importPath string
		want               bool
	}{
		{"stats", "trackboard/internal/modules/session/domain", true},
		{"stats", "trackboard/internal/modules/catalog/domain", false},
		{"session", "trackboard/internal/modules/stats/domain", false},
		{"stats", "trackboard/internal/modules/session/dto", false},
	}
	for _, tc := range cases {
		if got := domainMayImport(tc.module, tc.importPath); got != tc.want {
			t.Errorf("domainMayImport(%q, %q) = %v, want %v", tc.module, tc.importPath, got, tc.want)
		}
	}
}

func domainMayImport(module, importPath string) bool {
	for _, dep := range domainDeps[module] {
		if strings.HasSuffix(importPath, "/internal/modules/"+dep+"/domain") {
			return true
		}
	}
	return false
}

// walkImports calls fn for every import of every non-test Go file under root.
func walkImports(t *testing.T, root string, fn func(path, importPath string)) {
	t.Helper()
	fset := token.NewFileSet()
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".go") || strings.HasSuffix(path, "_test.go") {
			return nil
		}
		node, parseErr := parser.ParseFile(fset, path, nil, parser.ImportsOnly)
		if parseErr != nil {
			return parseErr
		}
		for _, imp := range node.Imports {
			fn(filepath.ToSlash(path), strings.Trim(imp.Path.Value, `"`))
		}
		return nil
	})
	if err != nil {
		t.Fatalf("walk %s: %v", root, err)
	}
}

func violatesLayerRule(module, layer, importPath string) bool {
	sameModule := strings.Contains(importPath, "/internal/modules/"+module+"/")
	if !sameModule {
		if strings.Contains(importPath, "/service/") || strings.Contains(importPath, "/adapter/") || strings.Contains(importPath, "/usecase/") {
			return true
		}
		if isPortIn(importPath) || isDTO(importPath) {
			return false
		}
	}

	switch layer {
	case "adapter/in":
		return !isPortIn(importPath) && !isDTO(importPath)
	case "usecase":
		return strings.Contains(importPath, "/adapter/")
	case "service":
		return strings.Contains(importPath, "/adapter/") || strings.Contains(importPath, "/usecase/")
	case "domain":
		return strings.Contains(importPath, "/adapter/") || strings.Contains(importPath, "/usecase/") || strings.Contains(importPath, "/service/")
	default:
		return false
	}
}
