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
			if !strings.Contains(importPath, "didathing/internal/modules/") {
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

// violatesLayerRule reports whether a file of module/layer may not import
// importPath. Modules talk to each other only through an outbound adapter
// that calls the other module's inbound port with its dto types; every other
// layer stays inside its own module.
func violatesLayerRule(module, layer, importPath string) bool {
	sameModule := strings.Contains(importPath, "/internal/modules/"+module+"/")
	if !sameModule {
		if layer != "adapter/out" {
			return true
		}
		return !isPortIn(importPath) && !isDTO(importPath)
	}

	switch layer {
	case "adapter/in":
		return !isPortIn(importPath) && !isDTO(importPath)
	case "usecase":
		return strings.Contains(importPath, "/adapter/")
	case "service":
		return strings.Contains(importPath, "/adapter/") || strings.Contains(importPath, "/usecase/")
	case "port/in":
		return !isDTO(importPath)
	case "port/out":
		return !isDomain(importPath)
	case "domain":
		return !isDomain(importPath)
	case "dto":
		return true
	default:
		return false
	}
}

func isDomain(path string) bool {
	return strings.Contains(path, "/domain/") || strings.HasSuffix(path, "/domain")
}

func TestLayerRuleCases(t *testing.T) {
	t.Parallel()
	const base = "didathing/internal/modules/"
	cases := []struct {
		module, layer, importPath string
		forbidden                 bool
	}{
		{"backup", "domain", base + "tracker/domain", true},
		{"backup", "domain", base + "backup/domain", false},
		{"backup", "dto", base + "backup/domain", true},
		{"backup", "service", base + "tracker/port/in", true},
		{"backup", "usecase", base + "preferences/dto", true},
		{"backup", "adapter/out", base + "preferences/port/in", false},
		{"backup", "adapter/out", base + "preferences/dto", false},
		{"backup", "adapter/out", base + "preferences/domain", true},
		{"backup", "adapter/out", base + "tracker/adapter/out", true},
		{"tracker", "adapter/in", base + "tracker/port/in", false},
		{"tracker", "adapter/in", base + "tracker/service", true},
		{"tracker", "usecase", base + "tracker/service", false},
		{"tracker", "service", base + "tracker/usecase", true},
		{"tracker", "port/out", base + "tracker/domain", false},
		{"tracker", "port/in", base + "tracker/domain", true},
	}
	for _, tc := range cases {
		if got := violatesLayerRule(tc.module, tc.layer, tc.importPath); got != tc.forbidden {
			t.Fatalf("%s/%s importing %s: forbidden=%t, want %t", tc.module, tc.layer, tc.importPath, got, tc.forbidden)
		}
	}
}
