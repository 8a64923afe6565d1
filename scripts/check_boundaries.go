package main

import (
	"fmt"
	"go/parser"
	"go/token"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const moduleRoot = "metamarket"

// domainLibraries are the third-party packages domain code may use.
var domainLibraries = []string{
	"github.com/mr-tron/base58",
}

type violation struct {
	File   string
	Line   int
	Import string
	Rule   string
}

// layerRule lists what one layer of a context may import besides the
// standard library. Layers without a rule are unrestricted inside their own
// context.
type layerRule struct {
	allowed   func(contextPrefix string) []string
	libraries []string
}

var layerRules = map[string]layerRule{
	"domain": {
		allowed:   func(p string) []string { return []string{p + "/domain"} },
		libraries: domainLibraries,
	},
	"ports": {
		allowed: func(p string) []string {
			return []string{p + "/domain", moduleRoot + "/contracts"}
		},
	},
	"application": {
		allowed: func(p string) []string {
			return []string{p + "/application", p + "/domain", p + "/ports", moduleRoot + "/contracts"}
		},
	},
}

func main() {
	violations := collectViolations("contexts")
	if len(violations) == 0 {
		fmt.Println("boundary checks passed")
		return
	}

	sort.Slice(violations, func(i, j int) bool {
		a, b := violations[i], violations[j]
		if a.File != b.File {
			return a.File < b.File
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		return a.Import < b.Import
	})

	fmt.Println("boundary violations found:")
	for _, v := range violations {
		fmt.Printf("- %s:%d imports %q (%s)\n", v.File, v.Line, v.Import, v.Rule)
	}
	os.Exit(1)
}

func collectViolations(root string) []violation {
	var violations []violation
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || !strings.HasSuffix(path, ".go") || strings.HasSuffix(path, "_test.go") {
			return nil
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return nil
		}
		parts := strings.Split(filepath.ToSlash(rel), "/")
		if len(parts) < 3 {
			return nil
		}
		contextPrefix := fmt.Sprintf("%s/contexts/%s/%s", moduleRoot, parts[0], parts[1])
		layer := ""
		if len(parts) > 3 {
			layer = parts[2]
		}

		fset := token.NewFileSet()
		file, parseErr := parser.ParseFile(fset, path, nil, parser.ImportsOnly)
		if parseErr != nil {
			violations = append(violations, violation{File: filepath.ToSlash(path), Line: 1, Rule: "file must parse"})
			return nil
		}
		for _, imp := range file.Imports {
			importPath := strings.Trim(imp.Path.Value, "\"")
			line := fset.Position(imp.Pos()).Line
			for _, rule := range checkImport(layer, contextPrefix, importPath) {
				violations = append(violations, violation{
					File:   filepath.ToSlash(path),
					Line:   line,
					Import: importPath,
					Rule:   rule,
				})
			}
		}
		return nil
	})
	return violations
}

// checkImport returns every rule importPath breaks for a file in layer.
func checkImport(layer string, contextPrefix string, importPath string) []string {
	var broken []string
	if hasPrefix(importPath, moduleRoot+"/contexts") && !hasPrefix(importPath, contextPrefix) {
		broken = append(broken, "cross-module imports are forbidden")
	}

	rule, restricted := layerRules[layer]
	if !restricted {
		return broken
	}
	if strings.Contains(importPath, "/adapters/") || strings.HasSuffix(importPath, "/adapters") {
		broken = append(broken, layer+" must not import adapters")
	}
	if hasPrefix(importPath, moduleRoot+"/internal") || hasPrefix(importPath, moduleRoot+"/cmd") {
		broken = append(broken, layer+" must not import runtime infrastructure")
	}
	allowed := append(rule.allowed(contextPrefix), rule.libraries...)
	if !isStdlib(importPath) && !isAllowed(importPath, allowed) {
		broken = append(broken, layer+" import is outside explicit allowlist")
	}
	return broken
}

func hasPrefix(path string, prefix string) bool {
	return path == prefix || strings.HasPrefix(path, prefix+"/")
}

func isAllowed(importPath string, allowedPrefixes []string) bool {
	for _, p := range allowedPrefixes {
		if hasPrefix(importPath, p) {
			return true
		}
	}
	return false
}

func isStdlib(importPath string) bool {
	if hasPrefix(importPath, moduleRoot) {
		return false
	}
	first, _, _ := strings.Cut(importPath, "/")
	return !strings.Contains(first, ".")
}
