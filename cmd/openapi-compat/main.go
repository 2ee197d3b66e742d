// Package main checks that a revised API document keeps every path, method and
// response code of a base document. The base defaults to the built-in AuraChat docs.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"sort"
	"strings"

	"aurachat/docs"

	"gopkg.in/yaml.v3"
)

var httpMethods = []string{"get", "put", "post", "delete", "patch", "head", "options"}

// apiSurface maps path -> method -> set of documented response codes.
type apiSurface map[string]map[string]map[string]bool

type document struct {
	Paths map[string]map[string]yaml.Node `yaml:"paths"`
}

type operationDoc struct {
	Responses map[string]yaml.Node `yaml:"responses"`
}

func main() {
	basePath := flag.String("base", "", "base swagger document (defaults to the built-in API docs)")
	revisionPath := flag.String("revision", "", "revised swagger document (YAML or JSON)")
	flag.Parse()

	if strings.TrimSpace(*revisionPath) == "" {
		fmt.Fprintln(os.Stderr, "usage: openapi-compat [-base <path>] -revision <path>")
		os.Exit(2)
	}

	baseRaw := []byte(docs.SwaggerInfo.ReadDoc())
	if *basePath != "" {
		var err error
		if baseRaw, err = readFile(*basePath); err != nil {
			fail("read base document", err)
		}
	}
	base, err := parseSurface(baseRaw)
	if err != nil {
		fail("parse base document", err)
	}

	revisionRaw, err := readFile(*revisionPath)
	if err != nil {
		fail("read revision document", err)
	}
	revision, err := parseSurface(revisionRaw)
	if err != nil {
		fail("parse revision document", err)
	}

	if issues := breakingChanges(base, revision); len(issues) > 0 {
		fmt.Fprintln(os.Stderr, "backward compatibility check failed:")
		for _, issue := range issues {
			fmt.Fprintf(os.Stderr, "- %s\n", issue)
		}
		os.Exit(1)
	}
	fmt.Println("api compatibility check passed")
}

func fail(what string, err error) {
	fmt.Fprintf(os.Stderr, "%s: %v\n", what, err)
	os.Exit(1)
}

func readFile(path string) ([]byte, error) {
	// #nosec G304: path comes from CLI flags in a dev tool
	return os.ReadFile(path)
}

// parseSurface accepts YAML or JSON, since JSON documents are valid YAML.
func parseSurface(raw []byte) (apiSurface, error) {
	var doc document
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	if doc.Paths == nil {
		return nil, errors.New("document has no paths object")
	}

	surface := make(apiSurface, len(doc.Paths))
	for path, item := range doc.Paths {
		for key, node := range item {
			method := strings.ToLower(strings.TrimSpace(key))
			if !isHTTPMethod(method) {
				continue
			}
			var op operationDoc
			if err := node.Decode(&op); err != nil {
				return nil, fmt.Errorf("%s %s: %w", strings.ToUpper(method), path, err)
			}
			codes := make(map[string]bool, len(op.Responses))
			for code := range op.Responses {
				codes[strings.ToLower(strings.TrimSpace(code))] = true
			}
			if surface[path] == nil {
				surface[path] = map[string]map[string]bool{}
			}
			surface[path][method] = codes
		}
	}
	return surface, nil
}

func isHTTPMethod(s string) bool {
	for _, m := range httpMethods {
		if s == m {
			return true
		}
	}
	return false
}

// breakingChanges lists paths, operations and response codes present in base
// but missing from revision. Additions are allowed.
func breakingChanges(base, revision apiSurface) []string {
	var issues []string
	for path, ops := range base {
		revOps, ok := revision[path]
		if !ok {
			issues = append(issues, "removed path: "+path)
			continue
		}
		for method, codes := range ops {
			revCodes, ok := revOps[method]
			if !ok {
				issues = append(issues, fmt.Sprintf("removed operation: %s %s", strings.ToUpper(method), path))
				continue
			}
			for code := range codes {
				if !revCodes[code] {
					issues = append(issues, fmt.Sprintf("removed response code: %s %s -> %s",
						strings.ToUpper(method), path, strings.ToUpper(code)))
				}
			}
		}
	}
	sort.Strings(issues)
	return issues
}
