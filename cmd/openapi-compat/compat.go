package main

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

var supportedMethods = map[string]struct{}{
	"get":     {},
	"put":     {},
	"post":    {},
	"delete":  {},
	"patch":   {},
	"head":    {},
	"options": {},
}

// requiredOperation is an operation the bloglist client depends on, with the response
// codes it handles.
type requiredOperation struct {
	Method    string
	Path      string
	Responses []string
}

var contractOperations = []requiredOperation{
	{"get", "/blogs", []string{"200"}},
	{"post", "/blogs", []string{"201", "400", "401"}},
	{"get", "/blogs/{id}", []string{"200", "404"}},
	{"put", "/blogs/{id}", []string{"200", "400", "404"}},
	{"delete", "/blogs/{id}", []string{"204", "401", "404"}},
	{"post", "/blogs/{id}/comments", []string{"201", "400", "404"}},
	{"get", "/users", []string{"200"}},
	{"post", "/users", []string{"200", "400"}},
	{"get", "/users/{id}", []string{"200", "404"}},
	{"post", "/login", []string{"200", "401"}},
}

type operation struct {
	Responses map[string]struct{}
}

type parsedSpec struct {
	Paths map[string]map[string]operation
}

func loadSpec(path string) (parsedSpec, error) {
	// #nosec G304: path comes from CLI flags in a dev tool
	raw, err := os.ReadFile(path)
	if err != nil {
		return parsedSpec{}, err
	}
	return parseSpec(raw)
}

func parseSpec(raw []byte) (parsedSpec, error) {
	doc := map[string]interface{}{}
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return parsedSpec{}, err
	}

	pathsRaw, ok := doc["paths"]
	if !ok {
		return parsedSpec{}, errors.New("missing top-level paths field")
	}

	pathsMap, ok := toMap(pathsRaw)
	if !ok {
		return parsedSpec{}, errors.New("paths is not an object")
	}

	spec := parsedSpec{Paths: make(map[string]map[string]operation)}

	for pathKey, pathEntry := range pathsMap {
		pathOpsRaw, ok := toMap(pathEntry)
		if !ok {
			continue
		}

		ops := make(map[string]operation)
		for methodKey, methodEntry := range pathOpsRaw {
			methodLower := strings.ToLower(strings.TrimSpace(methodKey))
			if _, supported := supportedMethods[methodLower]; !supported {
				continue
			}

			methodMap, ok := toMap(methodEntry)
			if !ok {
				continue
			}

			responseSet := make(map[string]struct{})
			if responsesRaw, exists := methodMap["responses"]; exists {
				if responsesMap, ok := toMap(responsesRaw); ok {
					for code := range responsesMap {
						normalized := strings.ToLower(strings.TrimSpace(code))
						if normalized != "" {
							responseSet[normalized] = struct{}{}
						}
					}
				}
			}

			ops[methodLower] = operation{Responses: responseSet}
		}

		if len(ops) > 0 {
			spec.Paths[pathKey] = ops
		}
	}

	return spec, nil
}

// toMap accepts both map shapes yaml.v3 produces. Non-string keys such as unquoted
// status codes are stringified.
func toMap(v interface{}) (map[string]interface{}, bool) {
	switch t := v.(type) {
	case map[string]interface{}:
		return t, true
	case map[interface{}]interface{}:
		out := make(map[string]interface{}, len(t))
		for k, val := range t {
			out[fmt.Sprint(k)] = val
		}
		return out, true
	default:
		return nil, false
	}
}

func compare(base, revision parsedSpec) []string {
	var issues []string

	for path, baseOps := range base.Paths {
		revOps, ok := revision.Paths[path]
		if !ok {
			issues = append(issues, fmt.Sprintf("removed path: %s", path))
			continue
		}

		for method, baseOp := range baseOps {
			revOp, ok := revOps[method]
			if !ok {
				issues = append(issues, fmt.Sprintf("removed operation: %s %s", strings.ToUpper(method), path))
				continue
			}

			for responseCode := range baseOp.Responses {
				if _, ok := revOp.Responses[responseCode]; !ok {
					issues = append(issues, fmt.Sprintf(
						"removed response code: %s %s -> %s",
						strings.ToUpper(method), path, strings.ToUpper(responseCode),
					))
				}
			}
		}
	}

	sort.Strings(issues)
	return issues
}

func checkRequired(spec parsedSpec, required []requiredOperation) []string {
	var issues []string
	for _, req := range required {
		op, ok := spec.Paths[req.Path][req.Method]
		if !ok {
			issues = append(issues, fmt.Sprintf("missing contract operation: %s %s", strings.ToUpper(req.Method), req.Path))
			continue
		}
		for _, code := range req.Responses {
			if _, ok := op.Responses[code]; !ok {
				issues = append(issues, fmt.Sprintf(
					"missing contract response: %s %s -> %s", strings.ToUpper(req.Method), req.Path, code))
			}
		}
	}
	sort.Strings(issues)
	return issues
}
