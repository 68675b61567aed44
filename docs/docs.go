// Package docs registers the bloglist OpenAPI document with swag so the Swagger UI
// handler can serve it.
package docs

import (
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/swaggo/swag"
	"gopkg.in/yaml.v3"
)

//go:embed swagger.yaml
var swaggerYAML []byte

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:3003",
	BasePath:         "/api",
	Schemes:          []string{"http", "https"},
	Title:            "Bloglist API",
	Description:      "Users publish blog links, log in for a bearer token, and comment on and like each other's blogs.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  mustJSON(swaggerYAML),
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

// YAML returns the embedded document as written.
func YAML() []byte {
	out := make([]byte, len(swaggerYAML))
	copy(out, swaggerYAML)
	return out
}

// ToJSON converts a YAML OpenAPI document to JSON.
func ToJSON(raw []byte) ([]byte, error) {
	var doc any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	return json.Marshal(normalize(doc))
}

func mustJSON(raw []byte) string {
	out, err := ToJSON(raw)
	if err != nil {
		panic(fmt.Sprintf("docs: invalid embedded swagger.yaml: %v", err))
	}
	return string(out)
}

// normalize turns YAML maps with non-string keys (e.g. unquoted status codes) into
// JSON-encodable maps.
func normalize(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, val := range t {
			t[k] = normalize(val)
		}
		return t
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[fmt.Sprint(k)] = normalize(val)
		}
		return out
	case []any:
		for i, val := range t {
			t[i] = normalize(val)
		}
		return t
	default:
		return v
	}
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
