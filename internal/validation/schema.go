package validation

import (
	"embed"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

// Schema names for the provider payloads
const (
	SchemaAnalysis   = "analysis"
	SchemaConclusion = "conclusion"
	SchemaNarrative  = "narrative"
)

//go:embed schemas/*.json
var schemaFS embed.FS

var (
	compiled   = make(map[string]*gojsonschema.Schema)
	compiledMu sync.Mutex
)

// SchemaText returns the raw JSON schema so it can be quoted in prompts
func SchemaText(name string) (string, error) {
	data, err := schemaFS.ReadFile("schemas/" + name + ".json")
	if err != nil {
		return "", fmt.Errorf("unknown schema %q: %w", name, err)
	}
	return string(data), nil
}

// LoadSchema compiles the named embedded schema, caching the result
func LoadSchema(name string) (*gojsonschema.Schema, error) {
	compiledMu.Lock()
	defer compiledMu.Unlock()

	if schema, ok := compiled[name]; ok {
		return schema, nil
	}

	text, err := SchemaText(name)
	if err != nil {
		return nil, err
	}
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(text))
	if err != nil {
		return nil, fmt.Errorf("failed to load schema: %w", err)
	}
	compiled[name] = schema
	return schema, nil
}

// Validate validates a JSON string against a schema
func Validate(payload string, schema *gojsonschema.Schema) error {
	documentLoader := gojsonschema.NewStringLoader(payload)
	result, err := schema.Validate(documentLoader)
	if err != nil {
		return fmt.Errorf("failed to validate: %w", err)
	}

	if !result.Valid() {
		var errors []string
		for _, desc := range result.Errors() {
			errors = append(errors, desc.String())
		}
		return fmt.Errorf("validation failed: %v", errors)
	}

	return nil
}

// CleanJSON strips markdown code fences that models like to wrap JSON in
func CleanJSON(raw string) string {
	cleaned := strings.TrimSpace(raw)
	if strings.HasPrefix(cleaned, "```json") {
		cleaned = strings.TrimPrefix(cleaned, "```json")
		cleaned = strings.TrimSuffix(cleaned, "```")
		cleaned = strings.TrimSpace(cleaned)
	} else if strings.HasPrefix(cleaned, "```") {
		cleaned = strings.TrimPrefix(cleaned, "```")
		cleaned = strings.TrimSuffix(cleaned, "```")
		cleaned = strings.TrimSpace(cleaned)
	}
	return cleaned
}

// DecodePayload cleans, validates and unmarshals a provider response into out
func DecodePayload(raw string, schemaName string, out interface{}) error {
	payload := CleanJSON(raw)
	if payload == "" {
		return fmt.Errorf("empty payload")
	}

	schema, err := LoadSchema(schemaName)
	if err != nil {
		return err
	}

	if err := Validate(payload, schema); err != nil {
		return err
	}

	if err := json.Unmarshal([]byte(payload), out); err != nil {
		preview := payload
		if len(preview) > 200 {
			preview = preview[:200] + "..."
		}
		return fmt.Errorf("failed to parse JSON: %w (preview: %s)", err, preview)
	}
	return nil
}
