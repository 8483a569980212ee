package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// LoadFile reads a deployment configuration file into a flat dotted-key
// mapping. The format is chosen by extension: .env files are parsed as
// key=value pairs, .json and .yaml/.yml documents are flattened so nested
// sections become dotted keys (sqlalchemy: {url: ...} -> "sqlalchemy.url").
func LoadFile(path string) (map[string]any, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".env":
		pairs, err := godotenv.Read(path)
		if err != nil {
			return nil, fmt.Errorf("reading env file %s: %w", path, err)
		}
		values := make(map[string]any, len(pairs))
		for k, v := range pairs {
			values[k] = v
		}
		return values, nil

	case ".json":
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
		var doc map[string]any
		if err := json.Unmarshal(raw, &doc); err != nil {
			return nil, fmt.Errorf("parsing JSON config %s: %w", path, err)
		}
		return Flatten(doc), nil

	case ".yaml", ".yml":
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
		var doc map[string]any
		if err := yaml.Unmarshal(raw, &doc); err != nil {
			return nil, fmt.Errorf("parsing YAML config %s: %w", path, err)
		}
		return Flatten(doc), nil

	default:
		return nil, fmt.Errorf("unsupported config file format %q", filepath.Ext(path))
	}
}

// Flatten converts a nested document into a flat mapping with dotted keys.
// Scalar values and lists are kept as-is.
func Flatten(doc map[string]any) map[string]any {
	out := make(map[string]any, len(doc))
	flattenInto("", doc, out)
	return out
}

func flattenInto(prefix string, doc map[string]any, out map[string]any) {
	for key, value := range doc {
		full := key
		if prefix != "" {
			full = prefix + "." + key
		}
		switch nested := value.(type) {
		case map[string]any:
			flattenInto(full, nested, out)
		case map[any]any:
			// Older YAML decoders produce interface-keyed maps.
			converted := make(map[string]any, len(nested))
			for k, v := range nested {
				converted[fmt.Sprintf("%v", k)] = v
			}
			flattenInto(full, converted, out)
		default:
			out[full] = value
		}
	}
}
