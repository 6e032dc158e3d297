package artifact

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/jsonschema-go/jsonschema"
)

const artifactSchemaJSON = `{
  "type": "object",
  "required": ["agent", "results", "problem_id", "start_time"],
  "properties": {
    "agent": {"type": "string", "minLength": 1},
    "results": {
      "type": "object",
      "additionalProperties": {"type": ["boolean", "number", "string", "null"]}
    },
    "problem_id": {"type": "string", "minLength": 1},
    "start_time": {"type": "number"},
    "trace": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "role": {"type": "string"},
          "content": {"type": "string"}
        }
      }
    }
  }
}`

var (
	schemaOnce     sync.Once
	schemaResolved *jsonschema.Resolved
	schemaErr      error
)

func resolvedSchema() (*jsonschema.Resolved, error) {
	schemaOnce.Do(func() {
		var s jsonschema.Schema
		if err := json.Unmarshal([]byte(artifactSchemaJSON), &s); err != nil {
			schemaErr = fmt.Errorf("failed to parse artifact schema: %w", err)
			return
		}
		schemaResolved, schemaErr = s.Resolve(nil)
		if schemaErr != nil {
			schemaErr = fmt.Errorf("failed to resolve artifact schema: %w", schemaErr)
		}
	})
	return schemaResolved, schemaErr
}

// ValidationResult is the outcome of checking one artifact file.
type ValidationResult struct {
	File string `json:"file"`
	Err  error  `json:"-"`
}

// Valid reports whether the file passed validation.
func (v ValidationResult) Valid() bool {
	return v.Err == nil
}

// Validate checks that data is an artifact with the fields this tool reads.
func Validate(data []byte) error {
	schema, err := resolvedSchema()
	if err != nil {
		return err
	}

	var instance any
	if err := json.Unmarshal(data, &instance); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}

	return schema.Validate(instance)
}

// ValidateDir validates every *.json file in dir.
func ValidateDir(dir string) ([]ValidationResult, error) {
	files, err := Files(dir)
	if err != nil {
		return nil, err
	}

	results := make([]ValidationResult, 0, len(files))
	for _, f := range files {
		res := ValidationResult{File: filepath.Base(f)}
		data, err := os.ReadFile(f)
		if err != nil {
			res.Err = err
		} else {
			res.Err = Validate(data)
		}
		results = append(results, res)
	}
	return results, nil
}
