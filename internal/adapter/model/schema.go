package model

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schemas/*.schema.json
var schemaFS embed.FS

const (
	vectorizerSchema = "schemas/vectorizer.schema.json"
	classifierSchema = "schemas/classifier.schema.json"
)

var compiled struct {
	once    sync.Once
	schemas map[string]*jsonschema.Schema
	err     error
}

func compileSchemas() (map[string]*jsonschema.Schema, error) {
	compiled.once.Do(func() {
		compiler := jsonschema.NewCompiler()
		names := []string{vectorizerSchema, classifierSchema}
		for _, name := range names {
			data, err := schemaFS.ReadFile(name)
			if err != nil {
				compiled.err = err
				return
			}
			if err := compiler.AddResource(name, bytes.NewReader(data)); err != nil {
				compiled.err = fmt.Errorf("schema %s: %w", name, err)
				return
			}
		}
		compiled.schemas = make(map[string]*jsonschema.Schema, len(names))
		for _, name := range names {
			s, err := compiler.Compile(name)
			if err != nil {
				compiled.err = fmt.Errorf("schema %s: %w", name, err)
				return
			}
			compiled.schemas[name] = s
		}
	})
	return compiled.schemas, compiled.err
}

// validateArtifact checks raw artifact JSON against the named schema
func validateArtifact(schemaName string, data []byte) error {
	schemas, err := compileSchemas()
	if err != nil {
		return err
	}

	var doc interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	if err := schemas[schemaName].Validate(doc); err != nil {
		return fmt.Errorf("incompatible artifact: %w", err)
	}
	return nil
}
