package main

import (
	"bytes"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

const documentSchemaURL = "https://flowchart.local/schemas/diagram.json"

// documentSchemaJSON describes the import document. Unknown keys are allowed
// so that files written by newer versions still load.
const documentSchemaJSON = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["nodes", "connections"],
  "properties": {
    "nodes": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["id", "x", "y"],
        "properties": {
          "id": {"$ref": "#/$defs/id"},
          "type": {"enum": ["process", "decision", "start", "input"]},
          "text": {"type": "string"},
          "x": {"type": "number"},
          "y": {"type": "number"}
        }
      }
    },
    "connections": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["id", "sourceId", "targetId"],
        "properties": {
          "id": {"$ref": "#/$defs/id"},
          "sourceId": {"$ref": "#/$defs/id"},
          "targetId": {"$ref": "#/$defs/id"},
          "sourcePosition": {"$ref": "#/$defs/side"},
          "targetPosition": {"$ref": "#/$defs/side"},
          "label": {"type": "string"}
        }
      }
    },
    "nextNodeId": {"type": "integer", "minimum": 1},
    "nextConnectionId": {"type": "integer", "minimum": 1}
  },
  "$defs": {
    "id": {
      "anyOf": [
        {"type": "string", "minLength": 1},
        {"type": "integer", "minimum": 0}
      ]
    },
    "side": {"enum": ["top", "right", "bottom", "left"]}
  }
}`

var (
	schemaOnce     sync.Once
	documentSchema *jsonschema.Schema
	schemaErr      error
)

func compiledDocumentSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		c := jsonschema.NewCompiler()
		doc, err := jsonschema.UnmarshalJSON(strings.NewReader(documentSchemaJSON))
		if err != nil {
			schemaErr = fmt.Errorf("unmarshal document schema: %w", err)
			return
		}
		if err := c.AddResource(documentSchemaURL, doc); err != nil {
			schemaErr = fmt.Errorf("add document schema resource: %w", err)
			return
		}
		documentSchema, schemaErr = c.Compile(documentSchemaURL)
		if schemaErr != nil {
			schemaErr = fmt.Errorf("compile document schema: %w", schemaErr)
		}
	})
	return documentSchema, schemaErr
}

// ValidateDocument checks raw bytes against the document schema. Every
// failure wraps ErrMalformedDocument.
func ValidateDocument(data []byte) error {
	sch, err := compiledDocumentSchema()
	if err != nil {
		return err
	}
	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedDocument, err)
	}
	if err := sch.Validate(inst); err != nil {
		return fmt.Errorf("%w: %s", ErrMalformedDocument, strings.Join(schemaViolations(err), "; "))
	}
	return nil
}

func schemaViolations(err error) []string {
	verr, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return []string{err.Error()}
	}
	return collectViolations(verr)
}

func collectViolations(verr *jsonschema.ValidationError) []string {
	if len(verr.Causes) == 0 {
		loc := "/" + strings.Join(verr.InstanceLocation, "/")
		return []string{fmt.Sprintf("%s: %s", loc, verr.Error())}
	}
	var out []string
	for _, cause := range verr.Causes {
		out = append(out, collectViolations(cause)...)
	}
	return out
}
