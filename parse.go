package avro

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"gopkg.in/yaml.v3"
)

// documentSchema is the structure every schema document must satisfy.
// Field types are checked after structural validation so the error can name the field.
const documentSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["type", "name", "fields"],
  "additionalProperties": false,
  "properties": {
    "type": {"const": "record"},
    "name": {"type": "string", "pattern": "^[A-Za-z_][A-Za-z0-9_]*$"},
    "namespace": {"type": "string", "pattern": "^([A-Za-z_][A-Za-z0-9_]*(\\.[A-Za-z_][A-Za-z0-9_]*)*)?$"},
    "doc": {"type": "string"},
    "fields": {
      "type": "array",
      "minItems": 1,
      "items": {
        "type": "object",
        "required": ["name", "type"],
        "additionalProperties": false,
        "properties": {
          "name": {"type": "string", "pattern": "^[A-Za-z_][A-Za-z0-9_]*$"},
          "type": {"type": "string"},
          "doc": {"type": "string"}
        }
      }
    }
  }
}`

const documentSchemaURL = "avro-record-schema.json"

var (
	documentValidatorOnce sync.Once
	documentValidator     *jsonschema.Schema
	documentValidatorErr  error
)

// compiledDocumentSchema compiles documentSchema once per process.
func compiledDocumentSchema() (*jsonschema.Schema, error) {
	documentValidatorOnce.Do(func() {
		doc, err := jsonschema.UnmarshalJSON(strings.NewReader(documentSchema))
		if err != nil {
			documentValidatorErr = fmt.Errorf("document schema: %w", err)
			return
		}
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource(documentSchemaURL, doc); err != nil {
			documentValidatorErr = fmt.Errorf("document schema: %w", err)
			return
		}
		documentValidator, documentValidatorErr = compiler.Compile(documentSchemaURL)
	})
	return documentValidator, documentValidatorErr
}

// Parse parses a JSON schema document declaring one record.
//
//	{"type": "record", "name": "Pojo", "fields": [{"name": "text", "type": "string"}]}
//
// Parsing is strict: unknown keys, repeated object keys, missing keys, an empty
// field list, duplicate field names and unsupported field types all fail with a
// *ParseError.
func Parse(text []byte) (*Schema, error) {
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(text))
	if err != nil {
		return nil, &ParseError{Message: "invalid JSON document", Cause: err}
	}
	if err := rejectDuplicateKeys(text); err != nil {
		return nil, err
	}
	return parseDocument(doc)
}

// rejectDuplicateKeys fails on the first object key repeated within one object.
func rejectDuplicateKeys(text []byte) error {
	return walkKeys(json.NewDecoder(bytes.NewReader(text)), "")
}

func walkKeys(dec *json.Decoder, path string) error {
	tok, err := dec.Token()
	if err != nil {
		return &ParseError{Message: "invalid JSON document", Cause: err}
	}
	delim, ok := tok.(json.Delim)
	if !ok {
		return nil
	}

	switch delim {
	case '{':
		seen := make(map[string]bool)
		for dec.More() {
			tok, err := dec.Token()
			if err != nil {
				return &ParseError{Message: "invalid JSON document", Cause: err}
			}
			key, _ := tok.(string)
			if seen[key] {
				return newParseError(path+"/"+key, "", "duplicate key")
			}
			seen[key] = true
			if err := walkKeys(dec, path+"/"+key); err != nil {
				return err
			}
		}
	case '[':
		for i := 0; dec.More(); i++ {
			if err := walkKeys(dec, path+"/"+strconv.Itoa(i)); err != nil {
				return err
			}
		}
	}

	if _, err := dec.Token(); err != nil {
		return &ParseError{Message: "invalid JSON document", Cause: err}
	}
	return nil
}

// ParseString is Parse for a string document.
func ParseString(text string) (*Schema, error) {
	return Parse([]byte(text))
}

// ParseYAML parses the same record document written as YAML.
func ParseYAML(text []byte) (*Schema, error) {
	var raw any
	if err := yaml.Unmarshal(text, &raw); err != nil {
		return nil, &ParseError{Message: "invalid YAML document", Cause: err}
	}
	// Normalize through JSON so validation sees the same value shapes as Parse.
	normalized, err := json.Marshal(raw)
	if err != nil {
		return nil, &ParseError{Message: "unsupported YAML value", Cause: err}
	}
	return Parse(normalized)
}

// MustParse is like ParseString but panics on error.
// Use it for package-level schema variables.
func MustParse(text string) *Schema {
	s, err := ParseString(text)
	if err != nil {
		panic(err)
	}
	return s
}

func parseDocument(doc any) (*Schema, error) {
	validator, err := compiledDocumentSchema()
	if err != nil {
		return nil, &ParseError{Message: "validator unavailable", Cause: err}
	}

	if err := validator.Validate(doc); err != nil {
		var verr *jsonschema.ValidationError
		if errors.As(err, &verr) {
			return nil, validationParseError(verr)
		}
		return nil, &ParseError{Message: "invalid document", Cause: err}
	}

	// Shapes below are guaranteed by documentSchema.
	obj := doc.(map[string]any)
	name := obj["name"].(string)
	namespace, _ := obj["namespace"].(string)
	recordDoc, _ := obj["doc"].(string)

	rawFields := obj["fields"].([]any)
	fields := make([]Field, 0, len(rawFields))
	seen := make(map[string]bool, len(rawFields))

	for _, rf := range rawFields {
		fobj := rf.(map[string]any)
		fname := fobj["name"].(string)
		ftype := Type(fobj["type"].(string))
		fdoc, _ := fobj["doc"].(string)

		if seen[fname] {
			return nil, newParseError("name", fname, "duplicate field name")
		}
		seen[fname] = true

		if !IsValidType(ftype) {
			return nil, newParseError("type", fname, fmt.Sprintf("unsupported type %q", ftype))
		}

		fields = append(fields, Field{Name: fname, Type: ftype, Doc: fdoc})
	}

	s := newSchema(name, namespace, recordDoc, fields)
	emitSchemaParsed(context.Background(), s.FullName(), s.Len())
	return s, nil
}

// validationParseError reduces a validation error tree to its first leaf.
func validationParseError(verr *jsonschema.ValidationError) error {
	leaf := verr
	for len(leaf.Causes) > 0 {
		leaf = leaf.Causes[0]
	}

	key := "/" + strings.Join(leaf.InstanceLocation, "/")
	return &ParseError{
		Key:     key,
		Message: strings.TrimSpace(leaf.Error()),
	}
}
