package storage

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

const schemaBaseURL = "https://ojt.schemas.local/"

const userSchema = `{
  "type": "object",
  "required": ["id", "name", "position", "department", "supervisor", "targetHours"],
  "properties": {
    "id":          {"type": "string"},
    "name":        {"type": "string"},
    "position":    {"type": "string"},
    "department":  {"type": "string"},
    "supervisor":  {"type": "string"},
    "targetHours": {"type": "number"}
  }
}`

const entriesSchema = `{
  "type": "array",
  "items": {
    "type": "object",
    "required": ["id", "date", "startTime", "endTime", "duration", "task", "category"],
    "properties": {
      "id":         {"type": "string"},
      "date":       {"type": "string", "pattern": "^[0-9]{4}-[0-9]{2}-[0-9]{2}$"},
      "startTime":  {"type": "string", "pattern": "^([01][0-9]|2[0-3]):[0-5][0-9]$"},
      "endTime":    {"type": "string", "pattern": "^([01][0-9]|2[0-3]):[0-5][0-9]$"},
      "duration":   {"type": "integer", "minimum": 0},
      "task":       {"type": "string"},
      "category":   {"type": "string"},
      "notes":      {"type": "string"},
      "source":     {"type": "string"},
      "externalId": {"type": "string"}
    }
  }
}`

var (
	userDocSchema    = mustCompile("user", userSchema)
	entriesDocSchema = mustCompile("entries", entriesSchema)
)

// mustCompile compiles one of the embedded schemas. They are constants, so a
// failure is a programming error.
func mustCompile(name, src string) *jsonschema.Schema {
	c := jsonschema.NewCompiler()
	c.Draft = jsonschema.Draft2020
	url := fmt.Sprintf("%s%s.schema.json", schemaBaseURL, name)
	if err := c.AddResource(url, strings.NewReader(src)); err != nil {
		panic(fmt.Sprintf("schema %s load failed: %v", name, err))
	}
	s, err := c.Compile(url)
	if err != nil {
		panic(fmt.Sprintf("schema %s compile failed: %v", name, err))
	}
	return s
}

// decodeDocument validates data against schema and unmarshals it into v.
func decodeDocument(data []byte, schema *jsonschema.Schema, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	if err := schema.Validate(raw); err != nil {
		return fmt.Errorf("schema validation failed: %w", err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decoding document: %w", err)
	}
	return nil
}
