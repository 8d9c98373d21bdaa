package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

const (
	schemaBaseURL       = "https://todoapi.local/schemas/"
	activitySchemaURL   = schemaBaseURL + "activity.schema.json"
	activitiesSchemaURL = schemaBaseURL + "activities.schema.json"
)

const activitySchema = `{
	"$schema": "http://json-schema.org/draft-07/schema#",
	"type": "object",
	"properties": {
		"id":          {"type": ["integer", "null"]},
		"title":       {"type": ["string", "null"]},
		"description": {"type": ["string", "null"]},
		"dueDate":     {"type": ["string", "null"]},
		"done":        {"type": ["boolean", "null"]}
	}
}`

const activitiesSchema = `{
	"$schema": "http://json-schema.org/draft-07/schema#",
	"type": ["array", "null"],
	"items": {"$ref": "activity.schema.json"}
}`

var (
	schemaOnce     sync.Once
	schemaErr      error
	activityRule   *jsonschema.Schema
	activitiesRule *jsonschema.Schema
)

func compileSchemas() {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft7
	if err := compiler.AddResource(activitySchemaURL, strings.NewReader(activitySchema)); err != nil {
		schemaErr = err
		return
	}
	if err := compiler.AddResource(activitiesSchemaURL, strings.NewReader(activitiesSchema)); err != nil {
		schemaErr = err
		return
	}
	if activityRule, schemaErr = compiler.Compile(activitySchemaURL); schemaErr != nil {
		return
	}
	activitiesRule, schemaErr = compiler.Compile(activitiesSchemaURL)
}

// ValidateActivity reports whether data is a single activity-shaped JSON object.
func ValidateActivity(data []byte) error {
	return validate(data, func() *jsonschema.Schema { return activityRule })
}

// ValidateActivities reports whether data is a JSON array of activity-shaped objects (or null).
func ValidateActivities(data []byte) error {
	return validate(data, func() *jsonschema.Schema { return activitiesRule })
}

func validate(data []byte, rule func() *jsonschema.Schema) error {
	schemaOnce.Do(compileSchemas)
	if schemaErr != nil {
		return fmt.Errorf("compile schema: %w", schemaErr)
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var doc interface{}
	if err := dec.Decode(&doc); err != nil {
		return fmt.Errorf("invalid json: %w", err)
	}
	if dec.More() {
		return fmt.Errorf("invalid json: trailing data")
	}
	return rule().Validate(doc)
}
