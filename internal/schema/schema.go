// Package schema checks generated documents against the widget's JSON schema.
package schema

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/tartampluch/go-timeline/internal/config"
)

//go:embed timeline.schema.json
var timelineSchema []byte

const schemaURL = "timeline.schema.json"

// ErrInvalid matches every *ValidationError with errors.Is.
var ErrInvalid = errors.New(config.ErrSchemaInvalid)

// Issue is a single schema violation.
type Issue struct {
	Location string
	Message  string
}

// ValidationError lists every violation found in a document.
type ValidationError struct {
	Issues []Issue
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		location := issue.Location
		if location == "" {
			location = "#"
		}
		parts = append(parts, fmt.Sprintf("%s: %s", location, issue.Message))
	}
	return config.ErrSchemaInvalid + ": " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalid
}

var compiled = sync.OnceValues(func() (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	if err := compiler.AddResource(schemaURL, bytes.NewReader(timelineSchema)); err != nil {
		return nil, err
	}
	return compiler.Compile(schemaURL)
})

// Validate marshals v and checks it against the timeline schema.
func Validate(v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("%s: %w", config.ErrJSONEncode, err)
	}
	return ValidateJSON(raw)
}

// ValidateJSON checks an encoded document against the timeline schema.
func ValidateJSON(raw []byte) error {
	sch, err := compiled()
	if err != nil {
		return fmt.Errorf("%s: %w", config.ErrSchemaCompile, err)
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var instance any
	if err := dec.Decode(&instance); err != nil {
		return fmt.Errorf("%s: %w", config.ErrSchemaInvalid, err)
	}

	if err := sch.Validate(instance); err != nil {
		var verr *jsonschema.ValidationError
		if errors.As(err, &verr) {
			return &ValidationError{Issues: collectIssues(verr)}
		}
		return fmt.Errorf("%s: %w", config.ErrSchemaInvalid, err)
	}
	return nil
}

// collectIssues flattens the leaves of a validation error tree.
func collectIssues(err *jsonschema.ValidationError) []Issue {
	var issues []Issue
	var walk func(*jsonschema.ValidationError)
	walk = func(node *jsonschema.ValidationError) {
		if len(node.Causes) == 0 {
			issues = append(issues, Issue{
				Location: strings.TrimSpace(node.InstanceLocation),
				Message:  strings.TrimSpace(node.Message),
			})
			return
		}
		for _, cause := range node.Causes {
			walk(cause)
		}
	}
	walk(err)
	return issues
}
