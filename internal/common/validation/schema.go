// Package validation wraps JSON schema checks for external payloads.
package validation

import (
	"fmt"

	"github.com/xeipuuv/gojsonschema"
)

// ValidateJSON validates a raw JSON document against a schema document.
// Both are JSON strings; the error lists every violation.
func ValidateJSON(schema, document string) error {
	schemaLoader := gojsonschema.NewStringLoader(schema)
	documentLoader := gojsonschema.NewStringLoader(document)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return fmt.Errorf("validation error: %w", err)
	}

	if !result.Valid() {
		errs := make([]string, len(result.Errors()))
		for i, desc := range result.Errors() {
			errs[i] = desc.String()
		}
		return fmt.Errorf("document validation failed: %v", errs)
	}

	return nil
}
