// Package schema checks synthesized resources against the CloudFormation
// schemas of the resource types a blueprint emits.
package schema

import (
	"fmt"
	"math"
	"slices"
	"sort"
	"strings"

	eksblueprints "github.com/lex00/eks-blueprints-go"
)

// SchemaError is a single schema violation.
type SchemaError struct {
	Resource string `json:"resource"`
	Property string `json:"property"`
	Message  string `json:"message"`
}

func (e SchemaError) String() string {
	return fmt.Sprintf("%s.%s: %s", e.Resource, e.Property, e.Message)
}

// Options configures schema validation.
type Options struct {
	// Strict enables strict validation mode
	Strict bool
}

// Result contains schema validation results.
type Result struct {
	Valid    bool
	Errors   []SchemaError
	Warnings []SchemaError
}

// ValidateTemplate validates a CloudFormation template against known schemas.
func ValidateTemplate(template *eksblueprints.Template, opts Options) (*Result, error) {
	result := &Result{Valid: true}

	names := make([]string, 0, len(template.Resources))
	for name := range template.Resources {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		errors, warnings := validateResource(name, template.Resources[name], opts)
		result.Errors = append(result.Errors, errors...)
		result.Warnings = append(result.Warnings, warnings...)
	}

	if len(result.Errors) > 0 {
		result.Valid = false
	}

	return result, nil
}

// validateResource validates a single resource.
func validateResource(name string, resource eksblueprints.ResourceDef, opts Options) ([]SchemaError, []SchemaError) {
	var errors, warnings []SchemaError

	if !isValidResourceType(resource.Type) {
		errors = append(errors, SchemaError{
			Resource: name,
			Property: "Type",
			Message:  fmt.Sprintf("invalid resource type format: %s", resource.Type),
		})
	}

	schema, ok := resourceSchemas[resource.Type]
	if !ok {
		// Types outside the table are not errors.
		warnings = append(warnings, SchemaError{
			Resource: name,
			Property: "Type",
			Message:  fmt.Sprintf("unknown resource type: %s (schema not available for validation)", resource.Type),
		})
		return errors, warnings
	}

	for _, required := range schema.Required {
		if _, exists := resource.Properties[required]; !exists {
			errors = append(errors, SchemaError{
				Resource: name,
				Property: required,
				Message:  fmt.Sprintf("missing required property: %s", required),
			})
		}
	}

	props := make([]string, 0, len(resource.Properties))
	for propName := range resource.Properties {
		props = append(props, propName)
	}
	sort.Strings(props)

	for _, propName := range props {
		propValue := resource.Properties[propName]
		propSchema, ok := schema.Properties[propName]
		if !ok {
			if opts.Strict {
				warnings = append(warnings, SchemaError{
					Resource: name,
					Property: propName,
					Message:  fmt.Sprintf("unknown property: %s", propName),
				})
			}
			continue
		}

		errors = append(errors, checkProperty(name, propName, propValue, propSchema)...)
	}

	return errors, warnings
}

// isValidResourceType checks the AWS::Service::Resource shape of a type.
// Custom resources are accepted as is.
func isValidResourceType(resourceType string) bool {
	if strings.HasPrefix(resourceType, "Custom::") {
		return true
	}
	parts := strings.Split(resourceType, "::")
	return len(parts) == 3 && parts[0] == "AWS" && parts[1] != "" && parts[2] != ""
}

// checkProperty checks a property value against its schema. Intrinsic values
// resolve at deploy time and pass every check.
func checkProperty(resource, property string, value any, schema PropertySchema) []SchemaError {
	fail := func(format string, args ...any) []SchemaError {
		return []SchemaError{{Resource: resource, Property: property, Message: fmt.Sprintf(format, args...)}}
	}

	if isIntrinsic(value) {
		return nil
	}
	if !hasType(value, schema.Type) {
		return fail("expected type %s", schema.Type)
	}

	if s, ok := value.(string); ok && len(schema.AllowedValues) > 0 && !slices.Contains(schema.AllowedValues, s) {
		return fail("value %q not in allowed values: %v", s, schema.AllowedValues)
	}

	if items, ok := value.([]any); ok && schema.Items != "" {
		for i, item := range items {
			if !isIntrinsic(item) && !hasType(item, schema.Items) {
				return fail("item %d: expected type %s", i, schema.Items)
			}
		}
	}
	return nil
}

// isIntrinsic reports whether value is a single-key Ref or Fn:: object.
func isIntrinsic(value any) bool {
	m, ok := value.(map[string]any)
	if !ok || len(m) != 1 {
		return false
	}
	for key := range m {
		return key == "Ref" || strings.HasPrefix(key, "Fn::")
	}
	return false
}

// hasType reports whether a literal value matches a property type. Integers
// may arrive as float64 after a JSON round trip and must be whole.
func hasType(value any, t PropertyType) bool {
	switch t {
	case TypeString:
		_, ok := value.(string)
		return ok
	case TypeInteger:
		switch n := value.(type) {
		case int, int32, int64:
			return true
		case float64:
			return n == math.Trunc(n)
		}
		return false
	case TypeBoolean:
		_, ok := value.(bool)
		return ok
	case TypeList:
		_, ok := value.([]any)
		return ok
	case TypeMap:
		_, ok := value.(map[string]any)
		return ok
	}
	return true
}

// PropertyType is the value type of a resource property.
type PropertyType string

const (
	TypeString  PropertyType = "String"
	TypeInteger PropertyType = "Integer"
	TypeBoolean PropertyType = "Boolean"
	TypeList    PropertyType = "List"
	TypeMap     PropertyType = "Map"
	TypeJSON    PropertyType = "Json"
)

// ResourceSchema lists the required and known properties of a resource type.
type ResourceSchema struct {
	Required   []string
	Properties map[string]PropertySchema
}

// PropertySchema describes one property. Items, when set, is the type of
// every element of a List.
type PropertySchema struct {
	Type          PropertyType
	Items         PropertyType
	AllowedValues []string
}
