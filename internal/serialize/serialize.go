// Package serialize converts resource structs into CloudFormation property maps
// and builds CloudFormation-safe logical IDs.
package serialize

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
	"unicode"
)

// Properties converts a resource struct into its CloudFormation property map.
// Resource structs name fields after the CloudFormation property, so the Go
// field name is used unless a json tag overrides it (policy documents).
// Unset fields are left out; see omitted.
func Properties(v any) (map[string]any, error) {
	val := reflect.ValueOf(v)
	for val.Kind() == reflect.Ptr {
		if val.IsNil() {
			return nil, nil
		}
		val = val.Elem()
	}
	if val.Kind() != reflect.Struct {
		return nil, nil
	}

	result := make(map[string]any)
	typ := val.Type()
	for i := 0; i < typ.NumField(); i++ {
		field := typ.Field(i)
		if !field.IsExported() {
			continue
		}
		name := propertyName(field)
		fv := val.Field(i)
		if name == "" || omitted(fv) {
			continue
		}

		serialized, err := serializeValue(fv)
		if err != nil {
			return nil, fmt.Errorf("property %s: %w", name, err)
		}
		if serialized != nil {
			result[name] = serialized
		}
	}
	return result, nil
}

// propertyName returns the property name of a field, or "" for fields
// tagged json:"-".
func propertyName(field reflect.StructField) string {
	name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
	switch name {
	case "-":
		return ""
	case "":
		return field.Name
	}
	return name
}

// omitted reports whether a field is left out of the property map: nil
// pointers and interfaces, empty slices and maps, and zero scalars. Structs
// are always emitted unless they report IsZero themselves.
func omitted(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Slice, reflect.Map:
		return v.Len() == 0
	case reflect.Struct:
		z, ok := v.Interface().(interface{ IsZero() bool })
		return ok && z.IsZero()
	}
	return v.IsZero()
}

// serializeValue converts a field value into plain JSON data. Intrinsics and
// other json.Marshaler values keep their own wire format.
func serializeValue(v reflect.Value) (any, error) {
	for v.Kind() == reflect.Ptr || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return nil, nil
		}
		if m, ok := v.Interface().(json.Marshaler); ok {
			return marshalPlain(m)
		}
		v = v.Elem()
	}
	if m, ok := v.Interface().(json.Marshaler); ok {
		return marshalPlain(m)
	}

	switch v.Kind() {
	case reflect.Struct:
		return Properties(v.Interface())

	case reflect.Slice, reflect.Array:
		if v.Len() == 0 {
			return nil, nil
		}
		items := make([]any, v.Len())
		for i := range items {
			item, err := serializeValue(v.Index(i))
			if err != nil {
				return nil, err
			}
			items[i] = item
		}
		return items, nil

	case reflect.Map:
		if v.Len() == 0 {
			return nil, nil
		}
		entries := make(map[string]any, v.Len())
		iter := v.MapRange()
		for iter.Next() {
			entry, err := serializeValue(iter.Value())
			if err != nil {
				return nil, err
			}
			entries[fmt.Sprint(iter.Key().Interface())] = entry
		}
		return entries, nil

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int(), nil

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return v.Uint(), nil

	case reflect.Float32, reflect.Float64:
		return v.Float(), nil

	case reflect.String:
		return v.String(), nil

	case reflect.Bool:
		return v.Bool(), nil
	}
	return nil, fmt.Errorf("unsupported kind %s", v.Kind())
}

// marshalPlain round-trips a json.Marshaler through JSON so the result holds
// only maps, slices and scalars.
func marshalPlain(m json.Marshaler) (any, error) {
	data, err := m.MarshalJSON()
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// LogicalID joins construct path segments into a CloudFormation logical ID.
// Each segment is PascalCased and every non-alphanumeric rune is dropped.
// e.g., ("eks-blueprints-cdk-vpc", "PublicSubnet1") -> "EksBlueprintsCdkVpcPublicSubnet1"
func LogicalID(parts ...string) string {
	var result strings.Builder
	for _, part := range parts {
		result.WriteString(ToPascalCase(part))
	}
	return result.String()
}

// ToPascalCase converts kebab, snake or dotted names to PascalCase.
// e.g., "eks-managed" -> "EksManaged", "team_application" -> "TeamApplication"
func ToPascalCase(s string) string {
	var result strings.Builder
	capitalizeNext := true

	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			capitalizeNext = true
			continue
		}
		if r > unicode.MaxASCII {
			continue
		}
		if capitalizeNext {
			result.WriteRune(unicode.ToUpper(r))
			capitalizeNext = false
		} else {
			result.WriteRune(r)
		}
	}

	return result.String()
}
