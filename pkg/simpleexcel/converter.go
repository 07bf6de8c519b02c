package simpleexcel

import (
	"fmt"
	"reflect"
)

// ConvertToDynamicData flattens a struct (or slice of structs) into maps keyed
// by field name. Map fields are expanded into "Field_key" entries and
// unexported fields are skipped.
func ConvertToDynamicData(data interface{}) (interface{}, error) {
	val := reflect.ValueOf(data)
	if val.Kind() == reflect.Ptr {
		if val.IsNil() {
			return nil, fmt.Errorf("expected struct or slice, got nil pointer")
		}
		val = val.Elem()
	}

	switch val.Kind() {
	case reflect.Struct:
		return flattenStruct(val), nil
	case reflect.Slice:
		return flattenSlice(val)
	default:
		return nil, fmt.Errorf("expected struct or slice, got %v", val.Kind())
	}
}

func flattenStruct(val reflect.Value) map[string]interface{} {
	result := make(map[string]interface{})
	typ := val.Type()
	for i := 0; i < val.NumField(); i++ {
		fieldType := typ.Field(i)
		if fieldType.PkgPath != "" {
			continue
		}
		field := val.Field(i)
		if field.Kind() != reflect.Map {
			result[fieldType.Name] = field.Interface()
			continue
		}
		iter := field.MapRange()
		for iter.Next() {
			result[fmt.Sprintf("%s_%v", fieldType.Name, iter.Key().Interface())] = iter.Value().Interface()
		}
	}
	return result
}

func flattenSlice(val reflect.Value) ([]map[string]interface{}, error) {
	result := make([]map[string]interface{}, val.Len())
	for i := range result {
		elem := val.Index(i)
		if elem.Kind() == reflect.Ptr {
			elem = elem.Elem()
		}
		if elem.Kind() != reflect.Struct {
			return nil, fmt.Errorf("expected slice of structs, got slice of %v", elem.Kind())
		}
		result[i] = flattenStruct(elem)
	}
	return result, nil
}
