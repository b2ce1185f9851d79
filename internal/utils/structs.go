package utils

import "reflect"

// ColumnTag is the struct tag the store layer maps to column names.
var ColumnTag = "db"

// StructTagValues returns the column names tagged on input's exported fields,
// in declaration order.
func StructTagValues(input any) []string {
	v := structValue(input)
	t := v.Type()

	columns := make([]string, 0, v.NumField())
	for i := 0; i < v.NumField(); i++ {
		if t.Field(i).PkgPath != "" {
			continue
		}
		tag := t.Field(i).Tag.Get(ColumnTag)
		if tag == "" || tag == "-" {
			continue
		}
		columns = append(columns, tag)
	}

	return columns
}

// StructToMap maps column names to field values for use with squirrel's
// SetMap. Columns listed in skip are left out, which keeps generated keys
// and server-assigned timestamps out of UPDATE statements.
func StructToMap(input any, skip ...string) map[string]any {
	v := structValue(input)
	t := v.Type()

	skipped := make(map[string]struct{}, len(skip))
	for _, s := range skip {
		skipped[s] = struct{}{}
	}

	result := make(map[string]any, v.NumField())
	for i := 0; i < v.NumField(); i++ {
		if t.Field(i).PkgPath != "" {
			continue
		}
		tag := t.Field(i).Tag.Get(ColumnTag)
		if tag == "" || tag == "-" {
			continue
		}
		if _, ok := skipped[tag]; ok {
			continue
		}
		result[tag] = v.Field(i).Interface()
	}

	return result
}

func structValue(input any) reflect.Value {
	v := reflect.ValueOf(input)
	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		panic("input must be a struct or a pointer to a struct")
	}
	return v
}
