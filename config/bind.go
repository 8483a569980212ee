package config

import (
	"fmt"
	"reflect"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
)

// Bind decodes store values into a struct using `config` tags naming dotted
// keys, with `default` tags as fallbacks, then validates the result with
// `validate` tags.
//
//	type SQLOptions struct {
//	    URL     string `config:"sqlalchemy.url" validate:"required"`
//	    Driver  string `config:"sqlalchemy.driver" default:"sqlite"`
//	    MaxOpen int    `config:"sqlalchemy.pool_size" default:"100"`
//	}
func (s *Store) Bind(target any) error {
	value := reflect.ValueOf(target)
	if value.Kind() != reflect.Ptr || value.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("bind target must be a pointer to struct, got %T", target)
	}

	snapshot := s.Snapshot()
	if err := bindFields(snapshot, value.Elem()); err != nil {
		return err
	}

	if err := validator.New().Struct(target); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}
	return nil
}

// BindView decodes a view the same way Bind does, with tags naming the
// suffix keys inside the view.
func BindView(v View, target any) error {
	value := reflect.ValueOf(target)
	if value.Kind() != reflect.Ptr || value.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("bind target must be a pointer to struct, got %T", target)
	}

	if err := bindFields(v, value.Elem()); err != nil {
		return err
	}

	if err := validator.New().Struct(target); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}
	return nil
}

func bindFields(snapshot map[string]any, structValue reflect.Value) error {
	structType := structValue.Type()

	for i := 0; i < structValue.NumField(); i++ {
		field := structValue.Field(i)
		fieldType := structType.Field(i)

		if !field.CanSet() {
			continue
		}

		// Nested and embedded structs are bound recursively with flat keys.
		if field.Kind() == reflect.Struct && field.Type() != reflect.TypeOf(time.Time{}) {
			if err := bindFields(snapshot, field); err != nil {
				return fmt.Errorf("binding nested struct %s: %w", fieldType.Name, err)
			}
			continue
		}

		key := fieldType.Tag.Get("config")
		if key == "" {
			continue
		}

		value, ok := snapshot[key]
		if !ok || value == nil {
			if def := fieldType.Tag.Get("default"); def != "" {
				if err := setFromString(field, def); err != nil {
					return fmt.Errorf("default for field %s: %w", fieldType.Name, err)
				}
			}
			continue
		}

		if err := setFieldValue(field, value); err != nil {
			return fmt.Errorf("setting field %s from key %q: %w", fieldType.Name, key, err)
		}
	}

	return nil
}

func setFieldValue(field reflect.Value, value any) error {
	rv := reflect.ValueOf(value)

	if rv.Type().AssignableTo(field.Type()) {
		field.Set(rv)
		return nil
	}
	if rv.Type().ConvertibleTo(field.Type()) && rv.Kind() != reflect.String {
		field.Set(rv.Convert(field.Type()))
		return nil
	}
	if str, ok := value.(string); ok {
		return setFromString(field, str)
	}
	return fmt.Errorf("cannot assign %T to %s", value, field.Type())
}

func setFromString(field reflect.Value, value string) error {
	if value == "" {
		return nil
	}

	switch field.Kind() {
	case reflect.String:
		field.SetString(value)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if field.Type() == reflect.TypeOf(time.Duration(0)) {
			duration, err := time.ParseDuration(value)
			if err != nil {
				return err
			}
			field.SetInt(int64(duration))
			return nil
		}
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return err
		}
		field.SetInt(n)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := strconv.ParseUint(value, 10, 64)
		if err != nil {
			return err
		}
		field.SetUint(n)
	case reflect.Bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return err
		}
		field.SetBool(b)
	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return err
		}
		field.SetFloat(f)
	default:
		return fmt.Errorf("unsupported field kind %s", field.Kind())
	}

	return nil
}
