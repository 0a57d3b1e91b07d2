// Copyright 2025 zScan Plugin Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");

// pkg/config/validate.go
package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ErrInvalidConfig is wrapped by every validation failure.
var ErrInvalidConfig = errors.New("invalid configuration")

// FieldError describes one rejected key.
type FieldError struct {
	Key   string // e.g. "server.url"
	Rule  string // validator tag, e.g. "required"
	Param string
}

func (f FieldError) String() string {
	switch f.Rule {
	case "required":
		return f.Key + " is required"
	case "url":
		return f.Key + " must be an absolute URL"
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", f.Key, f.Param)
	case "min", "gt":
		return fmt.Sprintf("%s must be %s %s", f.Key, map[string]string{"min": ">=", "gt": ">"}[f.Rule], f.Param)
	default:
		return fmt.Sprintf("%s failed %s", f.Key, f.Rule)
	}
}

// ValidationError lists every invalid key.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = f.String()
	}
	return fmt.Sprintf("%s: %s", ErrInvalidConfig, strings.Join(parts, "; "))
}

func (e *ValidationError) Unwrap() error { return ErrInvalidConfig }

// Keys returns the invalid config keys.
func (e *ValidationError) Keys() []string {
	keys := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		keys[i] = f.Key
	}
	return keys
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("koanf"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks the settings needed to run an upload. It returns a
// *ValidationError wrapping ErrInvalidConfig.
func (c Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	out := &ValidationError{}
	for _, fe := range verrs {
		// Namespace is "Config.server.url"; drop the root type name.
		key := fe.Namespace()
		if i := strings.IndexByte(key, '.'); i >= 0 {
			key = key[i+1:]
		}
		out.Fields = append(out.Fields, FieldError{Key: key, Rule: fe.Tag(), Param: fe.Param()})
	}
	return out
}
