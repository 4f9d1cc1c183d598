// Package schema is the validation capability behind the request decorator.
//
// A Schema turns raw input (decoded JSON, or query and form mappings) into a
// typed instance, or into Issues describing what is wrong with it. The
// decorator in package handler only depends on the Schema interface, so any
// validation engine can be plugged in.
//
// Two engines are provided. Both compile to JSON Schema and validate with
// github.com/santhosh-tekuri/jsonschema/v6:
//
//   - For[T] reflects a Go struct type (via github.com/invopop/jsonschema)
//     and produces values of type T.
//   - FromDocument reads a JSON Schema document written in YAML or JSON and
//     produces Record values.
//
// Before validation, string inputs are coerced to the declared scalar kinds,
// so query and form values such as "42" or "true" validate against integer
// and boolean fields. Nulls are dropped for optional fields and declared
// defaults fill absent keys.
//
// # Issues
//
// Every failure is reported as an Issue with a location, a message and a
// type, plus the offending input when known:
//
//	{"loc": ["page"], "msg": "Input should be a valid integer", "type": "int_type", "input": "abc"}
//
// # Serialization
//
// Dump turns a model (a struct, a pointer to a struct, or a Dumper) into a
// mapping; with excludeNone set, null values are removed at every level.
package schema
