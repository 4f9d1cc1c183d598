package schema

import (
	"bytes"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

const resourceURL = "schema.json"

// compile compiles a JSON Schema document into a validator.
func compile(doc []byte) (*jsonschema.Schema, error) {
	value, err := jsonschema.UnmarshalJSON(bytes.NewReader(doc))
	if err != nil {
		return nil, fmt.Errorf("%w: unmarshaling schema: %v", ErrInvalidSchema, err)
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(resourceURL, value); err != nil {
		return nil, fmt.Errorf("%w: adding schema resource: %v", ErrInvalidSchema, err)
	}

	compiled, err := compiler.Compile(resourceURL)
	if err != nil {
		return nil, fmt.Errorf("%w: compiling schema: %v", ErrInvalidSchema, err)
	}
	return compiled, nil
}
