package content

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

//go:embed pack.schema.json
var packSchema []byte

const packSchemaURL = "schema://conjuga/pack.json"

var (
	schemaOnce     sync.Once
	compiledSchema *jsonschema.Schema
	schemaErr      error
)

func compiled() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		var def any
		if err := json.Unmarshal(packSchema, &def); err != nil {
			schemaErr = fmt.Errorf("parse pack schema: %w", err)
			return
		}
		c := jsonschema.NewCompiler()
		if err := c.AddResource(packSchemaURL, def); err != nil {
			schemaErr = fmt.Errorf("add resource: %w", err)
			return
		}
		compiledSchema, schemaErr = c.Compile(packSchemaURL)
	})
	return compiledSchema, schemaErr
}

func validateSchema(doc any) error {
	schema, err := compiled()
	if err != nil {
		return fmt.Errorf("compile pack schema: %w", err)
	}
	v, err := toJSONValue(doc)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidPack, err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("%w: schema validation failed: %w", ErrInvalidPack, err)
	}
	return nil
}
