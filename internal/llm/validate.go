package llm

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// CompileSchema compiles a schema map so it can validate many documents.
func CompileSchema(schemaMap map[string]any) (*jsonschema.Schema, error) {
	b, err := json.Marshal(schemaMap)
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("schema.json", bytes.NewReader(b)); err != nil {
		return nil, fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile("schema.json")
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return schema, nil
}

// ValidateJSONAgainstSchema validates "data" against "schemaMap".
func ValidateJSONAgainstSchema(schemaMap map[string]any, data []byte) error {
	schema, err := CompileSchema(schemaMap)
	if err != nil {
		return err
	}
	return validateDoc(schema, data)
}

var voucherSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	return CompileSchema(BuildVoucherJSONSchema())
})

// ValidateVoucherJSON validates a normalized voucher document against
// BuildVoucherJSONSchema, compiling the schema only once.
func ValidateVoucherJSON(data []byte) error {
	schema, err := voucherSchema()
	if err != nil {
		return err
	}
	return validateDoc(schema, data)
}

func validateDoc(schema *jsonschema.Schema, data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal data: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		var ve *jsonschema.ValidationError
		if errors.As(err, &ve) {
			leaf := ve
			for len(leaf.Causes) > 0 {
				leaf = leaf.Causes[0]
			}
			return fmt.Errorf("json does not match schema at %q: %s", leaf.InstanceLocation, leaf.Message)
		}
		return fmt.Errorf("json does not match schema: %w", err)
	}
	return nil
}
