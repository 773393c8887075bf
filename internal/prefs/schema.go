package prefs

import (
	"encoding/json"
	"strings"
	"sync"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

const listSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "array",
  "items": {"type": "string", "minLength": 1}
}`

const settingsSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "properties": {
    "current_context": {"type": "string"}
  }
}`

var (
	schemaMu    sync.Mutex
	schemaCache = make(map[string]*jsonschema.Schema)
)

func compiledSchema(url, source string) (*jsonschema.Schema, error) {
	schemaMu.Lock()
	defer schemaMu.Unlock()
	if cached, ok := schemaCache[url]; ok {
		return cached, nil
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(url, strings.NewReader(source)); err != nil {
		return nil, err
	}
	compiled, err := compiler.Compile(url)
	if err != nil {
		return nil, err
	}
	schemaCache[url] = compiled
	return compiled, nil
}

// validateDocument decodes raw generically and checks it against the schema.
func validateDocument(url, source string, raw []byte) error {
	schema, err := compiledSchema(url, source)
	if err != nil {
		return err
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return err
	}
	return schema.Validate(v)
}
