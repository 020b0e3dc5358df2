// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package config

import (
	"bytes"
	"encoding/json"
	"sync"

	"github.com/invopop/jsonschema"
	"github.com/samber/oops"
	jschema "github.com/santhosh-tekuri/jsonschema/v6"
	"gopkg.in/yaml.v3"
)

// SchemaID is the $id of the configuration schema.
const SchemaID = "https://pennmush.holomush.dev/schemas/config.schema.json"

var compiled = sync.OnceValues(compileSchema)

// GenerateSchema reflects Config into a JSON Schema document.
func GenerateSchema() ([]byte, error) {
	r := jsonschema.Reflector{
		DoNotReference:             true,
		RequiredFromJSONSchemaTags: true,
	}
	schema := r.Reflect(&Config{})
	schema.ID = jsonschema.ID(SchemaID)
	schema.Title = "PennMUSH command core configuration"
	schema.Description = "Schema for pennmush config.yaml files"

	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return nil, oops.Code("SCHEMA_GENERATE_FAILED").Wrap(err)
	}
	return data, nil
}

func compileSchema() (*jschema.Schema, error) {
	data, err := GenerateSchema()
	if err != nil {
		return nil, err
	}
	doc, err := jschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return nil, oops.Code("SCHEMA_COMPILE_FAILED").Wrap(err)
	}
	c := jschema.NewCompiler()
	if err := c.AddResource("config.schema.json", doc); err != nil {
		return nil, oops.Code("SCHEMA_COMPILE_FAILED").Wrap(err)
	}
	sch, err := c.Compile("config.schema.json")
	if err != nil {
		return nil, oops.Code("SCHEMA_COMPILE_FAILED").Wrap(err)
	}
	return sch, nil
}

// ValidateYAML checks a configuration document against the schema.
func ValidateYAML(data []byte) error {
	if len(data) == 0 {
		return oops.Code("CONFIG_EMPTY").Errorf("configuration is empty")
	}
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return oops.Code("CONFIG_INVALID_YAML").Wrap(err)
	}
	sch, err := compiled()
	if err != nil {
		return err
	}
	if err := sch.Validate(jsonTypes(doc)); err != nil {
		return oops.Code("CONFIG_SCHEMA_VIOLATION").Wrap(err)
	}
	return nil
}

// jsonTypes turns decoded YAML into the shapes JSON decoding produces, so
// integers become float64 and non-string map keys become strings.
func jsonTypes(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, e := range val {
			out[k] = jsonTypes(e)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, e := range val {
			out[i] = jsonTypes(e)
		}
		return out
	case int:
		return float64(val)
	case int64:
		return float64(val)
	case uint64:
		return float64(val)
	}
	return v
}
