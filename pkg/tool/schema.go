// Copyright 2026 The Agentrun Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package tool

import (
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
)

// generateSchema reflects T's json/jsonschema struct tags into the
// same {type, properties, required} shape object() builds by hand,
// for builtins whose input is naturally one typed struct rather than
// an ad hoc property map.
//
// Supported jsonschema tags: "required", "description=...",
// "enum=a|b", "minimum=N,maximum=M" — see invopop/jsonschema's own
// doc comment for the full tag grammar.
func generateSchema[T any]() map[string]any {
	reflector := &jsonschema.Reflector{
		RequiredFromJSONSchemaTags: true,
		ExpandedStruct:             true,
		DoNotReference:             true,
	}
	schema := reflector.Reflect(new(T))

	data, err := json.Marshal(schema)
	if err != nil {
		panic(fmt.Sprintf("tool: reflect schema for %T: %v", *new(T), err))
	}
	var result map[string]any
	if err := json.Unmarshal(data, &result); err != nil {
		panic(fmt.Sprintf("tool: decode schema for %T: %v", *new(T), err))
	}
	delete(result, "$schema")
	delete(result, "$id")

	if result["type"] != "object" {
		return result
	}
	out := map[string]any{"type": "object", "properties": result["properties"]}
	if required, ok := result["required"]; ok {
		out["required"] = required
	}
	if additional, ok := result["additionalProperties"]; ok {
		out["additionalProperties"] = additional
	}
	return out
}

// object builds a JSON-schema object node with the given required
// property names, the shape every built-in's InputSchema returns.
func object(properties map[string]any, required ...string) map[string]any {
	schema := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

func str(description string) map[string]any {
	return map[string]any{"type": "string", "description": description}
}

func strEnum(description string, values ...string) map[string]any {
	return map[string]any{"type": "string", "description": description, "enum": values}
}

func number(description string) map[string]any {
	return map[string]any{"type": "number", "description": description}
}

func boolean(description string) map[string]any {
	return map[string]any{"type": "boolean", "description": description}
}

func array(items map[string]any, description string) map[string]any {
	return map[string]any{"type": "array", "description": description, "items": items}
}
