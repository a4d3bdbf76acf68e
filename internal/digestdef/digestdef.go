// Package digestdef validates a --digest-def JSON document against the
// structure spec.md §4.4 describes (protease.id, protease.cleavage_rule,
// max_missed_cleavages, min_acids, max_acids) before it reaches the Digest
// registry, using github.com/google/jsonschema-go/jsonschema — the same
// Schema type the teacher builds tool-input schemas with.
package digestdef

import (
	"encoding/json"
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"
)

// Definition is the parsed, validated contents of a --digest-def file.
type Definition struct {
	Protease struct {
		ID           string `json:"id"`
		CleavageRule string `json:"cleavage_rule"`
	} `json:"protease"`
	MaxMissedCleavages int `json:"max_missed_cleavages"`
	MinAcids           int `json:"min_acids"`
	MaxAcids           int `json:"max_acids"`
}

var documentSchema = &jsonschema.Schema{
	Type: "object",
	Properties: map[string]*jsonschema.Schema{
		"protease": {
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"id":            {Type: "string", MinLength: ptrInt(1)},
				"cleavage_rule": {Type: "string", MinLength: ptrInt(1)},
			},
			Required: []string{"id", "cleavage_rule"},
		},
		"max_missed_cleavages": {Type: "integer", Minimum: ptrFloat(0)},
		"min_acids":            {Type: "integer", Minimum: ptrFloat(0)},
		"max_acids":            {Type: "integer", Minimum: ptrFloat(0)},
	},
	Required: []string{"protease", "max_missed_cleavages", "min_acids"},
}

func ptrInt(v int) *int         { return &v }
func ptrFloat(v float64) *float64 { return &v }

var resolved = func() *jsonschema.Resolved {
	r, err := documentSchema.Resolve(nil)
	if err != nil {
		panic(fmt.Sprintf("digestdef: invalid built-in schema: %v", err))
	}
	return r
}()

// Parse validates raw against the digest-definition schema and, on success,
// unmarshals it into a Definition. A schema violation is a usage error
// (spec.md/SPEC_FULL.md §4.4a: exit 1, not a runtime DigestNotFound).
func Parse(raw []byte) (Definition, error) {
	var instance interface{}
	if err := json.Unmarshal(raw, &instance); err != nil {
		return Definition{}, fmt.Errorf("digest-def: invalid JSON: %w", err)
	}
	if err := resolved.Validate(instance); err != nil {
		return Definition{}, fmt.Errorf("digest-def: schema validation failed: %w", err)
	}

	var def Definition
	if err := json.Unmarshal(raw, &def); err != nil {
		return Definition{}, fmt.Errorf("digest-def: %w", err)
	}
	return def, nil
}
