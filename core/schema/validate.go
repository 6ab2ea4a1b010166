package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/url"
	"path"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/quantalab/mirrorbridge/schemas"
)

const (
	ConfigSchemaRel   = "config.schema.json"
	LedgerSchemaRel   = "ledger.schema.json"
	SnapshotSchemaRel = "ledger_snapshot.schema.json"
	TimelineSchemaRel = "timeline.schema.json"
)

func SchemaList() []string {
	return []string{
		ConfigSchemaRel,
		LedgerSchemaRel,
		SnapshotSchemaRel,
		TimelineSchemaRel,
	}
}

func Compile(rel string) (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	for _, resourceRel := range SchemaList() {
		payload, err := schemas.V1FS.ReadFile(path.Join("v1", resourceRel))
		if err != nil {
			return nil, fmt.Errorf("schema not found: %s: %w", resourceRel, err)
		}
		if err := compiler.AddResource(schemaURL(resourceRel), bytes.NewReader(payload)); err != nil {
			return nil, fmt.Errorf("add schema resource %s: %w", resourceRel, err)
		}
	}

	compiled, err := compiler.Compile(schemaURL(rel))
	if err != nil {
		return nil, fmt.Errorf("compile schema %s: %w", rel, err)
	}
	return compiled, nil
}

func ValidateBytes(rel string, data []byte) error {
	compiled, err := Compile(rel)
	if err != nil {
		return err
	}

	var value any
	if err := json.Unmarshal(data, &value); err != nil {
		return fmt.Errorf("decode json for %s: %w", rel, err)
	}

	if err := compiled.Validate(value); err != nil {
		return fmt.Errorf("validate %s: %w", rel, err)
	}
	return nil
}

func ValidateValue(rel string, value any) error {
	compiled, err := Compile(rel)
	if err != nil {
		return err
	}
	if err := compiled.Validate(value); err != nil {
		return fmt.Errorf("validate %s: %w", rel, err)
	}
	return nil
}

func schemaURL(rel string) string {
	return (&url.URL{
		Scheme: "https",
		Host:   "mirrorbridge.dev",
		Path:   "/schemas/v1/" + rel,
	}).String()
}
