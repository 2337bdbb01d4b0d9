// Copyright (c) 2026, R.I. Pienaar and the Choria Project contributors
//
// SPDX-License-Identifier: Apache-2.0

package config

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/santhosh-tekuri/jsonschema/v6"
)

//go:embed schema.json
var schemaJSON string

// validateSchema checks a configuration document against the embedded schema
// before it is unmarshaled into the typed configuration
func validateSchema(c []byte) error {
	doc, err := jsonschema.UnmarshalJSON(strings.NewReader(schemaJSON))
	if err != nil {
		return fmt.Errorf("invalid embedded schema: %w", err)
	}

	compiler := jsonschema.NewCompiler()
	err = compiler.AddResource("gauntlet-config.json", doc)
	if err != nil {
		return err
	}

	schema, err := compiler.Compile("gauntlet-config.json")
	if err != nil {
		return err
	}

	var parsed any
	err = yaml.Unmarshal(c, &parsed)
	if err != nil {
		return err
	}

	err = schema.Validate(parsed)
	if err != nil {
		return fmt.Errorf("configuration does not match schema: %w", err)
	}

	return nil
}
