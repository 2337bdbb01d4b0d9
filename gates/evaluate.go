// Copyright (c) 2026, R.I. Pienaar and the Choria Project contributors
//
// SPDX-License-Identifier: Apache-2.0

package gates

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/expr-lang/expr"
	"github.com/tidwall/gjson"

	"github.com/choria-io/gauntlet/model"
)

// Env is the environment expression gates are evaluated against
type Env struct {
	Settings model.Settings `json:"settings" yaml:"settings"`
	Facts    map[string]any `json:"facts" yaml:"facts"`

	envJSON json.RawMessage
	mu      sync.Mutex
}

func (e *Env) lookup(params ...any) (any, error) {
	var key string
	var defaultValue any
	var ok bool

	if len(params) == 0 || len(params) > 2 {
		return nil, fmt.Errorf("lookup requires 1 or 2 arguments")
	}

	key, ok = params[0].(string)
	if !ok {
		return nil, fmt.Errorf("lookup requires a string argument")
	}

	if len(params) == 2 {
		defaultValue = params[1]
	} else {
		defaultValue = ""
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.envJSON == nil {
		j, err := json.Marshal(e)
		if err != nil {
			return "", err
		}
		e.envJSON = j
	}

	res := gjson.GetBytes(e.envJSON, key)
	if !res.Exists() {
		return defaultValue, nil
	}

	if res.Type == gjson.Number {
		if strings.Contains(res.Raw, ".") {
			return res.Float(), nil
		}

		return res.Int(), nil
	}

	return res.Value(), nil
}

// Evaluate decides if a test should be skipped under the given settings, it
// is a pure function of its inputs and never mutates the registry
func Evaluate(cond model.Conditions, settings model.Settings, facts map[string]any) (model.Decision, error) {
	err := cond.Validate()
	if err != nil {
		return model.Decision{}, err
	}

	if cond.Device != "" && cond.Device != settings.Device {
		return model.Decision{
			Skip:   true,
			Reason: fmt.Sprintf("skipped on this device: %s", settings.Device),
		}, nil
	}

	if cond.RequiresDownloads && !settings.WithDownloads {
		return model.Decision{
			Skip:   true,
			Reason: "to run this test, pass the --with-downloads option, it will download and cache models from the cloud",
		}, nil
	}

	if cond.Nightly && !settings.Nightly {
		return model.Decision{
			Skip:   true,
			Reason: "to run this test, pass the --nightly option, it will run tests marked as nightly",
		}, nil
	}

	if cond.Expression != "" {
		ok, err := evaluateExpression(cond.Expression, settings, facts)
		if err != nil {
			return model.Decision{}, err
		}

		if !ok {
			return model.Decision{
				Skip:   true,
				Reason: fmt.Sprintf("expression gate not satisfied: %s", cond.Expression),
			}, nil
		}
	}

	return model.Decision{}, nil
}

// evaluateExpression compiles and runs an expression gate, the expression
// must evaluate to a boolean
func evaluateExpression(expression string, settings model.Settings, facts map[string]any) (bool, error) {
	env := &Env{Settings: settings, Facts: facts}

	program, err := expr.Compile(expression, expr.Env(env), expr.AsBool(), expr.Function("lookup", env.lookup))
	if err != nil {
		return false, fmt.Errorf("expr compile error for '%s': %w", expression, err)
	}

	res, err := expr.Run(program, env)
	if err != nil {
		return false, fmt.Errorf("expr run error for '%s': %w", expression, err)
	}

	ok, isBool := res.(bool)
	if !isBool {
		return false, fmt.Errorf("expression '%s' did not evaluate to a boolean", expression)
	}

	return ok, nil
}
