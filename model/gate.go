// Copyright (c) 2026, R.I. Pienaar and the Choria Project contributors
//
// SPDX-License-Identifier: Apache-2.0

package model

import (
	"fmt"
)

const (
	// DeviceCPU selects CPU bound test execution
	DeviceCPU = "CPU"

	// DeviceGPU selects GPU bound test execution, the default
	DeviceGPU = "GPU"
)

// Conditions is the closed set of gating conditions that can be attached to a test identifier
type Conditions struct {
	Device            string `json:"device,omitempty" yaml:"device,omitempty"`                         // Device restricts the test to a specific device, CPU or GPU
	RequiresDownloads bool   `json:"requires_downloads,omitempty" yaml:"requires_downloads,omitempty"` // RequiresDownloads gates tests that fetch models from the cloud
	Nightly           bool   `json:"nightly,omitempty" yaml:"nightly,omitempty"`                       // Nightly gates tests that only run in nightly QA sessions
	Expression        string `json:"expression,omitempty" yaml:"expression,omitempty"`                 // Expression is an optional expr expression evaluated against settings and facts
}

// Validate validates the gate conditions
func (c *Conditions) Validate() error {
	if c.Device != "" && c.Device != DeviceCPU && c.Device != DeviceGPU {
		return fmt.Errorf("device must be one of %q or %q", DeviceCPU, DeviceGPU)
	}

	return nil
}

// Settings is the per session harness configuration derived from command line options
type Settings struct {
	Device        string `json:"device" yaml:"device"`                 // Device the session resolves to, GPU unless --cpu was given
	WithDownloads bool   `json:"with_downloads" yaml:"with_downloads"` // WithDownloads activates tests which download models from the cloud
	Nightly       bool   `json:"nightly" yaml:"nightly"`               // Nightly activates tests marked as nightly for QA
	StrictCompat  bool   `json:"strict_compat" yaml:"strict_compat"`   // StrictCompat enforces strict accelerator compatibility checks, relaxed by --relax-numba-compat
	LocalData     bool   `json:"local_data" yaml:"local_data"`         // LocalData skips downloading test data and requires a local archive
}

// Decision is the outcome of evaluating a gate for a test
type Decision struct {
	Skip   bool   `json:"skip" yaml:"skip"`
	Reason string `json:"reason,omitempty" yaml:"reason,omitempty"`
}
