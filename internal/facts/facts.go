// Copyright (c) 2026, R.I. Pienaar and the Choria Project contributors
//
// SPDX-License-Identifier: Apache-2.0

package facts

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"

	"github.com/adrg/xdg"
	"github.com/goccy/go-yaml"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/host"
	"github.com/shirou/gopsutil/v4/mem"

	iu "github.com/choria-io/gauntlet/internal/util"
	"github.com/choria-io/gauntlet/metrics"
	"github.com/choria-io/gauntlet/model"
)

// StandardFacts returns a map of standard facts used by expression gates,
// facts files in the system and user configuration directories are merged over
// the gathered values
func StandardFacts(ctx context.Context, log model.Logger) (map[string]any, error) {
	timer := prometheus.NewTimer(metrics.FactGatherTime.WithLabelValues())
	defer timer.ObserveDuration()

	sf, err := standardFacts(ctx)
	if err != nil {
		return nil, err
	}

	sysConfigDir := "/etc/choria/gauntlet"
	userConfigDir := filepath.Join(xdg.ConfigHome, "choria", "gauntlet")

	for _, dir := range []string{sysConfigDir, userConfigDir} {
		jf := filepath.Join(dir, "facts.json")
		yf := filepath.Join(dir, "facts.yaml")

		if iu.FileExists(jf) {
			log.Debug("Reading facts", "file", jf)
			jb, err := os.ReadFile(jf)
			if err != nil {
				log.Error("Failed to read facts file", "file", jf, "error", err)
			} else {
				var f map[string]any
				err = json.Unmarshal(jb, &f)
				if err != nil {
					log.Error("Failed to unmarshal facts file", "file", jf, "error", err)
				} else {
					sf = iu.DeepMergeMap(sf, f)
				}
			}
		}

		if iu.FileExists(yf) {
			log.Debug("Reading facts", "file", yf)
			yb, err := os.ReadFile(yf)
			if err == nil {
				var f map[string]any
				err = yaml.Unmarshal(yb, &f)
				if err != nil {
					log.Error("Failed to unmarshal facts file", "file", yf, "error", err)
				} else {
					sf = iu.DeepMergeMap(sf, f)
				}
			}
		}
	}

	return sf, nil
}

func standardFacts(ctx context.Context) (map[string]any, error) {
	cpuFacts := map[string]any{
		"info":  []any{},
		"count": runtime.NumCPU(),
	}
	memoryFacts := map[string]any{
		"virtual": map[string]any{},
	}
	hostFacts := map[string]any{
		"info": map[string]any{},
	}

	virtual, err := mem.VirtualMemoryWithContext(ctx)
	if err == nil {
		memoryFacts["virtual"] = virtual
	}

	cpuInfo, err := cpu.InfoWithContext(ctx)
	if err == nil {
		cpuFacts["info"] = cpuInfo
	}

	hostInfo, err := host.InfoWithContext(ctx)
	if err == nil {
		hostFacts["info"] = hostInfo
	}

	return map[string]any{
		"host":        hostFacts,
		"cpu":         cpuFacts,
		"memory":      memoryFacts,
		"accelerator": acceleratorFacts(),
	}, nil
}

// acceleratorFacts detects CUDA capable hardware, detection is best effort
// based on the driver proc interface and the presence of nvidia-smi
func acceleratorFacts() map[string]any {
	facts := map[string]any{
		"available": false,
		"kind":      "none",
	}

	if iu.FileExists("/proc/driver/nvidia/version") {
		facts["available"] = true
		facts["kind"] = "cuda"

		return facts
	}

	if _, ok, _ := iu.ExecutableInPath("nvidia-smi"); ok {
		facts["available"] = true
		facts["kind"] = "cuda"
	}

	return facts
}
