package config

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/vk/prayerclock/internal/ctxlog"
)

// Load reads a settings file. Files ending in .json use HCL's JSON syntax,
// everything else native HCL. Unknown attributes are logged and ignored.
func Load(ctx context.Context, path string) (*Settings, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Loading settings file.", "path", path)

	parser := hclparse.NewParser()
	var (
		file  *hcl.File
		diags hcl.Diagnostics
	)
	if strings.EqualFold(filepath.Ext(path), ".json") {
		file, diags = parser.ParseJSONFile(path)
	} else {
		file, diags = parser.ParseHCLFile(path)
	}
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse settings file %s: %w", path, diags)
	}

	var s Settings
	if diags := gohcl.DecodeBody(file.Body, nil, &s); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode settings file %s: %w", path, diags)
	}

	if s.Remain != nil {
		if attrs, diags := s.Remain.JustAttributes(); !diags.HasErrors() && len(attrs) > 0 {
			names := make([]string, 0, len(attrs))
			for name := range attrs {
				names = append(names, name)
			}
			slices.Sort(names)
			logger.Warn("Ignoring unknown settings attributes.", "path", path, "attributes", names)
		}
	}

	return &s, nil
}

// FromJSON decodes a display link payload. The settings may be sent bare or
// wrapped as {"config": {...}}.
func FromJSON(data []byte) (*Settings, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil, invalid("settings", "are missing")
	}

	var envelope struct {
		Config json.RawMessage `json:"config"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, fmt.Errorf("failed to decode settings payload: %w", err)
	}
	if raw := bytes.TrimSpace(envelope.Config); len(raw) > 0 && raw[0] == '{' {
		data = raw
	}

	var s Settings
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to decode settings payload: %w", err)
	}
	return &s, nil
}
