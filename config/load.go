// Package config loads pipeline definition files from disk.
package config

import (
	"fmt"
	"os"

	"github.com/kaiachai/scanpipe/types"
)

// Load reads and parses a pipeline definition file. It returns the parsed
// definition together with the raw bytes, which the validate package needs
// for schema checking.
func Load(path string) (*types.PipelineDefinition, []byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("reading pipeline definition %s: %w", path, err)
	}
	def, err := types.ParsePipelineDefinition(data)
	if err != nil {
		return nil, nil, err
	}
	return def, data, nil
}
