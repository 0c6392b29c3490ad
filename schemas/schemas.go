// Package schemas embeds the JSON Schema documents pipeline definitions are
// validated against.
package schemas

import _ "embed"

// PipelineV1Schema is the JSON Schema for the v1 pipeline definition format.
//
//go:embed pipeline_v1.json
var PipelineV1Schema []byte
