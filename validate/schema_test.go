package validate

import (
	"strings"
	"testing"
)

const schemaValidYAML = `
name: security-scan
global_timeout_seconds: 3600
trigger: event == "push"
stages:
  - name: lint
    tool: static-analysis
    command: cargo
    args: ["clippy"]
    timeout_seconds: 600
    on_failure: abort
    required: true
`

func TestSchema_Valid(t *testing.T) {
	errs, err := Schema([]byte(schemaValidYAML))
	if err != nil {
		t.Fatalf("Schema() error: %v", err)
	}
	if len(errs) != 0 {
		t.Fatalf("Schema() violations: %v", errs)
	}
}

func TestSchema_Violations(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{
			"missing stage fields",
			"name: p\nglobal_timeout_seconds: 10\nstages:\n  - name: lint\n",
			"tool",
		},
		{
			"bad tool enum",
			"name: p\nglobal_timeout_seconds: 10\nstages:\n  - name: lint\n    tool: sast\n    command: x\n    timeout_seconds: 5\n    on_failure: abort\n",
			"tool",
		},
		{
			"bad on_failure enum",
			"name: p\nglobal_timeout_seconds: 10\nstages:\n  - name: lint\n    tool: static-analysis\n    command: x\n    timeout_seconds: 5\n    on_failure: retry\n",
			"on_failure",
		},
		{
			"zero timeout",
			"name: p\nglobal_timeout_seconds: 10\nstages:\n  - name: lint\n    tool: static-analysis\n    command: x\n    timeout_seconds: 0\n    on_failure: abort\n",
			"timeout_seconds",
		},
		{
			"unknown top-level key",
			"name: p\nglobal_timeout_seconds: 10\nmatrix: [a, b]\nstages:\n  - name: lint\n    tool: static-analysis\n    command: x\n    timeout_seconds: 5\n    on_failure: abort\n",
			"matrix",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			errs, err := Schema([]byte(tc.in))
			if err != nil {
				t.Fatalf("Schema() error: %v", err)
			}
			if len(errs) == 0 {
				t.Fatal("expected schema violations")
			}
			found := false
			for _, e := range errs {
				if strings.Contains(e, tc.want) {
					found = true
				}
			}
			if !found {
				t.Errorf("violations %v do not mention %q", errs, tc.want)
			}
		})
	}
}
