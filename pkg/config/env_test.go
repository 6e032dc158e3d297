package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandEnv(t *testing.T) {
	tests := map[string]struct {
		value    string
		env      map[string]string
		expected string
		errorMsg string
	}{
		"no references": {
			value:    "./wandb",
			expected: "./wandb",
		},
		"required set": {
			value:    "${SR_TEST_ROOT}/runs",
			env:      map[string]string{"SR_TEST_ROOT": "/data"},
			expected: "/data/runs",
		},
		"required missing": {
			value:    "${SR_TEST_MISSING}/runs",
			errorMsg: "required environment variable(s) not set: ${SR_TEST_MISSING}",
		},
		"required empty": {
			value:    "${SR_TEST_EMPTY}",
			env:      map[string]string{"SR_TEST_EMPTY": ""},
			errorMsg: "required environment variable(s) not set",
		},
		"default used": {
			value:    "${SR_TEST_MISSING:-./results}",
			expected: "./results",
		},
		"default ignored when set": {
			value:    "${SR_TEST_ROOT:-./results}",
			env:      map[string]string{"SR_TEST_ROOT": "/data"},
			expected: "/data",
		},
		"empty default": {
			value:    "out${SR_TEST_MISSING:-}",
			expected: "out",
		},
		"nested default": {
			value:    "${SR_TEST_MISSING:-${SR_TEST_ROOT}}/results",
			env:      map[string]string{"SR_TEST_ROOT": "/data"},
			expected: "/data/results",
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			for k, v := range tc.env {
				t.Setenv(k, v)
			}

			got, err := expandEnv(tc.value)
			if tc.errorMsg != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tc.errorMsg)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, got)
		})
	}
}

func TestReadExpandsPaths(t *testing.T) {
	t.Setenv("SR_TEST_DATA", "/srv/bench")

	cfg, err := Read([]byte(`
runs:
  root: ${SR_TEST_DATA}/wandb
artifacts:
  dir: ${SR_TEST_DATA}/results
`))
	require.NoError(t, err)
	assert.Equal(t, "/srv/bench/wandb", cfg.Runs.Root)
	assert.Equal(t, "/srv/bench/results", cfg.Artifacts.Dir)
	assert.Equal(t, "/srv/bench/wandb/final_report.json", cfg.ReportPath())
}

func TestReadMissingPathVariable(t *testing.T) {
	_, err := Read([]byte("runs:\n  root: ${SR_TEST_UNSET_ROOT}\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "runs.root")
}
