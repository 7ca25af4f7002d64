package commands

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommandTree(t *testing.T) {
	want := []string{"run", "evaluate", "state", "backtest", "prices", "config", "chart"}
	for _, name := range want {
		cmd, _, err := rootCmd.Find([]string{name})
		require.NoError(t, err, name)
		assert.Equal(t, name, cmd.Name())
	}

	cmd, _, err := rootCmd.Find([]string{"state", "reset"})
	require.NoError(t, err)
	assert.Equal(t, "reset", cmd.Name())
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		in      string
		want    time.Time
		wantErr bool
	}{
		{"", time.Time{}, false},
		{"2024-03-08", time.Date(2024, 3, 8, 0, 0, 0, 0, time.UTC), false},
		{"08/03/2024", time.Time{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseDate(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got))
		})
	}
}

func TestEvaluateArgs(t *testing.T) {
	assert.Error(t, evaluateCmd.Args(evaluateCmd, []string{}))
	assert.NoError(t, evaluateCmd.Args(evaluateCmd, []string{"daily"}))
}
