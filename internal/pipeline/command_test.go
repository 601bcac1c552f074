package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oquants/tradewatch/pkg/types"
)

func TestCheckSetup(t *testing.T) {
	tests := []struct {
		name    string
		cfg     types.PipelineConfig
		wantErr bool
	}{
		{"ok", types.PipelineConfig{Command: "true"}, false},
		{"empty command", types.PipelineConfig{}, true},
		{"whitespace command", types.PipelineConfig{Command: "   "}, true},
		{"missing workdir", types.PipelineConfig{Command: "true", WorkDir: "/does/not/exist"}, true},
		{"bad timeout", types.PipelineConfig{Command: "true", Timeout: "soon"}, true},
		{"good timeout", types.PipelineConfig{Command: "true", Timeout: "5m"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckSetup(tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestRun_Succeeds(t *testing.T) {
	err := Run(context.Background(), types.PipelineConfig{Command: "true"})
	assert.NoError(t, err)
}

func TestRun_CommandFails(t *testing.T) {
	err := Run(context.Background(), types.PipelineConfig{Command: "false"})
	assert.ErrorContains(t, err, "pipeline command failed")
}

func TestRun_PassesExtraEnv(t *testing.T) {
	out := filepath.Join(t.TempDir(), "date.txt")
	cfg := types.PipelineConfig{Command: "printf %s \"$TRADEWATCH_DATE\" > " + out}

	require.NoError(t, Run(context.Background(), cfg, "TRADEWATCH_DATE=2026-08-26"))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "2026-08-26", string(data))
}

func TestRun_RespectsWorkDir(t *testing.T) {
	dir := t.TempDir()
	cfg := types.PipelineConfig{Command: "pwd > here.txt", WorkDir: dir}

	require.NoError(t, Run(context.Background(), cfg))

	_, err := os.Stat(filepath.Join(dir, "here.txt"))
	assert.NoError(t, err)
}
