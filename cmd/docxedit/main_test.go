package main

import (
	"context"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/logicossoftware/go-docxedit/internal/cli"
	"github.com/logicossoftware/go-docxedit/internal/config"
	"github.com/logicossoftware/go-docxedit/internal/logging/test"
)

func withGlobals(t *testing.T, flags globalFlags, fs afero.Fs) {
	t.Helper()

	oldGlobal, oldFs := global, configFs
	global, configFs = &flags, fs

	t.Cleanup(func() {
		global, configFs = oldGlobal, oldFs
	})
}

func newTestContext() *cli.Context {
	ctx := &cli.Context{Ctx: context.Background()}
	ctx.SetLogger(test.NewNullLogger())

	return ctx
}

func TestLoadConfigurationFile_MissingDefault(t *testing.T) {
	withGlobals(t, globalFlags{ConfigFile: defaultConfigFile}, afero.NewMemMapFs())

	ctx := newTestContext()
	require.NoError(t, loadConfigurationFile(ctx))
	assert.Equal(t, config.Default(), ctx.Config())
}

func TestLoadConfigurationFile_MissingExplicit(t *testing.T) {
	withGlobals(t, globalFlags{ConfigFile: "custom.toml"}, afero.NewMemMapFs())

	assert.Error(t, loadConfigurationFile(newTestContext()))
}

func TestLoadConfigurationFile_YAML(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "docxedit.yaml", []byte("log_level: warning\nserver:\n  listen: \":8080\"\n"), 0644))
	withGlobals(t, globalFlags{ConfigFile: "docxedit.yaml"}, fs)

	ctx := newTestContext()
	require.NoError(t, loadConfigurationFile(ctx))
	assert.Equal(t, "warning", ctx.Config().LogLevel)
	assert.Equal(t, ":8080", ctx.Config().Server.Listen)
	assert.Equal(t, config.DefaultScratchDir, ctx.Config().Server.ScratchDir)
}

func TestUpdateLogLevel(t *testing.T) {
	tests := map[string]struct {
		flags       globalFlags
		configLevel string
		expectError bool
	}{
		"nothing set":       {},
		"config level":      {configLevel: "warning"},
		"flag level":        {flags: globalFlags{LogLevel: "error"}, configLevel: "warning"},
		"debug wins":        {flags: globalFlags{Debug: true, LogLevel: "bogus"}},
		"invalid flag":      {flags: globalFlags{LogLevel: "bogus"}, expectError: true},
		"invalid in config": {configLevel: "bogus", expectError: true},
	}

	for tn, tc := range tests {
		t.Run(tn, func(t *testing.T) {
			withGlobals(t, tc.flags, afero.NewMemMapFs())

			ctx := newTestContext()
			cfg := config.Default()
			cfg.LogLevel = tc.configLevel
			ctx.SetConfig(cfg)

			err := updateLogLevel(ctx)
			if tc.expectError {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestUpdateLogFormat(t *testing.T) {
	withGlobals(t, globalFlags{LogFormat: "json"}, afero.NewMemMapFs())

	ctx := newTestContext()
	ctx.SetConfig(config.Default())
	assert.NoError(t, updateLogFormat(ctx))

	global.LogFormat = "xml"
	assert.Error(t, updateLogFormat(ctx))
}
