package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/smesh-lab/smesh/config"
	"github.com/smesh-lab/smesh/fwk"
	"github.com/stretchr/testify/require"
)

func TestWindowFlag(t *testing.T) {
	cfg := config.Default()

	cmd := smeshMakeCmdPlot()
	w, err := windowFlag(cmd, cfg)
	require.NoError(t, err)
	require.Equal(t, time.Hour, w)

	require.NoError(t, cmd.Flag.Parse([]string{"-window=15m", "cfg.toml"}))
	w, err = windowFlag(cmd, cfg)
	require.NoError(t, err)
	require.Equal(t, 15*time.Minute, w)
	require.Equal(t, []string{"cfg.toml"}, cmd.Flag.Args())

	for _, v := range []string{"-window=0s", "-window=-1m", "-window=soon"} {
		cmd := smeshMakeCmdExport()
		require.NoError(t, cmd.Flag.Parse([]string{v}))
		_, err = windowFlag(cmd, cfg)
		require.Error(t, err, v)
	}
}

func TestCmdConcat(t *testing.T) {
	fwk.NoColor = true
	dir := t.TempDir()
	for name, data := range map[string]string{
		"ca0c_ina260_2024-12-19_11-00-00.csv": "datetime,v\n2024-12-19 11:00:00,1\n",
		"ca0c_ina260_2024-12-19_12-00-00.csv": "datetime,v\n2024-12-19 12:00:00,2\n",
		"ca0c_bme688_2024-12-19_11-00-00.csv": "datetime,t\n2024-12-19 11:00:00,21.5",
	} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(data), 0644))
	}
	out := filepath.Join(dir, "merged")

	cmd := smeshMakeCmdConcat()
	require.NoError(t, cmd.Flag.Parse([]string{"-o", out, "-j", "1"}))
	require.NoError(t, cmdConcat(cmd, []string{"ca0c", dir}))

	raw, err := os.ReadFile(filepath.Join(out, "ca0c_ina260.csv"))
	require.NoError(t, err)
	require.Equal(t, "datetime,v\n2024-12-19 11:00:00,1\n2024-12-19 12:00:00,2\n", string(raw))

	raw, err = os.ReadFile(filepath.Join(out, "ca0c_bme688.csv"))
	require.NoError(t, err)
	require.Equal(t, "datetime,t\n2024-12-19 11:00:00,21.5\n", string(raw))

	require.Error(t, cmdConcat(cmd, []string{"ca0c"}))
}

func TestCmdArgs(t *testing.T) {
	require.Error(t, cmdPlot(smeshMakeCmdPlot(), nil))
	require.Error(t, cmdExport(smeshMakeCmdExport(), []string{"a", "b"}))
	require.Error(t, cmdInfo(smeshMakeCmdInfo(), nil))
	require.Error(t, cmdInfo(smeshMakeCmdInfo(), []string{"testdata/not-there.toml"}))
}
