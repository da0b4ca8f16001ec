package config

import (
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	cfg, err := Load("testdata/pepperwood.toml")
	require.NoError(t, err)

	require.Equal(t, []string{"device_metrics", "bme688", "pmsa003i", "radio"}, cfg.SensorNames)
	require.Equal(t, "ca0c", cfg.Logger)
	require.Equal(t, "data/pepperwood", cfg.DataFolderPath)
	require.Equal(t, ".csv", cfg.Extension)
	require.Equal(t, "meshlog", cfg.Driver)
	require.False(t, cfg.DataHasHeader)
	require.Equal(t, 150, cfg.DPI)
	require.Equal(t, 30*time.Minute, cfg.Window)
	require.True(t, cfg.Trimmed())
	require.Equal(t, time.Date(2024, 12, 19, 11, 0, 0, 0, time.UTC), cfg.Start)
	require.Equal(t, time.Date(2024, 12, 21, 8, 0, 0, 0, time.UTC), cfg.End)
	require.Equal(t, []time.Time{time.Date(2024, 12, 20, 9, 30, 0, 0, time.UTC)}, cfg.EventDatetimes)
	require.Equal(t, [2]float64{0, 120}, cfg.IntervalBounds["bme688"])
	require.Equal(t, [2]float64{0.5, 60}, cfg.IntervalBounds["radio"])

	want := []string{
		"datetime", "from_node",
		"temperature", "relativeHumidity", "barometricPressure", "gasResistance", "iaq",
		"rxSnr", "hopLimit", "rxRssi", "hopStart",
	}
	if diff := cmp.Diff(want, cfg.FullDataHeaders["bme688"]); diff != "" {
		t.Fatalf("full headers mismatch (-want +got):\n%s", diff)
	}

	require.True(t, cfg.HasRadio())
	require.Equal(t, cfg.NetworkHeaders, cfg.RadioVars())
	require.Equal(t, cfg.NetworkHeaders, cfg.Vars(Radio))
	require.Equal(t, cfg.NetworkHeaders, cfg.FullDataHeaders[Radio][2:])
	require.True(t, cfg.IsLogY("pmsa003i"))
	require.False(t, cfg.IsLogY("bme688"))
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load("testdata/not-there.toml")
	require.Error(t, err)
}

const minimal = `
[SENSOR_CONFIG]
BASE_HEADERS = ["datetime", "from_node"]
NETWORK_HEADERS = ["rxSnr"]
[SENSOR_CONFIG.SENSOR_HEADERS]
ina260 = ["ch3Voltage", "ch3Current"]
radio = ["rxSnr"]
[IO_CONFIG]
DATAFOLDERPATH = "data"
LOGGER = "4004"
[PLOTTING_CONFIG]
PLOTFOLDERPATH = "plots"
`

func TestDecodeDefaults(t *testing.T) {
	cfg, err := Decode(strings.NewReader(minimal))
	require.NoError(t, err)
	require.Equal(t, 100, cfg.DPI)
	require.Equal(t, time.Hour, cfg.Window)
	require.False(t, cfg.Trimmed())
	require.True(t, cfg.Start.IsZero())
	require.Empty(t, cfg.EventDatetimes)
	require.Equal(t, []string{"rxSnr"}, cfg.RadioVars())
	require.Equal(t, []string{"ch3Voltage", "ch3Current"}, cfg.Vars("ina260"))
}

func TestDecodeErrors(t *testing.T) {
	for _, tc := range []struct {
		name string
		edit func(string) string
	}{
		{
			name: "missing logger",
			edit: func(s string) string { return strings.Replace(s, `LOGGER = "4004"`, "", 1) },
		},
		{
			name: "base headers",
			edit: func(s string) string {
				return strings.Replace(s, `BASE_HEADERS = ["datetime", "from_node"]`, `BASE_HEADERS = ["from_node"]`, 1)
			},
		},
		{
			name: "bad start",
			edit: func(s string) string {
				return strings.Replace(s, `LOGGER = "4004"`, "LOGGER = \"4004\"\nSTART_DATETIME = \"19/12/2024\"", 1)
			},
		},
		{
			name: "start after end",
			edit: func(s string) string {
				return strings.Replace(s, `LOGGER = "4004"`,
					"LOGGER = \"4004\"\nSTART_DATETIME = \"2024-12-20 00:00:00\"\nEND_DATETIME = \"2024-12-19 00:00:00\"", 1)
			},
		},
		{
			name: "bounds order",
			edit: func(s string) string {
				return s + "[PLOTTING_CONFIG.INTERVAL_BOUNDS]\nina260 = [10, 1]\n"
			},
		},
		{
			name: "bounds size",
			edit: func(s string) string {
				return s + "[PLOTTING_CONFIG.INTERVAL_BOUNDS]\nina260 = [10]\n"
			},
		},
		{
			name: "window",
			edit: func(s string) string {
				return strings.Replace(s, `PLOTFOLDERPATH = "plots"`, "PLOTFOLDERPATH = \"plots\"\nMOVING_AVERAGE_WINDOW = \"-5m\"", 1)
			},
		},
		{
			name: "invalid toml",
			edit: func(s string) string { return s + "\n[[[" },
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(tc.edit(minimal)))
			if err == nil {
				t.Fatalf("expected an error")
			}
		})
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	require.False(t, cfg.HasRadio())
	require.Equal(t, []string{"device_metrics", "bme688", "ina260", "pmsa003i"}, cfg.SensorNames)
	require.Len(t, cfg.FullDataHeaders["pmsa003i"], 2+6+4)
}

func TestParseTime(t *testing.T) {
	v, err := ParseTime("")
	require.NoError(t, err)
	require.True(t, v.IsZero())

	v, err = ParseTime("2025-01-07 17:31:26")
	require.NoError(t, err)
	require.Equal(t, time.Date(2025, 1, 7, 17, 31, 26, 0, time.UTC), v)

	_, err = ParseTime("2025-01-07T17:31:26")
	require.Error(t, err)
}
