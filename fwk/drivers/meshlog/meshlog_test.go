package meshlog

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/smesh-lab/smesh/config"
	"github.com/smesh-lab/smesh/fwk"
	"github.com/smesh-lab/smesh/table"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/context"
)

const cfgTmpl = `
[SENSOR_CONFIG]
BASE_HEADERS = ["datetime", "from_node"]
NETWORK_HEADERS = ["rxSnr", "rxRssi"]
[SENSOR_CONFIG.SENSOR_HEADERS]
ina260 = ["ch3Voltage", "ch3Current"]
bme688 = ["temperature"]
pmsa003i = ["pm25Standard"]
radio = []
[IO_CONFIG]
DATAFOLDERPATH = %q
LOGGER = "ca0c"
[PLOTTING_CONFIG]
PLOTFOLDERPATH = "plots"
`

const (
	ina260 = `2024-12-19 11:00:00,!a1b2ca0c,5.1,120,6.5,-80
2024-12-19 11:02:00,!a1b24004,5.0,110,7.5,-90
`
	bme688 = `2024-12-19 11:01:00,!a1b2ca0c,21.5,,-85
2024-12-19 11:03:00,!a1b24004,21.7,4.5,-95
`
)

func setup(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	for name, data := range map[string]string{
		"ca0c_ina260.csv": ina260,
		"ca0c_bme688.csv": bme688,
	} {
		err := os.WriteFile(filepath.Join(dir, name), []byte(data), 0644)
		require.NoError(t, err)
	}
	cfg, err := config.Decode(strings.NewReader(fmt.Sprintf(cfgTmpl, dir)))
	require.NoError(t, err)
	return cfg
}

func TestRegistered(t *testing.T) {
	drv, err := fwk.System.Driver("meshlog")
	require.NoError(t, err)
	require.Equal(t, "meshlog", drv.Name())
}

func TestLoad(t *testing.T) {
	fwk.NoColor = true
	cfg := setup(t)

	set, err := New().Load(context.Background(), cfg)
	require.NoError(t, err)
	require.Equal(t, []string{"ina260", "bme688", "radio"}, set.Names())

	ina := set.Table("ina260")
	require.Equal(t, []string{
		"datetime", "from_node", "ch3Voltage", "ch3Current", "rxSnr", "rxRssi", "from_short_name",
	}, ina.Names())
	require.Equal(t, []string{"ca0c", "4004"}, ina.Strings(table.ShortNameCol))
	require.Equal(t, []string{"ch3Voltage", "ch3Current"}, set.Vars("ina260"))

	radio := set.Table("radio")
	require.Equal(t, []string{
		"datetime", "from_node", "rxSnr", "rxRssi", "from_sensor", "from_short_name",
	}, radio.Names())
	require.Equal(t, 4, radio.Len())
	require.Equal(t, []string{"ina260", "bme688", "ina260", "bme688"}, radio.Strings(table.SensorCol))
	require.Equal(t, []float64{-80, -85, -90, -95}, radio.Floats("rxRssi"))
	require.Equal(t, []string{"ca0c", "ca0c", "4004", "4004"}, radio.Strings(table.ShortNameCol))
	require.Equal(t, []string{"rxSnr", "rxRssi"}, set.Vars("radio"))
}

func TestLoadBadFile(t *testing.T) {
	cfg := setup(t)
	err := os.WriteFile(Path(cfg, "pmsa003i"), []byte("2024-12-19 11:00:00,!a1b2ca0c,1,2,3,4,5,6\n"), 0644)
	require.NoError(t, err)

	_, err = New().Load(context.Background(), cfg)
	require.Error(t, err)
}

func TestRadioEmpty(t *testing.T) {
	cfg := setup(t)
	radio, err := Radio(cfg, table.NewSet())
	require.NoError(t, err)
	require.Nil(t, radio)
}

func TestLoadCanceled(t *testing.T) {
	cfg := setup(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New().Load(ctx, cfg)
	require.ErrorIs(t, err, context.Canceled)
}

func TestLoadNoFolder(t *testing.T) {
	cfg := setup(t)
	cfg.DataFolderPath = filepath.Join(cfg.DataFolderPath, "not-there")
	_, err := New().Load(context.Background(), cfg)
	require.ErrorIs(t, err, os.ErrNotExist)
}
