package n5

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

const data = `time,stationID,temperature,humidity
2025-01-07 17:31:26,87,3.5,80
2025-01-07 17:41:26,87,3.1,82
2025-01-07 17:51:26,13,2.9,
`

func TestRead(t *testing.T) {
	fname := filepath.Join(t.TempDir(), "n5.csv")
	require.NoError(t, os.WriteFile(fname, []byte(data), 0644))

	tbl, vars, err := Read(fname)
	require.NoError(t, err)
	require.Equal(t, 3, tbl.Len())
	require.Equal(t, []string{"temperature", "humidity"}, vars)
	require.True(t, tbl.Has(table.TimeCol))
	require.Equal(t, []string{"87", "87", "13"}, tbl.Strings(table.ShortNameCol))
	require.False(t, tbl.Times(table.TimeCol)[0].IsZero())
}

func TestReadBadHeader(t *testing.T) {
	fname := filepath.Join(t.TempDir(), "n5.csv")
	require.NoError(t, os.WriteFile(fname, []byte("when,stationID,x\n2025-01-07 17:31:26,87,3.5\n"), 0644))
	_, _, err := Read(fname)
	require.Error(t, err)
}

func TestDriver(t *testing.T) {
	drv, err := fwk.System.Driver(Sensor)
	require.NoError(t, err)

	fname := filepath.Join(t.TempDir(), "n5.csv")
	require.NoError(t, os.WriteFile(fname, []byte(data), 0644))

	cfg, err := config.Decode(strings.NewReader(fmt.Sprintf(`
[SENSOR_CONFIG]
BASE_HEADERS = ["datetime", "from_node"]
NETWORK_HEADERS = []
[SENSOR_CONFIG.SENSOR_HEADERS]
n5 = []
[IO_CONFIG]
DATAFOLDERPATH = "."
LOGGER = "n5"
DRIVER = "n5"
N5_FILE = %q
[PLOTTING_CONFIG]
PLOTFOLDERPATH = "plots"
`, fname)))
	require.NoError(t, err)

	set, err := drv.Load(context.Background(), cfg)
	require.NoError(t, err)
	require.Equal(t, []string{Sensor}, set.Names())
	require.Equal(t, []string{"temperature", "humidity"}, set.Vars(Sensor))

	cfg.N5File = ""
	_, err = drv.Load(context.Background(), cfg)
	require.Error(t, err)
}
