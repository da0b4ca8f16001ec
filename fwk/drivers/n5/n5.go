// Package n5 loads the CSV exports of N5 weather stations.
package n5

import (
	"fmt"

	"github.com/smesh-lab/smesh/config"
	"github.com/smesh-lab/smesh/fwk"
	"github.com/smesh-lab/smesh/table"
	"golang.org/x/net/context"
)

const (
	// Sensor is the name of the N5 table.
	Sensor = "n5"

	// StationCol holds the identifier of the station.
	StationCol = "stationID"

	timeCol = "time"
)

func init() {
	fwk.System.Register(New())
}

// Driver loads the N5 file named in the configuration.
type Driver struct {
	*fwk.Base
}

func New() *Driver {
	return &Driver{Base: fwk.NewBase(Sensor)}
}

func (drv *Driver) Load(ctx context.Context, cfg *config.Config) (*table.Set, error) {
	if cfg.N5File == "" {
		return nil, fmt.Errorf("n5: no N5_FILE in configuration")
	}
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	drv.Infof("opening N5 data [%s]...", fwk.Color(cfg.N5File))
	t, vars, err := Read(cfg.N5File)
	if err != nil {
		return nil, err
	}
	drv.Infof("opening N5 data... [ok] (rows=%d, vars=%d)", t.Len(), len(vars))

	set := table.NewSet()
	set.Add(Sensor, t, vars)
	return set, nil
}

// Read reads an N5 export. The time column is renamed to datetime and the
// station identifier doubles as the short node name.
// Read returns the table and its data variables.
func Read(fname string) (*table.Table, []string, error) {
	t, err := table.ReadFile(fname, Sensor, table.ReadOptions{
		HasHeader:  true,
		StringCols: []string{StationCol},
	})
	if err != nil {
		return nil, nil, fmt.Errorf("n5: %w", err)
	}

	names := t.Names()
	if names[0] == timeCol {
		err = t.Rename(timeCol, table.TimeCol)
		if err != nil {
			return nil, nil, fmt.Errorf("n5: %w", err)
		}
	}
	if names[0] != timeCol && names[0] != table.TimeCol {
		return nil, nil, fmt.Errorf("n5: first column is %q, want %q", names[0], timeCol)
	}

	ids := t.Strings(StationCol)
	if ids == nil {
		return nil, nil, fmt.Errorf("n5: %w %q in %q", table.ErrNoColumn, StationCol, fname)
	}
	err = t.AddString(table.ShortNameCol, append([]string(nil), ids...))
	if err != nil {
		return nil, nil, fmt.Errorf("n5: %w", err)
	}

	return t, t.FloatNames(), nil
}
