// Package meshlog loads the per-sensor CSV files of a mesh logger and
// rebuilds the radio table from the network columns every sensor carries.
package meshlog

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/smesh-lab/smesh/config"
	"github.com/smesh-lab/smesh/fwk"
	"github.com/smesh-lab/smesh/table"
	"golang.org/x/net/context"
)

func init() {
	fwk.System.Register(New())
}

// Driver loads mesh-logger data.
type Driver struct {
	*fwk.Base
}

func New() *Driver {
	return &Driver{Base: fwk.NewBase("meshlog")}
}

// Path returns the location of the merged data of a sensor.
func Path(cfg *config.Config, sensor string) string {
	return filepath.Join(cfg.DataFolderPath, cfg.Logger+"_"+sensor+cfg.Extension)
}

// Load reads the data of every configured sensor.
// Sensors without a data file are skipped with a warning.
func (drv *Driver) Load(ctx context.Context, cfg *config.Config) (*table.Set, error) {
	fi, err := os.Stat(cfg.DataFolderPath)
	if err != nil {
		return nil, fmt.Errorf("meshlog: no data folder: %w", err)
	}
	if !fi.IsDir() {
		return nil, fmt.Errorf("meshlog: data folder %q is not a directory", cfg.DataFolderPath)
	}

	set := table.NewSet()
	for _, sensor := range cfg.SensorNames {
		if sensor == config.Radio {
			continue
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		fname := Path(cfg, sensor)
		drv.Infof("opening data for [%s]...", fwk.Color(sensor))
		_, err := os.Stat(fname)
		if err != nil {
			if os.IsNotExist(err) {
				drv.Warnf("no data for [%s] (file=%s)", sensor, fname)
				continue
			}
			return nil, err
		}

		t, err := ReadSensor(cfg, sensor, fname)
		if err != nil {
			return nil, err
		}
		drv.Infof("opening data for [%s]... [ok] (rows=%d)", fwk.Color(sensor), t.Len())
		set.Add(sensor, t, cfg.Vars(sensor))
	}

	if !cfg.HasRadio() {
		return set, nil
	}

	drv.Infof("reformatting data for [%s]...", fwk.Color(config.Radio))
	radio, err := Radio(cfg, set)
	if err != nil {
		return nil, err
	}
	if radio == nil {
		drv.Warnf("no sensor data to build the [%s] table from", config.Radio)
		return set, nil
	}
	set.Add(config.Radio, radio, cfg.RadioVars())
	drv.Infof("reformatting data for [%s]... [ok] (rows=%d)", fwk.Color(config.Radio), radio.Len())
	return set, nil
}

// ReadSensor reads the data file of a sensor, names its columns after the
// configured headers and adds the short node name.
func ReadSensor(cfg *config.Config, sensor, fname string) (*table.Table, error) {
	hdrs, ok := cfg.FullDataHeaders[sensor]
	if !ok {
		return nil, fmt.Errorf("meshlog: unknown sensor %q", sensor)
	}
	t, err := table.ReadFile(fname, sensor, table.ReadOptions{
		Headers:    hdrs,
		HasHeader:  cfg.DataHasHeader,
		StringCols: []string{table.NodeCol},
	})
	if err != nil {
		return nil, fmt.Errorf("meshlog: %w", err)
	}
	err = table.AddShortName(t)
	if err != nil {
		return nil, fmt.Errorf("meshlog: %w", err)
	}
	return t, nil
}

// Radio gathers the network columns of every loaded sensor, in
// configuration order, into one table sorted by datetime.
// Each row records the sensor it comes from. Radio returns nil when no
// sensor table is loaded.
func Radio(cfg *config.Config, set *table.Set) (*table.Table, error) {
	hdrs := cfg.FullDataHeaders[config.Radio]
	if len(hdrs) == 0 {
		hdrs = append(append([]string(nil), cfg.BaseHeaders...), cfg.RadioVars()...)
	}

	var parts []*table.Table
	for _, sensor := range cfg.SensorNames {
		if sensor == config.Radio {
			continue
		}
		t := set.Table(sensor)
		if t == nil {
			continue
		}
		part, err := t.Select(hdrs...)
		if err != nil {
			return nil, fmt.Errorf("meshlog: could not extract radio data from %q: %w", sensor, err)
		}
		src := make([]string, part.Len())
		for i := range src {
			src[i] = sensor
		}
		err = part.AddString(table.SensorCol, src)
		if err != nil {
			return nil, fmt.Errorf("meshlog: %w", err)
		}
		parts = append(parts, part)
	}
	if len(parts) == 0 {
		return nil, nil
	}

	radio, err := table.Concat(config.Radio, parts...)
	if err != nil {
		return nil, fmt.Errorf("meshlog: %w", err)
	}
	radio, err = radio.SortByTime(table.TimeCol)
	if err != nil {
		return nil, fmt.Errorf("meshlog: %w", err)
	}
	err = table.AddShortName(radio)
	if err != nil {
		return nil, fmt.Errorf("meshlog: %w", err)
	}
	return radio, nil
}
