// Package config loads the TOML description of a sensor-mesh deployment:
// sensor schemas, data and plot folders, time bounds and plot options.
package config

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// DatetimeFormat is the layout of the datetimes of the configuration file.
const DatetimeFormat = "2006-01-02 15:04:05"

// Radio is the name of the synthetic sensor gathering the network headers.
const Radio = "radio"

const (
	defaultDPI    = 100
	defaultExt    = ".csv"
	defaultDriver = "meshlog"
	defaultWindow = time.Hour
)

// Config describes a deployment and how to plot it.
type Config struct {
	// BaseHeaders are common to all sensor data: the datetime and the
	// node the data is from.
	BaseHeaders []string

	// NetworkHeaders are the mesh-network signal metrics.
	NetworkHeaders []string

	// SensorHeaders are the data columns of each sensor.
	SensorHeaders map[string][]string

	// SensorNames lists the sensors in configuration file order.
	SensorNames []string

	// FullDataHeaders are BaseHeaders + SensorHeaders[s] + NetworkHeaders.
	FullDataHeaders map[string][]string

	DataFolderPath string
	Logger         string // last 4 characters of the logger id
	Extension      string
	DataHasHeader  bool
	Driver         string
	N5File         string

	PlotFolderPath string
	DPI            int
	LogYNames      []string
	IntervalBounds map[string][2]float64
	Window         time.Duration

	// Start and End bound the analysed data. A zero value means unset.
	Start time.Time
	End   time.Time

	EventDatetimes []time.Time
}

type tomlFile struct {
	Sensor struct {
		Base    []string            `toml:"BASE_HEADERS"`
		Network []string            `toml:"NETWORK_HEADERS"`
		Sensors map[string][]string `toml:"SENSOR_HEADERS"`
	} `toml:"SENSOR_CONFIG"`

	IO struct {
		DataFolder string `toml:"DATAFOLDERPATH"`
		Logger     string `toml:"LOGGER"`
		Start      string `toml:"START_DATETIME"`
		End        string `toml:"END_DATETIME"`
		Extension  string `toml:"EXTENSION"`
		HasHeader  bool   `toml:"DATA_HAS_HEADER"`
		Driver     string `toml:"DRIVER"`
		N5File     string `toml:"N5_FILE"`
	} `toml:"IO_CONFIG"`

	Plot struct {
		Folder    string               `toml:"PLOTFOLDERPATH"`
		DPI       int                  `toml:"DPI"`
		LogY      []string             `toml:"LOG_Y_NAMES"`
		Intervals map[string][]float64 `toml:"INTERVAL_BOUNDS"`
		Window    string               `toml:"MOVING_AVERAGE_WINDOW"`
	} `toml:"PLOTTING_CONFIG"`

	Events struct {
		Datetimes []string `toml:"EVENT_DATETIMES"`
	} `toml:"EVENTS_CONFIG"`
}

// Load reads and validates the configuration file at path.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	cfg, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%w (file=%s)", err, path)
	}
	return cfg, nil
}

// Decode reads and validates a TOML configuration.
func Decode(r io.Reader) (*Config, error) {
	var raw tomlFile
	md, err := toml.NewDecoder(r).Decode(&raw)
	if err != nil {
		return nil, fmt.Errorf("config: could not decode TOML: %w", err)
	}

	for _, key := range []string{
		"SENSOR_CONFIG.BASE_HEADERS",
		"SENSOR_CONFIG.NETWORK_HEADERS",
		"SENSOR_CONFIG.SENSOR_HEADERS",
		"IO_CONFIG.DATAFOLDERPATH",
		"IO_CONFIG.LOGGER",
		"PLOTTING_CONFIG.PLOTFOLDERPATH",
	} {
		if !md.IsDefined(strings.Split(key, ".")...) {
			return nil, fmt.Errorf("config: missing required key %s", key)
		}
	}

	cfg := &Config{
		BaseHeaders:    raw.Sensor.Base,
		NetworkHeaders: raw.Sensor.Network,
		SensorHeaders:  raw.Sensor.Sensors,
		DataFolderPath: raw.IO.DataFolder,
		Logger:         raw.IO.Logger,
		Extension:      raw.IO.Extension,
		DataHasHeader:  raw.IO.HasHeader,
		Driver:         raw.IO.Driver,
		N5File:         raw.IO.N5File,
		PlotFolderPath: raw.Plot.Folder,
		DPI:            raw.Plot.DPI,
		LogYNames:      raw.Plot.LogY,
		IntervalBounds: make(map[string][2]float64, len(raw.Plot.Intervals)),
		Window:         defaultWindow,
	}

	// sensor order follows the file.
	for _, key := range md.Keys() {
		if len(key) == 3 && key[0] == "SENSOR_CONFIG" && key[1] == "SENSOR_HEADERS" {
			cfg.SensorNames = append(cfg.SensorNames, key[2])
		}
	}

	for sensor, bounds := range raw.Plot.Intervals {
		if len(bounds) != 2 {
			return nil, fmt.Errorf(
				"config: INTERVAL_BOUNDS.%s needs 2 values (got %d)",
				sensor, len(bounds),
			)
		}
		cfg.IntervalBounds[sensor] = [2]float64{bounds[0], bounds[1]}
	}

	if raw.Plot.Window != "" {
		cfg.Window, err = time.ParseDuration(raw.Plot.Window)
		if err != nil {
			return nil, fmt.Errorf("config: invalid MOVING_AVERAGE_WINDOW: %w", err)
		}
	}

	cfg.Start, err = ParseTime(raw.IO.Start)
	if err != nil {
		return nil, fmt.Errorf("config: invalid START_DATETIME: %w", err)
	}
	cfg.End, err = ParseTime(raw.IO.End)
	if err != nil {
		return nil, fmt.Errorf("config: invalid END_DATETIME: %w", err)
	}
	for _, s := range raw.Events.Datetimes {
		t, err := ParseTime(s)
		if err != nil {
			return nil, fmt.Errorf("config: invalid EVENT_DATETIMES entry: %w", err)
		}
		if t.IsZero() {
			continue
		}
		cfg.EventDatetimes = append(cfg.EventDatetimes, t)
	}

	cfg.setDefaults()
	err = cfg.Validate()
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// ParseTime parses a configuration datetime. The empty string yields the
// zero time.
func ParseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(DatetimeFormat, s)
}

func (cfg *Config) setDefaults() {
	if cfg.DPI <= 0 {
		cfg.DPI = defaultDPI
	}
	if cfg.Extension == "" {
		cfg.Extension = defaultExt
	}
	if cfg.Driver == "" {
		cfg.Driver = defaultDriver
	}
	if cfg.Window == 0 {
		cfg.Window = defaultWindow
	}
	if cfg.SensorHeaders == nil {
		cfg.SensorHeaders = make(map[string][]string)
	}
	if cfg.IntervalBounds == nil {
		cfg.IntervalBounds = make(map[string][2]float64)
	}
	cfg.FullDataHeaders = make(map[string][]string, len(cfg.SensorNames))
	for _, sensor := range cfg.SensorNames {
		var hdrs []string
		hdrs = append(hdrs, cfg.BaseHeaders...)
		if sensor == Radio {
			// the radio table only carries the network columns.
			hdrs = append(hdrs, cfg.RadioVars()...)
			cfg.FullDataHeaders[sensor] = hdrs
			continue
		}
		hdrs = append(hdrs, cfg.SensorHeaders[sensor]...)
		hdrs = append(hdrs, cfg.NetworkHeaders...)
		cfg.FullDataHeaders[sensor] = hdrs
	}
}

// Validate checks the consistency of the configuration.
func (cfg *Config) Validate() error {
	if len(cfg.BaseHeaders) == 0 || cfg.BaseHeaders[0] != "datetime" {
		return fmt.Errorf(
			"config: BASE_HEADERS must start with %q (got %v)",
			"datetime", cfg.BaseHeaders,
		)
	}
	if len(cfg.SensorNames) == 0 {
		return fmt.Errorf("config: no sensor in SENSOR_HEADERS")
	}
	seen := make(map[string]bool, len(cfg.SensorNames))
	for _, s := range cfg.SensorNames {
		if s == "" {
			return fmt.Errorf("config: empty sensor name")
		}
		if seen[s] {
			return fmt.Errorf("config: duplicate sensor %q", s)
		}
		seen[s] = true
		if _, ok := cfg.SensorHeaders[s]; !ok {
			return fmt.Errorf("config: sensor %q has no headers", s)
		}
	}
	for sensor, b := range cfg.IntervalBounds {
		if !(b[0] < b[1]) {
			return fmt.Errorf(
				"config: INTERVAL_BOUNDS.%s must satisfy min < max (got %v)",
				sensor, b,
			)
		}
	}
	if cfg.Window <= 0 {
		return fmt.Errorf("config: moving-average window must be positive (got %v)", cfg.Window)
	}
	if cfg.Trimmed() && cfg.Start.After(cfg.End) {
		return fmt.Errorf(
			"config: START_DATETIME (%s) is after END_DATETIME (%s)",
			cfg.Start.Format(DatetimeFormat), cfg.End.Format(DatetimeFormat),
		)
	}
	if cfg.DPI <= 0 {
		return fmt.Errorf("config: invalid DPI %d", cfg.DPI)
	}
	return nil
}

// Trimmed reports whether both datetime bounds are set.
func (cfg *Config) Trimmed() bool {
	return !cfg.Start.IsZero() && !cfg.End.IsZero()
}

// HasRadio reports whether the synthetic radio table is requested.
func (cfg *Config) HasRadio() bool {
	for _, s := range cfg.SensorNames {
		if s == Radio {
			return true
		}
	}
	return false
}

// Vars returns the analysed variables of a sensor.
func (cfg *Config) Vars(sensor string) []string {
	if sensor == Radio {
		return cfg.RadioVars()
	}
	return cfg.SensorHeaders[sensor]
}

// RadioVars returns the variables of the radio table: its own sensor
// headers when given, the network headers otherwise.
func (cfg *Config) RadioVars() []string {
	if vs := cfg.SensorHeaders[Radio]; len(vs) > 0 {
		return vs
	}
	return cfg.NetworkHeaders
}

// IsLogY reports whether the sensor is also plotted on a log scale.
func (cfg *Config) IsLogY(sensor string) bool {
	for _, s := range cfg.LogYNames {
		if s == sensor {
			return true
		}
	}
	return false
}

// Default returns the configuration of the pepperwood deployment,
// whose logs carry no header row.
func Default() *Config {
	cfg := &Config{
		BaseHeaders:    []string{"datetime", "from_node"},
		NetworkHeaders: []string{"rxSnr", "hopLimit", "rxRssi", "hopStart"},
		SensorHeaders: map[string][]string{
			"device_metrics": {"batteryLevel", "voltage", "channelUtilization", "airUtilTx"},
			"bme688":         {"temperature", "relativeHumidity", "barometricPressure", "gasResistance", "iaq"},
			"ina260":         {"ch3Voltage", "ch3Current"},
			"pmsa003i": {
				"pm10Standard", "pm25Standard", "pm100Standard",
				"pm10Environmental", "pm25Environmental", "pm100Environmental",
			},
		},
		SensorNames:    []string{"device_metrics", "bme688", "ina260", "pmsa003i"},
		DataFolderPath: "data",
		PlotFolderPath: "plots",
		LogYNames:      []string{"pmsa003i"},
	}
	cfg.setDefaults()
	return cfg
}
