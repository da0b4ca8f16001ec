package main

import (
	"fmt"
	"runtime"
	"time"

	"github.com/gonuts/commander"
	"github.com/gonuts/flag"
	"github.com/smesh-lab/smesh/config"
	"github.com/smesh-lab/smesh/fwk"
)

func smeshMakeCmdPlot() *commander.Command {
	cmd := &commander.Command{
		Run:       cmdPlot,
		UsageLine: "plot [options] <config.toml>",
		Short:     "plot the sensor data of a deployment",
		Long: `
plot loads the sensor data described by a configuration file, trims it to
the configured datetime window and saves the diagnostic plots of every
sensor under PLOTFOLDERPATH.

ex:
 $ smesh-mgr plot ./config/pepperwood.toml
 $ smesh-mgr plot -window=30m -j 2 ./config/pepperwood.toml
 $ smesh-mgr plot -driver=n5 ./config/n5.toml
`,
		Flag: *flag.NewFlagSet("smesh-mgr-plot", flag.ExitOnError),
	}
	cmd.Flag.String("driver", "", "data driver (default: DRIVER from the configuration)")
	cmd.Flag.String("window", "", "moving-average window (default: MOVING_AVERAGE_WINDOW from the configuration)")
	cmd.Flag.Int("j", runtime.NumCPU(), "number of sensors plotted concurrently")
	return cmd
}

func cmdPlot(cmdr *commander.Command, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf(
			"invalid number of arguments. got %d. want 1",
			len(args),
		)
	}

	cfg, err := config.Load(args[0])
	if err != nil {
		return err
	}
	window, err := windowFlag(cmdr, cfg)
	if err != nil {
		return err
	}

	ld := newLoader(cfg, cmdr.Flag.Lookup("driver").Value.Get().(string))
	r := newRenderer(cfg, ld, window, cmdr.Flag.Lookup("j").Value.Get().(int))

	app, err := fwk.New("smesh-plot", ld, r)
	if err != nil {
		return err
	}
	return app.Run()
}

// windowFlag returns the moving-average window of the -window flag, or the
// configured one.
func windowFlag(cmdr *commander.Command, cfg *config.Config) (time.Duration, error) {
	v := cmdr.Flag.Lookup("window").Value.Get().(string)
	if v == "" {
		return cfg.Window, nil
	}
	w, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid -window: %w", err)
	}
	if w <= 0 {
		return 0, fmt.Errorf("invalid -window %v: must be positive", w)
	}
	return w, nil
}
