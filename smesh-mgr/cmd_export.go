package main

import (
	"fmt"

	"github.com/gonuts/commander"
	"github.com/gonuts/flag"
	"github.com/smesh-lab/smesh/config"
	"github.com/smesh-lab/smesh/fwk"
)

func smeshMakeCmdExport() *commander.Command {
	cmd := &commander.Command{
		Run:       cmdExport,
		UsageLine: "export [options] <config.toml>",
		Short:     "export trimmed tables and moving averages as CSV",
		Long: `
export loads the sensor data described by a configuration file, trims it to
the configured datetime window and writes, for every sensor, the trimmed
table and the moving averages of each node.

ex:
 $ smesh-mgr export ./config/pepperwood.toml
 $ smesh-mgr export -o ./out -window=15m ./config/pepperwood.toml
`,
		Flag: *flag.NewFlagSet("smesh-mgr-export", flag.ExitOnError),
	}
	cmd.Flag.String("o", "export", "output directory")
	cmd.Flag.String("window", "", "moving-average window (default: MOVING_AVERAGE_WINDOW from the configuration)")
	cmd.Flag.String("driver", "", "data driver (default: DRIVER from the configuration)")
	return cmd
}

func cmdExport(cmdr *commander.Command, args []string) error {
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
	e := newExporter(cfg, ld, window, cmdr.Flag.Lookup("o").Value.Get().(string))

	app, err := fwk.New("smesh-export", ld, e)
	if err != nil {
		return err
	}
	return app.Run()
}
