package main

import (
	"fmt"
	"os"

	"github.com/gonuts/commander"
	"github.com/gonuts/flag"
	"github.com/smesh-lab/smesh/config"
	"github.com/smesh-lab/smesh/fwk"
)

func smeshMakeCmdInfo() *commander.Command {
	cmd := &commander.Command{
		Run:       cmdInfo,
		UsageLine: "info [options] <config.toml>",
		Short:     "summarize the sensor data of a deployment",
		Long: `
info loads the sensor data described by a configuration file and prints,
for every sensor, its number of rows, its time span and the median interval
between the readings of each node.

ex:
 $ smesh-mgr info ./config/pepperwood.toml
`,
		Flag: *flag.NewFlagSet("smesh-mgr-info", flag.ExitOnError),
	}
	cmd.Flag.String("driver", "", "data driver (default: DRIVER from the configuration)")
	return cmd
}

func cmdInfo(cmdr *commander.Command, args []string) error {
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

	ld := newLoader(cfg, cmdr.Flag.Lookup("driver").Value.Get().(string))
	app, err := fwk.New("smesh-info", ld, newSummary(ld, os.Stdout))
	if err != nil {
		return err
	}
	return app.Run()
}
