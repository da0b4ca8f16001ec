// smesh-mgr merges, plots and exports the logs of a sensor mesh.
package main

import (
	"log"
	"os"

	"github.com/gonuts/commander"
	"github.com/gonuts/flag"
	"github.com/smesh-lab/smesh/fwk"

	_ "github.com/smesh-lab/smesh/fwk/drivers/meshlog"
	_ "github.com/smesh-lab/smesh/fwk/drivers/n5"
)

var app *commander.Command

func init() {
	app = &commander.Command{
		UsageLine: "smesh-mgr",
		Subcommands: []*commander.Command{
			smeshMakeCmdConcat(),
			smeshMakeCmdPlot(),
			smeshMakeCmdExport(),
			smeshMakeCmdInfo(),
		},
		Flag: *flag.NewFlagSet("smesh-mgr", flag.ExitOnError),
	}
	app.Flag.Bool("v", false, "enable verbose output")
	app.Flag.Bool("no-color", false, "disable colored output")
}

func main() {
	err := app.Flag.Parse(os.Args[1:])
	if err != nil {
		log.Printf("error parsing flags: %v\n", err)
		os.Exit(1)
	}

	fwk.SetVerbose(app.Flag.Lookup("v").Value.Get().(bool))
	fwk.NoColor = app.Flag.Lookup("no-color").Value.Get().(bool)

	args := app.Flag.Args()
	err = app.Dispatch(args)
	if err != nil {
		log.Printf("error dispatching command: %v\n", err)
		os.Exit(1)
	}

	os.Exit(0)
}
