package main

import (
	"fmt"
	"runtime"

	"github.com/gonuts/commander"
	"github.com/gonuts/flag"
	"github.com/smesh-lab/smesh/concat"
	"github.com/smesh-lab/smesh/fwk"
)

func smeshMakeCmdConcat() *commander.Command {
	cmd := &commander.Command{
		Run:       cmdConcat,
		UsageLine: "concat [options] <logger> <data-dir>",
		Short:     "concatenate the chunks of a logger",
		Long: `
concat merges the CSV chunks written by a mesh logger into one file per
sensor type. Chunks are named <logger>_<sensor>_<date>.csv.

ex:
 $ smesh-mgr concat ca0c ./data/pepperwood
 $ smesh-mgr concat -o ./merged -j 2 ca0c ./data/pepperwood
`,
		Flag: *flag.NewFlagSet("smesh-mgr-concat", flag.ExitOnError),
	}
	cmd.Flag.String("o", "", "output directory (default: the data directory)")
	cmd.Flag.String("ext", ".csv", "extension of the chunks")
	cmd.Flag.Bool("no-header", false, "chunks have no header row")
	cmd.Flag.Bool("no-rename", false, "do not prefix unnamed chunks with the logger name")
	cmd.Flag.Int("j", runtime.NumCPU(), "number of sensor types merged concurrently")
	return cmd
}

func cmdConcat(cmdr *commander.Command, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf(
			"invalid number of arguments. got %d. want 2",
			len(args),
		)
	}
	logger, dir := args[0], args[1]

	out := cmdr.Flag.Lookup("o").Value.Get().(string)
	if out == "" {
		out = dir
	}

	m := concat.NewMerger(logger, dir, out)
	m.Ext = cmdr.Flag.Lookup("ext").Value.Get().(string)
	m.HasHeader = !cmdr.Flag.Lookup("no-header").Value.Get().(bool)
	m.Rename = !cmdr.Flag.Lookup("no-rename").Value.Get().(bool)
	m.Workers = cmdr.Flag.Lookup("j").Value.Get().(int)

	app, err := fwk.New("smesh-concat", m)
	if err != nil {
		return err
	}
	return app.Run()
}
