// smesh-n5 plots the variables of an N5 weather-station export.
package main

import (
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/gonuts/flag"
	"github.com/smesh-lab/smesh/fwk/drivers/n5"
	"github.com/smesh-lab/smesh/plots"
)

var (
	fname = flag.String("f", "n5_data.csv", "path to N5 data file")
	odir  = flag.String("o", ".", "output directory")
	dpi   = flag.Int("dpi", 100, "resolution of the plot")
)

func main() {
	flag.Parse()

	start := time.Now()
	t, vars, err := n5.Read(*fname)
	if err != nil {
		log.Fatalf("error reading N5 data [%s]: %v\n", *fname, err)
	}
	log.Printf("read %d rows of %d variables from [%s]\n", t.Len(), len(vars), *fname)

	fig, err := plots.TimeSeries(t, vars, nil, false)
	if err != nil {
		log.Fatalf("error plotting N5 data: %v\n", err)
	}

	err = os.MkdirAll(*odir, 0755)
	if err != nil {
		log.Fatalf("error creating output directory: %v\n", err)
	}

	out := filepath.Join(*odir, "n5_raw_data.png")
	err = fig.Save(out, *dpi)
	if err != nil {
		log.Fatalf("error saving plot: %v\n", err)
	}
	log.Printf("plotting [%s]... [ok] (time=%v)\n", out, time.Since(start))
}
