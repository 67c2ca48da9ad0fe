// Command-line interface to the voxstore conversion pipeline.  Converts each
// series under the raw root into a chunked compressed store plus a JSON
// sidecar, then reconstructs a slice directory from the pair.

package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/hammb/voxstore/convert"
	"github.com/hammb/voxstore/series/rawvol"
	"github.com/hammb/voxstore/voxstore"
)

var (
	// Display usage if true.
	showHelp = flag.Bool("help", false, "")

	// Run in verbose mode if true.
	runVerbose = flag.Bool("verbose", false, "")

	// Path to a TOML config file.  Leave unset for the conventional ./data layout.
	configFile = flag.String("config", "", "")

	// Process only the named series instead of the whole raw root.
	onlySeries = flag.String("series", "", "")
)

const helpMessage = `
voxstore converts slice-image series into chunked compressed stores and back

Usage: voxstore [options]

      -config     =string   Path to TOML config file.  Leave unset for ./data defaults.
      -series     =string   Process only this series id.
      -verbose    (flag)    Run in verbose mode.
  -h, -help       (flag)    Show help message
`

func main() {
	flag.BoolVar(showHelp, "h", false, "")
	flag.Usage = func() {
		fmt.Print(helpMessage)
	}
	flag.Parse()

	if *showHelp {
		flag.Usage()
		os.Exit(0)
	}
	if *runVerbose {
		voxstore.Verbose = true
		voxstore.SetLogMode(voxstore.DebugMode)
	}

	cfg := convert.DefaultConfig("data")
	if *configFile != "" {
		var err error
		cfg, err = convert.LoadConfig(*configFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			os.Exit(1)
		}
	}
	cfg.Logging.SetLogger()
	defer voxstore.LogShutdown()

	pipeline, err := convert.NewPipeline(cfg, rawvol.New())
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	var results []convert.SeriesResult
	if *onlySeries != "" {
		results = []convert.SeriesResult{pipeline.ProcessSeries(*onlySeries)}
	} else {
		results, err = pipeline.Run()
		if err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			os.Exit(1)
		}
	}

	var ok, skipped, failed int
	for _, r := range results {
		switch r.Status {
		case convert.StatusOK:
			ok++
			for _, outcome := range r.Slices {
				if outcome.Err != nil {
					fmt.Printf("series %s: slice %d failed: %v\n", r.ID, outcome.Index, outcome.Err)
				}
			}
		case convert.StatusSkipped:
			skipped++
		case convert.StatusFailed:
			failed++
			fmt.Printf("series %s failed: %v\n", r.ID, r.Err)
		}
	}
	fmt.Printf("%d series ok, %d skipped, %d failed\n", ok, skipped, failed)
	if failed > 0 {
		os.Exit(1)
	}
}
