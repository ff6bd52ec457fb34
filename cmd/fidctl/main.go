// fidctl is a small command-line client for appending to and querying a
// named FID series out of a store config file.
package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/navi-cx/fid/fid"
	"github.com/navi-cx/fid/store"
)

func usage() {
	fmt.Fprintln(os.Stderr, "usage: fidctl <config.yaml> append <series> <sample>...")
	fmt.Fprintln(os.Stderr, "       fidctl <config.yaml> query <series> <key>...")
}

func main() {
	if len(os.Args) < 4 {
		usage()
		os.Exit(2)
	}

	cfgPath, verb, series, rest := os.Args[1], os.Args[2], os.Args[3], os.Args[4:]

	cfgFile, err := os.Open(cfgPath)
	if err != nil {
		fatal(err)
	}
	cfg, err := store.LoadConfig(cfgFile)
	cfgFile.Close()
	if err != nil {
		fatal(err)
	}

	var sc *store.SeriesConfig
	for i := range cfg.Series {
		if cfg.Series[i].Name == series {
			sc = &cfg.Series[i]
			break
		}
	}
	if sc == nil {
		fatal(fmt.Errorf("fidctl: no series %q in %s", series, cfgPath))
	}

	values, err := parseInts(rest)
	if err != nil {
		fatal(err)
	}

	switch verb {
	case "append":
		runAppend(sc, values)
	case "query":
		runQuery(sc, values)
	default:
		usage()
		os.Exit(2)
	}
}

func parseInts(args []string) ([]int64, error) {
	out := make([]int64, len(args))
	for i, a := range args {
		v, err := strconv.ParseInt(a, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("fidctl: %q is not an integer", a)
		}
		out[i] = v
	}
	return out, nil
}

func runAppend(sc *store.SeriesConfig, values []int64) {
	f, unlock, err := openLocked(sc.Path)
	if err != nil {
		fatal(err)
	}
	defer unlock()

	if err := fid.AppendSamples(f, sc.PageSize, values); err != nil {
		fatal(err)
	}
	fmt.Printf("appended %s to %s\n", formatCount(len(values)), sc.Name)
}

func runQuery(sc *store.SeriesConfig, values []int64) {
	f, unlock, err := openLocked(sc.Path)
	if err != nil {
		fatal(err)
	}
	defer unlock()

	results, err := fid.QuerySamples(f, sc.PageSize, values)
	if err != nil {
		fatal(err)
	}
	for i, k := range values {
		fmt.Printf("%d -> %d\n", k, results[i])
	}
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, "fidctl:", err)
	os.Exit(1)
}
