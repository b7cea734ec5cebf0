package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/pkg/profile"
	"github.com/q191201771/naza/pkg/nazalog"

	"github.com/intothebridge/go-eit"
)

func main() {
	cpuProfile := flag.Bool("profile.cpu", false, "write a CPU profile to the current directory")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: %s [flags] EIT [EIT...]\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(1)
	}

	w := bufio.NewWriter(os.Stdout)
	rc := run(w, flag.Args(), *cpuProfile)
	w.Flush()
	os.Exit(rc)
}

func run(w io.Writer, files []string, cpuProfile bool) (rc int) {
	if cpuProfile {
		defer profile.Start(profile.CPUProfile, profile.ProfilePath(".")).Stop()
	}

	// More than one input wraps the documents in a JSON array
	if len(files) > 1 {
		fmt.Fprintln(w, "[")
	}
	var emitted int
	for _, fn := range files {
		b, err := os.ReadFile(fn)
		if err != nil {
			nazalog.Errorf("reading %s failed: %+v", fn, err)
			rc = 1
			continue
		}
		if len(b) > eit.MaxRecordSize {
			nazalog.Errorf("%s: %d bytes is larger than any EIT record, probably not an EIT file", fn, len(b))
			rc = 1
			continue
		}
		if emitted > 0 {
			fmt.Fprintln(w, " ,")
		}
		emitted++
		// A failed record still emits a complete document; only the exit
		// status reports the failure
		if err = eit.DecodeRecord(w, fn, b); err != nil {
			nazalog.Errorf("decoding %s failed: %+v", fn, err)
			rc = 1
		}
	}
	if len(files) > 1 {
		fmt.Fprintln(w, "]")
	}
	return rc
}
