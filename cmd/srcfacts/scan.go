package main

import (
	"flag"
	"fmt"
	"strings"

	"github.com/midbel/cli"
	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"

	"github.com/midbel/srcfacts/srcml"
)

var scanCmd = cli.Command{
	Name:    "scan",
	Alias:   []string{"trace"},
	Summary: "scan a srcML document logging every construct",
	Handler: &ScanCmd{},
}

type ScanCmd struct {
	Verbose    int
	BufferSize int
}

func (c *ScanCmd) Run(args []string) error {
	set := flag.NewFlagSet("scan", flag.ContinueOnError)
	set.IntVar(&c.Verbose, "v", 1, "log verbosity")
	set.IntVar(&c.BufferSize, "buffer-size", 0, "capacity of the scan window in bytes")
	if err := set.Parse(args); err != nil {
		return err
	}
	commonlog.Configure(c.Verbose, nil)
	log := commonlog.GetLogger("srcfacts.scan")

	r, err := openInput(set.Arg(0))
	if err != nil {
		return err
	}
	defer r.Close()

	scan := srcml.NewScannerSize(r, c.BufferSize)
	scan.Trace = func(event string, pairs ...string) {
		var sb strings.Builder
		for i := 0; i+1 < len(pairs); i += 2 {
			if sb.Len() > 0 {
				sb.WriteByte(' ')
			}
			fmt.Fprintf(&sb, "%s=%q", pairs[i], pairs[i+1])
		}
		log.Infof("%s %s", event, sb.String())
	}
	return runScan(scan)
}
