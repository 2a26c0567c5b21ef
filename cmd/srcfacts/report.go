package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/midbel/cli"

	"github.com/midbel/srcfacts/report"
	"github.com/midbel/srcfacts/srcml"
)

var reportCmd = cli.Command{
	Name:    "report",
	Summary: "scan a srcML document and print its source measures",
	Handler: &ReportCmd{},
}

type ReportCmd struct {
	BufferSize int
}

func (c *ReportCmd) Run(args []string) error {
	set := flag.NewFlagSet("report", flag.ContinueOnError)
	set.IntVar(&c.BufferSize, "buffer-size", 0, "capacity of the scan window in bytes")
	if err := set.Parse(args); err != nil {
		return err
	}
	r, err := openInput(set.Arg(0))
	if err != nil {
		return err
	}
	defer r.Close()

	scan := srcml.NewScannerSize(r, c.BufferSize)
	return runScan(scan)
}

// runScan drives one full scan and renders the report. Parser and read
// errors print a single diagnostic line; errFail keeps main from
// printing it twice.
func runScan(scan *srcml.Scanner) error {
	now := time.Now()
	if err := scan.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "parser error : %s\n", err)
		return errFail
	}
	elapsed := time.Since(now)
	if err := report.Render(os.Stdout, snapshot(scan)); err != nil {
		return err
	}
	report.Timing(os.Stderr, elapsed, scan.Facts.LOC)
	return nil
}

func snapshot(scan *srcml.Scanner) report.Report {
	facts := scan.Facts
	return report.Report{
		URL:          facts.URL,
		TotalBytes:   scan.TotalBytes(),
		Characters:   facts.TextSize,
		Files:        facts.Files(),
		LOC:          facts.LOC,
		Classes:      facts.Classes,
		Functions:    facts.Functions,
		Declarations: facts.Decls,
		Expressions:  facts.Exprs,
		Comments:     facts.Comments,
	}
}

func openInput(file string) (io.ReadCloser, error) {
	if file == "" || file == "-" {
		return io.NopCloser(os.Stdin), nil
	}
	return os.Open(file)
}
