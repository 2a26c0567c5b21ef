package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/midbel/cli"
)

var errFail = errors.New("fail")

var (
	summary = "srcfacts reports source code measures from srcML documents"
	help    = ""
)

func main() {
	var (
		set  = cli.NewFlagSet("srcfacts")
		root = prepare()
	)
	root.SetSummary(summary)
	root.SetHelp(help)
	if err := set.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			root.Help()
			os.Exit(2)
		}
	}
	args := set.Args()
	if len(args) == 0 {
		// bare srcfacts filters stdin to a report
		args = []string{"report"}
	}
	err := root.Execute(args)
	if err != nil {
		if s, ok := err.(cli.SuggestionError); ok && len(s.Others) > 0 {
			fmt.Fprintln(os.Stderr, "similar command(s)")
			for _, n := range s.Others {
				fmt.Fprintln(os.Stderr, "-", n)
			}
		}
		if !errors.Is(err, errFail) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

func prepare() *cli.CommandTrie {
	root := cli.New()
	root.Register([]string{"report"}, &reportCmd)
	root.Register([]string{"scan"}, &scanCmd)
	root.Register([]string{"trace"}, &scanCmd)
	return root
}
