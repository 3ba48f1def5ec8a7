package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/pflag"
)

const version = "1.0.0"

func main() {
	os.Exit(runCLI(os.Args[1:]))
}

func runCLI(args []string) int {
	if len(args) < 1 {
		printUsage()
		return 1
	}

	var err error
	switch args[0] {
	case "run":
		err = parseRun(args[1:])
	case "report":
		err = parseReport(args[1:])
	case "version", "--version", "-v":
		fmt.Printf("cdpmock version %s\n", version)
		return 0
	case "help", "--help", "-h":
		printUsage()
		return 0
	default:
		err = fmt.Errorf("unknown command: %s", args[0])
	}

	if err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func printUsage() {
	fmt.Fprint(os.Stderr, `Usage: cdpmock <command> [options]

Intercept network traffic of a running Chrome through the DevTools protocol:
matching requests get mocked responses, the test server passes through, every
other request is answered with an empty body and logged.

Commands:
  run      Attach to Chrome and intercept until interrupted
  report   Print blocked requests recorded in the journal
  version  Print version

Use "cdpmock <command> --help" for more information.
`)
}
