// Command dispatch boots the container from a property file and serves the
// resulting route table over HTTP.
package main

import (
	"flag"
	"fmt"
	"os"

	"go.uber.org/fx"

	"github.com/toyz/dispatch/internal/config"
)

func main() {
	var (
		configFlag = flag.String("config", config.DefaultFile, "Property file to read (scanPackage, sourceRoot, server.*, log.*)")
		helpFlag   = flag.Bool("help", false, "Show help information")
	)

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Dispatch Server\n")
		fmt.Fprintf(os.Stderr, "Scans the configured namespace, wires its components and serves their routes.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s                                 # Read ./application.properties\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -config deploy/prod.properties  # Use another property file\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  PORT=3000 %s                       # Override the listen port\n", os.Args[0])
	}
	flag.Parse()

	if *helpFlag {
		flag.Usage()
		os.Exit(0)
	}

	fx.New(Module(*configFlag)).Run()
}
