// Command dispatchgen writes autogen_components.go files registering the
// annotated types of a source tree with the dispatch catalog.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/toyz/dispatch/internal/generator"
	"github.com/toyz/dispatch/internal/logging"
	"github.com/toyz/dispatch/internal/utils"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	flags := flag.NewFlagSet("dispatchgen", flag.ContinueOnError)
	flags.SetOutput(stderr)

	var (
		rootFlag    = flags.String("root", ".", "Source root holding the namespace directories")
		packageFlag = flags.String("package", "", "Root namespace to generate for, e.g. app or app.service")
		moduleFlag  = flags.String("module", "", "Custom module name for imports (defaults to go.mod module)")
		verboseFlag = flags.Bool("verbose", false, "Enable verbose output and detailed error reporting")
		quietFlag   = flags.Bool("quiet", false, "Only show errors and final results")
		cleanFlag   = flags.Bool("clean", false, "Delete all "+generator.OutputFile+" files instead of generating")
		helpFlag    = flags.Bool("help", false, "Show help information")
	)

	flags.Usage = func() {
		fmt.Fprintf(stderr, "Usage: dispatchgen [options]\n")
		fmt.Fprintf(stderr, "       dispatchgen -clean [directory-paths...]\n\n")
		fmt.Fprintf(stderr, "Dispatch Code Generator\n")
		fmt.Fprintf(stderr, "Scans a namespace for //dispatch:: annotations and registers its types with the catalog.\n\n")
		fmt.Fprintf(stderr, "Options:\n")
		flags.PrintDefaults()
		fmt.Fprintf(stderr, "\nExamples:\n")
		fmt.Fprintf(stderr, "  dispatchgen -root ./demo -package app               # Generate for app and its sub-namespaces\n")
		fmt.Fprintf(stderr, "  dispatchgen -package app -module github.com/acme/x  # Specify custom module name\n")
		fmt.Fprintf(stderr, "  dispatchgen -clean ./demo/...                       # Delete generated files recursively\n")
	}

	if err := flags.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}

	if *helpFlag {
		flags.Usage()
		return 0
	}

	var diagnostics *utils.DiagnosticSystem
	logLevel := "warn"
	switch {
	case *quietFlag:
		diagnostics = utils.NewQuietDiagnostics()
		logLevel = "error"
	case *verboseFlag:
		diagnostics = utils.NewVerboseDiagnostics()
		logLevel = "debug"
	default:
		diagnostics = utils.NewDiagnosticSystem(utils.DiagnosticInfo)
	}
	diagnostics.WithOutput(stdout, stderr)

	diagnostics.Section("Dispatch Code Generator")

	if *cleanFlag {
		dirs := flags.Args()
		if len(dirs) == 0 {
			dirs = []string{filepath.Join(*rootFlag, "...")}
		}
		diagnostics.Info("Starting cleanup operation...")

		removed, err := generator.Clean(dirs)
		for _, file := range removed {
			diagnostics.PhaseProgress("Removing " + file)
		}
		if err != nil {
			diagnostics.Error("Clean operation failed: %v", err)
			return 1
		}
		diagnostics.Success("Removed %d generated file(s)", len(removed))
		return 0
	}

	if *packageFlag == "" {
		fmt.Fprintf(stderr, "Error: -package is required\n\n")
		flags.Usage()
		return 1
	}

	logger, err := logging.New(&logging.Config{Level: logLevel, Format: "console", Output: "stderr"})
	if err != nil {
		diagnostics.Error("Failed to create logger: %v", err)
		return 1
	}
	defer func() { _ = logger.Sync() }()

	diagnostics.SourcePath(*rootFlag)
	if *verboseFlag {
		diagnostics.Subsection("Configuration")
		diagnostics.List("Root namespace: %s", *packageFlag)
		if *moduleFlag != "" {
			diagnostics.List("Custom module: %s", *moduleFlag)
		}
		diagnostics.List("Verbose mode: enabled")
	}

	gen := generator.NewGenerator(generator.NewModuleResolver(*moduleFlag), diagnostics, logger)
	summary, err := gen.Run(generator.Config{Root: *rootFlag, ScanPackage: *packageFlag})
	if err != nil {
		diagnostics.Error("Generation failed: %v", err)
		return 1
	}

	diagnostics.Summary("Generation Complete!", map[string]interface{}{
		"Packages processed": summary.PackagesProcessed,
		"Files generated":    len(summary.GeneratedFiles),
		"Controllers found":  summary.ControllersFound,
		"Services found":     summary.ServicesFound,
		"Routes found":       summary.RoutesFound,
		"Capabilities found": summary.CapabilitiesFound,
	})

	if *verboseFlag && len(summary.GeneratedFiles) > 0 {
		diagnostics.Subsection("Generated Files")
		for _, file := range summary.GeneratedFiles {
			diagnostics.List("%s", file)
		}
		diagnostics.Verbose("Generation took %s", summary.Duration)
	}

	diagnostics.GenerationComplete()
	return 0
}
