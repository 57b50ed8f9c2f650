package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"stackvm/internal/config"
	"stackvm/internal/demo"
	"stackvm/internal/logger"
	"stackvm/internal/runner"
	"stackvm/pkg/color"

	"github.com/charmbracelet/log"
)

// Main entry point for the stackvm interpreter.
func main() {
	options := runner.Runner{}

	flag.BoolVar(&options.Help, "h", false, "Show help")
	flag.BoolVar(&options.Verbose, "v", false, "Verbose mode")
	flag.BoolVar(&options.NoColor, "n", false, "No color")
	flag.StringVar(&options.ConfigFile, "c", "", "Configuration file (default: nearest "+config.FileName+")")
	flag.StringVar(&options.Entry, "e", "", "Entry function (default: main)")
	flag.StringVar(&options.ImageOut, "o", "", "Write the linked program as an image")
	flag.BoolVar(&options.Trace, "t", false, "Trace every executed instruction")
	flag.StringVar(&options.TraceFormat, "trace-format", "", "Trace format (text, json)")
	flag.StringVar(&options.TraceFile, "trace-file", "", "JSON trace destination (default: stderr)")
	flag.BoolVar(&options.Disassemble, "d", false, "Print the linked program before running")
	flag.StringVar(&options.Demo, "demo", "", "Run a built-in program ("+strings.Join(demo.Names(), ", ")+")")

	flag.Parse()
	args := flag.Args()

	logger.Init(options.Verbose, options.NoColor)
	if options.Help {
		fmt.Printf("Usage: %s [options] <file.asm|file.img>\n", os.Args[0])
		fmt.Printf("       %s [options] -demo <name> [args...]\n", os.Args[0])
		fmt.Println("Options:")
		flag.PrintDefaults()
		return
	}

	if options.NoColor {
		color.EnableColor(false)
	}

	if options.Demo != "" {
		options.Args = args
	} else {
		if len(args) == 0 {
			log.Fatal("No input file provided", "help", fmt.Sprintf("%s -h", os.Args[0]))
		}
		options.SourceFile = args[0]
	}

	if err := options.Run(); err != nil {
		log.Fatal("Run failed", "error", err)
	}
}
