package runner

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"stackvm/internal/config"
	"stackvm/internal/demo"
	"stackvm/internal/logger"
	"stackvm/internal/trace"
	"stackvm/pkg/asm"
	"stackvm/pkg/color"
	"stackvm/pkg/image"
	"stackvm/pkg/vm"

	"github.com/charmbracelet/log"
)

// ImageExt marks files loaded as encoded images instead of assembly
const ImageExt = ".img"

type Runner struct {
	Help        bool     // Show help message
	Verbose     bool     // Enable verbose output
	NoColor     bool     // Disable colored output
	ConfigFile  string   // Explicit configuration file, searched for when empty
	Entry       string   // Entry function name, overrides the configuration
	Demo        string   // Built-in demo program to run instead of a file
	SourceFile  string   // Path to an assembly source or image file
	ImageOut    string   // Write the linked program as an image to this path
	Trace       bool     // Trace every executed instruction
	TraceFormat string   // Trace format: text or json
	TraceFile   string   // JSON trace destination
	Disassemble bool     // Print the linked program before running it
	Args        []string // Demo arguments
	Out         io.Writer

	cfg config.Config
}

// Run loads the program, executes it and prints the final stack.
// A run that does not end by returning from the entry function is an error.
func (opts *Runner) Run() error {
	if opts.Out == nil {
		opts.Out = os.Stdout
	}

	if err := opts.configure(); err != nil {
		return err
	}

	observer, closeTrace, err := opts.observer()
	if err != nil {
		return err
	}
	defer closeTrace()

	vmOpts := []vm.Option{vm.WithObserver(observer)}
	if opts.cfg.Entry != vm.DefaultEntry || opts.Entry != "" {
		vmOpts = append(vmOpts, vm.WithEntry(opts.cfg.Entry))
	}

	it, err := opts.load(vmOpts)
	if err != nil {
		return err
	}

	if opts.cfg.Output.Disassemble {
		fmt.Fprintln(opts.Out, color.GreenText("=== Linked Program ==="))
		asm.DisassembleLinked(opts.Out, it.Functions().Entries(), it.Program())
		fmt.Fprintln(opts.Out)
	}

	if path := opts.cfg.Output.Image; path != "" {
		if err := image.WriteFile(path, it); err != nil {
			return err
		}
		log.Info("Image written", "file", path)
	}

	log.Debug("Running", "entry", it.Entry(), "instructions", len(it.Program()))
	stack, runErr := it.Run()

	fmt.Fprintln(opts.Out, color.GreenText("=== Result ==="))
	fmt.Fprintf(opts.Out, "%s %s %s\n", color.CyanText("entry:"), color.BoldText(it.Entry()),
		color.GrayText(fmt.Sprintf("(%d instructions)", len(it.Program()))))
	fmt.Fprintf(opts.Out, "%s %s\n", color.CyanText("stack:"), formatStack(stack))

	if !vm.IsHalted(runErr) {
		fmt.Fprintf(opts.Out, "%s %s\n", color.CyanText("reason:"), color.RedText(runErr.Error()))
		return fmt.Errorf("execution failed: %w", runErr)
	}

	fmt.Fprintf(opts.Out, "%s %s\n", color.CyanText("reason:"), color.GreenText(vm.Halted.String()))
	return nil
}

// configure merges the configuration file with the command line flags
func (opts *Runner) configure() error {
	var err error
	if opts.ConfigFile != "" {
		opts.cfg, err = config.Load(opts.ConfigFile)
	} else {
		dir := "."
		if opts.SourceFile != "" {
			dir = filepath.Dir(opts.SourceFile)
		}
		opts.cfg, err = config.FindAndLoad(dir)
	}
	if err != nil {
		return fmt.Errorf("configuration failed: %w", err)
	}

	if opts.cfg.Path != "" {
		log.Debug("Configuration loaded", "file", opts.cfg.Path)
	}

	if opts.Entry != "" {
		opts.cfg.Entry = opts.Entry
	}
	if opts.Trace {
		opts.cfg.Trace.Enabled = true
	}
	if opts.TraceFormat != "" {
		opts.cfg.Trace.Format = opts.TraceFormat
	}
	if opts.TraceFile != "" {
		opts.cfg.Trace.File = opts.TraceFile
	}
	if opts.NoColor {
		opts.cfg.Output.NoColor = true
	}
	if opts.ImageOut != "" {
		opts.cfg.Output.Image = opts.ImageOut
	}
	if opts.Disassemble {
		opts.cfg.Output.Disassemble = true
	}

	if opts.cfg.Output.NoColor {
		color.EnableColor(false)
	}

	return opts.cfg.Validate()
}

func (opts *Runner) observer() (vm.Observer, func(), error) {
	nop := func() {}
	if !opts.cfg.Trace.Enabled {
		return vm.ObserverFuncs{}, nop, nil
	}

	if opts.cfg.Trace.Format == config.FormatJSON {
		path := opts.cfg.Trace.File
		if path == "" {
			path = "stderr"
		}

		o, err := trace.NewJSON(path)
		if err != nil {
			return nil, nop, fmt.Errorf("cannot open trace %s: %w", path, err)
		}

		return o, func() { _ = o.Sync() }, nil
	}

	l := logger.New(os.Stderr, "TRACE", log.DebugLevel, opts.cfg.Output.NoColor)
	return trace.NewLogger(l), nop, nil
}

func (opts *Runner) load(vmOpts []vm.Option) (*vm.Interpreter, error) {
	if opts.Demo != "" {
		args, err := parseArgs(opts.Args)
		if err != nil {
			return nil, err
		}

		defs, err := demo.Lookup(opts.Demo, args)
		if err != nil {
			return nil, err
		}
		log.Info("Running demo", "name", opts.Demo, "args", args)

		return link(defs, vmOpts)
	}

	if opts.SourceFile == "" {
		return nil, fmt.Errorf("no input file or demo given")
	}

	log.Info("Processing file", "file", opts.SourceFile)

	if strings.EqualFold(filepath.Ext(opts.SourceFile), ImageExt) {
		return image.ReadFile(opts.SourceFile, vmOpts...)
	}

	input, err := os.ReadFile(opts.SourceFile)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", opts.SourceFile, err)
	}

	p := asm.NewParser(asm.NewLexer(string(input)))
	p.Parse()

	syntaxErrors := p.Errors()
	if len(syntaxErrors) > 0 {
		fmt.Fprintln(opts.Out, color.BrightRedText("=== Syntax Errors ==="))
		for _, e := range syntaxErrors {
			fmt.Fprintln(opts.Out, e)
		}
		return nil, fmt.Errorf("parsing failed with %d errors", len(syntaxErrors))
	}

	return link(p.Definitions(), vmOpts)
}

func link(defs []vm.Definition, vmOpts []vm.Option) (*vm.Interpreter, error) {
	it := vm.NewInterpreter(vmOpts...)
	if err := it.Link(defs...); err != nil {
		return nil, fmt.Errorf("linking failed: %w", err)
	}

	return it, nil
}

func parseArgs(args []string) ([]vm.Literal, error) {
	out := make([]vm.Literal, 0, len(args))
	for _, a := range args {
		n, err := strconv.ParseInt(a, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("invalid argument %q: %w", a, err)
		}
		out = append(out, vm.Literal(n))
	}

	return out, nil
}

func formatStack(stack []vm.Literal) string {
	parts := make([]string, len(stack))
	for i, v := range stack {
		parts[i] = color.BlueText(strconv.Itoa(int(v)))
	}

	return "[" + strings.Join(parts, " ") + "]"
}
