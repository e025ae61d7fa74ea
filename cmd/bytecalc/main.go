// bytecalc CLI - compile and run calculator expressions on the bytecode VM
package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/tliron/commonlog"

	"github.com/bytecalc/bytecalc/compiler"
	"github.com/bytecalc/bytecalc/config"
	"github.com/bytecalc/bytecalc/history"
	"github.com/bytecalc/bytecalc/pkg/bytecode"
	"github.com/bytecalc/bytecalc/vm"

	_ "github.com/tliron/commonlog/simple"
)

var log = commonlog.GetLogger("bytecalc")

// session bundles everything a single CLI invocation needs: the resolved
// configuration, one reusable machine, and the optional history store.
type session struct {
	cfg     *config.Config
	machine *vm.Machine
	store   *history.Store
	trace   bool
	stats   bool
}

func main() {
	verbose := flag.Bool("v", false, "Verbose output")
	interactive := flag.Bool("i", false, "Start interactive REPL")
	disasm := flag.Bool("d", false, "Disassemble expressions instead of running them")
	traceFlag := flag.Bool("trace", false, "Print an execution trace after each run")
	statsFlag := flag.Bool("stats", false, "Print memory and GC statistics after each run")
	outFile := flag.String("o", "", "Compile expressions to a chunk file instead of running")
	execMode := flag.Bool("x", false, "Treat arguments as compiled chunk files and execute them")
	noHistory := flag.Bool("no-history", false, "Skip recording evaluations to the history database")
	noConfig := flag.Bool("no-config", false, "Skip loading "+config.FileName)

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: bytecalc [options] [expressions...]\n\n")
		fmt.Fprintf(os.Stderr, "Compiles calculator expressions to bytecode and runs them on a\n")
		fmt.Fprintf(os.Stderr, "garbage-collected stack machine.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  bytecalc '2 + 3 * 4'             # Evaluate an expression\n")
		fmt.Fprintf(os.Stderr, "  bytecalc -i                      # Start REPL\n")
		fmt.Fprintf(os.Stderr, "  bytecalc -d 'sum([1, 2, 3])'     # Show the bytecode listing\n")
		fmt.Fprintf(os.Stderr, "  bytecalc --trace '2^10'          # Show every executed opcode\n")
		fmt.Fprintf(os.Stderr, "  bytecalc --stats 'avg([1, 2])'   # Show memory/GC statistics\n")
		fmt.Fprintf(os.Stderr, "  bytecalc -o prog.bcc '5!'        # Compile to a chunk file\n")
		fmt.Fprintf(os.Stderr, "  bytecalc -x prog.bcc             # Run a compiled chunk file\n")
	}
	flag.Parse()

	verbosity := 0
	if *verbose {
		verbosity = 2
	}
	commonlog.Configure(verbosity, nil)

	cfg := loadConfig(*noConfig)
	if *traceFlag || cfg.Trace.Enabled {
		*traceFlag = true
	}

	s := &session{
		cfg:     cfg,
		machine: newMachine(cfg),
		trace:   *traceFlag,
		stats:   *statsFlag,
	}
	defer s.machine.Close()

	if cfg.History.Enabled && !*noHistory {
		store, err := history.Open(cfg.HistoryPath())
		if err != nil {
			log.Warningf("history disabled: %s", err.Error())
		} else {
			s.store = store
			defer store.Close()
		}
	}

	args := flag.Args()

	switch {
	case *outFile != "":
		if len(args) == 0 {
			fmt.Fprintln(os.Stderr, "Error: -o requires an expression to compile")
			os.Exit(2)
		}
		if err := compileToFile(strings.Join(args, " "), *outFile, *verbose); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

	case *execMode:
		if len(args) == 0 {
			fmt.Fprintln(os.Stderr, "Error: -x requires at least one chunk file")
			os.Exit(2)
		}
		for _, path := range args {
			if err := s.execFile(path); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
		}

	case *disasm:
		if len(args) == 0 {
			fmt.Fprintln(os.Stderr, "Error: -d requires an expression")
			os.Exit(2)
		}
		for _, expr := range args {
			chunk, err := compiler.Compile(expr)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
			fmt.Print(chunk.FormatWithHex())
		}

	case len(args) > 0 && !*interactive:
		failed := false
		for _, expr := range args {
			if err := s.eval(expr); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				failed = true
			}
		}
		if failed {
			os.Exit(1)
		}

	default:
		s.runREPL()
	}
}

// loadConfig finds the nearest bytecalc.toml, falling back to defaults on
// any problem.
func loadConfig(skip bool) *config.Config {
	if skip {
		return config.Default()
	}
	wd, err := os.Getwd()
	if err != nil {
		return config.Default()
	}
	cfg, err := config.FindAndLoad(wd)
	if err != nil {
		log.Warningf("ignoring config: %s", err.Error())
		return config.Default()
	}
	return cfg
}

func newMachine(cfg *config.Config) *vm.Machine {
	gc := vm.NewCollectorWithOptions(cfg.GC.ThresholdBytes, cfg.GC.GrowthFactor)
	return vm.NewMachineWithCollector(gc)
}

// eval compiles and runs one expression on the session machine, printing
// the result plus any requested trace or statistics output.
func (s *session) eval(expr string) error {
	chunk, err := compiler.Compile(expr)
	if err != nil {
		s.record(expr, 0, err, 0)
		return err
	}
	return s.run(expr, chunk)
}

// run executes an already-compiled chunk, attributing it to expr in the
// history database.
func (s *session) run(expr string, chunk *bytecode.Chunk) error {
	s.machine.SetTracing(s.trace)

	start := time.Now()
	result, err := s.machine.Run(chunk)
	elapsed := time.Since(start)

	if s.trace {
		fmt.Print(vm.FormatTrace(s.machine.Trace()))
	}
	if err != nil {
		s.record(expr, 0, err, elapsed)
		return err
	}

	fmt.Println(formatResult(result))
	if s.stats {
		fmt.Print(formatStats(s.machine))
	}
	s.record(expr, result, nil, elapsed)
	return nil
}

// execFile loads a compiled chunk from disk and runs it.
func (s *session) execFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	chunk, err := bytecode.UnmarshalChunk(data)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	log.Debugf("loaded %s (%d bytes of code)", path, chunk.Len())
	return s.run(path, chunk)
}

func (s *session) record(expr string, result float64, evalErr error, d time.Duration) {
	if s.store == nil {
		return
	}
	var err error
	if evalErr != nil {
		err = s.store.RecordError(expr, evalErr, d)
	} else {
		err = s.store.RecordResult(expr, result, d)
	}
	if err != nil {
		log.Warningf("history write failed: %s", err.Error())
	}
}

// compileToFile compiles an expression and writes the encoded chunk.
func compileToFile(expr, path string, verbose bool) error {
	chunk, err := compiler.Compile(expr)
	if err != nil {
		return err
	}
	data, err := bytecode.MarshalChunk(chunk)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return err
	}
	if verbose {
		fmt.Printf("Wrote %s (%d bytes, %d bytes of code)\n", path, len(data), chunk.Len())
	}
	return nil
}

func formatResult(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// formatStats renders the machine's post-run memory and GC snapshots.
func formatStats(m *vm.Machine) string {
	mem := m.MemoryStats()
	gc := m.GCStats()
	var sb strings.Builder
	fmt.Fprintf(&sb, "memory: %d allocations, %d bytes total, peak %d bytes, %d live\n",
		mem.AllocationCount, mem.TotalAllocated, mem.PeakUsage, mem.CurrentUsage)
	fmt.Fprintf(&sb, "gc:     %d collections, %d objects freed, %d bytes freed\n",
		gc.Collections, gc.TotalObjectsFreed, gc.TotalBytesFreed)
	return sb.String()
}
