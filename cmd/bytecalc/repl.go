package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/bytecalc/bytecalc/compiler"
	"github.com/bytecalc/bytecalc/vm"
)

// replState carries REPL-only state on top of the session: the last
// recorded trace for :step navigation and the last input for :disasm.
type replState struct {
	*session
	lastInput string
	lastTrace []vm.Step
	stepPos   int
}

// runREPL starts an interactive read-eval-print loop on stdin.
func (s *session) runREPL() {
	fmt.Println("bytecalc REPL (type 'exit' to quit, ':help' for commands)")
	fmt.Println()

	r := &replState{session: s}
	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Print(">> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())

		if line == "" {
			continue
		}
		if line == "exit" || line == "quit" {
			break
		}
		if strings.HasPrefix(line, ":") {
			r.handleCommand(line)
			continue
		}

		r.evalLine(line)
	}

	fmt.Println()
}

// evalLine evaluates one expression, keeping the trace for :step replay.
// Every REPL run is traced so :step works after the fact; the listing is
// only printed when tracing was requested.
func (r *replState) evalLine(input string) {
	r.lastInput = input

	chunk, err := compiler.Compile(input)
	if err != nil {
		r.lastTrace = r.lastTrace[:0]
		r.record(input, 0, err, 0)
		fmt.Printf("Error: %v\n", err)
		return
	}

	r.machine.SetTracing(true)
	start := time.Now()
	result, err := r.machine.Run(chunk)
	elapsed := time.Since(start)

	r.lastTrace = append(r.lastTrace[:0], r.machine.Trace()...)
	r.stepPos = 0

	if r.trace {
		fmt.Print(vm.FormatTrace(r.lastTrace))
	}
	if err != nil {
		r.record(input, 0, err, elapsed)
		fmt.Printf("Error: %v\n", err)
		return
	}
	r.record(input, result, nil, elapsed)
	fmt.Println(formatResult(result))
	if r.stats {
		fmt.Print(formatStats(r.machine))
	}
}

func (r *replState) handleCommand(cmd string) {
	fields := strings.Fields(cmd)
	switch fields[0] {
	case ":help", ":h", ":?":
		fmt.Println("REPL Commands:")
		fmt.Println("  :help, :h, :?     Show this help")
		fmt.Println("  :trace on|off     Toggle printing the execution trace")
		fmt.Println("  :disasm [expr]    Disassemble expr (default: last input)")
		fmt.Println("  :stats            Show memory and GC statistics")
		fmt.Println("  :gc               Force a collection cycle")
		fmt.Println("  :history [n]      Show the n most recent evaluations (default 10)")
		fmt.Println("  :step [n|+|-]     Replay the last trace one step at a time")
		fmt.Println("  exit, quit        Exit REPL")

	case ":trace":
		if len(fields) < 2 {
			fmt.Printf("Trace is %s\n", onOff(r.trace))
			return
		}
		switch fields[1] {
		case "on":
			r.trace = true
		case "off":
			r.trace = false
		default:
			fmt.Println("Usage: :trace on|off")
			return
		}
		fmt.Printf("Trace %s\n", onOff(r.trace))

	case ":disasm":
		input := r.lastInput
		if len(fields) > 1 {
			input = strings.Join(fields[1:], " ")
		}
		if input == "" {
			fmt.Println("Nothing to disassemble yet")
			return
		}
		chunk, err := compiler.Compile(input)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			return
		}
		fmt.Print(chunk.FormatWithHex())

	case ":stats":
		fmt.Print(formatStats(r.machine))

	case ":gc":
		freed := r.machine.Collector().ForceCollect()
		fmt.Printf("Collected %d objects\n", freed)

	case ":history":
		r.showHistory(fields)

	case ":step":
		r.stepCommand(fields)

	default:
		fmt.Printf("Unknown command: %s (type :help for commands)\n", fields[0])
	}
}

func (r *replState) showHistory(fields []string) {
	if r.store == nil {
		fmt.Println("History is disabled")
		return
	}
	n := 10
	if len(fields) > 1 {
		v, err := strconv.Atoi(fields[1])
		if err != nil || v < 1 {
			fmt.Println("Usage: :history [n]")
			return
		}
		n = v
	}
	entries, err := r.store.Recent(n)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	if len(entries) == 0 {
		fmt.Println("No history yet")
		return
	}
	for _, e := range entries {
		if e.Failed {
			fmt.Printf("%4d  %-30s  error: %s\n", e.ID, e.Expression, e.Error)
		} else {
			fmt.Printf("%4d  %-30s  = %s\n", e.ID, e.Expression, formatResult(e.Result))
		}
	}
}

// stepCommand replays the last recorded trace. ":step" shows the current
// position, ":step +" and ":step -" move through it, ":step n" jumps.
func (r *replState) stepCommand(fields []string) {
	if len(r.lastTrace) == 0 {
		fmt.Println("No trace recorded yet; evaluate an expression first")
		return
	}
	if len(fields) > 1 {
		switch fields[1] {
		case "+":
			if r.stepPos < len(r.lastTrace)-1 {
				r.stepPos++
			}
		case "-":
			if r.stepPos > 0 {
				r.stepPos--
			}
		default:
			n, err := strconv.Atoi(fields[1])
			if err != nil || n < 0 || n >= len(r.lastTrace) {
				fmt.Printf("Usage: :step [0..%d|+|-]\n", len(r.lastTrace)-1)
				return
			}
			r.stepPos = n
		}
	}
	r.showStep()
}

func (r *replState) showStep() {
	s := r.lastTrace[r.stepPos]
	fmt.Printf("step %d/%d  0x%04X  %s\n", r.stepPos, len(r.lastTrace)-1, s.Offset, s.Text())
	fmt.Printf("  before: %s\n", formatStackLine(r.machine, s.Before))
	fmt.Printf("  after:  %s\n", formatStackLine(r.machine, s.After))
}

// formatStackLine renders a snapshot bottom-first, resolving live array
// handles to their contents where possible.
func formatStackLine(m *vm.Machine, stack []vm.Value) string {
	if len(stack) == 0 {
		return "[]"
	}
	parts := make([]string, len(stack))
	for i, v := range stack {
		parts[i] = m.FormatValue(v)
	}
	return "[" + strings.Join(parts, " ") + "]"
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}
