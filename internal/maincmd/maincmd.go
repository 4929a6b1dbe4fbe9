// Package maincmd implements the Fifth command-line tool: parsing,
// command dispatch and the commands themselves (run, repl, disasm,
// debug). It follows the same reflection-based command-table pattern as
// the teacher's own CLI, generalized from parser/resolver/scanner phases
// to the Fifth VM's own operations.
package maincmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/caarlos0/env/v6"
	"github.com/mna/mainer"

	"github.com/ldraconus/fifth/lang/machine"
)

const binName = "fifth"

var (
	shortUsage = fmt.Sprintf(`
usage: %s [<option>...] <command> [<path>...]
Run '%[1]s --help' for details.
`, binName)

	longUsage = fmt.Sprintf(`usage: %s [<option>...] <command> [<path>...] [-- <arg>...]
       %[1]s -h|--help
       %[1]s -v|--version

Virtual machine and tool for the %[1]s concatenative language.

The <command> can be one of:
       run                       Execute one or more source files and
                                 print the final user stack.
       repl                      Start an interactive read-eval-print
                                 loop over stdin.
       disasm                    Execute a source file, then print the
                                 disassembly of a compiled word.
       debug                     Execute a source file, then step through
                                 a compiled word interactively.

Valid flag options are:
       -h --help                 Show this help and exit.
       -v --version              Print version and exit.

More information on the %[1]s repository:
       https://github.com/ldraconus/fifth
`, binName)
)

// runtimeConfig holds the environment-overridable settings loaded by the
// repl command, read from variables with the "FIFTH_" prefix.
type runtimeConfig struct {
	HistoryFile string `env:"HISTORY_FILE" envDefault:""`
}

func loadConfig() runtimeConfig {
	var cfg runtimeConfig
	_ = env.Parse(&cfg, env.Options{Prefix: "FIFTH_"})
	return cfg
}

type Cmd struct {
	BuildVersion string
	BuildDate    string

	Help    bool `flag:"h,help"`
	Version bool `flag:"v,version"`

	args  []string
	flags map[string]bool
	cmdFn func(context.Context, mainer.Stdio, []string) error
}

func (c *Cmd) SetArgs(args []string)          { c.args = args }
func (c *Cmd) SetFlags(flags map[string]bool) { c.flags = flags }

func (c *Cmd) Validate() error {
	if c.Help || c.Version {
		return nil
	}

	if len(c.args) == 0 {
		return errors.New("no command specified")
	}

	cmdName := c.args[0]
	commands := buildCmds(c)
	c.cmdFn = commands[cmdName]
	if c.cmdFn == nil {
		return fmt.Errorf("unknown command: %s", c.args[0])
	}

	switch cmdName {
	case "run", "disasm", "debug":
		if len(c.args[1:]) == 0 {
			return fmt.Errorf("%s: at least one file must be provided", cmdName)
		}
	}
	if cmdName == "disasm" || cmdName == "debug" {
		if len(c.args[1:]) < 2 {
			return fmt.Errorf("%s: a file and a word name must be provided", cmdName)
		}
	}

	return nil
}

func printError(stdio mainer.Stdio, err error) error {
	if err != nil {
		fmt.Fprintf(stdio.Stderr, "%s\n", err)
	}
	return err
}

func (c *Cmd) Main(args []string, stdio mainer.Stdio) mainer.ExitCode {
	p := mainer.Parser{
		EnvVars:   false,
		EnvPrefix: binName + "_",
	}
	if err := p.Parse(args, c); err != nil {
		fmt.Fprintf(stdio.Stderr, "invalid arguments: %s\n%s", err, shortUsage)
		return mainer.InvalidArgs
	}

	switch {
	case c.Help:
		fmt.Fprint(stdio.Stdout, longUsage)
		return mainer.Success
	case c.Version:
		fmt.Fprintf(stdio.Stdout, "%s %s %s\n", binName, c.BuildVersion, c.BuildDate)
		return mainer.Success
	}

	ctx := mainer.CancelOnSignal(context.Background(), os.Interrupt)
	if err := c.cmdFn(ctx, stdio, c.args[1:]); err != nil {
		return mainer.Failure
	}
	return mainer.Success
}

func buildCmds(v interface{}) map[string]func(context.Context, mainer.Stdio, []string) error {
	cmds := make(map[string]func(context.Context, mainer.Stdio, []string) error)

	vv := reflect.ValueOf(v)
	vt := vv.Type()
	for i := 0; i < vt.NumMethod(); i++ {
		m := vt.Method(i)
		mt := m.Type

		if mt.NumIn() != 4 || mt.NumOut() != 1 {
			continue
		}
		if rt := mt.Out(0); rt.Kind() != reflect.Interface || rt.Name() != "error" {
			continue
		}
		if p0 := mt.In(0); p0.Kind() != reflect.Ptr || p0.Elem().Name() != "Cmd" {
			continue
		}
		if p1 := mt.In(1); p1.Kind() != reflect.Interface || p1.Name() != "Context" {
			continue
		}
		if p2 := mt.In(2); p2.Kind() != reflect.Struct || p2.Name() != "Stdio" {
			continue
		}
		if p3 := mt.In(3); p3.Kind() != reflect.Slice || p3.Elem().Name() != "string" {
			continue
		}
		cmds[strings.ToLower(m.Name)] = vv.Method(i).Interface().(func(context.Context, mainer.Stdio, []string) error)
	}
	return cmds
}

// Run executes each path in args against a fresh VM and prints the final
// user stack.
func (c *Cmd) Run(_ context.Context, stdio mainer.Stdio, args []string) error {
	vm := machine.New()
	vm.SetOutput(stdio.Stdout)
	for _, path := range args {
		src, err := os.ReadFile(path)
		if err != nil {
			return printError(stdio, fmt.Errorf("%s: %w", path, err))
		}
		vm.Execute(string(src))
	}
	printStack(stdio, "user", vm.User())
	return nil
}

// Repl starts an interactive read-eval-print loop over stdin, printing the
// user stack after every line.
func (c *Cmd) Repl(_ context.Context, stdio mainer.Stdio, _ []string) error {
	_ = loadConfig()
	vm := machine.New()
	vm.SetOutput(stdio.Stdout)

	scanner := bufio.NewScanner(stdio.Stdin)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		vm.Execute(line)
		printStack(stdio, "user", vm.User())
	}
	return scanner.Err()
}

// Disasm executes args[0] and prints the disassembly of the word named by
// args[1].
func (c *Cmd) Disasm(_ context.Context, stdio mainer.Stdio, args []string) error {
	vm := machine.New()
	vm.SetOutput(stdio.Stdout)
	src, err := os.ReadFile(args[0])
	if err != nil {
		return printError(stdio, fmt.Errorf("%s: %w", args[0], err))
	}
	vm.Execute(string(src))

	lines := vm.Debug(args[1])
	if lines == nil {
		return printError(stdio, fmt.Errorf("disasm: unknown word %q", args[1]))
	}
	for _, line := range lines {
		fmt.Fprintln(stdio.Stdout, line)
	}
	return nil
}

// Debug executes args[0] and drives an interactive stepping session over
// args[1], the textual analogue of the reference desktop debugger's
// step/run toolbar and stack panes.
func (c *Cmd) Debug(_ context.Context, stdio mainer.Stdio, args []string) error {
	vm := machine.New()
	vm.SetOutput(stdio.Stdout)
	src, err := os.ReadFile(args[0])
	if err != nil {
		return printError(stdio, fmt.Errorf("%s: %w", args[0], err))
	}
	vm.Execute(string(src))

	if lines := vm.Debug(args[1]); lines == nil {
		return printError(stdio, fmt.Errorf("debug: unknown word %q", args[1]))
	} else {
		for _, line := range lines {
			fmt.Fprintln(stdio.Stdout, line)
		}
	}

	scanner := bufio.NewScanner(stdio.Stdin)
	for {
		fmt.Fprint(stdio.Stdout, "(fifth-debug) ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		switch fields[0] {
		case "step", "over":
			vm.StepOver()
		case "into":
			vm.StepInto()
		case "run":
			vm.Run()
		case "break":
			if len(fields) == 2 {
				var n int
				if _, err := fmt.Sscanf(fields[1], "%d", &n); err == nil {
					vm.BreakAt(n)
				}
			}
		case "stack":
			printStack(stdio, "user", vm.User())
			printStack(stdio, "system", vm.System())
		case "vars":
			printStack(stdio, "globals", vm.GlobalVars())
			printStack(stdio, "locals", vm.LocalVars())
		case "quit", "exit":
			return nil
		default:
			fmt.Fprintf(stdio.Stdout, "unknown debug command: %s\n", fields[0])
		}
	}
}

func printStack(stdio mainer.Stdio, label string, items []string) {
	fmt.Fprintf(stdio.Stdout, "%s: %s\n", label, strings.Join(items, " "))
}
