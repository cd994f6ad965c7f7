package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/reeflective/readline"

	"ipcatalog/internal/domain"
	"ipcatalog/internal/support/reputation"
)

// Service is the catalog surface the front end drives.
type Service interface {
	Add(ctx context.Context, rawIP, token string) (domain.IPRecord, error)
	Delete(ctx context.Context, pattern string) (int64, error)
	Get(ctx context.Context, pattern string) ([]domain.IPRecord, error)
	Subnet(ctx context.Context, prefixLength, version int) (reputation.Report, error)
	ReverseDNSEnabled() bool
}

var errExit = errors.New("exit requested")

type handler func(ctx context.Context, s *Shell, args []string) error

type shellCommand struct {
	name        string
	usage       string
	description string
	run         handler
}

var shellCommands []shellCommand

func init() {
	// Assigned here because help refers back to the table.
	shellCommands = []shellCommand{
		{"add", "add <ip> <b|pb|s|m>", "Record a judgment for an address, replacing any earlier one", runAdd},
		{"del", "del <pattern>", "Remove every address matching the pattern (% any run, _ one character)", runDelete},
		{"get", "get [pattern]", "List addresses matching the pattern, all when omitted", runGet},
		{"subnet4", "subnet4 <length>", "Rank IPv4 networks of the given prefix length by score", runSubnet4},
		{"subnet6", "subnet6 <length>", "Rank IPv6 networks of the given prefix length by score", runSubnet6},
		{"help", "help", "Show available commands", runHelp},
		{"exit", "exit", "Leave the shell", runExit},
	}
}

func lookupCommand(name string) (shellCommand, bool) {
	switch name {
	case "?":
		name = "help"
	case "quit":
		name = "exit"
	}
	for _, cmd := range shellCommands {
		if cmd.name == name {
			return cmd, true
		}
	}
	return shellCommand{}, false
}

type Shell struct {
	service Service
	out     io.Writer
}

func NewShell(service Service, out io.Writer) *Shell {
	return &Shell{service: service, out: out}
}

// Execute runs a single command line and reports whether the session should
// continue. Failures are printed, never returned.
func (s *Shell) Execute(ctx context.Context, line string) bool {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return true
	}

	name := strings.ToLower(fields[0])
	cmd, ok := lookupCommand(name)
	if !ok {
		s.printError(fmt.Errorf("unknown command %s (use help for available commands)", fields[0]))
		return true
	}

	if err := cmd.run(ctx, s, fields[1:]); err != nil {
		if errors.Is(err, errExit) {
			return false
		}
		s.printError(err)
	}
	return true
}

func (s *Shell) printError(err error) {
	fmt.Fprintf(s.out, "ERROR: %v\n", err)
}

// Run reads commands from the terminal until exit, EOF or interrupt.
func (s *Shell) Run(ctx context.Context) error {
	rl := readline.NewShell()
	rl.Prompt.Primary(func() string { return "> " })

	history := readline.NewInMemoryHistory()
	rl.History.Add("default", history)

	rl.Completer = func(line []rune, cursor int) readline.Completions {
		return completeInput(string(line), cursor)
	}

	fmt.Fprintln(s.out, "Type help or ? for help.")

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		line, err := rl.Readline()
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, readline.ErrInterrupt) {
				return nil
			}
			return err
		}

		if !s.Execute(ctx, line) {
			return nil
		}
	}
}

// completeInput completes the command name under the cursor.
func completeInput(line string, cursor int) readline.Completions {
	if cursor > len(line) {
		cursor = len(line)
	}
	text := strings.TrimLeft(line[:cursor], " ")
	if strings.Contains(text, " ") {
		return readline.Completions{}
	}

	pairs := make([]string, 0, len(shellCommands)*2)
	for _, cmd := range matchCommands(text) {
		pairs = append(pairs, cmd.name, cmd.description)
	}
	if len(pairs) == 0 {
		return readline.Completions{}
	}

	return readline.CompleteValuesDescribed(pairs...).Tag("commands")
}

func matchCommands(prefix string) []shellCommand {
	prefix = strings.ToLower(prefix)
	var matches []shellCommand
	for _, cmd := range shellCommands {
		if strings.HasPrefix(cmd.name, prefix) {
			matches = append(matches, cmd)
		}
	}
	return matches
}

func runAdd(ctx context.Context, s *Shell, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("wrong number of arguments, expected 2, got %d", len(args))
	}

	record, err := s.service.Add(ctx, args[0], args[1])
	if err != nil {
		return err
	}

	if s.service.ReverseDNSEnabled() {
		fmt.Fprintln(s.out, formatReverseDNS(record))
	}
	return nil
}

func runDelete(ctx context.Context, s *Shell, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("wrong number of arguments, expected 1, got %d", len(args))
	}
	_, err := s.service.Delete(ctx, args[0])
	return err
}

func runGet(ctx context.Context, s *Shell, args []string) error {
	if len(args) > 1 {
		return fmt.Errorf("wrong number of arguments, expected at most 1, got %d", len(args))
	}

	pattern := ""
	if len(args) == 1 {
		pattern = args[0]
	}

	records, err := s.service.Get(ctx, pattern)
	if err != nil {
		return err
	}
	return WriteRecords(s.out, records)
}

func runSubnet4(ctx context.Context, s *Shell, args []string) error {
	return runSubnet(ctx, s, args, 4)
}

func runSubnet6(ctx context.Context, s *Shell, args []string) error {
	return runSubnet(ctx, s, args, 6)
}

func runSubnet(ctx context.Context, s *Shell, args []string, version int) error {
	if len(args) != 1 {
		return fmt.Errorf("wrong number of arguments, expected 1, got %d", len(args))
	}

	prefixLength, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("prefix length must be an integer, not %s", args[0])
	}

	report, err := s.service.Subnet(ctx, prefixLength, version)
	if err != nil {
		return err
	}
	return WriteNetworks(s.out, report.Networks)
}

func runHelp(_ context.Context, s *Shell, _ []string) error {
	fmt.Fprintln(s.out, "Available commands:")
	for _, cmd := range shellCommands {
		fmt.Fprintf(s.out, "  %-22s %s\n", cmd.usage, cmd.description)
	}
	return nil
}

func runExit(context.Context, *Shell, []string) error {
	return errExit
}
