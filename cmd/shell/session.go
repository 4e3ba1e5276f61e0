package shell

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/ValentinKolb/roster/cmd/util"
	"github.com/ValentinKolb/roster/lib/common"
	"github.com/ValentinKolb/roster/lib/roster"
	"github.com/ValentinKolb/roster/lib/store"
	"github.com/ValentinKolb/roster/lib/store/instrumented"
	"github.com/kballard/go-shellquote"
)

const prompt = "roster> "

// Session is an interactive session over a single store.
// Nothing is written to disk until save is called.
type Session struct {
	store  *instrumented.Store
	config *common.Config
	out    io.Writer
}

// NewSession creates a session that writes its output to out
func NewSession(s *instrumented.Store, config *common.Config, out io.Writer) *Session {
	return &Session{
		store:  s,
		config: config,
		out:    out,
	}
}

type command struct {
	usage string
	help  string
	run   func(s *Session, args []string) error
}

var commands map[string]command

// order in which the commands are listed by help
var commandNames = []string{"add", "remove", "search", "list", "save", "load", "info", "stats", "help", "exit"}

func init() {
	commands = map[string]command{
		"add":    {"add <name> <roll number> <grade>", "add a student (quote names with spaces)", (*Session).add},
		"remove": {"remove <roll number>", "remove all students with the roll number", (*Session).remove},
		"search": {"search <roll number>", "show the first student with the roll number", (*Session).search},
		"list":   {"list", "show all students", (*Session).list},
		"save":   {"save [path]", "save the roster (default: the data file)", (*Session).save},
		"load":   {"load [path]", "replace the roster with a file (default: the data file)", (*Session).load},
		"info":   {"info", "show statistics of the roster", (*Session).info},
		"stats":  {"stats", "show the metrics of this session", (*Session).stats},
		"help":   {"help", "show this help", (*Session).help},
		"exit":   {"exit", "leave the shell (alias: quit)", nil},
	}
}

// Run reads commands from in until exit or end of input
func (s *Session) Run(in io.Reader) error {
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(s.out, prompt)
		if !scanner.Scan() {
			fmt.Fprintln(s.out)
			return scanner.Err()
		}
		if quit := s.Execute(scanner.Text()); quit {
			return nil
		}
	}
}

// Execute runs a single input line. It reports whether the session should end.
// Errors are written to the output, the session stays usable.
func (s *Session) Execute(line string) (quit bool) {
	args, err := shellquote.Split(line)
	if err != nil {
		fmt.Fprintf(s.out, "Error: %v\n", err)
		return false
	}
	if len(args) == 0 {
		return false
	}

	name := strings.ToLower(args[0])
	if name == "exit" || name == "quit" {
		return true
	}

	cmd, ok := commands[name]
	if !ok {
		fmt.Fprintf(s.out, "unknown command %q, type help for a list of commands\n", args[0])
		return false
	}

	if err := cmd.run(s, args[1:]); err != nil {
		util.Logger.Debugf("%s failed: %v", name, err)
		fmt.Fprintln(s.out, util.Message(err))
	}
	return false
}

// --------------------------------------------------------------------------
// Commands
// --------------------------------------------------------------------------

func (s *Session) add(args []string) error {
	if len(args) != 3 {
		return usageError("add")
	}
	if err := util.ValidateInput(args[0], args[1], args[2]); err != nil {
		return err
	}
	if err := s.store.Add(roster.New(args[0], args[1], args[2])); err != nil {
		return err
	}
	fmt.Fprintln(s.out, util.MsgAdded)
	return nil
}

func (s *Session) remove(args []string) error {
	if len(args) != 1 {
		return usageError("remove")
	}
	if err := util.ValidateRollNumber(args[0]); err != nil {
		return err
	}
	if err := s.store.Remove(args[0]); err != nil {
		return err
	}
	fmt.Fprintln(s.out, util.MsgRemoved)
	return nil
}

func (s *Session) search(args []string) error {
	if len(args) != 1 {
		return usageError("search")
	}
	if err := util.ValidateRollNumber(args[0]); err != nil {
		return err
	}
	student, found, err := s.store.FindByRollNumber(args[0])
	if err != nil {
		return err
	}
	if !found {
		fmt.Fprintln(s.out, util.MsgNotFound+args[0])
		return nil
	}
	fmt.Fprintln(s.out, student)
	return nil
}

func (s *Session) list(args []string) error {
	if len(args) != 0 {
		return usageError("list")
	}
	students, err := s.store.ListAll()
	if err != nil {
		return err
	}
	for _, student := range students {
		fmt.Fprintln(s.out, student)
	}
	return nil
}

func (s *Session) save(args []string) error {
	path, err := s.path("save", args)
	if err != nil {
		return err
	}
	if err := store.SaveFile(s.store, path); err != nil {
		fmt.Fprintln(s.out, util.SaveMessage(err))
		util.Logger.Infof("save to %s failed: %v", path, err)
		return nil
	}
	fmt.Fprintln(s.out, util.MsgSaved)
	return nil
}

func (s *Session) load(args []string) error {
	path, err := s.path("load", args)
	if err != nil {
		return err
	}
	if err := store.LoadFile(s.store, path); err != nil {
		fmt.Fprintln(s.out, util.LoadMessage(err))
		util.Logger.Infof("load from %s failed: %v", path, err)
		return nil
	}
	fmt.Fprintln(s.out, util.MsgLoaded)
	return nil
}

func (s *Session) info(args []string) error {
	if len(args) != 0 {
		return usageError("info")
	}
	info, err := s.store.Info()
	if err != nil {
		return err
	}
	fmt.Fprintf(s.out, "%d students (%s backend, %s format)\n", info.Records, info.Backend, info.Serializer)
	if len(info.DuplicateRollNumbers) > 0 {
		fmt.Fprintf(s.out, "duplicate roll numbers: %s\n", strings.Join(info.DuplicateRollNumbers, ", "))
	}
	return nil
}

func (s *Session) stats(args []string) error {
	if len(args) != 0 {
		return usageError("stats")
	}
	s.store.WriteMetrics(s.out)
	return nil
}

func (s *Session) help(_ []string) error {
	for _, name := range commandNames {
		cmd := commands[name]
		fmt.Fprintf(s.out, "  %-34s %s\n", cmd.usage, cmd.help)
	}
	return nil
}

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

// path returns the optional path argument or the configured data file
func (s *Session) path(name string, args []string) (string, error) {
	switch len(args) {
	case 0:
		return s.config.DataFile, nil
	case 1:
		return args[0], nil
	default:
		return "", usageError(name)
	}
}

func usageError(name string) error {
	return store.NewError(store.RetCValidationError, "usage: "+commands[name].usage)
}

