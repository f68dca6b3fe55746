package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface is the command surface the REPL dispatches to. The real App
// satisfies it; tests provide a stub.
type execIface interface {
	isLoggedIn() bool

	SignUp(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	WhoAmI(ctx context.Context) error
	ChangePassword(ctx context.Context) error
	ForgotPassword(ctx context.Context) error
	ResetPassword(ctx context.Context) error
	Ping(ctx context.Context) error

	Books(ctx context.Context) error
	AddBook(ctx context.Context) error
	Borrow(ctx context.Context, args []string) error
	Return(ctx context.Context, args []string) error
	Loans(ctx context.Context, args []string) error
	Holders(ctx context.Context, args []string) error
	History(ctx context.Context) error
	DeleteLoan(ctx context.Context, args []string) error
	Stats(ctx context.Context) error

	Roles(ctx context.Context, args []string) error
	SetRoles(ctx context.Context, args []string) error
	Deactivate(ctx context.Context, args []string) error
	Restore(ctx context.Context, args []string) error
	DeleteAccount(ctx context.Context, args []string) error
}

type command struct {
	usage     string
	loginOnly bool
	run       func(ctx context.Context, a execIface, args []string) error
}

func noArgs(f func(execIface, context.Context) error) func(context.Context, execIface, []string) error {
	return func(ctx context.Context, a execIface, _ []string) error { return f(a, ctx) }
}

func withArgs(f func(execIface, context.Context, []string) error) func(context.Context, execIface, []string) error {
	return func(ctx context.Context, a execIface, args []string) error { return f(a, ctx, args) }
}

var commands = map[string]command{
	"signup": {"signup", false, noArgs(execIface.SignUp)},
	"login":  {"login", false, noArgs(execIface.Login)},
	"forgot": {"forgot", false, noArgs(execIface.ForgotPassword)},
	"reset":  {"reset", false, noArgs(execIface.ResetPassword)},
	"ping":   {"ping", false, noArgs(execIface.Ping)},

	"whoami": {"whoami", true, noArgs(execIface.WhoAmI)},
	"passwd": {"passwd", true, noArgs(execIface.ChangePassword)},
	"logout": {"logout", true, noArgs(execIface.Logout)},

	"books":   {"books", true, noArgs(execIface.Books)},
	"addbook": {"addbook", true, noArgs(execIface.AddBook)},
	"borrow":  {"borrow <book-id> [user-id]", true, withArgs(execIface.Borrow)},
	"return":  {"return <book-id> [user-id]", true, withArgs(execIface.Return)},
	"loans":   {"loans [user-id]", true, withArgs(execIface.Loans)},
	"holders": {"holders <book-id>", true, withArgs(execIface.Holders)},
	"history": {"history", true, noArgs(execIface.History)},
	"delloan": {"delloan <loan-id>", true, withArgs(execIface.DeleteLoan)},
	"stats":   {"stats", true, noArgs(execIface.Stats)},

	"roles":      {"roles <account-id>", true, withArgs(execIface.Roles)},
	"setroles":   {"setroles <account-id> <role>...", true, withArgs(execIface.SetRoles)},
	"deactivate": {"deactivate <account-id>", true, withArgs(execIface.Deactivate)},
	"restore":    {"restore <account-id>", true, withArgs(execIface.Restore)},
	"delaccount": {"delaccount <account-id>", true, withArgs(execIface.DeleteAccount)},
}

// errUsage is returned by handlers when required arguments are missing.
var errUsage = errors.New("usage")

func helpText(loggedIn bool) string {
	var names []string
	for _, name := range sortedCommands() {
		c := commands[name]
		if c.loginOnly == loggedIn {
			names = append(names, c.usage)
		}
	}
	names = append(names, "exit")
	return "Available commands:\n  " + strings.Join(names, "\n  ")
}

func sortedCommands() []string {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// runREPL reads commands from r until EOF, "exit" or "quit". Commands are
// read from the same reader the prompts use, so interactive input never
// races the command line.
//
// Handler errors are reported and the loop carries on.
func runREPL(ctx context.Context, a execIface, statusFn func() string, r *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("lib (%s)> ", statusFn()))
		line, err := r.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			return
		}

		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		name, args := parts[0], parts[1:]

		switch name {
		case "help":
			printlnFn(helpText(a.isLoggedIn()))
			continue
		case "exit", "quit":
			printlnFn("Bye!")
			return
		}

		c, ok := commands[name]
		if !ok {
			printlnFn("Unknown command:", name)
			continue
		}
		if c.loginOnly && !a.isLoggedIn() {
			printlnFn("Please log in first")
			continue
		}

		if err := c.run(ctx, a, args); err != nil {
			if errors.Is(err, errUsage) {
				printlnFn("Usage:", c.usage)
			} else {
				printlnFn("Error:", err.Error())
			}
		}
	}
}
