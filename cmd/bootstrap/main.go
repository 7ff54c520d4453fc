// Command bootstrap prepares the database and creates an initial user.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/chzyer/readline"
	"golang.org/x/term"
	"todo-app/db"
	"todo-app/internal/config"
	"todo-app/internal/logging"
	"todo-app/internal/user"
	"todo-app/models"
)

// prompter reads answers from the operator.
type prompter interface {
	ReadLine(prompt string) (string, error)
	ReadPassword(prompt string) (string, error)
	Close() error
}

// userCreator is the slice of user.UserService the bootstrap needs.
type userCreator interface {
	Exists(ctx context.Context, username string) (bool, error)
	Create(ctx context.Context, username, password string) (*models.User, error)
}

func main() {
	logger := logging.New(os.Stderr, logging.Options{Level: "warn"})

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatal("Failed to load configuration", "err", err)
	}
	logger.SetLevel(logging.ParseLevel(cfg.LogLevel))

	database, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("Failed to connect to database", "err", err)
	}
	defer database.Close()

	ctx := context.Background()
	if err := db.InitializeSchema(ctx, database); err != nil {
		logger.Fatal("Failed to initialize database schema", "err", err)
	}

	dbManager := db.NewDBManager(logger)
	defer dbManager.Stop()
	userService := user.NewUserService(db.NewRepositoryFactory(database).NewUserRepository(), dbManager, logger)

	p, err := newPrompter()
	if err != nil {
		logger.Fatal("Failed to initialize prompt", "err", err)
	}
	defer p.Close()

	if err := run(ctx, p, userService, os.Stdout); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, readline.ErrInterrupt) {
			fmt.Fprintln(os.Stdout, "\nAborted.")
			return
		}
		logger.Error("Bootstrap failed", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, p prompter, users userCreator, out io.Writer) error {
	fmt.Fprintln(out, "\n== Todo App Bootstrap ==")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Database ready.")
	fmt.Fprintln(out, "Create an initial user.")

	username, err := p.ReadLine("Username: ")
	if err != nil {
		return err
	}
	username = strings.TrimSpace(username)
	for username == "" {
		if username, err = p.ReadLine("Username (required): "); err != nil {
			return err
		}
		username = strings.TrimSpace(username)
	}

	exists, err := users.Exists(ctx, username)
	if err != nil {
		return err
	}
	if exists {
		fmt.Fprintf(out, "User '%s' already exists, nothing to do.\n", username)
		return nil
	}

	var password string
	for {
		if password, err = p.ReadPassword("Password: "); err != nil {
			return err
		}
		confirm, err := p.ReadPassword("Confirm:  ")
		if err != nil {
			return err
		}
		if password != "" && password == confirm {
			break
		}
		fmt.Fprintln(out, "Passwords do not match or empty. Try again.")
	}

	if _, err := users.Create(ctx, username, password); err != nil {
		if errors.Is(err, user.ErrUsernameTaken) {
			fmt.Fprintf(out, "User '%s' already exists, nothing to do.\n", username)
			return nil
		}
		return err
	}
	fmt.Fprintf(out, "User '%s' created. You can now run the server.\n", username)
	return nil
}

func newPrompter() (prompter, error) {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return newLinePrompter(os.Stdin, os.Stdout), nil
	}
	rl, err := readline.NewEx(&readline.Config{
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, err
	}
	return &terminalPrompter{rl: rl}, nil
}

// terminalPrompter reads from an interactive terminal. Passwords are not
// echoed.
type terminalPrompter struct {
	rl *readline.Instance
}

func (t *terminalPrompter) ReadLine(prompt string) (string, error) {
	t.rl.SetPrompt(prompt)
	return t.rl.Readline()
}

func (t *terminalPrompter) ReadPassword(prompt string) (string, error) {
	b, err := t.rl.ReadPassword(prompt)
	return string(b), err
}

func (t *terminalPrompter) Close() error {
	return t.rl.Close()
}

// linePrompter reads newline-separated answers, e.g. from a pipe.
type linePrompter struct {
	scanner *bufio.Scanner
	out     io.Writer
}

func newLinePrompter(in io.Reader, out io.Writer) *linePrompter {
	return &linePrompter{scanner: bufio.NewScanner(in), out: out}
}

func (l *linePrompter) ReadLine(prompt string) (string, error) {
	fmt.Fprint(l.out, prompt)
	if !l.scanner.Scan() {
		if err := l.scanner.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return strings.TrimRight(l.scanner.Text(), "\r"), nil
}

func (l *linePrompter) ReadPassword(prompt string) (string, error) {
	line, err := l.ReadLine(prompt)
	if err == nil {
		fmt.Fprintln(l.out)
	}
	return line, err
}

func (l *linePrompter) Close() error { return nil }
