package commands

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"github.com/taskfolk/tasklistd/internal/auth"
)

// NewUserCommand returns the user management subcommand.
func NewUserCommand() *cli.Command {
	return &cli.Command{
		Name:  "user",
		Usage: "Manage accounts",
		Commands: []*cli.Command{
			{
				Name:      "add",
				Usage:     "Register an account directly against the store",
				ArgsUsage: "<name> <email>",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "password",
						Usage: "Password (prompted when omitted)",
					},
				},
				Action: runUserAdd,
			},
		},
	}
}

func runUserAdd(_ context.Context, cmd *cli.Command) error {
	args := cmd.Args()
	if args.Len() != 2 {
		return errors.New("usage: tasklistd user add <name> <email>")
	}
	name, email := args.Get(0), args.Get(1)

	password := cmd.String("password")
	if password == "" {
		var err error
		password, err = readPassword()
		if err != nil {
			return err
		}
	}

	cfg := loadConfig(cmd.String("config"))
	store, err := openStore(cfg)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer store.Close()

	if err := auth.NewUsers(store).Register(name, email, password); err != nil {
		return err
	}
	fmt.Printf("registered %s <%s>\n", name, email)
	return nil
}

// readPassword prompts without echo on a terminal, or reads a line when
// stdin is piped.
func readPassword() (string, error) {
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		fmt.Fprint(os.Stderr, "Password: ")
		raw, err := term.ReadPassword(fd)
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		return string(raw), nil
	}

	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimSpace(line), nil
}
