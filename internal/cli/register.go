package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mrlokans/medcompanion/internal/config"
	"github.com/mrlokans/medcompanion/internal/services"
)

type RegisterCommand struct {
	DatabasePath string
	Username     string
	Email        string
	Password     string
	BcryptCost   int
	Out          io.Writer
}

func NewRegisterCommand() *RegisterCommand {
	return &RegisterCommand{BcryptCost: config.DefaultBcryptCost}
}

func (cmd *RegisterCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("register", flag.ContinueOnError)

	fs.StringVar(&cmd.DatabasePath, "db", config.DefaultDatabasePath, "Path to the database file")
	fs.StringVar(&cmd.Username, "username", "", "Display name (required)")
	fs.StringVar(&cmd.Email, "email", "", "Email address (required)")
	fs.StringVar(&cmd.Password, "password", "", "Password (required)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s register [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Create an account.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s register -username alice -email alice@example.com -password secret\n", os.Args[0])
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if strings.TrimSpace(cmd.Username) == "" || strings.TrimSpace(cmd.Email) == "" || cmd.Password == "" {
		fs.Usage()
		return fmt.Errorf("username, email and password are required")
	}

	return nil
}

func (cmd *RegisterCommand) Run() error {
	s, err := openStack(cmd.DatabasePath, cmd.BcryptCost)
	if err != nil {
		return err
	}
	defer s.Close()

	id, err := s.service.Register(context.Background(), cmd.Username, cmd.Email, cmd.Password)
	if errors.Is(err, services.ErrDuplicateEmail) {
		return fmt.Errorf("email %s is already registered", cmd.Email)
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(output(cmd.Out), "Registered %s <%s> with id %d\n", cmd.Username, cmd.Email, id)
	return nil
}
