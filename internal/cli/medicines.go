package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mrlokans/medcompanion/internal/config"
	"github.com/mrlokans/medcompanion/internal/entities"
)

// credentials are the flags every medicine command takes.
type credentials struct {
	DatabasePath string
	Email        string
	Password     string
}

func (c *credentials) bind(fs *flag.FlagSet) {
	fs.StringVar(&c.DatabasePath, "db", config.DefaultDatabasePath, "Path to the database file")
	fs.StringVar(&c.Email, "email", "", "Account email (required)")
	fs.StringVar(&c.Password, "password", "", "Account password (required)")
}

func (c *credentials) validate() error {
	if c.Email == "" || c.Password == "" {
		return fmt.Errorf("email and password are required")
	}
	return nil
}

func usage(fs *flag.FlagSet, name, description string, examples ...string) func() {
	return func() {
		fmt.Fprintf(os.Stderr, "Usage: %s %s [options]\n\n", os.Args[0], name)
		fmt.Fprintf(os.Stderr, "%s\n\n", description)
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		if len(examples) > 0 {
			fmt.Fprintf(os.Stderr, "\nExamples:\n")
			for _, e := range examples {
				fmt.Fprintf(os.Stderr, "  %s %s\n", os.Args[0], e)
			}
		}
	}
}

// MedicinesCommand lists the medicines of an account.
type MedicinesCommand struct {
	credentials
	Out io.Writer
}

func NewMedicinesCommand() *MedicinesCommand {
	return &MedicinesCommand{}
}

func (cmd *MedicinesCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("medicines", flag.ContinueOnError)
	cmd.bind(fs)
	fs.Usage = usage(fs, "medicines", "List the medicines of an account.",
		"medicines -email alice@example.com -password secret")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := cmd.validate(); err != nil {
		fs.Usage()
		return err
	}
	return nil
}

func (cmd *MedicinesCommand) Run() error {
	s, err := openStack(cmd.DatabasePath, config.DefaultBcryptCost)
	if err != nil {
		return err
	}
	defer s.Close()

	ctx := context.Background()
	user, err := s.login(ctx, cmd.Email, cmd.Password)
	if err != nil {
		return err
	}

	list, err := s.service.Medicines(ctx, user.ID)
	if err != nil {
		return err
	}
	printMedicines(output(cmd.Out), list)
	return nil
}

// AddMedicineCommand records a medicine for an account.
type AddMedicineCommand struct {
	credentials
	Name      string
	Dosage    string
	Frequency string
	Time      string
	Out       io.Writer
}

func NewAddMedicineCommand() *AddMedicineCommand {
	return &AddMedicineCommand{}
}

func (cmd *AddMedicineCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("add-medicine", flag.ContinueOnError)
	cmd.bind(fs)
	fs.StringVar(&cmd.Name, "name", "", "Medicine name (required)")
	fs.StringVar(&cmd.Dosage, "dosage", "", "Dosage (required)")
	fs.StringVar(&cmd.Frequency, "frequency", "", "Frequency (required)")
	fs.StringVar(&cmd.Time, "time", "", "Time of day, e.g. Morning-Evening or 08:30 (required)")
	fs.Usage = usage(fs, "add-medicine", "Record a medicine for an account.",
		`add-medicine -email alice@example.com -password secret -name Aspirin -dosage "1 tablet" -frequency daily -time Morning`)

	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := cmd.validate(); err != nil {
		fs.Usage()
		return err
	}
	for _, v := range []string{cmd.Name, cmd.Dosage, cmd.Frequency, cmd.Time} {
		if strings.TrimSpace(v) == "" {
			fs.Usage()
			return fmt.Errorf("name, dosage, frequency and time are required")
		}
	}
	return nil
}

func (cmd *AddMedicineCommand) Run() error {
	s, err := openStack(cmd.DatabasePath, config.DefaultBcryptCost)
	if err != nil {
		return err
	}
	defer s.Close()

	ctx := context.Background()
	user, err := s.login(ctx, cmd.Email, cmd.Password)
	if err != nil {
		return err
	}

	medicine := &entities.Medicine{
		UserID:    user.ID,
		Name:      cmd.Name,
		Dosage:    cmd.Dosage,
		Frequency: cmd.Frequency,
		Time:      cmd.Time,
	}
	if err := s.service.AddMedicine(ctx, medicine); err != nil {
		return err
	}

	fmt.Fprintf(output(cmd.Out), "Added %s with id %d\n", medicine.Name, medicine.ID)
	return nil
}

// DeleteMedicineCommand removes one medicine of an account.
type DeleteMedicineCommand struct {
	credentials
	ID  uint
	Out io.Writer
}

func NewDeleteMedicineCommand() *DeleteMedicineCommand {
	return &DeleteMedicineCommand{}
}

func (cmd *DeleteMedicineCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("delete-medicine", flag.ContinueOnError)
	cmd.bind(fs)
	fs.UintVar(&cmd.ID, "id", 0, "Medicine id (required)")
	fs.Usage = usage(fs, "delete-medicine", "Remove one medicine of an account.",
		"delete-medicine -email alice@example.com -password secret -id 3")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := cmd.validate(); err != nil {
		fs.Usage()
		return err
	}
	if cmd.ID == 0 {
		fs.Usage()
		return fmt.Errorf("id is required")
	}
	return nil
}

func (cmd *DeleteMedicineCommand) Run() error {
	s, err := openStack(cmd.DatabasePath, config.DefaultBcryptCost)
	if err != nil {
		return err
	}
	defer s.Close()

	ctx := context.Background()
	user, err := s.login(ctx, cmd.Email, cmd.Password)
	if err != nil {
		return err
	}

	list, err := s.service.Medicines(ctx, user.ID)
	if err != nil {
		return err
	}
	for _, m := range list {
		if m.ID == cmd.ID {
			if err := s.service.DeleteMedicine(ctx, m); err != nil {
				return err
			}
			fmt.Fprintf(output(cmd.Out), "Deleted %s\n", m.Name)
			return nil
		}
	}
	return fmt.Errorf("medicine %d not found", cmd.ID)
}
