// Package cli implements the maintenance subcommands. Each command opens the
// store directly and drives the same façade the server uses.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/mrlokans/medcompanion/internal/audit"
	"github.com/mrlokans/medcompanion/internal/database"
	"github.com/mrlokans/medcompanion/internal/entities"
	"github.com/mrlokans/medcompanion/internal/services"
)

// stack is the store plus the façade built on it.
type stack struct {
	db      *database.Database
	audit   *audit.Service
	service *services.Service
}

func openStack(dbPath string, bcryptCost int) (*stack, error) {
	db, err := database.NewDatabase(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	logger := logrus.StandardLogger()
	auditSvc := audit.NewService(db.Audit(), logger)
	svc := services.NewService(services.Stores{
		Accounts:    db.Accounts(),
		Medicines:   db.Medicines(),
		Preferences: db.Preferences(),
	}, auditSvc, bcryptCost, logger)

	return &stack{db: db, audit: auditSvc, service: svc}, nil
}

func (s *stack) Close() {
	s.audit.Flush()
	if err := s.db.Close(); err != nil {
		logrus.WithError(err).Warn("Failed to close database")
	}
}

// login resolves the account a command acts for.
func (s *stack) login(ctx context.Context, email, password string) (*entities.User, error) {
	user, err := s.service.Login(ctx, email, password)
	if errors.Is(err, services.ErrInvalidCredentials) {
		return nil, fmt.Errorf("invalid email or password")
	}
	return user, err
}

func output(w io.Writer) io.Writer {
	if w == nil {
		return os.Stdout
	}
	return w
}

func printMedicines(w io.Writer, list []entities.Medicine) {
	if len(list) == 0 {
		fmt.Fprintln(w, "No medicines recorded.")
		return
	}
	fmt.Fprintf(w, "%-6s %-24s %-14s %-14s %s\n", "ID", "NAME", "DOSAGE", "FREQUENCY", "TIME")
	for _, m := range list {
		fmt.Fprintf(w, "%-6d %-24s %-14s %-14s %s\n", m.ID, m.Name, m.Dosage, m.Frequency, m.Time)
	}
}
