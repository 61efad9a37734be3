// Command generate_demo creates a demo database with one account and a few
// medicines covering the supported time labels.
// Usage: go run cmd/generate_demo/main.go [-db path/to/demo.db]
package main

import (
	"context"
	"flag"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/mrlokans/medcompanion/internal/audit"
	"github.com/mrlokans/medcompanion/internal/config"
	"github.com/mrlokans/medcompanion/internal/database"
	"github.com/mrlokans/medcompanion/internal/entities"
	"github.com/mrlokans/medcompanion/internal/services"
)

const (
	defaultDemoDatabasePath = "./demo/demo.db"
	demoEmail               = "demo@medcompanion.local"
	demoPassword            = "demo"
)

var demoMedicines = []entities.Medicine{
	{Name: "Aspirin", Dosage: "100 mg", Frequency: "Günde 1", Time: "Sabah"},
	{Name: "Metformin", Dosage: "500 mg", Frequency: "Günde 2", Time: "Sabah-Akşam"},
	{Name: "D Vitamini", Dosage: "1000 IU", Frequency: "Günde 1", Time: "Öğle"},
	{Name: "Omega 3", Dosage: "1 kapsül", Frequency: "Günde 3", Time: "Morning-Noon-Evening"},
	{Name: "Melatonin", Dosage: "3 mg", Frequency: "Gerektiğinde", Time: "22:30"},
}

func main() {
	dbPath := flag.String("db", defaultDemoDatabasePath, "path to the demo database file")
	flag.Parse()

	logrus.Infof("Generating demo database at %s...", *dbPath)

	// Delete existing demo database to start fresh
	if err := os.Remove(*dbPath); err != nil && !os.IsNotExist(err) {
		logrus.Fatalf("Failed to remove existing demo database: %v", err)
	}

	db, err := database.NewDatabase(*dbPath)
	if err != nil {
		logrus.Fatalf("Failed to create database: %v", err)
	}
	defer db.Close()

	logger := logrus.StandardLogger()
	auditService := audit.NewService(db.Audit(), logger)
	defer auditService.Flush()

	service := services.NewService(services.Stores{
		Accounts:    db.Accounts(),
		Medicines:   db.Medicines(),
		Preferences: db.Preferences(),
	}, auditService, config.DefaultBcryptCost, logger)

	ctx := context.Background()
	userID, err := service.Register(ctx, "Demo", demoEmail, demoPassword)
	if err != nil {
		logrus.Fatalf("Failed to create demo account: %v", err)
	}

	for _, m := range demoMedicines {
		medicine := m
		medicine.UserID = userID
		if err := service.AddMedicine(ctx, &medicine); err != nil {
			logrus.Fatalf("Failed to add %s: %v", m.Name, err)
		}
	}

	prefs := services.DefaultPreferences()
	prefs.DarkMode = true
	if err := service.SavePreferences(ctx, userID, prefs); err != nil {
		logrus.Fatalf("Failed to save demo preferences: %v", err)
	}

	logrus.WithFields(logrus.Fields{
		"email":     demoEmail,
		"password":  demoPassword,
		"medicines": len(demoMedicines),
	}).Info("Demo database generated")
}
