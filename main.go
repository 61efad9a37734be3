package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/mrlokans/medcompanion/internal/cli"
	"github.com/mrlokans/medcompanion/internal/config"
	"github.com/mrlokans/medcompanion/internal/entrypoint"
)

// Version information - set at build time via ldflags
var (
	Version = "dev"
	Commit  = "unknown"
)

// subcommand is implemented by every command in internal/cli.
type subcommand interface {
	ParseFlags(args []string) error
	Run() error
}

func main() {
	// If no arguments or "serve" command, run the HTTP server
	if len(os.Args) < 2 || os.Args[1] == "serve" {
		cfg := config.NewConfig()
		entrypoint.Run(cfg, Version)
		return
	}

	command := os.Args[1]
	args := os.Args[2:]

	var cmd subcommand
	switch command {
	case "register":
		cmd = cli.NewRegisterCommand()
	case "medicines":
		cmd = cli.NewMedicinesCommand()
	case "add-medicine":
		cmd = cli.NewAddMedicineCommand()
	case "delete-medicine":
		cmd = cli.NewDeleteMedicineCommand()
	case "emergency":
		cmd = cli.NewEmergencyCommand()
	case "news":
		cmd = cli.NewNewsCommand()

	case "version":
		fmt.Printf("medcompanion %s (%s)\n", Version, Commit)
		return

	case "-h", "--help", "help":
		printUsage()
		return

	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}

	if err := cmd.ParseFlags(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := cmd.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, "Usage: %s <command> [options]\n\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "Commands:\n")
	fmt.Fprintf(os.Stderr, "  serve            Start the local UI bridge (default if no command given)\n")
	fmt.Fprintf(os.Stderr, "  register         Create an account\n")
	fmt.Fprintf(os.Stderr, "  medicines        List the medicines of an account\n")
	fmt.Fprintf(os.Stderr, "  add-medicine     Record a medicine for an account\n")
	fmt.Fprintf(os.Stderr, "  delete-medicine  Remove a medicine of an account\n")
	fmt.Fprintf(os.Stderr, "  emergency        Print the emergency numbers\n")
	fmt.Fprintf(os.Stderr, "  news             Print the health news\n")
	fmt.Fprintf(os.Stderr, "  version          Print the version\n")
	fmt.Fprintf(os.Stderr, "\nUse '%s <command> -h' for help on a specific command.\n", os.Args[0])
}
