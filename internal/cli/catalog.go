package cli

import (
	"flag"
	"fmt"
	"io"

	"github.com/mrlokans/medcompanion/internal/catalog"
)

// EmergencyCommand prints the emergency numbers.
type EmergencyCommand struct {
	Out io.Writer
}

func NewEmergencyCommand() *EmergencyCommand {
	return &EmergencyCommand{}
}

func (cmd *EmergencyCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("emergency", flag.ContinueOnError)
	fs.Usage = usage(fs, "emergency", "Print the emergency numbers.")
	return fs.Parse(args)
}

func (cmd *EmergencyCommand) Run() error {
	w := output(cmd.Out)
	for _, c := range catalog.EmergencyContacts() {
		fmt.Fprintf(w, "%-5s %-22s %-28s %s\n", c.Number, c.Name, c.Description, c.DialURI())
	}
	return nil
}

// NewsCommand prints the health news.
type NewsCommand struct {
	Category string
	Out      io.Writer
}

func NewNewsCommand() *NewsCommand {
	return &NewsCommand{}
}

func (cmd *NewsCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("news", flag.ContinueOnError)
	fs.StringVar(&cmd.Category, "category", "", "Only show items of this category")
	fs.Usage = usage(fs, "news", "Print the health news.", "news -category İlaç")
	return fs.Parse(args)
}

func (cmd *NewsCommand) Run() error {
	items := catalog.News()
	if cmd.Category != "" {
		items = catalog.NewsByCategory(cmd.Category)
	}

	w := output(cmd.Out)
	if len(items) == 0 {
		fmt.Fprintln(w, "No news.")
		return nil
	}
	for _, n := range items {
		fmt.Fprintf(w, "[%s] %s (%s)\n    %s\n", n.Date, n.Title, n.Category, n.Description)
	}
	return nil
}
