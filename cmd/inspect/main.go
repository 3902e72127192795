// Command inspect dumps the relay's message store as a table.
// Read-only: it can run while the relay holds the badger lock.
package main

import (
	"log"
	"log/slog"
	"os"

	"chat-relay/repositories"

	"github.com/Netflix/go-env"
	"github.com/dgraph-io/badger/v4"
	"github.com/gookit/color"
	"github.com/joho/godotenv"
	"github.com/olekukonko/tablewriter"
)

type config struct {
	BadgerFilepath string `env:"BADGER_FILEPATH,required=true"`
}

func main() {
	_ = godotenv.Load()
	var cfg config
	if _, err := env.UnmarshalFromEnviron(&cfg); err != nil {
		log.Fatalf("Config error: %v", err)
	}

	// BypassLockGuard allows opening while the relay holds the lock.
	opts := badger.DefaultOptions(cfg.BadgerFilepath).
		WithReadOnly(true).
		WithBypassLockGuard(true).
		WithLoggingLevel(badger.WARNING)

	db, err := badger.Open(opts)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	repository := repositories.NewMessageRepository(db, slog.Default())
	messages, err := repository.Dump()
	if err != nil {
		log.Fatalf("Failed to scan messages: %v", err)
	}

	color.New(color.BgBlack, color.FgGreen).Printf("Messages stored: %d\n", len(messages))

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Created At", "ID", "Author", "Body"})
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")

	for _, message := range messages {
		table.Append([]string{
			message.CreatedAt.Format("2006-01-02 15:04:05"),
			shortID(message.ID.String()),
			message.Author,
			message.Body,
		})
	}
	table.Render()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
