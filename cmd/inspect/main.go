package main

import (
	"chat-archiver/domain"
	"chat-archiver/internal"
	"chat-archiver/repositories"
	"chat-archiver/retry"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/mama165/sdk-go/logs"
	"github.com/olekukonko/tablewriter"
	"github.com/samber/lo"
)

func main() {
	backend := flag.String("backend", internal.BackendFile, "Checkpoint backend (file or badger)")
	dir := flag.String("dir", ".checkpoints", "Checkpoint directory for the file backend")
	dbPath := flag.String("db", ".badger", "Path to badger DB")
	level := flag.String("log", "WARN", "Log level")
	flag.Parse()

	if err := run(os.Stdout, internal.StoreOptions{
		Backend:        *backend,
		CheckpointDir:  *dir,
		BadgerFilepath: *dbPath,
		ReadOnly:       true,
	}, *level); err != nil {
		fmt.Fprintf(os.Stderr, "Inspect failed: %v\n", err)
		os.Exit(1)
	}
}

func run(out io.Writer, options internal.StoreOptions, level string) error {
	log := logs.GetLoggerFromString(level)
	store, closeStore, err := internal.OpenCheckpointStore(options, log, retry.DefaultPolicy())
	if err != nil {
		return err
	}
	defer func() { _ = closeStore() }()

	checkpoints, err := store.List(context.Background())
	if err != nil {
		return err
	}

	table := tablewriter.NewWriter(out)
	table.SetHeader([]string{"Key", "Document", "Sender", "Processed", "Last processed", "ID"})
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
	for _, checkpoint := range checkpoints {
		table.Append(row(checkpoint))
	}
	table.Render()
	return nil
}

func row(checkpoint domain.ProcessingCheckpoint) []string {
	last := "-"
	if at := checkpoint.LastProcessedTimestamp(); at != nil {
		last = at.Format(time.RFC3339)
	}
	return []string{
		repositories.StoreKey(checkpoint.DocumentID(), checkpoint.SenderFilter()),
		checkpoint.DocumentID(),
		lo.FromPtrOr(checkpoint.SenderFilter(), "*"),
		strconv.Itoa(checkpoint.ProcessedCount()),
		last,
		checkpoint.ID().String()[:8],
	}
}
