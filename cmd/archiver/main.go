package main

import (
	"chat-archiver/contract"
	"chat-archiver/domain/document"
	"chat-archiver/errors"
	"chat-archiver/infrastructure/gdocs"
	"chat-archiver/internal"
	"chat-archiver/parser"
	"chat-archiver/services"
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/mama165/sdk-go/logs"
	"github.com/olekukonko/tablewriter"
)

const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

func main() {
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Archiver terminated with error: %v\n", err)
	}
	os.Exit(code)
}

// run keeps every deferred release on the way out before main exits.
func run() (int, error) {
	config, err := internal.LoadConfig()
	if err != nil {
		return exitConfig, err
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	location, err := config.Location()
	if err != nil {
		return exitConfig, err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	policy := config.RetryPolicy()
	store, closeStore, err := internal.OpenCheckpointStore(config.StoreOptions(), log, policy)
	if err != nil {
		if stderrors.Is(err, errors.ErrUnsupportedBackend) {
			return exitConfig, err
		}
		return exitRuntime, err
	}
	defer func() {
		if err := closeStore(); err != nil {
			log.Error("Closing checkpoint store failed", "error", err)
		}
	}()

	documents, err := newDocumentService(ctx, config, log)
	if err != nil {
		return exitConfig, err
	}

	service := services.NewArchiveService(log,
		parser.NewWhatsAppParser(log, config.ExportDateLayout, location),
		documents,
		store,
		document.NewRenderer(config.ArchiveTitle))

	runCtx, cancel := context.WithTimeout(ctx, config.RemoteTimeout)
	defer cancel()

	result, err := service.Archive(runCtx, services.ArchiveRequest{
		DocumentID:   config.DocumentID,
		SourcePath:   config.ExportPath,
		SenderFilter: config.Filter(),
		DryRun:       config.DryRun,
	})
	printSummary(result, err)
	if err != nil {
		return exitRuntime, err
	}
	return exitOK, nil
}

// newDocumentService skips authentication on dry runs, which never reach the document.
func newDocumentService(ctx context.Context, config internal.Config, log *slog.Logger) (contract.IDocumentService, error) {
	if config.DryRun {
		return offlineDocument{}, nil
	}
	return gdocs.NewClient(ctx, log, config.RetryPolicy(), config.GoogleCredentialsFile)
}

type offlineDocument struct{}

func (offlineDocument) State(context.Context, string) (contract.DocumentState, error) {
	return contract.DocumentState{EndOffset: document.FirstOffset}, nil
}

func (offlineDocument) Submit(context.Context, string, string, document.Batch) error {
	return nil
}

func printSummary(result services.ArchiveResult, err error) {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Document", "Sender", "Messages", "Already archived", "New", "Operations", "Range", "Status"})
	table.SetAutoFormatHeaders(false)
	table.SetBorder(false)
	table.Append([]string{
		result.DocumentID,
		result.SenderLabel,
		strconv.Itoa(result.TotalMessages),
		strconv.Itoa(result.AlreadyArchived),
		strconv.Itoa(result.NewMessages),
		strconv.Itoa(result.Operations),
		fmt.Sprintf("%d-%d", result.StartOffset, result.EndOffset),
		status(result, err),
	})
	table.Render()
}

func status(result services.ArchiveResult, err error) string {
	var stageErr *errors.StageError
	switch {
	case stderrors.As(err, &stageErr):
		return "failed at " + string(stageErr.Stage)
	case err != nil:
		return "failed"
	case result.DryRun:
		return "dry run"
	case result.Submitted:
		return "archived"
	default:
		return "up to date"
	}
}
