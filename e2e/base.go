package e2e

import (
	"chat-archiver/contract"
	"chat-archiver/domain/document"
	"chat-archiver/infrastructure/gdocs"
	"chat-archiver/retry"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/gookit/color"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/suite"
)

const stepTimeout = 2 * time.Minute

type BaseDocumentSuite struct {
	suite.Suite
	Config Config
	Log    *slog.Logger
}

// SetupSuite loads the environment configuration and skips the suite when no
// scratch document is configured.
func (s *BaseDocumentSuite) SetupSuite() {
	var err error
	s.Config, err = LoadConfig()
	s.Require().NoError(err)
	if !s.Config.Enabled() {
		s.T().Skip("E2E_DOCUMENT_ID and E2E_GOOGLE_CREDENTIALS_FILE are not set")
	}
	s.Log = logs.GetLoggerFromLevel(slog.LevelDebug)
}

// Step prints a colorized header and runs fn with a bounded context.
func (s *BaseDocumentSuite) Step(name string, fn func(ctx context.Context)) {
	header := fmt.Sprintf("  ====== %s ======", name)
	if s.Config.Colours {
		header = color.New(color.BgBlack, color.FgGreen).Render(header)
	}
	s.T().Log(header)

	ctx, cancel := context.WithTimeout(context.Background(), stepTimeout)
	defer cancel()
	fn(ctx)
}

// Documents returns the real client, wrapped to dump requests when E2E_DEBUG_JSON is set.
func (s *BaseDocumentSuite) Documents(ctx context.Context) contract.IDocumentService {
	client, err := gdocs.NewClient(ctx, s.Log, retry.DefaultPolicy(), s.Config.CredentialsFile)
	s.Require().NoError(err, "Failed to create docs client")
	if !s.Config.DebugJSON {
		return client
	}
	return debugDocuments{IDocumentService: client, suite: s}
}

type debugDocuments struct {
	contract.IDocumentService
	suite *BaseDocumentSuite
}

func (d debugDocuments) Submit(ctx context.Context, documentID string, revisionID string, batch document.Batch) error {
	start := time.Now()
	err := d.IDocumentService.Submit(ctx, documentID, revisionID, batch)
	body, _ := json.MarshalIndent(gdocs.ToRequests(batch), "", "  ")
	d.suite.T().Logf("BatchUpdate %s revision=%q in %v err=%v\nREQUEST:\n%s",
		documentID, revisionID, time.Since(start), err, body)
	return err
}
