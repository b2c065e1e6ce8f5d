package services

import (
	"chat-archiver/contract"
	"chat-archiver/domain"
	"chat-archiver/domain/document"
	"chat-archiver/errors"
	"chat-archiver/mocks"
	"context"
	stderrors "errors"
	"log/slog"
	"testing"
	"time"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

const (
	documentID = "doc-123"
	sourcePath = "/exports/chat.txt"
)

var generatedAt = time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

type fixture struct {
	service     *ArchiveService
	parser      *mocks.MockIExportParser
	documents   *mocks.MockIDocumentService
	checkpoints *mocks.MockICheckpointRepository
}

func newFixture(t *testing.T) fixture {
	ctrl := gomock.NewController(t)
	f := fixture{
		parser:      mocks.NewMockIExportParser(ctrl),
		documents:   mocks.NewMockIDocumentService(ctrl),
		checkpoints: mocks.NewMockICheckpointRepository(ctrl),
	}
	f.service = NewArchiveService(logs.GetLoggerFromLevel(slog.LevelDebug),
		f.parser, f.documents, f.checkpoints, document.NewRenderer(""))
	f.service.now = func() time.Time { return generatedAt }
	return f
}

func sampleExport(t *testing.T) domain.ChatExport {
	t.Helper()
	req := require.New(t)
	alice1, err := domain.NewChatMessage(time.Date(2024, 12, 14, 9, 15, 0, 0, time.UTC), "Alice", "Good morning!")
	req.NoError(err)
	bob, err := domain.NewChatMessage(time.Date(2024, 12, 14, 9, 16, 0, 0, time.UTC), "Bob", "Morning")
	req.NoError(err)
	alice2, err := domain.NewChatMessage(time.Date(2024, 12, 15, 18, 30, 0, 0, time.UTC), "Alice", "See you")
	req.NoError(err)
	return domain.NewChatExport([]domain.ChatMessage{alice1, bob, alice2}, domain.ParsingMetadata{SourceName: "chat.txt"})
}

func freshCheckpoint(t *testing.T, filter *string) domain.ProcessingCheckpoint {
	t.Helper()
	checkpoint, err := domain.NewCheckpoint(documentID, filter)
	require.NoError(t, err)
	return checkpoint
}

func ptr(s string) *string { return &s }

func TestArchiveService_ArchivesNewMessagesOfOneSender(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	f := newFixture(t)
	export := sampleExport(t)
	alice := ptr("Alice")

	f.parser.EXPECT().Parse(ctx, sourcePath).Return(export, nil)
	f.checkpoints.EXPECT().Get(ctx, documentID, alice).Return(freshCheckpoint(t, alice), nil)
	f.documents.EXPECT().State(ctx, documentID).Return(contract.DocumentState{EndOffset: 57, RevisionID: "rev-1"}, nil)
	f.documents.EXPECT().Submit(ctx, documentID, "rev-1", gomock.Any()).
		DoAndReturn(func(_ context.Context, _, _ string, batch document.Batch) error {
			req.Equal(57, batch.StartOffset)
			inserts := batch.Inserts()
			req.Equal(57, inserts[0].Offset())
			req.Equal("Chat Archive - Alice\n", inserts[0].Text())
			return nil
		})
	f.checkpoints.EXPECT().Save(ctx, gomock.Any()).
		DoAndReturn(func(_ context.Context, checkpoint domain.ProcessingCheckpoint) error {
			req.Equal(2, checkpoint.ProcessedCount())
			for _, m := range export.MessagesFrom("Alice") {
				req.True(checkpoint.IsProcessed(m.ID()))
			}
			req.Equal(time.Date(2024, 12, 15, 18, 30, 0, 0, time.UTC), *checkpoint.LastProcessedTimestamp())
			return nil
		})

	result, err := f.service.Archive(ctx, ArchiveRequest{DocumentID: documentID, SourcePath: sourcePath, SenderFilter: alice})
	req.NoError(err)
	req.True(result.Submitted)
	req.Equal("Alice", result.SenderLabel)
	req.Equal(2, result.TotalMessages)
	req.Equal(2, result.NewMessages)
	req.Zero(result.AlreadyArchived)
	req.Equal(57, result.StartOffset)
	req.Greater(result.EndOffset, result.StartOffset)
	req.NotZero(result.Operations)
}

func TestArchiveService_SkipsAlreadyArchivedMessages(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	f := newFixture(t)
	export := sampleExport(t)
	messages := export.Messages()
	checkpoint := freshCheckpoint(t, nil).MarkProcessed(messages[0].ID(), messages[1].ID())

	f.parser.EXPECT().Parse(ctx, sourcePath).Return(export, nil)
	f.checkpoints.EXPECT().Get(ctx, documentID, nil).Return(checkpoint, nil)
	f.documents.EXPECT().State(ctx, documentID).Return(contract.DocumentState{EndOffset: 1}, nil)
	f.documents.EXPECT().Submit(ctx, documentID, "", gomock.Any()).Return(nil)
	f.checkpoints.EXPECT().Save(ctx, gomock.Any()).
		DoAndReturn(func(_ context.Context, saved domain.ProcessingCheckpoint) error {
			req.Equal(checkpoint.ID(), saved.ID())
			req.Equal(3, saved.ProcessedCount())
			return nil
		})

	result, err := f.service.Archive(ctx, ArchiveRequest{DocumentID: documentID, SourcePath: sourcePath})
	req.NoError(err)
	req.Equal(AllParticipantsLabel, result.SenderLabel)
	req.Equal(3, result.TotalMessages)
	req.Equal(1, result.NewMessages)
	req.Equal(2, result.AlreadyArchived)
}

func TestArchiveService_NothingNew(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	f := newFixture(t)
	export := sampleExport(t)
	ids := make([]domain.MessageID, 0, export.Len())
	for _, m := range export.Messages() {
		ids = append(ids, m.ID())
	}

	f.parser.EXPECT().Parse(ctx, sourcePath).Return(export, nil)
	f.checkpoints.EXPECT().Get(ctx, documentID, nil).Return(freshCheckpoint(t, nil).MarkProcessed(ids...), nil)

	result, err := f.service.Archive(ctx, ArchiveRequest{DocumentID: documentID, SourcePath: sourcePath})
	req.NoError(err)
	req.False(result.Submitted)
	req.Zero(result.NewMessages)
	req.Equal(3, result.AlreadyArchived)
}

func TestArchiveService_DryRunTouchesNothing(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	f := newFixture(t)

	f.parser.EXPECT().Parse(ctx, sourcePath).Return(sampleExport(t), nil)
	f.checkpoints.EXPECT().Get(ctx, documentID, nil).Return(freshCheckpoint(t, nil), nil)

	result, err := f.service.Archive(ctx, ArchiveRequest{DocumentID: documentID, SourcePath: sourcePath, DryRun: true})
	req.NoError(err)
	req.True(result.DryRun)
	req.False(result.Submitted)
	req.Equal(3, result.NewMessages)
	req.Equal(document.FirstOffset, result.StartOffset)
	req.NotZero(result.Operations)
}

func TestArchiveService_BlankFilterArchivesEveryone(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	f := newFixture(t)

	f.parser.EXPECT().Parse(ctx, sourcePath).Return(sampleExport(t), nil)
	f.checkpoints.EXPECT().Get(ctx, documentID, nil).Return(freshCheckpoint(t, nil), nil)

	result, err := f.service.Archive(ctx, ArchiveRequest{DocumentID: documentID, SourcePath: sourcePath, SenderFilter: ptr("  "), DryRun: true})
	req.NoError(err)
	req.Equal(AllParticipantsLabel, result.SenderLabel)
	req.Equal(3, result.TotalMessages)
}

func TestArchiveService_Failures(t *testing.T) {
	boom := stderrors.New("boom")

	tests := []struct {
		description string
		expect      func(t *testing.T, f fixture)
		wantStage   errors.Stage
		wantSaved   bool
	}{
		{
			"Should fail at load when the export cannot be parsed",
			func(t *testing.T, f fixture) {
				f.parser.EXPECT().Parse(gomock.Any(), sourcePath).Return(domain.ChatExport{}, errors.ErrNotPlainText)
			},
			errors.StageLoad, false,
		},
		{
			"Should fail at checkpoint when stored state is corrupt",
			func(t *testing.T, f fixture) {
				f.parser.EXPECT().Parse(gomock.Any(), sourcePath).Return(sampleExport(t), nil)
				f.checkpoints.EXPECT().Get(gomock.Any(), documentID, nil).
					Return(domain.ProcessingCheckpoint{}, errors.NewCorruptStateError("doc-123__all", boom))
			},
			errors.StageCheckpoint, false,
		},
		{
			"Should fail at submit when the document cannot be read",
			func(t *testing.T, f fixture) {
				f.parser.EXPECT().Parse(gomock.Any(), sourcePath).Return(sampleExport(t), nil)
				f.checkpoints.EXPECT().Get(gomock.Any(), documentID, nil).Return(freshCheckpoint(t, nil), nil)
				f.documents.EXPECT().State(gomock.Any(), documentID).Return(contract.DocumentState{}, errors.NewTransientIOError("docs api", boom))
			},
			errors.StageSubmit, false,
		},
		{
			"Should not save the checkpoint when submit fails",
			func(t *testing.T, f fixture) {
				f.parser.EXPECT().Parse(gomock.Any(), sourcePath).Return(sampleExport(t), nil)
				f.checkpoints.EXPECT().Get(gomock.Any(), documentID, nil).Return(freshCheckpoint(t, nil), nil)
				f.documents.EXPECT().State(gomock.Any(), documentID).Return(contract.DocumentState{EndOffset: 1}, nil)
				f.documents.EXPECT().Submit(gomock.Any(), documentID, "", gomock.Any()).Return(errors.NewRemoteServiceError(400, boom))
				f.checkpoints.EXPECT().Save(gomock.Any(), gomock.Any()).Times(0)
			},
			errors.StageSubmit, false,
		},
		{
			"Should report persist failure after a successful submit",
			func(t *testing.T, f fixture) {
				f.parser.EXPECT().Parse(gomock.Any(), sourcePath).Return(sampleExport(t), nil)
				f.checkpoints.EXPECT().Get(gomock.Any(), documentID, nil).Return(freshCheckpoint(t, nil), nil)
				f.documents.EXPECT().State(gomock.Any(), documentID).Return(contract.DocumentState{EndOffset: 1}, nil)
				f.documents.EXPECT().Submit(gomock.Any(), documentID, "", gomock.Any()).Return(nil)
				f.checkpoints.EXPECT().Save(gomock.Any(), gomock.Any()).Return(errors.NewTransientIOError("rename", boom))
			},
			errors.StagePersist, true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.description, func(t *testing.T) {
			req := require.New(t)
			f := newFixture(t)
			tt.expect(t, f)

			result, err := f.service.Archive(context.Background(), ArchiveRequest{DocumentID: documentID, SourcePath: sourcePath})
			var stageErr *errors.StageError
			req.ErrorAs(err, &stageErr)
			req.Equal(tt.wantStage, stageErr.Stage)
			req.Equal(tt.wantSaved, result.Submitted)
		})
	}
}

func TestArchiveService_RejectsInvalidRequest(t *testing.T) {
	tests := []struct {
		description string
		request     ArchiveRequest
	}{
		{"Should fail without document id", ArchiveRequest{SourcePath: sourcePath}},
		{"Should fail without source path", ArchiveRequest{DocumentID: documentID}},
	}

	for _, tt := range tests {
		t.Run(tt.description, func(t *testing.T) {
			req := require.New(t)
			f := newFixture(t)

			_, err := f.service.Archive(context.Background(), tt.request)
			req.True(errors.IsValidation(err))
			var stageErr *errors.StageError
			req.ErrorAs(err, &stageErr)
			req.Equal(errors.StageLoad, stageErr.Stage)
		})
	}
}

func TestArchiveService_StopsBeforeSubmitWhenCancelled(t *testing.T) {
	req := require.New(t)
	ctx, cancel := context.WithCancel(context.Background())
	f := newFixture(t)

	f.parser.EXPECT().Parse(ctx, sourcePath).Return(sampleExport(t), nil)
	f.checkpoints.EXPECT().Get(ctx, documentID, nil).Return(freshCheckpoint(t, nil), nil)
	f.documents.EXPECT().State(ctx, documentID).
		DoAndReturn(func(context.Context, string) (contract.DocumentState, error) {
			cancel()
			return contract.DocumentState{EndOffset: 1}, nil
		})

	_, err := f.service.Archive(ctx, ArchiveRequest{DocumentID: documentID, SourcePath: sourcePath})
	req.ErrorIs(err, context.Canceled)
}

func TestArchiveService_SeparatesFromTrailingText(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	f := newFixture(t)

	f.parser.EXPECT().Parse(ctx, sourcePath).Return(sampleExport(t), nil)
	f.checkpoints.EXPECT().Get(ctx, documentID, nil).Return(freshCheckpoint(t, nil), nil)
	f.documents.EXPECT().State(ctx, documentID).
		Return(contract.DocumentState{EndOffset: 11, RevisionID: "rev-2", EndsWithText: true}, nil)
	f.documents.EXPECT().Submit(ctx, documentID, "rev-2", gomock.Any()).
		DoAndReturn(func(_ context.Context, _, _ string, batch document.Batch) error {
			inserts := batch.Inserts()
			req.Equal("\n", inserts[0].Text())
			req.Equal(11, inserts[0].Offset())
			req.Equal("Chat Archive - All participants\n", inserts[1].Text())
			req.Equal(12, inserts[1].Offset())
			req.Equal(12, batch.Styles()[0].Range().Start)
			return nil
		})
	f.checkpoints.EXPECT().Save(ctx, gomock.Any()).Return(nil)

	result, err := f.service.Archive(ctx, ArchiveRequest{DocumentID: documentID, SourcePath: sourcePath})
	req.NoError(err)
	req.True(result.Submitted)
	req.Equal(11, result.StartOffset)
}
