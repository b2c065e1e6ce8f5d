package services

import (
	"chat-archiver/contract"
	"chat-archiver/domain"
	"chat-archiver/domain/document"
	"chat-archiver/errors"
	"chat-archiver/repositories"
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"
)

const AllParticipantsLabel = "All participants"

var validate = validator.New()

type ArchiveRequest struct {
	DocumentID string `validate:"required"`
	SourcePath string `validate:"required"`
	// SenderFilter restricts the run to one participant. Nil archives everyone.
	SenderFilter *string
	DryRun       bool
}

type ArchiveResult struct {
	DocumentID      string
	SenderLabel     string
	TotalMessages   int
	AlreadyArchived int
	NewMessages     int
	Operations      int
	StartOffset     int
	EndOffset       int
	Submitted       bool
	DryRun          bool
}

type IArchiveService interface {
	Archive(ctx context.Context, request ArchiveRequest) (ArchiveResult, error)
}

type ArchiveService struct {
	log         *slog.Logger
	parser      contract.IExportParser
	documents   contract.IDocumentService
	checkpoints repositories.ICheckpointRepository
	renderer    document.Renderer
	now         func() time.Time
}

func NewArchiveService(
	log *slog.Logger,
	parser contract.IExportParser,
	documents contract.IDocumentService,
	checkpoints repositories.ICheckpointRepository,
	renderer document.Renderer,
) *ArchiveService {
	return &ArchiveService{
		log:         log,
		parser:      parser,
		documents:   documents,
		checkpoints: checkpoints,
		renderer:    renderer,
		now:         time.Now,
	}
}

// Archive appends to the document the messages of the export it has not
// received yet. The checkpoint is saved only once the document accepted the
// batch: a failed submit leaves the next run to retry the same messages.
func (s *ArchiveService) Archive(ctx context.Context, request ArchiveRequest) (ArchiveResult, error) {
	request.SenderFilter = normalizeFilter(request.SenderFilter)
	if err := validate.Struct(request); err != nil {
		return ArchiveResult{}, errors.NewStageError(errors.StageLoad,
			errors.NewValidationError("request", err.Error(), err))
	}
	label := lo.FromPtrOr(request.SenderFilter, AllParticipantsLabel)
	result := ArchiveResult{DocumentID: request.DocumentID, SenderLabel: label, DryRun: request.DryRun}

	export, err := s.parser.Parse(ctx, request.SourcePath)
	if err != nil {
		return result, errors.NewStageError(errors.StageLoad, err)
	}

	checkpoint, err := s.checkpoints.Get(ctx, request.DocumentID, request.SenderFilter)
	if err != nil {
		return result, errors.NewStageError(errors.StageCheckpoint, err)
	}

	if request.SenderFilter != nil {
		export = export.Filter(domain.FromSender(*request.SenderFilter))
	}
	fresh := domain.Deduplicate(export, checkpoint)
	result.TotalMessages = export.Len()
	result.NewMessages = len(fresh)
	result.AlreadyArchived = result.TotalMessages - result.NewMessages

	s.log.Info("Export loaded", "document", request.DocumentID, "sender", label,
		"messages", result.TotalMessages, "new", result.NewMessages, "checkpoint", checkpoint.ID())

	if len(fresh) == 0 {
		s.log.Info("Nothing new to archive", "document", request.DocumentID, "sender", label)
		return result, nil
	}

	sections, err := s.renderer.Render(fresh, label, s.now())
	if err != nil {
		return result, errors.NewStageError(errors.StageRender, err)
	}

	if request.DryRun {
		batch, err := document.ToOperations(sections, document.FirstOffset)
		if err != nil {
			return result, errors.NewStageError(errors.StageRender, err)
		}
		result.Operations = len(batch.Operations)
		result.StartOffset, result.EndOffset = batch.StartOffset, batch.EndOffset
		s.log.Info("Dry run, document and checkpoint left untouched",
			"document", request.DocumentID, "operations", result.Operations)
		return result, nil
	}

	state, err := s.documents.State(ctx, request.DocumentID)
	if err != nil {
		return result, errors.NewStageError(errors.StageSubmit, err)
	}
	toOperations := document.ToOperations
	if state.EndsWithText {
		toOperations = document.ToOperationsOnNewLine
	}
	batch, err := toOperations(sections, state.EndOffset)
	if err != nil {
		return result, errors.NewStageError(errors.StageRender, err)
	}
	result.Operations = len(batch.Operations)
	result.StartOffset, result.EndOffset = batch.StartOffset, batch.EndOffset

	if err := ctx.Err(); err != nil {
		return result, errors.NewStageError(errors.StageSubmit, err)
	}
	if err := s.documents.Submit(ctx, request.DocumentID, state.RevisionID, batch); err != nil {
		return result, errors.NewStageError(errors.StageSubmit, err)
	}
	result.Submitted = true

	ids := lo.Map(fresh, func(m domain.ChatMessage, _ int) domain.MessageID { return m.ID() })
	if err := s.checkpoints.Save(ctx, checkpoint.MarkProcessed(ids...)); err != nil {
		s.log.Error("Document updated but checkpoint not saved, next run will append these messages again",
			"document", request.DocumentID, "sender", label, "messages", len(ids), "error", err)
		return result, errors.NewStageError(errors.StagePersist, err)
	}

	s.log.Info("Archive run finished", "document", request.DocumentID, "sender", label,
		"archived", result.NewMessages, "operations", result.Operations,
		"start", result.StartOffset, "end", result.EndOffset)
	return result, nil
}

func normalizeFilter(filter *string) *string {
	if filter == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*filter)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
