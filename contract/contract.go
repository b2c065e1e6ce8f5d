//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"chat-archiver/domain"
	"chat-archiver/domain/document"
	"context"
)

// DocumentState is what the archiver needs to know about the target
// document before computing offsets.
type DocumentState struct {
	// EndOffset is where appended content starts (1 for an empty document).
	EndOffset int
	// RevisionID pins a submission to the state EndOffset was read from.
	RevisionID string
	// EndsWithText is set when the paragraph at EndOffset already holds text,
	// which appended content has to be separated from.
	EndsWithText bool
}

// IDocumentService is the remote rich-text document. Errors are classified:
// TransientIOError may be retried, anything else is final.
type IDocumentService interface {
	State(ctx context.Context, documentID string) (DocumentState, error)
	Submit(ctx context.Context, documentID string, revisionID string, batch document.Batch) error
}

// IExportParser turns a raw export into ordered messages.
type IExportParser interface {
	Parse(ctx context.Context, path string) (domain.ChatExport, error)
}
