// Package gdocs submits archive batches to Google Docs.
package gdocs

import (
	"chat-archiver/contract"
	"chat-archiver/domain/document"
	"chat-archiver/errors"
	"chat-archiver/retry"
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"

	"github.com/samber/lo"
	"google.golang.org/api/docs/v1"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

var headingStyles = map[int]string{
	1: "HEADING_1",
	2: "HEADING_2",
	3: "HEADING_3",
	4: "HEADING_4",
	5: "HEADING_5",
	6: "HEADING_6",
}

type Client struct {
	service *docs.Service
	log     *slog.Logger
	policy  retry.Policy
}

var _ contract.IDocumentService = (*Client)(nil)

// NewClient authenticates with a service account or OAuth credentials file.
func NewClient(ctx context.Context, log *slog.Logger, policy retry.Policy, credentialsFile string) (*Client, error) {
	return NewClientWithOptions(ctx, log, policy,
		option.WithCredentialsFile(credentialsFile),
		option.WithScopes(docs.DocumentsScope))
}

func NewClientWithOptions(ctx context.Context, log *slog.Logger, policy retry.Policy, opts ...option.ClientOption) (*Client, error) {
	service, err := docs.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create docs service: %w", err)
	}
	return &Client{service: service, log: log, policy: policy}, nil
}

// State reads the current end of the body. The last structural element ends
// after the document's final newline, which text cannot be inserted past.
func (c *Client) State(ctx context.Context, documentID string) (contract.DocumentState, error) {
	var doc *docs.Document
	err := retry.Do(ctx, c.log, c.policy, "get document", func(ctx context.Context) error {
		var err error
		doc, err = c.service.Documents.Get(documentID).Context(ctx).Do()
		return classify(err)
	})
	if err != nil {
		return contract.DocumentState{}, err
	}
	state := contract.DocumentState{EndOffset: document.FirstOffset, RevisionID: doc.RevisionId}
	if doc.Body != nil && len(doc.Body.Content) > 0 {
		last := doc.Body.Content[len(doc.Body.Content)-1]
		state.EndOffset = max(document.FirstOffset, int(last.EndIndex)-1)
		state.EndsWithText = hasText(last.Paragraph)
	}
	return state, nil
}

// hasText reports whether a paragraph holds more than its closing newline.
func hasText(paragraph *docs.Paragraph) bool {
	if paragraph == nil {
		return false
	}
	return lo.SomeBy(paragraph.Elements, func(element *docs.ParagraphElement) bool {
		return element.TextRun != nil && strings.TrimRight(element.TextRun.Content, "\n") != ""
	})
}

// Submit sends the whole batch in a single request so it applies entirely or
// not at all. A revision change since State makes the service reject it.
func (c *Client) Submit(ctx context.Context, documentID string, revisionID string, batch document.Batch) error {
	if len(batch.Operations) == 0 {
		return nil
	}
	request := &docs.BatchUpdateDocumentRequest{Requests: ToRequests(batch)}
	if revisionID != "" {
		request.WriteControl = &docs.WriteControl{RequiredRevisionId: revisionID}
	}
	return retry.Do(ctx, c.log, c.policy, "batch update", func(ctx context.Context) error {
		_, err := c.service.Documents.BatchUpdate(documentID, request).Context(ctx).Do()
		if err == nil {
			c.log.Debug("Batch submitted", "document", documentID,
				"operations", len(batch.Operations), "start", batch.StartOffset, "end", batch.EndOffset)
		}
		return classify(err)
	})
}

// ToRequests maps operations one to one, keeping their order.
func ToRequests(batch document.Batch) []*docs.Request {
	return lo.FilterMap(batch.Operations, func(op document.Operation, _ int) (*docs.Request, bool) {
		switch o := op.(type) {
		case document.InsertText:
			return &docs.Request{InsertText: &docs.InsertTextRequest{
				Location: &docs.Location{Index: int64(o.Offset())},
				Text:     o.Text(),
			}}, true
		case document.ApplyHeading:
			return &docs.Request{UpdateParagraphStyle: &docs.UpdateParagraphStyleRequest{
				Range:          toRange(o.Range()),
				ParagraphStyle: &docs.ParagraphStyle{NamedStyleType: headingStyles[o.Level()]},
				Fields:         "namedStyleType",
			}}, true
		case document.ApplyBold:
			return &docs.Request{UpdateTextStyle: &docs.UpdateTextStyleRequest{
				Range:     toRange(o.Range()),
				TextStyle: &docs.TextStyle{Bold: true},
				Fields:    "bold",
			}}, true
		default:
			return nil, false
		}
	})
}

func toRange(r document.Range) *docs.Range {
	return &docs.Range{StartIndex: int64(r.Start), EndIndex: int64(r.End)}
}

// classify maps throttling, 5xx and network failures to TransientIOError
// and other API rejections to RemoteServiceError.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if stderrors.Is(err, context.Canceled) || stderrors.Is(err, context.DeadlineExceeded) {
		return err
	}
	var apiErr *googleapi.Error
	if stderrors.As(err, &apiErr) {
		if apiErr.Code == http.StatusTooManyRequests || apiErr.Code >= http.StatusInternalServerError {
			return errors.NewTransientIOError("docs api", err)
		}
		return errors.NewRemoteServiceError(apiErr.Code, err)
	}
	var netErr net.Error
	if stderrors.As(err, &netErr) {
		return errors.NewTransientIOError("docs api", err)
	}
	return err
}
