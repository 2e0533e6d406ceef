package moderation

import (
	"context"

	"github.com/enamahmedshahaz/peoples-forum-server/internal/models"
	"github.com/enamahmedshahaz/peoples-forum-server/internal/store"
)

// Coordinator owns the one multi-entity write invariant in the system:
// resolving a report deletes both the report and the comment it targets,
// or neither.
type Coordinator struct {
	store store.Store
}

func NewCoordinator(s store.Store) *Coordinator {
	return &Coordinator{store: s}
}

// Result reports what a successful resolution removed.
type Result struct {
	ReportsDeleted  int64 `json:"reportsDeleted"`
	CommentsDeleted int64 `json:"commentsDeleted"`
}

// ResolveReport deletes the report and its target comment as a single
// transaction. A missing report is store.ErrNotFound before any write; a
// failure of either delete aborts the transaction and leaves both documents
// in place.
func (c *Coordinator) ResolveReport(ctx context.Context, reportID string) (*Result, error) {
	doc, err := c.store.FindByID(ctx, models.ReportsCollection, reportID)
	if err != nil {
		return nil, err
	}

	var report models.Report
	if err := store.Decode(doc, &report); err != nil {
		return nil, err
	}

	result := &Result{}
	err = c.store.WithTransaction(ctx, func(ctx context.Context) error {
		n, err := c.store.DeleteByID(ctx, models.ReportsCollection, reportID)
		if err != nil {
			return err
		}
		result.ReportsDeleted = n

		n, err = c.store.DeleteByID(ctx, models.CommentsCollection, report.CommentID)
		if err != nil {
			return err
		}
		result.CommentsDeleted = n
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
