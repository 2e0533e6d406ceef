package moderation

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/enamahmedshahaz/peoples-forum-server/internal/models"
	"github.com/enamahmedshahaz/peoples-forum-server/internal/store"
)

func seedReportedComment(t *testing.T, mem *store.Memory) (reportID, commentID string) {
	t.Helper()
	ctx := context.Background()

	commentID, err := mem.Insert(ctx, models.CommentsCollection, models.Comment{
		PostID: "p1", AuthorEmail: "a@b.c", Body: "rude",
	})
	require.NoError(t, err)

	reportID, err = mem.Insert(ctx, models.ReportsCollection, models.Report{
		CommentID: commentID, ReporterEmail: "mod@b.c", Reason: "abuse",
	})
	require.NoError(t, err)
	return reportID, commentID
}

func TestResolveReportDeletesBoth(t *testing.T) {
	mem := store.NewMemory()
	coordinator := NewCoordinator(mem)
	reportID, commentID := seedReportedComment(t, mem)

	result, err := coordinator.ResolveReport(context.Background(), reportID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), result.ReportsDeleted)
	assert.Equal(t, int64(1), result.CommentsDeleted)

	_, err = mem.FindByID(context.Background(), models.ReportsCollection, reportID)
	assert.ErrorIs(t, err, store.ErrNotFound)
	_, err = mem.FindByID(context.Background(), models.CommentsCollection, commentID)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestResolveReportNotFound(t *testing.T) {
	coordinator := NewCoordinator(store.NewMemory())

	_, err := coordinator.ResolveReport(context.Background(), "missing")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

// A failure after the report delete but before the comment delete must not
// be observable: both documents stay.
func TestResolveReportRollsBackOnPartialFailure(t *testing.T) {
	mem := store.NewMemory()
	coordinator := NewCoordinator(mem)
	reportID, commentID := seedReportedComment(t, mem)

	injected := errors.New("injected delete failure")
	mem.DeleteHook = func(collection, id string) error {
		if collection == models.CommentsCollection {
			return injected
		}
		return nil
	}

	_, err := coordinator.ResolveReport(context.Background(), reportID)
	assert.ErrorIs(t, err, injected)

	mem.DeleteHook = nil
	ctx := context.Background()

	_, err = mem.FindByID(ctx, models.ReportsCollection, reportID)
	assert.NoError(t, err, "report must survive the aborted transaction")
	_, err = mem.FindByID(ctx, models.CommentsCollection, commentID)
	assert.NoError(t, err, "comment must survive the aborted transaction")
}

func TestResolveReportMissingCommentStillCommits(t *testing.T) {
	mem := store.NewMemory()
	coordinator := NewCoordinator(mem)
	ctx := context.Background()

	reportID, err := mem.Insert(ctx, models.ReportsCollection, models.Report{
		CommentID: "already-gone", ReporterEmail: "mod@b.c", Reason: "abuse",
	})
	require.NoError(t, err)

	result, err := coordinator.ResolveReport(ctx, reportID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), result.ReportsDeleted)
	assert.Equal(t, int64(0), result.CommentsDeleted)
}
