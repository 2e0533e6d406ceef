package ranking

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/enamahmedshahaz/peoples-forum-server/internal/models"
	"github.com/enamahmedshahaz/peoples-forum-server/internal/store"
)

func setupEngine(t *testing.T) (*Engine, *store.Memory) {
	t.Helper()
	mem := store.NewMemory()
	return NewEngine(mem), mem
}

func seedPost(t *testing.T, mem *store.Memory, post models.Post) string {
	t.Helper()
	id, err := mem.Insert(context.Background(), models.PostsCollection, post)
	require.NoError(t, err)
	return id
}

func at(day int) time.Time {
	return time.Date(2024, 5, day, 12, 0, 0, 0, time.UTC)
}

func TestLatestActivityDefaultsToCreatedAt(t *testing.T) {
	engine, mem := setupEngine(t)
	created := at(1)
	seedPost(t, mem, models.Post{Title: "no updates", CreatedAt: created})

	views, err := engine.ListPosts(context.Background(), ListOptions{})
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.True(t, views[0].LatestActivity.Equal(created))
}

func TestLatestActivityUsesUpdatedAtWhenNewer(t *testing.T) {
	engine, mem := setupEngine(t)
	updated := at(9)
	seedPost(t, mem, models.Post{Title: "edited", CreatedAt: at(1), UpdatedAt: &updated})

	views, err := engine.ListPosts(context.Background(), ListOptions{})
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.True(t, views[0].LatestActivity.Equal(updated))
}

func TestVoteBalanceDerivedFresh(t *testing.T) {
	engine, mem := setupEngine(t)
	id := seedPost(t, mem, models.Post{Title: "p", CreatedAt: at(1), UpVoteCount: 5, DownVoteCount: 2})

	views, err := engine.ListPosts(context.Background(), ListOptions{Mode: ModeTop})
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, 3, views[0].VoteBalance)

	// one more upvote is reflected on the very next ranking call
	require.NoError(t, mem.AtomicIncrement(context.Background(), models.PostsCollection, id, "upVoteCount", 1))

	views, err = engine.ListPosts(context.Background(), ListOptions{Mode: ModeTop})
	require.NoError(t, err)
	assert.Equal(t, 4, views[0].VoteBalance)
}

func TestTopOrderingWithTieBreak(t *testing.T) {
	engine, mem := setupEngine(t)

	// balance 3
	seedPost(t, mem, models.Post{Title: "mid", CreatedAt: at(1), UpVoteCount: 5, DownVoteCount: 2})
	// balance 7
	seedPost(t, mem, models.Post{Title: "best", CreatedAt: at(2), UpVoteCount: 8, DownVoteCount: 1})
	// balance 3, more recent than "mid" — wins the tie
	seedPost(t, mem, models.Post{Title: "mid-newer", CreatedAt: at(5), UpVoteCount: 3, DownVoteCount: 0})
	// balance -2, negative balances rank below everything
	seedPost(t, mem, models.Post{Title: "worst", CreatedAt: at(9), UpVoteCount: 1, DownVoteCount: 3})

	views, err := engine.ListPosts(context.Background(), ListOptions{Mode: ModeTop})
	require.NoError(t, err)
	require.Len(t, views, 4)

	titles := []string{views[0].Title, views[1].Title, views[2].Title, views[3].Title}
	assert.Equal(t, []string{"best", "mid-newer", "mid", "worst"}, titles)
}

func TestRecentOrdering(t *testing.T) {
	engine, mem := setupEngine(t)

	seedPost(t, mem, models.Post{Title: "old", CreatedAt: at(1)})
	seedPost(t, mem, models.Post{Title: "new", CreatedAt: at(8)})
	updated := at(9)
	seedPost(t, mem, models.Post{Title: "old-but-edited", CreatedAt: at(2), UpdatedAt: &updated})

	views, err := engine.ListPosts(context.Background(), ListOptions{Mode: ModeRecent})
	require.NoError(t, err)
	require.Len(t, views, 3)
	assert.Equal(t, "old-but-edited", views[0].Title)
	assert.Equal(t, "new", views[1].Title)
	assert.Equal(t, "old", views[2].Title)
}

func TestInvalidModeFallsBackToRecent(t *testing.T) {
	engine, mem := setupEngine(t)

	seedPost(t, mem, models.Post{Title: "old", CreatedAt: at(1), UpVoteCount: 100})
	seedPost(t, mem, models.Post{Title: "new", CreatedAt: at(5)})

	views, err := engine.ListPosts(context.Background(), ListOptions{Mode: Mode("bogus")})
	require.NoError(t, err)
	require.Len(t, views, 2)
	assert.Equal(t, "new", views[0].Title)
}

func TestAuthorFilterAppliesBeforeLimit(t *testing.T) {
	engine, mem := setupEngine(t)

	seedPost(t, mem, models.Post{Title: "other-1", AuthorEmail: "other@x.y", CreatedAt: at(9)})
	seedPost(t, mem, models.Post{Title: "mine-old", AuthorEmail: "me@x.y", CreatedAt: at(1)})
	seedPost(t, mem, models.Post{Title: "mine-new", AuthorEmail: "me@x.y", CreatedAt: at(3)})

	views, err := engine.ListPosts(context.Background(), ListOptions{
		AuthorEmail: "me@x.y",
		Limit:       1,
	})
	require.NoError(t, err)
	require.Len(t, views, 1)
	// top-1 of the filtered set, not of the global feed
	assert.Equal(t, "mine-new", views[0].Title)
}

func TestListViewsOmitDescription(t *testing.T) {
	engine, mem := setupEngine(t)
	id := seedPost(t, mem, models.Post{Title: "p", Description: "a very long body", CreatedAt: at(1)})

	views, err := engine.ListPosts(context.Background(), ListOptions{})
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Empty(t, views[0].Description)

	// the single-post fetch carries the full body
	view, err := engine.GetPost(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "a very long body", view.Description)
}

func TestCommentCountJoinsAgainstComments(t *testing.T) {
	engine, mem := setupEngine(t)
	ctx := context.Background()

	id := seedPost(t, mem, models.Post{Title: "p", CreatedAt: at(1)})
	for i := 0; i < 3; i++ {
		_, err := mem.Insert(ctx, models.CommentsCollection, models.Comment{
			PostID: id, AuthorEmail: "a@b.c", Body: "hi", CreatedAt: at(2),
		})
		require.NoError(t, err)
	}

	views, err := engine.ListPosts(ctx, ListOptions{})
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, 3, views[0].CommentCount)

	// direct comment inserts show up without touching the post document
	_, err = mem.Insert(ctx, models.CommentsCollection, models.Comment{
		PostID: id, AuthorEmail: "a@b.c", Body: "another", CreatedAt: at(3),
	})
	require.NoError(t, err)

	views, err = engine.ListPosts(ctx, ListOptions{})
	require.NoError(t, err)
	assert.Equal(t, 4, views[0].CommentCount)
}

func TestGetPostNotFound(t *testing.T) {
	engine, _ := setupEngine(t)

	_, err := engine.GetPost(context.Background(), "missing")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestListTagsDeduplicatedAndSorted(t *testing.T) {
	engine, mem := setupEngine(t)

	seedPost(t, mem, models.Post{Title: "1", CreatedAt: at(1), Tags: []string{"a", "b"}})
	seedPost(t, mem, models.Post{Title: "2", CreatedAt: at(2), Tags: []string{"b", "c"}})

	tags, err := engine.ListTags(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, tags)
}

func TestListTagsEmpty(t *testing.T) {
	engine, _ := setupEngine(t)

	tags, err := engine.ListTags(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{}, tags)
}

func TestCountPosts(t *testing.T) {
	engine, mem := setupEngine(t)

	seedPost(t, mem, models.Post{Title: "1", CreatedAt: at(1)})
	seedPost(t, mem, models.Post{Title: "2", CreatedAt: at(2)})

	n, err := engine.CountPosts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}
