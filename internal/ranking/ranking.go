package ranking

import (
	"context"
	"sort"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/enamahmedshahaz/peoples-forum-server/internal/models"
	"github.com/enamahmedshahaz/peoples-forum-server/internal/store"
)

// Feed orderings. Anything that is not ModeTop ranks by recency.
type Mode string

const (
	ModeRecent Mode = "recent"
	ModeTop    Mode = "top"
)

// Engine builds the post feeds. Every derived field (voteBalance,
// latestActivity, commentCount) is computed inside the query, never read
// from or written to the stored documents.
type Engine struct {
	store store.Store
}

func NewEngine(s store.Store) *Engine {
	return &Engine{store: s}
}

type ListOptions struct {
	Mode        Mode
	AuthorEmail string // filter applied before sorting and limiting
	Limit       int64  // <= 0 means unbounded
}

// derivedFieldStages enriches each post in-query:
// voteBalance = upVoteCount - downVoteCount,
// latestActivity = max(createdAt, updatedAt) ($max skips an absent
// updatedAt), commentCount = join-count against the comments collection.
func derivedFieldStages() []store.Stage {
	return []store.Stage{
		store.AddFields{Fields: map[string]store.Expr{
			"voteBalance": store.Subtract{
				A: store.Field("upVoteCount"),
				B: store.Field("downVoteCount"),
			},
			"latestActivity": store.Max{Exprs: []store.Expr{
				store.Field("createdAt"),
				store.Field("updatedAt"),
			}},
		}},
		store.LookupCount{
			From:         models.CommentsCollection,
			LocalField:   "_id",
			ForeignField: "postId",
			As:           "commentCount",
		},
	}
}

// ListPosts returns the ordered, enriched feed. The author filter precedes
// the sort so a limit always takes the top-N of the filtered set. List
// views drop the description body; GetPost serves it.
func (e *Engine) ListPosts(ctx context.Context, opts ListOptions) ([]models.PostView, error) {
	var stages []store.Stage

	if opts.AuthorEmail != "" {
		stages = append(stages, store.Match{Filter: bson.M{"authorEmail": opts.AuthorEmail}})
	}
	stages = append(stages, derivedFieldStages()...)

	switch opts.Mode {
	case ModeTop:
		stages = append(stages, store.Sort{Keys: []store.SortKey{
			{Field: "voteBalance", Desc: true},
			{Field: "latestActivity", Desc: true},
		}})
	default:
		stages = append(stages, store.Sort{Keys: []store.SortKey{
			{Field: "latestActivity", Desc: true},
		}})
	}

	if opts.Limit > 0 {
		stages = append(stages, store.Limit{N: opts.Limit})
	}
	stages = append(stages, store.Project{Exclude: []string{"description"}})

	docs, err := e.store.RunPipeline(ctx, models.PostsCollection, stages)
	if err != nil {
		return nil, err
	}

	views := make([]models.PostView, 0, len(docs))
	for _, doc := range docs {
		var view models.PostView
		if err := store.Decode(doc, &view); err != nil {
			return nil, err
		}
		views = append(views, view)
	}
	return views, nil
}

// GetPost returns one post with the full body and the same derived fields.
func (e *Engine) GetPost(ctx context.Context, id string) (*models.PostView, error) {
	stages := append([]store.Stage{
		store.Match{Filter: bson.M{"_id": id}},
	}, derivedFieldStages()...)

	docs, err := e.store.RunPipeline(ctx, models.PostsCollection, stages)
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, store.ErrNotFound
	}

	var view models.PostView
	if err := store.Decode(docs[0], &view); err != nil {
		return nil, err
	}
	return &view, nil
}

// ListTags returns every tag used on any post, deduplicated by the
// aggregation layer and sorted lexicographically.
func (e *Engine) ListTags(ctx context.Context) ([]string, error) {
	docs, err := e.store.RunPipeline(ctx, models.PostsCollection, []store.Stage{
		store.Unwind{Field: "tags"},
		store.CollectSet{Field: "tags", As: "tags"},
	})
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return []string{}, nil
	}

	raw, _ := docs[0]["tags"].(bson.A)
	tags := make([]string, 0, len(raw))
	for _, v := range raw {
		if tag, ok := v.(string); ok {
			tags = append(tags, tag)
		}
	}
	sort.Strings(tags)
	return tags, nil
}

// CountPosts reports the total number of stored posts.
func (e *Engine) CountPosts(ctx context.Context) (int, error) {
	docs, err := e.store.FindMany(ctx, models.PostsCollection, bson.M{})
	if err != nil {
		return 0, err
	}
	return len(docs), nil
}
