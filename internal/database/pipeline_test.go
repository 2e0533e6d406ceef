package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/enamahmedshahaz/peoples-forum-server/internal/store"
)

func TestPipelineToBSONMatchSortLimit(t *testing.T) {
	pipeline, err := pipelineToBSON([]store.Stage{
		store.Match{Filter: bson.M{"authorEmail": "a@b.c"}},
		store.Sort{Keys: []store.SortKey{
			{Field: "voteBalance", Desc: true},
			{Field: "latestActivity", Desc: true},
		}},
		store.Limit{N: 5},
	})
	require.NoError(t, err)
	require.Len(t, pipeline, 3)

	assert.Equal(t, bson.D{{Key: "$match", Value: bson.M{"authorEmail": "a@b.c"}}}, pipeline[0])

	// sort keys must keep their order: the second key is the tie-break
	assert.Equal(t, bson.D{{Key: "$sort", Value: bson.D{
		{Key: "voteBalance", Value: -1},
		{Key: "latestActivity", Value: -1},
	}}}, pipeline[1])

	assert.Equal(t, bson.D{{Key: "$limit", Value: int64(5)}}, pipeline[2])
}

func TestPipelineToBSONAddFields(t *testing.T) {
	pipeline, err := pipelineToBSON([]store.Stage{
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
	})
	require.NoError(t, err)
	require.Len(t, pipeline, 1)

	fields := pipeline[0][0].Value.(bson.M)
	assert.Equal(t, bson.M{"$subtract": bson.A{"$upVoteCount", "$downVoteCount"}}, fields["voteBalance"])
	assert.Equal(t, bson.M{"$max": bson.A{"$createdAt", "$updatedAt"}}, fields["latestActivity"])
}

func TestPipelineToBSONLookupCountExpands(t *testing.T) {
	pipeline, err := pipelineToBSON([]store.Stage{
		store.LookupCount{
			From:         "comments",
			LocalField:   "_id",
			ForeignField: "postId",
			As:           "commentCount",
		},
	})
	require.NoError(t, err)
	require.Len(t, pipeline, 3)

	assert.Equal(t, "$lookup", pipeline[0][0].Key)
	assert.Equal(t, bson.M{
		"from":         "comments",
		"localField":   "_id",
		"foreignField": "postId",
		"as":           "_commentCount",
	}, pipeline[0][0].Value)

	assert.Equal(t, "$addFields", pipeline[1][0].Key)
	assert.Equal(t, bson.M{"commentCount": bson.M{"$size": "$_commentCount"}}, pipeline[1][0].Value)

	assert.Equal(t, "$project", pipeline[2][0].Key)
	assert.Equal(t, bson.M{"_commentCount": 0}, pipeline[2][0].Value)
}

func TestPipelineToBSONUnwindCollectSet(t *testing.T) {
	pipeline, err := pipelineToBSON([]store.Stage{
		store.Unwind{Field: "tags"},
		store.CollectSet{Field: "tags", As: "tags"},
	})
	require.NoError(t, err)
	require.Len(t, pipeline, 2)

	assert.Equal(t, bson.D{{Key: "$unwind", Value: "$tags"}}, pipeline[0])
	assert.Equal(t, bson.D{{Key: "$group", Value: bson.M{
		"_id":  nil,
		"tags": bson.M{"$addToSet": "$tags"},
	}}}, pipeline[1])
}

func TestPipelineToBSONProject(t *testing.T) {
	pipeline, err := pipelineToBSON([]store.Stage{
		store.Project{Exclude: []string{"description"}},
	})
	require.NoError(t, err)
	require.Len(t, pipeline, 1)
	assert.Equal(t, bson.D{{Key: "$project", Value: bson.M{"description": 0}}}, pipeline[0])
}
