package database

import (
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/enamahmedshahaz/peoples-forum-server/internal/store"
)

// pipelineToBSON translates the typed stages into Mongo aggregation
// documents. LookupCount expands into $lookup + $addFields($size) +
// $project so callers only ever see the count.
func pipelineToBSON(stages []store.Stage) (mongo.Pipeline, error) {
	var pipeline mongo.Pipeline

	for _, stage := range stages {
		switch s := stage.(type) {
		case store.Match:
			pipeline = append(pipeline, bson.D{{Key: "$match", Value: s.Filter}})

		case store.AddFields:
			fields := bson.M{}
			for name, expr := range s.Fields {
				v, err := exprToBSON(expr)
				if err != nil {
					return nil, err
				}
				fields[name] = v
			}
			pipeline = append(pipeline, bson.D{{Key: "$addFields", Value: fields}})

		case store.Sort:
			// bson.D keeps key order, which carries the tie-break.
			keys := bson.D{}
			for _, key := range s.Keys {
				dir := 1
				if key.Desc {
					dir = -1
				}
				keys = append(keys, bson.E{Key: key.Field, Value: dir})
			}
			pipeline = append(pipeline, bson.D{{Key: "$sort", Value: keys}})

		case store.Limit:
			pipeline = append(pipeline, bson.D{{Key: "$limit", Value: s.N}})

		case store.Project:
			exclude := bson.M{}
			for _, field := range s.Exclude {
				exclude[field] = 0
			}
			pipeline = append(pipeline, bson.D{{Key: "$project", Value: exclude}})

		case store.Unwind:
			pipeline = append(pipeline, bson.D{{Key: "$unwind", Value: "$" + s.Field}})

		case store.CollectSet:
			pipeline = append(pipeline, bson.D{{Key: "$group", Value: bson.M{
				"_id": nil,
				s.As:  bson.M{"$addToSet": "$" + s.Field},
			}}})

		case store.LookupCount:
			tmp := "_" + s.As
			pipeline = append(pipeline,
				bson.D{{Key: "$lookup", Value: bson.M{
					"from":         s.From,
					"localField":   s.LocalField,
					"foreignField": s.ForeignField,
					"as":           tmp,
				}}},
				bson.D{{Key: "$addFields", Value: bson.M{
					s.As: bson.M{"$size": "$" + tmp},
				}}},
				bson.D{{Key: "$project", Value: bson.M{tmp: 0}}},
			)

		default:
			return nil, fmt.Errorf("database: unsupported pipeline stage %T", stage)
		}
	}

	return pipeline, nil
}

func exprToBSON(e store.Expr) (any, error) {
	switch x := e.(type) {
	case store.Field:
		return "$" + string(x), nil
	case store.Literal:
		return x.Value, nil
	case store.Subtract:
		a, err := exprToBSON(x.A)
		if err != nil {
			return nil, err
		}
		b, err := exprToBSON(x.B)
		if err != nil {
			return nil, err
		}
		return bson.M{"$subtract": bson.A{a, b}}, nil
	case store.Max:
		ops := bson.A{}
		for _, op := range x.Exprs {
			v, err := exprToBSON(op)
			if err != nil {
				return nil, err
			}
			ops = append(ops, v)
		}
		return bson.M{"$max": ops}, nil
	default:
		return nil, fmt.Errorf("database: unsupported expression %T", e)
	}
}
