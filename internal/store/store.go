package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
)

// Doc is a single document as the store hands it back: bson-normalized,
// so timestamps are primitive.DateTime and numbers are int32/int64/float64.
type Doc = bson.M

var (
	// ErrNotFound is returned when a point lookup misses.
	ErrNotFound = errors.New("store: document not found")
	// ErrUnavailable wraps connectivity and commit failures.
	ErrUnavailable = errors.New("store: unavailable")
)

// Store is the document-persistence contract the service is written against.
// The Mongo implementation lives in internal/database; Memory (below) backs
// the tests.
type Store interface {
	FindByID(ctx context.Context, collection, id string) (Doc, error)
	FindMany(ctx context.Context, collection string, filter bson.M) ([]Doc, error)
	Insert(ctx context.Context, collection string, doc any) (string, error)
	UpdateByID(ctx context.Context, collection, id string, set bson.M) (int64, error)
	DeleteByID(ctx context.Context, collection, id string) (int64, error)
	AtomicIncrement(ctx context.Context, collection, id, field string, delta int64) error
	RunPipeline(ctx context.Context, collection string, stages []Stage) ([]Doc, error)

	// WithTransaction runs fn with every write inside it committing together
	// or not at all. fn must use the context it is given for all store calls.
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// Stage is one step of an aggregation pipeline. The set below is exactly
// what the ranking engine needs; each implementation translates or
// evaluates them.
type Stage interface{ stage() }

// Match filters documents by field equality before later stages run.
type Match struct {
	Filter bson.M
}

// AddFields attaches computed fields to every document. Existing fields are
// left untouched.
type AddFields struct {
	Fields map[string]Expr
}

// Sort orders documents by the given keys, most significant first.
type Sort struct {
	Keys []SortKey
}

type SortKey struct {
	Field string
	Desc  bool
}

// Limit keeps only the first N documents.
type Limit struct {
	N int64
}

// Project removes the named fields from every document.
type Project struct {
	Exclude []string
}

// Unwind emits one document per element of the named array field.
type Unwind struct {
	Field string
}

// CollectSet groups the whole stream into a single document whose As field
// holds the distinct values of Field.
type CollectSet struct {
	Field string
	As    string
}

// LookupCount counts, for each document, how many documents in the From
// collection have ForeignField equal to this document's LocalField, and
// stores the count under As.
type LookupCount struct {
	From         string
	LocalField   string
	ForeignField string
	As           string
}

func (Match) stage()       {}
func (AddFields) stage()   {}
func (Sort) stage()        {}
func (Limit) stage()       {}
func (Project) stage()     {}
func (Unwind) stage()      {}
func (CollectSet) stage()  {}
func (LookupCount) stage() {}

// Expr is a computed-field expression.
type Expr interface{ expr() }

// Field references another field of the same document.
type Field string

// Literal is a constant value.
type Literal struct {
	Value any
}

// Subtract evaluates A - B as integers.
type Subtract struct {
	A, B Expr
}

// Max evaluates to the greatest of its operands, skipping absent ones.
type Max struct {
	Exprs []Expr
}

func (Field) expr()    {}
func (Literal) expr()  {}
func (Subtract) expr() {}
func (Max) expr()      {}

// ToDoc normalizes any bson-taggable value into a Doc.
func ToDoc(v any) (Doc, error) {
	raw, err := bson.Marshal(v)
	if err != nil {
		return nil, err
	}
	var doc Doc
	if err := bson.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// Decode unmarshals a Doc into a typed model.
func Decode(doc Doc, out any) error {
	raw, err := bson.Marshal(doc)
	if err != nil {
		return err
	}
	return bson.Unmarshal(raw, out)
}

// EnsureID returns the document's _id, generating and setting a fresh one
// when absent.
func EnsureID(doc Doc) string {
	if id, ok := doc["_id"].(string); ok && id != "" {
		return id
	}
	id := uuid.New().String()
	doc["_id"] = id
	return id
}
