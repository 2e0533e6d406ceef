package store

import (
	"context"
	"errors"
	"sort"
	"sync"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Memory is an in-process Store with the same pipeline and transaction
// semantics as the Mongo adapter. It backs the unit tests; nothing in the
// serving path constructs one.
type Memory struct {
	mu          sync.Mutex
	collections map[string]map[string]Doc

	// DeleteHook, when set, runs before every delete and can force it to
	// fail. Used to exercise transaction rollback.
	DeleteHook func(collection, id string) error
}

func NewMemory() *Memory {
	return &Memory{collections: make(map[string]map[string]Doc)}
}

type txnKey struct{}

func inTxn(ctx context.Context) bool {
	return ctx.Value(txnKey{}) != nil
}

func (m *Memory) lock(ctx context.Context) func() {
	if inTxn(ctx) {
		return func() {}
	}
	m.mu.Lock()
	return m.mu.Unlock
}

func (m *Memory) coll(name string) map[string]Doc {
	c, ok := m.collections[name]
	if !ok {
		c = make(map[string]Doc)
		m.collections[name] = c
	}
	return c
}

func (m *Memory) FindByID(ctx context.Context, collection, id string) (Doc, error) {
	defer m.lock(ctx)()
	doc, ok := m.coll(collection)[id]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneDoc(doc), nil
}

func (m *Memory) FindMany(ctx context.Context, collection string, filter bson.M) ([]Doc, error) {
	defer m.lock(ctx)()
	var out []Doc
	for _, doc := range m.coll(collection) {
		if matches(doc, filter) {
			out = append(out, cloneDoc(doc))
		}
	}
	return out, nil
}

func (m *Memory) Insert(ctx context.Context, collection string, doc any) (string, error) {
	defer m.lock(ctx)()
	normalized, err := ToDoc(doc)
	if err != nil {
		return "", err
	}
	id := EnsureID(normalized)
	m.coll(collection)[id] = normalized
	return id, nil
}

func (m *Memory) UpdateByID(ctx context.Context, collection, id string, set bson.M) (int64, error) {
	defer m.lock(ctx)()
	doc, ok := m.coll(collection)[id]
	if !ok {
		return 0, nil
	}
	for k, v := range set {
		doc[k] = v
	}
	return 1, nil
}

func (m *Memory) DeleteByID(ctx context.Context, collection, id string) (int64, error) {
	defer m.lock(ctx)()
	if m.DeleteHook != nil {
		if err := m.DeleteHook(collection, id); err != nil {
			return 0, err
		}
	}
	c := m.coll(collection)
	if _, ok := c[id]; !ok {
		return 0, nil
	}
	delete(c, id)
	return 1, nil
}

func (m *Memory) AtomicIncrement(ctx context.Context, collection, id, field string, delta int64) error {
	defer m.lock(ctx)()
	doc, ok := m.coll(collection)[id]
	if !ok {
		return ErrNotFound
	}
	doc[field] = toInt64(doc[field]) + delta
	return nil
}

func (m *Memory) RunPipeline(ctx context.Context, collection string, stages []Stage) ([]Doc, error) {
	defer m.lock(ctx)()
	docs := make([]Doc, 0, len(m.coll(collection)))
	for _, doc := range m.coll(collection) {
		docs = append(docs, cloneDoc(doc))
	}
	for _, stage := range stages {
		var err error
		docs, err = m.applyStage(docs, stage)
		if err != nil {
			return nil, err
		}
	}
	return docs, nil
}

// WithTransaction serializes against all other access, snapshots the data,
// and restores the snapshot when fn fails.
func (m *Memory) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if inTxn(ctx) {
		return errors.New("store: nested transaction")
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	snapshot := m.snapshot()
	if err := fn(context.WithValue(ctx, txnKey{}, true)); err != nil {
		m.collections = snapshot
		return err
	}
	return nil
}

func (m *Memory) snapshot() map[string]map[string]Doc {
	snap := make(map[string]map[string]Doc, len(m.collections))
	for name, c := range m.collections {
		cc := make(map[string]Doc, len(c))
		for id, doc := range c {
			cc[id] = cloneDoc(doc)
		}
		snap[name] = cc
	}
	return snap
}

func (m *Memory) applyStage(docs []Doc, stage Stage) ([]Doc, error) {
	switch s := stage.(type) {
	case Match:
		var out []Doc
		for _, doc := range docs {
			if matches(doc, s.Filter) {
				out = append(out, doc)
			}
		}
		return out, nil

	case AddFields:
		for _, doc := range docs {
			for name, expr := range s.Fields {
				doc[name] = evalExpr(doc, expr)
			}
		}
		return docs, nil

	case Sort:
		sort.SliceStable(docs, func(i, j int) bool {
			for _, key := range s.Keys {
				c := compareValues(docs[i][key.Field], docs[j][key.Field])
				if c == 0 {
					continue
				}
				if key.Desc {
					return c > 0
				}
				return c < 0
			}
			return false
		})
		return docs, nil

	case Limit:
		if int64(len(docs)) > s.N {
			docs = docs[:s.N]
		}
		return docs, nil

	case Project:
		for _, doc := range docs {
			for _, field := range s.Exclude {
				delete(doc, field)
			}
		}
		return docs, nil

	case Unwind:
		var out []Doc
		for _, doc := range docs {
			arr, ok := doc[s.Field].(bson.A)
			if !ok {
				continue
			}
			for _, elem := range arr {
				unwound := cloneDoc(doc)
				unwound[s.Field] = elem
				out = append(out, unwound)
			}
		}
		return out, nil

	case CollectSet:
		if len(docs) == 0 {
			return nil, nil
		}
		seen := make(map[any]bool)
		set := bson.A{}
		for _, doc := range docs {
			v := doc[s.Field]
			if v == nil || seen[v] {
				continue
			}
			seen[v] = true
			set = append(set, v)
		}
		return []Doc{{s.As: set}}, nil

	case LookupCount:
		foreign := m.coll(s.From)
		for _, doc := range docs {
			local := doc[s.LocalField]
			var n int64
			for _, fdoc := range foreign {
				if valuesEqual(fdoc[s.ForeignField], local) {
					n++
				}
			}
			doc[s.As] = n
		}
		return docs, nil

	default:
		return nil, errors.New("store: unsupported pipeline stage")
	}
}

func evalExpr(doc Doc, e Expr) any {
	switch x := e.(type) {
	case Field:
		return doc[string(x)]
	case Literal:
		return x.Value
	case Subtract:
		return toInt64(evalExpr(doc, x.A)) - toInt64(evalExpr(doc, x.B))
	case Max:
		var best any
		for _, op := range x.Exprs {
			v := evalExpr(doc, op)
			if v == nil {
				continue
			}
			if best == nil || compareValues(v, best) > 0 {
				best = v
			}
		}
		return best
	default:
		return nil
	}
}

func matches(doc Doc, filter bson.M) bool {
	for k, want := range filter {
		if !valuesEqual(doc[k], want) {
			return false
		}
	}
	return true
}

func valuesEqual(a, b any) bool {
	if an, ok := toNumber(a); ok {
		bn, bok := toNumber(b)
		return bok && an == bn
	}
	as, aok := a.(string)
	bs, bok := b.(string)
	if aok || bok {
		return aok && bok && as == bs
	}
	return a == b
}

func cloneDoc(doc Doc) Doc {
	out := make(Doc, len(doc))
	for k, v := range doc {
		out[k] = v
	}
	return out
}

// compareValues orders the value kinds bson normalization produces:
// numbers, datetimes, and strings. Mismatched or unknown kinds compare
// equal, which is enough for equality filters and sort keys over
// homogeneous fields.
func compareValues(a, b any) int {
	if an, aok := toNumber(a); aok {
		if bn, bok := toNumber(b); bok {
			switch {
			case an < bn:
				return -1
			case an > bn:
				return 1
			default:
				return 0
			}
		}
		return 0
	}
	as, aok := a.(string)
	bs, bok := b.(string)
	if aok && bok {
		switch {
		case as < bs:
			return -1
		case as > bs:
			return 1
		default:
			return 0
		}
	}
	return 0
}

func toNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	case primitive.DateTime:
		return float64(int64(n)), true
	default:
		return 0, false
	}
}

func toInt64(v any) int64 {
	switch n := v.(type) {
	case int:
		return int64(n)
	case int32:
		return int64(n)
	case int64:
		return n
	case float64:
		return int64(n)
	default:
		return 0
	}
}
