package database

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/enamahmedshahaz/peoples-forum-server/internal/store"
)

// Database is the Mongo-backed store.Store implementation.
type Database struct {
	client *mongo.Client
	db     *mongo.Database
}

func NewDatabase() (*Database, error) {
	uri := os.Getenv("MONGODB_URI")
	if uri == "" {
		uri = "mongodb://localhost:27017"
	}
	name := os.Getenv("DB_NAME")
	if name == "" {
		name = "PeoplesForumDB"
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("error connecting to database: %w", err)
	}

	log.Println("✅ Database connected successfully")

	return &Database{client: client, db: client.Database(name)}, nil
}

// NewDatabaseWithClient wraps an already-connected client. Used by the
// integration tests.
func NewDatabaseWithClient(client *mongo.Client, name string) *Database {
	return &Database{client: client, db: client.Database(name)}
}

func (d *Database) Close(ctx context.Context) error {
	log.Printf("Disconnected from database: %s", d.db.Name())
	return d.client.Disconnect(ctx)
}

func (d *Database) FindByID(ctx context.Context, collection, id string) (store.Doc, error) {
	var doc store.Doc
	err := d.db.Collection(collection).FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", store.ErrUnavailable, err)
	}
	return doc, nil
}

func (d *Database) FindMany(ctx context.Context, collection string, filter bson.M) ([]store.Doc, error) {
	cursor, err := d.db.Collection(collection).Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", store.ErrUnavailable, err)
	}
	var docs []store.Doc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("%w: %v", store.ErrUnavailable, err)
	}
	return docs, nil
}

func (d *Database) Insert(ctx context.Context, collection string, doc any) (string, error) {
	normalized, err := store.ToDoc(doc)
	if err != nil {
		return "", err
	}
	id := store.EnsureID(normalized)
	if _, err := d.db.Collection(collection).InsertOne(ctx, normalized); err != nil {
		return "", fmt.Errorf("%w: %v", store.ErrUnavailable, err)
	}
	return id, nil
}

func (d *Database) UpdateByID(ctx context.Context, collection, id string, set bson.M) (int64, error) {
	res, err := d.db.Collection(collection).UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return 0, fmt.Errorf("%w: %v", store.ErrUnavailable, err)
	}
	return res.MatchedCount, nil
}

func (d *Database) DeleteByID(ctx context.Context, collection, id string) (int64, error) {
	res, err := d.db.Collection(collection).DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, fmt.Errorf("%w: %v", store.ErrUnavailable, err)
	}
	return res.DeletedCount, nil
}

func (d *Database) AtomicIncrement(ctx context.Context, collection, id, field string, delta int64) error {
	res, err := d.db.Collection(collection).UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$inc": bson.M{field: delta}},
	)
	if err != nil {
		return fmt.Errorf("%w: %v", store.ErrUnavailable, err)
	}
	if res.MatchedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (d *Database) RunPipeline(ctx context.Context, collection string, stages []store.Stage) ([]store.Doc, error) {
	pipeline, err := pipelineToBSON(stages)
	if err != nil {
		return nil, err
	}
	cursor, err := d.db.Collection(collection).Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", store.ErrUnavailable, err)
	}
	var docs []store.Doc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("%w: %v", store.ErrUnavailable, err)
	}
	return docs, nil
}

func (d *Database) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	session, err := d.client.StartSession()
	if err != nil {
		return fmt.Errorf("%w: %v", store.ErrUnavailable, err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (any, error) {
		return nil, fn(sc)
	})
	return err
}
