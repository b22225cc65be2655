package store

import (
	"context"
	"errors"
	"slices"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	errs "github.com/zimmermanw84/ts-visio-sub000/pkg/errors"
)

// MongoStore stores one document per page in a MongoDB collection, with the
// page id as _id.
type MongoStore struct {
	client *mongo.Client
	pages  *mongo.Collection
}

// MongoConfig holds connection settings for NewMongoStore.
type MongoConfig struct {
	URI      string
	Database string
	// Collection defaults to "pages".
	Collection string
}

// NewMongoStore connects to MongoDB and verifies the connection with a ping.
func NewMongoStore(ctx context.Context, cfg MongoConfig) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeStore, err, "connect to mongo")
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, errs.Wrap(errs.ErrCodeStore, err, "ping mongo")
	}
	coll := cfg.Collection
	if coll == "" {
		coll = "pages"
	}
	return &MongoStore{client: client, pages: client.Database(cfg.Database).Collection(coll)}, nil
}

func (s *MongoStore) Load(ctx context.Context, pageID string) (*Document, error) {
	if err := errs.ValidatePageID(pageID); err != nil {
		return nil, err
	}
	var doc Document
	err := s.pages.FindOne(ctx, bson.M{"_id": pageID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, notFound(pageID)
	}
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeStore, err, "mongo find %s", pageID)
	}
	return &doc, nil
}

func (s *MongoStore) Save(ctx context.Context, doc *Document) error {
	if err := errs.ValidatePageID(doc.PageID); err != nil {
		return err
	}
	opts := options.Replace().SetUpsert(true)
	if _, err := s.pages.ReplaceOne(ctx, bson.M{"_id": doc.PageID}, doc, opts); err != nil {
		return errs.Wrap(errs.ErrCodeStore, err, "mongo save %s", doc.PageID)
	}
	return nil
}

func (s *MongoStore) Delete(ctx context.Context, pageID string) error {
	if err := errs.ValidatePageID(pageID); err != nil {
		return err
	}
	if _, err := s.pages.DeleteOne(ctx, bson.M{"_id": pageID}); err != nil {
		return errs.Wrap(errs.ErrCodeStore, err, "mongo delete %s", pageID)
	}
	return nil
}

func (s *MongoStore) List(ctx context.Context) ([]string, error) {
	cur, err := s.pages.Find(ctx, bson.D{}, options.Find().SetProjection(bson.M{"_id": 1}))
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeStore, err, "mongo list pages")
	}
	defer cur.Close(ctx)

	var rows []struct {
		ID string `bson:"_id"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return nil, errs.Wrap(errs.ErrCodeStore, err, "mongo list pages")
	}
	ids := make([]string, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.ID)
	}
	slices.Sort(ids)
	return ids, nil
}

func (s *MongoStore) Close() error {
	return s.client.Disconnect(context.Background())
}

var _ Store = (*MongoStore)(nil)
