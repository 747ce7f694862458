// mongodb.go - Generation audit log stored in MongoDB

package storage

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/bosocmputer/ghostwriter/internal/common"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const generationsCollection = "generations"

// DocumentStatus is the OCR outcome of one uploaded file
type DocumentStatus struct {
	Index       int    `bson:"index" json:"index"`
	Filename    string `bson:"filename" json:"filename"`
	ContentType string `bson:"content_type" json:"content_type"`
	Status      string `bson:"status" json:"status"` // "success", "empty", "failed"
	Chars       int    `bson:"chars" json:"chars"`
	Error       string `bson:"error,omitempty" json:"error,omitempty"`
}

// GenerationRecord describes one /generate call. It never holds document
// bytes, OCR text or the generated article.
type GenerationRecord struct {
	RequestID      string            `bson:"request_id" json:"request_id"`
	RequestedModel string            `bson:"requested_model" json:"requested_model"`
	ResolvedModel  string            `bson:"resolved_model" json:"resolved_model"`
	OCRProvider    string            `bson:"ocr_provider" json:"ocr_provider"`
	Documents      []DocumentStatus  `bson:"documents" json:"documents"`
	Outcome        string            `bson:"outcome" json:"outcome"` // "success", "no_text", "llm_error"
	Error          string            `bson:"error,omitempty" json:"error,omitempty"`
	CombinedChars  int               `bson:"combined_chars" json:"combined_chars"`
	ArticleChars   int               `bson:"article_chars" json:"article_chars"`
	Tokens         common.TokenUsage `bson:"tokens" json:"tokens"`
	Steps          []common.StepLog  `bson:"steps" json:"steps"`
	DurationMS     int64             `bson:"duration_ms" json:"duration_ms"`
	CreatedAt      time.Time         `bson:"created_at" json:"created_at"`
}

// MongoStore persists GenerationRecords
type MongoStore struct {
	client *mongo.Client
	db     *mongo.Database
}

// NewMongoStore connects to uri and verifies the connection with a ping
func NewMongoStore(ctx context.Context, uri, dbName string) (*MongoStore, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	log.Println("✅ Connected to MongoDB successfully!")
	return &MongoStore{client: client, db: client.Database(dbName)}, nil
}

// Close closes MongoDB connection
func (s *MongoStore) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.client.Disconnect(ctx); err != nil {
		log.Printf("MongoDB disconnect failed: %v", err)
		return
	}
	log.Println("MongoDB connection closed")
}

// RecordGeneration inserts one audit record
func (s *MongoStore) RecordGeneration(ctx context.Context, rec GenerationRecord) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	if _, err := s.db.Collection(generationsCollection).InsertOne(ctx, rec); err != nil {
		return fmt.Errorf("failed to insert generation record: %w", err)
	}
	return nil
}

// RecentGenerations returns up to limit records, newest first
func (s *MongoStore) RecentGenerations(ctx context.Context, limit int64) ([]GenerationRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}).SetLimit(limit)
	cursor, err := s.db.Collection(generationsCollection).Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query generations: %w", err)
	}
	defer cursor.Close(ctx)

	records := []GenerationRecord{}
	if err := cursor.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("failed to decode generations: %w", err)
	}
	return records, nil
}
