package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/bloemp/stockreport/internal/domain/models"
)

// ErrNotFound indicates the requested document does not exist.
var ErrNotFound = errors.New("document not found")

const (
	partsColl     = "parts"
	stockColl     = "stock_items"
	templatesColl = "test_templates"
	resultsColl   = "test_results"
	snapshotsColl = "report_snapshots"
)

// Repository defines the persistence operations backing report generation.
type Repository interface {
	GetPart(ctx context.Context, pk int64) (models.Part, error)
	GetStockItem(ctx context.Context, pk int64) (models.StockItem, error)
	ListTestTemplates(ctx context.Context, partID int64) ([]models.TestTemplate, error)
	ListTestResults(ctx context.Context, stockItemID int64) ([]models.TestResult, error)
	ListInstalledItems(ctx context.Context, parentID int64) ([]models.StockItem, error)
	InsertTestResult(ctx context.Context, result models.TestResult) error
	SaveReportSnapshot(ctx context.Context, snapshot models.ReportSnapshot) error
	ListItemsTestedSince(ctx context.Context, since time.Time) ([]int64, error)
}

// MongoDBRepository implements Repository against MongoDB.
type MongoDBRepository struct {
	client *mongo.Client
	dbName string
}

// NewMongoDBRepository connects to MongoDB and verifies the connection.
func NewMongoDBRepository(ctx context.Context, uri string, dbName string) (*MongoDBRepository, error) {
	clientOptions := options.Client().ApplyURI(uri)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	return &MongoDBRepository{client: client, dbName: dbName}, nil
}

func (r *MongoDBRepository) collection(name string) *mongo.Collection {
	return r.client.Database(r.dbName).Collection(name)
}

// GetPart fetches a part by primary key.
func (r *MongoDBRepository) GetPart(ctx context.Context, pk int64) (models.Part, error) {
	var part models.Part
	err := r.collection(partsColl).FindOne(ctx, bson.M{"_id": pk}).Decode(&part)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Part{}, fmt.Errorf("part %d: %w", pk, ErrNotFound)
	}
	if err != nil {
		return models.Part{}, fmt.Errorf("fetch part %d: %w", pk, err)
	}
	return part, nil
}

// GetStockItem fetches a stock item by primary key.
func (r *MongoDBRepository) GetStockItem(ctx context.Context, pk int64) (models.StockItem, error) {
	var item models.StockItem
	err := r.collection(stockColl).FindOne(ctx, bson.M{"_id": pk}).Decode(&item)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.StockItem{}, fmt.Errorf("stock item %d: %w", pk, ErrNotFound)
	}
	if err != nil {
		return models.StockItem{}, fmt.Errorf("fetch stock item %d: %w", pk, err)
	}
	return item, nil
}

// ListTestTemplates returns the part's test templates ordered by test name.
// This order is the display order of templated rows.
func (r *MongoDBRepository) ListTestTemplates(ctx context.Context, partID int64) ([]models.TestTemplate, error) {
	opts := options.Find().SetSort(bson.D{{Key: "test_name", Value: 1}})
	cursor, err := r.collection(templatesColl).Find(ctx, bson.M{"part": partID}, opts)
	if err != nil {
		return nil, fmt.Errorf("list templates for part %d: %w", partID, err)
	}

	var templates []models.TestTemplate
	if err := cursor.All(ctx, &templates); err != nil {
		return nil, fmt.Errorf("decode templates for part %d: %w", partID, err)
	}
	return templates, nil
}

// ListTestResults returns every result recorded on the item, oldest first.
func (r *MongoDBRepository) ListTestResults(ctx context.Context, stockItemID int64) ([]models.TestResult, error) {
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: 1}})
	cursor, err := r.collection(resultsColl).Find(ctx, bson.M{"stock_item": stockItemID}, opts)
	if err != nil {
		return nil, fmt.Errorf("list results for item %d: %w", stockItemID, err)
	}

	var results []models.TestResult
	if err := cursor.All(ctx, &results); err != nil {
		return nil, fmt.Errorf("decode results for item %d: %w", stockItemID, err)
	}
	return results, nil
}

// ListInstalledItems returns the stock items installed in the given parent,
// ordered by primary key. The report renders them in this order.
func (r *MongoDBRepository) ListInstalledItems(ctx context.Context, parentID int64) ([]models.StockItem, error) {
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
	cursor, err := r.collection(stockColl).Find(ctx, bson.M{"belongs_to": parentID}, opts)
	if err != nil {
		return nil, fmt.Errorf("list installed items of %d: %w", parentID, err)
	}

	var items []models.StockItem
	if err := cursor.All(ctx, &items); err != nil {
		return nil, fmt.Errorf("decode installed items of %d: %w", parentID, err)
	}
	return items, nil
}

// InsertTestResult persists a newly recorded test outcome.
func (r *MongoDBRepository) InsertTestResult(ctx context.Context, result models.TestResult) error {
	if _, err := r.collection(resultsColl).InsertOne(ctx, result); err != nil {
		return fmt.Errorf("insert test result for item %d: %w", result.StockItemID, err)
	}
	return nil
}

// SaveReportSnapshot archives the per-status tally of a generated report.
func (r *MongoDBRepository) SaveReportSnapshot(ctx context.Context, snapshot models.ReportSnapshot) error {
	if _, err := r.collection(snapshotsColl).InsertOne(ctx, snapshot); err != nil {
		return fmt.Errorf("insert report snapshot: %w", err)
	}
	return nil
}

// ListItemsTestedSince returns the distinct stock item ids with results
// recorded at or after the given time.
func (r *MongoDBRepository) ListItemsTestedSince(ctx context.Context, since time.Time) ([]int64, error) {
	raw, err := r.collection(resultsColl).Distinct(ctx, "stock_item", bson.M{"date": bson.M{"$gte": since}})
	if err != nil {
		return nil, fmt.Errorf("list items tested since %s: %w", since.Format(time.RFC3339), err)
	}

	ids := make([]int64, 0, len(raw))
	for _, v := range raw {
		switch id := v.(type) {
		case int64:
			ids = append(ids, id)
		case int32:
			ids = append(ids, int64(id))
		case float64:
			ids = append(ids, int64(id))
		}
	}
	return ids, nil
}

// Close closes the MongoDB connection.
func (r *MongoDBRepository) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}
