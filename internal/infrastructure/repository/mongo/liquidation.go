// Package mongo implements the liquidation store on MongoDB.
package mongo

import (
	"context"
	"fmt"
	"strings"

	"github.com/OscarPele/market-analyzer/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const collectionName = "liquidations"

// LiquidationRepository stores liquidation events in a mongo collection
// indexed by (symbol, ts), the primary access pattern for both the
// aggregate reads and the retention delete.
type LiquidationRepository struct {
	col *mongo.Collection
}

// NewLiquidationRepository creates the repository and ensures the
// (symbol, ts) compound index exists.
func NewLiquidationRepository(ctx context.Context, client *mongo.Client, dbName string) (*LiquidationRepository, error) {
	col := client.Database(dbName).Collection(collectionName)

	_, err := col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "s", Value: 1}, {Key: "ts", Value: 1}},
		Options: options.Index().
			SetName("idx_liq_symbol_ts"),
	})
	if err != nil {
		return nil, fmt.Errorf("creating liquidation index: %w", err)
	}

	return &LiquidationRepository{col: col}, nil
}

// InsertBatch appends a batch of events
func (r *LiquidationRepository) InsertBatch(ctx context.Context, events []domain.LiquidationEvent) error {
	if len(events) == 0 {
		return nil
	}

	docs := make([]any, 0, len(events))
	for _, e := range events {
		docs = append(docs, e)
	}

	if _, err := r.col.InsertMany(ctx, docs, options.InsertMany().SetOrdered(false)); err != nil {
		return fmt.Errorf("inserting liquidation batch: %w", err)
	}
	return nil
}

// CountSince returns the number of events for symbol with Ts >= since
func (r *LiquidationRepository) CountSince(ctx context.Context, symbol string, since int64) (int64, error) {
	count, err := r.col.CountDocuments(ctx, bson.M{
		"s":  symbol,
		"ts": bson.M{"$gte": since},
	})
	if err != nil {
		return 0, fmt.Errorf("counting liquidations: %w", err)
	}
	return count, nil
}

// CountBySideSince returns the number of events for symbol and side with Ts >= since.
// Sides are stored uppercased, so the filter normalizes before matching.
func (r *LiquidationRepository) CountBySideSince(ctx context.Context, symbol string, side domain.Side, since int64) (int64, error) {
	count, err := r.col.CountDocuments(ctx, bson.M{
		"s":  symbol,
		"sd": strings.ToUpper(string(side)),
		"ts": bson.M{"$gte": since},
	})
	if err != nil {
		return 0, fmt.Errorf("counting liquidations by side: %w", err)
	}
	return count, nil
}

// SumNotionalSince returns the summed notional for symbol with Ts >= since
func (r *LiquidationRepository) SumNotionalSince(ctx context.Context, symbol string, since int64) (float64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"s": symbol, "ts": bson.M{"$gte": since}}}},
		{{Key: "$group", Value: bson.M{"_id": nil, "total": bson.M{"$sum": "$n"}}}},
	}

	cursor, err := r.col.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, fmt.Errorf("aggregating notional: %w", err)
	}
	defer cursor.Close(ctx)

	var result struct {
		Total float64 `bson:"total"`
	}
	if cursor.Next(ctx) {
		if err := cursor.Decode(&result); err != nil {
			return 0, fmt.Errorf("decoding notional aggregate: %w", err)
		}
	}
	// no matching rows: 0, not an error
	return result.Total, cursor.Err()
}

// DeleteOlderThan removes events with Ts < cutoff and returns the number removed
func (r *LiquidationRepository) DeleteOlderThan(ctx context.Context, cutoff int64) (int64, error) {
	res, err := r.col.DeleteMany(ctx, bson.M{"ts": bson.M{"$lt": cutoff}})
	if err != nil {
		return 0, fmt.Errorf("deleting old liquidations: %w", err)
	}
	return res.DeletedCount, nil
}
