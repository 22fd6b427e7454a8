package config

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureMongoIndexes creates the unique keys the mongo store relies on.
// The vent_sessions unique key is what makes "first save increments" hold.
func EnsureMongoIndexes(ctx context.Context, db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	specs := map[string][]mongo.IndexModel{
		"users": {
			{
				Keys:    bson.D{{Key: "uid", Value: 1}},
				Options: options.Index().SetName("uniq_uid").SetUnique(true),
			},
		},
		"weeks": {
			{
				Keys:    bson.D{{Key: "uid", Value: 1}, {Key: "week_id", Value: 1}},
				Options: options.Index().SetName("uniq_user_week").SetUnique(true),
			},
		},
		"vent_sessions": {
			{
				Keys:    bson.D{{Key: "uid", Value: 1}, {Key: "week_id", Value: 1}, {Key: "session_id", Value: 1}},
				Options: options.Index().SetName("uniq_user_week_session").SetUnique(true),
			},
			{
				Keys:    bson.D{{Key: "uid", Value: 1}, {Key: "week_id", Value: 1}, {Key: "created_at", Value: 1}},
				Options: options.Index().SetName("by_user_week_created"),
			},
		},
		"chat_entries": {
			{
				Keys:    bson.D{{Key: "uid", Value: 1}, {Key: "week_id", Value: 1}, {Key: "entry_id", Value: 1}},
				Options: options.Index().SetName("uniq_user_week_entry").SetUnique(true),
			},
		},
		"drafts": {
			{
				Keys:    bson.D{{Key: "uid", Value: 1}, {Key: "week_id", Value: 1}, {Key: "entry_id", Value: 1}},
				Options: options.Index().SetName("uniq_user_week_entry").SetUnique(true),
			},
		},
		"journal_entries": {
			{
				Keys:    bson.D{{Key: "uid", Value: 1}, {Key: "date", Value: 1}},
				Options: options.Index().SetName("uniq_user_date").SetUnique(true),
			},
		},
	}

	for col, models := range specs {
		if _, err := db.Collection(col).Indexes().CreateMany(ctx, models); err != nil {
			return err
		}
	}
	return nil
}
