package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"parkease/internal/migrations/mongo/validators"
)

var (
	SlotsIndexes = []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "slot_number", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "status", Value: 1}}},
	}

	BookingsIndexes = []mongo.IndexModel{
		{Keys: bson.D{
			{Key: "slot_id", Value: 1},
			{Key: "status", Value: 1},
		}},
		// The one-active-booking-per-slot invariant lives here: the
		// partial unique index rejects a second active document for the
		// same slot no matter what the application layer does.
		{
			Keys: bson.D{{Key: "slot_id", Value: 1}},
			Options: options.Index().
				SetUnique(true).
				SetName("uniq_active_booking_per_slot").
				SetPartialFilterExpression(bson.M{"status": "active"}),
		},
		{Keys: bson.D{
			{Key: "user_id", Value: 1},
			{Key: "created_at", Value: -1},
		}},
	}

	AnnouncementsIndexes = []mongo.IndexModel{
		{Keys: bson.D{{Key: "date", Value: -1}}},
		{Keys: bson.D{{Key: "title", Value: 1}}},
	}
)

func RunMigration(ctx context.Context, client *mongo.Client, dbName string) error {
	db := client.Database(dbName)
	fmt.Printf("🚀 Running ParkEase Mongo migrations on database: %s\n", dbName)

	collections := map[string]struct {
		Indexes   []mongo.IndexModel
		Validator bson.M
	}{
		"Slots": {
			Indexes:   SlotsIndexes,
			Validator: validators.SlotValidator,
		},
		"Bookings": {
			Indexes:   BookingsIndexes,
			Validator: validators.BookingValidator,
		},
		"Announcements": {
			Indexes:   AnnouncementsIndexes,
			Validator: validators.AnnouncementValidator,
		},
	}

	for name, def := range collections {
		if err := ensureCollection(ctx, db, name, def.Validator); err != nil {
			return fmt.Errorf("failed to ensure collection %s: %w", name, err)
		}
		if err := ensureIndexes(ctx, db, name, def.Indexes); err != nil {
			return fmt.Errorf("failed to ensure indexes for %s: %w", name, err)
		}
	}

	if err := normalizeLegacySlots(ctx, db); err != nil {
		return fmt.Errorf("failed to normalize legacy slots: %w", err)
	}

	fmt.Println("✅ All migrations applied successfully.")
	return nil
}

// normalizeLegacySlots backfills the status enum for documents written
// by the previous system, which tracked only an is_available boolean.
// Documents already carrying a status are left untouched.
func normalizeLegacySlots(ctx context.Context, db *mongo.Database) error {
	coll := db.Collection("Slots")

	occupied, err := coll.UpdateMany(ctx,
		bson.M{"status": bson.M{"$exists": false}, "is_available": false},
		bson.M{"$set": bson.M{"status": "occupied"}},
	)
	if err != nil {
		return err
	}

	available, err := coll.UpdateMany(ctx,
		bson.M{"status": bson.M{"$exists": false}},
		bson.M{"$set": bson.M{"status": "available"}},
	)
	if err != nil {
		return err
	}

	if occupied.ModifiedCount > 0 || available.ModifiedCount > 0 {
		fmt.Printf("🔧 Normalized %d legacy slot documents\n", occupied.ModifiedCount+available.ModifiedCount)
	}
	return nil
}

func ensureCollection(ctx context.Context, db *mongo.Database, name string, validator bson.M) error {
	existing, err := db.ListCollectionNames(ctx, bson.D{{Key: "name", Value: name}})
	if err != nil {
		return err
	}

	if len(existing) == 0 {
		fmt.Printf("🆕 Creating collection: %s\n", name)
		opts := options.CreateCollection().SetValidator(validator)
		if err := db.CreateCollection(ctx, name, opts); err != nil {
			return fmt.Errorf("failed creating %s: %w", name, err)
		}
	} else {
		fmt.Printf("ℹ️ Collection %s already exists, updating validator if needed\n", name)
		command := bson.D{
			{Key: "collMod", Value: name},
			{Key: "validator", Value: validator},
		}
		if err := db.RunCommand(ctx, command).Err(); err != nil {
			fmt.Printf("⚠️ Warning: failed updating validator for %s: %v\n", name, err)
		}
	}

	return nil
}

func ensureIndexes(ctx context.Context, db *mongo.Database, name string, models []mongo.IndexModel) error {
	coll := db.Collection(name)
	_, err := coll.Indexes().CreateMany(ctx, models)
	if err != nil {
		return err
	}
	fmt.Printf("📚 Ensured indexes for %s\n", name)
	return nil
}
