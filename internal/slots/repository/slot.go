package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	sloterrors "parkease/internal/slots/errors"
	"parkease/pkg/config"
	"parkease/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName = "Slots"
)

type SlotRepository interface {
	Create(ctx context.Context, slot *model.Slot) error
	FindByID(ctx context.Context, id string) (*model.Slot, error)
	FindAll(ctx context.Context) ([]*model.Slot, error)
	Count(ctx context.Context) (int64, error)
	// TransitionStatus atomically moves the slot from expected to next.
	// It returns (false, nil) when the slot exists but its status did
	// not match expected at the moment of the write, which is how a
	// caller distinguishes a lost race from a store failure.
	TransitionStatus(ctx context.Context, id string, expected, next model.SlotStatus) (bool, error)
}

type mongoSlotRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoSlotRepository(cfg *config.Config) SlotRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoSlotRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
	}
}

// slotDocument is the persistence shape. Documents written by the
// previous system may carry a legacy is_available boolean instead of
// (or disagreeing with) the status enum; normalization happens here so
// only the canonical enum ever reaches the domain layer.
type slotDocument struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	SlotNumber  string             `bson:"slot_number"`
	Status      string             `bson:"status,omitempty"`
	IsAvailable *bool              `bson:"is_available,omitempty"`
	Description string             `bson:"description"`
	CreatedAt   time.Time          `bson:"created_at"`
	UpdatedAt   time.Time          `bson:"updated_at"`
}

func (d *slotDocument) toModel() *model.Slot {
	status := model.SlotStatus(d.Status)
	if !status.Valid() {
		if d.IsAvailable != nil && !*d.IsAvailable {
			status = model.SlotOccupied
		} else {
			status = model.SlotAvailable
		}
	}

	return &model.Slot{
		ID:          d.ID.Hex(),
		SlotNumber:  d.SlotNumber,
		Status:      status,
		Description: d.Description,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

func (r *mongoSlotRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	deadline, hasDeadline := ctx.Deadline()
	if !hasDeadline {
		return context.WithTimeout(ctx, timeout)
	}

	remaining := time.Until(deadline)
	if remaining < timeout {
		return context.WithTimeout(ctx, remaining)
	}

	return context.WithTimeout(ctx, timeout)
}

func (r *mongoSlotRepository) Create(ctx context.Context, slot *model.Slot) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	now := time.Now().UTC().Truncate(time.Millisecond)
	slot.CreatedAt = now
	slot.UpdatedAt = now

	doc := slotDocument{
		SlotNumber:  slot.SlotNumber,
		Status:      string(slot.Status),
		Description: slot.Description,
		CreatedAt:   slot.CreatedAt,
		UpdatedAt:   slot.UpdatedAt,
	}

	result, err := r.collection.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("%w: %s", sloterrors.ErrDuplicateSlotNumber, slot.SlotNumber)
		}
		return fmt.Errorf("failed to create slot: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		slot.ID = oid.Hex()
	}
	return nil
}

func (r *mongoSlotRepository) FindByID(ctx context.Context, id string) (*model.Slot, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", sloterrors.ErrInvalidID, id)
	}

	var doc slotDocument
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, sloterrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find slot: %w", err)
	}

	return doc.toModel(), nil
}

func (r *mongoSlotRepository) FindAll(ctx context.Context) ([]*model.Slot, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "slot_number", Value: 1}})

	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find slots: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []slotDocument
	if err = cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode slots: %w", err)
	}

	slots := make([]*model.Slot, 0, len(docs))
	for i := range docs {
		slots = append(slots, docs[i].toModel())
	}

	return slots, nil
}

func (r *mongoSlotRepository) Count(ctx context.Context) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count slots: %w", err)
	}

	return count, nil
}

func (r *mongoSlotRepository) TransitionStatus(ctx context.Context, id string, expected, next model.SlotStatus) (bool, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return false, fmt.Errorf("%w: %s", sloterrors.ErrInvalidID, id)
	}

	// Single conditional write keyed by id AND expected status. Mongo
	// serializes writes per document, so of N concurrent callers with
	// the same expectation exactly one observes MatchedCount == 1.
	filter := bson.M{"_id": objectID, "status": string(expected)}
	update := bson.M{"$set": bson.M{
		"status":     string(next),
		"updated_at": time.Now().UTC().Truncate(time.Millisecond),
	}}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, fmt.Errorf("failed to transition slot status: %w", err)
	}

	if result.MatchedCount == 1 {
		return true, nil
	}

	// Precondition failed. A follow-up read only classifies the miss:
	// absent slot vs. lost race. The transition itself stays atomic.
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Err()
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return false, sloterrors.ErrNotFound
		}
		return false, fmt.Errorf("failed to verify slot existence: %w", err)
	}

	return false, nil
}
