package repository

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	announcementerrors "parkease/internal/announcements/errors"
	"parkease/pkg/config"
	"parkease/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName = "Announcements"

	maxSearchResults = 1000
)

type AnnouncementRepository interface {
	Create(ctx context.Context, announcement *model.Announcement) error
	FindByID(ctx context.Context, id string) (*model.Announcement, error)
	FindAll(ctx context.Context, limit int, offset int64, sortAsc bool) ([]*model.Announcement, error)
	Count(ctx context.Context) (int64, error)
	Search(ctx context.Context, query string) ([]*model.Announcement, error)
	Update(ctx context.Context, id string, update *model.AnnouncementUpdate) (*model.Announcement, error)
	Delete(ctx context.Context, id string) error
}

type mongoAnnouncementRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoAnnouncementRepository(cfg *config.Config) AnnouncementRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoAnnouncementRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
	}
}

type announcementDocument struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Title       string             `bson:"title"`
	Description string             `bson:"description"`
	Date        time.Time          `bson:"date"`
	CreatedAt   time.Time          `bson:"created_at"`
	UpdatedAt   time.Time          `bson:"updated_at"`
}

func (d *announcementDocument) toModel() *model.Announcement {
	return &model.Announcement{
		ID:          d.ID.Hex(),
		Title:       d.Title,
		Description: d.Description,
		Date:        d.Date,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

func (r *mongoAnnouncementRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
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

func (r *mongoAnnouncementRepository) Create(ctx context.Context, announcement *model.Announcement) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	now := time.Now().UTC().Truncate(time.Millisecond)
	announcement.CreatedAt = now
	announcement.UpdatedAt = now
	if announcement.Date.IsZero() {
		announcement.Date = now
	}

	doc := announcementDocument{
		Title:       announcement.Title,
		Description: announcement.Description,
		Date:        announcement.Date,
		CreatedAt:   announcement.CreatedAt,
		UpdatedAt:   announcement.UpdatedAt,
	}

	result, err := r.collection.InsertOne(ctx, doc)
	if err != nil {
		return fmt.Errorf("failed to create announcement: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		announcement.ID = oid.Hex()
	}
	return nil
}

func (r *mongoAnnouncementRepository) FindByID(ctx context.Context, id string) (*model.Announcement, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, announcementerrors.ErrInvalidID
	}

	var doc announcementDocument
	err = r.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, announcementerrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find announcement: %w", err)
	}

	return doc.toModel(), nil
}

func (r *mongoAnnouncementRepository) FindAll(ctx context.Context, limit int, offset int64, sortAsc bool) ([]*model.Announcement, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	sortOrder := -1
	if sortAsc {
		sortOrder = 1
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "date", Value: sortOrder}}).
		SetLimit(int64(limit)).
		SetSkip(offset)

	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find announcements: %w", err)
	}
	defer cursor.Close(ctx)

	return decodeAnnouncements(ctx, cursor)
}

func (r *mongoAnnouncementRepository) Count(ctx context.Context) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count announcements: %w", err)
	}
	return count, nil
}

func (r *mongoAnnouncementRepository) Search(ctx context.Context, query string) ([]*model.Announcement, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	// User input goes straight into a $regex filter; quoting it keeps
	// crafted patterns from turning into a ReDoS vector.
	escaped := regexp.QuoteMeta(query)
	filter := bson.M{
		"$or": bson.A{
			bson.M{"title": bson.M{"$regex": escaped, "$options": "i"}},
			bson.M{"description": bson.M{"$regex": escaped, "$options": "i"}},
		},
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "date", Value: -1}}).
		SetLimit(maxSearchResults)

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to search announcements: %w", err)
	}
	defer cursor.Close(ctx)

	return decodeAnnouncements(ctx, cursor)
}

func (r *mongoAnnouncementRepository) Update(ctx context.Context, id string, update *model.AnnouncementUpdate) (*model.Announcement, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, announcementerrors.ErrInvalidID
	}

	set := bson.M{"updated_at": time.Now().UTC().Truncate(time.Millisecond)}
	if update.Title != "" {
		set["title"] = update.Title
	}
	if update.Description != nil {
		set["description"] = *update.Description
	}
	if update.Date != nil {
		set["date"] = *update.Date
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc announcementDocument
	err = r.collection.FindOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{"$set": set}, opts).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, announcementerrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to update announcement: %w", err)
	}

	return doc.toModel(), nil
}

func (r *mongoAnnouncementRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return announcementerrors.ErrInvalidID
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("failed to delete announcement: %w", err)
	}
	if result.DeletedCount == 0 {
		return announcementerrors.ErrNotFound
	}

	return nil
}

func decodeAnnouncements(ctx context.Context, cursor *mongo.Cursor) ([]*model.Announcement, error) {
	var docs []announcementDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode announcements: %w", err)
	}

	announcements := make([]*model.Announcement, 0, len(docs))
	for i := range docs {
		announcements = append(announcements, docs[i].toModel())
	}
	return announcements, nil
}
