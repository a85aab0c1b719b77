package notes

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Repo struct {
	coll *mongo.Collection
}

func NewRepo(db *mongo.Database) *Repo {
	return &Repo{coll: db.Collection("notes")}
}

// EnsureIndexes creates necessary indexes for the notes collection
func (r *Repo) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "created_at", Value: -1}},
		},
		{
			Keys: bson.D{{Key: "author", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "likes", Value: -1}},
		},
	}

	_, err := r.coll.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		return fmt.Errorf("create indexes: %w", err)
	}
	return nil
}

// Insert creates a new note with a fresh id and timestamps. Content and
// author must already be validated and trimmed.
func (r *Repo) Insert(ctx context.Context, n *Note) error {
	n.ID = primitive.NewObjectID()
	n.Likes = 0
	n.CreatedAt = time.Now()
	n.UpdatedAt = n.CreatedAt

	_, err := r.coll.InsertOne(ctx, n)
	if err != nil {
		return fmt.Errorf("insert note: %w", err)
	}
	return nil
}

// FindByID retrieves a note by its ID
func (r *Repo) FindByID(ctx context.Context, id primitive.ObjectID) (*Note, error) {
	var note Note
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&note)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNoteNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find note %s: %w", id.Hex(), err)
	}
	return &note, nil
}

// List retrieves one page of notes, newest first. Ties on created_at fall
// back to _id so the order is stable across calls.
func (r *Repo) List(ctx context.Context, q ListQuery) ([]*Note, error) {
	filter := bson.M{}
	if q.Author != "" {
		filter["author"] = q.Author
	}

	skip := int64(q.Page-1) * int64(q.Limit)
	opts := options.Find().
		SetLimit(int64(q.Limit)).
		SetSkip(skip).
		SetSort(bson.D{
			{Key: "created_at", Value: -1},
			{Key: "_id", Value: -1},
		})

	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}
	defer cursor.Close(ctx)

	notes := []*Note{}
	if err := cursor.All(ctx, &notes); err != nil {
		return nil, fmt.Errorf("decode notes: %w", err)
	}
	return notes, nil
}

// Count returns the number of notes, optionally filtered by author
func (r *Repo) Count(ctx context.Context, author string) (int64, error) {
	filter := bson.M{}
	if author != "" {
		filter["author"] = author
	}
	count, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("count notes: %w", err)
	}
	return count, nil
}

// TopLiked retrieves the most liked notes, ties broken by recency
func (r *Repo) TopLiked(ctx context.Context, limit int) ([]*Note, error) {
	opts := options.Find().
		SetLimit(int64(limit)).
		SetSort(bson.D{
			{Key: "likes", Value: -1},
			{Key: "created_at", Value: -1},
		})

	cursor, err := r.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("top liked notes: %w", err)
	}
	defer cursor.Close(ctx)

	notes := []*Note{}
	if err := cursor.All(ctx, &notes); err != nil {
		return nil, fmt.Errorf("decode top liked notes: %w", err)
	}
	return notes, nil
}

// IncrementLikes adds one like atomically and returns the updated note.
// The $inc runs server-side so concurrent likes never lose an update.
func (r *Repo) IncrementLikes(ctx context.Context, id primitive.ObjectID) (*Note, error) {
	update := bson.M{
		"$inc": bson.M{"likes": 1},
		"$set": bson.M{"updated_at": time.Now()},
	}

	var note Note
	err := r.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&note)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNoteNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("like note %s: %w", id.Hex(), err)
	}
	return &note, nil
}

// DecrementLikes removes one like atomically, never dropping below zero.
// The decrement only matches documents with likes > 0; when the counter is
// already at zero the note still gets its updated_at refreshed.
func (r *Repo) DecrementLikes(ctx context.Context, id primitive.ObjectID) (*Note, error) {
	now := time.Now()
	update := bson.M{
		"$inc": bson.M{"likes": -1},
		"$set": bson.M{"updated_at": now},
	}

	var note Note
	err := r.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "likes": bson.M{"$gt": 0}}, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&note)
	if err == nil {
		return &note, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("unlike note %s: %w", id.Hex(), err)
	}

	// Either the note is gone or likes is already 0. Touch updated_at and
	// let the filter on _id alone distinguish the two.
	err = r.coll.FindOneAndUpdate(ctx, bson.M{"_id": id},
		bson.M{"$set": bson.M{"updated_at": now}},
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&note)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNoteNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("unlike note %s: %w", id.Hex(), err)
	}
	return &note, nil
}

// Delete removes a note permanently and returns it as it existed just
// before removal.
func (r *Repo) Delete(ctx context.Context, id primitive.ObjectID) (*Note, error) {
	var note Note
	err := r.coll.FindOneAndDelete(ctx, bson.M{"_id": id}).Decode(&note)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNoteNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("delete note %s: %w", id.Hex(), err)
	}
	return &note, nil
}
