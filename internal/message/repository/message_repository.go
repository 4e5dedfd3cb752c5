package repository

import (
	"context"
	"errors"
	"time"

	"direct_message_service/internal/message/domain"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MessageRepository definition message store access
type MessageRepository interface {
	// Insert persists a new message.
	Insert(ctx context.Context, msg *domain.Message) error
	// FindByID returns the message or nil when no document matches.
	FindByID(ctx context.Context, id string) (*domain.Message, error)
	// UpdateStatus sets status (and the read flag) on a single message.
	UpdateStatus(ctx context.Context, id string, status domain.MessageStatus, read bool) error
	// FindBetween returns one page of the messages exchanged between two
	// users, newest page first, ascending inside the page.
	FindBetween(ctx context.Context, userA, userB string, skip, limit int64) ([]domain.Message, error)
	// CountBetween counts all messages exchanged between two users.
	CountBetween(ctx context.Context, userA, userB string) (int64, error)
	// FindUnread returns the unread messages sent by partner to owner.
	FindUnread(ctx context.Context, ownerID, partnerID string) ([]domain.Message, error)
	// MarkConversationRead flips every unread partner->owner message to
	// seen/read in one updateMany.
	MarkConversationRead(ctx context.Context, ownerID, partnerID string) (int64, error)
	// MarkConversationDelivered promotes still-sent partner->owner messages
	// to delivered in one updateMany.
	MarkConversationDelivered(ctx context.Context, ownerID, partnerID string) (int64, error)
	// CountUnread is the durable unread baseline for (owner, partner).
	CountUnread(ctx context.Context, ownerID, partnerID string) (int64, error)
	// ConversationSummaries lists one entry per conversation partner with
	// last message and unread count, most recent first.
	ConversationSummaries(ctx context.Context, userID string) ([]domain.Conversation, error)
}

type messageRepository struct {
	coll *mongo.Collection
}

// NewMongoMessageRepository create a MessageRepository backed by MongoDB
func NewMongoMessageRepository(db *mongo.Database) MessageRepository {
	return &messageRepository{
		coll: db.Collection("messages"),
	}
}

func (r *messageRepository) Insert(ctx context.Context, msg *domain.Message) error {
	_, err := r.coll.InsertOne(ctx, msg)
	return err
}

func (r *messageRepository) FindByID(ctx context.Context, id string) (*domain.Message, error) {
	var msg domain.Message
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&msg)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &msg, nil
}

func (r *messageRepository) UpdateStatus(ctx context.Context, id string, status domain.MessageStatus, read bool) error {
	update := bson.M{"$set": bson.M{"status": status, "is_read": read}}
	_, err := r.coll.UpdateOne(ctx, bson.M{"_id": id}, update)
	return err
}

func betweenFilter(userA, userB string) bson.M {
	return bson.M{"$or": bson.A{
		bson.M{"sender_id": userA, "receiver_id": userB},
		bson.M{"sender_id": userB, "receiver_id": userA},
	}}
}

func (r *messageRepository) FindBetween(ctx context.Context, userA, userB string, skip, limit int64) ([]domain.Message, error) {
	opts := options.Find().
		SetSort(bson.M{"timestamp": -1}).
		SetSkip(skip).
		SetLimit(limit)

	cur, err := r.coll.Find(ctx, betweenFilter(userA, userB), opts)
	if err != nil {
		return nil, err
	}
	var msgs []domain.Message
	if err := cur.All(ctx, &msgs); err != nil {
		return nil, err
	}

	// Pages are cut from the newest end; present each page oldest first.
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}
	return msgs, nil
}

func (r *messageRepository) CountBetween(ctx context.Context, userA, userB string) (int64, error) {
	return r.coll.CountDocuments(ctx, betweenFilter(userA, userB))
}

func unreadFilter(ownerID, partnerID string) bson.M {
	return bson.M{
		"sender_id":   partnerID,
		"receiver_id": ownerID,
		"is_read":     false,
	}
}

func (r *messageRepository) FindUnread(ctx context.Context, ownerID, partnerID string) ([]domain.Message, error) {
	opts := options.Find().SetSort(bson.M{"timestamp": 1})
	cur, err := r.coll.Find(ctx, unreadFilter(ownerID, partnerID), opts)
	if err != nil {
		return nil, err
	}
	var msgs []domain.Message
	if err := cur.All(ctx, &msgs); err != nil {
		return nil, err
	}
	return msgs, nil
}

func (r *messageRepository) MarkConversationRead(ctx context.Context, ownerID, partnerID string) (int64, error) {
	update := bson.M{"$set": bson.M{"status": domain.StatusSeen, "is_read": true}}
	res, err := r.coll.UpdateMany(ctx, unreadFilter(ownerID, partnerID), update)
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

func (r *messageRepository) MarkConversationDelivered(ctx context.Context, ownerID, partnerID string) (int64, error) {
	filter := bson.M{
		"sender_id":   partnerID,
		"receiver_id": ownerID,
		"status":      domain.StatusSent,
	}
	update := bson.M{"$set": bson.M{"status": domain.StatusDelivered}}
	res, err := r.coll.UpdateMany(ctx, filter, update)
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

func (r *messageRepository) CountUnread(ctx context.Context, ownerID, partnerID string) (int64, error) {
	return r.coll.CountDocuments(ctx, unreadFilter(ownerID, partnerID))
}

func (r *messageRepository) ConversationSummaries(ctx context.Context, userID string) ([]domain.Conversation, error) {
	partnerExpr := bson.D{{Key: "$cond", Value: bson.A{
		bson.D{{Key: "$eq", Value: bson.A{"$sender_id", userID}}},
		"$receiver_id",
		"$sender_id",
	}}}
	unreadExpr := bson.D{{Key: "$cond", Value: bson.A{
		bson.D{{Key: "$and", Value: bson.A{
			bson.D{{Key: "$eq", Value: bson.A{"$receiver_id", userID}}},
			bson.D{{Key: "$eq", Value: bson.A{"$is_read", false}}},
		}}},
		1,
		0,
	}}}

	pipeline := mongo.Pipeline{
		bson.D{{Key: "$match", Value: bson.D{{Key: "$or", Value: bson.A{
			bson.D{{Key: "sender_id", Value: userID}},
			bson.D{{Key: "receiver_id", Value: userID}},
		}}}}},
		// Newest first so $first picks the latest message per partner.
		bson.D{{Key: "$sort", Value: bson.D{{Key: "timestamp", Value: -1}}}},
		bson.D{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: partnerExpr},
			{Key: "last_message", Value: bson.D{{Key: "$first", Value: "$content"}}},
			{Key: "timestamp", Value: bson.D{{Key: "$first", Value: "$timestamp"}}},
			{Key: "unread", Value: bson.D{{Key: "$sum", Value: unreadExpr}}},
		}}},
		bson.D{{Key: "$sort", Value: bson.D{{Key: "timestamp", Value: -1}}}},
	}

	cur, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	var convos []domain.Conversation
	if err := cur.All(ctx, &convos); err != nil {
		return nil, err
	}
	return convos, nil
}

// EnsureIndexes creates the lookup indexes the repository queries rely on.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	coll := db.Collection("messages")
	_, err := coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{
			{Key: "sender_id", Value: 1},
			{Key: "receiver_id", Value: 1},
			{Key: "timestamp", Value: -1},
		}},
		{Keys: bson.D{
			{Key: "receiver_id", Value: 1},
			{Key: "is_read", Value: 1},
		}},
	}, options.CreateIndexes().SetMaxTime(10*time.Second))
	return err
}
