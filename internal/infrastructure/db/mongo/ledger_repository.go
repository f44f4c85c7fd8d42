package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readconcern"
	"go.mongodb.org/mongo-driver/mongo/writeconcern"

	"github.com/umai/recipe-api/internal/core/domain"
)

// LedgerRepository applies balance changes to the users collection. Every
// change is a single atomic update; a decrement only applies when the balance
// covers it.
type LedgerRepository struct {
	client *mongo.Client
	col    *mongo.Collection
}

func NewLedgerRepository(db *mongo.Database) *LedgerRepository {
	return &LedgerRepository{client: db.Client(), col: db.Collection(collectionUsers)}
}

func (r *LedgerRepository) Increment(ctx context.Context, userID string, amount int64) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()
	return r.increment(ctx, userID, amount)
}

func (r *LedgerRepository) Decrement(ctx context.Context, userID string, amount int64) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()
	return r.decrement(ctx, userID, amount)
}

// Transfer moves amount between two accounts inside one transaction. Either
// both balances change or neither does.
func (r *LedgerRepository) Transfer(ctx context.Context, fromID, toID string, amount int64) error {
	from, to, err := transferIDs(fromID, toID)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	sess, err := r.client.StartSession()
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	defer sess.EndSession(ctx)

	txnOpts := options.Transaction().
		SetReadConcern(readconcern.Snapshot()).
		SetWriteConcern(writeconcern.Majority())

	_, err = sess.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		if err := r.requireUser(sc, to.Hex()); err != nil {
			return nil, err
		}
		if err := r.decrement(sc, from.Hex(), amount); err != nil {
			return nil, err
		}
		return nil, r.increment(sc, to.Hex(), amount)
	}, txnOpts)
	return err
}

// transferIDs parses both ends of a transfer. Ids are compared after parsing
// so hex spellings that differ only in case are the same account.
func transferIDs(fromID, toID string) (primitive.ObjectID, primitive.ObjectID, error) {
	from, ok := objectID(fromID)
	if !ok {
		return primitive.NilObjectID, primitive.NilObjectID, domain.ErrUserNotFound
	}
	to, ok := objectID(toID)
	if !ok {
		return primitive.NilObjectID, primitive.NilObjectID, domain.ErrUserNotFound
	}
	if from == to {
		return primitive.NilObjectID, primitive.NilObjectID, domain.ErrSelfDonation
	}
	return from, to, nil
}

func (r *LedgerRepository) increment(ctx context.Context, userID string, amount int64) error {
	oid, ok := objectID(userID)
	if !ok {
		return domain.ErrUserNotFound
	}

	res, err := r.col.UpdateOne(ctx, bson.M{"_id": oid}, balanceUpdate(amount))
	if err != nil {
		return fmt.Errorf("increment balance: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (r *LedgerRepository) decrement(ctx context.Context, userID string, amount int64) error {
	oid, ok := objectID(userID)
	if !ok {
		return domain.ErrUserNotFound
	}

	res, err := r.col.UpdateOne(ctx, sufficientBalance(oid, amount), balanceUpdate(-amount))
	if err != nil {
		return fmt.Errorf("decrement balance: %w", err)
	}
	if res.MatchedCount > 0 {
		return nil
	}

	// Nothing matched: either the user is gone or the balance is short.
	if err := r.requireUser(ctx, userID); err != nil {
		return err
	}
	return domain.ErrInsufficientBalance
}

func (r *LedgerRepository) requireUser(ctx context.Context, userID string) error {
	oid, ok := objectID(userID)
	if !ok {
		return domain.ErrUserNotFound
	}
	n, err := r.col.CountDocuments(ctx, bson.M{"_id": oid}, options.Count().SetLimit(1))
	if err != nil {
		return fmt.Errorf("count users: %w", err)
	}
	if n == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func sufficientBalance(oid primitive.ObjectID, amount int64) bson.M {
	return bson.M{"_id": oid, "balance": bson.M{"$gte": amount}}
}

func balanceUpdate(delta int64) bson.M {
	return bson.M{
		"$inc": bson.M{"balance": delta},
		"$set": bson.M{"updatedAt": time.Now().UTC()},
	}
}
