// Package mongo stores the read-only archive of committed ledger transactions.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/personal-ledger/internal/domain/ledger"
	"github.com/personal-ledger/internal/domain/money"
)

const (
	// ArchiveCollectionName is the collection fed by the outbox poller
	ArchiveCollectionName = "ledger_transactions"
)

// archivedTransaction is the document shape. Amounts are kept as decimal text.
type archivedTransaction struct {
	TransactionID    int64     `bson:"transaction_id"`
	AccountID        int64     `bson:"account_id"`
	Type             string    `bson:"transaction_type"`
	Amount           string    `bson:"amount"`
	BalanceAfter     string    `bson:"balance_after"`
	RelatedAccountID *int64    `bson:"related_account_id,omitempty"`
	Reference        string    `bson:"reference,omitempty"`
	Description      string    `bson:"description"`
	CreatedAt        time.Time `bson:"created_at"`
	ArchivedAt       time.Time `bson:"archived_at"`
}

func toDocument(txn *ledger.Transaction, archivedAt time.Time) archivedTransaction {
	return archivedTransaction{
		TransactionID:    txn.ID,
		AccountID:        txn.AccountID,
		Type:             string(txn.Type),
		Amount:           txn.Amount.String(),
		BalanceAfter:     txn.BalanceAfter.String(),
		RelatedAccountID: txn.RelatedAccountID,
		Reference:        txn.Reference,
		Description:      txn.Description,
		CreatedAt:        txn.Timestamp.UTC(),
		ArchivedAt:       archivedAt.UTC(),
	}
}

func (d archivedTransaction) toTransaction() (*ledger.Transaction, error) {
	amount, err := money.Parse(d.Amount)
	if err != nil {
		return nil, fmt.Errorf("archived transaction %d has invalid amount: %w", d.TransactionID, err)
	}
	balanceAfter, err := money.Parse(d.BalanceAfter)
	if err != nil {
		return nil, fmt.Errorf("archived transaction %d has invalid balance: %w", d.TransactionID, err)
	}
	return &ledger.Transaction{
		ID:               d.TransactionID,
		AccountID:        d.AccountID,
		Type:             ledger.TransactionType(d.Type),
		Amount:           amount,
		BalanceAfter:     balanceAfter,
		RelatedAccountID: d.RelatedAccountID,
		Reference:        d.Reference,
		Description:      d.Description,
		Timestamp:        d.CreatedAt,
	}, nil
}

// ArchiveRepository implements the ledger.ArchiveRepository interface for MongoDB
type ArchiveRepository struct {
	collection *mongo.Collection
	logger     *slog.Logger
	now        func() time.Time
}

// NewArchiveRepository creates a new MongoDB archive repository over db
func NewArchiveRepository(logger *slog.Logger, db *mongo.Database) *ArchiveRepository {
	return newArchiveRepository(logger, db.Collection(ArchiveCollectionName))
}

func newArchiveRepository(logger *slog.Logger, collection *mongo.Collection) *ArchiveRepository {
	return &ArchiveRepository{
		collection: collection,
		logger:     logger,
		now:        time.Now,
	}
}

var _ ledger.ArchiveRepository = (*ArchiveRepository)(nil)

// EnsureIndexes creates the unique transaction index and the per-account listing index
func (r *ArchiveRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "transaction_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "account_id", Value: 1}, {Key: "created_at", Value: -1}},
		},
	})
	if err != nil {
		r.logger.Error("Failed to create archive indexes", "error", err)
		return fmt.Errorf("failed to create archive indexes: %w", err)
	}
	return nil
}

// Upsert archives a transaction once. Redelivered events leave the first copy untouched.
func (r *ArchiveRepository) Upsert(ctx context.Context, txn *ledger.Transaction) error {
	filter := bson.M{"transaction_id": txn.ID}
	update := bson.M{"$setOnInsert": toDocument(txn, r.now())}

	_, err := r.collection.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if err != nil {
		r.logger.Error("Failed to archive transaction",
			"transaction_id", txn.ID,
			"error", err)
		return fmt.Errorf("failed to archive transaction: %w", err)
	}

	return nil
}

// GetByTransactionID retrieves one archived transaction
func (r *ArchiveRepository) GetByTransactionID(ctx context.Context, transactionID int64) (*ledger.Transaction, error) {
	var doc archivedTransaction
	err := r.collection.FindOne(ctx, bson.M{"transaction_id": transactionID}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ledger.ErrArchivedTransactionNotFound{TransactionID: transactionID}
		}
		r.logger.Error("Failed to get archived transaction",
			"transaction_id", transactionID,
			"error", err)
		return nil, fmt.Errorf("failed to get archived transaction: %w", err)
	}

	return doc.toTransaction()
}

// GetByAccountID retrieves a page of archived transactions, newest first
func (r *ArchiveRepository) GetByAccountID(ctx context.Context, accountID int64, limit, offset int) ([]*ledger.Transaction, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "transaction_id", Value: -1}}).
		SetSkip(int64(offset)).
		SetLimit(int64(limit))

	cursor, err := r.collection.Find(ctx, bson.M{"account_id": accountID}, opts)
	if err != nil {
		r.logger.Error("Failed to get archived transactions",
			"account_id", accountID,
			"error", err)
		return nil, fmt.Errorf("failed to get archived transactions: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []archivedTransaction
	if err := cursor.All(ctx, &docs); err != nil {
		r.logger.Error("Failed to decode archived transactions",
			"account_id", accountID,
			"error", err)
		return nil, fmt.Errorf("failed to decode archived transactions: %w", err)
	}

	txns := make([]*ledger.Transaction, 0, len(docs))
	for _, doc := range docs {
		txn, err := doc.toTransaction()
		if err != nil {
			return nil, err
		}
		txns = append(txns, txn)
	}

	return txns, nil
}

// CountByAccountID counts the archived transactions of an account
func (r *ArchiveRepository) CountByAccountID(ctx context.Context, accountID int64) (int64, error) {
	count, err := r.collection.CountDocuments(ctx, bson.M{"account_id": accountID})
	if err != nil {
		r.logger.Error("Failed to count archived transactions",
			"account_id", accountID,
			"error", err)
		return 0, fmt.Errorf("failed to count archived transactions: %w", err)
	}

	return count, nil
}
