package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	CollectionFailedTransactions = "failed_blockchain_transactions"
)

// retry states; resolved and abandoned are terminal
const (
	RetryStatusPending   = "pending"
	RetryStatusRetrying  = "retrying"
	RetryStatusResolved  = "resolved"
	RetryStatusAbandoned = "abandoned"
)

// types of failed transactions
const (
	TransactionTypeCertificate = "certificate"
	TransactionTypeLicense     = "license"
)

// FailedTransaction captures a mint attempt that could not be completed,
// with the original request payload so it can be replayed.
type FailedTransaction struct {
	Id              *primitive.ObjectID `bson:"_id,omitempty"`
	TransactionId   string              `bson:"transaction_id"`
	TransactionType string              `bson:"transaction_type"`
	Payload         map[string]string   `bson:"payload"`
	Status          string              `bson:"status"`
	ErrorCode       string              `bson:"error_code"`
	ErrorMessage    string              `bson:"error_message"`
	RetryCount      int64               `bson:"retry_count"`
	ResolvedTxHash  string              `bson:"resolved_tx_hash,omitempty"`
	LastRetryAt     *time.Time          `bson:"last_retry_at,omitempty"`
	CreatedAt       time.Time           `bson:"created_at"`
	UpdatedAt       time.Time           `bson:"updated_at"`
}
