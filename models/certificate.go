package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	CollectionCertificates = "copyright_certificates"
)

// types of minting status
const (
	MintingStatusPending   = "pending"
	MintingStatusConfirmed = "confirmed"
	MintingStatusFailed    = "failed"
)

// MintResult is the transient outcome of a successful broadcast. It is never
// persisted directly; it is folded into a certificate or license record.
type MintResult struct {
	TokenId         string `json:"token_id"`
	TransactionHash string `json:"transaction_hash"`
	BlockNumber     int64  `json:"block_number"`
	GasUsed         uint64 `json:"gas_used"`
	Status          string `json:"status"`
}

// TokenIdUnknown marks a mint whose token id could not be recovered from the
// receipt logs nor from the total-supply fallback.
const TokenIdUnknown = "unknown"

type CopyrightCertificate struct {
	Id               *primitive.ObjectID `bson:"_id,omitempty"`
	CertificateId    string              `bson:"certificate_id"`
	WorkId           string              `bson:"work_id,omitempty"`
	UserId           string              `bson:"user_id"`
	RecipientAddress string              `bson:"recipient_address"`
	Metadata         CertificateMetadata `bson:"metadata"`
	TokenId          string              `bson:"token_id"`
	TransactionHash  string              `bson:"transaction_hash"`
	BlockNumber      int64               `bson:"block_number"`
	GasUsed          uint64              `bson:"gas_used"`
	MintingStatus    string              `bson:"minting_status"`
	Error            string              `bson:"error,omitempty"`
	CreatedAt        time.Time           `bson:"created_at"`
	UpdatedAt        time.Time           `bson:"updated_at"`
}
