package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	CollectionLicenses = "licenses"
)

type License struct {
	Id                 *primitive.ObjectID `bson:"_id,omitempty"`
	LicenseId          string              `bson:"license_id"`
	OrderId            string              `bson:"order_id"`
	WorkId             string              `bson:"work_id"`
	LicenseOfferingId  string              `bson:"license_offering_id,omitempty"`
	BuyerUserId        string              `bson:"buyer_user_id"`
	RecipientAddress   string              `bson:"recipient_address"`
	Metadata           LicenseMetadata     `bson:"metadata"`
	TokenId            string              `bson:"token_id"`
	TransactionHash    string              `bson:"transaction_hash"`
	BlockNumber        int64               `bson:"block_number"`
	GasUsed            uint64              `bson:"gas_used"`
	PaymentTransaction string              `bson:"payment_transaction_hash,omitempty"`
	MintingStatus      string              `bson:"minting_status"`
	Error              string              `bson:"error,omitempty"`
	CreatedAt          time.Time           `bson:"created_at"`
	UpdatedAt          time.Time           `bson:"updated_at"`
}
