package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	CollectionCustodialWallets = "custodial_wallets"
)

// CustodialWallet is a platform-held keypair for a single user. The private
// key is stored encrypted; the plaintext never leaves the wallet package.
type CustodialWallet struct {
	Id           *primitive.ObjectID `bson:"_id,omitempty"`
	UserId       string              `bson:"user_id"`
	Address      string              `bson:"address"`
	EncryptedKey string              `bson:"encrypted_key"`
	ChainId      string              `bson:"chain_id"`
	CreatedAt    time.Time           `bson:"created_at"`
}
