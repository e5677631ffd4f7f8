// Package wallet owns custodial key material: generation, encrypted
// storage, and reconstruction of signers. No other package touches
// ciphertext or plaintext keys.
package wallet

import (
	"encoding/hex"
	"fmt"
	"time"

	"github.com/artledger/certmint/app"
	"github.com/artledger/certmint/common"
	"github.com/artledger/certmint/models"
	"github.com/ethereum/go-ethereum/crypto"
	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
)

type Store struct {
	db      app.Database
	vault   *common.Vault
	chainID string
}

func NewStore(db app.Database, vault *common.Vault, chainID string) *Store {
	return &Store{
		db:      db,
		vault:   vault,
		chainID: chainID,
	}
}

// CreatedWallet is the result of CreateWallet. The signer is available
// in-process for immediate first use; only the address is externally
// visible.
type CreatedWallet struct {
	Address string
	Signer  common.Signer
}

// CreateWallet generates a keypair for the user and persists the encrypted
// private key. One wallet per (user, chain); a second create fails with
// WALLET_ALREADY_EXISTS carrying the existing address.
func (s *Store) CreateWallet(userId string) (*CreatedWallet, error) {
	var existing models.CustodialWallet
	err := s.db.FindOne(models.CollectionCustodialWallets, bson.M{"user_id": userId, "chain_id": s.chainID}, &existing)
	if err == nil {
		return nil, &models.ServiceError{
			Code:     models.ErrWalletAlreadyExists,
			Message:  fmt.Sprintf("wallet already exists for user %s", userId),
			Existing: map[string]string{"address": existing.Address},
		}
	}
	if !app.IsNotFound(err) {
		return nil, models.WrapServiceError(models.ErrStoreUnavailable, "wallet lookup failed", err)
	}

	mnemonic, err := common.NewRandomMnemonic()
	if err != nil {
		return nil, fmt.Errorf("error generating mnemonic: %w", err)
	}
	privKey, err := common.EthereumPrivateKeyFromMnemonic(mnemonic)
	if err != nil {
		return nil, fmt.Errorf("error deriving private key: %w", err)
	}

	address := crypto.PubkeyToAddress(privKey.PublicKey).Hex()
	privKeyHex := hex.EncodeToString(crypto.FromECDSA(privKey))

	encryptedKey, err := s.vault.Encrypt(privKeyHex)
	if err != nil {
		return nil, fmt.Errorf("error encrypting private key: %w", err)
	}

	doc := models.CustodialWallet{
		UserId:       userId,
		Address:      address,
		EncryptedKey: encryptedKey,
		ChainId:      s.chainID,
		CreatedAt:    time.Now(),
	}
	if err := s.db.InsertOne(models.CollectionCustodialWallets, doc); err != nil {
		if app.IsDuplicateKey(err) {
			return nil, models.NewServiceError(models.ErrWalletAlreadyExists,
				fmt.Sprintf("wallet already exists for user %s", userId))
		}
		return nil, models.WrapServiceError(models.ErrStoreUnavailable, "wallet insert failed", err)
	}

	signer, err := common.NewPrivateKeySigner(privKeyHex)
	if err != nil {
		return nil, fmt.Errorf("error constructing signer: %w", err)
	}

	log.Info("[WALLET] Created custodial wallet for user ", userId, " at ", address)
	return &CreatedWallet{Address: address, Signer: signer}, nil
}

// GetWalletAddress is a read-only projection; it never decrypts. Absence is
// not an error.
func (s *Store) GetWalletAddress(userId string) (*models.CustodialWallet, error) {
	var doc models.CustodialWallet
	err := s.db.FindOne(models.CollectionCustodialWallets, bson.M{"user_id": userId, "chain_id": s.chainID}, &doc)
	if app.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, models.WrapServiceError(models.ErrStoreUnavailable, "wallet lookup failed", err)
	}
	doc.EncryptedKey = ""
	return &doc, nil
}

// HasWallet is a convenience wrapper over GetWalletAddress.
func (s *Store) HasWallet(userId string) (bool, error) {
	doc, err := s.GetWalletAddress(userId)
	if err != nil {
		return false, err
	}
	return doc != nil, nil
}

// GetSigningWallet decrypts the stored key and reconstructs the signer. The
// reconstructed address must equal the stored address; a mismatch means the
// stored record was corrupted and fails loudly, never silently substitutes.
func (s *Store) GetSigningWallet(userId string) (common.Signer, error) {
	var doc models.CustodialWallet
	err := s.db.FindOne(models.CollectionCustodialWallets, bson.M{"user_id": userId, "chain_id": s.chainID}, &doc)
	if app.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, models.WrapServiceError(models.ErrStoreUnavailable, "wallet lookup failed", err)
	}

	privKeyHex, err := s.vault.Decrypt(doc.EncryptedKey)
	if err != nil {
		log.Error("[WALLET] Failed to decrypt key for user ", userId, ": ", err)
		return nil, err
	}

	signer, err := common.NewPrivateKeySigner(privKeyHex)
	if err != nil {
		log.Error("[WALLET] Decrypted key for user ", userId, " is not a valid private key: ", err)
		return nil, models.WrapServiceError(models.ErrIntegrityViolation, "stored key material is invalid", err)
	}

	if signer.EthAddress().Hex() != doc.Address {
		log.Error("[WALLET] Address mismatch for user ", userId, ": stored ", doc.Address, " derived ", signer.EthAddress().Hex())
		return nil, models.NewServiceError(models.ErrIntegrityViolation,
			"decrypted key does not derive the stored address")
	}

	return signer, nil
}

// DeleteWallet irreversibly destroys the user's key material. Reachable
// only through the separately gated admin path, never from mint flows.
func (s *Store) DeleteWallet(userId string) (bool, error) {
	deleted, err := s.db.DeleteOne(models.CollectionCustodialWallets, bson.M{"user_id": userId, "chain_id": s.chainID})
	if err != nil {
		return false, models.WrapServiceError(models.ErrStoreUnavailable, "wallet delete failed", err)
	}
	if deleted == 0 {
		return false, nil
	}
	log.Warn("[WALLET] Deleted custodial wallet for user ", userId, "; fund access is destroyed")
	return true, nil
}
