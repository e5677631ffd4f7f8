// Package eth wraps the blockchain SDK: it builds mint transactions, signs
// them with the master minter wallet, broadcasts, waits for confirmation,
// and parses the minted token id out of the receipt. It has no persistence
// authority; recording outcomes belongs to the mint orchestrator.
package eth

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"sync/atomic"
	"time"

	"github.com/artledger/certmint/common"
	"github.com/artledger/certmint/eth/client"
	"github.com/artledger/certmint/models"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	log "github.com/sirupsen/logrus"
)

type MintParams struct {
	// TokenKind selects the certificate or the license contract.
	TokenKind string
	// Recipient receives the token; the master signer only pays gas and
	// submits. The two roles are never conflated.
	Recipient   string
	MetadataURI string
}

type Minter interface {
	Mint(ctx context.Context, params MintParams) (*models.MintResult, error)
	GetMetadata(ctx context.Context, tokenKind string, tokenId string) (string, bool, error)
	VerifyOwnership(ctx context.Context, tokenKind string, tokenId string, expectedOwner string) (bool, error)
	TokenExists(ctx context.Context, tokenKind string, tokenId string) (bool, error)
	GetTotalSupply(ctx context.Context, tokenKind string) (*big.Int, error)
}

type minter struct {
	ethClient           client.EthereumClient
	certificateContract client.TokenContract
	licenseContract     client.TokenContract
	signer              common.Signer
	chainID             *big.Int
	nonces              *NonceManager
	confirmationTimeout time.Duration
	inFlight            atomic.Int64
}

var _ Minter = &minter{}

func NewMinter(
	ethClient client.EthereumClient,
	certificateContract client.TokenContract,
	licenseContract client.TokenContract,
	signer common.Signer,
	chainID *big.Int,
	confirmationTimeout time.Duration,
) Minter {
	return &minter{
		ethClient:           ethClient,
		certificateContract: certificateContract,
		licenseContract:     licenseContract,
		signer:              signer,
		chainID:             chainID,
		nonces:              NewNonceManager(ethClient, signer.EthAddress()),
		confirmationTimeout: confirmationTimeout,
	}
}

func (m *minter) contractFor(tokenKind string) (client.TokenContract, error) {
	switch tokenKind {
	case models.TransactionTypeCertificate:
		return m.certificateContract, nil
	case models.TransactionTypeLicense:
		return m.licenseContract, nil
	default:
		return nil, fmt.Errorf("unknown token kind %q", tokenKind)
	}
}

// Mint runs one attempt through building, signing, broadcast and
// confirmation. A failed attempt is never retried in place; the caller
// captures it as a failed-transaction record and replays it as a new
// attempt.
func (m *minter) Mint(ctx context.Context, params MintParams) (*models.MintResult, error) {
	contract, err := m.contractFor(params.TokenKind)
	if err != nil {
		return nil, models.WrapServiceError(models.ErrMintingFailed, "invalid mint request", err)
	}

	m.inFlight.Add(1)
	defer m.inFlight.Add(-1)

	nonce, err := m.nonces.Reserve()
	if err != nil {
		return nil, models.WrapServiceError(models.ErrBroadcastFailed, "failed to reserve nonce", err)
	}

	opts := common.NewTransactOpts(m.signer, m.chainID)
	opts.Context = ctx
	opts.Nonce = nonce

	recipient := ethcommon.HexToAddress(params.Recipient)

	log.Debug("[MINTER] Broadcasting mint to ", recipient.Hex(), " nonce ", nonce)
	tx, err := contract.Mint(opts, recipient, params.MetadataURI)
	if err != nil {
		m.nonces.Reset()
		return nil, models.WrapServiceError(models.ErrBroadcastFailed, "failed to broadcast mint transaction", err)
	}
	log.Info("[MINTER] Broadcast mint transaction: ", tx.Hash().Hex())

	waitCtx, cancel := context.WithTimeout(ctx, m.confirmationTimeout)
	defer cancel()

	receipt, err := bind.WaitMined(waitCtx, m.ethClient.GetClient(), tx)
	if err != nil {
		if waitCtx.Err() != nil {
			// the transaction may still confirm later; timeout is not
			// "no effect occurred"
			return nil, models.WrapServiceError(models.ErrConfirmationTimeout,
				fmt.Sprintf("timed out waiting for confirmation of %s", tx.Hash().Hex()), err)
		}
		return nil, models.WrapServiceError(models.ErrBroadcastFailed, "failed waiting for receipt", err)
	}

	if receipt.Status == types.ReceiptStatusFailed {
		return nil, models.NewServiceError(models.ErrTransactionReverted,
			fmt.Sprintf("transaction %s reverted on-chain", tx.Hash().Hex()))
	}

	tokenId := m.tokenIdFromReceipt(contract, receipt)

	result := &models.MintResult{
		TokenId:         tokenId,
		TransactionHash: tx.Hash().Hex(),
		BlockNumber:     receipt.BlockNumber.Int64(),
		GasUsed:         receipt.GasUsed,
		Status:          models.MintingStatusConfirmed,
	}
	log.Info("[MINTER] Mint confirmed: tx ", result.TransactionHash, " token ", result.TokenId)
	return result, nil
}

// tokenIdFromReceipt extracts the minted token id from the Transfer event's
// third indexed topic. When no matching log is present it falls back to
// totalSupply()-1, which is only trustworthy while mints are serialized:
// with another mint in flight the guess could name the wrong token, so the
// id is reported as unknown instead and flagged for manual reconciliation.
func (m *minter) tokenIdFromReceipt(contract client.TokenContract, receipt *types.Receipt) string {
	for _, vLog := range receipt.Logs {
		if vLog.Address != contract.Address() {
			continue
		}
		transfer, err := contract.ParseTransfer(*vLog)
		if err != nil {
			continue
		}
		if transfer.From == ethcommon.HexToAddress(common.ZeroAddress) {
			return transfer.TokenId.String()
		}
	}

	log.Warn("[MINTER] No Transfer log found in receipt ", receipt.TxHash.Hex(), ", falling back to total supply")

	if m.inFlight.Load() > 1 {
		log.Error("[MINTER] Concurrent mints in flight, refusing total-supply fallback for ", receipt.TxHash.Hex())
		return models.TokenIdUnknown
	}

	supply, err := contract.TotalSupply(&bind.CallOpts{})
	if err != nil || supply.Sign() == 0 {
		log.Error("[MINTER] Total-supply fallback failed for ", receipt.TxHash.Hex(), ": ", err)
		return models.TokenIdUnknown
	}
	return new(big.Int).Sub(supply, big.NewInt(1)).String()
}

// isExecutionReverted reports whether a read call failed because the token
// does not exist, as opposed to a transport failure. Unconfirmed or
// fabricated token ids are expected inputs during verification.
func isExecutionReverted(err error) bool {
	return err != nil && strings.Contains(err.Error(), "execution reverted")
}

func (m *minter) GetMetadata(ctx context.Context, tokenKind string, tokenId string) (string, bool, error) {
	contract, err := m.contractFor(tokenKind)
	if err != nil {
		return "", false, err
	}
	id, ok := new(big.Int).SetString(tokenId, 10)
	if !ok {
		return "", false, nil
	}
	payload, err := contract.TokenMetadata(&bind.CallOpts{Context: ctx}, id)
	if isExecutionReverted(err) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return payload, true, nil
}

func (m *minter) VerifyOwnership(ctx context.Context, tokenKind string, tokenId string, expectedOwner string) (bool, error) {
	contract, err := m.contractFor(tokenKind)
	if err != nil {
		return false, err
	}
	id, ok := new(big.Int).SetString(tokenId, 10)
	if !ok {
		return false, nil
	}
	owner, err := contract.OwnerOf(&bind.CallOpts{Context: ctx}, id)
	if isExecutionReverted(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return strings.EqualFold(owner.Hex(), expectedOwner), nil
}

func (m *minter) TokenExists(ctx context.Context, tokenKind string, tokenId string) (bool, error) {
	contract, err := m.contractFor(tokenKind)
	if err != nil {
		return false, err
	}
	id, ok := new(big.Int).SetString(tokenId, 10)
	if !ok {
		return false, nil
	}
	_, err = contract.OwnerOf(&bind.CallOpts{Context: ctx}, id)
	if isExecutionReverted(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (m *minter) GetTotalSupply(ctx context.Context, tokenKind string) (*big.Int, error) {
	contract, err := m.contractFor(tokenKind)
	if err != nil {
		return nil, err
	}
	return contract.TotalSupply(&bind.CallOpts{Context: ctx})
}
