package common

import (
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// Interface Definition
type Signer interface {
	EthSign(data []byte) ([]byte, error)
	EthAddress() common.Address
	Destroy()
}

// NewTransactOpts wraps a Signer into bind.TransactOpts so it can submit
// contract transactions. Nonce and gas fields are filled in by the caller.
func NewTransactOpts(signer Signer, chainID *big.Int) *bind.TransactOpts {
	return &bind.TransactOpts{
		From: signer.EthAddress(),
		Signer: func(address common.Address, tx *types.Transaction) (*types.Transaction, error) {
			if address != signer.EthAddress() {
				return nil, bind.ErrNotAuthorized
			}
			txSigner := types.LatestSignerForChainID(chainID)
			signature, err := signer.EthSign(txSigner.Hash(tx).Bytes())
			if err != nil {
				return nil, err
			}
			// EthSign returns a signature with v in {27, 28}; the tx codec
			// expects {0, 1}
			if signature[64] >= 27 {
				signature[64] -= 27
			}
			return tx.WithSignature(txSigner, signature)
		},
	}
}
