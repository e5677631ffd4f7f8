package client

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
)

var testContractAddress = common.HexToAddress("0x0000000000000000000000000000000000000c01")

// keccak256 of the canonical Transfer event signature
var transferEventID = crypto.Keccak256Hash([]byte("Transfer(address,address,uint256)"))

func TestNewTokenContract(t *testing.T) {
	contract, err := NewTokenContract(testContractAddress, nil)
	assert.Nil(t, err)
	assert.Equal(t, testContractAddress, contract.Address())
}

func TestParseTransfer(t *testing.T) {
	contract, err := NewTokenContract(testContractAddress, nil)
	assert.Nil(t, err)

	from := common.HexToAddress("0x0000000000000000000000000000000000000000")
	to := common.HexToAddress("0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266")

	t.Run("No Error", func(t *testing.T) {
		vLog := types.Log{
			Address: testContractAddress,
			Topics: []common.Hash{
				transferEventID,
				common.BytesToHash(from.Bytes()),
				common.BytesToHash(to.Bytes()),
				common.BigToHash(big.NewInt(42)),
			},
		}

		transfer, err := contract.ParseTransfer(vLog)
		assert.Nil(t, err)
		assert.Equal(t, from, transfer.From)
		assert.Equal(t, to, transfer.To)
		assert.Equal(t, int64(42), transfer.TokenId.Int64())
	})

	t.Run("Wrong Event Id", func(t *testing.T) {
		vLog := types.Log{
			Topics: []common.Hash{
				crypto.Keccak256Hash([]byte("Approval(address,address,uint256)")),
				common.BytesToHash(from.Bytes()),
				common.BytesToHash(to.Bytes()),
				common.BigToHash(big.NewInt(42)),
			},
		}

		_, err := contract.ParseTransfer(vLog)
		assert.NotNil(t, err)
	})

	t.Run("Unindexed Transfer Shape", func(t *testing.T) {
		// an ERC-20 style Transfer has only three topics
		vLog := types.Log{
			Topics: []common.Hash{
				transferEventID,
				common.BytesToHash(from.Bytes()),
				common.BytesToHash(to.Bytes()),
			},
		}

		_, err := contract.ParseTransfer(vLog)
		assert.NotNil(t, err)
	})
}
