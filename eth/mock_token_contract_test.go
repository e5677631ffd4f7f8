package eth

import (
	"math/big"

	"github.com/artledger/certmint/eth/client"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/mock"
)

type MockTokenContract struct {
	mock.Mock
}

func (m *MockTokenContract) Address() common.Address {
	args := m.Called()
	return args.Get(0).(common.Address)
}

func (m *MockTokenContract) Mint(opts *bind.TransactOpts, to common.Address, metadataURI string) (*types.Transaction, error) {
	args := m.Called(opts, to, metadataURI)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Transaction), args.Error(1)
}

func (m *MockTokenContract) OwnerOf(opts *bind.CallOpts, tokenId *big.Int) (common.Address, error) {
	args := m.Called(opts, tokenId)
	return args.Get(0).(common.Address), args.Error(1)
}

func (m *MockTokenContract) TokenMetadata(opts *bind.CallOpts, tokenId *big.Int) (string, error) {
	args := m.Called(opts, tokenId)
	return args.String(0), args.Error(1)
}

func (m *MockTokenContract) TotalSupply(opts *bind.CallOpts) (*big.Int, error) {
	args := m.Called(opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*big.Int), args.Error(1)
}

func (m *MockTokenContract) ParseTransfer(vLog types.Log) (*client.TokenTransfer, error) {
	args := m.Called(vLog)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*client.TokenTransfer), args.Error(1)
}
