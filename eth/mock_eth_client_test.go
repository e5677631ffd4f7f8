package eth

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/stretchr/testify/mock"
)

type MockEthereumClient struct {
	mock.Mock
}

func (m *MockEthereumClient) ValidateNetwork() {
	m.Called()
}

func (m *MockEthereumClient) GetBlockNumber() (uint64, error) {
	args := m.Called()
	return args.Get(0).(uint64), args.Error(1)
}

func (m *MockEthereumClient) GetChainID() (*big.Int, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*big.Int), args.Error(1)
}

func (m *MockEthereumClient) GetClient() *ethclient.Client {
	args := m.Called()
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(*ethclient.Client)
}

func (m *MockEthereumClient) GetPendingNonce(address common.Address) (uint64, error) {
	args := m.Called(address)
	return args.Get(0).(uint64), args.Error(1)
}

func (m *MockEthereumClient) GetTransactionByHash(txHash string) (*types.Transaction, bool, error) {
	args := m.Called(txHash)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*types.Transaction), args.Bool(1), args.Error(2)
}

func (m *MockEthereumClient) GetTransactionReceipt(txHash string) (*types.Receipt, error) {
	args := m.Called(txHash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Receipt), args.Error(1)
}
