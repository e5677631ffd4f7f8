package mocks

import (
	"context"
	"math/big"

	"github.com/artledger/certmint/eth"
	"github.com/artledger/certmint/models"
	"github.com/stretchr/testify/mock"
)

type MockMinter struct {
	mock.Mock
}

func (m *MockMinter) Mint(ctx context.Context, params eth.MintParams) (*models.MintResult, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.MintResult), args.Error(1)
}

func (m *MockMinter) GetMetadata(ctx context.Context, tokenKind string, tokenId string) (string, bool, error) {
	args := m.Called(ctx, tokenKind, tokenId)
	return args.String(0), args.Bool(1), args.Error(2)
}

func (m *MockMinter) VerifyOwnership(ctx context.Context, tokenKind string, tokenId string, expectedOwner string) (bool, error) {
	args := m.Called(ctx, tokenKind, tokenId, expectedOwner)
	return args.Bool(0), args.Error(1)
}

func (m *MockMinter) TokenExists(ctx context.Context, tokenKind string, tokenId string) (bool, error) {
	args := m.Called(ctx, tokenKind, tokenId)
	return args.Bool(0), args.Error(1)
}

func (m *MockMinter) GetTotalSupply(ctx context.Context, tokenKind string) (*big.Int, error) {
	args := m.Called(ctx, tokenKind)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*big.Int), args.Error(1)
}
