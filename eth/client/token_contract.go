package client

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// Minimal ABI for the certification token contracts. Both the certificate
// and the license contract expose the same surface.
const tokenABIJSON = `[
	{"type":"function","name":"mint","stateMutability":"nonpayable","inputs":[{"name":"to","type":"address"},{"name":"metadataURI","type":"string"}],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"ownerOf","stateMutability":"view","inputs":[{"name":"tokenId","type":"uint256"}],"outputs":[{"name":"","type":"address"}]},
	{"type":"function","name":"tokenMetadata","stateMutability":"view","inputs":[{"name":"tokenId","type":"uint256"}],"outputs":[{"name":"","type":"string"}]},
	{"type":"function","name":"totalSupply","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"event","name":"Transfer","anonymous":false,"inputs":[{"name":"from","type":"address","indexed":true},{"name":"to","type":"address","indexed":true},{"name":"tokenId","type":"uint256","indexed":true}]}
]`

// TokenTransfer is a decoded Transfer event from a token contract.
type TokenTransfer struct {
	From    common.Address
	To      common.Address
	TokenId *big.Int
}

type TokenContract interface {
	Address() common.Address
	Mint(opts *bind.TransactOpts, to common.Address, metadataURI string) (*types.Transaction, error)
	OwnerOf(opts *bind.CallOpts, tokenId *big.Int) (common.Address, error)
	TokenMetadata(opts *bind.CallOpts, tokenId *big.Int) (string, error)
	TotalSupply(opts *bind.CallOpts) (*big.Int, error)
	ParseTransfer(vLog types.Log) (*TokenTransfer, error)
}

type TokenContractImpl struct {
	address  common.Address
	abi      abi.ABI
	contract *bind.BoundContract
}

var _ TokenContract = &TokenContractImpl{}

func NewTokenContract(address common.Address, backend bind.ContractBackend) (TokenContract, error) {
	parsed, err := abi.JSON(strings.NewReader(tokenABIJSON))
	if err != nil {
		return nil, fmt.Errorf("error parsing token abi: %w", err)
	}
	contract := bind.NewBoundContract(address, parsed, backend, backend, backend)
	return &TokenContractImpl{
		address:  address,
		abi:      parsed,
		contract: contract,
	}, nil
}

func (x *TokenContractImpl) Address() common.Address {
	return x.address
}

func (x *TokenContractImpl) Mint(opts *bind.TransactOpts, to common.Address, metadataURI string) (*types.Transaction, error) {
	return x.contract.Transact(opts, "mint", to, metadataURI)
}

func (x *TokenContractImpl) OwnerOf(opts *bind.CallOpts, tokenId *big.Int) (common.Address, error) {
	var out []interface{}
	err := x.contract.Call(opts, &out, "ownerOf", tokenId)
	if err != nil {
		return common.Address{}, err
	}
	return *abi.ConvertType(out[0], new(common.Address)).(*common.Address), nil
}

func (x *TokenContractImpl) TokenMetadata(opts *bind.CallOpts, tokenId *big.Int) (string, error) {
	var out []interface{}
	err := x.contract.Call(opts, &out, "tokenMetadata", tokenId)
	if err != nil {
		return "", err
	}
	return *abi.ConvertType(out[0], new(string)).(*string), nil
}

func (x *TokenContractImpl) TotalSupply(opts *bind.CallOpts) (*big.Int, error) {
	var out []interface{}
	err := x.contract.Call(opts, &out, "totalSupply")
	if err != nil {
		return nil, err
	}
	return abi.ConvertType(out[0], new(big.Int)).(*big.Int), nil
}

// ParseTransfer decodes a Transfer log. The token id is the third indexed
// topic.
func (x *TokenContractImpl) ParseTransfer(vLog types.Log) (*TokenTransfer, error) {
	event := x.abi.Events["Transfer"]
	if len(vLog.Topics) != 4 || vLog.Topics[0] != event.ID {
		return nil, fmt.Errorf("log is not a Transfer event")
	}
	return &TokenTransfer{
		From:    common.BytesToAddress(vLog.Topics[1].Bytes()),
		To:      common.BytesToAddress(vLog.Topics[2].Bytes()),
		TokenId: new(big.Int).SetBytes(vLog.Topics[3].Bytes()),
	}, nil
}
