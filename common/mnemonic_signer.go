package common

import (
	"crypto/ecdsa"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	bip39 "github.com/cosmos/go-bip39"
	hdwallet "github.com/miguelmota/go-ethereum-hdwallet"
)

// Struct Definition
type MnemonicSigner struct {
	ethAddress common.Address
	ethPrivKey *ecdsa.PrivateKey
}

var _ Signer = &MnemonicSigner{}

// Constructor Function
func NewMnemonicSigner(mnemonic string) (*MnemonicSigner, error) {
	ethPrivKey, err := EthereumPrivateKeyFromMnemonic(mnemonic)
	if err != nil {
		return nil, fmt.Errorf("failed to create ethereum private key: %w", err)
	}

	publicKeyECDSA, _ := ethPrivKey.Public().(*ecdsa.PublicKey) // impossible to get an error since the private key is not nil

	ethAddress := crypto.PubkeyToAddress(*publicKeyECDSA)

	return &MnemonicSigner{
		ethPrivKey: ethPrivKey,
		ethAddress: ethAddress,
	}, nil
}

// NewPrivateKeySigner builds a signer from a raw hex-encoded private key.
func NewPrivateKeySigner(privateKeyHex string) (*MnemonicSigner, error) {
	ethPrivKey, err := crypto.HexToECDSA(privateKeyHex)
	if err != nil {
		return nil, fmt.Errorf("failed to parse private key: %w", err)
	}

	publicKeyECDSA, _ := ethPrivKey.Public().(*ecdsa.PublicKey)

	return &MnemonicSigner{
		ethPrivKey: ethPrivKey,
		ethAddress: crypto.PubkeyToAddress(*publicKeyECDSA),
	}, nil
}

// Destructor Function
func (s *MnemonicSigner) Destroy() {
	// nothing to do
}

// Method Implementations
func (s *MnemonicSigner) EthSign(data []byte) ([]byte, error) {
	digest := data
	if len(digest) != 32 {
		digest = crypto.Keccak256(data)
	}
	hash := common.BytesToHash(digest)
	signature, err := crypto.Sign(hash[:], s.ethPrivKey)
	if err != nil {
		return nil, err
	}

	if signature[64] == 0 || signature[64] == 1 {
		signature[64] += 27
	}

	return signature, nil
}

func (s *MnemonicSigner) EthAddress() common.Address {
	return s.ethAddress
}

// EthereumPrivateKeyFromMnemonic derives the key at the default ETH HD path.
func EthereumPrivateKeyFromMnemonic(mnemonic string) (*ecdsa.PrivateKey, error) {
	if !bip39.IsMnemonicValid(mnemonic) {
		return nil, fmt.Errorf("invalid mnemonic")
	}

	wallet, err := hdwallet.NewFromMnemonic(mnemonic)
	if err != nil {
		return nil, fmt.Errorf("failed to create hd wallet: %w", err)
	}

	path := hdwallet.MustParseDerivationPath(DefaultETHHDPath)
	account, err := wallet.Derive(path, false)
	if err != nil {
		return nil, fmt.Errorf("failed to derive account: %w", err)
	}

	return wallet.PrivateKey(account)
}

// NewRandomMnemonic generates a fresh 128-bit BIP-39 mnemonic.
func NewRandomMnemonic() (string, error) {
	entropy, err := bip39.NewEntropy(128)
	if err != nil {
		return "", fmt.Errorf("failed to generate entropy: %w", err)
	}
	return bip39.NewMnemonic(entropy)
}
