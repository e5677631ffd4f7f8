package app

import (
	"fmt"

	"github.com/artledger/certmint/common"
	log "github.com/sirupsen/logrus"
)

// CreateMinterSigner builds the master minting signer from config. The
// master signer pays gas and submits every mint; custodial wallets only
// receive tokens.
func CreateMinterSigner() (common.Signer, error) {
	config := Config.Ethereum

	switch {
	case config.MinterPrivateKey != "":
		signer, err := common.NewPrivateKeySigner(config.MinterPrivateKey)
		if err != nil {
			return nil, fmt.Errorf("error initializing minter signer: %w", err)
		}
		log.Debugf("[SIGNER] Minter address: %s", signer.EthAddress().Hex())
		return signer, nil
	case config.MinterMnemonic != "":
		signer, err := common.NewMnemonicSigner(config.MinterMnemonic)
		if err != nil {
			return nil, fmt.Errorf("error initializing minter signer: %w", err)
		}
		log.Debugf("[SIGNER] Minter address: %s", signer.EthAddress().Hex())
		return signer, nil
	case config.MinterGcpKmsKeyName != "":
		signer, err := common.NewGcpKmsSigner(config.MinterGcpKmsKeyName)
		if err != nil {
			return nil, fmt.Errorf("error initializing kms minter signer: %w", err)
		}
		log.Debugf("[SIGNER] Minter address: %s", signer.EthAddress().Hex())
		return signer, nil
	default:
		return nil, fmt.Errorf("no minter key material configured")
	}
}
