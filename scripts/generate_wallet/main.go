// Operator tool: generates a fresh mnemonic and prints the address it
// derives, for provisioning a minter wallet outside the service.
package main

import (
	"fmt"
	"log"

	"github.com/artledger/certmint/common"
	"github.com/ethereum/go-ethereum/crypto"
)

func main() {
	mnemonic, err := common.NewRandomMnemonic()
	if err != nil {
		log.Fatalf("failed to generate mnemonic: %v", err)
	}

	privKey, err := common.EthereumPrivateKeyFromMnemonic(mnemonic)
	if err != nil {
		log.Fatalf("failed to derive private key: %v", err)
	}

	fmt.Println("Mnemonic: ", mnemonic)
	fmt.Println("Derivation Path: ", common.DefaultETHHDPath)
	fmt.Println("Address: ", crypto.PubkeyToAddress(privKey.PublicKey).Hex())
}
