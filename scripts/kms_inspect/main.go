// Operator tool: verifies a GCP KMS key is usable as the master minter
// signer and prints the address it mints from.
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/artledger/certmint/common"
	"github.com/ethereum/go-ethereum/crypto"
)

func main() {
	keyName := os.Getenv("GCP_KMS_KEY_NAME")
	if keyName == "" {
		log.Fatalf("GCP_KMS_KEY_NAME not set")
	}
	fmt.Println("GCP KMS Key Name: ", keyName)

	signer, err := common.NewGcpKmsSigner(keyName)
	if err != nil {
		log.Fatalf("failed to create GCP KMS signer: %v", err)
	}
	defer signer.Destroy()

	fmt.Println("Minter Address: ", signer.EthAddress().Hex())

	digest := crypto.Keccak256([]byte("certmint kms check"))
	signature, err := signer.EthSign(digest)
	if err != nil {
		log.Fatalf("failed to sign test digest: %v", err)
	}
	fmt.Printf("Test Signature: %x\n", signature)

	recovery := make([]byte, 65)
	copy(recovery, signature)
	recovery[64] -= 27
	pubKey, err := crypto.SigToPub(digest, recovery)
	if err != nil {
		log.Fatalf("failed to recover public key: %v", err)
	}
	recovered := crypto.PubkeyToAddress(*pubKey)
	if recovered != signer.EthAddress() {
		log.Fatalf("recovered address %s does not match signer address %s",
			recovered.Hex(), signer.EthAddress().Hex())
	}
	fmt.Println("Signature verified")
}
