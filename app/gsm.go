package app

import (
	"context"
	"fmt"

	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	"cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
	log "github.com/sirupsen/logrus"
)

func accessSecretVersion(client *secretmanager.Client, name string) (string, error) {
	req := &secretmanagerpb.AccessSecretVersionRequest{
		Name: fmt.Sprintf("projects/%s/secrets/%s/versions/latest", Config.GoogleSecretManager.ProjectId, name),
	}

	result, err := client.AccessSecretVersion(context.Background(), req)
	if err != nil {
		return "", err
	}

	return string(result.Payload.Data), nil
}

func readSecretsFromGSM() {
	if !Config.GoogleSecretManager.Enabled {
		log.Debug("[GSM] Google Secret Manager is disabled")
		return
	}

	if Config.GoogleSecretManager.ProjectId == "" {
		log.Fatalf("[GSM] ProjectId is empty")
	}

	ctx := context.Background()
	client, err := secretmanager.NewClient(ctx)
	if err != nil {
		log.Fatalf("[GSM] Failed to create secretmanager client: %v", err)
	}
	defer client.Close()

	if Config.MongoDB.URI == "" && Config.GoogleSecretManager.MongoSecretName != "" {
		log.Debug("[GSM] Reading mongo uri")
		Config.MongoDB.URI, err = accessSecretVersion(client, Config.GoogleSecretManager.MongoSecretName)
		if err != nil {
			log.Fatalf("[GSM] Failed to access mongo uri: %v", err)
		}
		log.Info("[GSM] Successfully read mongo uri")
	}

	if Config.Ethereum.MinterPrivateKey == "" && Config.Ethereum.MinterMnemonic == "" &&
		Config.Ethereum.MinterGcpKmsKeyName == "" && Config.GoogleSecretManager.MinterSecretName != "" {
		log.Debug("[GSM] Reading minter private key")
		Config.Ethereum.MinterPrivateKey, err = accessSecretVersion(client, Config.GoogleSecretManager.MinterSecretName)
		if err != nil {
			log.Fatalf("[GSM] Failed to access minter private key: %v", err)
		}
		log.Info("[GSM] Successfully read minter private key")
	}

	if Config.Wallet.EncryptionSecret == "" && Config.GoogleSecretManager.WalletEncryptionSecretName != "" {
		log.Debug("[GSM] Reading wallet encryption secret")
		Config.Wallet.EncryptionSecret, err = accessSecretVersion(client, Config.GoogleSecretManager.WalletEncryptionSecretName)
		if err != nil {
			log.Fatalf("[GSM] Failed to access wallet encryption secret: %v", err)
		}
		log.Info("[GSM] Successfully read wallet encryption secret")
	}
}
