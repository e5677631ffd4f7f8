package app

import (
	"os"

	log "github.com/sirupsen/logrus"

	"github.com/artledger/certmint/models"
	"gopkg.in/yaml.v2"
)

var (
	Config models.Config
)

func InitConfig(configFile string, envFile string) {
	if configFile != "" {
		var yamlFile, err = os.ReadFile(configFile)
		if err != nil {
			log.Fatalf("[CONFIG] Error reading config file %q: %s\n", configFile, err.Error())
		}
		err = yaml.Unmarshal(yamlFile, &Config)
		if err != nil {
			log.Fatalf("[CONFIG] Error unmarshalling config file %q: %s\n", configFile, err.Error())
		}
	}
	readConfigFromENV(envFile)
	readSecretsFromGSM()
	validateConfig()
}

func validateConfig() {
	if Config.MongoDB.URI == "" {
		log.Fatal("[CONFIG] MongoDB.URI is required")
	}
	if Config.MongoDB.Database == "" {
		log.Fatal("[CONFIG] MongoDB.Database is required")
	}
	if Config.MongoDB.TimeoutMillis == 0 {
		log.Fatal("[CONFIG] MongoDB.TimeoutMillis is required")
	}
	if Config.Ethereum.RPCURL == "" {
		log.Fatal("[CONFIG] Ethereum.RPCURL is required")
	}
	if Config.Ethereum.ChainID == "" {
		log.Fatal("[CONFIG] Ethereum.ChainID is required")
	}
	if Config.Ethereum.MinterPrivateKey == "" && Config.Ethereum.MinterMnemonic == "" && Config.Ethereum.MinterGcpKmsKeyName == "" {
		log.Fatal("[CONFIG] One of Ethereum.MinterPrivateKey, Ethereum.MinterMnemonic or Ethereum.MinterGcpKmsKeyName is required")
	}
	if Config.Ethereum.CertificateTokenAddress == "" {
		log.Fatal("[CONFIG] Ethereum.CertificateTokenAddress is required")
	}
	if Config.Ethereum.LicenseTokenAddress == "" {
		log.Fatal("[CONFIG] Ethereum.LicenseTokenAddress is required")
	}
	if Config.Ethereum.RPCTimeoutMillis == 0 {
		log.Fatal("[CONFIG] Ethereum.RPCTimeoutMillis is required")
	}
	if Config.Ethereum.ConfirmationTimeoutMillis == 0 {
		log.Fatal("[CONFIG] Ethereum.ConfirmationTimeoutMillis is required")
	}
	if Config.Wallet.EncryptionSecret == "" {
		log.Fatal("[CONFIG] Wallet.EncryptionSecret is required")
	}
	if Config.API.Port == 0 {
		log.Fatal("[CONFIG] API.Port is required")
	}
}
