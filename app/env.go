package app

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

func readConfigFromENV(envFile string) {
	if envFile != "" {
		err := godotenv.Load(envFile)
		if err != nil {
			log.Warn("[ENV] Error loading .env file: ", err.Error())
		}
	}

	// mongodb
	if os.Getenv("MONGODB_URI") != "" {
		Config.MongoDB.URI = os.Getenv("MONGODB_URI")
	}
	if os.Getenv("MONGODB_DATABASE") != "" {
		Config.MongoDB.Database = os.Getenv("MONGODB_DATABASE")
	}
	if os.Getenv("MONGODB_TIMEOUT_MS") != "" {
		timeoutMillis, err := strconv.ParseInt(os.Getenv("MONGODB_TIMEOUT_MS"), 10, 64)
		if err != nil {
			log.Warn("[ENV] Error parsing MONGODB_TIMEOUT_MS: ", err.Error())
		} else {
			Config.MongoDB.TimeoutMillis = timeoutMillis
		}
	}

	// ethereum
	if os.Getenv("ETH_RPC_URL") != "" {
		Config.Ethereum.RPCURL = os.Getenv("ETH_RPC_URL")
	}
	if os.Getenv("ETH_CHAIN_ID") != "" {
		Config.Ethereum.ChainID = os.Getenv("ETH_CHAIN_ID")
	}
	if os.Getenv("ETH_RPC_TIMEOUT_MS") != "" {
		timeoutMillis, err := strconv.ParseInt(os.Getenv("ETH_RPC_TIMEOUT_MS"), 10, 64)
		if err != nil {
			log.Warn("[ENV] Error parsing ETH_RPC_TIMEOUT_MS: ", err.Error())
		} else {
			Config.Ethereum.RPCTimeoutMillis = timeoutMillis
		}
	}
	if os.Getenv("ETH_CONFIRMATION_TIMEOUT_MS") != "" {
		timeoutMillis, err := strconv.ParseInt(os.Getenv("ETH_CONFIRMATION_TIMEOUT_MS"), 10, 64)
		if err != nil {
			log.Warn("[ENV] Error parsing ETH_CONFIRMATION_TIMEOUT_MS: ", err.Error())
		} else {
			Config.Ethereum.ConfirmationTimeoutMillis = timeoutMillis
		}
	}
	if os.Getenv("ETH_MINTER_PRIVATE_KEY") != "" {
		Config.Ethereum.MinterPrivateKey = os.Getenv("ETH_MINTER_PRIVATE_KEY")
	}
	if os.Getenv("ETH_MINTER_MNEMONIC") != "" {
		Config.Ethereum.MinterMnemonic = os.Getenv("ETH_MINTER_MNEMONIC")
	}
	if os.Getenv("ETH_MINTER_GCP_KMS_KEY_NAME") != "" {
		Config.Ethereum.MinterGcpKmsKeyName = os.Getenv("ETH_MINTER_GCP_KMS_KEY_NAME")
	}
	if os.Getenv("ETH_CERTIFICATE_TOKEN_ADDRESS") != "" {
		Config.Ethereum.CertificateTokenAddress = os.Getenv("ETH_CERTIFICATE_TOKEN_ADDRESS")
	}
	if os.Getenv("ETH_LICENSE_TOKEN_ADDRESS") != "" {
		Config.Ethereum.LicenseTokenAddress = os.Getenv("ETH_LICENSE_TOKEN_ADDRESS")
	}
	if os.Getenv("ETH_EXPLORER_BASE_URL") != "" {
		Config.Ethereum.ExplorerBaseURL = os.Getenv("ETH_EXPLORER_BASE_URL")
	}

	// wallet
	if os.Getenv("WALLET_ENCRYPTION_SECRET") != "" {
		Config.Wallet.EncryptionSecret = os.Getenv("WALLET_ENCRYPTION_SECRET")
	}

	// api
	if os.Getenv("API_PORT") != "" {
		port, err := strconv.ParseInt(os.Getenv("API_PORT"), 10, 64)
		if err != nil {
			log.Warn("[ENV] Error parsing API_PORT: ", err.Error())
		} else {
			Config.API.Port = port
		}
	}
	if os.Getenv("API_ADMIN_TOKEN") != "" {
		Config.API.AdminToken = os.Getenv("API_ADMIN_TOKEN")
	}

	// health check
	if os.Getenv("HEALTH_CHECK_ENABLED") != "" {
		enabled, err := strconv.ParseBool(os.Getenv("HEALTH_CHECK_ENABLED"))
		if err != nil {
			log.Warn("[ENV] Error parsing HEALTH_CHECK_ENABLED: ", err.Error())
		} else {
			Config.HealthCheck.Enabled = enabled
		}
	}
	if os.Getenv("HEALTH_CHECK_INTERVAL_MS") != "" {
		intervalMillis, err := strconv.ParseInt(os.Getenv("HEALTH_CHECK_INTERVAL_MS"), 10, 64)
		if err != nil {
			log.Warn("[ENV] Error parsing HEALTH_CHECK_INTERVAL_MS: ", err.Error())
		} else {
			Config.HealthCheck.IntervalMillis = intervalMillis
		}
	}

	// logger
	if os.Getenv("LOGGER_LEVEL") != "" {
		Config.Logger.Level = os.Getenv("LOGGER_LEVEL")
	}

	// google secret manager
	if os.Getenv("GSM_ENABLED") != "" {
		enabled, err := strconv.ParseBool(os.Getenv("GSM_ENABLED"))
		if err != nil {
			log.Warn("[ENV] Error parsing GSM_ENABLED: ", err.Error())
		} else {
			Config.GoogleSecretManager.Enabled = enabled
		}
	}
	if os.Getenv("GSM_PROJECT_ID") != "" {
		Config.GoogleSecretManager.ProjectId = os.Getenv("GSM_PROJECT_ID")
	}
	if os.Getenv("GSM_MONGO_SECRET_NAME") != "" {
		Config.GoogleSecretManager.MongoSecretName = os.Getenv("GSM_MONGO_SECRET_NAME")
	}
	if os.Getenv("GSM_MINTER_SECRET_NAME") != "" {
		Config.GoogleSecretManager.MinterSecretName = os.Getenv("GSM_MINTER_SECRET_NAME")
	}
	if os.Getenv("GSM_WALLET_ENCRYPTION_SECRET_NAME") != "" {
		Config.GoogleSecretManager.WalletEncryptionSecretName = os.Getenv("GSM_WALLET_ENCRYPTION_SECRET_NAME")
	}
}
