package models

type Config struct {
	GoogleSecretManager GoogleSecretManagerConfig `yaml:"google_secret_manager" json:"google_secret_manager"`
	HealthCheck         HealthCheckConfig         `yaml:"health_check" json:"health_check"`
	Logger              LoggerConfig              `yaml:"logger" json:"logger"`
	MongoDB             MongoConfig               `yaml:"mongodb" json:"mongo_db"`
	Ethereum            EthereumConfig            `yaml:"ethereum" json:"ethereum"`
	Wallet              WalletConfig              `yaml:"wallet" json:"wallet"`
	API                 APIConfig                 `yaml:"api" json:"api"`
}

type GoogleSecretManagerConfig struct {
	Enabled                    bool   `yaml:"enabled" json:"enabled"`
	ProjectId                  string `yaml:"project_id" json:"project_id"`
	MongoSecretName            string `yaml:"mongo_secret_name" json:"mongo_secret_name"`
	MinterSecretName           string `yaml:"minter_secret_name" json:"minter_secret_name"`
	WalletEncryptionSecretName string `yaml:"wallet_encryption_secret_name" json:"wallet_encryption_secret_name"`
}

type HealthCheckConfig struct {
	Enabled        bool  `yaml:"enabled" json:"enabled"`
	IntervalMillis int64 `yaml:"interval_ms" json:"interval_ms"`
}

type LoggerConfig struct {
	Level string `yaml:"level" json:"level"`
}

type MongoConfig struct {
	URI           string `yaml:"uri" json:"uri"`
	Database      string `yaml:"database" json:"database"`
	TimeoutMillis int64  `yaml:"timeout_ms" json:"timeout_ms"`
}

type EthereumConfig struct {
	RPCURL                    string `yaml:"rpc_url" json:"rpcurl"`
	RPCTimeoutMillis          int64  `yaml:"rpc_timeout_ms" json:"rpc_timeout_ms"`
	ChainID                   string `yaml:"chain_id" json:"chain_id"`
	MinterPrivateKey          string `yaml:"minter_private_key" json:"minter_private_key"`
	MinterMnemonic            string `yaml:"minter_mnemonic" json:"minter_mnemonic"`
	MinterGcpKmsKeyName       string `yaml:"minter_gcp_kms_key_name" json:"minter_gcp_kms_key_name"`
	CertificateTokenAddress   string `yaml:"certificate_token_address" json:"certificate_token_address"`
	LicenseTokenAddress       string `yaml:"license_token_address" json:"license_token_address"`
	ConfirmationTimeoutMillis int64  `yaml:"confirmation_timeout_ms" json:"confirmation_timeout_ms"`
	ExplorerBaseURL           string `yaml:"explorer_base_url" json:"explorer_base_url"`
}

type WalletConfig struct {
	EncryptionSecret string `yaml:"encryption_secret" json:"encryption_secret"`
}

type APIConfig struct {
	Port int64 `yaml:"port" json:"port"`
	// AdminToken gates the wallet admin endpoints; empty disables them.
	AdminToken string `yaml:"admin_token" json:"admin_token"`
}
