package main

import (
	"context"
	"fmt"
	"math/big"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/artledger/certmint/api"
	"github.com/artledger/certmint/app"
	"github.com/artledger/certmint/common"
	"github.com/artledger/certmint/eth"
	"github.com/artledger/certmint/eth/client"
	"github.com/artledger/certmint/health"
	"github.com/artledger/certmint/mint"
	"github.com/artledger/certmint/models"
	"github.com/artledger/certmint/verify"
	"github.com/artledger/certmint/wallet"
	ethcommon "github.com/ethereum/go-ethereum/common"
	log "github.com/sirupsen/logrus"
)

func main() {
	log.SetFormatter(&log.TextFormatter{
		FullTimestamp: true,
	})

	if len(os.Args) < 2 {
		log.Fatal("Please provide config file as parameter")
	}
	absConfigPath, _ := filepath.Abs(os.Args[1])
	envFile := ""
	if len(os.Args) > 2 {
		envFile, _ = filepath.Abs(os.Args[2])
	}

	app.InitConfig(absConfigPath, envFile)
	app.InitLogger()

	db, err := app.NewDatabase(app.Config.MongoDB)
	if err != nil {
		log.Fatal("[MAIN] Failed to initialize database: ", err)
	}

	ethClient, err := client.NewClient(app.Config.Ethereum)
	if err != nil {
		log.Fatal("[MAIN] Failed to connect to ethereum rpc: ", err)
	}
	ethClient.ValidateNetwork()

	chainID, ok := new(big.Int).SetString(app.Config.Ethereum.ChainID, 10)
	if !ok {
		log.Fatal("[MAIN] Invalid chain id: ", app.Config.Ethereum.ChainID)
	}

	certificateContract, err := client.NewTokenContract(
		ethcommon.HexToAddress(app.Config.Ethereum.CertificateTokenAddress), ethClient.GetClient())
	if err != nil {
		log.Fatal("[MAIN] Failed to bind certificate contract: ", err)
	}
	licenseContract, err := client.NewTokenContract(
		ethcommon.HexToAddress(app.Config.Ethereum.LicenseTokenAddress), ethClient.GetClient())
	if err != nil {
		log.Fatal("[MAIN] Failed to bind license contract: ", err)
	}

	signer, err := app.CreateMinterSigner()
	if err != nil {
		log.Fatal("[MAIN] Failed to create minter signer: ", err)
	}
	defer signer.Destroy()

	minter := eth.NewMinter(
		ethClient,
		certificateContract,
		licenseContract,
		signer,
		chainID,
		time.Duration(app.Config.Ethereum.ConfirmationTimeoutMillis)*time.Millisecond,
	)

	vault := common.NewVault(app.Config.Wallet.EncryptionSecret)
	wallets := wallet.NewStore(db, vault, app.Config.Ethereum.ChainID)
	mints := mint.NewService(db, wallets, minter, app.Config.Ethereum.ExplorerBaseURL)
	verifier := verify.NewVerifier(db, minter)

	var reporter *health.Reporter
	if app.Config.HealthCheck.Enabled {
		reporter = health.NewReporter(
			db,
			signer.EthAddress().Hex(),
			app.Config.Ethereum.ChainID,
			time.Duration(app.Config.HealthCheck.IntervalMillis)*time.Millisecond,
			[]models.Service{},
		)
		reporter.Start()
	}

	router := api.NewRouter(mints, verifier, wallets, reporter, app.Config.API.AdminToken)
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", app.Config.API.Port),
		Handler: router,
	}

	go func() {
		log.Info("[MAIN] API listening on port ", app.Config.API.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("[MAIN] API server failed: ", err)
		}
	}()

	gracefulStop := make(chan os.Signal, 1)
	signal.Notify(gracefulStop, syscall.SIGINT, syscall.SIGTERM)
	sig := <-gracefulStop
	log.Debug("[MAIN] Got signal: ", sig)

	log.Debug("[MAIN] Gracefully shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("[MAIN] API shutdown error: ", err)
	}
	if reporter != nil {
		reporter.Stop()
	}
	if err := db.Disconnect(); err != nil {
		log.Error("[MAIN] Database disconnect error: ", err)
	}
	log.Debug("[MAIN] Server gracefully stopped")
}
