// Package mint orchestrates the request/validate/mint/persist protocol and
// the retry-of-failed-transaction flow. It owns the decision of whether a
// mint is permitted and owns writing the final record; the chain client
// only broadcasts and confirms.
package mint

import (
	"errors"
	"fmt"
	"time"

	"github.com/artledger/certmint/app"
	"github.com/artledger/certmint/eth"
	"github.com/artledger/certmint/models"
	"github.com/artledger/certmint/wallet"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

const (
	// WarningPersistenceFailed flags the mint-succeeded-save-failed
	// outcome: the on-chain fact is real and irreversible, so the
	// operation still reports success and operators reconcile later.
	WarningPersistenceFailed = "persistence_failed"
)

type Service struct {
	db      app.Database
	wallets *wallet.Store
	minter  eth.Minter

	explorerBaseURL string
}

func NewService(db app.Database, wallets *wallet.Store, minter eth.Minter, explorerBaseURL string) *Service {
	return &Service{
		db:              db,
		wallets:         wallets,
		minter:          minter,
		explorerBaseURL: explorerBaseURL,
	}
}

func (s *Service) explorerURL(txHash string) string {
	if s.explorerBaseURL == "" || txHash == "" {
		return ""
	}
	return fmt.Sprintf("%s/tx/%s", s.explorerBaseURL, txHash)
}

// lockSubject takes a best-effort advisory lock on a mint subject. The
// unique index on confirmed records is the true duplicate-mint safety net;
// the lock only narrows the race window, so failure to acquire is logged
// and not fatal.
func (s *Service) lockSubject(resource string) (string, bool) {
	lockId, err := s.db.XLock(resource)
	if err != nil {
		log.Warn("[MINT] Could not acquire advisory lock on ", resource, ": ", err)
		return "", false
	}
	return lockId, true
}

func (s *Service) unlockSubject(lockId string) {
	if err := s.db.Unlock(lockId); err != nil {
		log.Warn("[MINT] Could not release advisory lock: ", err)
	}
}

// captureFailedTransaction records a replayable failed mint so it can be
// retried later. Best effort: a failure to persist the failure is logged,
// never escalated.
func (s *Service) captureFailedTransaction(transactionType string, payload map[string]string, mintErr *models.ServiceError) string {
	transactionId := uuid.NewString()
	now := time.Now()
	doc := models.FailedTransaction{
		TransactionId:   transactionId,
		TransactionType: transactionType,
		Payload:         payload,
		Status:          models.RetryStatusPending,
		ErrorCode:       mintErr.Code,
		ErrorMessage:    mintErr.Message,
		RetryCount:      0,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.db.InsertOne(models.CollectionFailedTransactions, doc); err != nil {
		log.Error("[MINT] Could not capture failed transaction record: ", err)
		return ""
	}
	log.Info("[MINT] Captured failed ", transactionType, " transaction ", transactionId)
	return transactionId
}

// asServiceError normalizes any error from a collaborator into a
// ServiceError so stable codes always reach the caller.
func asServiceError(err error) *models.ServiceError {
	var svcErr *models.ServiceError
	if errors.As(err, &svcErr) {
		return svcErr
	}
	return models.WrapServiceError(models.ErrInternalError, "unexpected failure", err)
}
