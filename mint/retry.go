package mint

import (
	"context"
	"fmt"
	"time"

	"github.com/artledger/certmint/app"
	"github.com/artledger/certmint/models"
	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
)

type RetryResponse struct {
	TransactionId   string `json:"transaction_id"`
	Status          string `json:"status"`
	TokenId         string `json:"token_id,omitempty"`
	TransactionHash string `json:"transaction_hash,omitempty"`
	ExplorerURL     string `json:"explorer_url,omitempty"`
	Warning         string `json:"warning,omitempty"`
}

func (s *Service) loadFailedTransaction(transactionId string) (*models.FailedTransaction, *models.ServiceError) {
	var failed models.FailedTransaction
	err := s.db.FindOne(models.CollectionFailedTransactions,
		bson.M{"transaction_id": transactionId}, &failed)
	if app.IsNotFound(err) {
		return nil, models.NewServiceError(models.ErrRecordNotFound,
			fmt.Sprintf("no failed transaction %s", transactionId))
	}
	if err != nil {
		return nil, models.WrapServiceError(models.ErrStoreUnavailable, "failed transaction lookup failed", err)
	}
	return &failed, nil
}

// guardRetryable rejects terminal and in-flight records. Only pending
// records may start another retry; resolved and abandoned never leave
// their state.
func guardRetryable(failed *models.FailedTransaction) *models.ServiceError {
	switch failed.Status {
	case models.RetryStatusResolved:
		return &models.ServiceError{
			Code:     models.ErrAlreadyResolved,
			Message:  fmt.Sprintf("transaction %s was already resolved", failed.TransactionId),
			Existing: map[string]string{"resolved_tx_hash": failed.ResolvedTxHash},
		}
	case models.RetryStatusAbandoned:
		return models.NewServiceError(models.ErrAbandoned,
			fmt.Sprintf("transaction %s was abandoned", failed.TransactionId))
	case models.RetryStatusRetrying:
		return models.NewServiceError(models.ErrRetryInProgress,
			fmt.Sprintf("transaction %s has a retry in flight", failed.TransactionId))
	}
	return nil
}

// RetryTransaction replays a failed mint from its captured payload. The
// record is marked retrying before the chain is touched, so a crash
// mid-retry is visible rather than silently back in pending.
func (s *Service) RetryTransaction(ctx context.Context, transactionId string) (*RetryResponse, error) {
	failed, svcErr := s.loadFailedTransaction(transactionId)
	if svcErr != nil {
		return nil, svcErr
	}
	if svcErr := guardRetryable(failed); svcErr != nil {
		return nil, svcErr
	}

	now := time.Now()
	err := s.db.UpdateOne(models.CollectionFailedTransactions,
		bson.M{"transaction_id": transactionId, "status": models.RetryStatusPending},
		bson.M{
			"$set": bson.M{
				"status":        models.RetryStatusRetrying,
				"last_retry_at": now,
				"updated_at":    now,
			},
			"$inc": bson.M{"retry_count": 1},
		})
	if err != nil {
		return nil, models.WrapServiceError(models.ErrStoreUnavailable, "could not mark transaction retrying", err)
	}
	log.Info("[RETRY] Replaying ", failed.TransactionType, " transaction ", transactionId,
		" (attempt ", failed.RetryCount+1, ")")

	var tokenId, txHash, warning string
	var mintErr error
	switch failed.TransactionType {
	case models.TransactionTypeCertificate:
		resp, err := s.mintCertificate(ctx, certificateRequestFromPayload(failed.Payload), false)
		if err != nil {
			mintErr = err
		} else {
			tokenId, txHash, warning = resp.TokenId, resp.TransactionHash, resp.Warning
		}
	case models.TransactionTypeLicense:
		resp, err := s.mintLicense(ctx, licenseRequestFromPayload(failed.Payload), false)
		if err != nil {
			mintErr = err
		} else {
			tokenId, txHash, warning = resp.TokenId, resp.TransactionHash, resp.Warning
		}
	default:
		s.returnToPending(transactionId, models.ErrInternalError,
			fmt.Sprintf("unknown transaction type %q", failed.TransactionType))
		return nil, models.NewServiceError(models.ErrInternalError,
			fmt.Sprintf("unknown transaction type %q", failed.TransactionType))
	}

	if mintErr != nil {
		replayErr := asServiceError(mintErr)

		// an ALREADY_EXISTS during replay means the subject was minted
		// after all, typically an original attempt that confirmed past
		// its timeout; that resolves this record
		if replayErr.Code == models.ErrAlreadyExists && replayErr.Existing != nil {
			existingTx := replayErr.Existing["transaction_hash"]
			log.Info("[RETRY] Transaction ", transactionId, " found already minted in tx ", existingTx)
			s.markResolved(transactionId, existingTx)
			return &RetryResponse{
				TransactionId:   transactionId,
				Status:          models.RetryStatusResolved,
				TokenId:         replayErr.Existing["token_id"],
				TransactionHash: existingTx,
				ExplorerURL:     s.explorerURL(existingTx),
			}, nil
		}

		log.Warn("[RETRY] Replay of ", transactionId, " failed: ", replayErr)
		s.returnToPending(transactionId, replayErr.Code, replayErr.Message)
		return nil, replayErr
	}

	s.markResolved(transactionId, txHash)
	log.Info("[RETRY] Transaction ", transactionId, " resolved in tx ", txHash)
	return &RetryResponse{
		TransactionId:   transactionId,
		Status:          models.RetryStatusResolved,
		TokenId:         tokenId,
		TransactionHash: txHash,
		ExplorerURL:     s.explorerURL(txHash),
		Warning:         warning,
	}, nil
}

// AbandonTransaction permanently retires a pending failed transaction.
// Abandoned is terminal; the record stays for audit but can never be
// replayed again.
func (s *Service) AbandonTransaction(transactionId string) (*RetryResponse, error) {
	failed, svcErr := s.loadFailedTransaction(transactionId)
	if svcErr != nil {
		return nil, svcErr
	}
	if svcErr := guardRetryable(failed); svcErr != nil {
		return nil, svcErr
	}

	now := time.Now()
	err := s.db.UpdateOne(models.CollectionFailedTransactions,
		bson.M{"transaction_id": transactionId, "status": models.RetryStatusPending},
		bson.M{"$set": bson.M{
			"status":     models.RetryStatusAbandoned,
			"updated_at": now,
		}})
	if err != nil {
		return nil, models.WrapServiceError(models.ErrStoreUnavailable, "could not abandon transaction", err)
	}

	log.Info("[RETRY] Abandoned transaction ", transactionId)
	return &RetryResponse{
		TransactionId: transactionId,
		Status:        models.RetryStatusAbandoned,
	}, nil
}

// ListFailedTransactions returns replayable records, optionally filtered by
// status. Used by the operator surface to find work.
func (s *Service) ListFailedTransactions(status string) ([]models.FailedTransaction, error) {
	filter := bson.M{}
	if status != "" {
		filter["status"] = status
	}
	var records []models.FailedTransaction
	if err := s.db.FindMany(models.CollectionFailedTransactions, filter, &records); err != nil {
		return nil, models.WrapServiceError(models.ErrStoreUnavailable, "failed transaction list failed", err)
	}
	return records, nil
}

func (s *Service) markResolved(transactionId string, txHash string) {
	now := time.Now()
	err := s.db.UpdateOne(models.CollectionFailedTransactions,
		bson.M{"transaction_id": transactionId},
		bson.M{"$set": bson.M{
			"status":           models.RetryStatusResolved,
			"resolved_tx_hash": txHash,
			"updated_at":       now,
		}})
	if err != nil {
		log.Error("[RETRY] Could not mark transaction ", transactionId, " resolved: ", err)
	}
}

func (s *Service) returnToPending(transactionId string, errorCode string, errorMessage string) {
	now := time.Now()
	err := s.db.UpdateOne(models.CollectionFailedTransactions,
		bson.M{"transaction_id": transactionId},
		bson.M{"$set": bson.M{
			"status":        models.RetryStatusPending,
			"error_code":    errorCode,
			"error_message": errorMessage,
			"updated_at":    now,
		}})
	if err != nil {
		log.Error("[RETRY] Could not return transaction ", transactionId, " to pending: ", err)
	}
}
