package mint

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/artledger/certmint/app"
	"github.com/artledger/certmint/eth"
	"github.com/artledger/certmint/metadata"
	"github.com/artledger/certmint/models"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
)

type CertificateRequest struct {
	UserId      string `json:"user_id"`
	WorkId      string `json:"work_id,omitempty"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	ContentHash string `json:"content_hash"`
	Category    string `json:"category"`
	CreatorName string `json:"creator_name"`
}

type CertificateResponse struct {
	CertificateId   string             `json:"certificate_id"`
	TokenId         string             `json:"token_id"`
	TransactionHash string             `json:"transaction_hash"`
	ExplorerURL     string             `json:"explorer_url,omitempty"`
	Status          string             `json:"status"`
	Warning         string             `json:"warning,omitempty"`
	MintResult      *models.MintResult `json:"mint_result,omitempty"`
}

func validateCertificateRequest(req CertificateRequest) *models.ServiceError {
	var missing []string
	if req.UserId == "" {
		missing = append(missing, "user_id")
	}
	if req.Title == "" {
		missing = append(missing, "title")
	}
	if req.ContentHash == "" {
		missing = append(missing, "content_hash")
	}
	if req.Category == "" {
		missing = append(missing, "category")
	}
	if req.CreatorName == "" {
		missing = append(missing, "creator_name")
	}
	if len(missing) > 0 {
		return models.NewServiceError(models.ErrMissingFields,
			fmt.Sprintf("missing required fields: %s", strings.Join(missing, ", ")))
	}
	if !metadata.IsValidSHA256(req.ContentHash) {
		return models.NewServiceError(models.ErrInvalidHashFormat,
			"content_hash must be a 64-character hex SHA-256 digest")
	}
	if !metadata.IsValidCategory(req.Category) {
		return models.NewServiceError(models.ErrInvalidCategory,
			fmt.Sprintf("unknown work category %q", req.Category))
	}
	return nil
}

func certificatePayload(req CertificateRequest) map[string]string {
	return map[string]string{
		"user_id":      req.UserId,
		"work_id":      req.WorkId,
		"title":        req.Title,
		"description":  req.Description,
		"content_hash": req.ContentHash,
		"category":     req.Category,
		"creator_name": req.CreatorName,
	}
}

func certificateRequestFromPayload(payload map[string]string) CertificateRequest {
	return CertificateRequest{
		UserId:      payload["user_id"],
		WorkId:      payload["work_id"],
		Title:       payload["title"],
		Description: payload["description"],
		ContentHash: payload["content_hash"],
		Category:    payload["category"],
		CreatorName: payload["creator_name"],
	}
}

// MintCertificate validates the request, mints a copyright certificate token
// to the user's custodial wallet, and records the outcome. Chain truth wins:
// once a mint is confirmed on-chain the operation reports success even if
// recording it fails.
func (s *Service) MintCertificate(ctx context.Context, req CertificateRequest) (*CertificateResponse, error) {
	return s.mintCertificate(ctx, req, true)
}

func (s *Service) mintCertificate(ctx context.Context, req CertificateRequest, captureFailure bool) (*CertificateResponse, error) {
	if svcErr := validateCertificateRequest(req); svcErr != nil {
		return nil, svcErr
	}

	// idempotency fast path: a confirmed certificate for the same work
	// short-circuits before any chain interaction
	if req.WorkId != "" {
		var existing models.CopyrightCertificate
		err := s.db.FindOne(models.CollectionCertificates,
			bson.M{"work_id": req.WorkId, "minting_status": models.MintingStatusConfirmed}, &existing)
		if err == nil {
			return nil, &models.ServiceError{
				Code:    models.ErrAlreadyExists,
				Message: fmt.Sprintf("work %s already has a confirmed certificate", req.WorkId),
				Existing: map[string]string{
					"certificate_id":   existing.CertificateId,
					"token_id":         existing.TokenId,
					"transaction_hash": existing.TransactionHash,
				},
			}
		}
		if !app.IsNotFound(err) {
			return nil, models.WrapServiceError(models.ErrStoreUnavailable, "certificate lookup failed", err)
		}
	}

	walletDoc, err := s.wallets.GetWalletAddress(req.UserId)
	if err != nil {
		return nil, err
	}
	if walletDoc == nil {
		return nil, models.NewServiceError(models.ErrWalletNotFound,
			fmt.Sprintf("no custodial wallet for user %s", req.UserId))
	}

	meta := metadata.BuildCertificateMetadata(metadata.CertificateParams{
		Title:       req.Title,
		Description: req.Description,
		ContentHash: req.ContentHash,
		Category:    req.Category,
		CreatorName: req.CreatorName,
		WorkId:      req.WorkId,
	})
	uri, err := metadata.EncodeCertificateMetadata(meta)
	if err != nil {
		return nil, models.WrapServiceError(models.ErrInternalError, "metadata encoding failed", err)
	}

	if req.WorkId != "" {
		if lockId, ok := s.lockSubject("mint:work:" + req.WorkId); ok {
			defer s.unlockSubject(lockId)
		}
	}

	result, err := s.minter.Mint(ctx, eth.MintParams{
		TokenKind:   models.TransactionTypeCertificate,
		Recipient:   walletDoc.Address,
		MetadataURI: uri,
	})
	if err != nil {
		mintErr := asServiceError(err)
		log.Error("[MINT] Certificate mint failed for user ", req.UserId, ": ", mintErr)
		outErr := &models.ServiceError{
			Code:    models.ErrMintingFailed,
			Message: mintErr.Message,
			Err:     mintErr,
		}
		if captureFailure {
			s.recordFailedCertificate(req, walletDoc.Address, meta, mintErr)
			if failedId := s.captureFailedTransaction(models.TransactionTypeCertificate,
				certificatePayload(req), mintErr); failedId != "" {
				outErr.Existing = map[string]string{"failed_transaction_id": failedId}
			}
		}
		return nil, outErr
	}

	certificateId := uuid.NewString()
	now := time.Now()
	record := models.CopyrightCertificate{
		CertificateId:    certificateId,
		WorkId:           req.WorkId,
		UserId:           req.UserId,
		RecipientAddress: walletDoc.Address,
		Metadata:         meta,
		TokenId:          result.TokenId,
		TransactionHash:  result.TransactionHash,
		BlockNumber:      result.BlockNumber,
		GasUsed:          result.GasUsed,
		MintingStatus:    models.MintingStatusConfirmed,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.db.InsertOne(models.CollectionCertificates, record); err != nil {
		if app.IsDuplicateKey(err) {
			// lost the race to a concurrent mint of the same work; the
			// token minted here needs manual reconciliation
			log.Error("[MINT] Duplicate confirmed certificate for work ", req.WorkId,
				", orphaned token ", result.TokenId, " in tx ", result.TransactionHash)
			return nil, &models.ServiceError{
				Code:    models.ErrDuplicateRecord,
				Message: fmt.Sprintf("a confirmed certificate for work %s was recorded concurrently", req.WorkId),
				Existing: map[string]string{
					"token_id":         result.TokenId,
					"transaction_hash": result.TransactionHash,
				},
			}
		}
		log.Error("[MINT] Mint confirmed in tx ", result.TransactionHash,
			" but certificate record insert failed: ", err)
		return &CertificateResponse{
			CertificateId:   certificateId,
			TokenId:         result.TokenId,
			TransactionHash: result.TransactionHash,
			ExplorerURL:     s.explorerURL(result.TransactionHash),
			Status:          models.MintingStatusConfirmed,
			Warning:         WarningPersistenceFailed,
			MintResult:      result,
		}, nil
	}

	log.Info("[MINT] Certificate ", certificateId, " minted as token ", result.TokenId,
		" for user ", req.UserId)
	return &CertificateResponse{
		CertificateId:   certificateId,
		TokenId:         result.TokenId,
		TransactionHash: result.TransactionHash,
		ExplorerURL:     s.explorerURL(result.TransactionHash),
		Status:          models.MintingStatusConfirmed,
	}, nil
}

// recordFailedCertificate writes a failed-status certificate row for audit.
// Best effort; the replayable failed-transaction record is the retry source.
func (s *Service) recordFailedCertificate(req CertificateRequest, recipient string, meta models.CertificateMetadata, mintErr *models.ServiceError) {
	now := time.Now()
	record := models.CopyrightCertificate{
		CertificateId:    uuid.NewString(),
		WorkId:           req.WorkId,
		UserId:           req.UserId,
		RecipientAddress: recipient,
		Metadata:         meta,
		MintingStatus:    models.MintingStatusFailed,
		Error:            mintErr.Error(),
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.db.InsertOne(models.CollectionCertificates, record); err != nil {
		log.Error("[MINT] Could not record failed certificate for user ", req.UserId, ": ", err)
	}
}
