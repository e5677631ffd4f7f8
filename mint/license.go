package mint

import (
	"context"
	"fmt"
	"strconv"
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

// expiry dates arrive as calendar dates, not timestamps
const expiryDateLayout = "2006-01-02"

type LicenseRequest struct {
	BuyerUserId        string `json:"buyer_user_id"`
	OrderId            string `json:"order_id"`
	WorkId             string `json:"work_id"`
	LicenseOfferingId  string `json:"license_offering_id,omitempty"`
	LicenseType        string `json:"license_type"`
	WorkTitle          string `json:"work_title"`
	CreatorName        string `json:"creator_name"`
	Terms              string `json:"terms,omitempty"`
	ExpiryDate         string `json:"expiry_date,omitempty"`
	UsageLimit         int64  `json:"usage_limit,omitempty"`
	PurchaseAmount     string `json:"purchase_amount,omitempty"`
	PaymentTransaction string `json:"payment_transaction_hash,omitempty"`
}

type LicenseResponse struct {
	LicenseId       string             `json:"license_id"`
	TokenId         string             `json:"token_id"`
	TransactionHash string             `json:"transaction_hash"`
	ExplorerURL     string             `json:"explorer_url,omitempty"`
	Status          string             `json:"status"`
	Warning         string             `json:"warning,omitempty"`
	MintResult      *models.MintResult `json:"mint_result,omitempty"`
}

func validateLicenseRequest(req LicenseRequest) *models.ServiceError {
	var missing []string
	if req.BuyerUserId == "" {
		missing = append(missing, "buyer_user_id")
	}
	if req.OrderId == "" {
		missing = append(missing, "order_id")
	}
	if req.WorkId == "" {
		missing = append(missing, "work_id")
	}
	if req.LicenseType == "" {
		missing = append(missing, "license_type")
	}
	if req.WorkTitle == "" {
		missing = append(missing, "work_title")
	}
	if req.CreatorName == "" {
		missing = append(missing, "creator_name")
	}
	if len(missing) > 0 {
		return models.NewServiceError(models.ErrMissingFields,
			fmt.Sprintf("missing required fields: %s", strings.Join(missing, ", ")))
	}
	if !metadata.IsValidLicenseType(req.LicenseType) {
		return models.NewServiceError(models.ErrInvalidLicenseType,
			fmt.Sprintf("unknown license type %q", req.LicenseType))
	}
	if req.ExpiryDate != "" {
		if _, err := time.Parse(expiryDateLayout, req.ExpiryDate); err != nil {
			return models.NewServiceError(models.ErrInvalidDateFormat,
				fmt.Sprintf("expiry_date must be YYYY-MM-DD, got %q", req.ExpiryDate))
		}
	}
	if req.UsageLimit < 0 {
		return models.NewServiceError(models.ErrInvalidUsageLimit,
			"usage_limit must be zero or positive")
	}
	if req.PaymentTransaction != "" && !metadata.IsValidTxHash(req.PaymentTransaction) {
		return models.NewServiceError(models.ErrInvalidInput,
			"payment_transaction_hash must be a 0x-prefixed 32-byte hash")
	}
	return nil
}

func licensePayload(req LicenseRequest) map[string]string {
	return map[string]string{
		"buyer_user_id":            req.BuyerUserId,
		"order_id":                 req.OrderId,
		"work_id":                  req.WorkId,
		"license_offering_id":      req.LicenseOfferingId,
		"license_type":             req.LicenseType,
		"work_title":               req.WorkTitle,
		"creator_name":             req.CreatorName,
		"terms":                    req.Terms,
		"expiry_date":              req.ExpiryDate,
		"usage_limit":              strconv.FormatInt(req.UsageLimit, 10),
		"purchase_amount":          req.PurchaseAmount,
		"payment_transaction_hash": req.PaymentTransaction,
	}
}

func licenseRequestFromPayload(payload map[string]string) LicenseRequest {
	usageLimit, _ := strconv.ParseInt(payload["usage_limit"], 10, 64)
	return LicenseRequest{
		BuyerUserId:        payload["buyer_user_id"],
		OrderId:            payload["order_id"],
		WorkId:             payload["work_id"],
		LicenseOfferingId:  payload["license_offering_id"],
		LicenseType:        payload["license_type"],
		WorkTitle:          payload["work_title"],
		CreatorName:        payload["creator_name"],
		Terms:              payload["terms"],
		ExpiryDate:         payload["expiry_date"],
		UsageLimit:         usageLimit,
		PurchaseAmount:     payload["purchase_amount"],
		PaymentTransaction: payload["payment_transaction_hash"],
	}
}

// MintLicense mints a usage-license token to the buyer's custodial wallet.
// Licenses are keyed by order: one confirmed license per order, ever.
func (s *Service) MintLicense(ctx context.Context, req LicenseRequest) (*LicenseResponse, error) {
	return s.mintLicense(ctx, req, true)
}

func (s *Service) mintLicense(ctx context.Context, req LicenseRequest, captureFailure bool) (*LicenseResponse, error) {
	if svcErr := validateLicenseRequest(req); svcErr != nil {
		return nil, svcErr
	}

	var existing models.License
	err := s.db.FindOne(models.CollectionLicenses,
		bson.M{"order_id": req.OrderId, "minting_status": models.MintingStatusConfirmed}, &existing)
	if err == nil {
		return nil, &models.ServiceError{
			Code:    models.ErrAlreadyExists,
			Message: fmt.Sprintf("order %s already has a confirmed license", req.OrderId),
			Existing: map[string]string{
				"license_id":       existing.LicenseId,
				"token_id":         existing.TokenId,
				"transaction_hash": existing.TransactionHash,
			},
		}
	}
	if !app.IsNotFound(err) {
		return nil, models.WrapServiceError(models.ErrStoreUnavailable, "license lookup failed", err)
	}

	walletDoc, err := s.wallets.GetWalletAddress(req.BuyerUserId)
	if err != nil {
		return nil, err
	}
	if walletDoc == nil {
		return nil, models.NewServiceError(models.ErrWalletNotFound,
			fmt.Sprintf("no custodial wallet for user %s", req.BuyerUserId))
	}

	meta := metadata.BuildLicenseMetadata(metadata.LicenseParams{
		LicenseType:    req.LicenseType,
		WorkTitle:      req.WorkTitle,
		CreatorName:    req.CreatorName,
		Terms:          req.Terms,
		ExpiryDate:     req.ExpiryDate,
		UsageLimit:     req.UsageLimit,
		PurchaseAmount: req.PurchaseAmount,
		OrderId:        req.OrderId,
	})
	uri, err := metadata.EncodeLicenseMetadata(meta)
	if err != nil {
		return nil, models.WrapServiceError(models.ErrInternalError, "metadata encoding failed", err)
	}

	if lockId, ok := s.lockSubject("mint:order:" + req.OrderId); ok {
		defer s.unlockSubject(lockId)
	}

	result, err := s.minter.Mint(ctx, eth.MintParams{
		TokenKind:   models.TransactionTypeLicense,
		Recipient:   walletDoc.Address,
		MetadataURI: uri,
	})
	if err != nil {
		mintErr := asServiceError(err)
		log.Error("[MINT] License mint failed for order ", req.OrderId, ": ", mintErr)
		outErr := &models.ServiceError{
			Code:    models.ErrMintingFailed,
			Message: mintErr.Message,
			Err:     mintErr,
		}
		if captureFailure {
			s.recordFailedLicense(req, walletDoc.Address, meta, mintErr)
			if failedId := s.captureFailedTransaction(models.TransactionTypeLicense,
				licensePayload(req), mintErr); failedId != "" {
				outErr.Existing = map[string]string{"failed_transaction_id": failedId}
			}
		}
		return nil, outErr
	}

	licenseId := uuid.NewString()
	now := time.Now()
	record := models.License{
		LicenseId:          licenseId,
		OrderId:            req.OrderId,
		WorkId:             req.WorkId,
		LicenseOfferingId:  req.LicenseOfferingId,
		BuyerUserId:        req.BuyerUserId,
		RecipientAddress:   walletDoc.Address,
		Metadata:           meta,
		TokenId:            result.TokenId,
		TransactionHash:    result.TransactionHash,
		BlockNumber:        result.BlockNumber,
		GasUsed:            result.GasUsed,
		PaymentTransaction: req.PaymentTransaction,
		MintingStatus:      models.MintingStatusConfirmed,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if err := s.db.InsertOne(models.CollectionLicenses, record); err != nil {
		if app.IsDuplicateKey(err) {
			log.Error("[MINT] Duplicate confirmed license for order ", req.OrderId,
				", orphaned token ", result.TokenId, " in tx ", result.TransactionHash)
			return nil, &models.ServiceError{
				Code:    models.ErrDuplicateRecord,
				Message: fmt.Sprintf("a confirmed license for order %s was recorded concurrently", req.OrderId),
				Existing: map[string]string{
					"token_id":         result.TokenId,
					"transaction_hash": result.TransactionHash,
				},
			}
		}
		log.Error("[MINT] Mint confirmed in tx ", result.TransactionHash,
			" but license record insert failed: ", err)
		return &LicenseResponse{
			LicenseId:       licenseId,
			TokenId:         result.TokenId,
			TransactionHash: result.TransactionHash,
			ExplorerURL:     s.explorerURL(result.TransactionHash),
			Status:          models.MintingStatusConfirmed,
			Warning:         WarningPersistenceFailed,
			MintResult:      result,
		}, nil
	}

	log.Info("[MINT] License ", licenseId, " minted as token ", result.TokenId,
		" for order ", req.OrderId)
	return &LicenseResponse{
		LicenseId:       licenseId,
		TokenId:         result.TokenId,
		TransactionHash: result.TransactionHash,
		ExplorerURL:     s.explorerURL(result.TransactionHash),
		Status:          models.MintingStatusConfirmed,
	}, nil
}

func (s *Service) recordFailedLicense(req LicenseRequest, recipient string, meta models.LicenseMetadata, mintErr *models.ServiceError) {
	now := time.Now()
	record := models.License{
		LicenseId:          uuid.NewString(),
		OrderId:            req.OrderId,
		WorkId:             req.WorkId,
		LicenseOfferingId:  req.LicenseOfferingId,
		BuyerUserId:        req.BuyerUserId,
		RecipientAddress:   recipient,
		Metadata:           meta,
		PaymentTransaction: req.PaymentTransaction,
		MintingStatus:      models.MintingStatusFailed,
		Error:              mintErr.Error(),
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if err := s.db.InsertOne(models.CollectionLicenses, record); err != nil {
		log.Error("[MINT] Could not record failed license for order ", req.OrderId, ": ", err)
	}
}
