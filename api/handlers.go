package api

import (
	"errors"
	"net/http"

	"github.com/artledger/certmint/mint"
	"github.com/artledger/certmint/models"
	"github.com/artledger/certmint/verify"
	"github.com/gin-gonic/gin"
)

// statusForCode maps stable service error codes onto HTTP statuses.
func statusForCode(code string) int {
	switch code {
	case models.ErrMissingFields, models.ErrInvalidHashFormat, models.ErrInvalidCategory,
		models.ErrInvalidLicenseType, models.ErrInvalidDateFormat, models.ErrInvalidUsageLimit,
		models.ErrInvalidInput, models.ErrMalformedCipherText:
		return http.StatusBadRequest
	case models.ErrWalletNotFound, models.ErrRecordNotFound:
		return http.StatusNotFound
	case models.ErrAlreadyExists, models.ErrDuplicateRecord, models.ErrAlreadyResolved,
		models.ErrAbandoned, models.ErrRetryInProgress, models.ErrWalletAlreadyExists:
		return http.StatusConflict
	case models.ErrBroadcastFailed, models.ErrTransactionReverted,
		models.ErrConfirmationTimeout, models.ErrMintingFailed:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// respondError renders the stable error envelope. Conflict payloads carry
// the existing record's key fields so callers can recover without a
// re-query.
func respondError(c *gin.Context, err error) {
	var svcErr *models.ServiceError
	if !errors.As(err, &svcErr) {
		svcErr = models.WrapServiceError(models.ErrInternalError, "unexpected failure", err)
	}
	body := gin.H{
		"success": false,
		"error":   svcErr.Code,
		"message": svcErr.Message,
	}
	if len(svcErr.Existing) > 0 {
		body["existing"] = svcErr.Existing
	}
	c.JSON(statusForCode(svcErr.Code), body)
}

func (r *Router) mintCertificate(c *gin.Context) {
	var req mint.CertificateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, models.WrapServiceError(models.ErrInvalidInput, "malformed request body", err))
		return
	}
	resp, err := r.mints.MintCertificate(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (r *Router) mintLicense(c *gin.Context) {
	var req mint.LicenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, models.WrapServiceError(models.ErrInvalidInput, "malformed request body", err))
		return
	}
	resp, err := r.mints.MintLicense(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// identifierFromQuery enforces the exactly-one-identifier rule before any
// lookup happens.
func identifierFromQuery(c *gin.Context) (string, string, *models.ServiceError) {
	params := []struct {
		query          string
		identifierType string
	}{
		{"tx", verify.IdentifierTransactionHash},
		{"tokenId", verify.IdentifierTokenId},
		{"workHash", verify.IdentifierContentHash},
		{"certificateId", verify.IdentifierRecordId},
	}

	identifierType, value := "", ""
	found := 0
	for _, param := range params {
		if v, ok := c.GetQuery(param.query); ok {
			identifierType, value = param.identifierType, v
			found++
		}
	}
	if found == 0 {
		return "", "", models.NewServiceError(models.ErrInvalidInput,
			"exactly one of tx, tokenId, workHash, certificateId is required")
	}
	if found > 1 {
		return "", "", models.NewServiceError(models.ErrInvalidInput,
			"multiple identifiers given; exactly one is allowed")
	}
	return identifierType, value, nil
}

func (r *Router) verifyCertificate(c *gin.Context) {
	identifierType, value, svcErr := identifierFromQuery(c)
	if svcErr != nil {
		respondError(c, svcErr)
		return
	}
	result, err := r.verifier.Verify(c.Request.Context(), identifierType, value)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

type retryRequest struct {
	TransactionId string `json:"transaction_id"`
}

func (r *Router) retryTransaction(c *gin.Context) {
	var req retryRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.TransactionId == "" {
		respondError(c, models.NewServiceError(models.ErrInvalidInput, "transaction_id is required"))
		return
	}
	resp, err := r.mints.RetryTransaction(c.Request.Context(), req.TransactionId)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":          true,
		"transaction_id":   resp.TransactionId,
		"status":           resp.Status,
		"token_id":         resp.TokenId,
		"transaction_hash": resp.TransactionHash,
		"explorer_url":     resp.ExplorerURL,
		"warning":          resp.Warning,
	})
}

func (r *Router) abandonTransaction(c *gin.Context) {
	var req retryRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.TransactionId == "" {
		respondError(c, models.NewServiceError(models.ErrInvalidInput, "transaction_id is required"))
		return
	}
	resp, err := r.mints.AbandonTransaction(req.TransactionId)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":        true,
		"transaction_id": resp.TransactionId,
		"status":         resp.Status,
	})
}

func (r *Router) listFailedTransactions(c *gin.Context) {
	records, err := r.mints.ListFailedTransactions(c.Query("status"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "transactions": records})
}

type createWalletRequest struct {
	UserId string `json:"user_id"`
}

func (r *Router) createWallet(c *gin.Context) {
	var req createWalletRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.UserId == "" {
		respondError(c, models.NewServiceError(models.ErrInvalidInput, "user_id is required"))
		return
	}
	created, err := r.wallets.CreateWallet(req.UserId)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"user_id": req.UserId,
		"address": created.Address,
	})
}

func (r *Router) getWallet(c *gin.Context) {
	doc, err := r.wallets.GetWalletAddress(c.Param("userId"))
	if err != nil {
		respondError(c, err)
		return
	}
	if doc == nil {
		respondError(c, models.NewServiceError(models.ErrWalletNotFound, "no wallet for user"))
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"user_id":    doc.UserId,
		"address":    doc.Address,
		"chain_id":   doc.ChainId,
		"created_at": doc.CreatedAt,
	})
}

func (r *Router) deleteWallet(c *gin.Context) {
	deleted, err := r.wallets.DeleteWallet(c.Param("userId"))
	if err != nil {
		respondError(c, err)
		return
	}
	if !deleted {
		respondError(c, models.NewServiceError(models.ErrWalletNotFound, "no wallet for user"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
