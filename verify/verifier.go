// Package verify cross-checks persisted mint records against live chain
// state. It is read-only on both sides and runs independently of the mint
// pipeline.
package verify

import (
	"context"
	"fmt"

	"github.com/artledger/certmint/app"
	"github.com/artledger/certmint/eth"
	"github.com/artledger/certmint/metadata"
	"github.com/artledger/certmint/models"
	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
)

// identifier types accepted by Verify
const (
	IdentifierTransactionHash = "transaction_hash"
	IdentifierTokenId         = "token_id"
	IdentifierContentHash     = "content_hash"
	IdentifierRecordId        = "record_id"
)

// verdicts, ordered strongest-claim first
const (
	VerdictAuthentic    = "authentic"
	VerdictTransferred  = "transferred"
	VerdictInconsistent = "inconsistent"
	VerdictInvalid      = "invalid"
)

type Result struct {
	Verified    bool                         `json:"verified"`
	Status      string                       `json:"status"`
	Issues      []string                     `json:"issues,omitempty"`
	Certificate *models.CopyrightCertificate `json:"certificate,omitempty"`
	License     *models.License              `json:"license,omitempty"`
}

type Verifier struct {
	db     app.Database
	minter eth.Minter
}

func NewVerifier(db app.Database, minter eth.Minter) *Verifier {
	return &Verifier{
		db:     db,
		minter: minter,
	}
}

func validateIdentifier(identifierType string, value string) *models.ServiceError {
	if value == "" {
		return models.NewServiceError(models.ErrInvalidInput, "identifier value is required")
	}
	ok := false
	switch identifierType {
	case IdentifierTransactionHash:
		ok = metadata.IsValidTxHash(value)
	case IdentifierTokenId:
		ok = metadata.IsValidTokenID(value)
	case IdentifierContentHash:
		ok = metadata.IsValidSHA256(value)
	case IdentifierRecordId:
		ok = metadata.IsValidRecordID(value)
	default:
		return models.NewServiceError(models.ErrInvalidInput,
			fmt.Sprintf("unknown identifier type %q", identifierType))
	}
	if !ok {
		return models.NewServiceError(models.ErrInvalidInput,
			fmt.Sprintf("malformed %s identifier", identifierType))
	}
	return nil
}

func certificateFilter(identifierType string, value string) bson.M {
	switch identifierType {
	case IdentifierTransactionHash:
		return bson.M{"transaction_hash": value}
	case IdentifierTokenId:
		return bson.M{"token_id": value}
	case IdentifierContentHash:
		return bson.M{"metadata.content_hash": value}
	default:
		return bson.M{"certificate_id": value}
	}
}

func licenseFilter(identifierType string, value string) (bson.M, bool) {
	switch identifierType {
	case IdentifierTransactionHash:
		return bson.M{"transaction_hash": value}, true
	case IdentifierTokenId:
		return bson.M{"token_id": value}, true
	case IdentifierContentHash:
		// licenses carry no content hash
		return nil, false
	default:
		return bson.M{"license_id": value}, true
	}
}

// Verify resolves the identifier to a persisted record and cross-checks it
// against the chain. Pending and failed records short-circuit with their
// recorded status; on-chain state is only consulted for confirmed mints.
func (v *Verifier) Verify(ctx context.Context, identifierType string, value string) (*Result, error) {
	if svcErr := validateIdentifier(identifierType, value); svcErr != nil {
		return nil, svcErr
	}

	var cert models.CopyrightCertificate
	err := v.db.FindOne(models.CollectionCertificates, certificateFilter(identifierType, value), &cert)
	if err == nil {
		return v.verifyCertificate(ctx, &cert)
	}
	if !app.IsNotFound(err) {
		return nil, models.WrapServiceError(models.ErrStoreUnavailable, "certificate lookup failed", err)
	}

	if filter, ok := licenseFilter(identifierType, value); ok {
		var license models.License
		err := v.db.FindOne(models.CollectionLicenses, filter, &license)
		if err == nil {
			return v.verifyLicense(ctx, &license)
		}
		if !app.IsNotFound(err) {
			return nil, models.WrapServiceError(models.ErrStoreUnavailable, "license lookup failed", err)
		}
	}

	return nil, models.NewServiceError(models.ErrRecordNotFound,
		fmt.Sprintf("no record matches %s %s", identifierType, value))
}

func (v *Verifier) verifyCertificate(ctx context.Context, cert *models.CopyrightCertificate) (*Result, error) {
	if cert.MintingStatus != models.MintingStatusConfirmed {
		return &Result{
			Verified:    false,
			Status:      cert.MintingStatus,
			Certificate: cert,
		}, nil
	}

	verdict, issues, err := v.checkOnChain(ctx, models.TransactionTypeCertificate,
		cert.TokenId, cert.RecipientAddress, cert.Metadata.ContentHash)
	if err != nil {
		return nil, err
	}
	return &Result{
		Verified:    verdict == VerdictAuthentic,
		Status:      verdict,
		Issues:      issues,
		Certificate: cert,
	}, nil
}

func (v *Verifier) verifyLicense(ctx context.Context, license *models.License) (*Result, error) {
	if license.MintingStatus != models.MintingStatusConfirmed {
		return &Result{
			Verified: false,
			Status:   license.MintingStatus,
			License:  license,
		}, nil
	}

	// licenses have no content hash to compare
	verdict, issues, err := v.checkOnChain(ctx, models.TransactionTypeLicense,
		license.TokenId, license.RecipientAddress, "")
	if err != nil {
		return nil, err
	}
	return &Result{
		Verified: verdict == VerdictAuthentic,
		Status:   verdict,
		Issues:   issues,
		License:  license,
	}, nil
}

// checkOnChain derives a verdict from live chain state. Precedence: a
// missing token is invalid, a metadata mismatch is inconsistent, an
// ownership change alone is transferred.
func (v *Verifier) checkOnChain(ctx context.Context, tokenKind string, tokenId string, expectedOwner string, expectedContentHash string) (string, []string, error) {
	issues := []string{}

	if !metadata.IsValidTokenID(tokenId) {
		// a confirmed record whose token id never resolved cannot be
		// checked against the chain
		issues = append(issues, fmt.Sprintf("recorded token id %q is not verifiable", tokenId))
		return VerdictInvalid, issues, nil
	}

	exists, err := v.minter.TokenExists(ctx, tokenKind, tokenId)
	if err != nil {
		return "", nil, models.WrapServiceError(models.ErrInternalError, "chain existence check failed", err)
	}
	if !exists {
		issues = append(issues, fmt.Sprintf("token %s does not exist on-chain", tokenId))
		return VerdictInvalid, issues, nil
	}

	ownerMatches, err := v.minter.VerifyOwnership(ctx, tokenKind, tokenId, expectedOwner)
	if err != nil {
		return "", nil, models.WrapServiceError(models.ErrInternalError, "chain ownership check failed", err)
	}
	if !ownerMatches {
		issues = append(issues, fmt.Sprintf("on-chain owner of token %s differs from recorded wallet %s", tokenId, expectedOwner))
	}

	metadataMismatch := false
	if expectedContentHash != "" {
		payload, found, err := v.minter.GetMetadata(ctx, tokenKind, tokenId)
		if err != nil {
			return "", nil, models.WrapServiceError(models.ErrInternalError, "chain metadata read failed", err)
		}
		if !found {
			metadataMismatch = true
			issues = append(issues, fmt.Sprintf("token %s has no readable on-chain metadata", tokenId))
		} else if meta, ok := metadata.DecodeCertificateMetadata(payload); !ok {
			metadataMismatch = true
			issues = append(issues, fmt.Sprintf("on-chain metadata of token %s is not a certificate document", tokenId))
		} else if meta.ContentHash != expectedContentHash {
			metadataMismatch = true
			issues = append(issues, fmt.Sprintf("on-chain content hash of token %s differs from recorded hash", tokenId))
		}
	}

	switch {
	case metadataMismatch:
		log.Warn("[VERIFY] Metadata mismatch for token ", tokenId)
		return VerdictInconsistent, issues, nil
	case !ownerMatches:
		return VerdictTransferred, issues, nil
	default:
		return VerdictAuthentic, issues, nil
	}
}
