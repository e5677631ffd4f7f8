// Package metadata builds the descriptive payloads serialized into on-chain
// tokens. Builders are pure formatters; callers validate inputs with the
// exported validators before constructing.
package metadata

import (
	"encoding/json"
	"time"

	"github.com/artledger/certmint/models"
)

type CertificateParams struct {
	Title       string
	Description string
	ContentHash string
	Category    string
	CreatorName string
	WorkId      string
}

type LicenseParams struct {
	LicenseType    string
	WorkTitle      string
	CreatorName    string
	Terms          string
	ExpiryDate     string
	UsageLimit     int64
	PurchaseAmount string
	OrderId        string
}

// BuildCertificateMetadata assumes ContentHash and Category have already
// been validated.
func BuildCertificateMetadata(params CertificateParams) models.CertificateMetadata {
	return models.CertificateMetadata{
		Kind:        models.MetadataKindCertificate,
		Title:       params.Title,
		Description: params.Description,
		ContentHash: params.ContentHash,
		Category:    params.Category,
		CreatorName: params.CreatorName,
		WorkId:      params.WorkId,
		CreatedAt:   time.Now().UTC().Format(time.RFC3339),
	}
}

// BuildLicenseMetadata assumes LicenseType has already been validated.
// License metadata carries no content hash; authenticity relies on the
// purchase record.
func BuildLicenseMetadata(params LicenseParams) models.LicenseMetadata {
	return models.LicenseMetadata{
		Kind:           models.MetadataKindLicense,
		LicenseType:    params.LicenseType,
		WorkTitle:      params.WorkTitle,
		CreatorName:    params.CreatorName,
		Terms:          params.Terms,
		ExpiryDate:     params.ExpiryDate,
		UsageLimit:     params.UsageLimit,
		PurchaseAmount: params.PurchaseAmount,
		OrderId:        params.OrderId,
		CreatedAt:      time.Now().UTC().Format(time.RFC3339),
	}
}

// EncodeCertificateMetadata serializes metadata for the chain and for
// persistence-boundary comparison.
func EncodeCertificateMetadata(meta models.CertificateMetadata) (string, error) {
	data, err := json.Marshal(meta)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func EncodeLicenseMetadata(meta models.LicenseMetadata) (string, error) {
	data, err := json.Marshal(meta)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// DecodeCertificateMetadata parses a metadata payload read back from the
// chain. Returns false when the payload is not a certificate document.
func DecodeCertificateMetadata(payload string) (models.CertificateMetadata, bool) {
	var meta models.CertificateMetadata
	if err := json.Unmarshal([]byte(payload), &meta); err != nil {
		return models.CertificateMetadata{}, false
	}
	return meta, meta.Kind == models.MetadataKindCertificate
}
