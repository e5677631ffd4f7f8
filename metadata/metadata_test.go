package metadata

import (
	"strings"
	"testing"
	"time"

	"github.com/artledger/certmint/models"
	"github.com/stretchr/testify/assert"
)

func TestBuildCertificateMetadata(t *testing.T) {
	meta := BuildCertificateMetadata(CertificateParams{
		Title:       "Sunset Over Tokyo",
		Description: "A photograph",
		ContentHash: strings.Repeat("a", 64),
		Category:    "image",
		CreatorName: "Aki",
		WorkId:      "work-1",
	})

	assert.Equal(t, models.MetadataKindCertificate, meta.Kind)
	assert.Equal(t, "Sunset Over Tokyo", meta.Title)
	assert.Equal(t, strings.Repeat("a", 64), meta.ContentHash)
	assert.Equal(t, "image", meta.Category)

	createdAt, err := time.Parse(time.RFC3339, meta.CreatedAt)
	assert.Nil(t, err)
	assert.WithinDuration(t, time.Now(), createdAt, time.Minute)
}

func TestBuildLicenseMetadata(t *testing.T) {
	meta := BuildLicenseMetadata(LicenseParams{
		LicenseType:    "commercial_event",
		WorkTitle:      "Sunset Over Tokyo",
		CreatorName:    "Aki",
		Terms:          "single event use",
		ExpiryDate:     "2027-01-31",
		UsageLimit:     5,
		PurchaseAmount: "120.00",
		OrderId:        "order-9",
	})

	assert.Equal(t, models.MetadataKindLicense, meta.Kind)
	assert.Equal(t, "commercial_event", meta.LicenseType)
	assert.Equal(t, int64(5), meta.UsageLimit)
	assert.Equal(t, "order-9", meta.OrderId)

	_, err := time.Parse(time.RFC3339, meta.CreatedAt)
	assert.Nil(t, err)
}

func TestEncodeDecodeCertificateMetadata(t *testing.T) {
	meta := BuildCertificateMetadata(CertificateParams{
		Title:       "Sunset Over Tokyo",
		ContentHash: strings.Repeat("b", 64),
		Category:    "image",
		CreatorName: "Aki",
	})

	payload, err := EncodeCertificateMetadata(meta)
	assert.Nil(t, err)
	assert.Contains(t, payload, models.MetadataKindCertificate)

	decoded, ok := DecodeCertificateMetadata(payload)
	assert.True(t, ok)
	assert.Equal(t, meta, decoded)
}

func TestDecodeCertificateMetadataRejectsOtherKinds(t *testing.T) {
	t.Run("License Payload", func(t *testing.T) {
		licenseMeta := BuildLicenseMetadata(LicenseParams{LicenseType: "personal", OrderId: "order-1"})
		payload, err := EncodeLicenseMetadata(licenseMeta)
		assert.Nil(t, err)

		_, ok := DecodeCertificateMetadata(payload)
		assert.False(t, ok)
	})

	t.Run("Not JSON", func(t *testing.T) {
		_, ok := DecodeCertificateMetadata("ipfs://not-a-document")
		assert.False(t, ok)
	})
}
