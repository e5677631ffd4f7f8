package models

// work categories accepted for copyright certificates
const (
	CategoryImage    = "image"
	CategoryMusic    = "music"
	CategoryVideo    = "video"
	CategoryDocument = "document"
	CategoryDesign   = "design"
	CategoryOther    = "other"
)

// license types offered by the marketplace
const (
	LicenseTypePersonal        = "personal"
	LicenseTypeCommercialEvent = "commercial_event"
	LicenseTypeBroadcastOneYr  = "broadcast_1year"
	LicenseTypeExclusive       = "exclusive"
)

var WorkCategories = []string{
	CategoryImage,
	CategoryMusic,
	CategoryVideo,
	CategoryDocument,
	CategoryDesign,
	CategoryOther,
}

var LicenseTypes = []string{
	LicenseTypePersonal,
	LicenseTypeCommercialEvent,
	LicenseTypeBroadcastOneYr,
	LicenseTypeExclusive,
}

// CertificateMetadata is the payload serialized verbatim into an on-chain
// copyright token. Immutable once built; also persisted for later
// cross-checking against chain state.
type CertificateMetadata struct {
	Kind        string `bson:"kind" json:"kind"`
	Title       string `bson:"title" json:"title"`
	Description string `bson:"description" json:"description"`
	ContentHash string `bson:"content_hash" json:"content_hash"`
	Category    string `bson:"category" json:"category"`
	CreatorName string `bson:"creator_name" json:"creator_name"`
	WorkId      string `bson:"work_id,omitempty" json:"work_id,omitempty"`
	CreatedAt   string `bson:"created_at" json:"created_at"`
}

// LicenseMetadata is the payload serialized into an on-chain license token.
// There is no content hash; authenticity relies on the purchase record.
type LicenseMetadata struct {
	Kind           string `bson:"kind" json:"kind"`
	LicenseType    string `bson:"license_type" json:"license_type"`
	WorkTitle      string `bson:"work_title" json:"work_title"`
	CreatorName    string `bson:"creator_name" json:"creator_name"`
	Terms          string `bson:"terms" json:"terms"`
	ExpiryDate     string `bson:"expiry_date,omitempty" json:"expiry_date,omitempty"`
	UsageLimit     int64  `bson:"usage_limit,omitempty" json:"usage_limit,omitempty"`
	PurchaseAmount string `bson:"purchase_amount" json:"purchase_amount"`
	OrderId        string `bson:"order_id" json:"order_id"`
	CreatedAt      string `bson:"created_at" json:"created_at"`
}

const (
	MetadataKindCertificate = "copyright_certificate"
	MetadataKindLicense     = "usage_license"
)
