package models

import "fmt"

// Stable machine-readable error codes; calling UIs branch on these.
const (
	// validation
	ErrMissingFields      = "MISSING_FIELDS"
	ErrInvalidHashFormat  = "INVALID_HASH_FORMAT"
	ErrInvalidCategory    = "INVALID_CATEGORY"
	ErrInvalidLicenseType = "INVALID_LICENSE_TYPE"
	ErrInvalidDateFormat  = "INVALID_DATE_FORMAT"
	ErrInvalidUsageLimit  = "INVALID_USAGE_LIMIT"
	ErrInvalidInput       = "INVALID_INPUT"

	// not found
	ErrWalletNotFound = "WALLET_NOT_FOUND"
	ErrRecordNotFound = "RECORD_NOT_FOUND"

	// conflicts
	ErrAlreadyExists       = "ALREADY_EXISTS"
	ErrDuplicateRecord     = "DUPLICATE_RECORD"
	ErrAlreadyResolved     = "ALREADY_RESOLVED"
	ErrAbandoned           = "ABANDONED"
	ErrRetryInProgress     = "RETRY_IN_PROGRESS"
	ErrWalletAlreadyExists = "WALLET_ALREADY_EXISTS"

	// integrity
	ErrIntegrityViolation  = "INTEGRITY_VIOLATION"
	ErrMalformedCipherText = "MALFORMED_CIPHERTEXT"
	ErrDecryptionFailed    = "DECRYPTION_FAILED"

	// chain
	ErrBroadcastFailed     = "BROADCAST_FAILED"
	ErrTransactionReverted = "TRANSACTION_REVERTED"
	ErrConfirmationTimeout = "CONFIRMATION_TIMEOUT"
	ErrMintingFailed       = "MINTING_FAILED"

	// store
	ErrStoreUnavailable = "STORE_UNAVAILABLE"
	ErrInternalError    = "INTERNAL_ERROR"
)

// ServiceError is the error type surfaced across component boundaries. It
// carries a stable code, a human-readable message, and for conflict errors
// enough of the existing record for the caller to recover without a
// re-query.
type ServiceError struct {
	Code    string
	Message string
	// Existing carries key fields of a conflicting record, such as
	// token_id and transaction_hash for ALREADY_EXISTS.
	Existing map[string]string
	Err      error
}

func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %s", e.Code, e.Message, e.Err.Error())
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

func NewServiceError(code string, message string) *ServiceError {
	return &ServiceError{Code: code, Message: message}
}

func WrapServiceError(code string, message string, err error) *ServiceError {
	return &ServiceError{Code: code, Message: message, Err: err}
}
