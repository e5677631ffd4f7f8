package mint

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/artledger/certmint/common"
	"github.com/artledger/certmint/eth"
	"github.com/artledger/certmint/mocks"
	"github.com/artledger/certmint/models"
	"github.com/artledger/certmint/wallet"
	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

func init() {
	log.SetOutput(io.Discard)
}

const (
	testChainId     = "80002"
	testUserId      = "user-1"
	testWorkId      = "c3a5d1be-6a86-4c9d-9a53-1f63616f9d6e"
	testAddress     = "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"
	testTxHash      = "0x" + "ab" + "cdef0123456789abcdef0123456789abcdef0123456789abcdef0123456789"
	testExplorerURL = "https://amoy.polygonscan.com"
)

func testService(mockDB *mocks.MockDatabase, mockMinter *mocks.MockMinter) *Service {
	wallets := wallet.NewStore(mockDB, common.NewVault("test-secret"), testChainId)
	return NewService(mockDB, wallets, mockMinter, testExplorerURL)
}

func testCertificateRequest() CertificateRequest {
	return CertificateRequest{
		UserId:      testUserId,
		WorkId:      testWorkId,
		Title:       "Sunset Over Tokyo",
		Description: "A photograph",
		ContentHash: strings.Repeat("a", 64),
		Category:    "image",
		CreatorName: "Aki",
	}
}

func testMintResult() *models.MintResult {
	return &models.MintResult{
		TokenId:         "42",
		TransactionHash: testTxHash,
		BlockNumber:     123456,
		GasUsed:         21000,
		Status:          models.MintingStatusConfirmed,
	}
}

func expectNoConfirmedCertificate(mockDB *mocks.MockDatabase) {
	mockDB.On("FindOne", models.CollectionCertificates,
		bson.M{"work_id": testWorkId, "minting_status": models.MintingStatusConfirmed}, mock.Anything).
		Return(mongo.ErrNoDocuments)
}

func expectWallet(mockDB *mocks.MockDatabase) {
	mockDB.On("FindOne", models.CollectionCustodialWallets,
		bson.M{"user_id": testUserId, "chain_id": testChainId}, mock.Anything).
		Run(func(args mock.Arguments) {
			doc := args.Get(2).(*models.CustodialWallet)
			doc.UserId = testUserId
			doc.Address = testAddress
		}).Return(nil)
}

func expectLock(mockDB *mocks.MockDatabase, resource string) {
	mockDB.On("XLock", resource).Return("lock-1", nil)
	mockDB.On("Unlock", "lock-1").Return(nil)
}

func duplicateKeyError() error {
	return mongo.WriteException{WriteErrors: []mongo.WriteError{{Code: 11000}}}
}

func assertCode(t *testing.T, err error, code string) *models.ServiceError {
	t.Helper()
	assert.NotNil(t, err)
	var svcErr *models.ServiceError
	assert.True(t, errors.As(err, &svcErr))
	assert.Equal(t, code, svcErr.Code)
	return svcErr
}

func TestMintCertificate(t *testing.T) {
	t.Run("No Error", func(t *testing.T) {
		mockDB := &mocks.MockDatabase{}
		mockMinter := &mocks.MockMinter{}
		service := testService(mockDB, mockMinter)

		expectNoConfirmedCertificate(mockDB)
		expectWallet(mockDB)
		expectLock(mockDB, "mint:work:"+testWorkId)

		mockMinter.On("Mint", mock.Anything, mock.MatchedBy(func(params eth.MintParams) bool {
			return params.TokenKind == models.TransactionTypeCertificate &&
				params.Recipient == testAddress &&
				strings.Contains(params.MetadataURI, strings.Repeat("a", 64))
		})).Return(testMintResult(), nil)

		var inserted models.CopyrightCertificate
		mockDB.On("InsertOne", models.CollectionCertificates, mock.Anything).
			Run(func(args mock.Arguments) {
				inserted = args.Get(1).(models.CopyrightCertificate)
			}).Return(nil)

		resp, err := service.MintCertificate(context.Background(), testCertificateRequest())
		assert.Nil(t, err)
		assert.Equal(t, "42", resp.TokenId)
		assert.Equal(t, testTxHash, resp.TransactionHash)
		assert.Equal(t, testExplorerURL+"/tx/"+testTxHash, resp.ExplorerURL)
		assert.Equal(t, models.MintingStatusConfirmed, resp.Status)
		assert.Empty(t, resp.Warning)
		assert.NotEmpty(t, resp.CertificateId)

		assert.Equal(t, models.MintingStatusConfirmed, inserted.MintingStatus)
		assert.Equal(t, testWorkId, inserted.WorkId)
		assert.Equal(t, testAddress, inserted.RecipientAddress)
		assert.Equal(t, "42", inserted.TokenId)
		mockDB.AssertExpectations(t)
		mockMinter.AssertExpectations(t)
	})

	t.Run("Validation Failures", func(t *testing.T) {
		mockDB := &mocks.MockDatabase{}
		mockMinter := &mocks.MockMinter{}
		service := testService(mockDB, mockMinter)

		missing := testCertificateRequest()
		missing.Title = ""
		missing.CreatorName = ""
		_, err := service.MintCertificate(context.Background(), missing)
		svcErr := assertCode(t, err, models.ErrMissingFields)
		assert.Contains(t, svcErr.Message, "title")
		assert.Contains(t, svcErr.Message, "creator_name")

		badHash := testCertificateRequest()
		badHash.ContentHash = strings.Repeat("a", 63)
		_, err = service.MintCertificate(context.Background(), badHash)
		assertCode(t, err, models.ErrInvalidHashFormat)

		badCategory := testCertificateRequest()
		badCategory.Category = "gold"
		_, err = service.MintCertificate(context.Background(), badCategory)
		assertCode(t, err, models.ErrInvalidCategory)

		mockMinter.AssertNotCalled(t, "Mint", mock.Anything, mock.Anything)
		mockDB.AssertNotCalled(t, "FindOne", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Already Exists Short Circuits Before Chain", func(t *testing.T) {
		mockDB := &mocks.MockDatabase{}
		mockMinter := &mocks.MockMinter{}
		service := testService(mockDB, mockMinter)

		mockDB.On("FindOne", models.CollectionCertificates,
			bson.M{"work_id": testWorkId, "minting_status": models.MintingStatusConfirmed}, mock.Anything).
			Run(func(args mock.Arguments) {
				doc := args.Get(2).(*models.CopyrightCertificate)
				doc.CertificateId = "existing-cert"
				doc.TokenId = "7"
				doc.TransactionHash = testTxHash
			}).Return(nil)

		_, err := service.MintCertificate(context.Background(), testCertificateRequest())
		svcErr := assertCode(t, err, models.ErrAlreadyExists)
		assert.Equal(t, "existing-cert", svcErr.Existing["certificate_id"])
		assert.Equal(t, "7", svcErr.Existing["token_id"])
		assert.Equal(t, testTxHash, svcErr.Existing["transaction_hash"])

		// zero chain interactions on the idempotent path
		mockMinter.AssertNotCalled(t, "Mint", mock.Anything, mock.Anything)
		mockDB.AssertNotCalled(t, "InsertOne", mock.Anything, mock.Anything)
	})

	t.Run("Wallet Not Found", func(t *testing.T) {
		mockDB := &mocks.MockDatabase{}
		mockMinter := &mocks.MockMinter{}
		service := testService(mockDB, mockMinter)

		expectNoConfirmedCertificate(mockDB)
		mockDB.On("FindOne", models.CollectionCustodialWallets,
			bson.M{"user_id": testUserId, "chain_id": testChainId}, mock.Anything).
			Return(mongo.ErrNoDocuments)

		_, err := service.MintCertificate(context.Background(), testCertificateRequest())
		assertCode(t, err, models.ErrWalletNotFound)
		mockMinter.AssertNotCalled(t, "Mint", mock.Anything, mock.Anything)
	})

	t.Run("Mint Failure Is Captured For Retry", func(t *testing.T) {
		mockDB := &mocks.MockDatabase{}
		mockMinter := &mocks.MockMinter{}
		service := testService(mockDB, mockMinter)

		expectNoConfirmedCertificate(mockDB)
		expectWallet(mockDB)
		expectLock(mockDB, "mint:work:"+testWorkId)

		mockMinter.On("Mint", mock.Anything, mock.Anything).
			Return(nil, models.NewServiceError(models.ErrBroadcastFailed, "rpc unreachable"))

		var failedCert models.CopyrightCertificate
		mockDB.On("InsertOne", models.CollectionCertificates, mock.Anything).
			Run(func(args mock.Arguments) {
				failedCert = args.Get(1).(models.CopyrightCertificate)
			}).Return(nil)

		var failedTx models.FailedTransaction
		mockDB.On("InsertOne", models.CollectionFailedTransactions, mock.Anything).
			Run(func(args mock.Arguments) {
				failedTx = args.Get(1).(models.FailedTransaction)
			}).Return(nil)

		_, err := service.MintCertificate(context.Background(), testCertificateRequest())
		svcErr := assertCode(t, err, models.ErrMintingFailed)
		assert.Equal(t, failedTx.TransactionId, svcErr.Existing["failed_transaction_id"])

		assert.Equal(t, models.MintingStatusFailed, failedCert.MintingStatus)
		assert.Contains(t, failedCert.Error, models.ErrBroadcastFailed)

		assert.Equal(t, models.RetryStatusPending, failedTx.Status)
		assert.Equal(t, models.TransactionTypeCertificate, failedTx.TransactionType)
		assert.Equal(t, models.ErrBroadcastFailed, failedTx.ErrorCode)
		assert.Equal(t, testWorkId, failedTx.Payload["work_id"])
		assert.Equal(t, strings.Repeat("a", 64), failedTx.Payload["content_hash"])
	})

	t.Run("Persistence Failure After Confirmed Mint", func(t *testing.T) {
		mockDB := &mocks.MockDatabase{}
		mockMinter := &mocks.MockMinter{}
		service := testService(mockDB, mockMinter)

		expectNoConfirmedCertificate(mockDB)
		expectWallet(mockDB)
		expectLock(mockDB, "mint:work:"+testWorkId)
		mockMinter.On("Mint", mock.Anything, mock.Anything).Return(testMintResult(), nil)
		mockDB.On("InsertOne", models.CollectionCertificates, mock.Anything).
			Return(errors.New("connection reset"))

		resp, err := service.MintCertificate(context.Background(), testCertificateRequest())

		// chain truth wins: the mint happened, so this is a success with
		// a warning, not an error
		assert.Nil(t, err)
		assert.Equal(t, WarningPersistenceFailed, resp.Warning)
		assert.Equal(t, "42", resp.TokenId)
		assert.Equal(t, testTxHash, resp.TransactionHash)
		assert.NotNil(t, resp.MintResult)
	})

	t.Run("Duplicate Record On Insert", func(t *testing.T) {
		mockDB := &mocks.MockDatabase{}
		mockMinter := &mocks.MockMinter{}
		service := testService(mockDB, mockMinter)

		expectNoConfirmedCertificate(mockDB)
		expectWallet(mockDB)
		expectLock(mockDB, "mint:work:"+testWorkId)
		mockMinter.On("Mint", mock.Anything, mock.Anything).Return(testMintResult(), nil)
		mockDB.On("InsertOne", models.CollectionCertificates, mock.Anything).
			Return(duplicateKeyError())

		_, err := service.MintCertificate(context.Background(), testCertificateRequest())
		svcErr := assertCode(t, err, models.ErrDuplicateRecord)
		assert.Equal(t, "42", svcErr.Existing["token_id"])
		assert.Equal(t, testTxHash, svcErr.Existing["transaction_hash"])
	})

	t.Run("No Work Id Skips Idempotency Check And Lock", func(t *testing.T) {
		mockDB := &mocks.MockDatabase{}
		mockMinter := &mocks.MockMinter{}
		service := testService(mockDB, mockMinter)

		expectWallet(mockDB)
		mockMinter.On("Mint", mock.Anything, mock.Anything).Return(testMintResult(), nil)
		mockDB.On("InsertOne", models.CollectionCertificates, mock.Anything).Return(nil)

		req := testCertificateRequest()
		req.WorkId = ""
		resp, err := service.MintCertificate(context.Background(), req)
		assert.Nil(t, err)
		assert.Equal(t, "42", resp.TokenId)
		mockDB.AssertNotCalled(t, "XLock", mock.Anything)
		mockDB.AssertNotCalled(t, "FindOne", models.CollectionCertificates, mock.Anything, mock.Anything)
	})

	t.Run("Lock Failure Is Not Fatal", func(t *testing.T) {
		mockDB := &mocks.MockDatabase{}
		mockMinter := &mocks.MockMinter{}
		service := testService(mockDB, mockMinter)

		expectNoConfirmedCertificate(mockDB)
		expectWallet(mockDB)
		mockDB.On("XLock", "mint:work:"+testWorkId).Return("", errors.New("already locked"))
		mockMinter.On("Mint", mock.Anything, mock.Anything).Return(testMintResult(), nil)
		mockDB.On("InsertOne", models.CollectionCertificates, mock.Anything).Return(nil)

		resp, err := service.MintCertificate(context.Background(), testCertificateRequest())
		assert.Nil(t, err)
		assert.Equal(t, "42", resp.TokenId)
		mockDB.AssertNotCalled(t, "Unlock", mock.Anything)
	})
}
