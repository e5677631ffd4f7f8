package mint

import (
	"context"
	"errors"
	"testing"

	"github.com/artledger/certmint/eth"
	"github.com/artledger/certmint/mocks"
	"github.com/artledger/certmint/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

const (
	testBuyerId = "buyer-1"
	testOrderId = "order-9"
)

func testLicenseRequest() LicenseRequest {
	return LicenseRequest{
		BuyerUserId:    testBuyerId,
		OrderId:        testOrderId,
		WorkId:         testWorkId,
		LicenseType:    "commercial_event",
		WorkTitle:      "Sunset Over Tokyo",
		CreatorName:    "Aki",
		Terms:          "single event use",
		ExpiryDate:     "2027-01-31",
		UsageLimit:     5,
		PurchaseAmount: "120.00",
	}
}

func expectNoConfirmedLicense(mockDB *mocks.MockDatabase) {
	mockDB.On("FindOne", models.CollectionLicenses,
		bson.M{"order_id": testOrderId, "minting_status": models.MintingStatusConfirmed}, mock.Anything).
		Return(mongo.ErrNoDocuments)
}

func expectBuyerWallet(mockDB *mocks.MockDatabase) {
	mockDB.On("FindOne", models.CollectionCustodialWallets,
		bson.M{"user_id": testBuyerId, "chain_id": testChainId}, mock.Anything).
		Run(func(args mock.Arguments) {
			doc := args.Get(2).(*models.CustodialWallet)
			doc.UserId = testBuyerId
			doc.Address = testAddress
		}).Return(nil)
}

func TestMintLicense(t *testing.T) {
	t.Run("No Error", func(t *testing.T) {
		mockDB := &mocks.MockDatabase{}
		mockMinter := &mocks.MockMinter{}
		service := testService(mockDB, mockMinter)

		expectNoConfirmedLicense(mockDB)
		expectBuyerWallet(mockDB)
		expectLock(mockDB, "mint:order:"+testOrderId)

		mockMinter.On("Mint", mock.Anything, mock.MatchedBy(func(params eth.MintParams) bool {
			return params.TokenKind == models.TransactionTypeLicense && params.Recipient == testAddress
		})).Return(testMintResult(), nil)

		var inserted models.License
		mockDB.On("InsertOne", models.CollectionLicenses, mock.Anything).
			Run(func(args mock.Arguments) {
				inserted = args.Get(1).(models.License)
			}).Return(nil)

		resp, err := service.MintLicense(context.Background(), testLicenseRequest())
		assert.Nil(t, err)
		assert.Equal(t, "42", resp.TokenId)
		assert.Equal(t, models.MintingStatusConfirmed, resp.Status)
		assert.NotEmpty(t, resp.LicenseId)

		assert.Equal(t, testOrderId, inserted.OrderId)
		assert.Equal(t, testBuyerId, inserted.BuyerUserId)
		assert.Equal(t, "commercial_event", inserted.Metadata.LicenseType)
		assert.Equal(t, models.MintingStatusConfirmed, inserted.MintingStatus)
	})

	t.Run("Validation Failures", func(t *testing.T) {
		mockDB := &mocks.MockDatabase{}
		mockMinter := &mocks.MockMinter{}
		service := testService(mockDB, mockMinter)

		missing := testLicenseRequest()
		missing.OrderId = ""
		_, err := service.MintLicense(context.Background(), missing)
		svcErr := assertCode(t, err, models.ErrMissingFields)
		assert.Contains(t, svcErr.Message, "order_id")

		badType := testLicenseRequest()
		badType.LicenseType = "gold"
		_, err = service.MintLicense(context.Background(), badType)
		assertCode(t, err, models.ErrInvalidLicenseType)

		badDate := testLicenseRequest()
		badDate.ExpiryDate = "31/01/2027"
		_, err = service.MintLicense(context.Background(), badDate)
		assertCode(t, err, models.ErrInvalidDateFormat)

		badLimit := testLicenseRequest()
		badLimit.UsageLimit = -1
		_, err = service.MintLicense(context.Background(), badLimit)
		assertCode(t, err, models.ErrInvalidUsageLimit)

		badPayment := testLicenseRequest()
		badPayment.PaymentTransaction = "not-a-hash"
		_, err = service.MintLicense(context.Background(), badPayment)
		assertCode(t, err, models.ErrInvalidInput)

		mockMinter.AssertNotCalled(t, "Mint", mock.Anything, mock.Anything)
	})

	t.Run("Already Exists For Order", func(t *testing.T) {
		mockDB := &mocks.MockDatabase{}
		mockMinter := &mocks.MockMinter{}
		service := testService(mockDB, mockMinter)

		mockDB.On("FindOne", models.CollectionLicenses,
			bson.M{"order_id": testOrderId, "minting_status": models.MintingStatusConfirmed}, mock.Anything).
			Run(func(args mock.Arguments) {
				doc := args.Get(2).(*models.License)
				doc.LicenseId = "existing-license"
				doc.TokenId = "7"
				doc.TransactionHash = testTxHash
			}).Return(nil)

		_, err := service.MintLicense(context.Background(), testLicenseRequest())
		svcErr := assertCode(t, err, models.ErrAlreadyExists)
		assert.Equal(t, "existing-license", svcErr.Existing["license_id"])
		mockMinter.AssertNotCalled(t, "Mint", mock.Anything, mock.Anything)
	})

	t.Run("Mint Failure Is Captured For Retry", func(t *testing.T) {
		mockDB := &mocks.MockDatabase{}
		mockMinter := &mocks.MockMinter{}
		service := testService(mockDB, mockMinter)

		expectNoConfirmedLicense(mockDB)
		expectBuyerWallet(mockDB)
		expectLock(mockDB, "mint:order:"+testOrderId)
		mockMinter.On("Mint", mock.Anything, mock.Anything).
			Return(nil, models.NewServiceError(models.ErrConfirmationTimeout, "timed out"))

		mockDB.On("InsertOne", models.CollectionLicenses, mock.Anything).Return(nil)

		var failedTx models.FailedTransaction
		mockDB.On("InsertOne", models.CollectionFailedTransactions, mock.Anything).
			Run(func(args mock.Arguments) {
				failedTx = args.Get(1).(models.FailedTransaction)
			}).Return(nil)

		_, err := service.MintLicense(context.Background(), testLicenseRequest())
		assertCode(t, err, models.ErrMintingFailed)

		assert.Equal(t, models.TransactionTypeLicense, failedTx.TransactionType)
		assert.Equal(t, models.ErrConfirmationTimeout, failedTx.ErrorCode)
		assert.Equal(t, testOrderId, failedTx.Payload["order_id"])
		assert.Equal(t, "5", failedTx.Payload["usage_limit"])

		// the payload must replay to an identical request
		assert.Equal(t, testLicenseRequest(), licenseRequestFromPayload(failedTx.Payload))
	})

	t.Run("Persistence Failure After Confirmed Mint", func(t *testing.T) {
		mockDB := &mocks.MockDatabase{}
		mockMinter := &mocks.MockMinter{}
		service := testService(mockDB, mockMinter)

		expectNoConfirmedLicense(mockDB)
		expectBuyerWallet(mockDB)
		expectLock(mockDB, "mint:order:"+testOrderId)
		mockMinter.On("Mint", mock.Anything, mock.Anything).Return(testMintResult(), nil)
		mockDB.On("InsertOne", models.CollectionLicenses, mock.Anything).
			Return(errors.New("connection reset"))

		resp, err := service.MintLicense(context.Background(), testLicenseRequest())
		assert.Nil(t, err)
		assert.Equal(t, WarningPersistenceFailed, resp.Warning)
		assert.Equal(t, "42", resp.TokenId)
	})
}
