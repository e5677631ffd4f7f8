package health

import (
	"errors"
	"io"
	"os"
	"testing"
	"time"

	"github.com/artledger/certmint/mocks"
	"github.com/artledger/certmint/models"
	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson"
)

func init() {
	log.SetOutput(io.Discard)
}

const (
	testMinterAddress = "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"
	testChainId       = "80002"
)

func testReporter(mockDB *mocks.MockDatabase) *Reporter {
	return NewReporter(mockDB, testMinterAddress, testChainId, time.Minute, nil)
}

func TestPostHealth(t *testing.T) {
	hostname, _ := os.Hostname()

	t.Run("No Error", func(t *testing.T) {
		mockDB := &mocks.MockDatabase{}
		reporter := testReporter(mockDB)

		var update bson.M
		mockDB.On("UpsertOne", models.CollectionHealthChecks,
			bson.M{"hostname": hostname}, mock.Anything).
			Run(func(args mock.Arguments) {
				update = args.Get(2).(bson.M)
			}).Return(nil)

		assert.True(t, reporter.PostHealth())

		set := update["$set"].(bson.M)
		assert.Equal(t, hostname, set["hostname"])
		assert.Equal(t, testMinterAddress, set["minter_address"])
		assert.Equal(t, testChainId, set["chain_id"])
		assert.Equal(t, true, set["healthy"])
	})

	t.Run("With Error", func(t *testing.T) {
		mockDB := &mocks.MockDatabase{}
		reporter := testReporter(mockDB)

		mockDB.On("UpsertOne", models.CollectionHealthChecks, mock.Anything, mock.Anything).
			Return(errors.New("connection reset"))

		assert.False(t, reporter.PostHealth())
	})
}

func TestSnapshot(t *testing.T) {
	mockDB := &mocks.MockDatabase{}
	reporter := testReporter(mockDB)

	snapshot := reporter.Snapshot()
	assert.True(t, snapshot.Healthy)
	assert.Equal(t, testMinterAddress, snapshot.MinterAddress)
	assert.Equal(t, testChainId, snapshot.ChainId)
	assert.True(t, snapshot.UpdatedAt.IsZero())

	mockDB.On("UpsertOne", models.CollectionHealthChecks, mock.Anything, mock.Anything).Return(nil)
	assert.True(t, reporter.PostHealth())

	snapshot = reporter.Snapshot()
	assert.False(t, snapshot.UpdatedAt.IsZero())
}
