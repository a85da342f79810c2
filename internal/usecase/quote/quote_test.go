package quote

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	marketv1 "github.com/quantick/barpipe/internal/domain/market/v1"
	quotecache "github.com/quantick/barpipe/internal/infrastructure/redis/quote"
	"github.com/quantick/barpipe/pkg/logger"
	redis_mock "github.com/quantick/barpipe/pkg/redis/mock"
)

func newTestLogger(t *testing.T) logger.Interface {
	t.Helper()
	log, err := logger.NewLogger(logger.WithLoggingLevel(logger.ErrorLevel))
	require.NoError(t, err)
	return log
}

func TestUsecase_RecordSwallowsCacheFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	client := redis_mock.NewMockClient(ctrl)
	client.EXPECT().Set(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(errors.New("connection refused"))

	uc := NewUsecase(quotecache.NewCache(client, 0), newTestLogger(t))

	// The tick path must stay hot: a cache outage is logged, not surfaced.
	err := uc.Record(context.Background(), marketv1.Tick{Symbol: "RELIANCE", Price: 2950})
	assert.NoError(t, err)
}

func TestUsecase_GetLatest(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	tick := marketv1.Tick{
		Symbol:    "RELIANCE",
		Timestamp: time.Date(2024, 6, 3, 10, 0, 5, 0, time.UTC),
		Price:     2950.5,
	}
	payload, err := json.Marshal(tick)
	require.NoError(t, err)

	client := redis_mock.NewMockClient(ctrl)
	client.EXPECT().Get(gomock.Any(), "quote:latest:RELIANCE").Return(string(payload), nil)

	uc := NewUsecase(quotecache.NewCache(client, 0), newTestLogger(t))

	got, err := uc.GetLatest(context.Background(), "RELIANCE")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, tick.Price, got.Price)
}
