package maintenance

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hts-life/presswatch/internal/domain/models"
)

type fakeProduction struct {
	record *models.ProductionRecord
	err    error
	calls  int
}

func (f *fakeProduction) TodayProduction(ctx context.Context, stockCode string) (*models.ProductionRecord, error) {
	f.calls++
	return f.record, f.err
}

type fakeCounterStore struct {
	counter    models.MaintenanceCounter
	addCalls   int
	lastDelta  float64
	resetCalls int
}

func (f *fakeCounterStore) GetOrCreate(ctx context.Context, stockCode string) (models.MaintenanceCounter, error) {
	return f.counter, nil
}

func (f *fakeCounterStore) AddCycles(ctx context.Context, stockCode string, delta float64) (float64, error) {
	f.addCalls++
	f.lastDelta = delta
	f.counter.CycleCount += delta
	return f.counter.CycleCount, nil
}

func (f *fakeCounterStore) Reset(ctx context.Context, stockCode string) error {
	f.resetCalls++
	f.counter.CycleCount = 0
	f.counter.LastMaintenanceAt = time.Now()
	return nil
}

type fakeNotifier struct {
	messages []string
	err      error
}

func (f *fakeNotifier) SendMessage(ctx context.Context, text string) error {
	if f.err != nil {
		return f.err
	}
	f.messages = append(f.messages, text)
	return nil
}

func newFixture(priorCount, todayQty float64) (*fakeProduction, *fakeCounterStore, *fakeNotifier, *Service) {
	production := &fakeProduction{
		record: &models.ProductionRecord{MachineType: "HP-400", StockCode: "160.0007.001", Quantity: todayQty},
	}
	counters := &fakeCounterStore{
		counter: models.MaintenanceCounter{
			StockCode:         "160.0007.001",
			CycleCount:        priorCount,
			LastMaintenanceAt: time.Date(2026, 8, 12, 9, 30, 0, 0, time.UTC),
		},
	}
	notifier := &fakeNotifier{}
	svc := NewService(production, counters, notifier, 20000, nil)
	return production, counters, notifier, svc
}

func TestCheck_AlertFiresBelowTenPercent(t *testing.T) {
	_, counters, notifier, svc := newFixture(16500, 1600)

	status, err := svc.Check(context.Background(), models.CheckRequest{TransactionID: "1187", StockCode: "160.0007.001"})
	require.NoError(t, err)
	require.NotNil(t, status)

	assert.Equal(t, 1, counters.addCalls)
	assert.Equal(t, 1600.0, counters.lastDelta)
	assert.Equal(t, 18100.0, status.TotalCycles)
	assert.Equal(t, 1900.0, status.Remaining)
	assert.InDelta(t, 9.5, status.RemainingRatio, 0.001)
	assert.True(t, status.AlertSent)

	require.Len(t, notifier.messages, 1)
	assert.Contains(t, notifier.messages[0], "18,100")
	assert.Contains(t, notifier.messages[0], "9.5")
	assert.Contains(t, notifier.messages[0], "HP-400")
	assert.Contains(t, notifier.messages[0], "160.0007.001")
}

func TestCheck_NoAlertWithAmpleCapacity(t *testing.T) {
	_, _, notifier, svc := newFixture(5000, 3000)

	status, err := svc.Check(context.Background(), models.CheckRequest{StockCode: "160.0007.001"})
	require.NoError(t, err)
	require.NotNil(t, status)

	assert.Equal(t, 8000.0, status.TotalCycles)
	assert.Equal(t, 12000.0, status.Remaining)
	assert.InDelta(t, 60.0, status.RemainingRatio, 0.001)
	assert.False(t, status.AlertSent)
	assert.Empty(t, notifier.messages)
}

func TestCheck_NegativeRemainingStillAlerts(t *testing.T) {
	_, _, notifier, svc := newFixture(19000, 5000)

	status, err := svc.Check(context.Background(), models.CheckRequest{StockCode: "160.0007.001"})
	require.NoError(t, err)
	require.NotNil(t, status)

	assert.Equal(t, 24000.0, status.TotalCycles)
	assert.Equal(t, -4000.0, status.Remaining)
	assert.InDelta(t, -20.0, status.RemainingRatio, 0.001)
	assert.True(t, status.AlertSent)

	require.Len(t, notifier.messages, 1)
	assert.Contains(t, notifier.messages[0], "-4,000")
}

func TestCheck_AlertInclusiveAtExactlyTenPercent(t *testing.T) {
	_, _, notifier, svc := newFixture(17000, 1000)

	status, err := svc.Check(context.Background(), models.CheckRequest{StockCode: "160.0007.001"})
	require.NoError(t, err)
	require.NotNil(t, status)

	assert.Equal(t, 2000.0, status.Remaining)
	assert.True(t, status.AlertSent)
	assert.Len(t, notifier.messages, 1)
}

func TestCheck_NoProductionTodayIsNoOp(t *testing.T) {
	production, counters, notifier, svc := newFixture(16500, 0)
	production.record = nil

	status, err := svc.Check(context.Background(), models.CheckRequest{StockCode: "160.0007.001"})
	require.NoError(t, err)
	assert.Nil(t, status)
	assert.Equal(t, 0, counters.addCalls)
	assert.Empty(t, notifier.messages)
}

func TestCheck_ZeroAggregateAccumulatesZero(t *testing.T) {
	_, counters, _, svc := newFixture(5000, 0)

	status, err := svc.Check(context.Background(), models.CheckRequest{StockCode: "160.0007.001"})
	require.NoError(t, err)
	require.NotNil(t, status)

	assert.Equal(t, 1, counters.addCalls)
	assert.Equal(t, 0.0, counters.lastDelta)
	assert.Equal(t, 5000.0, status.TotalCycles)
}

func TestCheck_NotifierFailureIsNonFatal(t *testing.T) {
	_, _, notifier, svc := newFixture(16500, 1600)
	notifier.err = errors.New("telegram api error: code=502")

	status, err := svc.Check(context.Background(), models.CheckRequest{StockCode: "160.0007.001"})
	require.NoError(t, err)
	require.NotNil(t, status)
	assert.False(t, status.AlertSent)
}

func TestCheck_RequestThresholdOverridesDefault(t *testing.T) {
	_, _, notifier, svc := newFixture(800, 150)

	status, err := svc.Check(context.Background(), models.CheckRequest{StockCode: "160.0007.001", Threshold: 1000})
	require.NoError(t, err)
	require.NotNil(t, status)

	assert.Equal(t, 1000.0, status.Threshold)
	assert.Equal(t, 50.0, status.Remaining)
	assert.True(t, status.AlertSent)
	assert.Len(t, notifier.messages, 1)
}

func TestCheck_ProductionErrorPropagates(t *testing.T) {
	production, counters, _, svc := newFixture(0, 0)
	production.err = errors.New("connection refused")

	status, err := svc.Check(context.Background(), models.CheckRequest{StockCode: "160.0007.001"})
	require.Error(t, err)
	assert.Nil(t, status)
	assert.Equal(t, 0, counters.addCalls)
}

func TestCheck_EmptyStockCodeRejected(t *testing.T) {
	_, _, _, svc := newFixture(0, 0)

	_, err := svc.Check(context.Background(), models.CheckRequest{})
	assert.ErrorIs(t, err, ErrEmptyStockCode)
}

func TestReset_DelegatesToStore(t *testing.T) {
	_, counters, _, svc := newFixture(12345, 0)

	require.NoError(t, svc.Reset(context.Background(), "160.0007.001"))
	assert.Equal(t, 1, counters.resetCalls)
	assert.Equal(t, 0.0, counters.counter.CycleCount)

	assert.ErrorIs(t, svc.Reset(context.Background(), ""), ErrEmptyStockCode)
}
