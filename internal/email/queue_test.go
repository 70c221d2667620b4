package email

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/IAC-MUNDO-FITNESS/Mundo-Fitnees/internal/logger"
	"github.com/IAC-MUNDO-FITNESS/Mundo-Fitnees/internal/metrics"
)

func TestMain(m *testing.M) {
	logger.Init()

	code := m.Run()
	os.Exit(code)
}

type MockSender struct{ mock.Mock }

func (m *MockSender) Send(ctx context.Context, msg Message) (string, error) {
	args := m.Called(ctx, msg)
	return args.String(0), args.Error(1)
}

func testMessage() Message {
	return Message{
		To:       "ana@example.com",
		ToName:   "Ana",
		Subject:  "Bienvenido",
		HTMLBody: "<p>Hola Ana</p>",
		TextBody: "Hola Ana",
	}
}

func encodedJob(t *testing.T, msg Message) string {
	data, err := json.Marshal(Job{ID: "job-1", Message: msg, Created: time.Now().UTC()})
	require.NoError(t, err)
	return string(data)
}

func TestQueue_Send(t *testing.T) {
	db, rmock := redismock.NewClientMock()
	ctx := context.Background()

	rmock.Regexp().ExpectLPush("emails", `.*`).SetVal(1)

	id, err := NewQueue(db, nil).Send(ctx, testMessage())
	assert.NoError(t, err)
	assert.NotEmpty(t, id)
	assert.NoError(t, rmock.ExpectationsWereMet())
}

func TestQueue_SendError(t *testing.T) {
	db, rmock := redismock.NewClientMock()
	ctx := context.Background()

	rmock.Regexp().ExpectLPush("emails", `.*`).SetErr(assert.AnError)

	_, err := NewQueue(db, nil).Send(ctx, testMessage())
	assert.ErrorIs(t, err, assert.AnError)
	assert.NoError(t, rmock.ExpectationsWereMet())
}

func TestQueue_ProcessNext_Delivers(t *testing.T) {
	db, rmock := redismock.NewClientMock()
	ctx := context.Background()
	msg := testMessage()

	rmock.ExpectBRPop(2*time.Second, "emails").SetVal([]string{"emails", encodedJob(t, msg)})

	deliver := new(MockSender)
	deliver.On("Send", ctx, msg).Return("ses-123", nil)

	delivered, err := NewQueue(db, deliver).processNext(ctx)
	require.NoError(t, err)
	assert.True(t, delivered)
	deliver.AssertExpectations(t)
	assert.NoError(t, rmock.ExpectationsWereMet())
}

func TestQueue_ProcessNext_ParksFailedJob(t *testing.T) {
	db, rmock := redismock.NewClientMock()
	ctx := context.Background()
	msg := testMessage()

	rmock.ExpectBRPop(2*time.Second, "emails").SetVal([]string{"emails", encodedJob(t, msg)})
	rmock.Regexp().ExpectLPush("emails:failed", `.*`).SetVal(1)

	deliver := new(MockSender)
	deliver.On("Send", ctx, msg).Return("", assert.AnError).Once()

	delivered, err := NewQueue(db, deliver).processNext(ctx)
	require.NoError(t, err)
	assert.False(t, delivered)
	deliver.AssertNumberOfCalls(t, "Send", 1)
	assert.NoError(t, rmock.ExpectationsWereMet())
}

func TestQueue_ProcessNext_BadPayload(t *testing.T) {
	db, rmock := redismock.NewClientMock()
	ctx := context.Background()

	rmock.ExpectBRPop(2*time.Second, "emails").SetVal([]string{"emails", "{not json"})

	deliver := new(MockSender)
	delivered, err := NewQueue(db, deliver).processNext(ctx)
	require.NoError(t, err)
	assert.False(t, delivered)
	deliver.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
}

func TestQueue_Start_StopsOnCancel(t *testing.T) {
	db, _ := redismock.NewClientMock()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	done := make(chan struct{})
	go func() {
		NewQueue(db, new(MockSender)).Start(ctx)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop after cancel")
	}
}

func TestQueue_QueueLength(t *testing.T) {
	db, rmock := redismock.NewClientMock()
	ctx := context.Background()

	rmock.ExpectLLen("emails").SetVal(5)

	length := NewQueue(db, nil).QueueLength(ctx)
	assert.Equal(t, int64(5), length)
	assert.Equal(t, float64(5), testutil.ToFloat64(metrics.EmailQueueLength))
	assert.NoError(t, rmock.ExpectationsWereMet())
}

func TestQueue_ProcessNext_EmptyPoll(t *testing.T) {
	db, rmock := redismock.NewClientMock()

	rmock.ExpectBRPop(2*time.Second, "emails").RedisNil()

	delivered, err := NewQueue(db, new(MockSender)).processNext(context.Background())
	assert.NoError(t, err)
	assert.False(t, delivered)
}

func TestQueue_ProcessNext_RedisDown(t *testing.T) {
	db, rmock := redismock.NewClientMock()

	rmock.ExpectBRPop(2*time.Second, "emails").SetErr(errors.New("dial tcp 127.0.0.1:6379: connect: connection refused"))

	delivered, err := NewQueue(db, new(MockSender)).processNext(context.Background())
	assert.ErrorContains(t, err, "connection refused")
	assert.False(t, delivered)
}

func TestQueue_Start_PublishesQueueLength(t *testing.T) {
	db, rmock := redismock.NewClientMock()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	msg := testMessage()

	rmock.ExpectBRPop(2*time.Second, "emails").SetVal([]string{"emails", encodedJob(t, msg)})
	rmock.ExpectLLen("emails").SetVal(3)

	deliver := new(MockSender)
	deliver.On("Send", mock.Anything, msg).Return("ses-1", nil)

	q := NewQueue(db, deliver)
	q.backoff = 10 * time.Millisecond

	done := make(chan struct{})
	go func() {
		q.Start(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool {
		return testutil.ToFloat64(metrics.EmailQueueLength) == 3
	}, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop after cancel")
	}
	deliver.AssertExpectations(t)
}

func TestQueue_Start_BacksOffWhileRedisDown(t *testing.T) {
	db, rmock := redismock.NewClientMock()
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	for i := 0; i < 100; i++ {
		rmock.ExpectBRPop(2*time.Second, "emails").SetErr(errors.New("connection refused"))
	}

	q := NewQueue(db, new(MockSender))
	q.backoff = 20 * time.Millisecond
	q.Start(ctx)

	// Roughly one attempt per backoff interval, not a tight loop.
	assert.Error(t, rmock.ExpectationsWereMet())
}
