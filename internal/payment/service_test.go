package payment_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/vasiliy-maslov/marketfresh/internal/events"
	"github.com/vasiliy-maslov/marketfresh/internal/order"
	"github.com/vasiliy-maslov/marketfresh/internal/payment"
)

type MockPaymentRepository struct {
	mock.Mock
}

func (m *MockPaymentRepository) Create(ctx context.Context, i *payment.Intent) error {
	args := m.Called(ctx, i)
	return args.Error(0)
}

func (m *MockPaymentRepository) LockByID(ctx context.Context, id uuid.UUID) (*payment.Intent, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.Intent), args.Error(1)
}

func (m *MockPaymentRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to payment.Status) error {
	args := m.Called(ctx, id, from, to)
	return args.Error(0)
}

func (m *MockPaymentRepository) FailPending(ctx context.Context, orderID, exceptID uuid.UUID) (int64, error) {
	args := m.Called(ctx, orderID, exceptID)
	return args.Get(0).(int64), args.Error(1)
}

type MockOrderStore struct {
	mock.Mock
}

func (m *MockOrderStore) LockStatus(ctx context.Context, id uuid.UUID) (order.Status, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(order.Status), args.Error(1)
}

func (m *MockOrderStore) UpdateStatus(ctx context.Context, id uuid.UUID, from, to order.Status) error {
	args := m.Called(ctx, id, from, to)
	return args.Error(0)
}

type fakeTransactor struct{}

func (fakeTransactor) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type recordingPublisher struct {
	published []events.Event
}

func (p *recordingPublisher) Publish(_ context.Context, e events.Event) error {
	p.published = append(p.published, e)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

var fixedNow = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

func newService() (payment.Service, *MockPaymentRepository, *MockOrderStore, *recordingPublisher) {
	repo := new(MockPaymentRepository)
	orders := new(MockOrderStore)
	pub := &recordingPublisher{}
	svc := payment.NewService(repo, orders, fakeTransactor{}, pub, "mock", func() time.Time { return fixedNow })
	return svc, repo, orders, pub
}

func TestPaymentService_CreateIntent(t *testing.T) {
	orderID := uuid.Must(uuid.NewV4())

	t.Run("pending order", func(t *testing.T) {
		svc, repo, orders, _ := newService()

		orders.On("LockStatus", mock.Anything, orderID).Return(order.StatusPendingPayment, nil).Once()
		repo.On("Create", mock.Anything, mock.MatchedBy(func(i *payment.Intent) bool {
			return i.OrderID == orderID && i.Status == payment.StatusRequiresConfirmation && i.Provider == "mock"
		})).Return(nil).Once()

		intent, err := svc.CreateIntent(context.Background(), orderID)
		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, intent.ID)
		assert.Equal(t, "mock_"+intent.ID.String(), intent.ClientSecret())
		assert.True(t, intent.CreatedAt.Equal(fixedNow))
		repo.AssertExpectations(t)
	})

	t.Run("paid order is not payable", func(t *testing.T) {
		svc, repo, orders, _ := newService()

		orders.On("LockStatus", mock.Anything, orderID).Return(order.StatusPaid, nil).Once()

		intent, err := svc.CreateIntent(context.Background(), orderID)
		require.ErrorIs(t, err, payment.ErrOrderNotPayable)
		require.Nil(t, intent)
		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("cancelled order is not payable", func(t *testing.T) {
		svc, _, orders, _ := newService()

		orders.On("LockStatus", mock.Anything, orderID).Return(order.StatusCancelled, nil).Once()

		_, err := svc.CreateIntent(context.Background(), orderID)
		require.ErrorIs(t, err, payment.ErrOrderNotPayable)
	})

	t.Run("unknown order", func(t *testing.T) {
		svc, _, orders, _ := newService()

		orders.On("LockStatus", mock.Anything, orderID).Return(order.Status(""), order.ErrOrderNotFound).Once()

		_, err := svc.CreateIntent(context.Background(), orderID)
		require.ErrorIs(t, err, order.ErrOrderNotFound)
	})

	t.Run("insert failure is wrapped", func(t *testing.T) {
		svc, repo, orders, _ := newService()
		dbErr := errors.New("disk full")

		orders.On("LockStatus", mock.Anything, orderID).Return(order.StatusPendingPayment, nil).Once()
		repo.On("Create", mock.Anything, mock.Anything).Return(dbErr).Once()

		_, err := svc.CreateIntent(context.Background(), orderID)
		require.ErrorIs(t, err, dbErr)
	})
}

func TestPaymentService_ConfirmIntent_Success(t *testing.T) {
	svc, repo, orders, pub := newService()

	intentID := uuid.Must(uuid.NewV4())
	orderID := uuid.Must(uuid.NewV4())

	repo.On("LockByID", mock.Anything, intentID).Return(&payment.Intent{
		ID: intentID, OrderID: orderID, Provider: "mock", Status: payment.StatusRequiresConfirmation,
	}, nil).Once()
	orders.On("UpdateStatus", mock.Anything, orderID, order.StatusPendingPayment, order.StatusPaid).Return(nil).Once()
	repo.On("UpdateStatus", mock.Anything, intentID, payment.StatusRequiresConfirmation, payment.StatusSucceeded).Return(nil).Once()
	repo.On("FailPending", mock.Anything, orderID, intentID).Return(int64(1), nil).Once()

	intent, err := svc.ConfirmIntent(context.Background(), intentID)
	require.NoError(t, err)
	assert.Equal(t, payment.StatusSucceeded, intent.Status)
	assert.Equal(t, orderID, intent.OrderID)

	require.Len(t, pub.published, 1)
	assert.Equal(t, events.TopicPaymentSucceeded, pub.published[0].Topic)

	repo.AssertExpectations(t)
	orders.AssertExpectations(t)
}

func TestPaymentService_ConfirmIntent_Failures(t *testing.T) {
	intentID := uuid.Must(uuid.NewV4())
	orderID := uuid.Must(uuid.NewV4())

	tests := []struct {
		name    string
		setup   func(repo *MockPaymentRepository, orders *MockOrderStore)
		wantErr error
	}{
		{
			name: "unknown intent",
			setup: func(repo *MockPaymentRepository, orders *MockOrderStore) {
				repo.On("LockByID", mock.Anything, intentID).Return(nil, payment.ErrPaymentIntentNotFound).Once()
			},
			wantErr: payment.ErrPaymentIntentNotFound,
		},
		{
			name: "already succeeded",
			setup: func(repo *MockPaymentRepository, orders *MockOrderStore) {
				repo.On("LockByID", mock.Anything, intentID).Return(&payment.Intent{
					ID: intentID, OrderID: orderID, Status: payment.StatusSucceeded,
				}, nil).Once()
			},
			wantErr: payment.ErrPaymentIntentNotConfirmable,
		},
		{
			name: "failed sibling",
			setup: func(repo *MockPaymentRepository, orders *MockOrderStore) {
				repo.On("LockByID", mock.Anything, intentID).Return(&payment.Intent{
					ID: intentID, OrderID: orderID, Status: payment.StatusFailed,
				}, nil).Once()
			},
			wantErr: payment.ErrPaymentIntentNotConfirmable,
		},
		{
			name: "order already paid through another intent",
			setup: func(repo *MockPaymentRepository, orders *MockOrderStore) {
				repo.On("LockByID", mock.Anything, intentID).Return(&payment.Intent{
					ID: intentID, OrderID: orderID, Status: payment.StatusRequiresConfirmation,
				}, nil).Once()
				orders.On("UpdateStatus", mock.Anything, orderID, order.StatusPendingPayment, order.StatusPaid).Return(order.ErrStatusChanged).Once()
			},
			wantErr: payment.ErrPaymentIntentNotConfirmable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo, orders, pub := newService()
			tt.setup(repo, orders)

			intent, err := svc.ConfirmIntent(context.Background(), intentID)
			require.ErrorIs(t, err, tt.wantErr)
			require.Nil(t, intent)
			repo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
			assert.Empty(t, pub.published)
		})
	}
}

func TestPaymentService_ConfirmIntent_Twice(t *testing.T) {
	svc, repo, orders, _ := newService()

	intentID := uuid.Must(uuid.NewV4())
	orderID := uuid.Must(uuid.NewV4())
	intent := &payment.Intent{ID: intentID, OrderID: orderID, Status: payment.StatusRequiresConfirmation}

	repo.On("LockByID", mock.Anything, intentID).Return(intent, nil).Twice()
	orders.On("UpdateStatus", mock.Anything, orderID, order.StatusPendingPayment, order.StatusPaid).Return(nil).Once()
	repo.On("UpdateStatus", mock.Anything, intentID, payment.StatusRequiresConfirmation, payment.StatusSucceeded).Return(nil).Once()
	repo.On("FailPending", mock.Anything, orderID, intentID).Return(int64(0), nil).Once()

	_, err := svc.ConfirmIntent(context.Background(), intentID)
	require.NoError(t, err)

	_, err = svc.ConfirmIntent(context.Background(), intentID)
	require.ErrorIs(t, err, payment.ErrPaymentIntentNotConfirmable)

	orders.AssertNumberOfCalls(t, "UpdateStatus", 1)
}
