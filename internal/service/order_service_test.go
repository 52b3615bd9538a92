package service

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/sakashimaa/go-shop-api/internal/domain"
	"github.com/sakashimaa/go-shop-api/internal/repository"
	outboxDomain "github.com/sakashimaa/go-shop-api/pkg/outbox/domain"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// stubTx satisfies pgx.Tx for services that only Begin/Commit/Rollback.
type stubTx struct{ pgx.Tx }

func (stubTx) Commit(context.Context) error   { return nil }
func (stubTx) Rollback(context.Context) error { return pgx.ErrTxClosed }

type stubDB struct{}

func (stubDB) Begin(context.Context) (pgx.Tx, error) { return stubTx{}, nil }

type fakeOrderRepo struct {
	orders map[string]*domain.Order
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{orders: make(map[string]*domain.Order)}
}

func (r *fakeOrderRepo) Create(_ context.Context, _ pgx.Tx, order *domain.Order) error {
	cp := *order
	r.orders[order.ID] = &cp
	return nil
}

func (r *fakeOrderRepo) ListAll(_ context.Context) ([]domain.Order, error) {
	var out []domain.Order
	for _, o := range r.orders {
		out = append(out, *o)
	}
	return out, nil
}

func (r *fakeOrderRepo) ListByUser(_ context.Context, userID string) ([]domain.Order, error) {
	var out []domain.Order
	for _, o := range r.orders {
		if o.UserID == userID {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (r *fakeOrderRepo) GetByID(_ context.Context, orderID string) (*domain.Order, error) {
	o, ok := r.orders[orderID]
	if !ok {
		return nil, repository.ErrOrderNotFound
	}
	cp := *o
	return &cp, nil
}

func (r *fakeOrderRepo) UpdateStatus(_ context.Context, _ pgx.Tx, orderID, status string) error {
	o, ok := r.orders[orderID]
	if !ok {
		return repository.ErrOrderNotFound
	}
	if o.OrderStatus == domain.OrderStatusCancelled {
		return repository.ErrOrderCancelled
	}
	o.OrderStatus = domain.OrderStatus(status)
	return nil
}

func (r *fakeOrderRepo) MarkCancelled(_ context.Context, _ pgx.Tx, orderID string) error {
	o, ok := r.orders[orderID]
	if !ok {
		return repository.ErrOrderNotFound
	}
	o.OrderStatus = domain.OrderStatusCancelled
	return nil
}

func (r *fakeOrderRepo) UpdateAddress(_ context.Context, orderID string, address domain.Address) error {
	o, ok := r.orders[orderID]
	if !ok {
		return repository.ErrOrderNotFound
	}
	o.ShippingAddress = address
	return nil
}

type fakeOutboxRepo struct {
	saved []*outboxDomain.OutboxEvent
}

func (r *fakeOutboxRepo) SaveOutboxEvent(_ context.Context, _ pgx.Tx, event *outboxDomain.OutboxEvent) error {
	r.saved = append(r.saved, event)
	return nil
}

func (r *fakeOutboxRepo) GetUnpublishedEvents(context.Context, pgx.Tx, int) ([]*outboxDomain.OutboxEvent, error) {
	return nil, nil
}

func (r *fakeOutboxRepo) MarkEventPublished(context.Context, pgx.Tx, int64) error { return nil }

func (r *fakeOutboxRepo) MarkEventFailed(context.Context, pgx.Tx, int64, string) error { return nil }

func newOrderServiceForTest(orders repository.OrderRepository, outbox *fakeOutboxRepo, catalog ProductCatalog) OrderService {
	return NewOrderService(stubDB{}, orders, outbox, catalog, "order_events", zap.NewNop())
}

func TestPlaceOrder_FreezesTotalAtPlacement(t *testing.T) {
	gadget := &domain.Product{ID: "p-gadget", Name: "Gadget", Price: 20}
	catalog := newFakeCatalog(gadget)
	orders := newFakeOrderRepo()
	outbox := &fakeOutboxRepo{}
	svc := newOrderServiceForTest(orders, outbox, catalog)

	address := domain.Address{Street: "1 Main St", City: "Pune", Country: "IN"}

	order, err := svc.PlaceOrder(context.Background(), "u1", "Gadget", int32Ptr(4), address, "card")
	require.NoError(t, err)

	require.Equal(t, int64(80), order.TotalAmount)
	require.Equal(t, domain.OrderStatusProcessing, order.OrderStatus)
	require.Equal(t, domain.PaymentStatusPending, order.PaymentStatus)
	require.Len(t, order.Items, 1)
	require.Equal(t, "p-gadget", order.Items[0].ProductID)
	require.Equal(t, int64(20), order.Items[0].Price)
	require.Equal(t, address, order.ShippingAddress)

	// a later catalog change never touches the stored order
	catalog.byID["p-gadget"].Price = 99

	stored, err := svc.GetByID(context.Background(), order.ID)
	require.NoError(t, err)
	require.Equal(t, int64(80), stored.TotalAmount)

	require.Len(t, outbox.saved, 1)
	require.Equal(t, "OrderPlaced", outbox.saved[0].EventType)
	require.Equal(t, order.ID, outbox.saved[0].AggregateID)
	require.Equal(t, "order_events", outbox.saved[0].Topic)

	var envelope struct {
		Event   string `json:"event"`
		Payload struct {
			TotalAmount int64 `json:"total_amount"`
		} `json:"payload"`
	}
	require.NoError(t, json.Unmarshal(outbox.saved[0].Payload, &envelope))
	require.Equal(t, "OrderPlaced", envelope.Event)
	require.Equal(t, int64(80), envelope.Payload.TotalAmount)
}

func TestPlaceOrder_DefaultQuantity(t *testing.T) {
	gadget := &domain.Product{ID: "p-gadget", Name: "Gadget", Price: 20}
	svc := newOrderServiceForTest(newFakeOrderRepo(), &fakeOutboxRepo{}, newFakeCatalog(gadget))

	order, err := svc.PlaceOrder(context.Background(), "u1", "Gadget", nil, domain.Address{}, "cod")
	require.NoError(t, err)
	require.Equal(t, int32(1), order.Items[0].Quantity)
	require.Equal(t, int64(20), order.TotalAmount)
}

func TestPlaceOrder_InvalidQuantity(t *testing.T) {
	gadget := &domain.Product{ID: "p-gadget", Name: "Gadget", Price: 20}
	svc := newOrderServiceForTest(newFakeOrderRepo(), &fakeOutboxRepo{}, newFakeCatalog(gadget))

	_, err := svc.PlaceOrder(context.Background(), "u1", "Gadget", int32Ptr(0), domain.Address{}, "cod")
	require.ErrorIs(t, err, ErrInvalidQuantity)
}

func TestPlaceOrder_UnknownProduct(t *testing.T) {
	svc := newOrderServiceForTest(newFakeOrderRepo(), &fakeOutboxRepo{}, newFakeCatalog())

	_, err := svc.PlaceOrder(context.Background(), "u1", "Nothing", nil, domain.Address{}, "cod")
	require.ErrorIs(t, err, repository.ErrProductNotFound)
}

func TestUpdateStatus_EmitsEventWithOldStatus(t *testing.T) {
	gadget := &domain.Product{ID: "p-gadget", Name: "Gadget", Price: 20}
	orders := newFakeOrderRepo()
	outbox := &fakeOutboxRepo{}
	svc := newOrderServiceForTest(orders, outbox, newFakeCatalog(gadget))

	placed, err := svc.PlaceOrder(context.Background(), "u1", "Gadget", nil, domain.Address{}, "cod")
	require.NoError(t, err)

	order, err := svc.UpdateStatus(context.Background(), placed.ID, string(domain.OrderStatusShipped))
	require.NoError(t, err)
	require.Equal(t, domain.OrderStatusShipped, order.OrderStatus)

	require.Len(t, outbox.saved, 2)
	require.Equal(t, "OrderStatusChanged", outbox.saved[1].EventType)

	var envelope struct {
		Payload domain.OrderStatusChangedEvent `json:"payload"`
	}
	require.NoError(t, json.Unmarshal(outbox.saved[1].Payload, &envelope))
	require.Equal(t, string(domain.OrderStatusProcessing), envelope.Payload.OldStatus)
	require.Equal(t, string(domain.OrderStatusShipped), envelope.Payload.NewStatus)
}

func TestUpdateStatus_CancelledIsTerminal(t *testing.T) {
	gadget := &domain.Product{ID: "p-gadget", Name: "Gadget", Price: 20}
	orders := newFakeOrderRepo()
	outbox := &fakeOutboxRepo{}
	svc := newOrderServiceForTest(orders, outbox, newFakeCatalog(gadget))

	placed, err := svc.PlaceOrder(context.Background(), "u1", "Gadget", nil, domain.Address{}, "cod")
	require.NoError(t, err)

	_, err = svc.Cancel(context.Background(), placed.ID)
	require.NoError(t, err)

	_, err = svc.UpdateStatus(context.Background(), placed.ID, string(domain.OrderStatusShipped))
	require.ErrorIs(t, err, repository.ErrOrderCancelled)
}

func TestUpdateStatus_NotFound(t *testing.T) {
	svc := newOrderServiceForTest(newFakeOrderRepo(), &fakeOutboxRepo{}, newFakeCatalog())

	_, err := svc.UpdateStatus(context.Background(), "missing", string(domain.OrderStatusShipped))
	require.ErrorIs(t, err, repository.ErrOrderNotFound)
}

func TestCancel_FromDelivered(t *testing.T) {
	gadget := &domain.Product{ID: "p-gadget", Name: "Gadget", Price: 20}
	orders := newFakeOrderRepo()
	outbox := &fakeOutboxRepo{}
	svc := newOrderServiceForTest(orders, outbox, newFakeCatalog(gadget))

	placed, err := svc.PlaceOrder(context.Background(), "u1", "Gadget", nil, domain.Address{}, "cod")
	require.NoError(t, err)

	_, err = svc.UpdateStatus(context.Background(), placed.ID, string(domain.OrderStatusDelivered))
	require.NoError(t, err)

	// cancellation is unconditional, even a delivered order can be cancelled
	order, err := svc.Cancel(context.Background(), placed.ID)
	require.NoError(t, err)
	require.Equal(t, domain.OrderStatusCancelled, order.OrderStatus)

	require.Equal(t, "OrderCancelled", outbox.saved[len(outbox.saved)-1].EventType)
}

func TestCancel_NotFound(t *testing.T) {
	svc := newOrderServiceForTest(newFakeOrderRepo(), &fakeOutboxRepo{}, newFakeCatalog())

	_, err := svc.Cancel(context.Background(), "missing")
	require.ErrorIs(t, err, repository.ErrOrderNotFound)
}

func TestUpdateAddress_FullReplace(t *testing.T) {
	gadget := &domain.Product{ID: "p-gadget", Name: "Gadget", Price: 20}
	orders := newFakeOrderRepo()
	svc := newOrderServiceForTest(orders, &fakeOutboxRepo{}, newFakeCatalog(gadget))

	placed, err := svc.PlaceOrder(context.Background(), "u1", "Gadget", nil, domain.Address{Street: "old", City: "A"}, "cod")
	require.NoError(t, err)

	order, err := svc.UpdateAddress(context.Background(), placed.ID, domain.Address{Street: "new"})
	require.NoError(t, err)

	require.Equal(t, "new", order.ShippingAddress.Street)
	// replace, not merge: the old city is gone
	require.Empty(t, order.ShippingAddress.City)
}

func TestTrackStatus(t *testing.T) {
	gadget := &domain.Product{ID: "p-gadget", Name: "Gadget", Price: 20}
	svc := newOrderServiceForTest(newFakeOrderRepo(), &fakeOutboxRepo{}, newFakeCatalog(gadget))

	placed, err := svc.PlaceOrder(context.Background(), "u1", "Gadget", nil, domain.Address{}, "cod")
	require.NoError(t, err)

	status, err := svc.TrackStatus(context.Background(), placed.ID)
	require.NoError(t, err)
	require.Equal(t, domain.OrderStatusProcessing, status)

	_, err = svc.TrackStatus(context.Background(), "missing")
	require.ErrorIs(t, err, repository.ErrOrderNotFound)
}
