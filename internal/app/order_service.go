package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mdclab/mdc-service/internal/domain"
	"github.com/mdclab/mdc-service/internal/platform/logging"
	"github.com/mdclab/mdc-service/internal/platform/mdc"
)

// Scoped diagnostic keys added around order sub-operations.
const (
	keyOrderID         = "orderId"
	keyProductCategory = "productCategory"
)

// AsyncResult reports the outcome of a pooled task together with the
// request id its execution context observed. Exposing the observed id
// makes propagation (or its absence) visible to callers.
type AsyncResult struct {
	Message           string
	ObservedRequestID string
}

// OrderService processes orders synchronously and via the async executor.
type OrderService struct {
	executor *Executor
}

// NewOrderService creates an order service backed by the given executor.
func NewOrderService(executor *Executor) *OrderService {
	return &OrderService{executor: executor}
}

// ProcessOrder processes an order on the calling goroutine. Every step logs
// through the request context, so each line carries the request's
// diagnostic fields without any explicit plumbing.
func (s *OrderService) ProcessOrder(ctx context.Context, orderID string) (*domain.Order, error) {
	logger := logging.FromContext(ctx)

	err := domain.ValidateOrderID(orderID)
	if err != nil {
		return nil, fmt.Errorf("validating order: %w", err)
	}

	logger.InfoContext(ctx, "processing order", slog.String("order_id", orderID))

	order := &domain.Order{ID: orderID, Status: domain.OrderStatusProcessed}

	s.calculatePrice(ctx, order)
	s.saveOrder(ctx, order)

	logger.InfoContext(ctx, "order processed", slog.String("order_id", orderID))

	return order, nil
}

// ProcessOrderAsync delegates processing to the pool WITHOUT carrying the
// caller's diagnostic context. The task observes whatever the pooled
// worker's store holds, which is nothing after well-behaved predecessors.
func (s *OrderService) ProcessOrderAsync(ctx context.Context, orderID string) (*Future[AsyncResult], error) {
	err := domain.ValidateOrderID(orderID)
	if err != nil {
		return nil, fmt.Errorf("validating order: %w", err)
	}

	future, err := Submit(s.executor, s.asyncTask(orderID))
	if err != nil {
		return nil, fmt.Errorf("submitting order task: %w", err)
	}

	return future, nil
}

// ProcessOrderAsyncMDC delegates processing to the pool WITH the caller's
// diagnostic context: the snapshot taken here is installed on the worker's
// store for the duration of the task and cleared afterwards.
func (s *OrderService) ProcessOrderAsyncMDC(ctx context.Context, orderID string) (*Future[AsyncResult], error) {
	err := domain.ValidateOrderID(orderID)
	if err != nil {
		return nil, fmt.Errorf("validating order: %w", err)
	}

	future, err := Submit(s.executor, mdc.WrapResult(ctx, s.asyncTask(orderID)))
	if err != nil {
		return nil, fmt.Errorf("submitting order task: %w", err)
	}

	return future, nil
}

// asyncTask is the shared pooled workload. It reports the request id seen
// from its own execution context.
func (s *OrderService) asyncTask(orderID string) func(context.Context) (AsyncResult, error) {
	return func(ctx context.Context) (AsyncResult, error) {
		logger := logging.FromContext(ctx)

		logger.InfoContext(ctx, "processing order on pooled worker", slog.String("order_id", orderID))

		order := &domain.Order{ID: orderID, Status: domain.OrderStatusProcessed}
		s.calculatePrice(ctx, order)
		s.saveOrder(ctx, order)

		observed, _ := mdc.Get(ctx, mdc.KeyRequestID)

		return AsyncResult{
			Message:           fmt.Sprintf("order %s processed", orderID),
			ObservedRequestID: observed,
		}, nil
	}
}

// CreateOrder creates an order while `orderId` and `productCategory` are
// present in the diagnostic context for the duration of the sub-operation
// only. The surrounding request's fields survive the scope.
func (s *OrderService) CreateOrder(ctx context.Context, orderID, category string) (*domain.Order, error) {
	err := domain.ValidateOrderID(orderID)
	if err != nil {
		return nil, fmt.Errorf("validating order: %w", err)
	}

	err = domain.ValidateCategory(category)
	if err != nil {
		return nil, fmt.Errorf("validating order: %w", err)
	}

	order := &domain.Order{ID: orderID, Category: category, Status: domain.OrderStatusCreated}

	fields := map[string]string{
		keyOrderID:         orderID,
		keyProductCategory: category,
	}

	err = mdc.WithFields(ctx, fields, func(ctx context.Context) error {
		logger := logging.FromContext(ctx)

		logger.InfoContext(ctx, "creating order")
		s.calculatePrice(ctx, order)
		s.saveOrder(ctx, order)
		logger.InfoContext(ctx, "order created")

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("creating order: %w", err)
	}

	return order, nil
}

func (s *OrderService) calculatePrice(ctx context.Context, order *domain.Order) {
	// Stand-in for a pricing engine.
	order.Price = 100.0 + float64(len(order.ID))

	logging.FromContext(ctx).DebugContext(ctx, "price calculated",
		slog.String("order_id", order.ID),
		slog.Float64("price", order.Price))
}

func (s *OrderService) saveOrder(ctx context.Context, order *domain.Order) {
	logging.FromContext(ctx).DebugContext(ctx, "order saved",
		slog.String("order_id", order.ID),
		slog.String("status", order.Status))
}
