package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mdclab/mdc-service/internal/domain"
	"github.com/mdclab/mdc-service/internal/platform/logging"
	"github.com/mdclab/mdc-service/internal/platform/mdc"
)

// NotificationResult reports the outcome of the concurrent notification
// fan-out, including the request id each branch observed.
type NotificationResult struct {
	SaveObservedRequestID string
	PushObservedRequestID string
}

// NotificationService sends emails via the async executor and fans
// notifications out to concurrent delivery branches.
type NotificationService struct {
	executor *Executor
}

// NewNotificationService creates a notification service backed by the
// given executor.
func NewNotificationService(executor *Executor) *NotificationService {
	return &NotificationService{executor: executor}
}

// SendEmail delivers an email on the pool WITH the caller's diagnostic
// context carried along.
func (s *NotificationService) SendEmail(ctx context.Context, email string) (*Future[AsyncResult], error) {
	if email == "" {
		return nil, domain.NewValidationError("email", "must not be empty")
	}

	future, err := Submit(s.executor, mdc.WrapResult(ctx, s.emailTask(email)))
	if err != nil {
		return nil, fmt.Errorf("submitting email task: %w", err)
	}

	return future, nil
}

// SendEmailDetached delivers an email on the pool WITHOUT carrying the
// caller's diagnostic context.
func (s *NotificationService) SendEmailDetached(ctx context.Context, email string) (*Future[AsyncResult], error) {
	if email == "" {
		return nil, domain.NewValidationError("email", "must not be empty")
	}

	future, err := Submit(s.executor, s.emailTask(email))
	if err != nil {
		return nil, fmt.Errorf("submitting email task: %w", err)
	}

	return future, nil
}

func (s *NotificationService) emailTask(email string) func(context.Context) (AsyncResult, error) {
	return func(ctx context.Context) (AsyncResult, error) {
		logger := logging.FromContext(ctx)

		logger.InfoContext(ctx, "sending email", slog.String("email", email))

		observed, _ := mdc.Get(ctx, mdc.KeyRequestID)

		return AsyncResult{
			Message:           fmt.Sprintf("email sent to %s", email),
			ObservedRequestID: observed,
		}, nil
	}
}

// ProcessNotification saves and pushes a notification concurrently. Each
// branch runs on its own goroutine with its own fresh store, so the
// caller's snapshot is installed per branch and the branches cannot
// contaminate each other or the originating request.
func (s *NotificationService) ProcessNotification(ctx context.Context, userID, message string) (*NotificationResult, error) {
	if message == "" {
		return nil, domain.NewValidationError("message", "must not be empty")
	}

	saveObserved, pushObserved, err := Parallel2(ctx,
		s.branch(ctx, "saving notification", userID, message),
		s.branch(ctx, "pushing notification", userID, message),
	)
	if err != nil {
		return nil, fmt.Errorf("processing notification: %w", err)
	}

	return &NotificationResult{
		SaveObservedRequestID: saveObserved,
		PushObservedRequestID: pushObserved,
	}, nil
}

// branch builds one fan-out leg: a wrapped task bound to a store of its
// own. The snapshot is captured here, before the goroutine starts.
func (s *NotificationService) branch(ctx context.Context, step, userID, message string) func(context.Context) (string, error) {
	var observed string

	task := mdc.Wrap(ctx, func(ctx context.Context) error {
		logger := logging.FromContext(ctx)

		logger.InfoContext(ctx, step,
			slog.String("user_id", userID),
			slog.String("message", message))

		observed, _ = mdc.Get(ctx, mdc.KeyRequestID)

		return nil
	})

	return func(gctx context.Context) (string, error) {
		err := task(mdc.NewContext(gctx))
		if err != nil {
			return "", err
		}

		return observed, nil
	}
}
