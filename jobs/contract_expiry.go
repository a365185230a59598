package jobs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/eapdesk/eapdesk/internal/jobs"
	"github.com/eapdesk/eapdesk/internal/masterdata/contracts"
)

// ContractStore is the contract surface used by the expiry scan.
type ContractStore interface {
	ExpireEnded(ctx context.Context, today time.Time) (int64, error)
	DueForNotice(ctx context.Context, today time.Time, horizon time.Duration) ([]contracts.ExpiryNotice, error)
	MarkNotified(ctx context.Context, id int64, at time.Time) error
}

// EmailEnqueuer queues outgoing mail.
type EmailEnqueuer interface {
	EnqueueSendEmail(ctx context.Context, payload SendEmailPayload, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// ContractExpiryJob expires ended contracts and sends one notice per contract
// approaching its end date.
type ContractExpiryJob struct {
	Store   ContractStore
	Mail    EmailEnqueuer
	Horizon time.Duration
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
	clock   func() time.Time
}

// NewContractExpiryJob initialises the expiry scan handler.
func NewContractExpiryJob(store ContractStore, mail EmailEnqueuer, horizon time.Duration, logger *slog.Logger, metrics *jobmetrics.Metrics) *ContractExpiryJob {
	return &ContractExpiryJob{
		Store:   store,
		Mail:    mail,
		Horizon: horizon,
		Logger:  logger,
		Metrics: metrics,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Handle executes the scan.
func (j *ContractExpiryJob) Handle(ctx context.Context, _ *asynq.Task) error {
	if j == nil || j.Store == nil {
		return errors.New("contract expiry: handler not configured")
	}
	tracker := j.Metrics.Track(TaskContractExpiryScan)
	_, err := j.Run(ctx)
	return tracker.End(err)
}

// ScanResult summarises one run.
type ScanResult struct {
	Expired  int64
	Notified int
}

// Run performs one scan at the current clock time.
func (j *ContractExpiryJob) Run(ctx context.Context) (ScanResult, error) {
	var res ScanResult
	now := j.now()
	logger := j.logger()

	expired, err := j.Store.ExpireEnded(ctx, now)
	if err != nil {
		logger.Error("expire contracts failed", slog.Any("error", err))
		return res, fmt.Errorf("expire contracts: %w", err)
	}
	res.Expired = expired
	j.Metrics.AddNotices("contract_expired", int(expired))

	due, err := j.Store.DueForNotice(ctx, now, j.Horizon)
	if err != nil {
		logger.Error("load contracts due for notice failed", slog.Any("error", err))
		return res, fmt.Errorf("load due contracts: %w", err)
	}

	var errs []error
	for _, notice := range due {
		if err := j.notify(ctx, notice, now); err != nil {
			logger.Warn("contract expiry notice failed",
				slog.Int64("contract_id", notice.ContractID),
				slog.Any("error", err))
			errs = append(errs, err)
			continue
		}
		res.Notified++
	}
	j.Metrics.AddNotices("contract_expiry_notice", res.Notified)

	logger.Info("contract expiry scan finished",
		slog.Int64("expired", res.Expired),
		slog.Int("due", len(due)),
		slog.Int("notified", res.Notified))
	return res, errors.Join(errs...)
}

// notify enqueues the notice mail and stamps the contract. The task ID makes a
// repeated enqueue for the same contract a no-op.
func (j *ContractExpiryJob) notify(ctx context.Context, n contracts.ExpiryNotice, now time.Time) error {
	payload := SendEmailPayload{
		To:      n.ContactEmail,
		Subject: fmt.Sprintf("Contract %s ends on %s", n.Reference, n.EndDate.Format("2006-01-02")),
		Body: fmt.Sprintf("Hello %s,\n\nyour EAP contract %s ends on %s.\nPlease contact us to arrange a renewal.\n",
			n.ClientName, n.Reference, n.EndDate.Format("2 January 2006")),
	}
	taskID := fmt.Sprintf("contract-expiry-%d", n.ContractID)
	_, err := j.Mail.EnqueueSendEmail(ctx, payload, asynq.TaskID(taskID), asynq.MaxRetry(5))
	if err != nil && !errors.Is(err, asynq.ErrTaskIDConflict) {
		return fmt.Errorf("enqueue notice: %w", err)
	}
	if err := j.Store.MarkNotified(ctx, n.ContractID, now); err != nil {
		return fmt.Errorf("mark notified: %w", err)
	}
	return nil
}

func (j *ContractExpiryJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskContractExpiryScan))
	}
	return slog.Default().With(slog.String("job", TaskContractExpiryScan))
}

func (j *ContractExpiryJob) now() time.Time {
	if j.clock != nil {
		return j.clock()
	}
	return time.Now().UTC()
}
