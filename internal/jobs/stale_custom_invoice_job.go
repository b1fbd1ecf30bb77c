package jobs

import (
	"context"
	"time"

	"orderflow/internal/core/application/usecases/commands"
	"orderflow/internal/pkg/logger"
	"orderflow/internal/pkg/metrics"

	"github.com/robfig/cron/v3"
)

const (
	StaleCustomInvoiceJobName = "stale_custom_invoice_purge"

	DefaultStaleUploadTTL      = 72 * time.Hour
	DefaultStaleUploadSchedule = "0 */30 * * * *"
)

type staleCustomInvoicePurger interface {
	Handle(ctx context.Context, cmd commands.PurgeStaleCustomInvoicesCommand) (int64, error)
}

// StaleCustomInvoiceJob deletes custom invoices whose upload never completed.
type StaleCustomInvoiceJob struct {
	handler  staleCustomInvoicePurger
	ttl      time.Duration
	schedule string
	now      func() time.Time
	cron     *cron.Cron
	metrics  *metrics.JobMetrics
	log      *logger.Logger
}

// NewStaleCustomInvoiceJob creates the purge job. Zero ttl and an empty
// schedule fall back to the defaults.
func NewStaleCustomInvoiceJob(
	handler staleCustomInvoicePurger,
	ttl time.Duration,
	schedule string,
	jobMetrics *metrics.JobMetrics,
	log *logger.Logger,
) *StaleCustomInvoiceJob {
	if ttl <= 0 {
		ttl = DefaultStaleUploadTTL
	}
	if schedule == "" {
		schedule = DefaultStaleUploadSchedule
	}
	if log == nil {
		log = logger.Nop()
	}
	return &StaleCustomInvoiceJob{
		handler:  handler,
		ttl:      ttl,
		schedule: schedule,
		now:      time.Now,
		cron:     cron.New(cron.WithSeconds()),
		metrics:  jobMetrics,
		log:      log,
	}
}

// Start schedules the job.
func (j *StaleCustomInvoiceJob) Start() error {
	if _, err := j.cron.AddFunc(j.schedule, func() { j.Run(context.Background()) }); err != nil {
		return err
	}

	j.cron.Start()
	j.log.Info(j.log.WithFields(context.Background(), map[string]any{
		"job":      StaleCustomInvoiceJobName,
		"schedule": j.schedule,
		"ttl":      j.ttl.String(),
	}), "job started")
	return nil
}

// Stop waits for a running purge to finish.
func (j *StaleCustomInvoiceJob) Stop() {
	<-j.cron.Stop().Done()
	j.log.Info(j.log.WithField(context.Background(), "job", StaleCustomInvoiceJobName), "job stopped")
}

// Run performs one purge. Failures are logged and counted; the next tick
// retries.
func (j *StaleCustomInvoiceJob) Run(ctx context.Context) {
	ctx = j.log.WithField(ctx, "job", StaleCustomInvoiceJobName)
	started := time.Now()

	cmd, err := commands.NewPurgeStaleCustomInvoicesCommand(j.now(), j.ttl)
	if err == nil {
		var purged int64
		purged, err = j.handler.Handle(ctx, cmd)
		if err == nil && purged > 0 {
			j.log.Info(j.log.WithField(ctx, "purged", purged), "stale custom invoices purged")
		}
	}

	j.metrics.Observe(StaleCustomInvoiceJobName, time.Since(started), err)
	if err != nil {
		j.log.Error(ctx, "stale custom invoice purge failed", err)
	}
}
