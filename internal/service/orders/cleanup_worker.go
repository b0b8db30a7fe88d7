package orders

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/mdm/internal/domain"
)

const (
	defaultCleanupInterval  = 1 * time.Hour
	defaultCleanupBatchSize = 200
	defaultRetentionDays    = 7
)

var (
	draftCleanupRunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mdm_draft_cleanup_runs_total",
		Help: "Total number of stale draft cleanup runs grouped by result.",
	}, []string{"result"})
	draftCleanupDeletedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "mdm_draft_cleanup_deleted_total",
		Help: "Total number of deleted stale draft orders.",
	})
	draftCleanupLastDeleted = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "mdm_draft_cleanup_last_deleted",
		Help: "Number of deleted drafts during the last cleanup run.",
	})
)

// CleanupOptions задаёт параметры воркера очистки черновиков.
type CleanupOptions struct {
	Logger        *log.Entry
	Interval      time.Duration
	BatchSize     int
	RetentionDays int
}

// CleanupOption настраивает CleanupWorker.
type CleanupOption func(*CleanupOptions)

// WithLogger задаёт logger для воркера.
func WithLogger(logger *log.Entry) CleanupOption {
	return func(opts *CleanupOptions) { opts.Logger = logger }
}

// WithInterval задаёт интервал между cleanup-циклами.
func WithInterval(interval time.Duration) CleanupOption {
	return func(opts *CleanupOptions) { opts.Interval = interval }
}

// WithBatchSize задаёт размер batch для одного удаления.
func WithBatchSize(batchSize int) CleanupOption {
	return func(opts *CleanupOptions) { opts.BatchSize = batchSize }
}

// WithRetentionDays задаёт, сколько дней черновик считается живым.
func WithRetentionDays(days int) CleanupOption {
	return func(opts *CleanupOptions) { opts.RetentionDays = days }
}

// CleanupWorker периодически удаляет черновики, чья бизнес-дата
// старше окна хранения: незакрытый черновик прошлых дней уже никогда
// не будет финализирован мобильным клиентом.
type CleanupWorker struct {
	repo          domain.OrderRepository
	clock         domain.Clock
	logger        *log.Entry
	interval      time.Duration
	batchSize     int
	retentionDays int
}

// NewCleanupWorker создаёт воркер очистки устаревших черновиков.
func NewCleanupWorker(repo domain.OrderRepository, clock domain.Clock, options ...CleanupOption) *CleanupWorker {
	opts := CleanupOptions{
		Interval:      defaultCleanupInterval,
		BatchSize:     defaultCleanupBatchSize,
		RetentionDays: defaultRetentionDays,
	}
	for _, option := range options {
		option(&opts)
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.WithField("component", "draft-cleanup-worker")
	}

	if opts.Interval <= 0 {
		opts.Interval = defaultCleanupInterval
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = defaultCleanupBatchSize
	}
	if opts.RetentionDays <= 0 {
		opts.RetentionDays = defaultRetentionDays
	}

	return &CleanupWorker{
		repo:          repo,
		clock:         clock,
		logger:        logger,
		interval:      opts.Interval,
		batchSize:     opts.BatchSize,
		retentionDays: opts.RetentionDays,
	}
}

// Run запускает периодическую очистку до отмены ctx.
func (w *CleanupWorker) Run(ctx context.Context) {
	if w.repo == nil {
		w.logger.Warn("draft cleanup worker is disabled: repo is nil")
		return
	}

	w.cleanup(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.cleanup(ctx)
		}
	}
}

func (w *CleanupWorker) cleanup(ctx context.Context) {
	deleted, err := w.DeleteStale(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		draftCleanupRunsTotal.WithLabelValues("error").Inc()
		w.logger.WithError(err).Warn("draft cleanup run failed")
		return
	}

	draftCleanupRunsTotal.WithLabelValues("ok").Inc()
	draftCleanupLastDeleted.Set(float64(deleted))
	if deleted > 0 {
		w.logger.WithField("deleted", deleted).Info("draft cleanup completed")
	}
}

// DeleteStale удаляет черновики старше окна хранения порциями
// batchSize и возвращает суммарное число удалённых записей.
func (w *CleanupWorker) DeleteStale(ctx context.Context) (int, error) {
	before := w.cutoffDate()

	totalDeleted := 0
	for {
		if err := ctx.Err(); err != nil {
			return totalDeleted, err
		}

		deleted, err := w.repo.DeleteStaleDrafts(before, w.batchSize)
		if err != nil {
			return totalDeleted, err
		}

		totalDeleted += deleted
		draftCleanupDeletedTotal.Add(float64(deleted))

		if deleted < w.batchSize {
			return totalDeleted, nil
		}
	}
}

// cutoffDate возвращает бизнес-дату, раньше которой черновики
// считаются устаревшими.
func (w *CleanupWorker) cutoffDate() string {
	today, err := time.Parse("2006-01-02", w.clock.BusinessDate())
	if err != nil {
		today = time.Now().UTC()
	}
	return today.AddDate(0, 0, -w.retentionDays).Format("2006-01-02")
}
