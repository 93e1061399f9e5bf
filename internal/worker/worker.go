package worker

import (
	"context"

	"pharmacy-store/internal/broker"
	"pharmacy-store/internal/mirror"
	"pharmacy-store/internal/models"
	"pharmacy-store/internal/util"

	"go.uber.org/zap"
)

// Verifier checks the mirrored tables against the declared schema.
type Verifier interface {
	Verify(ctx context.Context) ([]mirror.Drift, error)
}

// MirrorWorker keeps the read-only side honest: every migration announced by
// the owner triggers a fresh schema verification.
type MirrorWorker struct {
	consumer     *broker.Consumer
	eventHandler *broker.EventHandler
	verifier     Verifier
	logger       *zap.Logger
}

// NewMirrorWorker creates a new mirror worker
func NewMirrorWorker(consumer *broker.Consumer, verifier Verifier) *MirrorWorker {
	w := &MirrorWorker{
		consumer:     consumer,
		eventHandler: broker.NewEventHandler(),
		verifier:     verifier,
		logger:       util.Named("mirror-worker"),
	}

	w.eventHandler.OnSchemaMigrated(w.HandleSchemaMigrated)
	w.eventHandler.OnEntityChanged(w.HandleEntityChanged)
	return w
}

// HandleSchemaMigrated re-verifies the mirror after the owner applied a step.
// Drift is logged and counted but not returned, so the event is committed.
func (w *MirrorWorker) HandleSchemaMigrated(ctx context.Context, event *models.SchemaMigratedEvent) error {
	w.logger.Info("Owner applied migration", zap.String("migration_id", event.MigrationID))

	drifts, err := w.verifier.Verify(ctx)
	if err != nil {
		return err
	}
	if len(drifts) > 0 {
		w.logger.Warn("Mirror out of date after migration",
			zap.String("migration_id", event.MigrationID),
			zap.Int("drifts", len(drifts)))
	}
	return nil
}

// HandleEntityChanged records admin edits made on the owner's side.
func (w *MirrorWorker) HandleEntityChanged(ctx context.Context, event *models.EntityChangedEvent) error {
	w.logger.Info("Owner changed entity",
		zap.String("entity", event.Entity),
		zap.String("key", event.Key),
		zap.String("operation", event.Operation))
	return nil
}

// Start verifies once and then consumes schema events until ctx is done
func (w *MirrorWorker) Start(ctx context.Context) error {
	w.logger.Info("Starting mirror worker")
	if _, err := w.verifier.Verify(ctx); err != nil {
		w.logger.Error("Initial verification failed", zap.Error(err))
	}
	return w.consumer.StartConsuming(ctx, w.eventHandler.HandleMessage)
}

// Stop stops the worker
func (w *MirrorWorker) Stop() error {
	w.logger.Info("Stopping mirror worker")
	return w.consumer.Close()
}
