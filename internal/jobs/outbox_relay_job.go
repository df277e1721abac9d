package jobs

import (
	"context"
	"log/slog"

	"procurement/internal/core/application/usecases/commands"

	"github.com/robfig/cron/v3"
)

// OutboxRelayer is the command handler the relay job drives.
type OutboxRelayer interface {
	Handle(ctx context.Context, command commands.RelayOutboxCommand) (commands.RelayOutboxResult, error)
}

// OutboxRelayJob publishes pending thread notifications on a schedule.
type OutboxRelayJob struct {
	handler  OutboxRelayer
	command  commands.RelayOutboxCommand
	schedule string
	cron     *cron.Cron
	logger   *slog.Logger
}

// NewOutboxRelayJob creates the relay job. Every run drains one batch as
// described by command.
func NewOutboxRelayJob(
	handler OutboxRelayer,
	command commands.RelayOutboxCommand,
	schedule string,
	logger *slog.Logger,
) *OutboxRelayJob {
	return &OutboxRelayJob{
		handler:  handler,
		command:  command,
		schedule: schedule,
		cron:     cron.New(cron.WithSeconds(), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		logger:   logger.With("component", "outbox_relay_job"),
	}
}

// Start registers the relay under its schedule and starts the scheduler.
func (j *OutboxRelayJob) Start() error {
	if _, err := j.cron.AddFunc(j.schedule, j.run); err != nil {
		return err
	}

	j.cron.Start()
	j.logger.InfoContext(context.Background(), "Outbox relay job started", "schedule", j.schedule)
	return nil
}

func (j *OutboxRelayJob) run() {
	ctx := context.Background()
	result, err := j.handler.Handle(ctx, j.command)
	if err != nil {
		j.logger.ErrorContext(ctx, "Outbox relay job failed", "error", err)
		return
	}
	if result.Published > 0 || result.Failed > 0 {
		j.logger.DebugContext(ctx, "Outbox batch relayed",
			"published", result.Published,
			"failed", result.Failed,
		)
	}
}

// Stop stops the scheduler and waits for a running batch to finish.
func (j *OutboxRelayJob) Stop() {
	<-j.cron.Stop().Done()
	j.logger.InfoContext(context.Background(), "Outbox relay job stopped")
}
