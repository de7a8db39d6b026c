// Package jobs contains the scheduled job implementations.
package jobs

import (
	"context"
	"log/slog"
	"time"

	"github.com/guildhub/guild-progression-bot/internal/application/command"
)

// VoiceTickJob runs the periodic voice payout sweep.
type VoiceTickJob struct {
	handler *command.TickVoiceHandler
	logger  *slog.Logger
}

// NewVoiceTickJob creates a new VoiceTickJob.
func NewVoiceTickJob(handler *command.TickVoiceHandler, logger *slog.Logger) *VoiceTickJob {
	if logger == nil {
		logger = slog.Default()
	}
	return &VoiceTickJob{handler: handler, logger: logger}
}

// Name implements scheduler.Job.
func (j *VoiceTickJob) Name() string {
	return "voice_tick"
}

// Description implements scheduler.Job.
func (j *VoiceTickJob) Description() string {
	return "Sweeps live voice sessions, paying out elapsed intervals and applying mute penalties"
}

// Run implements scheduler.Job.
func (j *VoiceTickJob) Run(ctx context.Context) error {
	result, err := j.handler.Handle(ctx, command.TickVoiceCommand{TickedAt: time.Now().UTC()})
	if err != nil {
		return err
	}

	if result.Granted > 0 || result.Penalized > 0 {
		j.logger.Info("voice sweep completed",
			"sessions", result.Sessions,
			"granted", result.Granted,
			"penalized", result.Penalized,
		)
	}
	return nil
}
