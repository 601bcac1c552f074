package mail

import (
	"context"
	"log/slog"

	"github.com/oquants/tradewatch/internal/poll"
	"github.com/oquants/tradewatch/pkg/types"
)

// NewProbe adapts a mailbox search to the orchestrator's probe contract.
// Search failures become Error outcomes so the poll loop retries them like
// misses. The archive is optional; an archive failure is logged and never
// fails the probe.
func NewProbe(searcher Searcher, filter SearchFilter, archive *Archive, logger *slog.Logger) poll.Probe {
	if logger == nil {
		logger = slog.Default()
	}
	return func(ctx context.Context) types.Outcome {
		messages, err := searcher.Search(ctx, filter)
		if err != nil {
			return types.ProbeError(err.Error())
		}
		if len(messages) == 0 {
			return types.NotFound()
		}

		logger.Info("mailbox match", "count", len(messages), "sender", filter.Sender, "subject", filter.Subject)
		if archive != nil {
			stored, err := archive.Store(messages)
			if err != nil {
				logger.Warn("archiving matched messages failed", "error", err)
			} else if stored > 0 {
				logger.Info("archived messages", "stored", stored)
			}
		}
		return types.Found()
	}
}
