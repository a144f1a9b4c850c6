package match

import (
	"log/slog"
	"time"

	"github.com/poiesic/dealflow/core"
	"github.com/poiesic/dealflow/rank"
)

// MatchMonitor receives callbacks at each stage of a match.
// Callbacks for one request are made from the calling goroutine, except
// ReasoningFallback which may be called from worker goroutines.
type MatchMonitor interface {
	Start(description string)
	AfterEmbedding(dimension int)
	AfterRanking(results []rank.Result)
	ReasoningFallback(signalID int64, err error)
	Finish(response *core.MatchResponse)
}

// noopMonitor is a no-op implementation of MatchMonitor
type noopMonitor struct{}

var _ MatchMonitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ string)                     {}
func (n *noopMonitor) AfterEmbedding(_ int)               {}
func (n *noopMonitor) AfterRanking(_ []rank.Result)       {}
func (n *noopMonitor) ReasoningFallback(_ int64, _ error) {}
func (n *noopMonitor) Finish(_ *core.MatchResponse)       {}

// LogMonitor writes each stage of a match to a logger at debug level, with
// elapsed time since Start.
type LogMonitor struct {
	logger  *slog.Logger
	started time.Time
}

var _ MatchMonitor = (*LogMonitor)(nil)

// NewLogMonitor creates a monitor for a single match request.
func NewLogMonitor(logger *slog.Logger) *LogMonitor {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogMonitor{logger: logger.With("component", "match-monitor")}
}

func (m *LogMonitor) Start(description string) {
	m.started = time.Now()
	m.logger.Debug("match started", "description_length", len([]rune(description)))
}

func (m *LogMonitor) AfterEmbedding(dimension int) {
	m.logger.Debug("query embedded", "dimension", dimension, "elapsed", time.Since(m.started))
}

func (m *LogMonitor) AfterRanking(results []rank.Result) {
	ids := make([]int64, len(results))
	for i, r := range results {
		ids[i] = r.Signal.ID
	}
	m.logger.Debug("ranked candidates", "count", len(results), "ids", ids, "elapsed", time.Since(m.started))
}

func (m *LogMonitor) ReasoningFallback(signalID int64, err error) {
	m.logger.Debug("reasoning fallback", "signal", signalID, "err", err)
}

func (m *LogMonitor) Finish(response *core.MatchResponse) {
	m.logger.Debug("match finished", "matches", len(response.Matches), "elapsed", time.Since(m.started))
}
