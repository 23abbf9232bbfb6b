package telemetry

import (
	"fmt"
	"log/slog"
)

// BookmarkType identifies the type of bookmark.
type BookmarkType string

const (
	BookmarkPopulationPeak BookmarkType = "population_peak"
	BookmarkSwarmLost      BookmarkType = "swarm_lost"
	BookmarkFieldHotspot   BookmarkType = "field_hotspot"
)

// Bookmark represents an automatically triggered bookmark.
type Bookmark struct {
	Type        BookmarkType `csv:"type"`
	Tick        int64        `csv:"tick"`
	Description string       `csv:"description"`
}

// LogBookmark logs the bookmark using slog.
func (b Bookmark) LogBookmark() {
	slog.Info("bookmark",
		"type", string(b.Type),
		"tick", b.Tick,
		"description", b.Description,
	)
}

// BookmarkDetector flags windows worth a closer look.
type BookmarkDetector struct {
	// Rolling history (circular buffer)
	history     []WindowStats
	historySize int
	historyIdx  int
	historyFull bool

	peakAgents int // largest AgentsMax seen so far
}

// NewBookmarkDetector creates a detector with the given history size.
func NewBookmarkDetector(historySize int) *BookmarkDetector {
	if historySize < 3 {
		historySize = 3
	}
	return &BookmarkDetector{
		history:     make([]WindowStats, historySize),
		historySize: historySize,
	}
}

// Check analyzes the latest stats and returns any triggered bookmarks.
func (bd *BookmarkDetector) Check(stats WindowStats) []Bookmark {
	var bookmarks []Bookmark

	// Population peak: a new high of at least 10 vehicles, double the old one
	if stats.AgentsMax >= 10 && stats.AgentsMax >= 2*bd.peakAgents {
		bookmarks = append(bookmarks, Bookmark{
			Type:        BookmarkPopulationPeak,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("Vehicle count peaked at %d (previous peak %d)", stats.AgentsMax, bd.peakAgents),
		})
	}
	bd.peakAgents = max(bd.peakAgents, stats.AgentsMax)

	// Swarm lost: every vehicle left the viewport during the window
	if stats.Agents == 0 && stats.Culled > 0 && stats.Resets == 0 {
		bookmarks = append(bookmarks, Bookmark{
			Type:        BookmarkSwarmLost,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("All vehicles left the viewport (%d culled)", stats.Culled),
		})
	}

	if b := bd.checkFieldHotspot(stats); b != nil {
		bookmarks = append(bookmarks, *b)
	}

	bd.addToHistory(stats)
	return bookmarks
}

func (bd *BookmarkDetector) addToHistory(stats WindowStats) {
	bd.history[bd.historyIdx] = stats
	bd.historyIdx = (bd.historyIdx + 1) % bd.historySize
	if bd.historyIdx == 0 {
		bd.historyFull = true
	}
}

func (bd *BookmarkDetector) getHistory() []WindowStats {
	if bd.historyFull {
		return bd.history
	}
	return bd.history[:bd.historyIdx]
}

// checkFieldHotspot fires when the brightest blue tile is more than 3x the
// rolling average, which usually means vehicles have bunched up.
func (bd *BookmarkDetector) checkFieldHotspot(stats WindowStats) *Bookmark {
	history := bd.getHistory()
	if len(history) < 3 {
		return nil
	}

	var total float64
	for _, h := range history {
		total += h.BlueMax
	}
	avg := total / float64(len(history))
	if avg <= 0 || stats.BlueMax <= 3*avg {
		return nil
	}

	return &Bookmark{
		Type:        BookmarkFieldHotspot,
		Tick:        stats.WindowEndTick,
		Description: fmt.Sprintf("Blue peak %.1f is %.1fx average (%.1f)", stats.BlueMax, stats.BlueMax/avg, avg),
	}
}
