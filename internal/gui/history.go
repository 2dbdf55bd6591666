package gui

import (
	"fmt"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"jordanella.com/tile-clicker-go/internal/database"
)

// RoundSource provides recorded rounds. *database.DB implements it.
type RoundSource interface {
	ListRounds(limit int) ([]*database.Round, error)
	GetRoundStats() (*database.RoundStats, error)
}

// HistoryPanel lists recorded rounds
type HistoryPanel struct {
	source RoundSource
	limit  int

	rounds   []*database.Round
	roundsMu sync.RWMutex

	roundsList *widget.List
	statsLabel *widget.Label
}

// NewHistoryPanel creates a panel showing the last limit rounds
func NewHistoryPanel(source RoundSource, limit int) *HistoryPanel {
	return &HistoryPanel{source: source, limit: limit}
}

// Build constructs the history UI
func (h *HistoryPanel) Build() fyne.CanvasObject {
	h.statsLabel = widget.NewLabel("No rounds recorded")

	refreshBtn := widget.NewButton("Refresh", func() {
		go h.Refresh()
	})

	h.roundsList = widget.NewList(
		func() int {
			h.roundsMu.RLock()
			defer h.roundsMu.RUnlock()
			return len(h.rounds)
		},
		func() fyne.CanvasObject {
			return widget.NewLabel("#0 15:04:05 status")
		},
		func(id widget.ListItemID, item fyne.CanvasObject) {
			h.roundsMu.RLock()
			defer h.roundsMu.RUnlock()
			if id >= len(h.rounds) {
				return
			}
			item.(*widget.Label).SetText(formatRound(h.rounds[id]))
		},
	)

	return container.NewBorder(
		container.NewHBox(h.statsLabel, refreshBtn),
		nil,
		nil,
		nil,
		h.roundsList,
	)
}

// Refresh reloads rounds from the source. Safe to call from any goroutine.
func (h *HistoryPanel) Refresh() error {
	rounds, err := h.source.ListRounds(h.limit)
	if err != nil {
		return err
	}
	stats, err := h.source.GetRoundStats()
	if err != nil {
		return err
	}

	h.roundsMu.Lock()
	h.rounds = rounds
	h.roundsMu.Unlock()

	summary := formatStats(stats)
	fyne.Do(func() {
		if h.statsLabel != nil {
			h.statsLabel.SetText(summary)
		}
		if h.roundsList != nil {
			h.roundsList.Refresh()
		}
	})
	return nil
}

func formatRound(r *database.Round) string {
	text := fmt.Sprintf("#%d %s %s", r.ID, r.StartedAt.Local().Format("15:04:05"), r.Status)
	switch r.Status {
	case database.RoundCompleted:
		text += fmt.Sprintf(" | %d found, %d/%d clicks ok, %dms",
			r.Detections, r.ClicksAttempted-r.ClicksFailed, r.ClicksAttempted, r.TotalMs)
		if r.FrameUnchanged {
			text += " (board unchanged)"
		}
	case database.RoundCaptureFailed:
		if r.ErrorMessage != nil {
			text += " | " + *r.ErrorMessage
		}
	}
	return text
}

func formatStats(s *database.RoundStats) string {
	if s.Total == 0 {
		return "No rounds recorded"
	}
	return fmt.Sprintf("Rounds: %d (%d failed) | Clicks: %d (%d failed) | Avg: %.0fms",
		s.Total, s.CaptureFailed, s.TotalClicks, s.FailedClicks, s.AverageTotalMs)
}
