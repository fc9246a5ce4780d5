// Package progress folds a learner's finished attempts into per-pack
// progress cards.
//
// The fold is pure: callers supply the attempts already filtered to finished,
// non-deleted rows whose exam and pack are live, ordered most recent first
// (created_at DESC, id DESC). Build does not re-sort its input; it relies on
// that order for the first-seen-wins rule that makes each section slot hold the
// most recent attempt.
package progress

import (
	"sort"
	"time"

	"github.com/phrazzld/examprep-api/internal/domain"
)

// Entry is one finished attempt joined with its exam and pack.
type Entry struct {
	AttemptID int64
	PackID    *int64
	PackTitle string
	System    domain.ExamSystem
	Section   domain.Section
	CreatedAt time.Time
}

// Card is the per-pack rollup shown to a learner.
type Card struct {
	PackID        int64               `json:"pack_id"`
	Title         string              `json:"title"`
	System        domain.ExamSystem   `json:"system"`
	Sections      domain.SectionSlots `json:"sections"`
	LastAttemptAt time.Time           `json:"last_attempt_at"`
}

// Build groups entries by pack and returns cards ordered by LastAttemptAt
// descending. Cards with equal LastAttemptAt keep the order in which their
// pack was first seen. Entries without a pack cannot form a card and are
// skipped. The result is never nil.
func Build(entries []Entry) []Card {
	cards := make([]*Card, 0)
	byPack := make(map[int64]*Card)

	for _, e := range entries {
		if e.PackID == nil {
			continue
		}

		card, ok := byPack[*e.PackID]
		if !ok {
			card = &Card{
				PackID:        *e.PackID,
				Title:         e.PackTitle,
				System:        e.System,
				LastAttemptAt: e.CreatedAt,
			}
			byPack[*e.PackID] = card
			cards = append(cards, card)
		}

		// first seen wins: with descending input this is the most recent attempt
		if card.Sections.Get(e.Section) == nil {
			card.Sections.Set(e.Section, e.AttemptID)
		}

		if e.CreatedAt.After(card.LastAttemptAt) {
			card.LastAttemptAt = e.CreatedAt
		}
	}

	sort.SliceStable(cards, func(i, j int) bool {
		return cards[i].LastAttemptAt.After(cards[j].LastAttemptAt)
	})

	out := make([]Card, len(cards))
	for i, c := range cards {
		out[i] = *c
	}
	return out
}
