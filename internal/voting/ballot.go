// Package voting implements per-session community validation: one confirm
// or flag vote per validation item, applied to session-local copies of the
// items so nothing leaks between sessions or back into the dataset.
package voting

import (
	"fmt"
	"math"
	"sync"

	"github.com/hyperengineering/aequiflow/internal/store"
	"github.com/hyperengineering/aequiflow/internal/types"
)

// Vote is a session's verdict on an item.
type Vote string

const (
	VoteNone    Vote = ""
	VoteConfirm Vote = "confirm"
	VoteFlag    Vote = "flag"
)

// Outcome describes what a vote request did.
type Outcome string

const (
	OutcomeRecorded     Outcome = "recorded"
	OutcomeAlreadyVoted Outcome = "already_voted"
)

// ItemView is a validation item as seen by one session.
type ItemView struct {
	types.ValidationItem
	TotalVotes        int  `json:"total_votes"`
	ConfirmPercentage int  `json:"confirm_percentage"`
	Vote              Vote `json:"vote,omitempty"`
}

// ConfirmPercentage returns round(confirm/(confirm+flag)*100), or 0 when
// there are no votes.
func ConfirmPercentage(confirm, flag int) int {
	total := confirm + flag
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(confirm) / float64(total) * 100))
}

// Ballot holds one session's copies of the validation items and its votes.
type Ballot struct {
	mu    sync.Mutex
	items []types.ValidationItem
	votes map[string]Vote
}

// NewBallot copies items so votes never touch the caller's slice.
func NewBallot(items []types.ValidationItem) *Ballot {
	return &Ballot{
		items: append([]types.ValidationItem(nil), items...),
		votes: make(map[string]Vote),
	}
}

// Confirm casts a confirm vote on the item.
func (b *Ballot) Confirm(id string) (ItemView, Outcome, error) {
	return b.cast(id, VoteConfirm)
}

// Flag casts a flag vote on the item.
func (b *Ballot) Flag(id string) (ItemView, Outcome, error) {
	return b.cast(id, VoteFlag)
}

// cast increments the matching counter once. Any later vote on the same
// item returns OutcomeAlreadyVoted and leaves the counts unchanged.
func (b *Ballot) cast(id string, v Vote) (ItemView, Outcome, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	i := b.indexOf(id)
	if i < 0 {
		return ItemView{}, "", fmt.Errorf("validation item %q: %w", id, store.ErrNotFound)
	}

	if b.votes[id] != VoteNone {
		return b.view(i), OutcomeAlreadyVoted, nil
	}

	switch v {
	case VoteConfirm:
		b.items[i].ConfirmCount++
	case VoteFlag:
		b.items[i].FlagCount++
	default:
		return ItemView{}, "", fmt.Errorf("unknown vote %q", v)
	}
	b.votes[id] = v
	return b.view(i), OutcomeRecorded, nil
}

// Item returns one item as seen by this session.
func (b *Ballot) Item(id string) (ItemView, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	i := b.indexOf(id)
	if i < 0 {
		return ItemView{}, fmt.Errorf("validation item %q: %w", id, store.ErrNotFound)
	}
	return b.view(i), nil
}

// Items returns every item as seen by this session.
func (b *Ballot) Items() []ItemView {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]ItemView, len(b.items))
	for i := range b.items {
		out[i] = b.view(i)
	}
	return out
}

// Summary aggregates the session's view of community validation.
type Summary struct {
	Items            int `json:"items"`
	VotesCast        int `json:"votes_cast"`
	TotalValidations int `json:"total_validations"`
	Confirmed        int `json:"confirmed"`
	Flagged          int `json:"flagged"`
}

// Summary returns the session's validation totals.
func (b *Ballot) Summary() Summary {
	b.mu.Lock()
	defer b.mu.Unlock()

	s := Summary{Items: len(b.items), VotesCast: len(b.votes)}
	for _, item := range b.items {
		s.Confirmed += item.ConfirmCount
		s.Flagged += item.FlagCount
	}
	s.TotalValidations = s.Confirmed + s.Flagged
	return s
}

// indexOf must be called with mu held.
func (b *Ballot) indexOf(id string) int {
	for i, item := range b.items {
		if item.ID == id {
			return i
		}
	}
	return -1
}

// view must be called with mu held.
func (b *Ballot) view(i int) ItemView {
	item := b.items[i]
	return ItemView{
		ValidationItem:    item,
		TotalVotes:        item.ConfirmCount + item.FlagCount,
		ConfirmPercentage: ConfirmPercentage(item.ConfirmCount, item.FlagCount),
		Vote:              b.votes[item.ID],
	}
}
