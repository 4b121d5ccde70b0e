// Package store owns the in-process transaction and collaborator
// collections. Every mutation builds a fresh slice and swaps it in under the
// lock, so readers only ever observe whole collections, never a partially
// applied update.
package store

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"vexpenses/internal/core"
)

// importIDPrefix and importIDBase reproduce the id scheme of imported rows:
// a fixed prefix with a monotonically increasing numeric suffix.
const (
	importIDPrefix = "EXP-"
	importIDBase   = 11000
)

var (
	ErrNotFound    = errors.New("not found")
	ErrNotPending  = errors.New("transaction is not pending")
	ErrDuplicateID = errors.New("duplicate id")
)

type Store struct {
	mu            sync.Mutex
	txs           []core.Transaction
	collabs       []core.Collaborator
	nextImportSeq int
}

// New creates a store seeded with the given collections. The slices are
// copied; callers keep no aliases into store state.
func New(txs []core.Transaction, collabs []core.Collaborator) *Store {
	s := &Store{
		txs:     append([]core.Transaction(nil), txs...),
		collabs: append([]core.Collaborator(nil), collabs...),
	}
	s.nextImportSeq = importIDBase + len(s.txs)
	return s
}

// Transactions returns a snapshot copy of the transaction collection,
// most recent first.
func (s *Store) Transactions() []core.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Transaction(nil), s.txs...)
}

// Collaborators returns a snapshot copy of the collaborator registry.
func (s *Store) Collaborators() []core.Collaborator {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Collaborator(nil), s.collabs...)
}

// Collaborator looks up a collaborator by id.
func (s *Store) Collaborator(id string) (core.Collaborator, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.collabs {
		if c.ID == id {
			return c, nil
		}
	}
	return core.Collaborator{}, ErrNotFound
}

// AddTransaction validates and prepends a transaction.
func (s *Store) AddTransaction(t core.Transaction) error {
	if err := t.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.hasTransactionLocked(t.ID) {
		return fmt.Errorf("%w: %s", ErrDuplicateID, t.ID)
	}
	next := make([]core.Transaction, 0, len(s.txs)+1)
	next = append(next, t)
	next = append(next, s.txs...)
	s.txs = next
	return nil
}

// DeleteTransaction removes a transaction by id.
func (s *Store) DeleteTransaction(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := make([]core.Transaction, 0, len(s.txs))
	found := false
	for _, t := range s.txs {
		if t.ID == id {
			found = true
			continue
		}
		next = append(next, t)
	}
	if !found {
		return ErrNotFound
	}
	s.txs = next
	return nil
}

// SetStatus moves a pending transaction to a terminal status. A transaction
// leaves pending exactly once; terminal states admit no further transition.
func (s *Store) SetStatus(id string, status core.Status) error {
	if !status.IsTerminal() {
		return core.ErrInvalidStatus
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	next := append([]core.Transaction(nil), s.txs...)
	for i, t := range next {
		if t.ID != id {
			continue
		}
		if t.Status != core.StatusPending {
			return ErrNotPending
		}
		next[i].Status = status
		s.txs = next
		return nil
	}
	return ErrNotFound
}

// AppendImportedBatch prepends a whole generated batch in one swap. Partial
// batches are never visible: validation failures reject the entire batch.
func (s *Store) AppendImportedBatch(batch []core.Transaction) error {
	for _, t := range batch {
		if err := t.Validate(); err != nil {
			return fmt.Errorf("imported row %s: %w", t.ID, err)
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range batch {
		if s.hasTransactionLocked(t.ID) {
			return fmt.Errorf("%w: %s", ErrDuplicateID, t.ID)
		}
	}
	next := make([]core.Transaction, 0, len(s.txs)+len(batch))
	next = append(next, batch...)
	next = append(next, s.txs...)
	s.txs = next
	return nil
}

// ReserveImportIDs hands out n transaction ids that cannot collide with
// existing ids or with a previous reservation.
func (s *Store) ReserveImportIDs(n int) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if base := importIDBase + len(s.txs); base > s.nextImportSeq {
		s.nextImportSeq = base
	}
	ids := make([]string, 0, n)
	for len(ids) < n {
		id := importIDPrefix + strconv.Itoa(s.nextImportSeq)
		s.nextImportSeq++
		if s.hasTransactionLocked(id) {
			continue
		}
		ids = append(ids, id)
	}
	return ids
}

// AddCollaborator validates and appends a collaborator.
func (s *Store) AddCollaborator(c core.Collaborator) error {
	if err := c.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.collabs {
		if existing.ID == c.ID {
			return fmt.Errorf("%w: %s", ErrDuplicateID, c.ID)
		}
	}
	next := append([]core.Collaborator(nil), s.collabs...)
	s.collabs = append(next, c)
	return nil
}

// DeleteCollaborator removes a collaborator from the registry. Transactions
// referencing that id keep their embedded snapshot unchanged: the snapshot is
// a deliberate denormalization, not a live foreign key.
func (s *Store) DeleteCollaborator(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := make([]core.Collaborator, 0, len(s.collabs))
	found := false
	for _, c := range s.collabs {
		if c.ID == id {
			found = true
			continue
		}
		next = append(next, c)
	}
	if !found {
		return ErrNotFound
	}
	s.collabs = next
	return nil
}

// UpdateCollaboratorAvatar replaces a collaborator's avatar and re-propagates
// it into every transaction snapshot carrying that collaborator id. Avatar is
// the one collaborator field that rewrites history; name and department edits
// have no path and historical snapshots keep them as-is.
func (s *Store) UpdateCollaboratorAvatar(id, avatarRef string) error {
	if strings.TrimSpace(avatarRef) == "" {
		return core.ErrInvalidValue
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	found := false
	collabs := append([]core.Collaborator(nil), s.collabs...)
	for i, c := range collabs {
		if c.ID == id {
			collabs[i].AvatarRef = avatarRef
			found = true
		}
	}
	if !found {
		return ErrNotFound
	}
	txs := append([]core.Transaction(nil), s.txs...)
	for i, t := range txs {
		if t.Collaborator.ID == id {
			txs[i].Collaborator.AvatarRef = avatarRef
		}
	}
	s.collabs = collabs
	s.txs = txs
	return nil
}

func (s *Store) hasTransactionLocked(id string) bool {
	for _, t := range s.txs {
		if t.ID == id {
			return true
		}
	}
	return false
}
