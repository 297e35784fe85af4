// Package memory is an in-process Store used by tests and by
// STORE_DRIVER=memory. It mirrors the constraints the Postgres schema
// enforces: unique names, numbers and intents, one active cart per account.
package memory

import (
	"context"
	"maps"
	"slices"
	"sync"
	"time"

	"vatshop/internal/domain"
	"vatshop/internal/repository"
	"vatshop/internal/repository/account"
	"vatshop/internal/repository/cart"
	"vatshop/internal/repository/invoice"
	"vatshop/internal/repository/product"
	"vatshop/internal/repository/session"
)

type state struct {
	mu sync.RWMutex

	products  map[string]domain.Product
	carts     map[string]domain.Cart
	cartLines map[string][]domain.LineItem
	lineOwner map[string]string
	invoices  map[string]domain.Invoice
	accounts  map[string]domain.Account
	sessions  map[string]domain.Session
}

func newState() *state {
	return &state{
		products:  map[string]domain.Product{},
		carts:     map[string]domain.Cart{},
		cartLines: map[string][]domain.LineItem{},
		lineOwner: map[string]string{},
		invoices:  map[string]domain.Invoice{},
		accounts:  map[string]domain.Account{},
		sessions:  map[string]domain.Session{},
	}
}

// clone copies the maps and line slices. Callers must hold mu.
func (s *state) clone() *state {
	out := &state{
		products:  maps.Clone(s.products),
		carts:     maps.Clone(s.carts),
		cartLines: make(map[string][]domain.LineItem, len(s.cartLines)),
		lineOwner: maps.Clone(s.lineOwner),
		invoices:  maps.Clone(s.invoices),
		accounts:  maps.Clone(s.accounts),
		sessions:  maps.Clone(s.sessions),
	}
	for id, lines := range s.cartLines {
		out.cartLines[id] = slices.Clone(lines)
	}
	return out
}

// restore replaces the data with snap. Callers must hold mu.
func (s *state) restore(snap *state) {
	s.products = snap.products
	s.carts = snap.carts
	s.cartLines = snap.cartLines
	s.lineOwner = snap.lineOwner
	s.invoices = snap.invoices
	s.accounts = snap.accounts
	s.sessions = snap.sessions
}

type shared struct {
	// txMu is held for writing by a running transaction and for reading by
	// every repository call made outside one, so no write can land between
	// a transaction's snapshot and its rollback.
	txMu sync.RWMutex
	st   *state
	now  func() time.Time
}

// lock takes the locks needed to mutate state. Repositories of a transaction
// already run under txMu.
func (sh *shared) lock(inTx bool) func() {
	if !inTx {
		sh.txMu.RLock()
	}
	sh.st.mu.Lock()
	return func() {
		sh.st.mu.Unlock()
		if !inTx {
			sh.txMu.RUnlock()
		}
	}
}

// rlock takes the locks needed to read state.
func (sh *shared) rlock(inTx bool) func() {
	if !inTx {
		sh.txMu.RLock()
	}
	sh.st.mu.RLock()
	return func() {
		sh.st.mu.RUnlock()
		if !inTx {
			sh.txMu.RUnlock()
		}
	}
}

// Store implements repository.Store in memory. Transactions are serialized
// and rolled back by restoring a snapshot taken when they began. Calls made
// outside a transaction wait for the running one to finish, so an InTx
// callback must only use the Store it is given.
type Store struct {
	sh   *shared
	inTx bool
}

var _ repository.Store = (*Store)(nil)

// New returns an empty store.
func New() *Store {
	return &Store{sh: &shared{st: newState(), now: time.Now}}
}

// WithClock replaces the time source used for created_at and expiry checks.
func (s *Store) WithClock(now func() time.Time) *Store {
	s.sh.now = now
	return s
}

func (s *Store) Products() product.Repository { return &productRepo{sh: s.sh, tx: s.inTx} }
func (s *Store) Carts() cart.Repository       { return &cartRepo{sh: s.sh, tx: s.inTx} }
func (s *Store) Invoices() invoice.Repository { return &invoiceRepo{sh: s.sh, tx: s.inTx} }
func (s *Store) Accounts() account.Repository { return &accountRepo{sh: s.sh, tx: s.inTx} }
func (s *Store) Sessions() session.Repository { return &sessionRepo{sh: s.sh, tx: s.inTx} }

func (s *Store) InTx(ctx context.Context, fn func(tx repository.Store) error) error {
	if s.inTx {
		return fn(s)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.sh.txMu.Lock()
	defer s.sh.txMu.Unlock()

	s.sh.st.mu.Lock()
	snap := s.sh.st.clone()
	s.sh.st.mu.Unlock()

	if err := fn(&Store{sh: s.sh, inTx: true}); err != nil {
		s.sh.st.mu.Lock()
		s.sh.st.restore(snap)
		s.sh.st.mu.Unlock()
		return err
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	return ctx.Err()
}
