// Package memory provides a process-local implementation of every storage
// contract. A transaction holds the store-wide lock and restores a snapshot
// on error, so concurrent writers are fully serialized.
package memory

import (
	"context"
	"sync"

	"jobquote/internal/core/id"
	"jobquote/internal/core/tx"
	"jobquote/internal/core/types"
	"jobquote/internal/domain/audit"
	"jobquote/internal/domain/quotation"
)

// Store holds all in-memory state.
type Store struct {
	mu sync.Mutex

	quotations map[id.ID]*quotation.Quotation
	audit      []audit.Entry

	machines  map[id.ID]types.Money
	auxTypes  map[id.ID]types.Money
	customers map[id.ID]struct{}
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		quotations: make(map[id.ID]*quotation.Quotation),
		machines:   make(map[id.ID]types.Money),
		auxTypes:   make(map[id.ID]types.Money),
		customers:  make(map[id.ID]struct{}),
	}
}

type txKey struct{}

// inTx reports whether ctx carries a transaction of this store.
func (s *Store) inTx(ctx context.Context) bool {
	owner, ok := ctx.Value(txKey{}).(*Store)
	return ok && owner == s
}

// do runs fn under the store lock unless ctx already holds it.
func (s *Store) do(ctx context.Context, fn func() error) error {
	if s.inTx(ctx) {
		return fn()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn()
}

// TxManager returns a tx.Manager bound to this store.
func (s *Store) TxManager() *TxManager { return &TxManager{store: s} }

// Quotations returns the quotation repository.
func (s *Store) Quotations() *QuotationRepo { return &QuotationRepo{store: s} }

// Audit returns the audit store.
func (s *Store) Audit() *AuditStore { return &AuditStore{store: s} }

// ReferenceData returns the reference data accessor.
func (s *Store) ReferenceData() *ReferenceData { return &ReferenceData{store: s} }

// Reports returns the report repository.
func (s *Store) Reports() *ReportRepo { return &ReportRepo{store: s} }

// TxManager implements tx.Manager over a Store.
type TxManager struct {
	store *Store
}

var _ tx.ReadOnlyManager = (*TxManager)(nil)

// RunInTransaction holds the store lock for the duration of fn.
// Nested calls reuse the outer transaction.
func (m *TxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	s := m.store
	if s.inTx(ctx) {
		return fn(ctx)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snap := s.snapshot()
	if err := fn(context.WithValue(ctx, txKey{}, s)); err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

// ReadOnly runs fn under the store lock. Writes are not prevented.
func (m *TxManager) ReadOnly(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.RunInTransaction(ctx, fn)
}

type snapshot struct {
	quotations map[id.ID]*quotation.Quotation
	auditLen   int
}

func (s *Store) snapshot() snapshot {
	qs := make(map[id.ID]*quotation.Quotation, len(s.quotations))
	for k, q := range s.quotations {
		qs[k] = cloneQuotation(q)
	}
	return snapshot{quotations: qs, auditLen: len(s.audit)}
}

func (s *Store) restore(snap snapshot) {
	s.quotations = snap.quotations
	s.audit = s.audit[:snap.auditLen]
}

// AddMachine registers a machine with its hourly rate.
func (s *Store) AddMachine(machineID id.ID, rate types.Money) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.machines[machineID] = rate
}

// AddAuxiliaryType registers an auxiliary cost type with its default cost.
func (s *Store) AddAuxiliaryType(auxTypeID id.ID, defaultCost types.Money) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.auxTypes[auxTypeID] = defaultCost
}

// AddCustomer registers a customer.
func (s *Store) AddCustomer(customerID id.ID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.customers[customerID] = struct{}{}
}

func cloneQuotation(q *quotation.Quotation) *quotation.Quotation {
	c := *q
	if q.ValidUntil != nil {
		v := *q.ValidUntil
		c.ValidUntil = &v
	}
	c.Parts = make([]quotation.Part, len(q.Parts))
	for i, p := range q.Parts {
		c.Parts[i] = clonePart(p)
	}
	return &c
}

func clonePart(p quotation.Part) quotation.Part {
	c := p
	c.Operations = append(make([]quotation.Operation, 0, len(p.Operations)), p.Operations...)
	c.AuxiliaryCosts = append(make([]quotation.AuxiliaryCost, 0, len(p.AuxiliaryCosts)), p.AuxiliaryCosts...)
	return c
}
