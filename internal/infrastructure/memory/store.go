// Package memory implementa la unidad de trabajo del inventario en memoria (tests y modo dev).
// Cada transacción trabaja sobre una copia del estado y, si termina sin error, la copia reemplaza
// al estado vigente; un error descarta la copia completa.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/jhoicas/inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/shopspring/decimal"
)

var _ inventory.TxRunner = (*Store)(nil)

// Store estado compartido; las transacciones se serializan con mu.
//
// mu es global: todo el estado se clona y reemplaza en bloque, así que dos tenants
// tampoco corren en paralelo. Store es para tests y desarrollo local; en PostgreSQL la exclusión
// es por tenant (pg_advisory_xact_lock en TenantGuardRepo.LockTenant).
type Store struct {
	mu          sync.Mutex
	st          *state
	appendError error
}

type state struct {
	variants    map[string]entity.ProductVariant
	movements   []entity.StockMovement
	receivings  []entity.Receiving
	adjustments []entity.StockAdjustment
	opnames     []entity.StockOpname
}

// NewStore devuelve un store vacío.
func NewStore() *Store {
	return &Store{st: &state{variants: make(map[string]entity.ProductVariant)}}
}

// Run ejecuta fn sobre una copia del estado; Commit = reemplazar, Rollback = descartar.
func (s *Store) Run(ctx context.Context, fn func(repos inventory.Repos) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &txState{store: s, st: s.st.clone()}
	repos := inventory.Repos{
		Movements:   movementRepo{tx},
		Variants:    variantRepo{tx},
		Guard:       guardRepo{},
		Receivings:  receivingRepo{tx},
		Adjustments: adjustmentRepo{tx},
		Opnames:     opnameRepo{tx},
	}
	if err := fn(repos); err != nil {
		return err
	}
	s.st = tx.st
	return nil
}

// AddVariant registra una variante (el catálogo vive fuera del ledger).
func (s *Store) AddVariant(v entity.ProductVariant) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if v.CreatedAt.IsZero() {
		v.CreatedAt = time.Now()
	}
	s.st.variants[v.ID] = v
}

// SeedVariants atajo: crea variantes activas con SKU igual al ID.
func (s *Store) SeedVariants(tenantID string, ids ...string) {
	for _, id := range ids {
		s.AddVariant(entity.ProductVariant{ID: id, TenantID: tenantID, SKU: id, Name: id})
	}
}

// DeleteVariant marca la variante como borrada.
func (s *Store) DeleteVariant(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if v, ok := s.st.variants[id]; ok {
		now := time.Now()
		v.DeletedAt = &now
		s.st.variants[id] = v
	}
}

// FailNextAppend hace que el próximo Append de movimientos falle con err (simula caída del storage).
func (s *Store) FailNextAppend(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.appendError = err
}

// Movements copia de todos los movimientos del tenant en orden de inserción.
func (s *Store) Movements(tenantID string) []entity.StockMovement {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []entity.StockMovement
	for _, m := range s.st.movements {
		if m.TenantID == tenantID {
			out = append(out, m)
		}
	}
	return out
}

func (st *state) clone() *state {
	c := &state{
		variants:    make(map[string]entity.ProductVariant, len(st.variants)),
		movements:   append([]entity.StockMovement(nil), st.movements...),
		receivings:  make([]entity.Receiving, len(st.receivings)),
		adjustments: make([]entity.StockAdjustment, len(st.adjustments)),
		opnames:     make([]entity.StockOpname, len(st.opnames)),
	}
	for k, v := range st.variants {
		c.variants[k] = v
	}
	for i, r := range st.receivings {
		c.receivings[i] = copyReceiving(r)
	}
	for i, a := range st.adjustments {
		a.Items = append([]entity.StockAdjustmentItem(nil), a.Items...)
		c.adjustments[i] = a
	}
	for i, o := range st.opnames {
		c.opnames[i] = copyOpname(o)
	}
	return c
}

func copyReceiving(r entity.Receiving) entity.Receiving {
	r.Lines = append([]entity.ReceivingLine(nil), r.Lines...)
	return r
}

func copyOpname(o entity.StockOpname) entity.StockOpname {
	o.Items = append([]entity.StockOpnameItem(nil), o.Items...)
	return o
}

type txState struct {
	store *Store
	st    *state
}

// ──────────────────────────────────────────────────────────────────────────────
// Ledger
// ──────────────────────────────────────────────────────────────────────────────

type movementRepo struct{ tx *txState }

func (r movementRepo) Append(_ context.Context, movements []*entity.StockMovement) error {
	if err := r.tx.store.appendError; err != nil {
		r.tx.store.appendError = nil
		return fmt.Errorf("append movements: %w", err)
	}
	for _, m := range movements {
		r.tx.st.movements = append(r.tx.st.movements, *m)
	}
	return nil
}

func (r movementRepo) GetBalances(_ context.Context, tenantID string, variantIDs []string) (map[string]decimal.Decimal, error) {
	wanted := make(map[string]bool, len(variantIDs))
	for _, id := range variantIDs {
		wanted[id] = true
	}
	out := make(map[string]decimal.Decimal, len(variantIDs))
	for i := range r.tx.st.movements {
		m := &r.tx.st.movements[i]
		if m.TenantID != tenantID || !wanted[m.VariantID] {
			continue
		}
		out[m.VariantID] = out[m.VariantID].Add(m.Signed())
	}
	return out, nil
}

func (r movementRepo) ListByVariant(_ context.Context, tenantID, variantID string, limit, offset int) ([]*entity.StockMovement, error) {
	var all []*entity.StockMovement
	for i := len(r.tx.st.movements) - 1; i >= 0; i-- {
		m := r.tx.st.movements[i]
		if m.TenantID == tenantID && m.VariantID == variantID {
			all = append(all, &m)
		}
	}
	return page(all, limit, offset), nil
}

func (r movementRepo) ListByReference(_ context.Context, tenantID, referenceKind, referenceID string) ([]*entity.StockMovement, error) {
	var out []*entity.StockMovement
	for _, m := range r.tx.st.movements {
		if m.TenantID == tenantID && m.ReferenceKind == referenceKind && m.ReferenceID == referenceID {
			m := m
			out = append(out, &m)
		}
	}
	return out, nil
}

type variantRepo struct{ tx *txState }

func (r variantRepo) FindActiveIDs(_ context.Context, tenantID string, ids []string) (map[string]bool, error) {
	out := make(map[string]bool, len(ids))
	for _, id := range ids {
		v, ok := r.tx.st.variants[id]
		if ok && v.TenantID == tenantID && v.Active() {
			out[id] = true
		}
	}
	return out, nil
}

func (r variantRepo) ListActive(_ context.Context, tenantID string) ([]*entity.ProductVariant, error) {
	var out []*entity.ProductVariant
	for _, v := range r.tx.st.variants {
		if v.TenantID == tenantID && v.Active() {
			v := v
			out = append(out, &v)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SKU < out[j].SKU })
	return out, nil
}

// guardRepo no necesita bloquear: Store serializa todas las transacciones.
type guardRepo struct{}

func (guardRepo) LockTenant(context.Context, string) error { return nil }

// ──────────────────────────────────────────────────────────────────────────────
// Recepciones
// ──────────────────────────────────────────────────────────────────────────────

type receivingRepo struct{ tx *txState }

func (r receivingRepo) Create(_ context.Context, receiving *entity.Receiving) error {
	seen := make(map[string]bool, len(receiving.Lines))
	for _, l := range receiving.Lines {
		if seen[l.VariantID] {
			return fmt.Errorf("insert receiving line: duplicate variant %s", l.VariantID)
		}
		seen[l.VariantID] = true
	}
	r.tx.st.receivings = append(r.tx.st.receivings, copyReceiving(*receiving))
	return nil
}

func (r receivingRepo) find(tenantID, id string) *entity.Receiving {
	for i := range r.tx.st.receivings {
		if rc := &r.tx.st.receivings[i]; rc.ID == id && rc.TenantID == tenantID {
			return rc
		}
	}
	return nil
}

func (r receivingRepo) GetByID(_ context.Context, tenantID, id string) (*entity.Receiving, error) {
	rc := r.find(tenantID, id)
	if rc == nil {
		return nil, nil
	}
	out := copyReceiving(*rc)
	return &out, nil
}

func (r receivingRepo) TransitionStatus(_ context.Context, tenantID, id, from, to, actorID string, at time.Time) (bool, error) {
	rc := r.find(tenantID, id)
	if rc == nil || rc.Status != from {
		return false, nil
	}
	rc.Status = to
	switch to {
	case entity.ReceivingStatusPosted:
		rc.PostedAt, rc.PostedBy = &at, actorID
	case entity.ReceivingStatusVoid:
		rc.VoidedAt, rc.VoidedBy = &at, actorID
	}
	return true, nil
}

func (r receivingRepo) List(_ context.Context, tenantID, status string, limit, offset int) ([]*entity.Receiving, error) {
	var all []*entity.Receiving
	for i := len(r.tx.st.receivings) - 1; i >= 0; i-- {
		rc := r.tx.st.receivings[i]
		if rc.TenantID == tenantID && (status == "" || rc.Status == status) {
			rc = copyReceiving(rc)
			all = append(all, &rc)
		}
	}
	return page(all, limit, offset), nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Ajustes
// ──────────────────────────────────────────────────────────────────────────────

type adjustmentRepo struct{ tx *txState }

func (r adjustmentRepo) Create(_ context.Context, adj *entity.StockAdjustment) error {
	seen := make(map[string]bool, len(adj.Items))
	for _, it := range adj.Items {
		if seen[it.VariantID] {
			return fmt.Errorf("insert adjustment item: duplicate variant %s", it.VariantID)
		}
		seen[it.VariantID] = true
	}
	c := *adj
	c.Items = append([]entity.StockAdjustmentItem(nil), adj.Items...)
	r.tx.st.adjustments = append(r.tx.st.adjustments, c)
	return nil
}

func (r adjustmentRepo) GetByID(_ context.Context, tenantID, id string) (*entity.StockAdjustment, error) {
	for _, a := range r.tx.st.adjustments {
		if a.ID == id && a.TenantID == tenantID {
			a.Items = append([]entity.StockAdjustmentItem(nil), a.Items...)
			return &a, nil
		}
	}
	return nil, nil
}

func (r adjustmentRepo) List(_ context.Context, tenantID string, limit, offset int) ([]*entity.StockAdjustment, error) {
	var all []*entity.StockAdjustment
	for i := len(r.tx.st.adjustments) - 1; i >= 0; i-- {
		a := r.tx.st.adjustments[i]
		if a.TenantID == tenantID {
			a.Items = append([]entity.StockAdjustmentItem(nil), a.Items...)
			all = append(all, &a)
		}
	}
	return page(all, limit, offset), nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Opname
// ──────────────────────────────────────────────────────────────────────────────

type opnameRepo struct{ tx *txState }

// Create aplica la unicidad parcial (tenant, IN_PROGRESS) igual que el índice de PostgreSQL.
func (r opnameRepo) Create(_ context.Context, o *entity.StockOpname) error {
	if o.Status == entity.OpnameStatusInProgress {
		for _, existing := range r.tx.st.opnames {
			if existing.TenantID == o.TenantID && existing.Status == entity.OpnameStatusInProgress {
				return domain.ErrOpnameInProgress
			}
		}
	}
	seen := make(map[string]bool, len(o.Items))
	for _, it := range o.Items {
		if seen[it.VariantID] {
			return fmt.Errorf("insert opname item: duplicate variant %s", it.VariantID)
		}
		seen[it.VariantID] = true
	}
	r.tx.st.opnames = append(r.tx.st.opnames, copyOpname(*o))
	return nil
}

func (r opnameRepo) find(tenantID, id string) *entity.StockOpname {
	for i := range r.tx.st.opnames {
		if o := &r.tx.st.opnames[i]; o.ID == id && o.TenantID == tenantID {
			return o
		}
	}
	return nil
}

func (r opnameRepo) GetByID(_ context.Context, tenantID, id string) (*entity.StockOpname, error) {
	o := r.find(tenantID, id)
	if o == nil {
		return nil, nil
	}
	out := copyOpname(*o)
	return &out, nil
}

func (r opnameRepo) GetHeaderForUpdate(_ context.Context, tenantID, id string) (*entity.StockOpname, error) {
	o := r.find(tenantID, id)
	if o == nil {
		return nil, nil
	}
	out := *o
	out.Items = nil
	return &out, nil
}

func (r opnameRepo) GetInProgress(_ context.Context, tenantID string) (*entity.StockOpname, error) {
	for _, o := range r.tx.st.opnames {
		if o.TenantID == tenantID && o.Status == entity.OpnameStatusInProgress {
			o.Items = nil
			return &o, nil
		}
	}
	return nil, nil
}

func (r opnameRepo) GetItem(_ context.Context, tenantID, opnameID, itemID string) (*entity.StockOpnameItem, error) {
	o := r.find(tenantID, opnameID)
	if o == nil {
		return nil, nil
	}
	for _, it := range o.Items {
		if it.ID == itemID {
			return &it, nil
		}
	}
	return nil, nil
}

func (r opnameRepo) UpdateItemCount(_ context.Context, item *entity.StockOpnameItem) error {
	o := r.find(item.TenantID, item.OpnameID)
	if o == nil {
		return fmt.Errorf("update opname item: opname %s not found", item.OpnameID)
	}
	for i := range o.Items {
		if o.Items[i].ID == item.ID {
			o.Items[i] = *item
			return nil
		}
	}
	return fmt.Errorf("update opname item: item %s not found", item.ID)
}

func (r opnameRepo) UpdateItemDiffs(_ context.Context, items []entity.StockOpnameItem) error {
	for _, it := range items {
		o := r.find(it.TenantID, it.OpnameID)
		if o == nil {
			return fmt.Errorf("update opname diffs: opname %s not found", it.OpnameID)
		}
		for i := range o.Items {
			if o.Items[i].ID == it.ID {
				o.Items[i].DiffQty = it.DiffQty
			}
		}
	}
	return nil
}

func (r opnameRepo) TransitionStatus(_ context.Context, tenantID, id, from, to, actorID string, at time.Time) (bool, error) {
	o := r.find(tenantID, id)
	if o == nil || o.Status != from {
		return false, nil
	}
	o.Status = to
	switch to {
	case entity.OpnameStatusFinalized:
		o.FinalizedAt, o.FinalizedBy = &at, actorID
	case entity.OpnameStatusVoid:
		o.VoidedAt, o.VoidedBy = &at, actorID
	}
	return true, nil
}

func (r opnameRepo) List(_ context.Context, tenantID, status string, limit, offset int) ([]*entity.StockOpname, error) {
	var all []*entity.StockOpname
	for i := len(r.tx.st.opnames) - 1; i >= 0; i-- {
		o := r.tx.st.opnames[i]
		if o.TenantID == tenantID && (status == "" || o.Status == status) {
			o.Items = nil
			all = append(all, &o)
		}
	}
	return page(all, limit, offset), nil
}

func page[T any](all []T, limit, offset int) []T {
	if offset >= len(all) {
		return nil
	}
	end := offset + limit
	if limit <= 0 || end > len(all) {
		end = len(all)
	}
	return all[offset:end]
}
