package memory

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/material-dispo/internal/domain"
	"github.com/jhoicas/material-dispo/internal/domain/entity"
	"github.com/jhoicas/material-dispo/internal/domain/repository"
)

var _ repository.CandidateRepository = (*CandidateRepository)(nil)

// CandidateRepository implementación en memoria del ledger de candidatos.
// Se usa en tests y en modo embebido (sin PostgreSQL). El SeqNo es un contador
// global del store, por lo que también ordena entre particiones.
type CandidateRepository struct {
	mu         sync.Mutex
	candidates []*entity.Candidate
	nextSeqNo  int64
}

// NewCandidateRepository construye el repositorio en memoria vacío.
func NewCandidateRepository() *CandidateRepository {
	return &CandidateRepository{nextSeqNo: 1}
}

// Create inserta el candidato con el siguiente SeqNo global. Verifica que el
// máximo SeqNo de la partición no haya cambiado desde la lectura del caller.
func (r *CandidateRepository) Create(c *entity.Candidate, expectedMaxSeqNo int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.partitionMaxSeqLocked(c.ProductID, c.WarehouseID) != expectedMaxSeqNo {
		return domain.ErrConcurrentModification
	}

	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	c.SeqNo = r.nextSeqNo
	r.nextSeqNo++
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now()
	}

	stored := *c
	r.candidates = append(r.candidates, &stored)
	return nil
}

// GetByID devuelve una copia del candidato, o nil si no existe.
func (r *CandidateRepository) GetByID(id string) (*entity.Candidate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.candidates {
		if c.ID == id {
			cp := *c
			return &cp, nil
		}
	}
	return nil, nil
}

// Query filtra y ordena por (date, seq_no) ascendente.
func (r *CandidateRepository) Query(q repository.CandidateQuery) ([]*entity.Candidate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*entity.Candidate
	for _, c := range r.candidates {
		if c.ProductID != q.ProductID || c.WarehouseID != q.WarehouseID {
			continue
		}
		if q.Type != "" && c.Type != q.Type {
			continue
		}
		if q.From != nil && c.Date.Before(*q.From) {
			continue
		}
		if q.To != nil && c.Date.After(*q.To) {
			continue
		}
		cp := *c
		out = append(out, &cp)
	}
	sortByPartitionOrder(out)
	return out, nil
}

// FindPredecessorStock devuelve el STOCK con la mayor fecha estrictamente
// anterior a date (hay a lo sumo un STOCK por fecha en la partición).
func (r *CandidateRepository) FindPredecessorStock(productID, warehouseID string, date time.Time, _ int64) (*entity.Candidate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var pred *entity.Candidate
	for _, c := range r.candidates {
		if !isPartitionStock(c, productID, warehouseID) || !c.Date.Before(date) {
			continue
		}
		if pred == nil || c.Date.After(pred.Date) {
			pred = c
		}
	}
	if pred == nil {
		return nil, nil
	}
	cp := *pred
	return &cp, nil
}

// FindSuccessorStocks devuelve los STOCK con fecha posterior a date, ordenados.
func (r *CandidateRepository) FindSuccessorStocks(productID, warehouseID string, date time.Time, _ int64) ([]*entity.Candidate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*entity.Candidate
	for _, c := range r.candidates {
		if isPartitionStock(c, productID, warehouseID) && c.Date.After(date) {
			cp := *c
			out = append(out, &cp)
		}
	}
	sortByPartitionOrder(out)
	return out, nil
}

// FindStockAtDate devuelve el snapshot compartido de la fecha exacta, o nil.
func (r *CandidateRepository) FindStockAtDate(productID, warehouseID string, date time.Time) (*entity.Candidate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, c := range r.candidates {
		if isPartitionStock(c, productID, warehouseID) && c.Date.Equal(date) {
			cp := *c
			return &cp, nil
		}
	}
	return nil, nil
}

// FindLatestStockAtOrBefore devuelve el STOCK más reciente con fecha <= at.
func (r *CandidateRepository) FindLatestStockAtOrBefore(productID, warehouseID string, at time.Time) (*entity.Candidate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var latest *entity.Candidate
	for _, c := range r.candidates {
		if !isPartitionStock(c, productID, warehouseID) || c.Date.After(at) {
			continue
		}
		if latest == nil || c.Date.After(latest.Date) {
			latest = c
		}
	}
	if latest == nil {
		return nil, nil
	}
	cp := *latest
	return &cp, nil
}

// FindByGroupID devuelve los candidatos del grupo ordenados por SeqNo.
func (r *CandidateRepository) FindByGroupID(groupID string) ([]*entity.Candidate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*entity.Candidate
	for _, c := range r.candidates {
		if groupID != "" && c.GroupID == groupID {
			cp := *c
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SeqNo < out[j].SeqNo })
	return out, nil
}

// UpdateQuantity reescribe la cantidad del candidato.
func (r *CandidateRepository) UpdateQuantity(id string, qty decimal.Decimal) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.candidates {
		if c.ID == id {
			c.Quantity = qty
			return nil
		}
	}
	return domain.ErrNotFound
}

// UpdateGroupID enlaza el candidato al grupo indicado.
func (r *CandidateRepository) UpdateGroupID(id, groupID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.candidates {
		if c.ID == id {
			c.GroupID = groupID
			return nil
		}
	}
	return domain.ErrNotFound
}

// Delete elimina el candidato por id, verificando primero que el máximo SeqNo
// de su partición siga siendo el que leyó el caller.
func (r *CandidateRepository) Delete(id string, expectedMaxSeqNo int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, c := range r.candidates {
		if c.ID == id {
			if r.partitionMaxSeqLocked(c.ProductID, c.WarehouseID) != expectedMaxSeqNo {
				return domain.ErrConcurrentModification
			}
			r.candidates = append(r.candidates[:i], r.candidates[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotFound
}

// MaxSeqNo devuelve el SeqNo máximo de la partición (0 si está vacía).
func (r *CandidateRepository) MaxSeqNo(productID, warehouseID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.partitionMaxSeqLocked(productID, warehouseID), nil
}

// All devuelve todos los candidatos del store ordenados por SeqNo; soporte
// para tests de escenarios multi-bodega.
func (r *CandidateRepository) All() []*entity.Candidate {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]*entity.Candidate, 0, len(r.candidates))
	for _, c := range r.candidates {
		cp := *c
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SeqNo < out[j].SeqNo })
	return out
}

func (r *CandidateRepository) partitionMaxSeqLocked(productID, warehouseID string) int64 {
	var max int64
	for _, c := range r.candidates {
		if c.ProductID == productID && c.WarehouseID == warehouseID && c.SeqNo > max {
			max = c.SeqNo
		}
	}
	return max
}

func isPartitionStock(c *entity.Candidate, productID, warehouseID string) bool {
	return c.Type == entity.CandidateTypeStock && c.ProductID == productID && c.WarehouseID == warehouseID
}

func sortByPartitionOrder(cs []*entity.Candidate) {
	sort.Slice(cs, func(i, j int) bool {
		if !cs[i].Date.Equal(cs[j].Date) {
			return cs[i].Date.Before(cs[j].Date)
		}
		return cs[i].SeqNo < cs[j].SeqNo
	})
}
