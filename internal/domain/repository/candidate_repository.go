package repository

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/material-dispo/internal/domain/entity"
)

// CandidateQuery filtros para recuperar candidatos de una partición,
// siempre ordenados por (date, seq_no).
type CandidateQuery struct {
	ProductID   string
	WarehouseID string
	Type        entity.CandidateType // opcional; "" = todos los tipos
	From        *time.Time           // opcional; date >= From
	To          *time.Time           // opcional; date <= To
}

// CandidateRepository puerto de persistencia del ledger de candidatos.
//
// Todas las operaciones son de alcance de partición (producto+bodega) y se
// ejecutan dentro del scope transaccional del caller: el repositorio nunca
// abre ni cierra transacciones propias.
type CandidateRepository interface {
	// Create inserta el candidato asignándole un SeqNo estrictamente mayor que
	// el de cualquier entrada existente (último en el orden de su fecha al
	// momento de insertar). expectedMaxSeqNo es el máximo SeqNo de la
	// partición leído por el caller; si otro escritor lo movió entre la
	// lectura y esta inserción, Create falla con
	// domain.ErrConcurrentModification y no escribe nada.
	Create(c *entity.Candidate, expectedMaxSeqNo int64) error

	GetByID(id string) (*entity.Candidate, error)

	// Query devuelve los candidatos que cumplen los filtros, ordenados por
	// (date, seq_no) ascendente.
	Query(q CandidateQuery) ([]*entity.Candidate, error)

	// FindPredecessorStock devuelve el candidato STOCK inmediatamente anterior
	// al punto (date, seqNo) de la partición, o nil si no existe. Como hay a
	// lo sumo un STOCK por fecha, "anterior" significa fecha estrictamente
	// menor.
	FindPredecessorStock(productID, warehouseID string, date time.Time, seqNo int64) (*entity.Candidate, error)

	// FindSuccessorStocks devuelve los STOCK con fecha estrictamente posterior
	// a date, ordenados ascendente.
	FindSuccessorStocks(productID, warehouseID string, date time.Time, seqNo int64) ([]*entity.Candidate, error)

	// FindStockAtDate devuelve el snapshot STOCK compartido de la fecha exacta,
	// o nil si la partición aún no tiene STOCK en esa posición.
	FindStockAtDate(productID, warehouseID string, date time.Time) (*entity.Candidate, error)

	// FindLatestStockAtOrBefore devuelve el STOCK más reciente con fecha <= at,
	// o nil. Soporta la consulta de stock disponible.
	FindLatestStockAtOrBefore(productID, warehouseID string, at time.Time) (*entity.Candidate, error)

	FindByGroupID(groupID string) ([]*entity.Candidate, error)

	// UpdateQuantity reescribe la cantidad de un candidato (propagación de
	// saldos STOCK). Falla con domain.ErrNotFound si el id no existe.
	UpdateQuantity(id string, qty decimal.Decimal) error

	// UpdateGroupID enlaza un candidato existente a un grupo demanda/suministro.
	UpdateGroupID(id, groupID string) error

	// Delete elimina un candidato con el mismo chequeo optimista que Create:
	// expectedMaxSeqNo es el máximo SeqNo de la partición leído por el caller;
	// si otro escritor lo movió, Delete falla con
	// domain.ErrConcurrentModification y no borra nada. La propagación hacia
	// adelante es responsabilidad del servicio de stock, no del repositorio.
	Delete(id string, expectedMaxSeqNo int64) error

	// MaxSeqNo devuelve el SeqNo máximo de la partición (0 si está vacía).
	// Es el snapshot que el caller pasa luego a Create.
	MaxSeqNo(productID, warehouseID string) (int64, error)
}
