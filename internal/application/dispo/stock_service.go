package dispo

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/material-dispo/internal/domain"
	"github.com/jhoicas/material-dispo/internal/domain/entity"
	"github.com/jhoicas/material-dispo/internal/domain/repository"
	"github.com/jhoicas/material-dispo/pkg/logger"
)

// MovementSpec describe un movimiento a aplicar sobre el ledger.
// Qty es siempre positiva; el signo del efecto lo determina Type.
type MovementSpec struct {
	Type         entity.CandidateType
	ProductID    string
	WarehouseID  string
	BPartnerID   string
	Date         time.Time
	Qty          decimal.Decimal
	GroupID      string
	BusinessCase entity.BusinessCase
	ClientID     string
	OrgID        string
}

// StockCandidateService mantiene la serie STOCK derivada de cada partición:
// inserta movimientos, crea o actualiza el snapshot compartido de la fecha y
// propaga el delta a todos los STOCK posteriores (invariante de saldo corrido).
type StockCandidateService struct {
	log *logger.Logger
}

// NewStockCandidateService construye el servicio.
func NewStockCandidateService(log *logger.Logger) *StockCandidateService {
	return &StockCandidateService{log: log}
}

// ApplyMovement inserta el movimiento y mantiene la serie STOCK:
//
//  1. Inserta el candidato movimiento; el store le asigna SeqNo, último entre
//     las entradas de su fecha (el desempate queda fijado por orden de llegada
//     y nunca se reordena retroactivamente).
//  2. Toma como base el STOCK inmediatamente anterior (0 si no hay).
//  3. Si la fecha aún no tiene snapshot STOCK, crea uno con base+delta; si ya
//     existe (snapshot compartido de la posición), le suma el delta.
//  4. Suma el delta a todos los STOCK estrictamente posteriores.
//
// Aplicar luego el delta inverso en la misma fecha deshace exactamente la
// propagación.
func (s *StockCandidateService) ApplyMovement(repo repository.CandidateRepository, spec MovementSpec) (*entity.Candidate, error) {
	if !spec.Type.IsMovement() {
		return nil, fmt.Errorf("%w: tipo de movimiento %q", domain.ErrInvalidInput, spec.Type)
	}
	if !spec.Qty.IsPositive() {
		return nil, fmt.Errorf("%w: la cantidad debe ser positiva", domain.ErrInvalidInput)
	}
	if spec.ProductID == "" || spec.WarehouseID == "" || spec.Date.IsZero() {
		return nil, fmt.Errorf("%w: producto, bodega y fecha son obligatorios", domain.ErrInvalidInput)
	}

	maxSeq, err := repo.MaxSeqNo(spec.ProductID, spec.WarehouseID)
	if err != nil {
		return nil, fmt.Errorf("leer seq máximo de la partición: %w", err)
	}

	mov := &entity.Candidate{
		Type:         spec.Type,
		ProductID:    spec.ProductID,
		WarehouseID:  spec.WarehouseID,
		BPartnerID:   spec.BPartnerID,
		Date:         spec.Date,
		Quantity:     spec.Qty,
		GroupID:      spec.GroupID,
		BusinessCase: spec.BusinessCase,
		ClientID:     spec.ClientID,
		OrgID:        spec.OrgID,
	}
	if err := repo.Create(mov, maxSeq); err != nil {
		return nil, err
	}
	delta := mov.StockDelta()

	if err := s.applyDeltaToStocks(repo, mov, delta); err != nil {
		return nil, err
	}

	s.log.Debug().
		Str("product_id", spec.ProductID).
		Str("warehouse_id", spec.WarehouseID).
		Str("type", string(spec.Type)).
		Str("qty", spec.Qty.String()).
		Int64("seq_no", mov.SeqNo).
		Msg("movimiento aplicado al ledger")

	return mov, nil
}

// DeleteMovement elimina un movimiento reaplicando su delta negado: el
// snapshot de su fecha y todos los STOCK posteriores vuelven al valor que
// tendrían si el movimiento nunca hubiera existido.
func (s *StockCandidateService) DeleteMovement(repo repository.CandidateRepository, id string) error {
	mov, err := repo.GetByID(id)
	if err != nil {
		return err
	}
	if mov == nil {
		return fmt.Errorf("%w: candidato %s", domain.ErrNotFound, id)
	}
	if !mov.Type.IsMovement() {
		return fmt.Errorf("%w: solo se eliminan movimientos, no snapshots STOCK", domain.ErrInvalidInput)
	}

	// La reversa recorre el mismo sufijo STOCK que una inserción, así que exige
	// la misma serialización de partición: snapshot de SeqNo antes de tocar
	// nada, y el store rechaza con ErrConcurrentModification si otro escritor
	// se adelantó (el orquestador reintenta).
	maxSeq, err := repo.MaxSeqNo(mov.ProductID, mov.WarehouseID)
	if err != nil {
		return fmt.Errorf("leer seq máximo de la partición: %w", err)
	}
	if err := repo.Delete(id, maxSeq); err != nil {
		return err
	}

	delta := mov.StockDelta().Neg()
	stockAt, err := repo.FindStockAtDate(mov.ProductID, mov.WarehouseID, mov.Date)
	if err != nil {
		return err
	}
	if stockAt != nil {
		if err := repo.UpdateQuantity(stockAt.ID, stockAt.Quantity.Add(delta)); err != nil {
			return err
		}
	}
	return s.propagateForward(repo, mov.ProductID, mov.WarehouseID, mov.Date, mov.SeqNo, delta)
}

func (s *StockCandidateService) applyDeltaToStocks(repo repository.CandidateRepository, mov *entity.Candidate, delta decimal.Decimal) error {
	stockAt, err := repo.FindStockAtDate(mov.ProductID, mov.WarehouseID, mov.Date)
	if err != nil {
		return err
	}
	if stockAt == nil {
		pred, err := repo.FindPredecessorStock(mov.ProductID, mov.WarehouseID, mov.Date, mov.SeqNo)
		if err != nil {
			return err
		}
		base := decimal.Zero
		if pred != nil {
			base = pred.Quantity
		}
		stock := &entity.Candidate{
			Type:        entity.CandidateTypeStock,
			ProductID:   mov.ProductID,
			WarehouseID: mov.WarehouseID,
			Date:        mov.Date,
			Quantity:    base.Add(delta),
			ClientID:    mov.ClientID,
			OrgID:       mov.OrgID,
		}
		// El movimiento recién insertado es ahora el máximo de la partición.
		if err := repo.Create(stock, mov.SeqNo); err != nil {
			return err
		}
	} else {
		if err := repo.UpdateQuantity(stockAt.ID, stockAt.Quantity.Add(delta)); err != nil {
			return err
		}
	}
	return s.propagateForward(repo, mov.ProductID, mov.WarehouseID, mov.Date, mov.SeqNo, delta)
}

func (s *StockCandidateService) propagateForward(repo repository.CandidateRepository, productID, warehouseID string, date time.Time, seqNo int64, delta decimal.Decimal) error {
	succs, err := repo.FindSuccessorStocks(productID, warehouseID, date, seqNo)
	if err != nil {
		return err
	}
	for _, sc := range succs {
		if err := repo.UpdateQuantity(sc.ID, sc.Quantity.Add(delta)); err != nil {
			return err
		}
	}
	return nil
}

// VerifyPartition comprueba los invariantes del ledger sobre una partición:
// orden total estricto por (date, seq_no) y saldo corrido de los STOCK
// (cada snapshot igual a la suma de los deltas de movimiento hasta su fecha).
// Un invariante roto se registra con el volcado completo de la partición y se
// reporta como domain.ErrConsistencyViolation.
func (s *StockCandidateService) VerifyPartition(repo repository.CandidateRepository, productID, warehouseID string) error {
	all, err := repo.Query(repository.CandidateQuery{ProductID: productID, WarehouseID: warehouseID})
	if err != nil {
		return err
	}

	var prev *entity.Candidate
	for _, c := range all {
		if prev != nil && !prev.Before(c.Date, c.SeqNo) {
			return s.reportViolation(all, productID, warehouseID,
				fmt.Sprintf("orden no estricto entre seq %d y seq %d", prev.SeqNo, c.SeqNo))
		}
		prev = c
	}

	for _, stock := range all {
		if stock.Type != entity.CandidateTypeStock {
			continue
		}
		expected := decimal.Zero
		for _, m := range all {
			if m.Type.IsMovement() && !m.Date.After(stock.Date) {
				expected = expected.Add(m.StockDelta())
			}
		}
		if !stock.Quantity.Equal(expected) {
			return s.reportViolation(all, productID, warehouseID,
				fmt.Sprintf("STOCK seq %d tiene %s, esperado %s", stock.SeqNo, stock.Quantity, expected))
		}
	}
	return nil
}

func (s *StockCandidateService) reportViolation(all []*entity.Candidate, productID, warehouseID, detail string) error {
	dump := s.log.Error().
		Str("product_id", productID).
		Str("warehouse_id", warehouseID).
		Str("detail", detail)
	for _, c := range all {
		dump = dump.Str(fmt.Sprintf("seq_%d", c.SeqNo),
			fmt.Sprintf("%s %s @%s qty=%s", c.Type, c.ID, c.Date.Format(time.RFC3339), c.Quantity))
	}
	dump.Msg("invariante del ledger violado; partición volcada")
	return fmt.Errorf("%w: %s", domain.ErrConsistencyViolation, detail)
}
