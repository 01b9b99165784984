package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/material-dispo/internal/domain"
	"github.com/jhoicas/material-dispo/internal/domain/entity"
	"github.com/jhoicas/material-dispo/internal/domain/repository"
)

var _ repository.CandidateRepository = (*CandidateRepo)(nil)

// CandidateRepo implementación del ledger de candidatos sobre PostgreSQL
// (usable con pool o tx). Tabla md_candidates, indexada por
// (product_id, warehouse_id, date, seq_no) y por group_id; seq_no sale de la
// secuencia global md_candidate_seq_no.
//
// La serialización por partición se logra con pg_advisory_xact_lock: la
// propagación toca un sufijo no acotado de filas STOCK, así que un lock
// exclusivo por partición durante la inserción equivale a bloquear ese sufijo.
type CandidateRepo struct {
	q Querier
}

// NewCandidateRepository construye el adaptador. Pasar pool o tx (Querier).
func NewCandidateRepository(q Querier) *CandidateRepo {
	return &CandidateRepo{q: q}
}

const candidateColumns = `id, type, product_id, warehouse_id, bpartner_id, date, quantity, seq_no, group_id, business_case, client_id, org_id, created_at`

// Create inserta el candidato con el siguiente seq_no de la secuencia global,
// verificando que el máximo seq_no de la partición siga siendo el que leyó el
// caller. Si otro escritor se adelantó, no inserta nada y devuelve
// domain.ErrConcurrentModification.
func (r *CandidateRepo) Create(c *entity.Candidate, expectedMaxSeqNo int64) error {
	ctx := context.Background()

	// Lock exclusivo de la partición por el resto de la transacción.
	_, err := r.q.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1 || '|' || $2))`, c.ProductID, c.WarehouseID)
	if err != nil {
		return fmt.Errorf("lock de partición: %w", err)
	}

	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	query := `
		INSERT INTO md_candidates (` + candidateColumns + `)
		SELECT $1, $2, $3, $4, $5, $6, $7, nextval('md_candidate_seq_no'), $8, $9, $10, $11, now()
		WHERE (SELECT COALESCE(MAX(seq_no), 0) FROM md_candidates WHERE product_id = $3 AND warehouse_id = $4) = $12
		RETURNING seq_no, created_at`
	bpartner := (*string)(nil)
	if c.BPartnerID != "" {
		bpartner = &c.BPartnerID
	}
	err = r.q.QueryRow(ctx, query,
		c.ID, c.Type, c.ProductID, c.WarehouseID, bpartner, c.Date, c.Quantity,
		c.GroupID, c.BusinessCase, c.ClientID, c.OrgID, expectedMaxSeqNo,
	).Scan(&c.SeqNo, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrConcurrentModification
		}
		return fmt.Errorf("insert candidate: %w", err)
	}
	return nil
}

// GetByID obtiene un candidato por ID, o nil si no existe.
func (r *CandidateRepo) GetByID(id string) (*entity.Candidate, error) {
	query := `SELECT ` + candidateColumns + ` FROM md_candidates WHERE id = $1`
	c, err := scanCandidate(r.q.QueryRow(context.Background(), query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get candidate: %w", err)
	}
	return c, nil
}

// Query devuelve los candidatos de la partición ordenados por (date, seq_no).
func (r *CandidateRepo) Query(q repository.CandidateQuery) ([]*entity.Candidate, error) {
	query := `SELECT ` + candidateColumns + ` FROM md_candidates WHERE product_id = $1 AND warehouse_id = $2`
	args := []any{q.ProductID, q.WarehouseID}
	pos := 3
	if q.Type != "" {
		query += fmt.Sprintf(" AND type = $%d", pos)
		args = append(args, q.Type)
		pos++
	}
	if q.From != nil {
		query += fmt.Sprintf(" AND date >= $%d", pos)
		args = append(args, *q.From)
		pos++
	}
	if q.To != nil {
		query += fmt.Sprintf(" AND date <= $%d", pos)
		args = append(args, *q.To)
		pos++
	}
	query += " ORDER BY date, seq_no"

	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("query candidates: %w", err)
	}
	defer rows.Close()
	return scanCandidates(rows)
}

// FindPredecessorStock devuelve el STOCK con la mayor fecha estrictamente
// anterior (hay a lo sumo un STOCK por fecha en la partición).
func (r *CandidateRepo) FindPredecessorStock(productID, warehouseID string, date time.Time, _ int64) (*entity.Candidate, error) {
	query := `
		SELECT ` + candidateColumns + ` FROM md_candidates
		WHERE product_id = $1 AND warehouse_id = $2 AND type = $3 AND date < $4
		ORDER BY date DESC LIMIT 1`
	c, err := scanCandidate(r.q.QueryRow(context.Background(), query, productID, warehouseID, entity.CandidateTypeStock, date))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("predecessor stock: %w", err)
	}
	return c, nil
}

// FindSuccessorStocks devuelve los STOCK con fecha posterior, ordenados.
func (r *CandidateRepo) FindSuccessorStocks(productID, warehouseID string, date time.Time, _ int64) ([]*entity.Candidate, error) {
	query := `
		SELECT ` + candidateColumns + ` FROM md_candidates
		WHERE product_id = $1 AND warehouse_id = $2 AND type = $3 AND date > $4
		ORDER BY date, seq_no`
	rows, err := r.q.Query(context.Background(), query, productID, warehouseID, entity.CandidateTypeStock, date)
	if err != nil {
		return nil, fmt.Errorf("successor stocks: %w", err)
	}
	defer rows.Close()
	return scanCandidates(rows)
}

// FindStockAtDate devuelve el snapshot compartido de la fecha exacta, o nil.
func (r *CandidateRepo) FindStockAtDate(productID, warehouseID string, date time.Time) (*entity.Candidate, error) {
	query := `
		SELECT ` + candidateColumns + ` FROM md_candidates
		WHERE product_id = $1 AND warehouse_id = $2 AND type = $3 AND date = $4`
	c, err := scanCandidate(r.q.QueryRow(context.Background(), query, productID, warehouseID, entity.CandidateTypeStock, date))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("stock at date: %w", err)
	}
	return c, nil
}

// FindLatestStockAtOrBefore devuelve el STOCK más reciente con fecha <= at, o nil.
func (r *CandidateRepo) FindLatestStockAtOrBefore(productID, warehouseID string, at time.Time) (*entity.Candidate, error) {
	query := `
		SELECT ` + candidateColumns + ` FROM md_candidates
		WHERE product_id = $1 AND warehouse_id = $2 AND type = $3 AND date <= $4
		ORDER BY date DESC LIMIT 1`
	c, err := scanCandidate(r.q.QueryRow(context.Background(), query, productID, warehouseID, entity.CandidateTypeStock, at))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("latest stock: %w", err)
	}
	return c, nil
}

// FindByGroupID devuelve los candidatos del grupo ordenados por seq_no.
func (r *CandidateRepo) FindByGroupID(groupID string) ([]*entity.Candidate, error) {
	query := `SELECT ` + candidateColumns + ` FROM md_candidates WHERE group_id = $1 ORDER BY seq_no`
	rows, err := r.q.Query(context.Background(), query, groupID)
	if err != nil {
		return nil, fmt.Errorf("candidates by group: %w", err)
	}
	defer rows.Close()
	return scanCandidates(rows)
}

// UpdateQuantity reescribe la cantidad de un candidato.
func (r *CandidateRepo) UpdateQuantity(id string, qty decimal.Decimal) error {
	cmd, err := r.q.Exec(context.Background(), `UPDATE md_candidates SET quantity = $2 WHERE id = $1`, id, qty)
	if err != nil {
		return fmt.Errorf("update quantity: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// UpdateGroupID enlaza el candidato al grupo indicado.
func (r *CandidateRepo) UpdateGroupID(id, groupID string) error {
	cmd, err := r.q.Exec(context.Background(), `UPDATE md_candidates SET group_id = $2 WHERE id = $1`, id, groupID)
	if err != nil {
		return fmt.Errorf("update group: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete elimina un candidato por ID con la misma serialización que Create:
// toma el lock exclusivo de la partición por el resto de la transacción (la
// propagación de la reversa recorre el mismo sufijo STOCK que una inserción) y
// solo borra si el máximo seq_no de la partición sigue siendo el esperado.
func (r *CandidateRepo) Delete(id string, expectedMaxSeqNo int64) error {
	ctx := context.Background()

	_, err := r.q.Exec(ctx, `
		SELECT pg_advisory_xact_lock(hashtext(product_id || '|' || warehouse_id))
		FROM md_candidates WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("lock de partición: %w", err)
	}

	query := `
		DELETE FROM md_candidates c
		WHERE c.id = $1
		  AND (SELECT COALESCE(MAX(seq_no), 0) FROM md_candidates m
		       WHERE m.product_id = c.product_id AND m.warehouse_id = c.warehouse_id) = $2`
	cmd, err := r.q.Exec(ctx, query, id, expectedMaxSeqNo)
	if err != nil {
		return fmt.Errorf("delete candidate: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		var exists bool
		if err := r.q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM md_candidates WHERE id = $1)`, id).Scan(&exists); err != nil {
			return fmt.Errorf("delete candidate: %w", err)
		}
		if exists {
			return domain.ErrConcurrentModification
		}
		return domain.ErrNotFound
	}
	return nil
}

// MaxSeqNo devuelve el seq_no máximo de la partición (0 si está vacía).
func (r *CandidateRepo) MaxSeqNo(productID, warehouseID string) (int64, error) {
	var max int64
	err := r.q.QueryRow(context.Background(),
		`SELECT COALESCE(MAX(seq_no), 0) FROM md_candidates WHERE product_id = $1 AND warehouse_id = $2`,
		productID, warehouseID,
	).Scan(&max)
	if err != nil {
		return 0, fmt.Errorf("max seq_no: %w", err)
	}
	return max, nil
}

func scanCandidate(row pgx.Row) (*entity.Candidate, error) {
	var c entity.Candidate
	var bpartner *string
	err := row.Scan(
		&c.ID, &c.Type, &c.ProductID, &c.WarehouseID, &bpartner, &c.Date,
		&c.Quantity, &c.SeqNo, &c.GroupID, &c.BusinessCase, &c.ClientID, &c.OrgID, &c.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if bpartner != nil {
		c.BPartnerID = *bpartner
	}
	return &c, nil
}

func scanCandidates(rows pgx.Rows) ([]*entity.Candidate, error) {
	var list []*entity.Candidate
	for rows.Next() {
		c, err := scanCandidate(rows)
		if err != nil {
			return nil, fmt.Errorf("scan candidate: %w", err)
		}
		list = append(list, c)
	}
	return list, rows.Err()
}
