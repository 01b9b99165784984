package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// CandidateType clasifica una entrada del ledger de planificación.
// STOCK es un snapshot derivado (saldo acumulado); el resto son movimientos.
type CandidateType string

const (
	CandidateTypeDemand            CandidateType = "DEMAND"
	CandidateTypeSupply            CandidateType = "SUPPLY"
	CandidateTypeStock             CandidateType = "STOCK"
	CandidateTypeUnrelatedIncrease CandidateType = "UNRELATED_INCREASE"
	CandidateTypeUnrelatedDecrease CandidateType = "UNRELATED_DECREASE"
)

// IsMovement indica si el tipo aporta un delta de cantidad al stock
// (todo menos STOCK, que es el saldo derivado).
func (t CandidateType) IsMovement() bool {
	return t == CandidateTypeDemand || t == CandidateTypeSupply ||
		t == CandidateTypeUnrelatedIncrease || t == CandidateTypeUnrelatedDecrease
}

// BusinessCase identifica el evento de negocio que originó el candidato.
// Se usa para despacho y reporting, nunca para ordenamiento.
type BusinessCase string

const (
	BusinessCaseShipment     BusinessCase = "SHIPMENT"
	BusinessCaseDistribution BusinessCase = "DISTRIBUTION"
	BusinessCaseProduction   BusinessCase = "PRODUCTION"
	BusinessCaseForecast     BusinessCase = "FORECAST"
	BusinessCaseTransaction  BusinessCase = "TRANSACTION"
)

// EventDescriptor alcance multi-tenant de un evento entrante; se propaga sin
// cambios a todos los candidatos que el evento produce.
type EventDescriptor struct {
	ClientID string
	OrgID    string
}

// Candidate es una entrada del ledger de material por (producto, bodega).
//
// Dentro de una partición (ProductID, WarehouseID) todos los candidatos están
// totalmente ordenados por (Date, SeqNo). SeqNo lo asigna el store al insertar
// y solo desempata entre entradas con la misma fecha: codifica orden causal de
// procesamiento, no hora de reloj.
type Candidate struct {
	ID          string
	Type        CandidateType
	ProductID   string
	WarehouseID string
	BPartnerID  string // opcional: contraparte de demanda/suministro

	Date     time.Time
	Quantity decimal.Decimal // movimientos: siempre positiva; STOCK: saldo acumulado (puede ser negativo)
	SeqNo    int64

	GroupID      string // enlaza el par DEMAND/SUPPLY creado por una misma orden
	BusinessCase BusinessCase

	ClientID string
	OrgID    string

	CreatedAt time.Time
}

// StockDelta devuelve el efecto neto (con signo) del candidato sobre el stock.
// DEMAND y UNRELATED_DECREASE restan; SUPPLY y UNRELATED_INCREASE suman;
// STOCK no es un movimiento y aporta cero.
func (c *Candidate) StockDelta() decimal.Decimal {
	switch c.Type {
	case CandidateTypeDemand, CandidateTypeUnrelatedDecrease:
		return c.Quantity.Neg()
	case CandidateTypeSupply, CandidateTypeUnrelatedIncrease:
		return c.Quantity
	default:
		return decimal.Zero
	}
}

// Before indica si el candidato precede estrictamente a (date, seqNo) en el
// orden de la partición.
func (c *Candidate) Before(date time.Time, seqNo int64) bool {
	if c.Date.Before(date) {
		return true
	}
	return c.Date.Equal(date) && c.SeqNo < seqNo
}
