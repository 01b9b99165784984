package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Eventos de negocio entrantes que alimentan el ledger de material.
// Cada evento lleva su EventDescriptor (client/org) que se copia a todos los
// candidatos producidos.

// ShipmentScheduleCreatedEvent se emite cuando se agenda un despacho a cliente.
type ShipmentScheduleCreatedEvent struct {
	EventDescriptor
	ProductID   string
	WarehouseID string
	BPartnerID  string
	Date        time.Time
	Qty         decimal.Decimal
}

// DistributionOrderEvent se emite cuando se sugiere o crea una orden de
// distribución entre bodegas (origen -> destino).
type DistributionOrderEvent struct {
	EventDescriptor
	ProductID       string
	FromWarehouseID string
	ToWarehouseID   string
	BPartnerID      string
	Date            time.Time
	Qty             decimal.Decimal
	PlantID         string
	NetworkLineID   string
}

// ProductionOrderEvent se emite cuando se sugiere o crea una orden de producción.
type ProductionOrderEvent struct {
	EventDescriptor
	ProductID   string
	WarehouseID string
	Date        time.Time
	Qty         decimal.Decimal
	PlanID      string
}

// ForecastCreatedEvent pronóstico de demanda; solo difiere de la demanda firme
// en el BusinessCase, no en la mecánica del ledger.
type ForecastCreatedEvent struct {
	EventDescriptor
	ProductID   string
	WarehouseID string
	Date        time.Time
	Qty         decimal.Decimal
}

// TransactionCreatedEvent transacción de inventario sin contraparte de
// demanda/suministro; el signo de Qty decide aumento o disminución.
type TransactionCreatedEvent struct {
	EventDescriptor
	ProductID   string
	WarehouseID string
	Date        time.Time
	Qty         decimal.Decimal
}

// SupplyRequiredEvent evento saliente: la demanda aplicada dejó el stock
// proyectado en negativo y otro módulo debería proponer suministro.
// Se emite solo después del commit de la transacción que lo originó.
type SupplyRequiredEvent struct {
	EventDescriptor
	ProductID   string
	WarehouseID string
	Date        time.Time
	Qty         decimal.Decimal // cantidad faltante (positiva)
	DemandID    string
}
