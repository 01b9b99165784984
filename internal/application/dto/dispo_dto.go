package dto

// DTOs de entrada para los eventos de negocio que alimentan el ledger.
// Las cantidades viajan como string decimal ("10", "2.5") y las fechas en
// RFC 3339; el handler las convierte y valida antes de tocar el dominio.

// ShipmentScheduleRequest agenda de despacho a cliente (demanda firme).
type ShipmentScheduleRequest struct {
	ProductID   string `json:"product_id"`
	WarehouseID string `json:"warehouse_id"`
	BPartnerID  string `json:"bpartner_id"`
	Date        string `json:"date"`
	Qty         string `json:"qty"`
	ClientID    string `json:"client_id"`
}

// DistributionOrderRequest orden de distribución entre bodegas.
type DistributionOrderRequest struct {
	ProductID       string `json:"product_id"`
	FromWarehouseID string `json:"from_warehouse_id"`
	ToWarehouseID   string `json:"to_warehouse_id"`
	BPartnerID      string `json:"bpartner_id"`
	Date            string `json:"date"`
	Qty             string `json:"qty"`
	PlantID         string `json:"plant_id"`
	NetworkLineID   string `json:"network_line_id"`
	ClientID        string `json:"client_id"`
}

// ProductionOrderRequest orden de producción (suministro planificado).
type ProductionOrderRequest struct {
	ProductID   string `json:"product_id"`
	WarehouseID string `json:"warehouse_id"`
	Date        string `json:"date"`
	Qty         string `json:"qty"`
	PlanID      string `json:"plan_id"`
	ClientID    string `json:"client_id"`
}

// ForecastRequest pronóstico de demanda.
type ForecastRequest struct {
	ProductID   string `json:"product_id"`
	WarehouseID string `json:"warehouse_id"`
	Date        string `json:"date"`
	Qty         string `json:"qty"`
	ClientID    string `json:"client_id"`
}

// TransactionRequest transacción de inventario sin contraparte; el signo de
// qty decide aumento o disminución.
type TransactionRequest struct {
	ProductID   string `json:"product_id"`
	WarehouseID string `json:"warehouse_id"`
	Date        string `json:"date"`
	Qty         string `json:"qty"`
	ClientID    string `json:"client_id"`
}

// AvailableStockResponse stock proyectado de un producto en una bodega a un
// instante dado.
type AvailableStockResponse struct {
	ProductID   string `json:"product_id"`
	WarehouseID string `json:"warehouse_id"`
	At          string `json:"at"`
	Qty         string `json:"qty"`
}
