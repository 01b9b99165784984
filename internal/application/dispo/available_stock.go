package dispo

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/material-dispo/internal/domain"
	"github.com/jhoicas/material-dispo/internal/domain/repository"
)

// AvailableStockUseCase expone la lectura de stock proyectado para
// colaboradores externos (planificación, UI).
type AvailableStockUseCase struct {
	repo repository.CandidateRepository
}

// NewAvailableStockUseCase construye el caso de uso sobre el repositorio
// (pool, no transaccional: es solo lectura).
func NewAvailableStockUseCase(repo repository.CandidateRepository) *AvailableStockUseCase {
	return &AvailableStockUseCase{repo: repo}
}

// AvailableStockAt devuelve la cantidad proyectada de un producto en una
// bodega al instante dado: el snapshot STOCK más reciente con fecha <= at,
// o cero si la partición no tiene historia hasta ese punto.
func (uc *AvailableStockUseCase) AvailableStockAt(ctx context.Context, productID, warehouseID string, at time.Time) (decimal.Decimal, error) {
	if err := ctx.Err(); err != nil {
		return decimal.Zero, err
	}
	if productID == "" || warehouseID == "" || at.IsZero() {
		return decimal.Zero, fmt.Errorf("%w: producto, bodega e instante son obligatorios", domain.ErrInvalidInput)
	}
	stock, err := uc.repo.FindLatestStockAtOrBefore(productID, warehouseID, at)
	if err != nil {
		return decimal.Zero, err
	}
	if stock == nil {
		return decimal.Zero, nil
	}
	return stock.Quantity, nil
}
