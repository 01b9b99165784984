package repository

import "github.com/jhoicas/material-dispo/internal/domain/entity"

// WarehouseRepository puerto de lectura de bodegas (validación de eventos).
type WarehouseRepository interface {
	GetByID(id string) (*entity.Warehouse, error)
}
