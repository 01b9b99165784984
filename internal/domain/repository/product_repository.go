package repository

import "github.com/jhoicas/material-dispo/internal/domain/entity"

// ProductRepository puerto de lectura de productos (validación de eventos).
type ProductRepository interface {
	GetByID(id string) (*entity.Product, error)
}
