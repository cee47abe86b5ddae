package repository

import (
	"context"
	"errors"

	"parking_rental/internal/domain"
)

var ErrNotFound = errors.New("record not found")
var ErrCorruptSnapshot = errors.New("stored lot snapshot is inconsistent")

// LotStore persists the whole lot. Save replaces every table in one go;
// Load returns ErrNotFound when nothing has been saved yet.
type LotStore interface {
	Load(ctx context.Context) (*domain.LotSnapshot, error)
	Save(ctx context.Context, snapshot *domain.LotSnapshot) error
	Close() error
}
