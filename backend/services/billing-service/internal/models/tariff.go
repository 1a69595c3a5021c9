package models

import (
	"time"

	"evcdr/backend/libs/cdr"
)

// Tariff sources reported by the tariff service.
const (
	TariffSourceCache    = "cache"
	TariffSourceDatabase = "database"
	TariffSourceDefault  = "default"
	TariffSourceInline   = "inline"
)

// TariffRow is a stored tariff document.
type TariffRow struct {
	ID        string    `db:"id" json:"id"`
	Document  []byte    `db:"document" json:"-"`
	Verified  bool      `db:"verified" json:"verified"`
	IsActive  bool      `db:"is_active" json:"is_active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// ResolvedTariff is a decoded tariff with its authenticity flag.
type ResolvedTariff struct {
	Tariff   cdr.Tariff `json:"tariff"`
	Verified bool       `json:"verified"`
	Source   string     `json:"source,omitempty"`
}
