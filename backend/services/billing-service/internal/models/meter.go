package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// MeterSampleRow is one stored sampled value of a charging session.
type MeterSampleRow struct {
	ID         int64           `db:"id"`
	SessionID  int64           `db:"session_id"`
	RecordedAt time.Time       `db:"recorded_at"`
	Value      decimal.Decimal `db:"value"`
	Measurand  string          `db:"measurand"`
	Unit       string          `db:"unit"`
	Multiplier int32           `db:"multiplier"`
	Context    string          `db:"context"`
	Location   string          `db:"location"`
}

// StateEventRow is one stored charging state transition.
type StateEventRow struct {
	ID         int64     `db:"id"`
	SessionID  int64     `db:"session_id"`
	OccurredAt time.Time `db:"occurred_at"`
	State      string    `db:"state"`
}
