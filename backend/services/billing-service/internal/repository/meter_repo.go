package repository

import (
	"context"
	"database/sql"

	"github.com/lorenzodonini/ocpp-go/ocpp1.6/types"

	"evcdr/backend/libs/cdr"
	"evcdr/backend/services/billing-service/internal/models"
)

// MeterRepository reads the metering stream and state transitions of sessions.
type MeterRepository struct {
	db *sql.DB
}

// NewMeterRepository returns repository.
func NewMeterRepository(db *sql.DB) *MeterRepository {
	return &MeterRepository{db: db}
}

// ListSamples returns the sampled values of a session ordered by time.
func (r *MeterRepository) ListSamples(ctx context.Context, sessionID int64) ([]cdr.MeterSample, error) {
	const query = `
		SELECT id, session_id, recorded_at, value,
			COALESCE(measurand, ''), COALESCE(unit, ''), COALESCE(multiplier, 0),
			COALESCE(context, ''), COALESCE(location, '')
		FROM meter_samples
		WHERE session_id = $1
		ORDER BY recorded_at, id
	`
	rows, err := r.db.QueryContext(ctx, query, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var samples []cdr.MeterSample
	for rows.Next() {
		var row models.MeterSampleRow
		if err := rows.Scan(
			&row.ID,
			&row.SessionID,
			&row.RecordedAt,
			&row.Value,
			&row.Measurand,
			&row.Unit,
			&row.Multiplier,
			&row.Context,
			&row.Location,
		); err != nil {
			return nil, err
		}
		samples = append(samples, sampleFromRow(row))
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return samples, nil
}

// ListStateEvents returns the charging state transitions of a session ordered by time.
func (r *MeterRepository) ListStateEvents(ctx context.Context, sessionID int64) ([]cdr.ChargingStateEvent, error) {
	const query = `
		SELECT id, session_id, occurred_at, state
		FROM charging_state_events
		WHERE session_id = $1
		ORDER BY occurred_at, id
	`
	rows, err := r.db.QueryContext(ctx, query, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []cdr.ChargingStateEvent
	for rows.Next() {
		var row models.StateEventRow
		if err := rows.Scan(&row.ID, &row.SessionID, &row.OccurredAt, &row.State); err != nil {
			return nil, err
		}
		events = append(events, cdr.ChargingStateEvent{
			Timestamp: row.OccurredAt,
			State:     cdr.ChargingState(row.State),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return events, nil
}

func sampleFromRow(row models.MeterSampleRow) cdr.MeterSample {
	return cdr.MeterSample{
		Timestamp:  row.RecordedAt,
		Value:      row.Value,
		Measurand:  types.Measurand(row.Measurand),
		Unit:       types.UnitOfMeasure(row.Unit),
		Multiplier: row.Multiplier,
		Context:    types.ReadingContext(row.Context),
		Location:   types.Location(row.Location),
	}
}
