package pg

import (
	"bytes"
	"context"
	"fmt"

	"github.com/flastex/go-bpmn/engine"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

type eventRepository struct {
	tx    pgx.Tx
	txCtx context.Context

	engineId string
}

func (r eventRepository) InsertBatch(events []engine.Event) error {
	batch := &pgx.Batch{}

	for _, event := range events {
		batch.Queue(`
INSERT INTO event (
	process_instance_id,
	sequence,

	type,
	time,
	engine_id,
	token_id,
	bpmn_element_id,
	sequence_flow_id,
	token_state,
	flow_object_state,
	detail
) VALUES (
	$1,
	$2,

	$3,
	$4,
	$5,
	$6,
	$7,
	$8,
	$9,
	$10,
	$11
)
`,
			event.ProcessInstanceId,
			event.Sequence,

			event.Type.String(),
			event.Time,
			r.engineId,
			text(event.TokenId),
			text(event.BpmnElementId),
			text(event.SequenceFlowId),
			text(event.TokenState.String()),
			text(event.FlowObjectState.String()),
			text(event.Detail),
		)
	}

	batchResults := r.tx.SendBatch(r.txCtx, batch)
	defer batchResults.Close()

	for i := range events {
		if _, err := batchResults.Exec(); err != nil {
			return fmt.Errorf("failed to insert event %s: %v", events[i], err)
		}
	}

	return nil
}

func (r eventRepository) Query(criteria engine.EventCriteria, options engine.QueryOptions) ([]engine.Event, error) {
	var sql bytes.Buffer
	if err := sqlEventQuery.Execute(&sql, map[string]any{
		"c":        criteria,
		"o":        options,
		"engineId": r.engineId,
	}); err != nil {
		return nil, fmt.Errorf("failed to execute event query template: %v", err)
	}

	rows, err := r.tx.Query(r.txCtx, sql.String())
	if err != nil {
		return nil, fmt.Errorf("failed to execute event query: %v", err)
	}

	defer rows.Close()

	results := make([]engine.Event, 0)
	for rows.Next() {
		var (
			event engine.Event

			typeValue            string
			tokenId              pgtype.Text
			bpmnElementId        pgtype.Text
			sequenceFlowId       pgtype.Text
			tokenStateValue      pgtype.Text
			flowObjectStateValue pgtype.Text
			detail               pgtype.Text
		)

		if err := rows.Scan(
			&event.ProcessInstanceId,
			&event.Sequence,

			&typeValue,
			&event.Time,
			&tokenId,
			&bpmnElementId,
			&sequenceFlowId,
			&tokenStateValue,
			&flowObjectStateValue,
			&detail,
		); err != nil {
			return nil, fmt.Errorf("failed to scan event row: %v", err)
		}

		event.Type = engine.MapEventType(typeValue)
		event.TokenId = tokenId.String
		event.BpmnElementId = bpmnElementId.String
		event.SequenceFlowId = sequenceFlowId.String
		event.TokenState = engine.MapTokenState(tokenStateValue.String)
		event.FlowObjectState = engine.MapFlowObjectState(flowObjectStateValue.String)
		event.Detail = detail.String

		results = append(results, event)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to query events: %v", err)
	}

	return results, nil
}

// text maps an empty string to NULL.
func text(s string) pgtype.Text {
	return pgtype.Text{String: s, Valid: s != ""}
}
