package services

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/netest/netest-core/internal/core/domain"
)

// exportRow is the field set spec.md §6 specifies for both export formats.
type exportRow struct {
	SessionID     string              `json:"session_id"`
	StrategyID    string              `json:"strategy_id"`
	Code          domain.StrategyCode `json:"code"`
	Status        domain.AnnotationStatus `json:"status"`
	Origin        domain.AnnotationOrigin `json:"origin"`
	TargetOffsets []domain.Offset     `json:"target_offsets"`
	SourceOffsets []domain.Offset     `json:"source_offsets,omitempty"`
	Confidence    float64             `json:"confidence"`
	Evidence      []string            `json:"evidence"`
	OriginalCode  *domain.StrategyCode `json:"original_code,omitempty"`
	CreatedAt     string              `json:"created_at"`
	UpdatedAt     string              `json:"updated_at"`
}

func toExportRows(sessionID string, predictions []*domain.StrategyPrediction) []exportRow {
	rows := make([]exportRow, len(predictions))
	for i, p := range predictions {
		rows[i] = exportRow{
			SessionID:     sessionID,
			StrategyID:    p.StrategyID,
			Code:          p.Code,
			Status:        p.Status,
			Origin:        p.Origin,
			TargetOffsets: p.TargetOffsets,
			SourceOffsets: p.SourceOffsets,
			Confidence:    p.Confidence,
			Evidence:      p.Evidence,
			OriginalCode:  p.OriginalCode,
			CreatedAt:     p.CreatedAt.Format(timeLayout),
			UpdatedAt:     p.UpdatedAt.Format(timeLayout),
		}
	}
	return rows
}

const timeLayout = "2006-01-02T15:04:05.999999999Z07:00"

// encodeJSONL emits one annotation per line, per spec.md §6.
func encodeJSONL(sessionID string, predictions []*domain.StrategyPrediction) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for _, row := range toExportRows(sessionID, predictions) {
		if err := enc.Encode(row); err != nil {
			return nil, fmt.Errorf("export: encode jsonl row: %w", err)
		}
	}
	return buf.Bytes(), nil
}

// encodeCSV emits the same fields as columns, with offsets serialized as
// "start1-end1;start2-end2;...", per spec.md §6.
func encodeCSV(sessionID string, predictions []*domain.StrategyPrediction) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := []string{
		"session_id", "strategy_id", "code", "status", "origin",
		"target_offsets", "source_offsets", "confidence", "evidence",
		"original_code", "created_at", "updated_at",
	}
	if err := w.Write(header); err != nil {
		return nil, fmt.Errorf("export: write csv header: %w", err)
	}

	for _, row := range toExportRows(sessionID, predictions) {
		originalCode := ""
		if row.OriginalCode != nil {
			originalCode = string(*row.OriginalCode)
		}
		record := []string{
			row.SessionID,
			row.StrategyID,
			string(row.Code),
			string(row.Status),
			string(row.Origin),
			offsetsToCSV(row.TargetOffsets),
			offsetsToCSV(row.SourceOffsets),
			fmt.Sprintf("%.4f", row.Confidence),
			strings.Join(row.Evidence, "|"),
			originalCode,
			row.CreatedAt,
			row.UpdatedAt,
		}
		if err := w.Write(record); err != nil {
			return nil, fmt.Errorf("export: write csv row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("export: flush csv: %w", err)
	}
	return buf.Bytes(), nil
}

func offsetsToCSV(offsets []domain.Offset) string {
	parts := make([]string, len(offsets))
	for i, o := range offsets {
		parts[i] = fmt.Sprintf("%d-%d", o.Start, o.End)
	}
	return strings.Join(parts, ";")
}
