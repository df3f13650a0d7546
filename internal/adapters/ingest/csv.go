// Package ingest decodes bulk client uploads. The only supported codec is
// headered CSV; one row becomes one raw client record, defaulting and
// scoring happen later in the intake pipeline.
package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/novara/casebook/internal/domain/model"
)

// Recognized header columns. Unknown columns are ignored; missing columns
// leave the field empty and the normalizer fills in defaults.
const (
	colName                  = "name"
	colPracticeAreas         = "practice_areas"
	colRelationshipStrength  = "relationship_strength"
	colRelationshipIntensity = "relationship_intensity"
	colConflictRisk          = "conflict_risk"
	colConflictScore         = "conflict_score"
	colRenewalProbability    = "renewal_probability"
	colStrategicFit          = "strategic_fit_score"
	colPrimaryLobbyist       = "primary_lobbyist"
	colClientOriginator      = "client_originator"
	colLobbyistTeam          = "lobbyist_team"
	colContactFrequency      = "contact_frequency"
	colContractPeriod        = "contract_period"
	colRevenues              = "revenues"
)

// listSeparator splits multi-valued cells (practice areas, lobbyist teams,
// revenue entries) inside one CSV field.
const listSeparator = ";"

// RowError reports one rejected row. Line numbers are 1-based and include
// the header.
type RowError struct {
	Line int    `json:"line"`
	Err  string `json:"error"`
}

// DecodeClients reads headered CSV and returns the decoded client records
// plus per-row rejections. The returned error is reserved for stream-level
// failures (unreadable input, missing header); bad rows never abort the
// batch.
func DecodeClients(r io.Reader) ([]model.Client, []RowError, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrBadHeader, err)
	}
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	if _, ok := cols[colName]; !ok {
		return nil, nil, fmt.Errorf("%w: no %q column", ErrBadHeader, colName)
	}

	var (
		clients []model.Client
		rejects []RowError
		line    = 1
	)
	for {
		record, err := cr.Read()
		line++
		if err == io.EOF {
			break
		}
		if err != nil {
			rejects = append(rejects, RowError{Line: line, Err: err.Error()})
			continue
		}

		c, err := decodeRow(cols, record)
		if err != nil {
			rejects = append(rejects, RowError{Line: line, Err: err.Error()})
			continue
		}
		clients = append(clients, c)
	}
	return clients, rejects, nil
}

func decodeRow(cols map[string]int, record []string) (model.Client, error) {
	cell := func(name string) string {
		i, ok := cols[name]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	name := cell(colName)
	if name == "" {
		return model.Client{}, fmt.Errorf("%w: empty name", ErrBadRow)
	}

	c := model.Client{
		Name:             name,
		PracticeAreas:    splitList(cell(colPracticeAreas)),
		ConflictRisk:     model.ConflictRisk(strings.ToLower(cell(colConflictRisk))),
		PrimaryLobbyist:  cell(colPrimaryLobbyist),
		ClientOriginator: cell(colClientOriginator),
		LobbyistTeam:     splitList(cell(colLobbyistTeam)),
		ContactFrequency: model.ContactFrequency(strings.ToLower(cell(colContactFrequency))),
		ContractPeriod:   cell(colContractPeriod),
	}

	var err error
	if c.RelationshipStrength, err = parseFloat(cell(colRelationshipStrength)); err != nil {
		return model.Client{}, err
	}
	if c.RelationshipIntensity, err = parseFloat(cell(colRelationshipIntensity)); err != nil {
		return model.Client{}, err
	}
	if c.ConflictScore, err = parseFloat(cell(colConflictScore)); err != nil {
		return model.Client{}, err
	}
	if c.RenewalProbability, err = parseOptionalFloat(cell(colRenewalProbability)); err != nil {
		return model.Client{}, err
	}
	if c.StrategicFitScore, err = parseFloat(cell(colStrategicFit)); err != nil {
		return model.Client{}, err
	}
	if c.Revenues, err = parseRevenues(cell(colRevenues)); err != nil {
		return model.Client{}, err
	}
	return c, nil
}

// splitList splits a multi-valued cell and drops empty parts. Comma-inside-
// field is already handled by the CSV layer, so only the list separator
// applies here.
func splitList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, listSeparator)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// parseFloat parses an optional numeric cell; empty means "not provided"
// and is left at zero for the normalizer to default.
func parseFloat(s string) (float64, error) {
	if s == "" {
		return 0, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: bad number %q", ErrBadRow, s)
	}
	return f, nil
}

// parseOptionalFloat is parseFloat for fields whose valid range includes
// zero: an empty cell stays nil so the normalizer can tell absent from an
// explicit 0.
func parseOptionalFloat(s string) (*float64, error) {
	if s == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: bad number %q", ErrBadRow, s)
	}
	return &f, nil
}

// parseRevenues decodes "year:amount" entries, e.g. "2023:50000;2024:61000".
func parseRevenues(s string) ([]model.Revenue, error) {
	if s == "" {
		return nil, nil
	}
	var out []model.Revenue
	for _, entry := range splitList(s) {
		yearStr, amountStr, ok := strings.Cut(entry, ":")
		if !ok {
			return nil, fmt.Errorf("%w: bad revenue entry %q", ErrBadRow, entry)
		}
		year, err := strconv.Atoi(strings.TrimSpace(yearStr))
		if err != nil {
			return nil, fmt.Errorf("%w: bad revenue year %q", ErrBadRow, yearStr)
		}
		amount, err := strconv.ParseFloat(strings.TrimSpace(amountStr), 64)
		if err != nil {
			return nil, fmt.Errorf("%w: bad revenue amount %q", ErrBadRow, amountStr)
		}
		out = append(out, model.Revenue{Year: year, Amount: amount})
	}
	return out, nil
}
