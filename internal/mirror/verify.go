package mirror

import (
	"context"
	"fmt"
	"sort"

	"pharmacy-store/internal/schema"
	"pharmacy-store/internal/util"

	"go.uber.org/zap"
)

type DriftKind string

const (
	MissingTable        DriftKind = "missing_table"
	MissingColumn       DriftKind = "missing_column"
	UnexpectedColumn    DriftKind = "unexpected_column"
	NullabilityMismatch DriftKind = "nullability_mismatch"
)

// Drift is one difference between the declared schema and the live tables.
type Drift struct {
	Kind   DriftKind `json:"kind"`
	Table  string    `json:"table"`
	Column string    `json:"column,omitempty"`
}

func (d Drift) String() string {
	if d.Column == "" {
		return fmt.Sprintf("%s: %s", d.Kind, d.Table)
	}
	return fmt.Sprintf("%s: %s.%s", d.Kind, d.Table, d.Column)
}

type liveColumn struct {
	Name     string `db:"name"`
	Nullable bool   `db:"nullable"`
}

// Verify compares every declared table with what the database actually
// holds. An empty result means the mirror can rely on the declarations.
func (m *Mirror) Verify(ctx context.Context) ([]Drift, error) {
	ctx, span := util.StartSpan(ctx, "Mirror.Verify")
	defer span.End()

	var drifts []Drift
	for _, t := range schema.Tables() {
		live, err := m.columns(ctx, t.Name)
		if err != nil {
			util.MirrorVerificationsTotal.WithLabelValues("error").Inc()
			return nil, fmt.Errorf("failed to inspect %s: %w", t.Name, err)
		}
		drifts = append(drifts, compare(t, live)...)
	}

	util.MirrorDriftGauge.Set(float64(len(drifts)))
	if len(drifts) > 0 {
		util.MirrorVerificationsTotal.WithLabelValues("drift").Inc()
		for _, d := range drifts {
			m.logger.Warn("Schema drift detected",
				zap.String("kind", string(d.Kind)),
				zap.String("table", d.Table),
				zap.String("column", d.Column))
		}
	} else {
		util.MirrorVerificationsTotal.WithLabelValues("ok").Inc()
		m.logger.Info("Mirror schema verified")
	}
	return drifts, nil
}

func (m *Mirror) columns(ctx context.Context, table string) ([]liveColumn, error) {
	var query string
	switch m.dialect {
	case schema.Postgres:
		query = `
			SELECT column_name AS name, is_nullable = 'YES' AS nullable
			FROM information_schema.columns
			WHERE table_schema = current_schema() AND table_name = $1`
	default:
		query = `SELECT name, ("notnull" = 0 AND pk = 0) AS nullable FROM pragma_table_info(?)`
	}

	var cols []liveColumn
	err := m.db.SelectContext(ctx, &cols, query, table)
	return cols, err
}

func compare(t *schema.Table, live []liveColumn) []Drift {
	if len(live) == 0 {
		return []Drift{{Kind: MissingTable, Table: t.Name}}
	}

	byName := make(map[string]liveColumn, len(live))
	for _, c := range live {
		byName[c.Name] = c
	}

	var drifts []Drift
	for _, c := range t.Columns {
		lc, ok := byName[c.Name]
		if !ok {
			drifts = append(drifts, Drift{Kind: MissingColumn, Table: t.Name, Column: c.Name})
			continue
		}
		delete(byName, c.Name)

		declared := c.Nullable && c.Name != t.PrimaryKey
		if lc.Nullable != declared {
			drifts = append(drifts, Drift{Kind: NullabilityMismatch, Table: t.Name, Column: c.Name})
		}
	}

	extra := make([]string, 0, len(byName))
	for name := range byName {
		extra = append(extra, name)
	}
	sort.Strings(extra)
	for _, name := range extra {
		drifts = append(drifts, Drift{Kind: UnexpectedColumn, Table: t.Name, Column: name})
	}
	return drifts
}
