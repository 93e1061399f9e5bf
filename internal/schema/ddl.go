package schema

import (
	"fmt"
	"strings"

	"pharmacy-store/internal/models"
)

// Dialect selects the SQL flavour DDL is rendered in.
type Dialect string

const (
	Postgres Dialect = "postgres"
	SQLite   Dialect = "sqlite3"
)

// DialectFor maps a database/sql driver name to its dialect.
func DialectFor(driver string) (Dialect, error) {
	switch driver {
	case "postgres", "pgx":
		return Postgres, nil
	case "sqlite3", "sqlite":
		return SQLite, nil
	}
	return "", fmt.Errorf("unsupported database driver %q", driver)
}

// ColumnType returns the physical type of c in dialect d.
func (d Dialect) ColumnType(c Column) string {
	switch c.Kind {
	case UUID:
		if d == Postgres {
			return "UUID"
		}
		return "TEXT"
	case BigAutoIncrement:
		if d == Postgres {
			return "BIGSERIAL"
		}
		return "INTEGER"
	case AutoIncrement:
		if d == Postgres {
			return "SERIAL"
		}
		return "INTEGER"
	case BigInteger:
		if d == Postgres {
			return "BIGINT"
		}
		return "INTEGER"
	case Integer:
		return "INTEGER"
	case Varchar:
		return fmt.Sprintf("VARCHAR(%d)", c.Size)
	case Decimal:
		return fmt.Sprintf("NUMERIC(%d,%d)", c.Precision, c.Scale)
	case Date:
		return "DATE"
	case Time:
		return "TIME"
	case Timestamp:
		if d == Postgres {
			return "TIMESTAMPTZ"
		}
		return "TIMESTAMP"
	case Boolean:
		return "BOOLEAN"
	}
	return "TEXT"
}

func (d Dialect) columnDef(t *Table, c Column) string {
	var b strings.Builder
	b.WriteString(c.Name)
	b.WriteByte(' ')
	b.WriteString(d.ColumnType(c))

	if c.Name == t.PrimaryKey {
		b.WriteString(" PRIMARY KEY")
		if d == SQLite && (c.Kind == AutoIncrement || c.Kind == BigAutoIncrement) {
			b.WriteString(" AUTOINCREMENT")
		}
	} else if !c.Nullable {
		b.WriteString(" NOT NULL")
	}
	if c.Unique {
		b.WriteString(" UNIQUE")
	}
	if c.Ref != nil {
		fmt.Fprintf(&b, " REFERENCES %s (%s) ON DELETE %s", c.Ref.Table, c.Ref.Column, c.Ref.OnDelete)
	}
	return b.String()
}

// checks returns the CHECK constraints of t, enumerations first.
func checks(t *Table) []string {
	enums := models.EnumValues()
	var out []string
	for _, c := range t.Columns {
		if c.Enum != "" {
			quoted := make([]string, 0, len(enums[c.Enum]))
			for _, v := range enums[c.Enum] {
				quoted = append(quoted, "'"+strings.ReplaceAll(v, "'", "''")+"'")
			}
			out = append(out, fmt.Sprintf("CONSTRAINT %s_%s_check CHECK (%s IN (%s))",
				t.Name, c.Name, c.Name, strings.Join(quoted, ", ")))
		}
		if c.Check != "" {
			out = append(out, fmt.Sprintf("CONSTRAINT %s_%s_range CHECK (%s)", t.Name, c.Name, c.Check))
		}
	}
	return out
}

// UniqueConstraintName names the composite unique constraint over cols.
func UniqueConstraintName(t *Table, cols []string) string {
	return fmt.Sprintf("%s_%s_uniq", t.Name, strings.Join(cols, "_"))
}

// CreateTable renders the CREATE TABLE statement for t.
func (d Dialect) CreateTable(t *Table) string {
	defs := make([]string, 0, len(t.Columns)+len(t.UniqueTogether)+2)
	for _, c := range t.Columns {
		defs = append(defs, d.columnDef(t, c))
	}
	for _, group := range t.UniqueTogether {
		defs = append(defs, fmt.Sprintf("CONSTRAINT %s UNIQUE (%s)",
			UniqueConstraintName(t, group), strings.Join(group, ", ")))
	}
	defs = append(defs, checks(t)...)

	return fmt.Sprintf("CREATE TABLE %s (\n\t%s\n)", t.Name, strings.Join(defs, ",\n\t"))
}

// CreateIndexes renders one index per foreign key column that is not already
// the leading column of a unique constraint.
func (d Dialect) CreateIndexes(t *Table) []string {
	leading := map[string]bool{}
	for _, group := range t.UniqueTogether {
		leading[group[0]] = true
	}

	var stmts []string
	for _, c := range t.ForeignKeys() {
		if c.Unique || leading[c.Name] {
			continue
		}
		stmts = append(stmts, fmt.Sprintf("CREATE INDEX IF NOT EXISTS %s_%s_idx ON %s (%s)",
			t.Name, c.Name, t.Name, c.Name))
	}
	return stmts
}
