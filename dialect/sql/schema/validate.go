package schema

import (
	"errors"
	"fmt"
	"strings"
)

// DefaultMaxNameLength is the identifier length ceiling enforced by
// validation. Postgres truncates identifiers at 63 bytes and MySQL
// rejects them at 64, so 63 is the portable limit. Override it with
// WithMaxNameLength; zero disables the check.
const DefaultMaxNameLength = 63

// ValidationError is one finding about a table descriptor or a schema
// change. Breaking marks changes that can destroy data or fail against
// populated tables.
type ValidationError struct {
	Table    string
	Column   string
	Message  string
	Breaking bool
}

func (e *ValidationError) Error() string {
	if e.Column != "" {
		return fmt.Sprintf("%s.%s: %s", e.Table, e.Column, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Table, e.Message)
}

// ValidationResult splits findings into errors and warnings. Which side
// a dangerous change lands on depends on the Allow options.
type ValidationResult struct {
	Errors   []*ValidationError
	Warnings []*ValidationError
}

// HasErrors reports if validation found any errors.
func (r *ValidationResult) HasErrors() bool {
	return len(r.Errors) > 0
}

// HasWarnings reports if validation found any warnings.
func (r *ValidationResult) HasWarnings() bool {
	return len(r.Warnings) > 0
}

// HasBreakingChanges reports if any finding, error or warning, is a
// breaking change.
func (r *ValidationResult) HasBreakingChanges() bool {
	for _, e := range r.Errors {
		if e.Breaking {
			return true
		}
	}
	for _, w := range r.Warnings {
		if w.Breaking {
			return true
		}
	}
	return false
}

// Err returns the errors joined into a single error, or nil when
// validation passed. Warnings never contribute.
func (r *ValidationResult) Err() error {
	if !r.HasErrors() {
		return nil
	}
	errs := make([]error, len(r.Errors))
	for i, e := range r.Errors {
		errs[i] = e
	}
	return errors.Join(errs...)
}

// String returns a readable summary with breaking findings marked.
func (r *ValidationResult) String() string {
	if !r.HasErrors() && !r.HasWarnings() {
		return "no schema issues"
	}
	var sb strings.Builder
	section := func(header string, findings []*ValidationError) {
		if len(findings) == 0 {
			return
		}
		sb.WriteString(header)
		sb.WriteString(":\n")
		for _, f := range findings {
			sb.WriteString("  - ")
			sb.WriteString(f.Error())
			if f.Breaking {
				sb.WriteString(" [breaking]")
			}
			sb.WriteString("\n")
		}
	}
	section("errors", r.Errors)
	section("warnings", r.Warnings)
	return sb.String()
}

// report routes a finding to warnings when allowed, errors otherwise.
func (r *ValidationResult) report(allowed bool, e *ValidationError) {
	if allowed {
		r.Warnings = append(r.Warnings, e)
		return
	}
	r.Errors = append(r.Errors, e)
}

// ValidateOption configures validation.
type ValidateOption func(*validateConfig)

type validateConfig struct {
	allowDropColumn    bool
	allowDropTable     bool
	allowDropIndex     bool
	allowNullToNotNull bool
	maxNameLen         int
}

func newValidateConfig(opts []ValidateOption) *validateConfig {
	cfg := &validateConfig{maxNameLen: DefaultMaxNameLength}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// longName reports if the identifier exceeds the configured ceiling.
func (c *validateConfig) longName(name string) bool {
	return c.maxNameLen > 0 && len(name) > c.maxNameLen
}

// AllowDropTable downgrades dropped tables from errors to warnings.
func AllowDropTable() ValidateOption {
	return func(c *validateConfig) { c.allowDropTable = true }
}

// AllowDropColumn downgrades dropped columns from errors to warnings.
func AllowDropColumn() ValidateOption {
	return func(c *validateConfig) { c.allowDropColumn = true }
}

// AllowDropIndex downgrades dropped indexes from errors to warnings.
func AllowDropIndex() ValidateOption {
	return func(c *validateConfig) { c.allowDropIndex = true }
}

// AllowNullToNotNull downgrades NULL to NOT NULL column changes from
// errors to warnings.
func AllowNullToNotNull() ValidateOption {
	return func(c *validateConfig) { c.allowNullToNotNull = true }
}

// WithMaxNameLength overrides the identifier length ceiling. Zero
// disables the check entirely.
func WithMaxNameLength(n int) ValidateOption {
	return func(c *validateConfig) { c.maxNameLen = n }
}

// ValidateTable checks a single table descriptor: identifier lengths,
// duplicate names, untyped columns, and index, primary-key or
// foreign-key references to columns the table does not have. A table
// without any primary key is reported as a warning.
func ValidateTable(t *Table, opts ...ValidateOption) *ValidationResult {
	cfg := newValidateConfig(opts)
	result := &ValidationResult{}
	switch {
	case t.Name == "":
		result.Errors = append(result.Errors, &ValidationError{Message: "table with empty name"})
	case cfg.longName(t.Name):
		result.Errors = append(result.Errors, &ValidationError{
			Table:   t.Name,
			Message: fmt.Sprintf("table name exceeds %d characters", cfg.maxNameLen),
		})
	}
	cols := make(map[string]bool, len(t.Columns))
	for _, c := range t.Columns {
		if c.Name == "" {
			result.Errors = append(result.Errors, &ValidationError{Table: t.Name, Message: "column with empty name"})
			continue
		}
		switch {
		case cols[c.Name]:
			result.Errors = append(result.Errors, &ValidationError{
				Table: t.Name, Column: c.Name, Message: "duplicate column name",
			})
		case cfg.longName(c.Name):
			result.Errors = append(result.Errors, &ValidationError{
				Table: t.Name, Column: c.Name,
				Message: fmt.Sprintf("column name exceeds %d characters", cfg.maxNameLen),
			})
		}
		if c.Type == "" {
			result.Errors = append(result.Errors, &ValidationError{
				Table: t.Name, Column: c.Name, Message: "column has no type",
			})
		}
		cols[c.Name] = true
	}
	if len(t.PrimaryKey) == 0 && !hasPKColumn(t) {
		result.Warnings = append(result.Warnings, &ValidationError{
			Table: t.Name, Message: "table has no primary key",
		})
	}
	for _, c := range t.PrimaryKey {
		if !cols[c.Name] {
			result.Errors = append(result.Errors, &ValidationError{
				Table: t.Name, Column: c.Name, Message: "primary key references unknown column",
			})
		}
	}
	idxs := make(map[string]bool, len(t.Indexes))
	for _, idx := range t.Indexes {
		switch {
		case idxs[idx.Name]:
			result.Errors = append(result.Errors, &ValidationError{
				Table: t.Name, Message: fmt.Sprintf("duplicate index name %q", idx.Name),
			})
		case cfg.longName(idx.Name):
			result.Errors = append(result.Errors, &ValidationError{
				Table:   t.Name,
				Message: fmt.Sprintf("index name %q exceeds %d characters", idx.Name, cfg.maxNameLen),
			})
		}
		idxs[idx.Name] = true
		if len(idx.Columns) == 0 {
			result.Errors = append(result.Errors, &ValidationError{
				Table: t.Name, Message: fmt.Sprintf("index %q has no columns", idx.Name),
			})
		}
		for _, c := range idx.Columns {
			if c == nil || !cols[c.Name] {
				name := ""
				if c != nil {
					name = c.Name
				}
				result.Errors = append(result.Errors, &ValidationError{
					Table:   t.Name,
					Message: fmt.Sprintf("index %q references unknown column %q", idx.Name, name),
				})
			}
		}
	}
	for _, fk := range t.ForeignKeys {
		switch {
		case fk.Symbol == "":
			result.Errors = append(result.Errors, &ValidationError{
				Table: t.Name, Message: "foreign key with empty symbol",
			})
		case cfg.longName(fk.Symbol):
			result.Errors = append(result.Errors, &ValidationError{
				Table:   t.Name,
				Message: fmt.Sprintf("foreign key symbol %q exceeds %d characters", fk.Symbol, cfg.maxNameLen),
			})
		}
		for _, c := range fk.Columns {
			if !cols[c.Name] {
				result.Errors = append(result.Errors, &ValidationError{
					Table:   t.Name,
					Message: fmt.Sprintf("foreign key %q references unknown column %q", fk.Symbol, c.Name),
				})
			}
		}
		if fk.RefTable == nil {
			result.Errors = append(result.Errors, &ValidationError{
				Table: t.Name, Message: fmt.Sprintf("foreign key %q has no reference table", fk.Symbol),
			})
		}
		if len(fk.Columns) == 0 || len(fk.Columns) != len(fk.RefColumns) {
			result.Errors = append(result.Errors, &ValidationError{
				Table: t.Name, Message: fmt.Sprintf("foreign key %q column count mismatch", fk.Symbol),
			})
		}
	}
	return result
}

func hasPKColumn(t *Table) bool {
	for _, c := range t.Columns {
		if c.PKType() {
			return true
		}
	}
	return false
}

// ValidateSchema validates a set of tables as one schema: every table
// on its own, duplicate table names across the set, and foreign keys
// referencing tables outside it.
func ValidateSchema(tables []*Table, opts ...ValidateOption) *ValidationResult {
	result := &ValidationResult{}
	names := make(map[string]bool, len(tables))
	for _, t := range tables {
		if names[t.Name] {
			result.Errors = append(result.Errors, &ValidationError{
				Table: t.Name, Message: "duplicate table name",
			})
		}
		names[t.Name] = true
		tr := ValidateTable(t, opts...)
		result.Errors = append(result.Errors, tr.Errors...)
		result.Warnings = append(result.Warnings, tr.Warnings...)
	}
	for _, t := range tables {
		for _, fk := range t.ForeignKeys {
			if fk.RefTable != nil && !names[fk.RefTable.Name] {
				result.Errors = append(result.Errors, &ValidationError{
					Table:   t.Name,
					Message: fmt.Sprintf("foreign key %q references table %q outside the schema", fk.Symbol, fk.RefTable.Name),
				})
			}
		}
	}
	return result
}

// ValidateDiff compares a current and a desired schema and reports the
// changes that can break a populated database. Dropped tables, dropped
// columns and NULL to NOT NULL changes are errors unless the matching
// Allow option downgrades them to warnings; the rest are warnings.
func ValidateDiff(current, desired []*Table, opts ...ValidateOption) *ValidationResult {
	cfg := newValidateConfig(opts)
	result := &ValidationResult{}
	desiredByName := make(map[string]*Table, len(desired))
	for _, t := range desired {
		desiredByName[t.Name] = t
	}
	for _, t := range current {
		d, ok := desiredByName[t.Name]
		if !ok {
			result.report(cfg.allowDropTable, &ValidationError{
				Table: t.Name, Message: "table will be dropped", Breaking: true,
			})
			continue
		}
		diffTable(t, d, cfg, result)
	}
	return result
}

func diffTable(current, desired *Table, cfg *validateConfig, result *ValidationResult) {
	for _, c := range current.Columns {
		if !desired.HasColumn(c.Name) {
			result.report(cfg.allowDropColumn, &ValidationError{
				Table: current.Name, Column: c.Name, Message: "column will be dropped", Breaking: true,
			})
		}
	}
	for _, d := range desired.Columns {
		c, ok := current.Column(d.Name)
		if !ok {
			if !d.Nullable && d.Default == nil && !d.PKType() {
				result.Warnings = append(result.Warnings, &ValidationError{
					Table: current.Name, Column: d.Name,
					Message: "new NOT NULL column without a default may fail on existing rows",
				})
			}
			continue
		}
		diffColumn(current.Name, c, d, cfg, result)
	}
	for _, idx := range current.Indexes {
		if _, ok := desired.Index(idx.Name); !ok {
			result.report(cfg.allowDropIndex, &ValidationError{
				Table: current.Name, Message: fmt.Sprintf("index %q will be dropped", idx.Name),
			})
		}
	}
}

func diffColumn(table string, current, desired *Column, cfg *validateConfig, result *ValidationResult) {
	if current.Type != desired.Type {
		result.Warnings = append(result.Warnings, &ValidationError{
			Table: table, Column: desired.Name,
			Message: fmt.Sprintf("column type changing from %q to %q", current.Type, desired.Type),
		})
	}
	if current.Nullable && !desired.Nullable {
		result.report(cfg.allowNullToNotNull, &ValidationError{
			Table: table, Column: desired.Name,
			Message:  "column changing from NULL to NOT NULL may fail on NULL values",
			Breaking: true,
		})
	}
	if current.Size > 0 && desired.Size > 0 && desired.Size < current.Size {
		result.Warnings = append(result.Warnings, &ValidationError{
			Table: table, Column: desired.Name,
			Message: fmt.Sprintf("column size reducing from %d to %d may truncate data", current.Size, desired.Size),
		})
	}
	if !current.Unique && desired.Unique {
		result.Warnings = append(result.Warnings, &ValidationError{
			Table: table, Column: desired.Name,
			Message: "adding UNIQUE may fail on duplicate values",
		})
	}
}
