// Package validation implements the declarative request validation used by
// every write endpoint. Handlers describe each field with a list of
// constraints; the engine evaluates all of them and collects human-readable
// messages instead of stopping at the first failure.
package validation

import (
	"context"
	"fmt"
	"regexp"
	"time"
)

// Kind identifies a constraint type.
type Kind int

const (
	KindRequired Kind = iota
	KindEmail
	KindMinLength
	KindDate
	KindUnique
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// dateLayouts are the accepted deadline formats, tried in order.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Constraint is a single validation rule attached to a field.
type Constraint struct {
	Kind      Kind
	MinLength int
	Format    string
	Table     string
	Column    string
}

// Required fails when the field value is empty.
func Required() Constraint {
	return Constraint{Kind: KindRequired}
}

// Email fails when a non-empty value is not a plausible email address.
func Email() Constraint {
	return Constraint{Kind: KindEmail}
}

// MinLength fails when a non-empty value is shorter than n bytes.
func MinLength(n int) Constraint {
	return Constraint{Kind: KindMinLength, MinLength: n}
}

// Date fails when a non-empty value is not a parseable date. A non-empty
// format additionally requires the value to match that exact layout.
func Date(format string) Constraint {
	return Constraint{Kind: KindDate, Format: format}
}

// Unique fails when a non-empty value already exists in the given table
// column. Table and column are static identifiers declared at the call site.
func Unique(table, column string) Constraint {
	return Constraint{Kind: KindUnique, Table: table, Column: column}
}

// Field is a named request value with its constraints.
type Field struct {
	Name        string
	Value       string
	Constraints []Constraint
}

// ExistsChecker answers uniqueness lookups for the Unique constraint.
type ExistsChecker interface {
	Exists(ctx context.Context, table, column, value string, excludeID int64) (bool, error)
}

// Engine evaluates field constraints. The zero value works for constraint
// sets without Unique; uniqueness checks need a store.
type Engine struct {
	store ExistsChecker
}

// NewEngine creates an Engine backed by the given store.
func NewEngine(store ExistsChecker) *Engine {
	return &Engine{store: store}
}

// Validate evaluates every constraint of every field and returns the
// collected failure messages. excludeID exempts one row from uniqueness
// checks, for update requests validating against the record itself. A store
// failure during a uniqueness lookup is returned as an error, not a message.
func (e *Engine) Validate(ctx context.Context, fields []Field, excludeID int64) ([]string, error) {
	messages := []string{}

	for _, field := range fields {
		for _, c := range field.Constraints {
			switch c.Kind {
			case KindRequired:
				if field.Value == "" {
					messages = append(messages, fmt.Sprintf("%s is required", field.Name))
				}
			case KindEmail:
				if field.Value != "" && !emailPattern.MatchString(field.Value) {
					messages = append(messages, fmt.Sprintf("%s must be a valid email", field.Name))
				}
			case KindMinLength:
				if field.Value != "" && len(field.Value) < c.MinLength {
					messages = append(messages,
						fmt.Sprintf("%s must be at least %d characters", field.Name, c.MinLength))
				}
			case KindDate:
				if field.Value == "" {
					continue
				}

				if !parseableDate(field.Value) {
					messages = append(messages, fmt.Sprintf("%s must be a valid date", field.Name))
				} else if c.Format != "" {
					if _, err := time.Parse(c.Format, field.Value); err != nil {
						messages = append(messages,
							fmt.Sprintf("%s must match format %s", field.Name, c.Format))
					}
				}
			case KindUnique:
				if field.Value == "" {
					continue
				}

				exists, err := e.store.Exists(ctx, c.Table, c.Column, field.Value, excludeID)
				if err != nil {
					return nil, fmt.Errorf("uniqueness check for %s: %w", field.Name, err)
				}

				if exists {
					messages = append(messages, fmt.Sprintf("%s already exists", field.Name))
				}
			}
		}
	}

	return messages, nil
}

func parseableDate(value string) bool {
	for _, layout := range dateLayouts {
		if _, err := time.Parse(layout, value); err == nil {
			return true
		}
	}

	return false
}
