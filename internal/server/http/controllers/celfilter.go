package controllers

import (
	"strings"

	"github.com/google/cel-go/cel"

	"github.com/doebialale/EZRAVERIFY/internal/record"
)

// celFilter wraps a compiled CEL program used by the admin listing.
// When disabled, Eval always returns true.
type celFilter struct {
	prog    cel.Program
	enabled bool
}

func newCELFilter(expr string) (celFilter, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return celFilter{enabled: false}, nil
	}
	env, err := cel.NewEnv(
		cel.Variable("id", cel.StringType),
		cel.Variable("info", cel.StringType),
		cel.Variable("scan_count", cel.IntType),
		cel.Variable("sold", cel.BoolType),
		cel.Variable("expired", cel.BoolType),
		cel.Variable("manufacturing_date", cel.StringType),
		cel.Variable("expiration_date", cel.StringType),
		cel.Variable("sold_date", cel.StringType),
	)
	if err != nil {
		return celFilter{}, err
	}
	ast, iss := env.Parse(expr)
	if iss != nil && iss.Err() != nil {
		return celFilter{}, iss.Err()
	}
	checked, iss2 := env.Check(ast)
	if iss2 != nil && iss2.Err() != nil {
		return celFilter{}, iss2.Err()
	}
	prog, err := env.Program(checked)
	if err != nil {
		return celFilter{}, err
	}
	return celFilter{prog: prog, enabled: true}, nil
}

// Eval evaluates the compiled expression against a record. When disabled,
// returns true.
func (f celFilter) Eval(rec record.Record, today record.Date) bool {
	if !f.enabled {
		return true
	}
	var soldDate string
	if rec.SoldDate != nil {
		soldDate = rec.SoldDate.String()
	}
	out, _, err := f.prog.Eval(map[string]any{
		"id":                 rec.ID,
		"info":               rec.Info,
		"scan_count":         int64(rec.ScanCount),
		"sold":               rec.Sold(),
		"expired":            today.After(rec.ExpirationDate),
		"manufacturing_date": rec.ManufacturingDate.String(),
		"expiration_date":    rec.ExpirationDate.String(),
		"sold_date":          soldDate,
	})
	if err != nil {
		return false
	}
	b, ok := out.Value().(bool)
	return ok && b
}
