// Package query evaluates JSONPath expressions over stored run artifacts.
package query

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/PaesslerAG/jsonpath"

	"github.com/MarcoAyalaT/Vicente/internal/domain"
)

// Apply evaluates expr against the JSON document doc.
func Apply(doc []byte, expr string) (any, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return nil, queryError(expr, fmt.Errorf("empty jsonpath expression"))
	}

	v, err := parseJSON(doc)
	if err != nil {
		return nil, queryError(expr, fmt.Errorf("document is not valid JSON: %w", err))
	}

	out, err := jsonpath.Get(expr, v)
	if err != nil {
		return nil, queryError(expr, err)
	}
	if isEmptyValue(out) {
		return nil, &domain.OpError{
			Op:   "query.apply",
			Kind: domain.KindNotFound,
			Path: expr,
			Err:  fmt.Errorf("no value found: %w", domain.ErrNotFound),
		}
	}
	return out, nil
}

// Format renders a query result for the terminal: scalars as plain text,
// everything else as indented JSON.
func Format(v any) (string, error) {
	switch t := v.(type) {
	case string:
		return t, nil
	case float64, bool, int, int64, uint64:
		return fmt.Sprint(t), nil
	case []any:
		if len(t) == 1 {
			return Format(t[0])
		}
	}
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func queryError(expr string, err error) error {
	return &domain.OpError{
		Op:   "query.apply",
		Kind: domain.KindInvalidConfig,
		Path: expr,
		Err:  fmt.Errorf("%w: %v", domain.ErrInvalidConfig, err),
	}
}

func parseJSON(body []byte) (any, error) {
	var doc any
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func isEmptyValue(v any) bool {
	if v == nil {
		return true
	}
	switch t := v.(type) {
	case []any:
		return len(t) == 0
	case map[string]any:
		return len(t) == 0
	default:
		return false
	}
}
