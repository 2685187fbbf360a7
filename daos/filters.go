package daos

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/joe-ervin05/brick/tools"
)

// FilterCondition is a single column predicate sent by clients.
type FilterCondition struct {
	Column string `json:"column"`
	Op     string `json:"op"`
	Value  any    `json:"value,omitempty"`
}

// binaryOps maps comparison operators to their SQL spelling.
var binaryOps = map[string]string{
	OpEq:      "=",
	OpNeq:     "<>",
	OpGt:      ">",
	OpGte:     ">=",
	OpLt:      "<",
	OpLte:     "<=",
	OpLike:    "LIKE",
	OpNotLike: "NOT LIKE",
}

// ParseFilters decodes the JSON filters query parameter. Malformed input
// yields no filters, matching the skip-invalid policy of CompileFilters.
func ParseFilters(raw string) []FilterCondition {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	var filters []FilterCondition
	if err := json.Unmarshal([]byte(raw), &filters); err != nil {
		return nil
	}
	return filters
}

// CompileFilters builds a WHERE body and its bound arguments from filters.
//
// Filters on columns outside validColumns and unknown operators are dropped
// silently so stale client state never fails a read. Surviving fragments keep
// input order and are joined with AND. An empty result means no WHERE.
func CompileFilters(filters []FilterCondition, validColumns map[string]bool) (string, []any) {
	var parts []string
	var args []any

	for _, f := range filters {
		if !validColumns[f.Column] {
			continue
		}
		col := tools.QuoteIdent(f.Column)

		switch f.Op {
		case OpIsNull:
			parts = append(parts, col+" IS NULL")
		case OpIsNotNull:
			parts = append(parts, col+" IS NOT NULL")
		case OpIn:
			var tokens []any
			for _, tok := range strings.Split(filterValue(f.Value), ",") {
				if tok = strings.TrimSpace(tok); tok != "" {
					tokens = append(tokens, tok)
				}
			}
			if len(tokens) == 0 {
				continue
			}
			placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(tokens)), ", ")
			parts = append(parts, fmt.Sprintf("%s IN (%s)", col, placeholders))
			args = append(args, tokens...)
		default:
			op, ok := binaryOps[f.Op]
			if !ok {
				continue
			}
			parts = append(parts, fmt.Sprintf("%s %s ?", col, op))
			args = append(args, filterValue(f.Value))
		}
	}

	return strings.Join(parts, " AND "), args
}

// filterValue renders a filter value as the string the client typed.
// A missing value becomes the empty string.
func filterValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case json.Number:
		return val.String()
	default:
		return fmt.Sprint(val)
	}
}
