// Package query provides JQ-based querying for switch REST responses.
package query

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/itchyny/gojq"
)

// Engine executes JQ queries against JSON response bodies.
type Engine struct{}

// NewEngine creates a new query engine.
func NewEngine() *Engine {
	return &Engine{}
}

// Result contains the results of a JQ query.
type Result struct {
	Values      []any          `json:"values"`                 // Extracted values
	Errors      []string       `json:"errors,omitempty"`       // Per-input errors (e.g., type mismatch)
	RawCount    int            `json:"raw_count"`              // Count before deduplication
	LabelCounts map[string]int `json:"label_counts,omitempty"` // Value count per label
	Truncated   bool           `json:"truncated,omitempty"`    // maxResults was reached
}

// Input is one labelled JSON document, typically one switch's response.
type Input struct {
	Label string
	Data  []byte
}

// Query executes a JQ expression against a single JSON document.
func (e *Engine) Query(data []byte, expression string, maxResults int) (*Result, error) {
	res, err := e.QueryInputs([]Input{{Label: "response", Data: data}}, expression, false, maxResults)
	if err != nil {
		return nil, err
	}
	res.LabelCounts = nil
	if len(res.Errors) > 0 && len(res.Values) == 0 {
		return res, errors.New(res.Errors[0])
	}
	return res, nil
}

// QueryInputs executes a JQ expression against several labelled documents,
// combining the results. Errors for one input do not stop the others.
func (e *Engine) QueryInputs(inputs []Input, expression string, deduplicate bool, maxResults int) (*Result, error) {
	code, err := compile(expression)
	if err != nil {
		return nil, err
	}

	result := &Result{
		Values:      make([]any, 0),
		LabelCounts: make(map[string]int),
	}
	seen := make(map[string]bool)
	seenErrors := make(map[string]bool)

	addError := func(msg string) {
		if !seenErrors[msg] {
			seenErrors[msg] = true
			result.Errors = append(result.Errors, msg)
		}
	}

	for _, in := range inputs {
		if maxResults > 0 && len(result.Values) >= maxResults {
			result.Truncated = true
			break
		}

		var doc any
		if err := json.Unmarshal(in.Data, &doc); err != nil {
			addError(fmt.Sprintf("%s: invalid JSON: %v", in.Label, err))
			continue
		}

		iter := code.Run(doc)
		for {
			if maxResults > 0 && len(result.Values) >= maxResults {
				result.Truncated = true
				break
			}

			v, ok := iter.Next()
			if !ok {
				break
			}
			if err, isErr := v.(error); isErr {
				addError(formatJQError(in.Label, err))
				continue
			}
			if v == nil {
				continue
			}

			result.RawCount++
			result.LabelCounts[in.Label]++

			if deduplicate {
				key := valueKey(v)
				if seen[key] {
					continue
				}
				seen[key] = true
			}
			result.Values = append(result.Values, v)
		}
	}

	return result, nil
}

// ValidateExpression checks if a JQ expression is valid without executing it.
func (e *Engine) ValidateExpression(expression string) error {
	_, err := compile(expression)
	return err
}

func compile(expression string) (*gojq.Code, error) {
	q, err := gojq.Parse(expression)
	if err != nil {
		var parseErr *gojq.ParseError
		if errors.As(err, &parseErr) {
			return nil, fmt.Errorf("invalid jq expression at position %d: %w", parseErr.Offset, err)
		}
		return nil, fmt.Errorf("invalid jq expression: %w", err)
	}

	code, err := gojq.Compile(q)
	if err != nil {
		return nil, fmt.Errorf("failed to compile jq expression: %w", err)
	}
	return code, nil
}

// formatJQError creates a helpful error message for JQ execution errors.
//
// Runtime errors such as "cannot iterate over: null" are untyped in gojq,
// so hints are chosen by string matching. They only decorate the message.
func formatJQError(label string, err error) string {
	var haltErr *gojq.HaltError
	if errors.As(err, &haltErr) {
		if haltErr.Value() == nil {
			return fmt.Sprintf("%s: query halted", label)
		}
		return fmt.Sprintf("%s: query halted with: %v", label, haltErr.Value())
	}

	errStr := err.Error()

	var hint string
	switch {
	case strings.Contains(errStr, "cannot iterate over: null"):
		hint = " (the attribute may not exist at this depth; try ?depth=2)"
	case strings.Contains(errStr, "cannot index") && strings.Contains(errStr, "with"):
		hint = " (field not found or wrong type)"
	case strings.Contains(errStr, "object") && strings.Contains(errStr, "cannot be iterated"):
		hint = " (collections are objects keyed by name, try .[] or keys)"
	case strings.Contains(errStr, "array") && strings.Contains(errStr, "cannot be indexed"):
		hint = " (expected object but got array, try adding '[]')"
	}

	return fmt.Sprintf("%s: %s%s", label, errStr, hint)
}

// valueKey creates a string key for deduplication.
func valueKey(v any) string {
	switch val := v.(type) {
	case string:
		return "s:" + val
	case float64:
		return fmt.Sprintf("n:%v", val)
	case bool:
		return fmt.Sprintf("b:%v", val)
	default:
		b, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprintf("?:%v", val)
		}
		return "j:" + string(b)
	}
}
