package tools

import (
	"context"
	"sort"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/usestring/aoscx-mcp/internal/schema"
)

// ValidateInput is the input for aoscx_validate.
type ValidateInput struct {
	Hosts    []string `json:"hosts,omitempty" jsonschema:"Switches to check (default: ARUBAOS_CX_HOST)"`
	Path     string   `json:"path" jsonschema:"required,Resource path relative to /rest/{version}"`
	Schema   string   `json:"schema" jsonschema:"required,JSON Schema document the response must satisfy"`
	Depth    int      `json:"depth,omitempty" jsonschema:"Expansion depth for nested resources (1-4, default: 1)"`
	Selector string   `json:"selector,omitempty" jsonschema:"Attribute category: configuration, status, statistics or writable"`
}

// ValidateOutput is the output for aoscx_validate.
type ValidateOutput struct {
	Path         string           `json:"path"`
	Summary      ValidateSummary  `json:"summary"`
	Results      []HostValidation `json:"results,omitzero"`
	CommonErrors []CommonError    `json:"common_errors,omitempty"`
}

// ValidateSummary summarizes the validation results.
type ValidateSummary struct {
	TotalHosts    int  `json:"total_hosts"`
	MatchingCount int  `json:"matching_count"`
	FailedCount   int  `json:"failed_count"`
	SkippedCount  int  `json:"skipped_count"`
	AllMatch      bool `json:"all_match"`
}

// HostValidation is the validation result for one switch.
type HostValidation struct {
	Host       string   `json:"host"`
	Valid      bool     `json:"valid"`
	Errors     []string `json:"errors,omitempty"`
	Skipped    bool     `json:"skipped,omitempty"`
	SkipReason string   `json:"skip_reason,omitempty"`
}

// CommonError represents a validation error seen on several hosts.
type CommonError struct {
	Error     string `json:"error"`
	Frequency int    `json:"frequency"`
}

// ToolValidate validates a resource on one or more switches against a JSON Schema.
func ToolValidate(d *Deps) func(ctx context.Context, req *sdkmcp.CallToolRequest, input ValidateInput) (*sdkmcp.CallToolResult, ValidateOutput, error) {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest, input ValidateInput) (*sdkmcp.CallToolResult, ValidateOutput, error) {
		if input.Schema == "" {
			return nil, ValidateOutput{}, ErrInvalidInput("schema is required")
		}
		validator, err := schema.NewValidator(input.Schema)
		if err != nil {
			return nil, ValidateOutput{}, ErrInvalidInput(err.Error())
		}

		hosts := input.Hosts
		if len(hosts) == 0 {
			host, err := d.ResolveHost("")
			if err != nil {
				return nil, ValidateOutput{}, err
			}
			hosts = []string{host}
		}
		path, err := normalizePath(input.Path)
		if err != nil {
			return nil, ValidateOutput{}, err
		}

		results, err := d.fetchFleet(ctx, hosts, path, GetParams{Depth: input.Depth, Selector: input.Selector}, false)
		if err != nil {
			return nil, ValidateOutput{}, err
		}

		output := ValidateOutput{
			Path:    path,
			Results: make([]HostValidation, 0, len(results)),
		}
		errorCounts := make(map[string]int)

		for _, r := range results {
			if r.Err != nil {
				output.Results = append(output.Results, HostValidation{
					Host:       r.Host,
					Skipped:    true,
					SkipReason: ErrorCode(r.Err) + ": " + r.Err.Error(),
				})
				output.Summary.SkippedCount++
				continue
			}

			res := validator.Validate(r.Value.resp.Body)
			output.Results = append(output.Results, HostValidation{
				Host:   r.Host,
				Valid:  res.Valid,
				Errors: res.Errors,
			})
			if res.Valid {
				output.Summary.MatchingCount++
				continue
			}
			output.Summary.FailedCount++
			for _, e := range res.Errors {
				errorCounts[e]++
			}
		}

		output.Summary.TotalHosts = len(results)
		output.Summary.AllMatch = output.Summary.FailedCount == 0 && output.Summary.SkippedCount == 0
		output.CommonErrors = commonErrors(errorCounts)

		return nil, output, nil
	}
}

// commonErrors returns errors seen more than once, most frequent first.
func commonErrors(counts map[string]int) []CommonError {
	var common []CommonError
	for msg, n := range counts {
		if n > 1 {
			common = append(common, CommonError{Error: msg, Frequency: n})
		}
	}
	sort.Slice(common, func(i, j int) bool {
		if common[i].Frequency != common[j].Frequency {
			return common[i].Frequency > common[j].Frequency
		}
		return common[i].Error < common[j].Error
	})
	if len(common) > 10 {
		common = common[:10]
	}
	return common
}
