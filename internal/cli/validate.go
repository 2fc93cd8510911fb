package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/sieve/internal/ordering"
	"github.com/roach88/sieve/internal/predicate"
	"github.com/roach88/sieve/internal/queryir"
	"github.com/roach88/sieve/internal/schema"
)

// ValidateOptions holds flags for the validate command.
type ValidateOptions struct {
	*RootOptions
	Schema string
	Sort   string // optional path to a JSON sort spec
}

// ValidationError is one rejected part of a filter or sort.
type ValidationError struct {
	Source   string `json:"source"` // "filter" or "sort"
	Code     string `json:"code"`
	Property string `json:"property,omitempty"`
	Operator string `json:"operator,omitempty"`
	Message  string `json:"message"`
}

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid       bool              `json:"valid"`
	Fingerprint string            `json:"fingerprint,omitempty"`
	Errors      []ValidationError `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ValidateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "validate <filter.json>",
		Short: "Compile a filter group and sort spec against a schema",
		Long: `Compile a JSON filter group, and optionally a JSON sort spec, against a
CUE record schema without loading any records.

On success the filter fingerprint is printed. Two filters with the same
fingerprint select exactly the same records.

Exit codes:
  0 - Filter and sort compile
  1 - Filter or sort rejected
  2 - Command error (missing files, unreadable schema)`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Schema, "schema", "", "path to CUE record schema (required)")
	cmd.Flags().StringVar(&opts.Sort, "sort", "", "path to JSON sort spec")

	return cmd
}

func runValidate(opts *ValidateOptions, filterPath string, cmd *cobra.Command) error {
	f := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	if opts.Schema == "" {
		return commandFailure(f, ErrCodeInvalidFlag, "invalid flags", errors.New("--schema is required"))
	}

	s, err := schema.Load(opts.Schema)
	if err != nil {
		return commandFailure(f, ErrCodeLoad, "failed to load schema", err)
	}

	filterData, err := os.ReadFile(filterPath)
	if err != nil {
		return commandFailure(f, ErrCodeLoad, "failed to read filter", err)
	}
	var sortData []byte
	if opts.Sort != "" {
		sortData, err = os.ReadFile(opts.Sort)
		if err != nil {
			return commandFailure(f, ErrCodeLoad, "failed to read sort", err)
		}
	}

	result := ValidationResult{Valid: true}

	f.VerboseLog("Compiling filter %s", filterPath)
	g, err := queryir.ParseGroup(filterData)
	if err == nil {
		_, err = predicate.CompileGroup(s.Registry(), g)
	}
	if err == nil {
		result.Fingerprint, err = g.Fingerprint()
	}
	if err != nil {
		result.Errors = append(result.Errors, toValidationError("filter", err))
	}

	if sortData != nil {
		f.VerboseLog("Compiling sort %s", opts.Sort)
		spec, err := queryir.ParseSortSpec(sortData)
		if err == nil {
			_, err = ordering.Compile(s.Registry(), spec)
		}
		if err != nil {
			result.Errors = append(result.Errors, toValidationError("sort", err))
		}
	}

	if len(result.Errors) > 0 {
		result.Valid = false
		result.Fingerprint = ""
		return outputValidationErrors(f, result)
	}

	if f.Format == "json" {
		return f.Success(result)
	}
	fmt.Fprintln(f.Writer, "✓ Filter valid")
	fmt.Fprintf(f.Writer, "  fingerprint: %s\n", result.Fingerprint)
	return nil
}

func toValidationError(src string, err error) ValidationError {
	var qe *queryir.Error
	if errors.As(err, &qe) {
		return ValidationError{
			Source:   src,
			Code:     string(qe.Code),
			Property: qe.Property,
			Operator: string(qe.Operator),
			Message:  qe.Message,
		}
	}
	return ValidationError{Source: src, Code: "ERROR", Message: err.Error()}
}

// outputValidationErrors reports a rejected filter or sort.
func outputValidationErrors(f *OutputFormatter, result ValidationResult) error {
	failure := NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(result.Errors)))

	if f.Format == "json" {
		first := result.Errors[0]
		if err := f.encode(CLIResponse{
			Status: "error",
			Data:   result,
			Error:  &CLIError{Code: first.Code, Message: first.Message},
		}); err != nil {
			return err
		}
		return failure
	}

	fmt.Fprintln(f.Writer, "✗ Validation failed")
	fmt.Fprintln(f.Writer)
	for _, e := range result.Errors {
		fmt.Fprintf(f.Writer, "%s\n", e.Source)
		fmt.Fprintf(f.Writer, "  %s: %s\n", e.Code, e.Message)
		if e.Property != "" {
			fmt.Fprintf(f.Writer, "  property: %s\n", e.Property)
		}
		if e.Operator != "" {
			fmt.Fprintf(f.Writer, "  operator: %s\n", e.Operator)
		}
		fmt.Fprintln(f.Writer)
	}
	return failure
}
