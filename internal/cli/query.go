package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roach88/sieve/internal/ir"
	"github.com/roach88/sieve/internal/odata"
	"github.com/roach88/sieve/internal/queryir"
	"github.com/roach88/sieve/internal/schema"
	"github.com/roach88/sieve/internal/source"
	"github.com/roach88/sieve/internal/view"
)

// QueryOptions holds flags for the query command.
type QueryOptions struct {
	*RootOptions
	Schema     string
	Data       string
	Database   string
	Table      string
	Filter     string
	FilterJSON string
	OrderBy    string
	Skip       int
	Top        int
	Dedupe     bool
}

// QueryResult is the payload of a successful query.
type QueryResult struct {
	ViewID  string        `json:"view_id"`
	Matched int           `json:"matched"` // visible records before paging
	Items   []ir.IRObject `json:"items"`

	fields []string
}

// NewQueryCommand creates the query command.
func NewQueryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &QueryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "query",
		Short: "Filter, sort and page records",
		Long: `Load records described by a CUE schema, apply a filter and sort, and
print the requested page.

Records come from a YAML or JSON file (--data) or a SQLite table
(--db and --table). The filter is either a $filter expression (--filter)
or a JSON filter group (--filter-json).

Exit codes:
  0 - Query succeeded
  1 - Query rejected (unknown property, unsupported operator, ...)
  2 - Command error (missing files, bad flags, unreadable data)

Examples:
  sieve query --schema people.cue --data people.yaml --filter "Age ge 18" --orderby "Name"
  sieve query --schema people.cue --db app.db --table people --orderby "Age desc" --top 10
  sieve query --schema people.cue --data people.yaml --filter-json filter.json --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(cmd.Context(), opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Schema, "schema", "", "path to CUE record schema (required)")
	cmd.Flags().StringVar(&opts.Data, "data", "", "path to YAML or JSON records")
	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database")
	cmd.Flags().StringVar(&opts.Table, "table", "", "table to read from --db")
	cmd.Flags().StringVar(&opts.Filter, "filter", "", "$filter expression")
	cmd.Flags().StringVar(&opts.FilterJSON, "filter-json", "", "path to JSON filter group")
	cmd.Flags().StringVar(&opts.OrderBy, "orderby", "", "$orderby expression")
	cmd.Flags().IntVar(&opts.Skip, "skip", 0, "records to skip")
	cmd.Flags().IntVar(&opts.Top, "top", -1, "maximum records to return (-1 for all)")
	cmd.Flags().BoolVar(&opts.Dedupe, "dedupe", false, "collapse value-equal records")

	return cmd
}

func runQuery(ctx context.Context, opts *QueryOptions, cmd *cobra.Command) error {
	f := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	if err := checkQueryFlags(opts); err != nil {
		return commandFailure(f, ErrCodeInvalidFlag, "invalid flags", err)
	}

	s, err := schema.Load(opts.Schema)
	if err != nil {
		return commandFailure(f, ErrCodeLoad, "failed to load schema", err)
	}
	f.VerboseLog("Loaded schema %s with %d field(s)", opts.Schema, len(s.Fields))

	q, err := buildQuery(opts, cmd)
	if err != nil {
		var qe *queryir.Error
		if errors.As(err, &qe) {
			return queryFailure(f, err)
		}
		return commandFailure(f, ErrCodeLoad, "failed to read filter", err)
	}

	recs, err := loadRecords(ctx, opts, s, q.Filter)
	if err != nil {
		return commandFailure(f, ErrCodeLoad, "failed to load records", err)
	}
	f.VerboseLog("Loaded %d record(s)", len(recs))

	v := view.New(s.Registry(), recs, view.WithLogger(slog.Default()))
	v.SetDedupe(opts.Dedupe)

	page, err := odata.Apply(v, q)
	if err != nil {
		return queryFailure(f, err)
	}

	result := QueryResult{
		ViewID:  v.ID(),
		Matched: v.Len(),
		Items:   make([]ir.IRObject, len(page)),
	}
	for i, rec := range page {
		result.Items[i] = s.Registry().Canonical(rec)
	}
	for _, field := range s.Fields {
		result.fields = append(result.fields, field.Name)
	}

	if opts.Format == "json" {
		return f.Success(result)
	}
	return writeTable(cmd, result)
}

func checkQueryFlags(opts *QueryOptions) error {
	switch {
	case opts.Schema == "":
		return fmt.Errorf("--schema is required")
	case (opts.Data == "") == (opts.Database == ""):
		return fmt.Errorf("exactly one of --data or --db is required")
	case opts.Database != "" && opts.Table == "":
		return fmt.Errorf("--table is required with --db")
	case opts.Filter != "" && opts.FilterJSON != "":
		return fmt.Errorf("--filter and --filter-json are mutually exclusive")
	}
	return nil
}

// buildQuery turns the query flags into query options so they go through
// the same parser as any other client.
func buildQuery(opts *QueryOptions, cmd *cobra.Command) (odata.Query, error) {
	var options []odata.Option
	if opts.Filter != "" {
		options = append(options, odata.Option{Option: "$filter", Query: opts.Filter})
	}
	if opts.OrderBy != "" {
		options = append(options, odata.Option{Option: "$orderby", Query: opts.OrderBy})
	}
	if cmd.Flags().Changed("skip") {
		options = append(options, odata.Option{Option: "$skip", Query: fmt.Sprint(opts.Skip)})
	}
	if cmd.Flags().Changed("top") && opts.Top >= 0 {
		options = append(options, odata.Option{Option: "$top", Query: fmt.Sprint(opts.Top)})
	}

	q, err := odata.Parse(options)
	if err != nil {
		return odata.Query{}, err
	}

	if opts.FilterJSON != "" {
		data, err := os.ReadFile(opts.FilterJSON)
		if err != nil {
			return odata.Query{}, err
		}
		g, err := queryir.ParseGroup(data)
		if err != nil {
			return odata.Query{}, err
		}
		q.Filter = g
	}

	return q, nil
}

// loadRecords reads the records named by the flags. For SQLite sources the
// filter is passed down so the table read can skip rows early.
func loadRecords(ctx context.Context, opts *QueryOptions, s *schema.Schema, filter queryir.Group) ([]schema.Record, error) {
	if opts.Data != "" {
		return source.ReadFile(opts.Data, s)
	}

	db, err := source.Open(opts.Database)
	if err != nil {
		return nil, err
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			slog.Error("error closing database", "error", closeErr)
		}
	}()

	return db.ReadTable(ctx, opts.Table, s, filter)
}

// writeTable prints the page as a tab-aligned table, one column per field.
func writeTable(cmd *cobra.Command, result QueryResult) error {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)

	fmt.Fprintln(w, strings.Join(result.fields, "\t"))
	for _, item := range result.Items {
		cells := make([]string, len(result.fields))
		for i, name := range result.fields {
			cells[i] = cellText(item[name])
		}
		fmt.Fprintln(w, strings.Join(cells, "\t"))
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "\n%d of %d record(s)\n", len(result.Items), result.Matched)
	return nil
}

func cellText(v ir.IRValue) string {
	if s, ok := v.(ir.IRString); ok {
		return string(s)
	}
	data, err := ir.MarshalCanonical(v)
	if err != nil {
		return "?"
	}
	return string(data)
}

// queryFailure reports a rejected filter or sort with its error code.
func queryFailure(f *OutputFormatter, err error) error {
	code := "ERROR"
	var details map[string]string
	var qe *queryir.Error
	if errors.As(err, &qe) {
		code = string(qe.Code)
		details = map[string]string{}
		if qe.Property != "" {
			details["property"] = qe.Property
		}
		if qe.Operator != "" {
			details["operator"] = string(qe.Operator)
		}
	}

	if outErr := f.Error(code, err.Error(), details); outErr != nil {
		return outErr
	}
	return WrapExitError(ExitFailure, "query rejected", err)
}

// commandFailure reports an error that is not about the query itself.
func commandFailure(f *OutputFormatter, code, message string, err error) error {
	if outErr := f.Error(code, fmt.Sprintf("%s: %v", message, err), nil); outErr != nil {
		return outErr
	}
	return WrapExitError(ExitCommandError, message, err)
}
