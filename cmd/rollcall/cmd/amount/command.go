// Package amount implements the amount command.
package amount

import (
	"github.com/spf13/cobra"

	"github.com/agentstation/rollcall/internal/appcontext"
	"github.com/agentstation/rollcall/internal/cmd/output"
	"github.com/agentstation/rollcall/pkg/currency"
)

// Result is a parsed amount and its major-unit value.
type Result struct {
	Raw       string  `json:"raw" yaml:"raw"`
	Value     float64 `json:"value" yaml:"value"`
	Status    string  `json:"status" yaml:"status"`
	MajorUnit float64 `json:"major_unit" yaml:"major_unit"`
}

// NewCommand creates the amount command using app context.
func NewCommand(app appcontext.Interface) *cobra.Command {
	return &cobra.Command{
		Use:   "amount <raw>...",
		Short: "Parse free-text currency amounts",
		Long: `Amount parses each argument the way asset and liability columns are
parsed during a merge, and converts the result to the configured major unit
(crore by default). Unparseable input yields 0 with status "unparseable".`,
		Args: cobra.MinimumNArgs(1),
		Example: `  rollcall amount "Rs 6,56,73,990 ~ 6 Crore+"
  rollcall amount Nil "" "N/A" -o table`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.RunConfig()
			if err != nil {
				return err
			}
			parser, err := cfg.Parser()
			if err != nil {
				return err
			}
			converter, err := cfg.Converter()
			if err != nil {
				return err
			}
			format, err := output.Resolve(app.OutputFormat(), cmd.OutOrStdout())
			if err != nil {
				return err
			}
			return output.Write(cmd.OutOrStdout(), format, Parse(parser, converter, args...))
		},
	}
}

// Parse parses every raw amount.
func Parse(p *currency.Parser, c *currency.Converter, raws ...string) []Result {
	results := make([]Result, 0, len(raws))
	for _, raw := range raws {
		a := p.Parse(raw)
		results = append(results, Result{
			Raw:       raw,
			Value:     a.Value,
			Status:    a.Status.String(),
			MajorUnit: c.ToMajorUnit(a.Value),
		})
	}
	return results
}
