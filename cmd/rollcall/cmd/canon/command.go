// Package canon implements the canon command.
package canon

import (
	"github.com/spf13/cobra"

	"github.com/agentstation/rollcall/internal/appcontext"
	"github.com/agentstation/rollcall/internal/cmd/output"
	"github.com/agentstation/rollcall/pkg/canonical"
)

// Result is the canonical form of a name and the join key it produces.
type Result struct {
	Raw         string `json:"raw" yaml:"raw"`
	Canonical   string `json:"canonical" yaml:"canonical"`
	Region      string `json:"region,omitempty" yaml:"region,omitempty"`
	Key         string `json:"key" yaml:"key"`
	ByeElection bool   `json:"bye_election" yaml:"bye_election"`
}

// NewCommand creates the canon command using app context.
func NewCommand(app appcontext.Interface) *cobra.Command {
	return &cobra.Command{
		Use:   "canon <name> [region]",
		Short: "Show the canonical form and join key of a name",
		Long: `Canon applies the configured canonicalization and alias table to a
constituency name, and to an optional region, and prints the join key they
produce. An empty key means the name can never match.`,
		Args: cobra.RangeArgs(1, 2),
		Example: `  rollcall canon "Bastar (ST)"
  rollcall canon "Anantnag: Bye Election" "Jammu & Kashmir"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.RunConfig()
			if err != nil {
				return err
			}
			canon, err := cfg.Canonicalizer()
			if err != nil {
				return err
			}
			format, err := output.Resolve(app.OutputFormat(), cmd.OutOrStdout())
			if err != nil {
				return err
			}
			region := ""
			if len(args) == 2 {
				region = args[1]
			}
			return output.Write(cmd.OutOrStdout(), format, Canonicalize(canon, args[0], region))
		},
	}
}

// Canonicalize describes how c canonicalizes name and region.
func Canonicalize(c *canonical.Canonicalizer, name, region string) Result {
	n := c.Canonicalize(name)
	key, _ := c.KeyOf(name, region)
	res := Result{
		Raw:         name,
		Canonical:   n.Value,
		Key:         key,
		ByeElection: n.ByeElection,
	}
	if region != "" {
		res.Region = c.String(region)
	}
	return res
}
