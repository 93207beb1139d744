package amount_test

import (
	"bytes"
	"testing"

	"github.com/goccy/go-yaml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/rollcall/cmd/rollcall/cmd/amount"
	"github.com/agentstation/rollcall/internal/appcontext"
	"github.com/agentstation/rollcall/internal/config"
	"github.com/agentstation/rollcall/pkg/currency"
)

func TestParse(t *testing.T) {
	parser, err := currency.NewParser()
	require.NoError(t, err)
	got := amount.Parse(parser, currency.DefaultConverter(),
		"Rs 65,67,12,498 ~ 65 Crore+", "Nil", "", "N/A")

	assert.Equal(t, []amount.Result{
		{Raw: "Rs 65,67,12,498 ~ 65 Crore+", Value: 656712498, Status: "parsed", MajorUnit: 65.67},
		{Raw: "Nil", Status: "nil"},
		{Raw: "", Status: "empty"},
		{Raw: "N/A", Status: "unparseable"},
	}, got)
}

func TestAmountCommand(t *testing.T) {
	app := &appcontext.Mock{
		RunConfigFunc: func() (*config.Config, error) {
			return &config.Config{Currency: config.CurrencyConfig{Ratio: 100_000, Precision: 1}}, nil
		},
		OutputFormatFunc: func() string { return "yaml" },
	}
	cmd := amount.NewCommand(app)
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetArgs([]string{"INR 42,09,587"})
	require.NoError(t, cmd.Execute())

	var got []amount.Result
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, 4209587.0, got[0].Value)
	// 42.09587 lakh at one decimal
	assert.Equal(t, 42.1, got[0].MajorUnit)
}

func TestAmountCommandErrors(t *testing.T) {
	cmd := amount.NewCommand(&appcontext.Mock{})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs(nil)
	assert.Error(t, cmd.Execute())

	app := &appcontext.Mock{
		RunConfigFunc: func() (*config.Config, error) {
			return &config.Config{Currency: config.CurrencyConfig{Markers: []string{" "}}}, nil
		},
	}
	cmd = amount.NewCommand(app)
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"Rs 10"})
	assert.Error(t, cmd.Execute())
}
