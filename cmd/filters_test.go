package cmd

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cafedash/internal/filter"
)

func newFilterCmd(extra func(*cobra.Command)) *cobra.Command {
	c := &cobra.Command{Use: "test"}
	addFilterFlags(c)
	if extra != nil {
		extra(c)
	}
	return c
}

func TestOrderFiltersFromFlags(t *testing.T) {
	c := newFilterCmd(func(c *cobra.Command) {
		c.Flags().StringSlice("supplier", nil, "")
		c.Flags().StringSlice("status", nil, "")
	})
	require.NoError(t, c.ParseFlags([]string{
		"--location", "Centro,Norte", "--supplier", "Acme", "--min", "0", "--from", "2024-03-01", "-q", "café",
	}))

	f, err := orderFiltersFromFlags(c)
	require.NoError(t, err)
	assert.Equal(t, []string{"Centro", "Norte"}, f.Locations)
	assert.Equal(t, []string{"Acme"}, f.Suppliers)
	require.NotNil(t, f.TotalMin)
	assert.Equal(t, 0.0, *f.TotalMin)
	assert.Nil(t, f.TotalMax, "unset bounds stay open")
	require.NotNil(t, f.DateFrom)
	assert.Equal(t, "2024-03-01", *f.DateFrom)
	assert.Nil(t, f.DateTo)
	assert.Equal(t, "café", f.Search)
}

func TestInvoiceFiltersFromFlags(t *testing.T) {
	extra := func(c *cobra.Command) {
		c.Flags().StringSlice("issuer", nil, "")
		c.Flags().StringSlice("document-type", nil, "")
		c.Flags().StringSlice("payment-method", nil, "")
		c.Flags().String("date-field", "", "")
	}

	c := newFilterCmd(extra)
	require.NoError(t, c.ParseFlags([]string{"--date-field", "vencimiento", "--max", "5000"}))
	f, err := invoiceFiltersFromFlags(c)
	require.NoError(t, err)
	assert.Equal(t, filter.DueDate, f.DateField)
	require.NotNil(t, f.AmountMax)
	assert.Equal(t, 5000.0, *f.AmountMax)

	c = newFilterCmd(extra)
	require.NoError(t, c.ParseFlags([]string{"--date-field", "payday"}))
	_, err = invoiceFiltersFromFlags(c)
	assert.Error(t, err)
}

func TestDateFlagsMustParse(t *testing.T) {
	c := newFilterCmd(nil)
	require.NoError(t, c.ParseFlags([]string{"--from", "garbage"}))
	_, err := orderFiltersFromFlags(c)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--from must be a date")

	c = newFilterCmd(func(c *cobra.Command) { c.Flags().String("date-field", "", "") })
	require.NoError(t, c.ParseFlags([]string{"--to", "31/02/2024"}))
	_, err = invoiceFiltersFromFlags(c)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--to must be a date")

	c = newFilterCmd(nil)
	require.NoError(t, c.ParseFlags([]string{"--from", "15/03/2024"}))
	f, err := orderFiltersFromFlags(c)
	require.NoError(t, err)
	assert.Equal(t, "15/03/2024", *f.DateFrom)
}

func TestRequireConfig(t *testing.T) {
	appConfig, configErr = nil, assert.AnError
	t.Cleanup(func() { appConfig, configErr = nil, nil })

	_, err := requireConfig()
	assert.ErrorIs(t, err, assert.AnError)
}
