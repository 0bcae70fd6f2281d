package reports

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestRender(t *testing.T) {
	when := time.Date(2024, 3, 9, 8, 30, 0, 0, time.UTC)
	data, err := Render(
		Sheet{
			Name:    "Items",
			Headers: []string{"Photographer", "Amount", "Paid At"},
			Rows: [][]interface{}{
				{"Ada", Cents(12550), when},
				{"Grace", Cents(900), nil},
			},
			Widths: []float64{30, 12, 20},
		},
		Sheet{
			Name:    "Summary",
			Headers: []string{"Metric", "Value"},
			Rows:    [][]interface{}{{"Total", 134.5}},
		},
	)
	require.NoError(t, err)
	require.NotEmpty(t, data)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Items", "Summary"}, f.GetSheetList())

	rows, err := f.GetRows("Items")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"Photographer", "Amount", "Paid At"}, rows[0])
	assert.Equal(t, "Ada", rows[1][0])
	assert.Equal(t, "125.5", rows[1][1])
	assert.Equal(t, "2024-03-09 08:30:00", rows[1][2])
	assert.Equal(t, []string{"Grace", "9"}, rows[2])
}

func TestRender_NoSheets(t *testing.T) {
	_, err := Render()
	assert.Error(t, err)
}
