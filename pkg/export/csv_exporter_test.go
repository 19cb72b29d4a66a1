package export

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSVExporterRender(t *testing.T) {
	grid := WeekGrid{
		SlotLabels: []string{"9:00 AM", "10:00 AM"},
		Days: []DayRow{
			{Day: "Monday", Cells: []string{"Math / Asha / 101", ""}},
			{Day: "Tuesday", Cells: []string{"Science / Ben / 102"}},
		},
	}

	data, err := NewCSVExporter().Render(grid)
	require.NoError(t, err)

	out := string(data)
	assert.Contains(t, out, "Day,9:00 AM,10:00 AM\n")
	assert.Contains(t, out, "Monday,Math / Asha / 101,\n")
	assert.Contains(t, out, "Tuesday,Science / Ben / 102,\n", "short rows padded to full width")
}

func TestCSVExporterRequiresSlotLabels(t *testing.T) {
	_, err := NewCSVExporter().Render(WeekGrid{})
	require.Error(t, err)
}
