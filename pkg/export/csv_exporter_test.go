package export

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCSVExporterRender(t *testing.T) {
	exporter := NewCSVExporter()

	payload, err := exporter.Render(&Dataset{
		Title:   "Timetable",
		Headers: []string{"Day", "Time", "Subject"},
		Rows: [][]string{
			{"Понедельник", "09:00-10:30", "Математика"},
			{"Понедельник", "10:40"},
		},
	})
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(payload)), "\n")
	require.Len(t, lines, 3)
	require.Equal(t, "Day,Time,Subject", lines[0])
	require.Contains(t, lines[1], "Математика")
	// Short rows are padded to the header width.
	require.Equal(t, "Понедельник,10:40,", lines[2])
}

func TestCSVExporterRequiresHeaders(t *testing.T) {
	exporter := NewCSVExporter()

	_, err := exporter.Render(&Dataset{Rows: [][]string{{"x"}}})
	require.Error(t, err)
}
