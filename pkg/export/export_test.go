package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDataset() Dataset {
	return Dataset{
		Title:   "Attendance report",
		Summary: []string{"Overall: 80% (warning)"},
		Headers: []string{"subject", "percentage"},
		Rows: []map[string]string{
			{"subject": "MA101", "percentage": "67"},
			{"subject": "PH101", "percentage": "100"},
		},
	}
}

func TestCSVExporterRender(t *testing.T) {
	out, err := NewCSVExporter().Render(sampleDataset())
	require.NoError(t, err)
	assert.Equal(t, "# Overall: 80% (warning)\nsubject,percentage\nMA101,67\nPH101,100\n", string(out))
}

func TestRenderPDF(t *testing.T) {
	out, err := Render(FormatPDF, sampleDataset())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestRenderRejectsEmptyHeadersAndUnknownFormat(t *testing.T) {
	_, err := Render(FormatCSV, Dataset{})
	assert.Error(t, err)
	_, err = Render("xlsx", sampleDataset())
	assert.Error(t, err)
	assert.False(t, Format("xlsx").Valid())
	assert.Equal(t, "application/pdf", FormatPDF.ContentType())
}
