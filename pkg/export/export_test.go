package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func attendanceSheet() Dataset {
	return Dataset{
		Title:   "Biology 2024-09-02",
		Headers: []string{"Student", "Status", "Note"},
		Rows: [][]string{
			{"Ana", "PRESENT", ""},
			{"Budi", "LATE", "bus, delayed"},
			{"Citra"},
		},
	}
}

func TestRenderCSV(t *testing.T) {
	out, err := RenderCSV(attendanceSheet())
	require.NoError(t, err)
	assert.Equal(t, "Student,Status,Note\nAna,PRESENT,\nBudi,LATE,\"bus, delayed\"\nCitra,,\n", string(out))
}

func TestRenderPDF(t *testing.T) {
	out, err := RenderPDF(attendanceSheet())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
}

func TestRenderRejectsBadDatasets(t *testing.T) {
	_, err := RenderCSV(Dataset{})
	assert.Error(t, err)

	_, err = RenderPDF(Dataset{Headers: []string{"a"}, Rows: [][]string{{"1", "2"}}})
	assert.Error(t, err)
}
