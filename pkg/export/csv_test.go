package export

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCSVCarriesBOMAndHeader(t *testing.T) {
	doc, err := NewCSV([]string{"equipment_no", "name"})
	require.NoError(t, err)
	require.NoError(t, doc.AppendRow([]string{"EQ-1001", "Oscilloscope"}))

	body, err := doc.Bytes()
	require.NoError(t, err)

	text := string(body)
	require.True(t, strings.HasPrefix(text, "\xef\xbb\xbf"))
	require.Contains(t, text, "equipment_no,name\n")
	require.Contains(t, text, "EQ-1001,Oscilloscope\n")
}

func TestCSVQuotesCommas(t *testing.T) {
	doc, err := NewCSV([]string{"name", "note"})
	require.NoError(t, err)
	require.NoError(t, doc.AppendRow([]string{"Spectrometer", "needs calibration, then cleaning"}))

	body, err := doc.Bytes()
	require.NoError(t, err)
	require.Contains(t, string(body), `"needs calibration, then cleaning"`)
}

func TestWriteHTTPSetsAttachmentHeaders(t *testing.T) {
	doc, err := NewCSV([]string{"a"})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	require.NoError(t, doc.WriteHTTP(rec, "equipment_2026-01-02.csv"))

	require.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
	require.Contains(t, rec.Header().Get("Content-Disposition"), `filename="equipment_2026-01-02.csv"`)
	require.True(t, strings.HasPrefix(rec.Body.String(), "\xef\xbb\xbf"))
}
