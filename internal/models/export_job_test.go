package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExportJobParamsScan(t *testing.T) {
	var params ExportJobParams
	require.NoError(t, params.Scan([]byte(`{"format":"pdf","includeEmpty":true}`)))
	assert.Equal(t, ExportJobParams{Format: ExportFormatPDF, IncludeEmpty: true}, params)

	require.NoError(t, params.Scan(nil))
	assert.Equal(t, ExportJobParams{}, params)

	assert.Error(t, params.Scan(42))
}

func TestExportFormatValid(t *testing.T) {
	assert.True(t, ExportFormatCSV.Valid())
	assert.True(t, ExportFormatPDF.Valid())
	assert.False(t, ExportFormat("xlsx").Valid())
}
