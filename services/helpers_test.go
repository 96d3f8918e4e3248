// Tests in this package assert with testify. Handler tests in package
// handlers stay on plain testing and httptest.

package services

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// openWorkbook parses generated xlsx bytes and closes the file when the
// test ends.
func openWorkbook(t *testing.T, data []byte) *excelize.File {
	t.Helper()
	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err, "open workbook")
	t.Cleanup(func() { f.Close() })
	return f
}
