package export

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/free-ocr/constants"
	"github.com/joseph-ayodele/free-ocr/internal/extraction"
)

func TestWorkbookXLSX(t *testing.T) {
	settled := extraction.Snapshot{
		Batch: 3,
		Phase: constants.PhaseAllSettled,
		Results: map[constants.Mode]string{
			constants.ModeMarkdown: "# Receipt",
			constants.ModeJSON:     `{"total":12}`,
			constants.ModePlain:    "Receipt",
			constants.ModePydantic: "class Receipt(BaseModel): ...",
		},
		Failed: map[constants.Mode]struct{}{constants.ModeZod: {}},
	}
	failed := extraction.Snapshot{
		Batch: 4,
		Phase: constants.PhaseExtractFailed,
		Err:   "ocr endpoint answered 500",
	}

	b, err := NewService(nil).WorkbookXLSX([]Row{
		{Source: "receipt.png", Snapshot: settled},
		{Source: "blurry.jpg", Snapshot: failed},
	})
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(b))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows(sheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, []string{"Source", "Batch", "Status", "Error", "Markdown", "JSON", "Pydantic", "Zod", "Plain Text", "Failed Modes"}, rows[0])

	r1 := rows[1]
	assert.Equal(t, "receipt.png", r1[0])
	assert.Equal(t, "3", r1[1])
	assert.Equal(t, "ALL_SETTLED", r1[2])
	assert.Equal(t, "# Receipt", r1[4])
	assert.Equal(t, `{"total":12}`, r1[5])
	assert.Equal(t, "", r1[7], "failed mode leaves its cell empty")
	assert.Equal(t, "Receipt", r1[8])
	assert.Equal(t, "zod", r1[9])

	r2 := rows[2]
	assert.Equal(t, "blurry.jpg", r2[0])
	assert.Equal(t, "EXTRACT_FAILED", r2[2])
	assert.Equal(t, "ocr endpoint answered 500", r2[3])
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", truncate("abc", 5))
	assert.Equal(t, "ab…", truncate("abcdef", 3))
	long := strings.Repeat("x", maxCellChars+10)
	assert.Len(t, []rune(truncate(long, maxCellChars)), maxCellChars)
}
