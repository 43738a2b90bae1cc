package extract_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fsbdata/disclosure-crawler/internal/extract"
	"github.com/fsbdata/disclosure-crawler/internal/scrape"
)

func TestExtractTwoColumnLayout(t *testing.T) {
	t.Parallel()

	html := `<div><table>
		<tr><th>총자산</th><td>1,234,567</td></tr>
		<tr><th>자기자본</th><td>234,567</td></tr>
	</table></div>`

	rows, err := extract.NewTableExtractor().Extract("재무현황", html)
	require.NoError(t, err)
	require.Equal(t, []scrape.Row{
		{Field: "총자산", Value: "1,234,567"},
		{Field: "자기자본", Value: "234,567"},
	}, rows)
}

func TestExtractFourColumnLayout(t *testing.T) {
	t.Parallel()

	html := `<table><tr>
		<th>BIS비율</th><td>12.3%</td><th>고정이하여신비율</th><td>4.5%</td>
	</tr></table>`

	rows, err := extract.NewTableExtractor().Extract("영업개황", html)
	require.NoError(t, err)
	require.Equal(t, []scrape.Row{
		{Field: "BIS비율", Value: "12.3%"},
		{Field: "고정이하여신비율", Value: "4.5%"},
	}, rows)
}

func TestExtractNormalizesWhitespace(t *testing.T) {
	t.Parallel()

	html := "<table><tr><th>  당기\n순이익 </th><td> 1,000\t백만원 </td></tr></table>"

	rows, err := extract.NewTableExtractor().Extract("손익현황", html)
	require.NoError(t, err)
	require.Equal(t, "당기 순이익", rows[0].Field)
	require.Equal(t, "1,000 백만원", rows[0].Value)
}

func TestExtractMissingValueCell(t *testing.T) {
	t.Parallel()

	html := `<table>
		<tr><th>총자산</th><td>1,000</td><th>비고</th></tr>
	</table>`

	rows, err := extract.NewTableExtractor().Extract("기타", html)
	require.NoError(t, err)
	require.Equal(t, []scrape.Row{
		{Field: "총자산", Value: "1,000"},
		{Field: "비고", Value: ""},
	}, rows)
}

func TestExtractNoTableIsParseError(t *testing.T) {
	t.Parallel()

	_, err := extract.NewTableExtractor().Extract("영업개황", "<div>로딩중...</div>")
	require.Error(t, err)
	require.ErrorIs(t, err, extract.ErrNoTable)

	var parseErr *scrape.ParseError
	require.True(t, errors.As(err, &parseErr))
	require.Equal(t, "영업개황", parseErr.Category)
}

func TestExtractEmptyTableIsParseError(t *testing.T) {
	t.Parallel()

	_, err := extract.NewTableExtractor().Extract("기타", "<table><tr><td></td></tr></table>")
	require.ErrorIs(t, err, extract.ErrNoRows)
}

func TestExtractIsDeterministic(t *testing.T) {
	t.Parallel()

	html := `<table><tr><th>총자산</th><td>1,000</td></tr></table>`
	e := extract.NewTableExtractor()

	first, err := e.Extract("재무현황", html)
	require.NoError(t, err)
	second, err := e.Extract("재무현황", html)
	require.NoError(t, err)
	require.Equal(t, first, second)
}
