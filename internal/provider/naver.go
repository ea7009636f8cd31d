package provider

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	apperrors "stockcollector/internal/errors"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/time/rate"
)

// wiseReportURL serves the consolidated (K-IFRS) statement summary that
// Naver Finance embeds on its company pages.
const wiseReportURL = "https://navercomp.wisereport.co.kr/v2/company/ajax/cF1001.aspx"

var periodRegex = regexp.MustCompile(`(\d{4})[./](\d{2})`)

// NaverStatementProvider fetches quarterly statements from Naver Finance.
type NaverStatementProvider struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	baseURL    string // overridable for tests
}

// NewNaverStatementProvider creates a new Naver Finance statement provider.
func NewNaverStatementProvider(httpClient *http.Client, limiter *rate.Limiter) *NaverStatementProvider {
	return &NaverStatementProvider{httpClient: httpClient, limiter: limiter, baseURL: wiseReportURL}
}

// FetchStatements fetches the quarterly consolidated statement table.
func (p *NaverStatementProvider) FetchStatements(ctx context.Context, inst Instrument) (*StatementTable, error) {
	q := url.Values{}
	q.Set("cmp_cd", inst.Ticker)
	q.Set("fin_typ", "0") // consolidated
	q.Set("freq_typ", "Q")

	body, err := fetch(ctx, p.httpClient, p.limiter, p.baseURL+"?"+q.Encode())
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrFetchFailed, fmt.Errorf("parsing html: %w", err))
	}
	return parseStatementTable(doc), nil
}

// parseStatementTable reads the first table that has period columns. The
// provider lays fields out as rows and periods as columns; the result is
// transposed to one row per period. Estimate columns are skipped.
func parseStatementTable(doc *goquery.Document) *StatementTable {
	table := &StatementTable{}

	doc.Find("table").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		bodyRows := sel.Find("tbody tr")
		if bodyRows.Length() == 0 {
			return true
		}
		cellCount := bodyRows.First().Find("td").Length()

		headers := sel.Find("thead tr").Last().Find("th, td")
		// Align header cells with body cells; leading header cells label the field column.
		offset := headers.Length() - cellCount
		if offset < 0 {
			return true
		}

		columns := make(map[int]int) // td index -> row index
		headers.Each(func(i int, th *goquery.Selection) {
			if i < offset {
				return
			}
			text := th.Text()
			if strings.Contains(text, "(E)") {
				return
			}
			m := periodRegex.FindStringSubmatch(text)
			if m == nil {
				return
			}
			columns[i-offset] = len(table.Rows)
			table.Rows = append(table.Rows, StatementRow{
				Period: m[1] + "-" + m[2],
				Values: make(map[string]float64),
			})
		})
		if len(table.Rows) == 0 {
			return true
		}

		seen := make(map[string]bool)
		bodyRows.Each(func(_ int, tr *goquery.Selection) {
			label := normalizeLabel(tr.Find("th").First().Text())
			if label == "" || seen[label] {
				return
			}
			seen[label] = true
			table.Columns = append(table.Columns, label)

			for _, row := range table.Rows {
				row.Values[label] = math.NaN()
			}
			tr.Find("td").Each(func(i int, td *goquery.Selection) {
				if idx, ok := columns[i]; ok {
					table.Rows[idx].Values[label] = parseCell(td.Text())
				}
			})
		})
		return false
	})

	return table
}

func normalizeLabel(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// parseCell converts a comma-grouped number. Blank or placeholder cells are NaN.
func parseCell(s string) float64 {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	switch s {
	case "", "-", "N/A":
		return math.NaN()
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	return v
}
