package external

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/okian/matchload/internal/adapters/cache"
	"github.com/okian/matchload/internal/domain/injury"
)

// DefaultTransfermarktURL is the Transfermarkt host.
const DefaultTransfermarktURL = "https://www.transfermarkt.com"

// InjuryHistory is a scraped injury table and the page it came from.
type InjuryHistory struct {
	Source  string          `json:"source"`
	Records []injury.Record `json:"records"`
}

// Transfermarkt scrapes player injury histories.
type Transfermarkt struct {
	base
	injuries *cache.Cache[InjuryHistory]
}

// NewTransfermarkt returns a scraper. The site rejects non-browser agents,
// so a browser User-Agent is the default.
func NewTransfermarkt(opts ...Option) *Transfermarkt {
	opts = append([]Option{WithUserAgent(BrowserUserAgent)}, opts...)
	b := newBase("transfermarkt", DefaultTransfermarktURL, 10*time.Minute, opts)
	return &Transfermarkt{base: b, injuries: newCache[InjuryHistory](b)}
}

// InjuryURL returns the injury page of a Transfermarkt player id.
func (t *Transfermarkt) InjuryURL(playerID string) string {
	return t.baseURL + "/player/verletzungen/spieler/" + url.PathEscape(playerID)
}

// Injuries scrapes the injury table of playerID. A page without the table
// is an empty history.
func (t *Transfermarkt) Injuries(ctx context.Context, playerID string) (InjuryHistory, error) {
	page := t.InjuryURL(playerID)
	return cached(ctx, t.injuries, playerID, func(ctx context.Context) (InjuryHistory, error) {
		body, err := t.get(ctx, page, nil)
		if err != nil {
			return InjuryHistory{}, err
		}
		records, err := parseInjuries(body)
		if err != nil {
			return InjuryHistory{}, err
		}
		return InjuryHistory{Source: page, Records: records}, nil
	})
}

func parseInjuries(body []byte) ([]injury.Record, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("transfermarkt: parse page: %w", err)
	}
	records := []injury.Record{}
	doc.Find("table.items").First().Find("tr").Each(func(i int, row *goquery.Selection) {
		if i == 0 {
			return
		}
		cols := row.Find("td")
		if cols.Length() < 5 {
			return
		}
		cell := func(n int) string { return squash(cols.Eq(n).Text()) }
		r := injury.Record{
			Season:      cell(0),
			Injury:      cell(1),
			From:        injury.ParseDate(cell(2)),
			Until:       injury.ParseDate(cell(3)),
			Days:        cell(4),
			GamesMissed: injury.NotAvailable,
		}
		if cols.Length() > 5 {
			r.GamesMissed = cell(5)
		}
		records = append(records, r)
	})
	return records, nil
}
