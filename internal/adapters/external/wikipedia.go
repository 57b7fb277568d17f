package external

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"path"
	"slices"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/samber/lo"

	"github.com/okian/matchload/internal/adapters/cache"
)

// DefaultSquadURL is the season page listing the first-team squad.
const DefaultSquadURL = "https://en.wikipedia.org/wiki/2024%E2%80%9325_Chelsea_F.C._season"

// Player is a squad member with their Wikipedia page.
type Player struct {
	Name  string `json:"name"`
	Title string `json:"title"`
	URL   string `json:"url"`
}

// Fact is one infobox row.
type Fact struct {
	Label string `json:"label"`
	Value string `json:"value,omitempty"`
}

// Biography is the infobox of a player page.
type Biography struct {
	Image string `json:"image,omitempty"`
	Facts []Fact `json:"facts"`
}

// Wikipedia scrapes the squad list and player infoboxes.
type Wikipedia struct {
	base
	squadURL string
	squad    *cache.Cache[[]Player]
	bios     *cache.Cache[Biography]
}

// NewWikipedia returns a scraper for the squad page at squadURL.
func NewWikipedia(squadURL string, opts ...Option) *Wikipedia {
	if squadURL == "" {
		squadURL = DefaultSquadURL
	}
	b := newBase("wikipedia", "", 5*time.Minute, opts)
	return &Wikipedia{base: b, squadURL: squadURL, squad: newCache[[]Player](b), bios: newCache[Biography](b)}
}

// Players returns the squad sorted by name, duplicates removed. Names are
// link titles cut at " (", so "Reece James (footballer, born 1999)" is
// listed as "Reece James".
func (w *Wikipedia) Players(ctx context.Context) ([]Player, error) {
	return cached(ctx, w.squad, w.squadURL, func(ctx context.Context) ([]Player, error) {
		body, err := w.get(ctx, w.squadURL, nil)
		if err != nil {
			return nil, err
		}
		return parseSquad(body, w.squadURL)
	})
}

// Player finds a squad member by name, ignoring case.
func (w *Wikipedia) Player(ctx context.Context, name string) (Player, error) {
	players, err := w.Players(ctx)
	if err != nil {
		return Player{}, err
	}
	p, ok := lo.Find(players, func(p Player) bool { return strings.EqualFold(p.Name, strings.TrimSpace(name)) })
	if !ok {
		return Player{}, fmt.Errorf("player %q: %w", name, ErrNotFound)
	}
	return p, nil
}

// Biography scrapes the infobox of a player page.
func (w *Wikipedia) Biography(ctx context.Context, p Player) (Biography, error) {
	return cached(ctx, w.bios, p.URL, func(ctx context.Context) (Biography, error) {
		body, err := w.get(ctx, p.URL, nil)
		if err != nil {
			return Biography{}, err
		}
		return parseInfobox(body)
	})
}

func parseSquad(body []byte, pageURL string) ([]Player, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("wikipedia: parse squad: %w", err)
	}
	page, err := url.Parse(pageURL)
	if err != nil {
		return nil, fmt.Errorf("wikipedia: squad url: %w", err)
	}

	tables := doc.Find("table.wikitable")
	if tables.Length() < 2 {
		return nil, fmt.Errorf("wikipedia: squad table: %w", ErrNotFound)
	}
	var players []Player
	tables.Eq(1).Find("tr").Each(func(i int, row *goquery.Selection) {
		if i == 0 {
			return
		}
		cols := row.Find("td")
		if cols.Length() < 2 {
			return
		}
		link := cols.Eq(1).Find("a").First()
		title, ok := link.Attr("title")
		if !ok {
			return
		}
		href, _ := link.Attr("href")
		ref, err := url.Parse(href)
		if err != nil {
			return
		}
		name, _, _ := strings.Cut(title, " (")
		players = append(players, Player{
			Name:  strings.TrimSpace(name),
			Title: path.Base(ref.Path),
			URL:   page.ResolveReference(ref).String(),
		})
	})
	players = lo.UniqBy(players, func(p Player) string { return p.Name })
	slices.SortFunc(players, func(a, b Player) int { return strings.Compare(a.Name, b.Name) })
	return players, nil
}

func parseInfobox(body []byte) (Biography, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return Biography{}, fmt.Errorf("wikipedia: parse page: %w", err)
	}
	box := doc.Find("table.infobox").First()
	if box.Length() == 0 {
		return Biography{}, fmt.Errorf("wikipedia: infobox: %w", ErrNotFound)
	}
	bio := Biography{Facts: []Fact{}}
	if src, ok := box.Find("img").First().Attr("src"); ok && src != "" {
		if strings.HasPrefix(src, "//") {
			src = "https:" + src
		}
		bio.Image = src
	}
	box.Find("tr").Each(func(_ int, row *goquery.Selection) {
		th := row.Find("th").First()
		if th.Length() == 0 {
			return
		}
		f := Fact{Label: squash(th.Text())}
		if td := row.Find("td").First(); td.Length() > 0 {
			f.Value = squash(td.Text())
		}
		bio.Facts = append(bio.Facts, f)
	})
	return bio, nil
}

// squash collapses whitespace, including non-breaking spaces.
func squash(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
