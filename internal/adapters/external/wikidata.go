package external

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/okian/matchload/internal/adapters/cache"
)

// DefaultWikidataURL is the Wikidata host.
const DefaultWikidataURL = "https://www.wikidata.org"

// entityOverrides pins titles the search resolves to the wrong entity.
var entityOverrides = map[string]string{
	"Reece_James_(footballer,_born_1999)": "Q39076401",
	"Wesley_Fofana_(footballer)":          "Q65029821",
}

// Wikidata properties read for a player.
const (
	propCitizenship     = "P27"
	propNativeLanguage  = "P103"
	propLanguagesSpoken = "P1412"
	propTransfermarktID = "P2446"
	propFBrefID         = "P5750"
)

// Metadata is what the dashboard reads from a Wikidata entity. Entity-valued
// properties are resolved to their English labels.
type Metadata struct {
	ID                   string   `json:"id"`
	CountryOfCitizenship []string `json:"country_of_citizenship,omitempty"`
	NativeLanguage       []string `json:"native_language,omitempty"`
	LanguagesSpoken      []string `json:"languages_spoken,omitempty"`
	TransfermarktID      string   `json:"transfermarkt_id,omitempty"`
	FBrefID              string   `json:"fbref_id,omitempty"`
}

// Wikidata resolves Wikipedia titles to entities and reads their claims.
type Wikidata struct {
	base
	meta   *cache.Cache[Metadata]
	labels *cache.Cache[string]
}

// NewWikidata returns a Wikidata client.
func NewWikidata(opts ...Option) *Wikidata {
	b := newBase("wikidata", DefaultWikidataURL, 24*time.Hour, opts)
	return &Wikidata{base: b, meta: newCache[Metadata](b), labels: newCache[string](b)}
}

// EntityID returns the entity id of a Wikipedia page title.
func (w *Wikidata) EntityID(ctx context.Context, title string) (string, error) {
	if id, ok := entityOverrides[title]; ok {
		return id, nil
	}
	q := url.Values{
		"action":   {"wbsearchentities"},
		"search":   {title},
		"language": {"en"},
		"format":   {"json"},
	}
	body, err := w.get(ctx, w.baseURL+"/w/api.php?"+q.Encode(), nil)
	if err != nil {
		return "", err
	}
	var res struct {
		Search []struct {
			ID string `json:"id"`
		} `json:"search"`
	}
	if err := json.Unmarshal(body, &res); err != nil {
		return "", fmt.Errorf("wikidata: %w: decode search: %v", ErrUpstream, err)
	}
	if len(res.Search) == 0 {
		return "", fmt.Errorf("wikidata entity for %q: %w", title, ErrNotFound)
	}
	return res.Search[0].ID, nil
}

type claim struct {
	Mainsnak struct {
		Datavalue *struct {
			Type  string          `json:"type"`
			Value json.RawMessage `json:"value"`
		} `json:"datavalue"`
	} `json:"mainsnak"`
}

type entityDoc struct {
	Entities map[string]struct {
		Labels map[string]struct {
			Value string `json:"value"`
		} `json:"labels"`
		Claims map[string][]claim `json:"claims"`
	} `json:"entities"`
}

func (w *Wikidata) entity(ctx context.Context, id string) (entityDoc, error) {
	body, err := w.get(ctx, w.baseURL+"/wiki/Special:EntityData/"+url.PathEscape(id)+".json", nil)
	if err != nil {
		return entityDoc{}, err
	}
	var doc entityDoc
	if err := json.Unmarshal(body, &doc); err != nil {
		return entityDoc{}, fmt.Errorf("wikidata: %w: decode entity: %v", ErrUpstream, err)
	}
	return doc, nil
}

// Metadata reads the player properties of entity id.
func (w *Wikidata) Metadata(ctx context.Context, id string) (Metadata, error) {
	return cached(ctx, w.meta, id, func(ctx context.Context) (Metadata, error) {
		doc, err := w.entity(ctx, id)
		if err != nil {
			return Metadata{}, err
		}
		ent, ok := doc.Entities[id]
		if !ok {
			return Metadata{}, fmt.Errorf("wikidata %s: %w", id, ErrNotFound)
		}
		values := func(prop string) ([]string, error) {
			var out []string
			for _, c := range ent.Claims[prop] {
				dv := c.Mainsnak.Datavalue
				if dv == nil {
					continue
				}
				if dv.Type == "wikibase-entityid" {
					var ref struct {
						ID string `json:"id"`
					}
					if err := json.Unmarshal(dv.Value, &ref); err != nil {
						continue
					}
					label, err := w.Label(ctx, ref.ID)
					if err != nil {
						return nil, err
					}
					out = append(out, label)
					continue
				}
				var s string
				if err := json.Unmarshal(dv.Value, &s); err == nil {
					out = append(out, s)
				}
			}
			return out, nil
		}

		m := Metadata{ID: id}
		var err2 error
		if m.CountryOfCitizenship, err2 = values(propCitizenship); err2 != nil {
			return Metadata{}, err2
		}
		if m.NativeLanguage, err2 = values(propNativeLanguage); err2 != nil {
			return Metadata{}, err2
		}
		if m.LanguagesSpoken, err2 = values(propLanguagesSpoken); err2 != nil {
			return Metadata{}, err2
		}
		if v, _ := values(propTransfermarktID); len(v) > 0 {
			m.TransfermarktID = v[0]
		}
		if v, _ := values(propFBrefID); len(v) > 0 {
			m.FBrefID = v[0]
		}
		return m, nil
	})
}

// Label returns the English label of an entity, or its id when it has none.
func (w *Wikidata) Label(ctx context.Context, id string) (string, error) {
	return cached(ctx, w.labels, id, func(ctx context.Context) (string, error) {
		doc, err := w.entity(ctx, id)
		if err != nil {
			return "", err
		}
		if l, ok := doc.Entities[id].Labels["en"]; ok && l.Value != "" {
			return l.Value, nil
		}
		return id, nil
	})
}
