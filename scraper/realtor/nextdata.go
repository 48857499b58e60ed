package realtor

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"property-harvester/models"
)

// nextData is the subset of the page's embedded __NEXT_DATA__ document we
// read. Search pages carry either "properties" or "searchResults"; detail
// pages carry "property" or "initialReduxState.propertyDetails".
type nextData struct {
	Props struct {
		PageProps struct {
			Properties      []homeResult `json:"properties"`
			TotalProperties int          `json:"totalProperties"`
			SearchResults   *struct {
				HomeSearch struct {
					Total   int          `json:"total"`
					Results []homeResult `json:"results"`
				} `json:"home_search"`
			} `json:"searchResults"`
			Property          *homeResult `json:"property"`
			InitialReduxState *struct {
				PropertyDetails *homeResult `json:"propertyDetails"`
			} `json:"initialReduxState"`
		} `json:"pageProps"`
	} `json:"props"`
}

type homeResult struct {
	PropertyID models.FlexString `json:"property_id"`
	Permalink  models.FlexString `json:"permalink"`
	Href       models.FlexString `json:"href"`
	Status     models.FlexString `json:"status"`
	ListPrice  models.FlexFloat  `json:"list_price"`
	ListDate   models.FlexString `json:"list_date"`

	Description *struct {
		Beds      models.FlexFloat  `json:"beds"`
		BathsFull models.FlexFloat  `json:"baths_full"`
		BathsHalf models.FlexFloat  `json:"baths_half"`
		Sqft      models.FlexFloat  `json:"sqft"`
		LotSqft   models.FlexFloat  `json:"lot_sqft"`
		YearBuilt models.FlexFloat  `json:"year_built"`
		Stories   models.FlexFloat  `json:"stories"`
		Garage    models.FlexFloat  `json:"garage"`
		Type      models.FlexString `json:"type"`
		Text      models.FlexString `json:"text"`
		Styles    models.FlexString `json:"styles"`
	} `json:"description"`

	Location *struct {
		Address *struct {
			Line       models.FlexString `json:"line"`
			Unit       models.FlexString `json:"unit"`
			City       models.FlexString `json:"city"`
			StateCode  models.FlexString `json:"state_code"`
			PostalCode models.FlexString `json:"postal_code"`
			Coordinate *struct {
				Lat models.FlexFloat `json:"lat"`
				Lon models.FlexFloat `json:"lon"`
			} `json:"coordinate"`
		} `json:"address"`
		Neighborhoods models.FlexString `json:"neighborhoods"`
	} `json:"location"`

	PrimaryPhoto *models.PhotoRef  `json:"primary_photo"`
	Photos       []models.PhotoRef `json:"photos"`

	Advertisers []struct {
		Name   models.FlexString `json:"name"`
		Email  models.FlexString `json:"email"`
		Phones []struct {
			Number models.FlexString `json:"number"`
		} `json:"phones"`
	} `json:"advertisers"`

	HOA *struct {
		Fee models.FlexFloat `json:"fee"`
	} `json:"hoa"`
}

// ExtractNextData pulls the __NEXT_DATA__ script body out of an HTML page.
func ExtractNextData(r io.Reader) ([]byte, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("realtor: parse html: %w", err)
	}
	payload := strings.TrimSpace(doc.Find("script#__NEXT_DATA__").First().Text())
	if payload == "" {
		return nil, ErrNoPageData
	}
	return []byte(payload), nil
}

// ParseSearchPage decodes a search page's __NEXT_DATA__ payload into raw
// listings. total is the site's reported result count, 0 when unknown.
func ParseSearchPage(payload []byte, baseURL string, now time.Time) (listings []*models.RawListing, total int, err error) {
	var nd nextData
	if err := json.Unmarshal(payload, &nd); err != nil {
		return nil, 0, fmt.Errorf("realtor: decode page data: %w", err)
	}

	pp := nd.Props.PageProps
	results := pp.Properties
	total = pp.TotalProperties
	if sr := pp.SearchResults; sr != nil && len(sr.HomeSearch.Results) > 0 {
		results = sr.HomeSearch.Results
		total = sr.HomeSearch.Total
	}

	listings = make([]*models.RawListing, 0, len(results))
	for i := range results {
		listings = append(listings, results[i].toRaw(baseURL, now))
	}
	return listings, total, nil
}

// ParseDetailPage decodes a property detail page's __NEXT_DATA__ payload.
func ParseDetailPage(payload []byte, baseURL string, now time.Time) (*models.RawListing, error) {
	var nd nextData
	if err := json.Unmarshal(payload, &nd); err != nil {
		return nil, fmt.Errorf("realtor: decode detail data: %w", err)
	}

	pp := nd.Props.PageProps
	home := pp.Property
	if home == nil && pp.InitialReduxState != nil {
		home = pp.InitialReduxState.PropertyDetails
	}
	if home == nil {
		return nil, ErrNoPageData
	}
	return home.toRaw(baseURL, now), nil
}

func (h *homeResult) toRaw(baseURL string, now time.Time) *models.RawListing {
	r := &models.RawListing{
		PropertyID:   h.PropertyID,
		PropertyURL:  h.Href,
		Status:       h.Status,
		ListPrice:    h.ListPrice,
		ListDate:     h.ListDate,
		PrimaryPhoto: h.PrimaryPhoto,
		AltPhotos:    h.Photos,
		Address:      &models.RawAddress{},
		Description:  &models.RawDescription{},
	}
	if r.PropertyURL == "" {
		r.PropertyURL = models.FlexString(DetailURL(baseURL, h.Permalink.String()))
	}

	if d := h.Description; d != nil {
		r.Description = &models.RawDescription{
			Beds:      d.Beds,
			FullBaths: d.BathsFull,
			HalfBaths: d.BathsHalf,
			Sqft:      d.Sqft,
			YearBuilt: d.YearBuilt,
			LotSqft:   d.LotSqft,
			Style:     d.Styles,
			Type:      d.Type,
			Text:      d.Text,
			Stories:   d.Stories,
			Garage:    d.Garage,
		}
	}

	if loc := h.Location; loc != nil {
		r.Neighborhoods = loc.Neighborhoods
		if a := loc.Address; a != nil {
			r.Address = &models.RawAddress{
				Street:  a.Line,
				Unit:    a.Unit,
				City:    a.City,
				State:   a.StateCode,
				ZipCode: a.PostalCode,
			}
			if c := a.Coordinate; c != nil {
				r.Latitude, r.Longitude = c.Lat, c.Lon
			}
		}
	}

	if len(h.Advertisers) > 0 {
		agent := h.Advertisers[0]
		r.AgentName = agent.Name
		r.AgentEmail = agent.Email
		if len(agent.Phones) > 0 {
			r.AgentPhone = agent.Phones[0].Number
		}
	}

	if h.HOA != nil {
		r.HOAFee = h.HOA.Fee
	}

	if sqft := r.Description.Sqft; h.ListPrice.Valid && sqft.Valid && sqft.Value > 0 {
		r.PricePerSqft = models.Float(math.Round(h.ListPrice.Value / sqft.Value))
	}
	if listed, ok := parseListDate(h.ListDate.String()); ok {
		days := int(now.Sub(listed).Hours() / 24)
		if days < 0 {
			days = 0
		}
		r.DaysOnMLS = models.Float(float64(days))
	}

	return r
}

var listDateLayouts = []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"}

func parseListDate(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range listDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// mergeDetail fills fields of r that the search page left empty.
func mergeDetail(r, detail *models.RawListing) {
	if detail.Description != nil && detail.Description.Text != "" {
		if r.Description == nil {
			r.Description = &models.RawDescription{}
		}
		if r.Description.Text == "" {
			r.Description.Text = detail.Description.Text
		}
		if !r.Description.YearBuilt.Valid {
			r.Description.YearBuilt = detail.Description.YearBuilt
		}
	}
	if r.AgentName == "" {
		r.AgentName = detail.AgentName
	}
	if r.AgentEmail == "" {
		r.AgentEmail = detail.AgentEmail
	}
	if r.AgentPhone == "" {
		r.AgentPhone = detail.AgentPhone
	}
	if !r.HOAFee.Valid {
		r.HOAFee = detail.HOAFee
	}
	if len(detail.AltPhotos) > len(r.AltPhotos) {
		r.AltPhotos = detail.AltPhotos
	}
}
