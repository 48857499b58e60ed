package realtor

import (
	"errors"
	"strings"
	"testing"
	"time"
)

var fixedNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

const searchPayload = `{"props":{"pageProps":{"totalProperties":3,"properties":[
	{"property_id":"111","permalink":"1-Palm-Ave_Miami_FL_33131_M111","status":"for_sale",
	 "list_price":500000,"list_date":"2024-05-22T00:00:00Z",
	 "description":{"beds":2,"baths_full":2,"baths_half":1,"sqft":1000,"year_built":2005,"type":"condos","styles":["contemporary","modern"]},
	 "location":{"address":{"line":"1 Palm Ave","unit":"Apt 5","city":"Miami","state_code":"FL","postal_code":"33131",
	   "coordinate":{"lat":25.765,"lon":-80.19}},"neighborhoods":[{"name":"Brickell"},{"name":"Downtown Miami"}]},
	 "primary_photo":{"href":"https://ap.rdcpix.com/a/ls.jpg"},
	 "photos":[{"href":"https://ap.rdcpix.com/a/p1s.jpg"}],
	 "advertisers":[{"name":"Ana Agent","email":"ana@example.com","phones":[{"number":"305-555-0101"}]}],
	 "hoa":{"fee":650}},
	{"property_id":222,"href":"https://www.realtor.com/realestateandhomes-detail/M222","list_price":null,
	 "location":{"address":{"line":"2 Bay Rd","city":"Miami","state_code":"FL","postal_code":33132}}}
]}}}`

func TestParseSearchPage(t *testing.T) {
	listings, total, err := ParseSearchPage([]byte(searchPayload), "https://www.realtor.com", fixedNow)
	if err != nil {
		t.Fatalf("ParseSearchPage: %v", err)
	}
	if total != 3 {
		t.Errorf("total = %d; want 3", total)
	}
	if len(listings) != 2 {
		t.Fatalf("listings = %d; want 2", len(listings))
	}

	a := listings[0]
	if a.PropertyID != "111" || a.PropertyURL != "https://www.realtor.com/realestateandhomes-detail/1-Palm-Ave_Miami_FL_33131_M111" {
		t.Errorf("id/url: %q %q", a.PropertyID, a.PropertyURL)
	}
	if a.Address.Street != "1 Palm Ave" || a.Address.State != "FL" || a.Address.ZipCode != "33131" {
		t.Errorf("address: %+v", a.Address)
	}
	if a.Latitude.Value != 25.765 || a.Longitude.Value != -80.19 {
		t.Errorf("coordinates: %+v %+v", a.Latitude, a.Longitude)
	}
	if a.Neighborhoods != "Brickell, Downtown Miami" {
		t.Errorf("neighborhoods: %q", a.Neighborhoods)
	}
	if a.Description.Style != "contemporary, modern" || a.Description.HalfBaths.Int() != 1 {
		t.Errorf("description: %+v", a.Description)
	}
	if a.PricePerSqft.Value != 500 {
		t.Errorf("price per sqft: %v", a.PricePerSqft)
	}
	if a.DaysOnMLS.Int() != 10 {
		t.Errorf("days on mls: %v", a.DaysOnMLS)
	}
	if a.AgentName != "Ana Agent" || a.AgentPhone != "305-555-0101" || a.HOAFee.Value != 650 {
		t.Errorf("agent/hoa: %q %q %v", a.AgentName, a.AgentPhone, a.HOAFee)
	}

	b := listings[1]
	if b.PropertyID != "222" || b.PropertyURL != "https://www.realtor.com/realestateandhomes-detail/M222" {
		t.Errorf("second id/url: %q %q", b.PropertyID, b.PropertyURL)
	}
	if b.ListPrice.Valid || b.PricePerSqft.Valid || b.Latitude.Valid {
		t.Errorf("second listing should have no price or coordinates: %+v", b)
	}
	if b.Address.ZipCode != "33132" {
		t.Errorf("numeric zip: %q", b.Address.ZipCode)
	}
}

func TestParseSearchPageHomeSearchShape(t *testing.T) {
	payload := `{"props":{"pageProps":{"searchResults":{"home_search":{"total":40,"results":[{"property_id":"9"}]}}}}}`
	listings, total, err := ParseSearchPage([]byte(payload), "", fixedNow)
	if err != nil {
		t.Fatal(err)
	}
	if total != 40 || len(listings) != 1 || listings[0].PropertyID != "9" {
		t.Errorf("got total %d listings %d", total, len(listings))
	}
}

func TestParseDetailPage(t *testing.T) {
	payload := `{"props":{"pageProps":{"initialReduxState":{"propertyDetails":{
		"property_id":"111","description":{"text":"Bay views","year_built":2005},
		"advertisers":[{"name":"Ana Agent"}]}}}}}`
	d, err := ParseDetailPage([]byte(payload), "", fixedNow)
	if err != nil {
		t.Fatal(err)
	}
	if d.Description.Text != "Bay views" || d.AgentName != "Ana Agent" {
		t.Errorf("detail: %+v", d)
	}

	if _, err := ParseDetailPage([]byte(`{"props":{"pageProps":{}}}`), "", fixedNow); !errors.Is(err, ErrNoPageData) {
		t.Errorf("empty detail: got %v, want ErrNoPageData", err)
	}
}

func TestExtractNextData(t *testing.T) {
	html := `<html><head><script id="__NEXT_DATA__" type="application/json"> {"props":{}} </script></head><body></body></html>`
	payload, err := ExtractNextData(strings.NewReader(html))
	if err != nil {
		t.Fatal(err)
	}
	if string(payload) != `{"props":{}}` {
		t.Errorf("payload = %q", payload)
	}

	if _, err := ExtractNextData(strings.NewReader("<html><body>blocked</body></html>")); !errors.Is(err, ErrNoPageData) {
		t.Errorf("missing script: got %v, want ErrNoPageData", err)
	}
}
