package models

// RawListing is one property record as returned by the upstream search, in
// its raw (unflattened) shape. Every field is optional.
type RawListing struct {
	PropertyID   FlexString      `json:"property_id"`
	PropertyURL  FlexString      `json:"property_url"`
	Status       FlexString      `json:"status"`
	ListPrice    FlexFloat       `json:"list_price"`
	Description  *RawDescription `json:"description"`
	Address      *RawAddress     `json:"address"`
	Latitude     FlexFloat       `json:"latitude"`
	Longitude    FlexFloat       `json:"longitude"`
	PrimaryPhoto *PhotoRef       `json:"primary_photo"`
	AltPhotos    []PhotoRef      `json:"alt_photos"`

	AgentName  FlexString `json:"agent_name"`
	AgentPhone FlexString `json:"agent_phone"`
	AgentEmail FlexString `json:"agent_email"`

	DaysOnMLS     FlexFloat  `json:"days_on_mls"`
	PricePerSqft  FlexFloat  `json:"price_per_sqft"`
	HOAFee        FlexFloat  `json:"hoa_fee"`
	ListDate      FlexString `json:"list_date"`
	Neighborhoods FlexString `json:"neighborhoods"`
}

// RawDescription is the nested "description" object of a RawListing.
type RawDescription struct {
	Beds      FlexFloat  `json:"beds"`
	FullBaths FlexFloat  `json:"full_baths"`
	HalfBaths FlexFloat  `json:"half_baths"`
	Sqft      FlexFloat  `json:"sqft"`
	YearBuilt FlexFloat  `json:"year_built"`
	LotSqft   FlexFloat  `json:"lot_sqft"`
	Style     FlexString `json:"style"`
	Type      FlexString `json:"type"`
	Text      FlexString `json:"text"`
	Stories   FlexFloat  `json:"stories"`
	Garage    FlexFloat  `json:"garage"`
}

// RawAddress is the nested "address" object of a RawListing.
type RawAddress struct {
	Street           FlexString `json:"street"`
	Unit             FlexString `json:"unit"`
	City             FlexString `json:"city"`
	State            FlexString `json:"state"`
	ZipCode          FlexString `json:"zip_code"`
	FormattedAddress FlexString `json:"formatted_address"`
}

// Listing is the flat, fixed-schema record written to properties.json.
type Listing struct {
	ID               string   `json:"id"`
	URL              string   `json:"url"`
	Status           string   `json:"status"`
	Price            float64  `json:"price"`
	Beds             int      `json:"beds"`
	BathsFull        int      `json:"baths_full"`
	BathsHalf        int      `json:"baths_half"`
	Sqft             float64  `json:"sqft"`
	YearBuilt        *int     `json:"year_built"`
	LotSqft          float64  `json:"lot_sqft"`
	Style            string   `json:"style"`
	PropertyType     string   `json:"property_type"`
	Description      string   `json:"description"`
	Street           string   `json:"street"`
	Unit             string   `json:"unit"`
	City             string   `json:"city"`
	State            string   `json:"state"`
	ZipCode          string   `json:"zip_code"`
	FormattedAddress string   `json:"formatted_address"`
	Latitude         float64  `json:"latitude"`
	Longitude        float64  `json:"longitude"`
	PrimaryPhoto     string   `json:"primary_photo"`
	Photos           []string `json:"photos"`
	AgentName        string   `json:"agent_name"`
	AgentPhone       string   `json:"agent_phone"`
	AgentEmail       string   `json:"agent_email"`
	DaysOnMLS        int      `json:"days_on_mls"`
	PricePerSqft     float64  `json:"price_per_sqft"`
	HOAFee           float64  `json:"hoa_fee"`
	ListDate         string   `json:"list_date"`
	Neighborhoods    string   `json:"neighborhoods"`
	Stories          int      `json:"stories"`
	Garage           float64  `json:"garage"`

	// SyntheticCoordinates is set when Latitude/Longitude were generated
	// rather than sourced from the listing.
	SyntheticCoordinates bool `json:"-"`
}

// InsightReport holds the computed analytics over the cleaned dataset.
type InsightReport struct {
	TotalListings       int            `json:"total_listings"`
	WithValidPrice      int            `json:"with_valid_price"`
	AveragePrice        float64        `json:"average_price"`
	MedianPrice         float64        `json:"median_price"`
	MinPrice            float64        `json:"min_price"`
	MaxPrice            float64        `json:"max_price"`
	TotalValue          float64        `json:"total_value"`
	AvgDaysOnMarket     int            `json:"avg_days_on_market"`
	Opportunities       int            `json:"opportunities"`
	WithPhotos          int            `json:"with_photos"`
	WithCoordinates     int            `json:"with_coordinates"`
	WithRealCoordinates int            `json:"with_real_coordinates"`
	CellsCovered        int            `json:"cells_covered"`
	MostExpensive       *Listing       `json:"most_expensive,omitempty"`
	ListingsByCity      map[string]int `json:"listings_by_city"`
}
