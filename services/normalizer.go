package services

import (
	"fmt"

	"property-harvester/coords"
	"property-harvester/models"
	"property-harvester/utils"
)

// MaxPhotos caps the number of photo URLs kept per listing.
const MaxPhotos = 6

// Normalizer flattens RawListings into the fixed Listing schema and drops
// listings that cannot be published.
type Normalizer struct {
	logger    *utils.Logger
	generator coords.Generator
}

// NewNormalizer creates a Normalizer that backfills missing coordinates
// from generator.
func NewNormalizer(logger *utils.Logger, generator coords.Generator) *Normalizer {
	return &Normalizer{logger: logger, generator: generator}
}

// Clean normalizes every raw listing, drops listings without a positive
// price and keeps the first of any repeated id.
func (n *Normalizer) Clean(raw []*models.RawListing) []*models.Listing {
	seen := utils.NewIDSet()
	result := make([]*models.Listing, 0, len(raw))
	synthetic := 0

	for _, r := range raw {
		if r == nil {
			continue
		}
		l := n.Normalize(r)

		if l.Price <= 0 {
			n.logger.Debug("[normalizer] Dropped property %s - price: %v", l.ID, l.Price)
			continue
		}

		if l.ID != "" && !seen.Add(l.ID) {
			n.logger.Debug("[normalizer] Duplicate id skipped: %s", l.ID)
			continue
		}

		if l.SyntheticCoordinates {
			synthetic++
		}
		result = append(result, l)
	}

	n.logger.Info("[normalizer] Normalized %d → %d listings (dropped %d, synthetic coordinates %d)",
		len(raw), len(result), len(raw)-len(result), synthetic)
	return result
}

// Normalize maps one raw listing into a Listing. Absent fields take their
// defaults; it never fails.
func (n *Normalizer) Normalize(r *models.RawListing) *models.Listing {
	addr := r.Address
	if addr == nil {
		addr = &models.RawAddress{}
	}
	desc := r.Description
	if desc == nil {
		desc = &models.RawDescription{}
	}

	primary := ExtractPhotoURL(r.PrimaryPhoto)

	l := &models.Listing{
		ID:               r.PropertyID.String(),
		URL:              r.PropertyURL.String(),
		Status:           r.Status.String(),
		Price:            r.ListPrice.Or(0),
		Beds:             desc.Beds.Int(),
		BathsFull:        desc.FullBaths.Int(),
		BathsHalf:        desc.HalfBaths.Int(),
		Sqft:             desc.Sqft.Or(0),
		YearBuilt:        optionalInt(desc.YearBuilt),
		LotSqft:          desc.LotSqft.Or(0),
		Style:            desc.Style.String(),
		PropertyType:     desc.Type.String(),
		Description:      desc.Text.String(),
		Street:           addr.Street.String(),
		Unit:             addr.Unit.String(),
		City:             addr.City.String(),
		State:            addr.State.String(),
		ZipCode:          addr.ZipCode.String(),
		FormattedAddress: formatAddress(addr),
		Latitude:         r.Latitude.Or(0),
		Longitude:        r.Longitude.Or(0),
		PrimaryPhoto:     primary,
		Photos:           selectPhotos(primary, r.AltPhotos),
		AgentName:        r.AgentName.String(),
		AgentPhone:       r.AgentPhone.String(),
		AgentEmail:       r.AgentEmail.String(),
		DaysOnMLS:        r.DaysOnMLS.Int(),
		PricePerSqft:     r.PricePerSqft.Or(0),
		HOAFee:           r.HOAFee.Or(0),
		ListDate:         r.ListDate.String(),
		Neighborhoods:    r.Neighborhoods.String(),
		Stories:          desc.Stories.Int(),
		Garage:           desc.Garage.Or(0),
	}

	if l.Latitude == 0 || l.Longitude == 0 {
		p := n.generator.Generate()
		l.Latitude, l.Longitude = p.Lat, p.Lon
		l.SyntheticCoordinates = true
	}

	return l
}

// formatAddress prefers the source's formatted address and otherwise builds
// "street, city, state zip". All-empty components yield "".
func formatAddress(a *models.RawAddress) string {
	if a.FormattedAddress != "" {
		return a.FormattedAddress.String()
	}
	zip := a.ZipCode.String()
	if a.Street == "" && a.City == "" && a.State == "" && zip == "" {
		return ""
	}
	return fmt.Sprintf("%s, %s, %s %s", a.Street.String(), a.City.String(), a.State.String(), zip)
}

// selectPhotos keeps up to MaxPhotos alternate photos, falling back to the
// primary photo alone.
func selectPhotos(primary string, alts []models.PhotoRef) []string {
	photos := make([]string, 0, MaxPhotos)
	for i := range alts {
		if len(photos) == MaxPhotos {
			break
		}
		if url := ExtractPhotoURL(&alts[i]); url != "" {
			photos = append(photos, url)
		}
	}
	if len(photos) == 0 && primary != "" {
		photos = append(photos, primary)
	}
	return photos
}

func optionalInt(f models.FlexFloat) *int {
	if !f.Valid {
		return nil
	}
	v := int(f.Value)
	return &v
}
