package services

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/golang/geo/s2"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"property-harvester/models"
	"property-harvester/utils"
)

const (
	// coverageCellLevel is the S2 level used to count distinct map cells
	// (roughly 1 km across).
	coverageCellLevel = 13
	// opportunityRatio marks a listing as an opportunity when its price per
	// sqft is below this fraction of the average.
	opportunityRatio = 0.8
)

type InsightService struct {
	logger *utils.Logger
	out    io.Writer
}

func NewInsightService(logger *utils.Logger) *InsightService {
	return &InsightService{logger: logger, out: os.Stdout}
}

// WithOutput redirects Print to w.
func (s *InsightService) WithOutput(w io.Writer) *InsightService {
	s.out = w
	return s
}

func (s *InsightService) Generate(listings []*models.Listing) *models.InsightReport {
	report := &models.InsightReport{
		ListingsByCity: make(map[string]int),
	}

	if len(listings) == 0 {
		return report
	}

	report.TotalListings = len(listings)

	var priced []*models.Listing
	cells := make(map[s2.CellID]struct{})

	for _, l := range listings {
		if l.Price > 0 {
			priced = append(priced, l)
		}
		if l.PrimaryPhoto != "" {
			report.WithPhotos++
		}
		if l.Latitude != 0 && l.Longitude != 0 {
			report.WithCoordinates++
			if !l.SyntheticCoordinates {
				report.WithRealCoordinates++
			}
			cell := s2.CellIDFromLatLng(s2.LatLngFromDegrees(l.Latitude, l.Longitude)).Parent(coverageCellLevel)
			cells[cell] = struct{}{}
		}
		if city := normaliseText(l.City); city != "" {
			report.ListingsByCity[city]++
		}
	}
	report.CellsCovered = len(cells)
	report.WithValidPrice = len(priced)

	if len(priced) == 0 {
		return report
	}

	total := decimal.Zero
	ppsTotal := decimal.Zero
	domTotal := 0
	prices := make([]float64, 0, len(priced))

	report.MinPrice = priced[0].Price
	report.MaxPrice = priced[0].Price
	report.MostExpensive = priced[0]
	for _, l := range priced {
		total = total.Add(decimal.NewFromFloat(l.Price))
		ppsTotal = ppsTotal.Add(decimal.NewFromFloat(l.PricePerSqft))
		domTotal += l.DaysOnMLS
		prices = append(prices, l.Price)

		if l.Price < report.MinPrice {
			report.MinPrice = l.Price
		}
		if l.Price > report.MaxPrice {
			report.MaxPrice = l.Price
			report.MostExpensive = l
		}
	}

	n := decimal.NewFromInt(int64(len(priced)))
	report.TotalValue = total.InexactFloat64()
	report.AveragePrice = total.Div(n).Round(2).InexactFloat64()
	report.AvgDaysOnMarket = int(decimal.NewFromInt(int64(domTotal)).Div(n).Round(0).IntPart())

	sort.Float64s(prices)
	report.MedianPrice = median(prices)

	threshold := ppsTotal.Div(n).InexactFloat64() * opportunityRatio
	for _, l := range priced {
		if l.PricePerSqft > 0 && l.PricePerSqft < threshold {
			report.Opportunities++
		}
	}

	s.logger.Debug("[insights] %d priced listings, avg %.2f, median %.2f",
		report.WithValidPrice, report.AveragePrice, report.MedianPrice)
	return report
}

func (s *InsightService) Print(r *models.InsightReport) {
	p := message.NewPrinter(language.English)
	w := s.out
	sep := strings.Repeat("═", 54)
	thin := strings.Repeat("─", 54)

	fmt.Fprintf(w, "\n\033[1;35m%s\033[0m\n", sep)
	fmt.Fprintf(w, "\033[1;35m  🏠 HARVEST SUMMARY\033[0m\n")
	fmt.Fprintf(w, "\033[1;35m%s\033[0m\n\n", sep)

	if r.TotalListings == 0 {
		fmt.Fprintf(w, "  No properties found!\n")
		fmt.Fprintf(w, "\n\033[1;35m%s\033[0m\n\n", sep)
		return
	}

	fmt.Fprintf(w, "\033[1;33m  Overview\033[0m\n")
	fmt.Fprintf(w, "  %s\n", thin)
	fmt.Fprintf(w, "  Total properties   : \033[1m%d\033[0m\n", r.TotalListings)
	fmt.Fprintf(w, "  With valid price   : \033[1m%d\033[0m\n", r.WithValidPrice)
	fmt.Fprintf(w, "  With photos        : \033[1m%d\033[0m\n", r.WithPhotos)
	fmt.Fprintf(w, "  With coordinates   : \033[1m%d\033[0m (real %d, %d map cells)\n",
		r.WithCoordinates, r.WithRealCoordinates, r.CellsCovered)
	fmt.Fprintln(w)

	fmt.Fprintf(w, "\033[1;33m  Price Statistics\033[0m\n")
	fmt.Fprintf(w, "  %s\n", thin)
	if r.WithValidPrice > 0 {
		fmt.Fprintf(w, "  Average price : \033[1;32m%s\033[0m\n", p.Sprintf("$%.0f", r.AveragePrice))
		fmt.Fprintf(w, "  Median price  : \033[1;32m%s\033[0m\n", p.Sprintf("$%.0f", r.MedianPrice))
		fmt.Fprintf(w, "  Minimum price : \033[1;32m%s\033[0m\n", p.Sprintf("$%.0f", r.MinPrice))
		fmt.Fprintf(w, "  Maximum price : \033[1;32m%s\033[0m\n", p.Sprintf("$%.0f", r.MaxPrice))
		fmt.Fprintf(w, "  Total value   : \033[1;32m%s\033[0m\n", p.Sprintf("$%.0f", r.TotalValue))
	} else {
		fmt.Fprintf(w, "  No price data available\n")
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "\033[1;33m  Market\033[0m\n")
	fmt.Fprintf(w, "  %s\n", thin)
	fmt.Fprintf(w, "  Avg days on market : %d\n", r.AvgDaysOnMarket)
	fmt.Fprintf(w, "  Opportunities      : %d (price/sqft < %.0f%% of average)\n", r.Opportunities, opportunityRatio*100)
	fmt.Fprintln(w)

	if r.MostExpensive != nil {
		fmt.Fprintf(w, "\033[1;33m  Most Expensive Listing\033[0m\n")
		fmt.Fprintf(w, "  %s\n", thin)
		fmt.Fprintf(w, "  %s\n", truncate(r.MostExpensive.FormattedAddress, 50))
		fmt.Fprintf(w, "  Price : \033[1;31m%s\033[0m\n", p.Sprintf("$%.0f", r.MostExpensive.Price))
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "\033[1;33m  Listings by City\033[0m\n")
	fmt.Fprintf(w, "  %s\n", thin)
	if len(r.ListingsByCity) == 0 {
		fmt.Fprintf(w, "  No city data\n")
	} else {
		type cityCount struct {
			city  string
			count int
		}
		var cities []cityCount
		for city, cnt := range r.ListingsByCity {
			cities = append(cities, cityCount{city, cnt})
		}
		sort.Slice(cities, func(i, j int) bool {
			if cities[i].count == cities[j].count {
				return cities[i].city < cities[j].city
			}
			return cities[i].count > cities[j].count
		})
		for _, cc := range cities {
			bar := strings.Repeat("█", min(cc.count, 40))
			fmt.Fprintf(w, "  %-30s %s (%d)\n", truncate(cc.city, 28), bar, cc.count)
		}
	}

	fmt.Fprintf(w, "\n\033[1;35m%s\033[0m\n\n", sep)
}

func median(sorted []float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	mid := n / 2
	if n%2 != 0 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}

// normaliseText strips leading/trailing whitespace and collapses internal whitespace.
func normaliseText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	return string([]rune(s)[:max-3]) + "..."
}
