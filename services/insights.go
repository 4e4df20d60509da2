package services

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"carsome-scraper/models"
)

type Report struct {
	TotalListings  int
	FailedPages    []int
	AveragePrice   float64
	MinPrice       float64
	MaxPrice       float64
	AverageMileage float64
	Cheapest       models.CarListing
	LowestMileage  models.CarListing
	ListingsByYear map[int]int
}

// GenerateReport computes end-of-run insights over the final result
// set. Listings arrive already validated; nothing is filtered here.
func GenerateReport(rs *models.ResultSet) Report {
	report := Report{
		TotalListings:  len(rs.Listings),
		FailedPages:    rs.FailedPages,
		ListingsByYear: make(map[int]int),
	}

	if len(rs.Listings) == 0 {
		return report
	}

	var (
		priceSum   float64
		mileageSum float64
		minPrice   = math.MaxFloat64
		maxPrice   = -1.0
		minMileage = math.MaxInt
	)

	for _, l := range rs.Listings {
		report.ListingsByYear[l.Year]++
		priceSum += l.Price
		mileageSum += float64(l.Mileage)

		if l.Price < minPrice {
			minPrice = l.Price
			report.Cheapest = l
		}
		if l.Price > maxPrice {
			maxPrice = l.Price
		}
		if l.Mileage < minMileage {
			minMileage = l.Mileage
			report.LowestMileage = l
		}
	}

	n := float64(len(rs.Listings))
	report.AveragePrice = priceSum / n
	report.AverageMileage = mileageSum / n
	report.MinPrice = minPrice
	report.MaxPrice = maxPrice

	return report
}

func PrintReport(report Report) {
	fmt.Println()
	fmt.Println("┌──────────────────────────────────────────────────────────────┐")
	fmt.Println("│                   Used Car Market Insights                   │")
	fmt.Println("├───────────────────────────────┬──────────────────────────────┤")
	fmt.Printf("│ %-29s │ %-28d │\n", "Total Listings Scraped", report.TotalListings)
	fmt.Printf("│ %-29s │ %-28.2f │\n", "Average Price (RM)", report.AveragePrice)
	fmt.Printf("│ %-29s │ %-28.2f │\n", "Minimum Price (RM)", report.MinPrice)
	fmt.Printf("│ %-29s │ %-28.2f │\n", "Maximum Price (RM)", report.MaxPrice)
	fmt.Printf("│ %-29s │ %-28.0f │\n", "Average Mileage (km)", report.AverageMileage)
	fmt.Println("└───────────────────────────────┴──────────────────────────────┘")

	if report.Cheapest.Brand != "" {
		fmt.Println()
		fmt.Println("┌──────────────────────────────────────────────────────────────┐")
		fmt.Println("│                        Cheapest Listing                      │")
		fmt.Println("├───────────────────────────────┬──────────────────────────────┤")
		fmt.Printf("│ %-29s │ %-28s │\n", "Car", truncateText(carLabel(report.Cheapest), 28))
		fmt.Printf("│ %-29s │ %-28.2f │\n", "Price (RM)", report.Cheapest.Price)
		fmt.Printf("│ %-29s │ %-28d │\n", "Mileage (km)", report.Cheapest.Mileage)
		fmt.Println("└───────────────────────────────┴──────────────────────────────┘")
	}

	if len(report.ListingsByYear) > 0 {
		fmt.Println()
		fmt.Println("┌──────────────────────────────────────────────┬───────────────┐")
		fmt.Println("│ Listings per Model Year                      │ Count         │")
		fmt.Println("├──────────────────────────────────────────────┼───────────────┤")
		for _, year := range sortedYears(report.ListingsByYear) {
			fmt.Printf("│ %-44d │ %-13d │\n", year, report.ListingsByYear[year])
		}
		fmt.Println("└──────────────────────────────────────────────┴───────────────┘")
	}

	if len(report.FailedPages) > 0 {
		fmt.Println()
		fmt.Printf("⚠ Pages that failed extraction: %s\n", joinPages(report.FailedPages))
	}
}

func carLabel(l models.CarListing) string {
	return fmt.Sprintf("%d %s %s", l.Year, capitalize(l.Brand), capitalize(l.Model))
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func sortedYears(m map[int]int) []int {
	years := make([]int, 0, len(m))
	for y := range m {
		years = append(years, y)
	}
	sort.Ints(years)
	return years
}

func joinPages(pages []int) string {
	parts := make([]string, len(pages))
	for i, p := range pages {
		parts[i] = fmt.Sprintf("%d", p)
	}
	return strings.Join(parts, ", ")
}

func truncateText(s string, max int) string {
	if len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:max]
	}
	return s[:max-3] + "..."
}
