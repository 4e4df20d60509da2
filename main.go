package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"carsome-scraper/config"
	"carsome-scraper/models"
	"carsome-scraper/scraper/carsome"
	"carsome-scraper/services"
	"carsome-scraper/storage"
	"carsome-scraper/utils"
)

func main() {
	brand := flag.String("brand", "", "car brand to search (required)")
	model := flag.String("model", "", "car model to search (required)")
	mileage := flag.Int("mileage", -1, "maximum mileage in km (-1 for no cap)")
	pages := flag.Int("pages", 0, "number of result pages to scrape (0 for all)")
	refresh := flag.Bool("refresh", false, "bypass the cache and scrape fresh")
	flag.Parse()

	cfg := config.Load()

	var maxMileage *int
	if *mileage >= 0 {
		maxMileage = mileage
	}

	query, err := models.NormalizeQuery(*brand, *model, maxMileage)
	if err != nil {
		utils.Error("%v", err)
		flag.Usage()
		os.Exit(1)
	}

	utils.Section("CARSOME LISTING SCRAPER")
	utils.Info("Search: %s %s | max mileage: %s | pages: %s",
		query.Brand, query.Model, mileageLabel(query), pagesLabel(*pages))

	cache, err := storage.NewPostgresCache(cfg)
	if err != nil {
		utils.Error("Failed to connect PostgreSQL: %v", err)
		os.Exit(1)
	}
	defer cache.Close()

	if err := cache.EnsureSchema(); err != nil {
		utils.Error("Failed to ensure cache schema: %v", err)
		os.Exit(1)
	}

	discoverer := carsome.NewDiscoverer(cfg)
	defer discoverer.Close()

	extractor := carsome.NewExtractor(cfg)
	orchestrator := carsome.NewOrchestrator(cfg, discoverer, extractor, cache)

	selected := *pages
	if selected == 0 {
		selected = carsome.AllPages
	}

	ctx := context.Background()
	var results *models.ResultSet
	if *refresh {
		results, err = orchestrator.RunFresh(ctx, query, selected)
	} else {
		results, err = orchestrator.Run(ctx, query, selected)
	}
	if err != nil {
		reportRunError(err)
		os.Exit(1)
	}

	if len(results.Listings) == 0 {
		utils.Warn("No listings found matching your criteria.")
		os.Exit(0)
	}

	if results.FromCache {
		utils.Info("Showing cached results from %s — rerun with -refresh to scrape fresh",
			results.ScrapedAt.Format("2006-01-02 15:04:05"))
	} else {
		writer := storage.NewCSVWriter(cfg.OutputDir)
		if _, err := writer.Write(results); err != nil {
			utils.Error("Failed to save CSV: %v", err)
			os.Exit(1)
		}
	}

	report := services.GenerateReport(results)
	services.PrintReport(report)
	printSummary(results)
}

// reportRunError maps the typed error taxonomy onto actionable
// messages, keeping "site changed" distinct from "network/timeout"
// and from bad input.
func reportRunError(err error) {
	var pagErr *carsome.PaginationError
	switch {
	case errors.Is(err, models.ErrInvalidQuery):
		utils.Error("Invalid search input: %v", err)
	case errors.Is(err, carsome.ErrInvalidSelection):
		utils.Error("Invalid page selection: %v", err)
	case errors.As(err, &pagErr):
		switch pagErr.Kind {
		case carsome.PaginationElementNotFound:
			utils.Error("%v", pagErr)
			utils.Info("The site layout may have changed — inspect the page and update the selectors.")
		case carsome.PaginationTimeout:
			utils.Error("%v", pagErr)
			utils.Info("The site did not respond in time — check your connection and retry.")
		default:
			utils.Error("%v", pagErr)
		}
	default:
		utils.Error("Scrape failed: %v", err)
	}
}

func mileageLabel(q models.SearchQuery) string {
	if !q.HasMileage {
		return "any"
	}
	return fmt.Sprintf("%d km", q.MaxMileage)
}

func pagesLabel(pages int) string {
	if pages == 0 {
		return "all"
	}
	return fmt.Sprintf("%d", pages)
}

func printSummary(results *models.ResultSet) {
	fmt.Println()
	fmt.Println("╔══════════════════════════════════════════════╗")
	fmt.Println("║                SCRAPE COMPLETE               ║")
	fmt.Println("╠══════════════════════════════════════════════╣")
	fmt.Printf("║  Total listings : %-26d║\n", len(results.Listings))
	fmt.Printf("║  Failed pages   : %-26d║\n", len(results.FailedPages))
	fmt.Println("╚══════════════════════════════════════════════╝")
	fmt.Println()
}
