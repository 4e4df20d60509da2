package carsome

import (
	"context"
	"fmt"
	"strings"
	"time"

	"carsome-scraper/config"
	"carsome-scraper/models"
	"carsome-scraper/utils"

	"github.com/go-resty/resty/v2"
)

// PageScraper turns one result-page URL into listing records via the
// external structured-extraction service.
type PageScraper interface {
	ScrapePage(ctx context.Context, pageURL string) ([]models.CarListing, error)
}

// listingSchema is the fixed extraction schema sent with every request.
// It is part of the deployment, not user-editable.
var listingSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"listings": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"brand":   map[string]any{"type": "string", "description": "The brand of the car"},
					"model":   map[string]any{"type": "string", "description": "The model of the car"},
					"year":    map[string]any{"type": "integer", "description": "Year manufactured"},
					"mileage": map[string]any{"type": "integer", "description": "Mileage in km"},
					"price":   map[string]any{"type": "number", "description": "Price in RM"},
					"url":     map[string]any{"type": "string", "description": "Link to the listing"},
				},
				"required": []string{"brand", "model", "year", "mileage", "price"},
			},
		},
	},
	"required": []string{"listings"},
}

type extractRequest struct {
	URL     string      `json:"url"`
	Formats []string    `json:"formats"`
	Extract extractSpec `json:"extract"`
}

type extractSpec struct {
	Schema       map[string]any `json:"schema"`
	Prompt       string         `json:"prompt"`
	SystemPrompt string         `json:"systemPrompt"`
}

type extractResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Data    struct {
		Extract struct {
			Listings []listingPayload `json:"listings"`
		} `json:"extract"`
	} `json:"data"`
}

type listingPayload struct {
	Brand   string  `json:"brand"`
	Model   string  `json:"model"`
	Year    int     `json:"year"`
	Mileage int     `json:"mileage"`
	Price   float64 `json:"price"`
	URL     string  `json:"url"`
}

// Extractor calls the extraction service once per page. Retry policy
// lives in the orchestrator, not here.
type Extractor struct {
	client *resty.Client
	url    string
}

func NewExtractor(cfg *config.Config) *Extractor {
	client := resty.New().
		SetTimeout(cfg.RequestTimeout).
		SetHeader("Content-Type", "application/json")
	if cfg.ExtractorKey != "" {
		client.SetAuthToken(cfg.ExtractorKey)
	}
	return &Extractor{client: client, url: cfg.ExtractorURL}
}

// ScrapePage submits one page URL with the fixed listing schema and
// returns the validated records. Invalid records are dropped with a
// warning; a page with zero usable records is an empty-page
// ExtractionError so the caller's retry and failure reporting treat it
// like any other page failure.
func (e *Extractor) ScrapePage(ctx context.Context, pageURL string) ([]models.CarListing, error) {
	body := extractRequest{
		URL:     pageURL,
		Formats: []string{"extract"},
		Extract: extractSpec{
			Schema:       listingSchema,
			Prompt:       "Extract used car listings (brand, model, year, mileage, price, url)",
			SystemPrompt: "You are a helpful assistant extracting used car data",
		},
	}

	var parsed extractResponse
	resp, err := e.client.R().
		SetContext(ctx).
		SetBody(body).
		SetResult(&parsed).
		Post(e.url)
	if err != nil {
		return nil, &ExtractionError{Kind: ExtractionService, URL: pageURL, Err: err}
	}
	if resp.IsError() {
		return nil, &ExtractionError{
			Kind: ExtractionService,
			URL:  pageURL,
			Err:  fmt.Errorf("extraction service returned %s", resp.Status()),
		}
	}
	if !parsed.Success {
		return nil, &ExtractionError{
			Kind: ExtractionSchemaMismatch,
			URL:  pageURL,
			Err:  fmt.Errorf("service reported failure: %s", parsed.Error),
		}
	}

	listings := make([]models.CarListing, 0, len(parsed.Data.Extract.Listings))
	for i, p := range parsed.Data.Extract.Listings {
		l, err := validListing(p)
		if err != nil {
			utils.Warn("Dropping record %d from %s: %v", i+1, pageURL, err)
			continue
		}
		listings = append(listings, l)
	}

	if len(listings) == 0 {
		return nil, &ExtractionError{Kind: ExtractionEmptyPage, URL: pageURL}
	}
	return listings, nil
}

// validListing checks one extracted record against the schema's intent
// before it is accepted into the result set.
func validListing(p listingPayload) (models.CarListing, error) {
	brand := strings.TrimSpace(p.Brand)
	model := strings.TrimSpace(p.Model)
	switch {
	case brand == "" || model == "":
		return models.CarListing{}, fmt.Errorf("missing brand or model")
	case p.Year < 1950 || p.Year > time.Now().Year()+1:
		return models.CarListing{}, fmt.Errorf("implausible year %d", p.Year)
	case p.Mileage < 0:
		return models.CarListing{}, fmt.Errorf("negative mileage %d", p.Mileage)
	case p.Price <= 0:
		return models.CarListing{}, fmt.Errorf("non-positive price %.2f", p.Price)
	}
	return models.CarListing{
		Brand:   brand,
		Model:   model,
		Year:    p.Year,
		Mileage: p.Mileage,
		Price:   p.Price,
		URL:     strings.TrimSpace(p.URL),
	}, nil
}
