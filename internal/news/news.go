// Package news aggregates headlines for portfolio holdings, tags them
// by topic and asks an LLM for a short brief.
package news

import (
	"context"
	"strings"
	"time"
)

// Category is the topic tag of a headline.
type Category string

const (
	CategoryEarnings   Category = "Earnings"
	CategoryMA         Category = "M&A"
	CategoryRegulation Category = "Regulation"
	CategoryProduct    Category = "Product"
	CategoryMacro      Category = "Macro"
	CategoryLegal      Category = "Legal"
	CategoryOther      Category = "Other"
)

// Categories lists every category in classification order.
var Categories = []Category{
	CategoryEarnings, CategoryMA, CategoryRegulation, CategoryProduct,
	CategoryMacro, CategoryLegal, CategoryOther,
}

// ParseCategory matches a category name case-insensitively.
func ParseCategory(s string) (Category, bool) {
	s = strings.TrimSpace(s)
	for _, c := range Categories {
		if strings.EqualFold(s, string(c)) {
			return c, true
		}
	}
	if strings.EqualFold(s, "ma") || strings.EqualFold(s, "m-a") {
		return CategoryMA, true
	}
	return "", false
}

// Article is one headline as returned by a provider.
type Article struct {
	Headline    string
	Source      string
	URL         string
	Summary     string
	PublishedAt time.Time
}

// Item is an aggregated headline linked to a holding.
type Item struct {
	Headline    string    `json:"headline"`
	Source      string    `json:"source"`
	URL         string    `json:"url"`
	PublishedAt time.Time `json:"published_at"`
	Ticker      string    `json:"ticker"`
	Holding     string    `json:"holding"`
	Category    Category  `json:"category"`
}

// Provider fetches company news for one ticker over a date range.
type Provider interface {
	Name() string
	FetchNews(ctx context.Context, ticker string, from, to time.Time) ([]Article, error)
}

// Holding names a ticker to fetch news for.
type Holding struct {
	Ticker string
	Name   string
}
