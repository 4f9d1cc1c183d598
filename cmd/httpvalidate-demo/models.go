package main

import (
	_ "embed"

	"github.com/dmitrymomot/httpvalidate/pkg/schema"
)

// SearchQuery is the query string of GET /search.
type SearchQuery struct {
	Term  string   `json:"term" jsonschema:"minLength=1"`
	Page  int      `json:"page" jsonschema:"default=1,minimum=1"`
	Tags  []string `json:"tags,omitempty"`
	Exact *bool    `json:"exact"`
}

// SearchResult is the response of GET /search.
type SearchResult struct {
	Term  string   `json:"term"`
	Page  int      `json:"page"`
	Tags  []string `json:"tags"`
	Exact *bool    `json:"exact"`
}

// NewItem is one element of the POST /items body.
type NewItem struct {
	Name  string  `json:"name" jsonschema:"minLength=1,maxLength=100"`
	Price float64 `json:"price" jsonschema:"minimum=0"`
	Note  *string `json:"note"`
}

// Item is a stored item.
type Item struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
	Note  *string `json:"note"`
}

// ItemFilter is the query string of GET /items.
type ItemFilter struct {
	MaxPrice *float64 `json:"max_price" jsonschema:"minimum=0"`
}

// Feedback is the form posted to POST /feedback.
type Feedback struct {
	Email   string `json:"email" jsonschema:"pattern=^[^@ ]+@[^@ ]+$"`
	Rating  int    `json:"rating" jsonschema:"minimum=1,maximum=5"`
	Comment string `json:"comment,omitempty" jsonschema:"maxLength=500"`
}

//go:embed lookup.yaml
var lookupDocument []byte

var (
	searchQuerySchema  = schema.MustFor[SearchQuery]()
	searchResultSchema = schema.MustFor[SearchResult]()
	newItemSchema      = schema.MustFor[NewItem]()
	itemSchema         = schema.MustFor[Item]()
	itemFilterSchema   = schema.MustFor[ItemFilter]()
	feedbackSchema     = schema.MustFor[Feedback]()
	lookupSchema       = schema.MustFromDocument("Lookup", lookupDocument)
)
