package models

import "github.com/milequest/mapservice/internal/mapping"

// SearchResult is one geocoding match.
type SearchResult struct {
	ID        string   `json:"id"`
	Address   string   `json:"address"`
	Position  Position `json:"position"`
	Relevance float64  `json:"relevance"`
	Type      string   `json:"type"`
}

// SearchResponse is returned by GET /v1/geocode/search.
type SearchResponse struct {
	Results []SearchResult `json:"results"`
}

// ReverseGeocodeResponse is returned by GET /v1/geocode/reverse.
type ReverseGeocodeResponse struct {
	Address  string   `json:"address"`
	Position Position `json:"position"`
}

// NewSearchResponse converts service results, keeping their order.
func NewSearchResponse(results []mapping.SearchResult) SearchResponse {
	resp := SearchResponse{Results: make([]SearchResult, len(results))}
	for i, r := range results {
		resp.Results[i] = SearchResult{
			ID:        r.ID,
			Address:   r.Address,
			Position:  FromGeoPosition(r.Position),
			Relevance: r.Relevance,
			Type:      r.Type,
		}
	}
	return resp
}
