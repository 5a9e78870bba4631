package model

// BrandModel is the structured identity extracted from a free-text
// product name. Both fields are populated when the value exists; a
// failed extraction is represented by the absence of the whole value,
// not by empty strings.
type BrandModel struct {
	Brand string `json:"brand"`
	Model string `json:"model"`
}

// ResolvedLinks holds the two reference-page URLs discovered for a
// product. The fields are independently nullable: finding one never
// depends on finding the other.
type ResolvedLinks struct {
	AttributeURL   *string `json:"attributeUrl"`
	MarketPriceURL *string `json:"marketPriceUrl"`
}

// LookupResult is the final best-effort aggregation returned for one
// product lookup. Every field is independently optional; a missing
// brand/model short-circuits the rest, leaving all fields null.
type LookupResult struct {
	Brand          *string  `json:"brand"`
	Model          *string  `json:"model"`
	AttributeURL   *string  `json:"attributeUrl"`
	MarketPriceURL *string  `json:"marketPriceUrl"`
	MarketPrice    *float64 `json:"marketPrice"`
}
