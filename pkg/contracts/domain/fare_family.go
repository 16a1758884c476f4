package domain

// AirlineFareFamily is one carrier x fare family aggregate
type AirlineFareFamily struct {
	Carrier            string `json:"carrier" validate:"required"`
	OutboundFareFamily string `json:"outbound_fare_family" validate:"required"`
	ODs                int64  `json:"ods" validate:"gte=0"`
}

// SourceFareFamily is one carrier x source x fare family aggregate
type SourceFareFamily struct {
	Carrier            string `json:"carrier" validate:"required"`
	Source             string `json:"source" validate:"required"`
	OutboundFareFamily string `json:"outbound_fare_family" validate:"required"`
	ODs                int64  `json:"ods" validate:"gte=0"`
}

// BrandDetection is one priced itinerary observation with its detected brands.
// Nil pointers mean the value was missing in the source file.
type BrandDetection struct {
	Airline                     string   `json:"airline" validate:"required"`
	Source                      string   `json:"source" validate:"required"`
	IdentifiedBasicEconomyBrand *string  `json:"identified_basic_economy_brand"`
	AllDetectedBrands           *string  `json:"all_detected_brands"`
	MinPriceInc                 *float64 `json:"min_price_inc" validate:"omitempty,gte=0"`
}

// HasIdentifiedBrand reports whether a basic economy brand was detected
func (b BrandDetection) HasIdentifiedBrand() bool {
	return b.IdentifiedBasicEconomyBrand != nil
}
