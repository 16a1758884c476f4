package domain

// GroupTotal is the summed volume of one group key
type GroupTotal struct {
	Key   string `json:"key"`
	Total int64  `json:"total"`
}

// Share is a group total normalized by the grand total
type Share struct {
	Key   string  `json:"key"`
	Total int64   `json:"total"`
	Share float64 `json:"share"`
}

// HistogramBin is one equal-width bin; Upper is inclusive only for the last bin
type HistogramBin struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
	Count int     `json:"count"`
}

// Histogram is a binned numeric distribution after outlier trimming
type Histogram struct {
	Cutoff   float64        `json:"cutoff"`
	Included int            `json:"included"`
	Excluded int            `json:"excluded"`
	Bins     []HistogramBin `json:"bins"`
}

// HeadlineMetrics are the cross-dataset counters of the overview page
type HeadlineMetrics struct {
	AirlineLevelCarriers int    `json:"airline_level_carriers"`
	SourceLevelCarriers  int    `json:"source_level_carriers"`
	DetectionAirlines    int    `json:"detection_airlines"`
	TotalODs             int64  `json:"total_ods"`
	TotalODsDisplay      string `json:"total_ods_display"`
}

// AirlineLevelSummary summarizes the airline-level dataset
type AirlineLevelSummary struct {
	TopCarriers     []GroupTotal `json:"top_carriers"`
	TopFareFamilies []GroupTotal `json:"top_fare_families"`
}

// SourceLevelSummary summarizes the source-level dataset
type SourceLevelSummary struct {
	SourceDistribution []Share      `json:"source_distribution"`
	TopCarrierSources  []GroupTotal `json:"top_carrier_sources"`
}

// DetectionSummary summarizes the brand-detection dataset
type DetectionSummary struct {
	Records            int       `json:"records"`
	IdentificationRate float64   `json:"identification_rate"`
	AvgBrandsPerRecord float64   `json:"avg_brands_per_record"`
	AvgMinPrice        float64   `json:"avg_min_price"`
	PriceDistribution  Histogram `json:"price_distribution"`
}

// Overview is the result of the overview page
type Overview struct {
	Headline     HeadlineMetrics     `json:"headline"`
	AirlineLevel AirlineLevelSummary `json:"airline_level"`
	SourceLevel  SourceLevelSummary  `json:"source_level"`
	Detections   DetectionSummary    `json:"detections"`
}
