package broker

// Wire shapes for the brokerage provider. Cash values and quotes arrive
// as floats in the provider's units; quotes are normalized later by
// ticker namespace.

type position struct {
	Ticker       string  `json:"ticker"`
	Quantity     float64 `json:"quantity"`
	CurrentPrice float64 `json:"currentPrice"`
}

type orderPage struct {
	Items []orderItem `json:"items"`
	// NextPagePath points at the next (older) page and is absent on the
	// last one.
	NextPagePath *string `json:"nextPagePath"`
}

type orderItem struct {
	ID           int64   `json:"id"`
	Ticker       string  `json:"ticker"`
	Type         string  `json:"type"`
	FilledValue  float64 `json:"filledValue"`
	DateModified string  `json:"dateModified"`
}
