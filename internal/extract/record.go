package extract

// Record holds the structured fields extracted from a single invoice.
type Record struct {
	VendorName    string  `json:"VendorName"`
	InvoiceNumber string  `json:"InvoiceNumber"`
	Currency      string  `json:"Currency"`
	TotalAmount   float64 `json:"TotalAmount"`
	InvoiceDate   string  `json:"InvoiceDate"`
	PONumber      string  `json:"PONumber"`

	// FullText is the entire recognized document text. It is only used as
	// fallback input for purchase order resolution.
	FullText string `json:"full_text"`
}
