package ocr

// Result is the provider-neutral output of a recognition call: the full
// recognized text plus the per-block confidence structure reported by the
// provider. Providers that cannot report confidence leave Pages empty.
type Result struct {
	Text  string `json:"text"`
	Pages []Page `json:"pages"`
}

// Page groups the text blocks recognized on one page of the source document.
type Page struct {
	Blocks []Block `json:"blocks"`
}

// Block is one recognized text region. A zero Confidence means the provider
// reported none for this block.
type Block struct {
	Confidence float64 `json:"confidence"`
}

// Provider defines the interface for OCR backends
type Provider interface {
	// Recognize runs text recognition on a receipt image or PDF
	Recognize(imageData []byte, contentType string) (*Result, error)
	// Close closes the provider and releases resources
	Close() error
}
