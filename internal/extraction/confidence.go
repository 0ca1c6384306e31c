package extraction

import "github.com/husseinallaw/receiptvault-app/internal/ocr"

// Score averages the block confidences reported across all pages of an OCR
// result into one receipt-level score in [0,1]. Blocks without a reported
// confidence are skipped; no pages or no scored blocks means no signal and
// yields 0, never an error.
func Score(result *ocr.Result) float64 {
	if result == nil || len(result.Pages) == 0 {
		return 0
	}

	var total float64
	var count int
	for _, page := range result.Pages {
		for _, block := range page.Blocks {
			if block.Confidence != 0 {
				total += block.Confidence
				count++
			}
		}
	}
	if count == 0 {
		return 0
	}
	return total / float64(count)
}
