package ocr

import (
	"context"
	"encoding/base64"
	"fmt"
	"time"

	"google.golang.org/api/option"
	vision "google.golang.org/api/vision/v1"
)

// Vision implements the Provider interface using the Google Cloud Vision API
type Vision struct {
	service *vision.Service
}

// NewVision creates a new Vision Provider instance. Credentials come from
// the API key when set, otherwise from application default credentials.
func NewVision(apiKey string) (*Vision, error) {
	ctx := context.Background()

	var opts []option.ClientOption
	if apiKey != "" {
		opts = append(opts, option.WithAPIKey(apiKey))
	}

	service, err := vision.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating vision service: %w", err)
	}

	return &Vision{service: service}, nil
}

// Recognize runs document text detection on a receipt image
func (v *Vision) Recognize(imageData []byte, contentType string) (*Result, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Vision accepts PNG/JPEG but not PDF or HEIC, so normalize first
	pngData, err := normalizeImage(imageData, contentType)
	if err != nil {
		return nil, err
	}

	req := &vision.BatchAnnotateImagesRequest{
		Requests: []*vision.AnnotateImageRequest{{
			Image: &vision.Image{
				Content: base64.StdEncoding.EncodeToString(pngData),
			},
			Features: []*vision.Feature{{
				Type: "DOCUMENT_TEXT_DETECTION",
			}},
		}},
	}

	resp, err := v.service.Images.Annotate(req).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("annotating image: %w", err)
	}
	if len(resp.Responses) == 0 {
		return nil, fmt.Errorf("no response from vision api")
	}

	annotation := resp.Responses[0]
	if annotation.Error != nil {
		return nil, fmt.Errorf("vision api error: %s", annotation.Error.Message)
	}

	result := &Result{}
	if annotation.FullTextAnnotation != nil {
		result.Text = annotation.FullTextAnnotation.Text
		for _, page := range annotation.FullTextAnnotation.Pages {
			p := Page{}
			for _, block := range page.Blocks {
				p.Blocks = append(p.Blocks, Block{Confidence: block.Confidence})
			}
			result.Pages = append(result.Pages, p)
		}
	}

	return result, nil
}

// Close closes the Vision provider. The underlying HTTP client holds no
// resources that need explicit release.
func (v *Vision) Close() error {
	return nil
}
