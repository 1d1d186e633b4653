package extraction

import (
	"context"
	"fmt"

	vision "cloud.google.com/go/vision/v2/apiv1"
	visionpb "cloud.google.com/go/vision/v2/apiv1/visionpb"
	"google.golang.org/api/option"

	"github.com/m3rciful/insurancebot/internal/domain"
)

// Vision recognises documents with Cloud Vision dense text detection.
type Vision struct {
	client *vision.ImageAnnotatorClient
}

// NewVision opens an image annotator client.
func NewVision(ctx context.Context, opts ...option.ClientOption) (*Vision, error) {
	c, err := vision.NewImageAnnotatorClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("vision client: %w", err)
	}
	return &Vision{client: c}, nil
}

func (v *Vision) Name() string { return "vision" }

func (v *Vision) Recognize(ctx context.Context, image []byte, _ string, _ domain.DocumentKind) (Recognition, error) {
	req := &visionpb.BatchAnnotateImagesRequest{
		Requests: []*visionpb.AnnotateImageRequest{{
			Image:    &visionpb.Image{Content: image},
			Features: []*visionpb.Feature{{Type: visionpb.Feature_DOCUMENT_TEXT_DETECTION}},
		}},
	}
	resp, err := v.client.BatchAnnotateImages(ctx, req)
	if err != nil {
		return Recognition{}, fmt.Errorf("vision BatchAnnotateImages: %w", err)
	}
	if resp == nil || len(resp.Responses) == 0 || resp.Responses[0] == nil {
		return Recognition{}, nil
	}
	r0 := resp.Responses[0]
	if r0.Error != nil && r0.Error.Message != "" {
		return Recognition{}, fmt.Errorf("vision annotate: %s", r0.Error.Message)
	}
	if r0.FullTextAnnotation == nil {
		return Recognition{}, nil
	}
	return Recognition{Text: r0.FullTextAnnotation.Text}, nil
}

func (v *Vision) Close() error {
	if v == nil || v.client == nil {
		return nil
	}
	return v.client.Close()
}
