package extraction

import (
	"context"
	"fmt"
	"strings"

	documentai "cloud.google.com/go/documentai/apiv1"
	"cloud.google.com/go/documentai/apiv1/documentaipb"
	"google.golang.org/api/option"

	appconfig "github.com/m3rciful/insurancebot/internal/config"
	"github.com/m3rciful/insurancebot/internal/domain"
)

// DocumentAI recognises documents with a single configured Document AI processor,
// typically an identity document parser, and returns its entities alongside the text.
type DocumentAI struct {
	client    *documentai.DocumentProcessorClient
	processor string
}

// NewDocumentAI opens a processor client on the regional endpoint of cfg.Location.
func NewDocumentAI(ctx context.Context, cfg appconfig.DocumentAIConfig, opts ...option.ClientOption) (*DocumentAI, error) {
	endpoint := fmt.Sprintf("%s-documentai.googleapis.com:443", cfg.Location)
	opts = append([]option.ClientOption{option.WithEndpoint(endpoint)}, opts...)
	c, err := documentai.NewDocumentProcessorClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("documentai client: %w", err)
	}
	return &DocumentAI{
		client:    c,
		processor: fmt.Sprintf("projects/%s/locations/%s/processors/%s", cfg.ProjectID, cfg.Location, cfg.ProcessorID),
	}, nil
}

func (d *DocumentAI) Name() string { return "documentai" }

func (d *DocumentAI) Recognize(ctx context.Context, image []byte, mimeType string, _ domain.DocumentKind) (Recognition, error) {
	resp, err := d.client.ProcessDocument(ctx, &documentaipb.ProcessRequest{
		Name: d.processor,
		Source: &documentaipb.ProcessRequest_RawDocument{
			RawDocument: &documentaipb.RawDocument{Content: image, MimeType: mimeType},
		},
	})
	if err != nil {
		return Recognition{}, fmt.Errorf("documentai ProcessDocument: %w", err)
	}
	if resp == nil || resp.Document == nil {
		return Recognition{}, nil
	}
	return recognitionFromDocument(resp.Document), nil
}

func recognitionFromDocument(doc *documentaipb.Document) Recognition {
	rec := Recognition{Text: doc.GetText()}
	for _, ent := range doc.GetEntities() {
		if ent == nil {
			continue
		}
		val := strings.TrimSpace(ent.GetMentionText())
		if nv := ent.GetNormalizedValue(); nv != nil && strings.TrimSpace(nv.GetText()) != "" {
			val = strings.TrimSpace(nv.GetText())
		}
		if val == "" {
			continue
		}
		if rec.Entities == nil {
			rec.Entities = make(map[string]string)
		}
		key := normalizeKey(ent.GetType())
		if _, dup := rec.Entities[key]; !dup {
			rec.Entities[key] = val
		}
	}
	return rec
}

func (d *DocumentAI) Close() error {
	if d == nil || d.client == nil {
		return nil
	}
	return d.client.Close()
}
