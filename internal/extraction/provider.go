package extraction

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/api/option"

	appconfig "github.com/m3rciful/insurancebot/internal/config"
	"github.com/m3rciful/insurancebot/internal/domain"
)

// Recognition is the raw provider output: the recognised text and, for template
// processors, named entities keyed by entity type.
type Recognition struct {
	Text     string
	Entities map[string]string
}

// Provider submits one image to a recognition service.
type Provider interface {
	Name() string
	Recognize(ctx context.Context, image []byte, mimeType string, kind domain.DocumentKind) (Recognition, error)
	Close() error
}

// NewProvider builds the provider selected in cfg.
func NewProvider(ctx context.Context, cfg appconfig.ExtractionConfig) (Provider, error) {
	opts := ClientOptions(cfg)
	switch cfg.Provider {
	case appconfig.ExtractionVision, "":
		v, err := NewVision(ctx, opts...)
		if err != nil {
			return nil, err
		}
		return v, nil
	case appconfig.ExtractionDocumentAI:
		d, err := NewDocumentAI(ctx, cfg.DocumentAI, opts...)
		if err != nil {
			return nil, err
		}
		return d, nil
	}
	return nil, fmt.Errorf("unknown extraction provider %q", cfg.Provider)
}

// ClientOptions returns the Google client credentials from cfg. Inline JSON wins over a file path;
// a file setting that holds JSON is treated as inline. No options means application default credentials.
func ClientOptions(cfg appconfig.ExtractionConfig) []option.ClientOption {
	creds := strings.TrimSpace(cfg.CredentialsJSON)
	if creds == "" {
		creds = strings.TrimSpace(cfg.CredentialsFile)
	}
	if creds == "" {
		return nil
	}
	if strings.HasPrefix(creds, "{") {
		return []option.ClientOption{option.WithCredentialsJSON([]byte(creds))}
	}
	return []option.ClientOption{option.WithCredentialsFile(creds)}
}
