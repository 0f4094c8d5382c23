package esp

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Catalog declares additional custom provider descriptors loaded at process
// start, so deployments can pre-register webhook-style ESPs without admin
// interaction:
//
//	providers:
//	  - name: acme-mail
//	    display_name: Acme Mail
//	    description: internal list service
//	    config_fields:
//	      - key: endpoint
//	        label: Webhook endpoint URL
//	        required: true
type Catalog struct {
	Providers []Descriptor `yaml:"providers"`
}

var ErrInvalidCatalog = errors.New("invalid provider catalog")

// LoadCatalog parses a YAML catalog file. A missing file is not an error;
// it yields an empty catalog.
func LoadCatalog(path string) (Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Catalog{}, nil
		}
		return Catalog{}, errors.Join(ErrInvalidCatalog, err)
	}
	return ParseCatalog(data)
}

// ParseCatalog parses catalog YAML and validates descriptor names.
func ParseCatalog(data []byte) (Catalog, error) {
	var catalog Catalog
	if err := yaml.Unmarshal(data, &catalog); err != nil {
		return Catalog{}, errors.Join(ErrInvalidCatalog, err)
	}
	for i, d := range catalog.Providers {
		if Normalize(d.Name) == "" {
			return Catalog{}, fmt.Errorf("%w: provider %d has no name", ErrInvalidCatalog, i)
		}
	}
	return catalog, nil
}

// RegisterCatalog registers every catalog descriptor as a webhook-backed
// custom provider. Duplicate names fail registration and are reported.
func RegisterCatalog(registry *Registry, catalog Catalog, opts ...Option) error {
	var errs []error
	for _, descriptor := range catalog.Providers {
		if err := registry.Register(NewCustomWebhook(descriptor, opts...)); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
