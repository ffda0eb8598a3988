package sections

import (
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// catalogFile is the YAML document accepted by ApplyCatalog.
//
//	register:
//	  - id: promo-banner
//	    display_name: Promo banner
//	    ...
//	patch:
//	  - id: hero-video
//	    is_active: false
//	unregister:
//	  - features
type catalogFile struct {
	Register   []Descriptor   `yaml:"register"`
	Patch      []catalogPatch `yaml:"patch"`
	Unregister []string       `yaml:"unregister"`
}

type catalogPatch struct {
	ID              string `yaml:"id"`
	DescriptorPatch `yaml:",inline"`
}

// CatalogReport lists what ApplyCatalog changed.
type CatalogReport struct {
	Registered   []string `json:"registered"`
	Patched      []string `json:"patched"`
	Unregistered []string `json:"unregistered"`
	Warnings     []string `json:"warnings,omitempty"`
}

// ApplyCatalog registers, patches and unregisters types from a YAML document. Entries are
// applied in order; a failing entry is reported and does not stop the rest.
func (r *Registry) ApplyCatalog(src io.Reader) (CatalogReport, error) {
	var file catalogFile
	decoder := yaml.NewDecoder(src)
	decoder.KnownFields(true)
	if err := decoder.Decode(&file); err != nil && !errors.Is(err, io.EOF) {
		return CatalogReport{}, fmt.Errorf("failed to parse section catalog: %w", err)
	}

	var (
		report CatalogReport
		errs   []error
	)
	for _, desc := range file.Register {
		result, err := r.Register(desc)
		if err != nil {
			errs = append(errs, fmt.Errorf("register %q: %w", desc.ID, err))
			continue
		}
		report.Registered = append(report.Registered, normaliseTypeID(desc.ID))
		report.Warnings = append(report.Warnings, result.Warnings...)
	}
	for _, entry := range file.Patch {
		found, err := r.Patch(entry.ID, entry.DescriptorPatch)
		switch {
		case err != nil:
			errs = append(errs, fmt.Errorf("patch %q: %w", entry.ID, err))
		case !found:
			report.Warnings = append(report.Warnings, fmt.Sprintf("patch skipped: section type %q is not registered", entry.ID))
		default:
			report.Patched = append(report.Patched, normaliseTypeID(entry.ID))
		}
	}
	for _, id := range file.Unregister {
		if r.Unregister(id) {
			report.Unregistered = append(report.Unregistered, normaliseTypeID(id))
		} else {
			report.Warnings = append(report.Warnings, fmt.Sprintf("unregister skipped: section type %q is not registered", id))
		}
	}
	return report, errors.Join(errs...)
}
