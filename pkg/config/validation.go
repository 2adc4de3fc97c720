package config

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Validate checks the configuration for invalid or inconsistent values.
//
// Struct tags cover the declarative rules (required fields, enumerations,
// port ranges); cross-field rules that tags cannot express are checked
// explicitly afterwards.
func Validate(cfg *Config) error {
	validate := validator.New()

	if err := validate.Struct(cfg); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok && len(verrs) > 0 {
			// Report the first violation with its full field path so the
			// user can find the offending setting.
			first := verrs[0]
			return fmt.Errorf("invalid value for %s: failed '%s' validation",
				first.Namespace(), first.Tag())
		}
		return err
	}

	if err := validateCatalog(&cfg.Catalog); err != nil {
		return err
	}

	return validateFields(cfg.Fields)
}

// validateCatalog checks backend-specific requirements that depend on
// which backend is selected.
func validateCatalog(cfg *CatalogConfig) error {
	switch cfg.Backend {
	case "badger":
		if cfg.Badger.Path == "" && !cfg.Badger.InMemory {
			return fmt.Errorf("catalog: badger backend requires a path (or in_memory: true)")
		}
	case "postgres":
		if err := cfg.Postgres.Validate(); err != nil {
			return fmt.Errorf("catalog: %w", err)
		}
	}
	return nil
}

// validateFields checks that field definitions are internally consistent
// and do not collide with each other.
func validateFields(fields []FieldSpec) error {
	ids := make(map[int64]string, len(fields))
	handles := make(map[string]struct{}, len(fields))

	for _, f := range fields {
		if prev, ok := ids[f.ID]; ok {
			return fmt.Errorf("fields: id %d used by both %q and %q", f.ID, prev, f.Handle)
		}
		ids[f.ID] = f.Handle

		if _, ok := handles[f.Handle]; ok {
			return fmt.Errorf("fields: duplicate handle %q", f.Handle)
		}
		handles[f.Handle] = struct{}{}

		if f.ActiveVolumeID() == "" {
			mode := "default_volume"
			if f.UseSingleFolder {
				mode = "single_volume"
			}
			return fmt.Errorf("fields: %q needs %s set", f.Handle, mode)
		}

		if f.RestrictFiles && len(f.AllowedKinds) == 0 {
			return fmt.Errorf("fields: %q restricts files but allows no kinds", f.Handle)
		}
	}
	return nil
}
