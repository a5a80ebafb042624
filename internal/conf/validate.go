// conf/validate.go

package conf

import (
	"fmt"
	"strings"

	"github.com/herdwatch/herdwatch-go/internal/herd"
)

// ValidationError represents a collection of validation errors
type ValidationError struct {
	Errors []string
}

// Error returns a string representation of the validation errors
func (ve ValidationError) Error() string {
	return fmt.Sprintf("Validation errors: %v", ve.Errors)
}

// ValidateSettings validates the entire Settings struct
func ValidateSettings(settings *Settings) error {
	ve := ValidationError{}

	if err := validateMonitorSettings(&settings.Monitor); err != nil {
		ve.Errors = append(ve.Errors, err.Error())
	}

	if err := validateOutputSettings(&settings.Output); err != nil {
		ve.Errors = append(ve.Errors, err.Error())
	}

	if len(ve.Errors) > 0 {
		return ve
	}
	return nil
}

// validateMonitorSettings validates the indicator engine settings
func validateMonitorSettings(settings *MonitorSettings) error {
	var errs []string

	if settings.SCCThreshold <= 0 {
		errs = append(errs, fmt.Sprintf("SCC threshold must be positive, got %v", settings.SCCThreshold))
	}

	if _, err := herd.ParseSystemType(settings.SystemType); err != nil {
		errs = append(errs, err.Error())
	}

	if settings.MinOverlap < 0 {
		errs = append(errs, fmt.Sprintf("minimum overlap must not be negative, got %d", settings.MinOverlap))
	}

	if settings.DryOffGestationDays <= 0 {
		errs = append(errs, fmt.Sprintf("dry-off gestation days must be positive, got %d", settings.DryOffGestationDays))
	}

	if settings.FirstTest.MinDIM < 0 {
		errs = append(errs, fmt.Sprintf("first-test minimum DIM must not be negative, got %d", settings.FirstTest.MinDIM))
	}
	if settings.FirstTest.MaxDIM < settings.FirstTest.MinDIM {
		errs = append(errs, fmt.Sprintf("first-test DIM window is inverted: [%d, %d]",
			settings.FirstTest.MinDIM, settings.FirstTest.MaxDIM))
	}

	if len(errs) > 0 {
		return fmt.Errorf("monitor settings errors: %s", strings.Join(errs, "; "))
	}
	return nil
}

// validateOutputSettings validates the persistence settings
func validateOutputSettings(settings *OutputSettings) error {
	var errs []string

	if settings.SQLite.Enabled && settings.SQLite.Path == "" {
		errs = append(errs, "sqlite output enabled but path is empty")
	}

	if settings.MySQL.Enabled {
		if settings.MySQL.Host == "" {
			errs = append(errs, "mysql output enabled but host is empty")
		}
		if settings.MySQL.Database == "" {
			errs = append(errs, "mysql output enabled but database is empty")
		}
	}

	if settings.SQLite.Enabled && settings.MySQL.Enabled {
		errs = append(errs, "only one of sqlite and mysql output may be enabled")
	}

	if len(errs) > 0 {
		return fmt.Errorf("output settings errors: %s", strings.Join(errs, "; "))
	}
	return nil
}
