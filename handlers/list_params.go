package handlers

import (
	"tendertrack/config"
	"tendertrack/services"
)

// listSpec applies the configured page sizes to spec.
func listSpec(cfg *config.Config, spec services.ListSpec) services.ListSpec {
	spec.PageSize = cfg.Listing.DefaultPageSize
	spec.MaxPageSize = cfg.Listing.MaxPageSize
	return spec
}
