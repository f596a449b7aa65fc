package billing

import (
	"github.com/modulehq/platform-backend/internal/modules"
	dbtypes "github.com/modulehq/platform-backend/pkg/db/types"
	"github.com/modulehq/platform-backend/pkg/enums"
)

// Plan describes one entry of the fixed plan catalog.
type Plan struct {
	ID           enums.PlanID
	Name         string
	PriceMonthly int64
	Modules      []string
	// AllModules grants every catalog module, present and future. It is an
	// explicit flag so the grant never depends on the module map contents.
	AllModules bool
}

// Plans is the full static plan catalog, cheapest first.
var Plans = []Plan{
	{
		ID:           enums.PlanFree,
		Name:         "Free",
		PriceMonthly: 0,
	},
	{
		ID:           enums.PlanBasic,
		Name:         "Basic",
		PriceMonthly: 99000,
		Modules:      []string{"avito_parser", "vpn_service"},
	},
	{
		ID:           enums.PlanPro,
		Name:         "Pro",
		PriceMonthly: 299000,
		Modules:      []string{"avito_parser", "vpn_service", "news_aggregator", "birthday_bot"},
	},
	{
		ID:           enums.PlanEnterprise,
		Name:         "Enterprise",
		PriceMonthly: 999000,
		AllModules:   true,
	},
}

// PlanByID returns the catalog entry for the plan.
func PlanByID(id enums.PlanID) (Plan, bool) {
	for _, p := range Plans {
		if p.ID == id {
			return p, true
		}
	}
	return Plan{}, false
}

// ModuleFlags renders the plan's module grants as the persisted toggle map.
// AllModules plans expand to the full catalog at the time of purchase; the
// flag itself stays authoritative for entitlement checks.
func (p Plan) ModuleFlags() dbtypes.ModuleFlags {
	flags := dbtypes.ModuleFlags{}
	if p.AllModules {
		for _, slug := range modules.Slugs() {
			flags[slug] = true
		}
		return flags
	}
	for _, slug := range p.Modules {
		flags[slug] = true
	}
	return flags
}
