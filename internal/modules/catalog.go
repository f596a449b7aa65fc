package modules

// Module describes one entry of the fixed platform catalog.
type Module struct {
	Slug         string
	Name         string
	Description  string
	Icon         string
	PriceMonthly int64
	ComingSoon   bool
}

// Catalog is the full static module catalog, in display order.
var Catalog = []Module{
	{
		Slug:         "avito_parser",
		Name:         "Avito Parser",
		Description:  "Monitors Avito listings and pushes matched ads to your channels.",
		Icon:         "search",
		PriceMonthly: 49000,
	},
	{
		Slug:         "vpn_service",
		Name:         "VPN Service",
		Description:  "Issues and manages per-user VPN access keys.",
		Icon:         "shield",
		PriceMonthly: 29000,
	},
	{
		Slug:         "news_aggregator",
		Name:         "News Aggregator",
		Description:  "Collects and deduplicates news from configured sources.",
		Icon:         "newspaper",
		PriceMonthly: 39000,
	},
	{
		Slug:         "birthday_bot",
		Name:         "Birthday Bot",
		Description:  "Sends birthday reminders and greetings to group members.",
		Icon:         "cake",
		PriceMonthly: 19000,
	},
	{
		Slug:         "music_lotto",
		Name:         "Music Lotto",
		Description:  "Runs music guessing games with prize draws.",
		Icon:         "music",
		PriceMonthly: 25000,
		ComingSoon:   true,
	},
	{
		Slug:         "vk_quests",
		Name:         "VK Quests",
		Description:  "Hosts quest campaigns for VK communities.",
		Icon:         "map",
		PriceMonthly: 35000,
		ComingSoon:   true,
	},
	{
		Slug:         "bot_constructor",
		Name:         "Bot Constructor",
		Description:  "Visual builder for messenger bots without code.",
		Icon:         "blocks",
		PriceMonthly: 59000,
		ComingSoon:   true,
	},
}

// BySlug returns the catalog entry for the slug.
func BySlug(slug string) (Module, bool) {
	for _, m := range Catalog {
		if m.Slug == slug {
			return m, true
		}
	}
	return Module{}, false
}

// Slugs returns every catalog slug in display order.
func Slugs() []string {
	out := make([]string, 0, len(Catalog))
	for _, m := range Catalog {
		out = append(out, m.Slug)
	}
	return out
}

// Availability renders the catalog availability label.
func (m Module) Availability() string {
	if m.ComingSoon {
		return "coming_soon"
	}
	return "available"
}
