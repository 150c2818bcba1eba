package domain

// Roster is the fixed set of countries the pipeline operates over, loaded
// once at bootstrap via Store.UpsertCountry (cmd/geopulse's `bootstrap`
// step). Trimmed from the original's expanded_countries.py EXPANDED_COUNTRIES
// table (172 entries) to a representative cross-region sample; population
// figures from that table are dropped since no component of this spec uses
// them. Countries are read-only after bootstrap (spec.md §3).
var Roster = []Country{
	{Code: "US", Name: "United States", Region: "North America"},
	{Code: "CA", Name: "Canada", Region: "North America"},
	{Code: "MX", Name: "Mexico", Region: "North America"},

	{Code: "GB", Name: "United Kingdom", Region: "Europe"},
	{Code: "DE", Name: "Germany", Region: "Europe"},
	{Code: "FR", Name: "France", Region: "Europe"},
	{Code: "IT", Name: "Italy", Region: "Europe"},
	{Code: "ES", Name: "Spain", Region: "Europe"},
	{Code: "PL", Name: "Poland", Region: "Europe"},
	{Code: "NL", Name: "Netherlands", Region: "Europe"},
	{Code: "SE", Name: "Sweden", Region: "Europe"},
	{Code: "RU", Name: "Russia", Region: "Europe"},
	{Code: "UA", Name: "Ukraine", Region: "Europe"},
	{Code: "BY", Name: "Belarus", Region: "Europe"},

	{Code: "KZ", Name: "Kazakhstan", Region: "Central Asia"},
	{Code: "UZ", Name: "Uzbekistan", Region: "Central Asia"},

	{Code: "CN", Name: "China", Region: "Asia"},
	{Code: "JP", Name: "Japan", Region: "Asia"},
	{Code: "KR", Name: "South Korea", Region: "Asia"},
	{Code: "IN", Name: "India", Region: "Asia"},
	{Code: "PK", Name: "Pakistan", Region: "Asia"},
	{Code: "BD", Name: "Bangladesh", Region: "Asia"},
	{Code: "ID", Name: "Indonesia", Region: "Asia"},
	{Code: "VN", Name: "Vietnam", Region: "Asia"},
	{Code: "MM", Name: "Myanmar", Region: "Asia"},
	{Code: "PH", Name: "Philippines", Region: "Asia"},

	{Code: "IL", Name: "Israel", Region: "Middle East"},
	{Code: "SA", Name: "Saudi Arabia", Region: "Middle East"},
	{Code: "IR", Name: "Iran", Region: "Middle East"},
	{Code: "IQ", Name: "Iraq", Region: "Middle East"},
	{Code: "SY", Name: "Syria", Region: "Middle East"},
	{Code: "TR", Name: "Turkey", Region: "Middle East"},
	{Code: "YE", Name: "Yemen", Region: "Middle East"},
	{Code: "AE", Name: "United Arab Emirates", Region: "Middle East"},

	{Code: "EG", Name: "Egypt", Region: "North Africa"},
	{Code: "LY", Name: "Libya", Region: "North Africa"},
	{Code: "DZ", Name: "Algeria", Region: "North Africa"},
	{Code: "MA", Name: "Morocco", Region: "North Africa"},

	{Code: "NG", Name: "Nigeria", Region: "Africa"},
	{Code: "ET", Name: "Ethiopia", Region: "Africa"},
	{Code: "ZA", Name: "South Africa", Region: "Africa"},
	{Code: "KE", Name: "Kenya", Region: "Africa"},
	{Code: "SD", Name: "Sudan", Region: "Africa"},
	{Code: "SO", Name: "Somalia", Region: "Africa"},
	{Code: "ML", Name: "Mali", Region: "Africa"},
	{Code: "CD", Name: "Democratic Republic of the Congo", Region: "Africa"},

	{Code: "BR", Name: "Brazil", Region: "South America"},
	{Code: "AR", Name: "Argentina", Region: "South America"},
	{Code: "CO", Name: "Colombia", Region: "South America"},
	{Code: "VE", Name: "Venezuela", Region: "South America"},
	{Code: "PE", Name: "Peru", Region: "South America"},
	{Code: "CL", Name: "Chile", Region: "South America"},

	{Code: "GT", Name: "Guatemala", Region: "Central America"},
	{Code: "HN", Name: "Honduras", Region: "Central America"},

	{Code: "HT", Name: "Haiti", Region: "Caribbean"},
	{Code: "CU", Name: "Cuba", Region: "Caribbean"},

	{Code: "AU", Name: "Australia", Region: "Oceania"},
	{Code: "NZ", Name: "New Zealand", Region: "Oceania"},
}
