package industry

import "watchlist-news/internal/types"

type entry struct {
	ticker  types.Ticker
	profile types.IndustryProfile
}

// staticEntries is the curated profile table, in declaration order. Order
// matters for competitor synthesis of unknown tickers.
var staticEntries = []entry{
	// Technology
	{"AAPL", types.IndustryProfile{Industry: "Consumer Electronics",
		Competitors: []string{"MSFT", "GOOGL", "AMZN", "META", "NVDA"},
		Keywords:    []string{"iPhone", "smartphone", "consumer electronics", "App Store", "iOS", "Mac", "iPad", "wearables"}}},
	{"MSFT", types.IndustryProfile{Industry: "Cloud Computing & Software",
		Competitors: []string{"GOOGL", "AMZN", "AAPL", "CRM", "ORCL"},
		Keywords:    []string{"cloud computing", "Azure", "Office 365", "enterprise software", "AI", "Windows"}}},
	{"GOOGL", types.IndustryProfile{Industry: "Internet & Digital Advertising",
		Competitors: []string{"META", "AMZN", "MSFT", "AAPL"},
		Keywords:    []string{"search", "advertising", "YouTube", "Android", "cloud computing", "AI"}}},
	{"META", types.IndustryProfile{Industry: "Social Media & VR",
		Competitors: []string{"GOOGL", "SNAP", "TWTR", "PINS"},
		Keywords:    []string{"social media", "Facebook", "Instagram", "metaverse", "VR", "advertising"}}},
	{"NVDA", types.IndustryProfile{Industry: "Semiconductors & AI",
		Competitors: []string{"AMD", "INTC", "QCOM", "TSM"},
		Keywords:    []string{"GPU", "AI chips", "data center", "gaming", "machine learning", "semiconductors"}}},
	{"AMD", types.IndustryProfile{Industry: "Semiconductors",
		Competitors: []string{"NVDA", "INTC", "QCOM"},
		Keywords:    []string{"CPU", "GPU", "processors", "gaming", "data center", "semiconductors"}}},
	{"INTC", types.IndustryProfile{Industry: "Semiconductors",
		Competitors: []string{"AMD", "NVDA", "QCOM"},
		Keywords:    []string{"CPU", "processors", "chips", "semiconductors", "data center"}}},
	{"QCOM", types.IndustryProfile{Industry: "Semiconductors",
		Competitors: []string{"NVDA", "AMD", "INTC"},
		Keywords:    []string{"mobile chips", "5G", "wireless", "semiconductors", "Snapdragon"}}},

	// Electric vehicles & automotive
	{"TSLA", types.IndustryProfile{Industry: "Electric Vehicles & Clean Energy",
		Competitors: []string{"RIVN", "LCID", "NIO", "XPEV", "BYD", "F", "GM"},
		Keywords:    []string{"electric vehicle", "EV", "autonomous driving", "battery", "clean energy", "solar"}}},
	{"RIVN", types.IndustryProfile{Industry: "Electric Vehicles",
		Competitors: []string{"TSLA", "LCID", "F", "GM"},
		Keywords:    []string{"electric truck", "EV", "electric vehicle", "Amazon", "delivery"}}},
	{"LCID", types.IndustryProfile{Industry: "Electric Vehicles",
		Competitors: []string{"TSLA", "RIVN", "NIO"},
		Keywords:    []string{"luxury EV", "electric vehicle", "Lucid Air", "battery technology"}}},
	{"NIO", types.IndustryProfile{Industry: "Electric Vehicles",
		Competitors: []string{"TSLA", "XPEV", "LI"},
		Keywords:    []string{"Chinese EV", "electric vehicle", "battery swap", "autonomous driving"}}},
	{"XPEV", types.IndustryProfile{Industry: "Electric Vehicles",
		Competitors: []string{"TSLA", "NIO", "LI"},
		Keywords:    []string{"XPeng", "Chinese EV", "electric vehicle", "autonomous driving"}}},
	{"F", types.IndustryProfile{Industry: "Automotive",
		Competitors: []string{"GM", "TSLA", "RIVN"},
		Keywords:    []string{"Ford", "F-150", "electric vehicle", "automotive", "trucks"}}},
	{"GM", types.IndustryProfile{Industry: "Automotive",
		Competitors: []string{"F", "TSLA", "RIVN"},
		Keywords:    []string{"General Motors", "electric vehicle", "Ultium", "automotive"}}},

	// E-commerce & retail
	{"AMZN", types.IndustryProfile{Industry: "E-commerce & Cloud Services",
		Competitors: []string{"MSFT", "GOOGL", "WMT", "SHOP"},
		Keywords:    []string{"e-commerce", "AWS", "cloud services", "retail", "logistics", "Prime"}}},
	{"SHOP", types.IndustryProfile{Industry: "E-commerce Platform",
		Competitors: []string{"AMZN", "WMT", "EBAY"},
		Keywords:    []string{"e-commerce", "online retail", "merchants", "payments"}}},
	{"WMT", types.IndustryProfile{Industry: "Retail",
		Competitors: []string{"AMZN", "TGT", "COST"},
		Keywords:    []string{"retail", "grocery", "e-commerce", "Walmart"}}},
	{"TGT", types.IndustryProfile{Industry: "Retail",
		Competitors: []string{"WMT", "AMZN", "COST"},
		Keywords:    []string{"Target", "retail", "grocery", "consumer goods"}}},

	// Financial services
	{"JPM", types.IndustryProfile{Industry: "Banking",
		Competitors: []string{"BAC", "WFC", "C"},
		Keywords:    []string{"banking", "financial services", "loans", "credit", "investment banking"}}},
	{"BAC", types.IndustryProfile{Industry: "Banking",
		Competitors: []string{"JPM", "WFC", "C"},
		Keywords:    []string{"Bank of America", "banking", "financial services", "loans"}}},
	{"WFC", types.IndustryProfile{Industry: "Banking",
		Competitors: []string{"JPM", "BAC", "C"},
		Keywords:    []string{"Wells Fargo", "banking", "financial services", "loans"}}},
	{"C", types.IndustryProfile{Industry: "Banking",
		Competitors: []string{"JPM", "BAC", "WFC"},
		Keywords:    []string{"Citigroup", "banking", "financial services", "investment banking"}}},
	{"V", types.IndustryProfile{Industry: "Payment Processing",
		Competitors: []string{"MA", "PYPL", "SQ"},
		Keywords:    []string{"payments", "credit cards", "financial technology", "transactions"}}},
	{"MA", types.IndustryProfile{Industry: "Payment Processing",
		Competitors: []string{"V", "PYPL", "SQ"},
		Keywords:    []string{"Mastercard", "payments", "credit cards", "financial technology"}}},
	{"PYPL", types.IndustryProfile{Industry: "Digital Payments",
		Competitors: []string{"V", "MA", "SQ"},
		Keywords:    []string{"PayPal", "digital payments", "fintech", "online payments"}}},

	// Healthcare & biotech
	{"JNJ", types.IndustryProfile{Industry: "Healthcare & Pharmaceuticals",
		Competitors: []string{"PFE", "MRK", "ABBV"},
		Keywords:    []string{"healthcare", "pharmaceuticals", "medical devices", "drugs"}}},
	{"PFE", types.IndustryProfile{Industry: "Pharmaceuticals",
		Competitors: []string{"JNJ", "MRK", "ABBV"},
		Keywords:    []string{"Pfizer", "pharmaceuticals", "vaccines", "drugs", "biotech"}}},
	{"MRK", types.IndustryProfile{Industry: "Pharmaceuticals",
		Competitors: []string{"PFE", "JNJ", "ABBV"},
		Keywords:    []string{"Merck", "pharmaceuticals", "drugs", "biotech", "vaccines"}}},
	{"MRNA", types.IndustryProfile{Industry: "Biotechnology",
		Competitors: []string{"BNTX", "PFE", "NVAX"},
		Keywords:    []string{"mRNA", "vaccines", "biotechnology", "therapeutics"}}},

	// Energy
	{"XOM", types.IndustryProfile{Industry: "Oil & Gas",
		Competitors: []string{"CVX", "COP", "BP"},
		Keywords:    []string{"oil", "gas", "energy", "petroleum", "refining"}}},
	{"CVX", types.IndustryProfile{Industry: "Oil & Gas",
		Competitors: []string{"XOM", "COP", "BP"},
		Keywords:    []string{"Chevron", "oil", "gas", "energy", "petroleum"}}},

	// Streaming & entertainment
	{"NFLX", types.IndustryProfile{Industry: "Streaming & Entertainment",
		Competitors: []string{"DIS", "WBD", "PARA"},
		Keywords:    []string{"streaming", "Netflix", "entertainment", "content", "movies", "TV shows"}}},
	{"DIS", types.IndustryProfile{Industry: "Entertainment & Media",
		Competitors: []string{"NFLX", "WBD", "PARA"},
		Keywords:    []string{"Disney", "streaming", "entertainment", "theme parks", "movies"}}},

	// Mobility, travel, crypto
	{"UBER", types.IndustryProfile{Industry: "Ride Sharing & Delivery",
		Competitors: []string{"LYFT", "DASH", "ABNB"},
		Keywords:    []string{"ride sharing", "delivery", "gig economy", "transportation"}}},
	{"LYFT", types.IndustryProfile{Industry: "Ride Sharing",
		Competitors: []string{"UBER", "DASH"},
		Keywords:    []string{"ride sharing", "transportation", "gig economy"}}},
	{"ABNB", types.IndustryProfile{Industry: "Travel & Hospitality",
		Competitors: []string{"BKNG", "EXPE"},
		Keywords:    []string{"Airbnb", "travel", "hospitality", "vacation rentals"}}},
	{"COIN", types.IndustryProfile{Industry: "Cryptocurrency",
		Competitors: []string{"HOOD", "SQ"},
		Keywords:    []string{"cryptocurrency", "Bitcoin", "crypto exchange", "digital assets"}}},
	{"HOOD", types.IndustryProfile{Industry: "Financial Technology",
		Competitors: []string{"COIN", "SQ", "PYPL"},
		Keywords:    []string{"Robinhood", "trading", "fintech", "investing"}}},
}

type categoryRule struct {
	label    string
	keywords []string
}

// categoryRules are tested in order against an external company
// description; the first rule with any matching keyword wins.
var categoryRules = []categoryRule{
	{"Technology", []string{"software", "cloud", "AI", "tech", "digital", "internet", "platform"}},
	{"Electric Vehicles", []string{"electric", "EV", "battery", "autonomous", "vehicle"}},
	{"Semiconductors", []string{"chip", "semiconductor", "processor", "GPU", "CPU"}},
	{"Healthcare", []string{"health", "pharma", "medical", "biotech", "drug"}},
	{"Financial", []string{"bank", "financial", "payment", "credit", "fintech"}},
	{"Energy", []string{"oil", "gas", "energy", "renewable", "solar"}},
	{"Retail", []string{"retail", "commerce", "shopping", "store"}},
	{"Entertainment", []string{"streaming", "media", "entertainment", "content"}},
	{"Automotive", []string{"automotive", "car", "vehicle", "truck"}},
	{"Ride Sharing", []string{"ride", "sharing", "transportation", "mobility"}},
	{"Cryptocurrency", []string{"crypto", "bitcoin", "blockchain", "digital currency"}},
}

var staticIndex = func() map[types.Ticker]int {
	idx := make(map[types.Ticker]int, len(staticEntries))
	for i, e := range staticEntries {
		idx[e.ticker] = i
	}
	return idx
}()

// KnownTickers returns every ticker in the static table in declaration order.
func KnownTickers() []types.Ticker {
	out := make([]types.Ticker, len(staticEntries))
	for i, e := range staticEntries {
		out[i] = e.ticker
	}
	return out
}

func lookupStatic(t types.Ticker) (types.IndustryProfile, bool) {
	i, ok := staticIndex[t]
	if !ok {
		return types.IndustryProfile{}, false
	}
	return clone(staticEntries[i].profile), true
}
