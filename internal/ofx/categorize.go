package ofx

import (
	"regexp"
	"sort"
)

// Spending categories assigned to imported purchases. They match the
// category names used in card benefit strings.
const (
	CategoryDining  = "dining"
	CategoryGrocery = "grocery"
	CategoryTravel  = "travel"
	CategoryHotel   = "hotel"
	CategoryAuto    = "auto"
	CategoryFuel    = "fuel"
	CategoryClothes = "shopping"
	CategoryCulture = "culture"
	CategoryOnline  = "online"
	CategoryTelecom = "telecom"
	CategoryFees    = "fees"
	CategoryCash    = "cash"
	CategoryOther   = "other"
)

// Rule maps a merchant-name pattern to a spending category.
type Rule struct {
	Category string
	Regex    string
	Priority int // Higher priority rules are checked first
}

type compiledRule struct {
	regex *regexp.Regexp
	Rule
}

// DefaultRules returns the keyword rules used by Categorize.
func DefaultRules() []Rule {
	return []Rule{
		{Category: CategoryHotel, Priority: 100, Regex: `\b(HOTEL|MARRIOTT|HILTON|HYATT|AIRBNB|MOTEL|RESORT|INN)\b`},
		{Category: CategoryTravel, Priority: 95, Regex: `\b(AIRLINES?|AIRWAYS|DELTA|UNITED|AMERICAN AIR|SOUTHWEST|EXPEDIA|TRAVEL|AMTRAK|KOREAN AIR|ASIANA)\b`},
		{Category: CategoryFuel, Priority: 90, Regex: `\b(SHELL|CHEVRON|EXXON|MOBIL|TEXACO|GAS\s*STATION|FUEL|SK ENERGY|GS CALTEX)\b`},
		{Category: CategoryAuto, Priority: 85, Regex: `\b(AUTO|JIFFY LUBE|PARKING|TOLL|CAR\s*WASH|TIRE)\b`},
		{Category: CategoryGrocery, Priority: 80, Regex: `\b(WHOLE\s*FOODS|TRADER JOE|SAFEWAY|KROGER|GROCERY|MARKET|COSTCO|EMART|LOTTE MART|HOMEPLUS)\b`},
		{Category: CategoryDining, Priority: 75, Regex: `\b(STARBUCKS|CAFE|COFFEE|RESTAURANT|PIZZA|BURGER|MCDONALD|CHIPOTLE|DOORDASH|GRUBHUB|UBER\s*EATS|BAKERY|BISTRO|GRILL)\b`},
		{Category: CategoryCulture, Priority: 70, Regex: `\b(NETFLIX|SPOTIFY|HULU|DISNEY|CINEMA|THEATER|THEATRE|CGV|MUSEUM|TICKETMASTER|BOOKS?)\b`},
		{Category: CategoryClothes, Priority: 65, Regex: `\b(ZARA|H&M|UNIQLO|NIKE|ADIDAS|GAP|NORDSTROM|MACY|APPAREL|CLOTHING)\b`},
		{Category: CategoryOnline, Priority: 60, Regex: `\b(AMAZON|AMZN|EBAY|ETSY|COUPANG|GMARKET|\.COM)`},
		{Category: CategoryTelecom, Priority: 55, Regex: `\b(VERIZON|AT&T|T-MOBILE|COMCAST|XFINITY|SKT|KT CORP|LG U\+)`},
	}
}

var defaultRules = compileRules(DefaultRules())

func compileRules(rules []Rule) []compiledRule {
	compiled := make([]compiledRule, 0, len(rules))
	for _, r := range rules {
		compiled = append(compiled, compiledRule{Rule: r, regex: regexp.MustCompile("(?i)" + r.Regex)})
	}
	sort.SliceStable(compiled, func(i, j int) bool {
		return compiled[i].Priority > compiled[j].Priority
	})
	return compiled
}

// Categorize assigns a spending category to a merchant name using the
// highest-priority matching rule, or CategoryOther when nothing matches.
func Categorize(merchant string) string {
	for _, r := range defaultRules {
		if r.regex.MatchString(merchant) {
			return r.Category
		}
	}
	return CategoryOther
}
