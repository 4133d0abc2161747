package catalog

import (
	"regexp"
	"strings"
)

// brandPattern maps a product-name pattern to the canonical brand.
// Order matters: the first match wins, so collaboration patterns sit
// before the generic silhouette patterns they would otherwise shadow.
type brandPattern struct {
	pattern *regexp.Regexp
	brand   string
}

func bp(expr, brand string) brandPattern {
	return brandPattern{pattern: regexp.MustCompile(`(?i)` + expr), brand: brand}
}

var brandPatterns = []brandPattern{
	// Nike and Jordan
	bp(`Jordan\s`, "Nike Jordan"),
	bp(`Travis Scott x`, "Nike Jordan"),
	bp(`Tom Sachs x`, "Nike"),
	bp(`^Nike\s`, "Nike"),
	bp(`^Air\s`, "Nike"),
	bp(`^Wmns\s`, "Nike"),
	bp(`Air Max`, "Nike"),
	bp(`Air Force`, "Nike"),
	bp(`Dunk`, "Nike"),
	bp(`Blazer`, "Nike"),
	bp(`Cortez`, "Nike"),
	bp(`P-6000`, "Nike"),
	bp(`Vapormax`, "Nike"),
	bp(`Presto`, "Nike"),

	// Adidas
	bp(`^adidas`, "Adidas"),
	bp(`^Yeezy`, "Adidas"),
	bp(`Bad Bunny x`, "Adidas"),
	bp(`Campus`, "Adidas"),
	bp(`Gazelle`, "Adidas"),
	bp(`Forum`, "Adidas"),
	bp(`UltraBoost`, "Adidas"),
	bp(`Samba`, "Adidas"),
	bp(`Stan Smith`, "Adidas"),
	bp(`Superstar`, "Adidas"),
	bp(`NMD`, "Adidas"),

	// New Balance model numbers like 2002R, 574, 990v6
	bp(`^New Balance`, "New Balance"),
	bp(`^\d{3,4}[RV]?\s`, "New Balance"),
	bp(`^Wmns \d{3}`, "New Balance"),

	// ASICS
	bp(`^ASICS`, "ASICS"),
	bp(`Gel\s`, "ASICS"),
	bp(`Kiko Kostadinov x`, "ASICS"),
	bp(`HAL STUDIOS x`, "ASICS"),

	// Converse
	bp(`^Converse`, "Converse"),
	bp(`Chuck Taylor`, "Converse"),
	bp(`Chuck 70`, "Converse"),
	bp(`All Star`, "Converse"),
	bp(`One Star`, "Converse"),

	// Puma
	bp(`^Puma`, "Puma"),
	bp(`Suede`, "Puma"),
	bp(`Palermo`, "Puma"),
	bp(`Speedcat`, "Puma"),
	bp(`RS-X`, "Puma"),

	// Vans
	bp(`^Vans`, "Vans"),
	bp(`Old Skool`, "Vans"),
	bp(`Sk8-Hi`, "Vans"),
	bp(`Slip-On`, "Vans"),

	// Salomon
	bp(`Salomon`, "Salomon"),
	bp(`XT-6`, "Salomon"),
	bp(`XT-4`, "Salomon"),
	bp(`XT-Wings`, "Salomon"),
	bp(`Speedcross`, "Salomon"),
	bp(`S/LAB`, "Salomon"),
	bp(`ACS Pro`, "Salomon"),

	// Crocs
	bp(`Salehe Bembury x`, "Crocs"),
	bp(`Crocs`, "Crocs"),
	bp(`Classic Clog`, "Crocs"),

	// UGG
	bp(`UGG`, "UGG"),
	bp(`Classic Ultra Mini`, "UGG"),
	bp(`Tasman`, "UGG"),
	bp(`Scuffette`, "UGG"),

	// Timberland
	bp(`Timberland`, "Timberland"),
	bp(`6-Inch Premium`, "Timberland"),
	bp(`Field Boot`, "Timberland"),
	bp(`Earthkeepers`, "Timberland"),

	// Dr. Martens
	bp(`Dr\. Martens`, "Dr. Martens"),
	bp(`1460`, "Dr. Martens"),
	bp(`1461`, "Dr. Martens"),

	// Hoka / On
	bp(`Hoka`, "Hoka"),
	bp(`Clifton`, "Hoka"),
	bp(`Bondi`, "Hoka"),
	bp(`^On\s`, "On Running"),
	bp(`Cloud`, "On Running"),

	// Golden Goose
	bp(`Golden Goose`, "Golden Goose"),
	bp(`Super-Star`, "Golden Goose"),

	// Streetwear
	bp(`Supreme`, "Supreme"),
	bp(`Palace`, "Palace"),
	bp(`Stussy|Stüssy`, "Stussy"),
	bp(`Kith`, "Kith"),
	bp(`Fear of God`, "Fear of God"),
	bp(`Essentials`, "Fear of God Essentials"),
	bp(`Telfar`, "Telfar"),
	bp(`Shopping Bag`, "Telfar"),
	bp(`Stone Island`, "Stone Island"),
	bp(`Off-White`, "Off-White"),

	// The North Face
	bp(`The North Face`, "The North Face"),
	bp(`North Face`, "The North Face"),
	bp(`Nuptse`, "The North Face"),
	bp(`Denali`, "The North Face"),
	bp(`Base Camp`, "The North Face"),

	// Y-3
	bp(`Y-3`, "Y-3"),
	bp(`Yohji Yamamoto`, "Y-3"),
	bp(`Kaiwa`, "Y-3"),
	bp(`Runner 4D`, "Y-3"),

	// Luxury
	bp(`Louis Vuitton`, "Louis Vuitton"),
	bp(`Balenciaga`, "Balenciaga"),
	bp(`Gucci x`, "Adidas"),
	bp(`Gucci`, "Gucci"),
	bp(`Bottega Veneta`, "Bottega Veneta"),
	bp(`Maison Margiela|Margiela`, "Maison Margiela"),
	bp(`Rick Owens`, "Rick Owens"),
	bp(`Comme des Garcons|CDG`, "Comme des Garcons"),

	// Bags and collectibles
	bp(`Eastpak`, "Eastpak"),
	bp(`Padded Pak'r`, "Eastpak"),
	bp(`JanSport`, "JanSport"),
	bp(`Hot Wheels|Cybertruck|MEGA Construx|Mattel`, "Mattel"),
	bp(`KAWS`, "KAWS"),
	bp(`Takashi Murakami`, "Murakami"),

	// Reebok
	bp(`Reebok`, "Reebok"),
	bp(`Club C`, "Reebok"),
}

// firstWordBrands are brand names accepted when they lead the product name
// and no pattern matched.
var firstWordBrands = map[string]bool{
	"Nike": true, "Adidas": true, "Yeezy": true, "Jordan": true,
	"Converse": true, "Vans": true, "Puma": true, "Reebok": true,
	"ASICS": true, "Salomon": true, "HOKA": true, "Crocs": true,
	"UGG": true, "Timberland": true, "Telfar": true, "Eastpak": true,
	"Palace": true,
}

// BrandMatcher extracts canonical brand names from free-text product names
// using the pattern table, with a first-word fallback.
type BrandMatcher struct{}

// NewBrandMatcher builds the pattern-based brand extractor.
func NewBrandMatcher() *BrandMatcher {
	return &BrandMatcher{}
}

// BrandFromName resolves the brand for a product name.
//
// Parameters:
//   - name: free-text product name from a marketplace export
//
// Returns:
//   - string: canonical brand name, empty when undetermined
//   - bool: whether a brand was found
func (m *BrandMatcher) BrandFromName(name string) (string, bool) {
	if name == "" {
		return "", false
	}

	for _, candidate := range brandPatterns {
		if candidate.pattern.MatchString(name) {
			return candidate.brand, true
		}
	}

	words := strings.Fields(name)
	if len(words) > 0 && len(words[0]) > 2 && firstWordBrands[words[0]] {
		return words[0], true
	}

	return "", false
}
