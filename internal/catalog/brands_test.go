package catalog

import (
	"testing"
)

func TestBrandFromName(t *testing.T) {
	testCases := []struct {
		name    string
		product string
		want    string
		found   bool
	}{
		{name: "jordan silhouette", product: "Jordan 4 Retro Military Black", want: "Nike Jordan", found: true},
		{name: "air jordan", product: "Air Jordan 3 White Cement Reimagined", want: "Nike Jordan", found: true},
		{name: "travis scott collab", product: "Travis Scott x Fragment Low", want: "Nike Jordan", found: true},
		{name: "nike prefix", product: "Nike SB Stefan Janoski", want: "Nike", found: true},
		{name: "dunk silhouette", product: "Dunk Low Panda", want: "Nike", found: true},
		{name: "yeezy prefix", product: "Yeezy Boost 350 V2 Zebra", want: "Adidas", found: true},
		{name: "samba silhouette", product: "Samba OG Cloud White", want: "Adidas", found: true},
		{name: "new balance model number", product: "2002R Protection Pack Rain Cloud", want: "New Balance", found: true},
		{name: "new balance triple digit", product: "550 White Green", want: "New Balance", found: true},
		{name: "asics gel", product: "Gel Kayano 14 Cream", want: "ASICS", found: true},
		{name: "salomon model", product: "XT-6 Black Phantom", want: "Salomon", found: true},
		{name: "gucci adidas collab", product: "Gucci x Gazelle", want: "Adidas", found: true},
		{name: "north face jacket", product: "The North Face 1996 Retro Nuptse", want: "The North Face", found: true},
		{name: "telfar pattern", product: "Telfar Medium Azalea", want: "Telfar", found: true},
		{name: "first word fallback", product: "Jordan", want: "Jordan", found: true},
		{name: "unknown product", product: "Completely Unknown Thing", want: "", found: false},
		{name: "empty name", product: "", want: "", found: false},
	}

	m := NewBrandMatcher()
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, found := m.BrandFromName(tc.product)
			if found != tc.found {
				t.Fatalf("BrandFromName(%q) found = %v, want %v", tc.product, found, tc.found)
			}
			if got != tc.want {
				t.Errorf("BrandFromName(%q) = %q, want %q", tc.product, got, tc.want)
			}
		})
	}
}

func TestBrandPatternOrder(t *testing.T) {
	m := NewBrandMatcher()

	// Collaboration patterns must win over the silhouette patterns they
	// would otherwise shadow.
	got, _ := m.BrandFromName("Travis Scott x Air Force 1 Low")
	if got != "Nike Jordan" {
		t.Errorf("collab pattern should win: got %q", got)
	}

	got, _ = m.BrandFromName("Gucci x Gazelle GG Monogram")
	if got != "Adidas" {
		t.Errorf("Gucci x adidas collab should resolve to Adidas: got %q", got)
	}
}
