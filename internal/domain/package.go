package domain

// CreditPackage is a purchasable bundle mapping a price to a credit count.
type CreditPackage struct {
	Credits       int    `json:"credits"`
	Price         int    `json:"price"`
	Name          string `json:"name"`
	PaddlePriceID string `json:"paddlePriceId"`
}

// Packages is the static package catalog. Purchases and webhook events are
// validated against it; unknown package names are rejected.
var Packages = map[string]CreditPackage{
	"lite": {
		Credits:       5,
		Price:         10,
		Name:          "Lite Package",
		PaddlePriceID: "pri_01hv8x3k9qfm2e7r5n1t4w6y8b",
	},
	"pro": {
		Credits:       100,
		Price:         125,
		Name:          "Pro Package",
		PaddlePriceID: "pri_01hv8x4c2dn6p9s3j7m1k5v0w4",
	},
}

// PackageByName looks up a package in the catalog.
func PackageByName(name string) (CreditPackage, bool) {
	pkg, ok := Packages[name]
	return pkg, ok
}
