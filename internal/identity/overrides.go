package identity

// DefaultOverrides maps operator slugs to the brand OSM contributors
// actually tag. Only genuine mismatches belong here: corporate parents
// trading under a different name, and legal names that clean up badly.
func DefaultOverrides() map[string]string {
	return map[string]string{
		// Corporate parent != trading brand
		"whitbread-group":             "Premier Inn",
		"whitbread":                   "Premier Inn",
		"telefonica-uk":               "O2",
		"telefonica":                  "O2",
		"tjx-uk":                      "TK Maxx",
		"tjx":                         "TK Maxx",
		"dixons-carphone":             "Currys",
		"dixons":                      "Currys",
		"ee":                          "EE",
		"three-uk":                    "Three",
		"t-j-morris":                  "Home Bargains",
		"frasers-group":               "Sports Direct",
		"subway-realty":               "Subway",
		"five-guys-jv":                "Five Guys",
		// Name divergence
		"wm-morrison-supermarkets":    "Morrisons",
		"wm-morrison":                 "Morrisons",
		"sainsburys-supermarkets":     "Sainsbury's",
		"sainsburys":                  "Sainsbury's",
		"marks-and-spencer-group":     "Marks & Spencer",
		"marks-and-spencer":           "Marks & Spencer",
		"cooperative-group":           "Co-op",
		"co-operative-group":          "Co-op",
		"central-england-cooperative": "Co-op",
		"the-midcounties-cooperative": "Co-op",
		"the-southern-cooperative":    "Co-op",
		"iceland-foods":               "Iceland",
		"national-car-parks":          "NCP",
		"j-d-wetherspoon":             "Wetherspoon",
		"jd-wetherspoon":              "Wetherspoon",
		"dominos-pizza-uk-ireland":    "Domino's",
		"dominos-pizza-group":         "Domino's",
		"dominos-pizza":               "Domino's",
		"costa":                       "Costa Coffee",
		"starbucks-coffee-company":    "Starbucks",
		"starbucks-coffee":            "Starbucks",
		"mcdonalds-restaurants":       "McDonald's",
		"mcdonalds":                   "McDonald's",
		"nandos-chickenland":          "Nando's",
		"nandos":                      "Nando's",
		"pret-a-manger-europe":        "Pret A Manger",
		"pret-a-manger":               "Pret A Manger",
		"superdrug-stores":            "Superdrug",
		"primark-stores":              "Primark",
		"pure-gym":                    "PureGym",
		"cineworld-cinemas":           "Cineworld",
		"odeon-cinemas":               "Odeon",
		"jd-sports-fashion":           "JD Sports",
		"jd-sports":                   "JD Sports",
		"sports-direct-international": "Sports Direct",
		"sports-direct":               "Sports Direct",
		"the-gym-group":               "The Gym",
		"the-gym":                     "The Gym",
		"vue-entertainment":           "Vue",
		"virgin-active":               "Virgin Active",
		"virgin-money":                "Virgin Money",
		"nationwide-building-society": "Nationwide",
		"bt-group":                    "BT",
		"bp-oil":                      "BP",
		"esso-petroleum-company":      "Esso",
		"esso-petroleum":              "Esso",
		"shell-uk":                    "Shell",
	}
}
