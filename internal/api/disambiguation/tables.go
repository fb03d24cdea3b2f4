package disambiguation

// ambiguousPlace is a place name that exists in more than one country. The
// primary country is the one a traveller most likely means.
type ambiguousPlace struct {
	Name         string
	Primary      string
	Alternatives []string
}

// countryAliases maps folded country spellings to their standard name.
var countryAliases = map[string]string{
	"usa":                      "United States",
	"us":                       "United States",
	"u.s.":                     "United States",
	"u.s.a.":                   "United States",
	"america":                  "United States",
	"united states":            "United States",
	"united states of america": "United States",
	"ארה\"ב":                   "United States",
	"ארהב":                     "United States",
	"ארצות הברית":              "United States",
	"uk":                       "United Kingdom",
	"u.k.":                     "United Kingdom",
	"great britain":            "United Kingdom",
	"britain":                  "United Kingdom",
	"england":                  "United Kingdom",
	"scotland":                 "United Kingdom",
	"wales":                    "United Kingdom",
	"united kingdom":           "United Kingdom",
	"בריטניה":                  "United Kingdom",
	"אנגליה":                   "United Kingdom",
	"nippon":                   "Japan",
	"nihon":                    "Japan",
	"japan":                    "Japan",
	"יפן":                      "Japan",
	"deutschland":              "Germany",
	"germany":                  "Germany",
	"גרמניה":                   "Germany",
	"espana":                   "Spain",
	"spain":                    "Spain",
	"ספרד":                     "Spain",
	"italia":                   "Italy",
	"italy":                    "Italy",
	"איטליה":                   "Italy",
	"france":                   "France",
	"צרפת":                     "France",
	"holland":                  "Netherlands",
	"the netherlands":          "Netherlands",
	"netherlands":              "Netherlands",
	"הולנד":                    "Netherlands",
	"uae":                      "United Arab Emirates",
	"emirates":                 "United Arab Emirates",
	"united arab emirates":     "United Arab Emirates",
	"portugal":                 "Portugal",
	"פורטוגל":                  "Portugal",
	"israel":                   "Israel",
	"ישראל":                    "Israel",
	"greece":                   "Greece",
	"hellas":                   "Greece",
	"יוון":                     "Greece",
	"australia":                "Australia",
	"canada":                   "Canada",
	"egypt":                    "Egypt",
	"mexico":                   "Mexico",
	"argentina":                "Argentina",
	"chile":                    "Chile",
	"venezuela":                "Venezuela",
	"costa rica":               "Costa Rica",
	"nicaragua":                "Nicaragua",
	"dominican republic":       "Dominican Republic",
	"cuba":                     "Cuba",
	"jamaica":                  "Jamaica",
	"new zealand":              "New Zealand",
	"malaysia":                 "Malaysia",
	"guyana":                   "Guyana",
	"colombia":                 "Colombia",
	"peru":                     "Peru",
	"thailand":                 "Thailand",
	"czechia":                  "Czech Republic",
	"czech republic":           "Czech Republic",
	"austria":                  "Austria",
	"hungary":                  "Hungary",
	"turkey":                   "Turkey",
	"turkiye":                  "Turkey",
}

var countryCodes = map[string]string{
	"United States":        "US",
	"United Kingdom":       "GB",
	"Japan":                "JP",
	"Germany":              "DE",
	"Spain":                "ES",
	"Italy":                "IT",
	"France":               "FR",
	"Netherlands":          "NL",
	"United Arab Emirates": "AE",
	"Portugal":             "PT",
	"Israel":               "IL",
	"Greece":               "GR",
	"Australia":            "AU",
	"Canada":               "CA",
	"Egypt":                "EG",
	"Mexico":               "MX",
	"Argentina":            "AR",
	"Chile":                "CL",
	"Venezuela":            "VE",
	"Costa Rica":           "CR",
	"Nicaragua":            "NI",
	"Dominican Republic":   "DO",
	"Cuba":                 "CU",
	"Jamaica":              "JM",
	"New Zealand":          "NZ",
	"Malaysia":             "MY",
	"Guyana":               "GY",
	"Colombia":             "CO",
	"Peru":                 "PE",
	"Thailand":             "TH",
	"Czech Republic":       "CZ",
	"Austria":              "AT",
	"Hungary":              "HU",
	"Turkey":               "TR",
}

// placeAliases maps foreign-script or local spellings to the table key.
var placeAliases = map[string]string{
	"roma":    "rome",
	"רומא":    "rome",
	"פריז":    "paris",
	"לונדון":  "london",
	"ברלין":   "berlin",
	"אתונה":   "athens",
	"סידני":   "sydney",
	"ולנסיה":  "valencia",
	"firenze": "florence",
	"פירנצה":  "florence",
	"napoli":  "naples",
	"venezia": "venice",
	"ונציה":   "venice",
	"lisboa":  "lisbon",
	"ליסבון":  "lisbon",
}

var ambiguousPlaces = []ambiguousPlace{
	{Name: "Rome", Primary: "Italy"},
	{Name: "Paris", Primary: "France"},
	{Name: "Lisbon", Primary: "Portugal"},
	{Name: "Tokyo", Primary: "Japan"},
	{Name: "London", Primary: "United Kingdom", Alternatives: []string{"Canada"}},
	{Name: "Berlin", Primary: "Germany", Alternatives: []string{"United States"}},
	{Name: "Athens", Primary: "Greece", Alternatives: []string{"United States"}},
	{Name: "Sydney", Primary: "Australia", Alternatives: []string{"Canada"}},
	{Name: "Perth", Primary: "Australia", Alternatives: []string{"United Kingdom"}},
	{Name: "Birmingham", Primary: "United Kingdom", Alternatives: []string{"United States"}},
	{Name: "Manchester", Primary: "United Kingdom", Alternatives: []string{"United States"}},
	{Name: "Cambridge", Primary: "United Kingdom", Alternatives: []string{"United States"}},
	{Name: "Florence", Primary: "Italy", Alternatives: []string{"United States"}},
	{Name: "Naples", Primary: "Italy", Alternatives: []string{"United States"}},
	{Name: "Venice", Primary: "Italy", Alternatives: []string{"United States"}},
	{Name: "Alexandria", Primary: "Egypt", Alternatives: []string{"United States"}},
	{Name: "Valencia", Primary: "Spain", Alternatives: []string{"Venezuela"}},
	{Name: "Toledo", Primary: "Spain", Alternatives: []string{"United States"}},
	{Name: "Granada", Primary: "Spain", Alternatives: []string{"Nicaragua"}},
	{Name: "Cordoba", Primary: "Spain", Alternatives: []string{"Argentina", "Mexico"}},
	{Name: "Santiago", Primary: "Chile", Alternatives: []string{"Spain", "Dominican Republic", "Cuba"}},
	{Name: "San Jose", Primary: "Costa Rica", Alternatives: []string{"United States"}},
	{Name: "Kingston", Primary: "Jamaica", Alternatives: []string{"Canada"}},
	{Name: "Hamilton", Primary: "Canada", Alternatives: []string{"New Zealand"}},
	{Name: "Georgetown", Primary: "Guyana", Alternatives: []string{"Malaysia", "United States"}},
	{Name: "Cartagena", Primary: "Colombia", Alternatives: []string{"Spain"}},
	{Name: "Trujillo", Primary: "Peru", Alternatives: []string{"Spain"}},
	{Name: "Merida", Primary: "Mexico", Alternatives: []string{"Spain", "Venezuela"}},
}
