// Package zones resolves geographic coordinates to Barcelona administrative
// zones (district and neighborhood codes) used as classifier features.
package zones

import "strings"

// Source identifies which resolution strategy produced a ZoneAssignment.
type Source string

const (
	// SourcePolygon means the coordinate matched an authoritative boundary polygon.
	SourcePolygon Source = "POLYGON"
	// SourceGeocoder means a reverse-geocoding lookup supplied the zone.
	SourceGeocoder Source = "GEOCODER"
	// SourceHeuristic means the coarse latitude/longitude band fallback was used.
	SourceHeuristic Source = "HEURISTIC"
	// SourceCache means the assignment was served from the resolver cache.
	SourceCache Source = "CACHE"
)

// ZoneAssignment is the resolved zone for a single coordinate.
type ZoneAssignment struct {
	DistrictCode     int    `json:"districtCode"`
	NeighborhoodCode int    `json:"neighborhoodCode"`
	Source           Source `json:"source"`
}

// District codes follow the numeric encoding the risk model was trained
// against. The encoding has no code 1; this matches the training data and
// must not be "fixed".
const (
	DistrictCiutatVella       = 0
	DistrictEixample          = 2
	DistrictGracia            = 3
	DistrictHortaGuinardo     = 4
	DistrictLesCorts          = 5
	DistrictNouBarris         = 6
	DistrictSantAndreu        = 7
	DistrictSantMarti         = 8
	DistrictSantsMontjuic     = 9
	DistrictSarriaSantGervasi = 10
)

// districtCodes maps normalized district names to their model codes.
var districtCodes = map[string]int{
	"ciutat vella":        DistrictCiutatVella,
	"eixample":            DistrictEixample,
	"gràcia":              DistrictGracia,
	"horta-guinardó":      DistrictHortaGuinardo,
	"les corts":           DistrictLesCorts,
	"nou barris":          DistrictNouBarris,
	"sant andreu":         DistrictSantAndreu,
	"sant martí":          DistrictSantMarti,
	"sants-montjuïc":      DistrictSantsMontjuic,
	"sarrià-sant gervasi": DistrictSarriaSantGervasi,
}

// neighborhoodCodes maps normalized neighborhood names to the 1..72 codes of
// the Barcelona open-data barri encoding used during model training.
var neighborhoodCodes = map[string]int{
	// Ciutat Vella
	"el raval":                              1,
	"el barri gòtic":                        2,
	"la barceloneta":                        3,
	"sant pere, santa caterina i la ribera": 4,

	// Eixample
	"la dreta de l'eixample":          5,
	"l'antiga esquerra de l'eixample": 6,
	"la nova esquerra de l'eixample":  7,
	"sant antoni":                     8,
	"la sagrada família":              9,
	"el fort pienc":                   10,

	// Sants-Montjuïc
	"el poble sec":               11,
	"la marina del prat vermell": 12,
	"la marina de port":          13,
	"la font de la guatlla":      14,
	"hostafrancs":                15,
	"la bordeta":                 16,
	"sants":                      17,

	// Les Corts
	"les corts":                  18,
	"la maternitat i sant ramon": 19,
	"pedralbes":                  20,

	// Sarrià-Sant Gervasi
	"vallvidrera, el tibidabo i les planes": 21,
	"sarrià":                                22,
	"les tres torres":                       23,
	"sant gervasi-la bonanova":              24,
	"sant gervasi-galvany":                  25,
	"el putxet i el farró":                  26,

	// Gràcia
	"vallcarca i els penitents":          27,
	"el coll":                            28,
	"la salut":                           29,
	"vila de gràcia":                     30,
	"el camp d'en grassot i gràcia nova": 31,

	// Horta-Guinardó
	"el baix guinardó":         32,
	"can baró":                 33,
	"el guinardó":              34,
	"la font d'en fargues":     35,
	"el carmel":                36,
	"la teixonera":             37,
	"sant genís dels agudells": 38,
	"montbau":                  39,
	"la vall d'hebron":         40,
	"la clota":                 41,
	"horta":                    42,

	// Nou Barris
	"vilapicina i la torre llobeta": 43,
	"porta":                         44,
	"el turó de la peira":           45,
	"can peguera":                   46,
	"la guineueta":                  47,
	"canyelles":                     48,
	"les roquetes":                  49,
	"verdun":                        50,
	"la prosperitat":                51,
	"la trinitat nova":              52,
	"torre baró":                    53,
	"ciutat meridiana":              54,
	"vallbona":                      55,

	// Sant Andreu
	"la trinitat vella":        56,
	"baró de viver":            57,
	"el bon pastor":            58,
	"sant andreu":              59,
	"la sagrera":               60,
	"el congrés i els indians": 61,
	"navas":                    62,

	// Sant Martí
	"el camp de l'arpa del clot":                   63,
	"el clot":                                      64,
	"el parc i la llacuna del poblenou":            65,
	"la vila olímpica del poblenou":                66,
	"el poblenou":                                  67,
	"diagonal mar i el front marítim del poblenou": 68,
	"el besòs i el maresme":                        69,
	"provençals del poblenou":                      70,
	"sant martí de provençals":                     71,
	"la verneda i la pau":                          72,
}

// nameNormalizer folds the apostrophe and dash variants that reverse-geocoding
// providers return for Catalan place names.
var nameNormalizer = strings.NewReplacer(
	"’", "'", // right single quote
	"`", "'",
	"´", "'", // acute accent used as apostrophe
	" - ", "-",
	"–", "-", // en dash
)

// NormalizeName canonicalizes a place name for code table lookup.
func NormalizeName(name string) string {
	return strings.TrimSpace(nameNormalizer.Replace(strings.ToLower(name)))
}

// DistrictCode looks up the model code for a district name.
func DistrictCode(name string) (int, bool) {
	code, ok := districtCodes[NormalizeName(name)]
	return code, ok
}

// NeighborhoodCode looks up the model code for a neighborhood name.
func NeighborhoodCode(name string) (int, bool) {
	code, ok := neighborhoodCodes[NormalizeName(name)]
	return code, ok
}

var (
	districtNames     = invert(districtCodes)
	neighborhoodNames = invert(neighborhoodCodes)
)

func invert(codes map[string]int) map[int]string {
	names := make(map[int]string, len(codes))
	for name, code := range codes {
		names[code] = name
	}
	return names
}

// DistrictName returns the canonical (lowercased) name for a district code.
func DistrictName(code int) (string, bool) {
	name, ok := districtNames[code]
	return name, ok
}

// NeighborhoodName returns the canonical (lowercased) name for a neighborhood code.
func NeighborhoodName(code int) (string, bool) {
	name, ok := neighborhoodNames[code]
	return name, ok
}
