package snapshot

import "strings"

// UOM is a normalised unit of measure.
type UOM string

const (
	UOMTon    UOM = "TON"
	UOMKg     UOM = "KG"
	UOMGram   UOM = "GRAM"
	UOMLitre  UOM = "LITRE"
	UOMMetre  UOM = "METRE"
	UOMPiece  UOM = "PCS"
	UOMBox    UOM = "BOX"
	UOMBag    UOM = "BAG"
	UOMBundle UOM = "BUNDLE"
	UOMOther  UOM = "OTHER"
)

// uomSynonyms folds the unit spellings seen in master data and trade
// documents into one enum member each.
var uomSynonyms = map[string]UOM{
	"TON": UOMTon, "TONS": UOMTon, "TONNE": UOMTon, "TONNES": UOMTon,
	"MT": UOMTon, "METRIC TON": UOMTon, "METRIC TONS": UOMTon,
	"KG": UOMKg, "KGS": UOMKg, "KILOGRAM": UOMKg, "KILOGRAMS": UOMKg, "KILO": UOMKg,
	"G": UOMGram, "GM": UOMGram, "GMS": UOMGram, "GRAM": UOMGram, "GRAMS": UOMGram,
	"L": UOMLitre, "LTR": UOMLitre, "LTRS": UOMLitre, "LITRE": UOMLitre, "LITRES": UOMLitre, "LITER": UOMLitre, "LITERS": UOMLitre,
	"M": UOMMetre, "MTR": UOMMetre, "MTRS": UOMMetre, "METRE": UOMMetre, "METRES": UOMMetre, "METER": UOMMetre, "METERS": UOMMetre,
	"PC": UOMPiece, "PCS": UOMPiece, "PIECE": UOMPiece, "PIECES": UOMPiece, "NOS": UOMPiece, "NO": UOMPiece, "UNIT": UOMPiece, "UNITS": UOMPiece,
	"BOX": UOMBox, "BOXES": UOMBox, "CTN": UOMBox, "CARTON": UOMBox, "CARTONS": UOMBox,
	"BAG": UOMBag, "BAGS": UOMBag, "SACK": UOMBag, "SACKS": UOMBag,
	"BUNDLE": UOMBundle, "BUNDLES": UOMBundle, "BDL": UOMBundle,
}

// NormalizeUOM maps any unit spelling onto the UOM enum. Unrecognised or
// empty units fall back to UOMOther so line items always carry a valid unit.
func NormalizeUOM(unit string) UOM {
	key := strings.ToUpper(strings.Join(strings.Fields(unit), " "))
	if u, ok := uomSynonyms[key]; ok {
		return u
	}
	return UOMOther
}
