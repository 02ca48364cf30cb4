package snapshot

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// UnknownStateCode is returned for states absent from the GST table.
const UnknownStateCode = "00"

// gstStateCodes maps canonical state names to the 2-digit GST state code.
var gstStateCodes = map[string]string{
	"Jammu And Kashmir":           "01",
	"Himachal Pradesh":            "02",
	"Punjab":                      "03",
	"Chandigarh":                  "04",
	"Uttarakhand":                 "05",
	"Haryana":                     "06",
	"Delhi":                       "07",
	"Rajasthan":                   "08",
	"Uttar Pradesh":               "09",
	"Bihar":                       "10",
	"Sikkim":                      "11",
	"Arunachal Pradesh":           "12",
	"Nagaland":                    "13",
	"Manipur":                     "14",
	"Mizoram":                     "15",
	"Tripura":                     "16",
	"Meghalaya":                   "17",
	"Assam":                       "18",
	"West Bengal":                 "19",
	"Jharkhand":                   "20",
	"Odisha":                      "21",
	"Chhattisgarh":                "22",
	"Madhya Pradesh":              "23",
	"Gujarat":                     "24",
	"Dadra And Nagar Haveli":      "26",
	"Maharashtra":                 "27",
	"Karnataka":                   "29",
	"Goa":                         "30",
	"Lakshadweep":                 "31",
	"Kerala":                      "32",
	"Tamil Nadu":                  "33",
	"Puducherry":                  "34",
	"Andaman And Nicobar Islands": "35",
	"Telangana":                   "36",
	"Andhra Pradesh":              "37",
	"Ladakh":                      "38",
}

var stateTitle = cases.Title(language.English)

// CanonicalState folds a free-form state name into the table's spelling:
// trimmed, title-cased, "&" spelled out.
func CanonicalState(state string) string {
	s := strings.TrimSpace(state)
	s = strings.ReplaceAll(s, "&", " And ")
	s = strings.Join(strings.Fields(s), " ")
	return stateTitle.String(strings.ToLower(s))
}

// GSTStateCode returns the 2-digit code for a state name in any casing.
// Unknown states map to UnknownStateCode rather than failing the sync.
func GSTStateCode(state string) string {
	if code, ok := gstStateCodes[CanonicalState(state)]; ok {
		return code
	}
	return UnknownStateCode
}
