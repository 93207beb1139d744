package canonical

import (
	"maps"
	"os"

	"github.com/goccy/go-yaml"

	"github.com/agentstation/rollcall/pkg/errors"
)

// defaultAliases maps spelling variants seen across sources to the form used
// by the delimitation order. Keys and values are already canonical.
var defaultAliases = map[string]string{
	// constituencies
	"ANANTHAPUR":       "ANANTAPUR",
	"BURDWAN DURGAPUR": "BARDHAMAN DURGAPUR",
	"GURGAON":          "GURUGRAM",
	"JOYNAGAR":         "JAYNAGAR",
	"SREERAMPUR":       "SRERAMPUR",
	"ARAMBAG":          "ARAMBAGH",
	"KANNIYAKUMARI":    "KANYAKUMARI",
	"TIRUVALLUR":       "THIRUVALLUR",
	"PALAMU":           "PALAMAU",
	"SECUNDRABAD":      "SECUNDERABAD",
	"MAHABUBNAGAR":     "MAHBUBNAGAR",
	"BOLANGIR":         "BALANGIR",
	"KENDRAPADA":       "KENDRAPARA",
	"NOWGONG":          "NAGAON",
	"MAVELIKKARA":      "MAVELIKARA",
	"SHRAWASTI":        "SHRAVASTI",
	"FEROZPUR":         "FIROZPUR",
	"BHANDARA GONDIA":  "BHANDARA GONDIYA",
	"CHIKKBALLAPUR":    "CHIKKABALLAPUR",

	// states
	"ORISSA":       "ODISHA",
	"PONDICHERRY":  "PUDUCHERRY",
	"UTTARANCHAL":  "UTTARAKHAND",
	"NCT OF DELHI": "DELHI",
}

// DefaultAliases returns a copy of the built-in alias table.
func DefaultAliases() map[string]string {
	return maps.Clone(defaultAliases)
}

// aliasFile is the on-disk layout of an alias table.
//
//	aliases:
//	  ANANTHAPUR: ANANTAPUR
//	  Gurgaon: Gurugram
type aliasFile struct {
	Aliases map[string]string `yaml:"aliases"`
}

// LoadAliases reads an alias table from a YAML file. Entries need not be
// canonical yet; New canonicalizes and validates them.
func LoadAliases(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &errors.NotFoundError{Resource: "alias file", ID: path}
		}
		return nil, errors.WrapIO("read", path, err)
	}
	return ParseAliases(data)
}

// ParseAliases decodes an alias table from YAML.
func ParseAliases(data []byte) (map[string]string, error) {
	var f aliasFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, errors.WrapParse("yaml", "aliases", err)
	}
	if f.Aliases == nil {
		return map[string]string{}, nil
	}
	return f.Aliases, nil
}
