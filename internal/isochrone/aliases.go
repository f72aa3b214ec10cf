package isochrone

import "strings"

// Canonical column keys. Every isochrone export spells these its own
// way; aliases fold them together while unknown columns pass through
// under their original names.
const (
	ColLogTe  = "logTe"
	ColLogG   = "logg"
	ColLogL   = "logL"
	ColMini   = "Mini"
	ColMass   = "Mass"
	ColZ      = "Z"
	ColLogAge = "logAge"
	ColMH     = "MH"
	ColAge    = "Age" // linear years, converted to logAge on load
	ColLabel  = "label"
)

// aliases maps lowercased spellings to canonical keys. PARSEC, MIST
// and Dartmouth column names are covered.
var aliases = map[string]string{
	"logte":     ColLogTe,
	"log_te":    ColLogTe,
	"logteff":   ColLogTe,
	"log_teff":  ColLogTe,
	"log(teff)": ColLogTe,
	"log_t":     ColLogTe,

	"logg":   ColLogG,
	"log_g":  ColLogG,
	"log(g)": ColLogG,
	"grav":   ColLogG,

	"logl":      ColLogL,
	"log_l":     ColLogL,
	"log(l/lo)": ColLogL,
	"log(l)":    ColLogL,
	"logl_lsun": ColLogL,

	"mini":         ColMini,
	"m_ini":        ColMini,
	"minit":        ColMini,
	"initial_mass": ColMini,

	"mass":         ColMass,
	"m_act":        ColMass,
	"mact":         ColMass,
	"star_mass":    ColMass,
	"current_mass": ColMass,

	"z":           ColZ,
	"zini":        ColZ,
	"z_ini":       ColZ,
	"zinit":       ColZ,
	"metallicity": ColZ,

	"logage":                 ColLogAge,
	"log_age":                ColLogAge,
	"log(age/yr)":            ColLogAge,
	"log10_isochrone_age_yr": ColLogAge,
	"isochrone_age_yr":       ColAge,
	"age":                    ColAge,
	"age_yr":                 ColAge,

	"mh":     ColMH,
	"[m/h]":  ColMH,
	"m_h":    ColMH,
	"feh":    ColMH,
	"[fe/h]": ColMH,

	"label": ColLabel,
	"stage": ColLabel,
	"phase": ColLabel,
}

// canonicalName resolves a header spelling, returning the original
// name when no alias matches.
func canonicalName(name string) string {
	if canon, ok := aliases[strings.ToLower(name)]; ok {
		return canon
	}
	return name
}

// stageNames maps PARSEC evolutionary labels to short names.
var stageNames = map[int]string{
	0: "pms",
	1: "ms",
	2: "sgb",
	3: "rgb",
	4: "cheb",
	5: "cheb",
	6: "cheb",
	7: "eagb",
	8: "tpagb",
	9: "postagb",
}

func stageName(label float64) string {
	if name, ok := stageNames[int(label)]; ok {
		return name
	}
	return ""
}
