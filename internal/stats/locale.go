package stats

import (
	"time"

	"golang.org/x/text/language"
)

// Regions that do not start the week on Monday. The long tail of
// regions is Monday-based, so only the exceptions are listed.
var (
	sundayRegions = map[string]bool{
		"US": true, "CA": true, "MX": true, "BR": true, "CO": true,
		"JP": true, "KR": true, "TW": true, "HK": true, "PH": true,
		"IL": true, "ZA": true,
	}

	saturdayRegions = map[string]bool{
		"AE": true, "SA": true, "EG": true, "QA": true, "BH": true,
		"KW": true, "OM": true, "JO": true, "SY": true,
	}
)

// ForLocale returns Options with the first day of the week that is
// customary in the region of the language tag. Tags without a region,
// like "zh", infer their most likely region.
func ForLocale(tag language.Tag) Options {
	region, _ := tag.Region()

	switch {
	case sundayRegions[region.String()]:
		return Options{WeekStart: time.Sunday}
	case saturdayRegions[region.String()]:
		return Options{WeekStart: time.Saturday}
	default:
		return Options{WeekStart: time.Monday}
	}
}

// ParseLocale parses a BCP 47 tag like "en-US" and returns the options
// for it. Unparseable tags fall back to the Monday-based default.
func ParseLocale(locale string) Options {
	tag, err := language.Parse(locale)
	if err != nil {
		return DefaultOptions()
	}

	return ForLocale(tag)
}
