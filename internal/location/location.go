// Package location supplies the language hint for a resolved country.
// Geolocation itself is an external collaborator; the pipelines only need
// the {city, country, code, language} bundle it hands over.
package location

import "sosconnect-go/internal/types"

// A simplified map of country codes to official languages. A fuller build
// would lean on a locale library or service.
var countryLanguages = map[string]string{
	"US": "English", "DE": "German", "FR": "French", "ES": "Spanish", "IT": "Italian",
	"JP": "Japanese", "CN": "Mandarin Chinese", "RU": "Russian", "IN": "Hindi", "BR": "Portuguese",
	"GB": "English", "CA": "English", "AU": "English", "MX": "Spanish", "AR": "Spanish",
	"ZA": "English", "NG": "English", "EG": "Arabic", "SA": "Arabic", "KR": "Korean",
	"TR": "Turkish", "ID": "Indonesian", "PK": "Urdu", "BD": "Bengali", "VN": "Vietnamese",
}

// LanguageForCountry returns the official language for an ISO country code,
// defaulting to English.
func LanguageForCountry(code string) string {
	if lang, ok := countryLanguages[code]; ok {
		return lang
	}
	return "English"
}

// Resolve fills in the local language when the caller did not supply one.
func Resolve(city, country, code, language string) types.LocationInfo {
	if language == "" {
		language = LanguageForCountry(code)
	}
	return types.LocationInfo{
		City:          city,
		Country:       country,
		CountryCode:   code,
		LocalLanguage: language,
	}
}
