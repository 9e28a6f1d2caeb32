// Package translit converts Bulgarian Cyrillic text into filesystem-safe
// Latin strings for use in generated file names.
package translit

import "strings"

// latinByCyrillic is the fixed character table used for vendor names.
// It follows the official streamlined transliteration system, with upper
// and lower case mapped pairwise. Runes outside the table pass through.
var latinByCyrillic = map[rune]string{
	'а': "a", 'б': "b", 'в': "v", 'г': "g", 'д': "d", 'е': "e", 'ж': "zh",
	'з': "z", 'и': "i", 'й': "y", 'к': "k", 'л': "l", 'м': "m", 'н': "n",
	'о': "o", 'п': "p", 'р': "r", 'с': "s", 'т': "t", 'у': "u", 'ф': "f",
	'х': "h", 'ц': "ts", 'ч': "ch", 'ш': "sh", 'щ': "sht", 'ъ': "a", 'ь': "y",
	'ю': "yu", 'я': "ya",
	'А': "A", 'Б': "B", 'В': "V", 'Г': "G", 'Д': "D", 'Е': "E", 'Ж': "Zh",
	'З': "Z", 'И': "I", 'Й': "Y", 'К': "K", 'Л': "L", 'М': "M", 'Н': "N",
	'О': "O", 'П': "P", 'Р': "R", 'С': "S", 'Т': "T", 'У': "U", 'Ф': "F",
	'Х': "H", 'Ц': "Ts", 'Ч': "Ch", 'Ш': "Sh", 'Щ': "Sht", 'Ъ': "A", 'Ь': "Y",
	'Ю': "Yu", 'Я': "Ya",
}

// unknownVendor is returned for empty input so generated file names always
// carry a vendor segment.
const unknownVendor = "Unknown"

// Transliterate maps Cyrillic runes through the fixed table, strips
// characters that are illegal in file names on common operating systems
// and trims surrounding whitespace. Empty input yields "Unknown".
func Transliterate(text string) string {
	if text == "" {
		return unknownVendor
	}

	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		if latin, ok := latinByCyrillic[r]; ok {
			b.WriteString(latin)
			continue
		}
		switch r {
		case '\\', '/', '*', '?', ':', '"', '<', '>', '|':
			// illegal in file names, dropped
		default:
			b.WriteRune(r)
		}
	}

	return strings.TrimSpace(b.String())
}
