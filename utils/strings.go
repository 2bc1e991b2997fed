// utils/strings.go
package utils

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var titleCaser = cases.Title(language.English)

// HumanizeSlug turns "finale_squad_leader" into "Finale Squad Leader".
func HumanizeSlug(s string) string {
	return titleCaser.String(strings.ReplaceAll(s, "_", " "))
}
