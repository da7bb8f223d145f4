// internal/middleware/i18n.go
package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/javajoker/license-console/internal/i18n"
)

// I18nMiddleware picks the first bundled language from Accept-Language.
func I18nMiddleware(defaultLang string) gin.HandlerFunc {
	supported := make(map[string]bool)
	for _, lang := range i18n.GetSupportedLanguages() {
		supported[lang] = true
	}

	return func(c *gin.Context) {
		lang := defaultLang
		for _, candidate := range strings.Split(c.GetHeader("Accept-Language"), ",") {
			code := normalizeLang(strings.TrimSpace(strings.Split(candidate, ";")[0]))
			if supported[code] {
				lang = code
				break
			}
		}

		c.Set("lang", lang)
		c.Next()
	}
}

func normalizeLang(code string) string {
	switch code {
	case "zh-TW", "zh-Hant", "zh_TW":
		return "zh_TW"
	case "en-US", "en-GB":
		return "en"
	default:
		return code
	}
}
