// Package i18n resolves the request language and holds the translated
// user-facing messages.
package i18n

import (
	"strings"

	"github.com/gin-gonic/gin"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const (
	// LangParam is the query parameter used to select a language.
	LangParam = "lang"

	contextPrinter = "i18n_printer"
)

var supportedTags = []language.Tag{
	language.Spanish,
	language.English,
}

var tagMatcher = language.NewMatcher(supportedTags)

// Supported returns the list of supported language tags.
func Supported() []language.Tag {
	tags := make([]language.Tag, len(supportedTags))
	copy(tags, supportedTags)
	return tags
}

// Match picks the best supported tag for the given preferences, falling back
// to def.
func Match(def language.Tag, prefs ...string) language.Tag {
	for _, p := range prefs {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		tags, _, err := language.ParseAcceptLanguage(p)
		if err != nil || len(tags) == 0 {
			continue
		}
		_, idx, conf := tagMatcher.Match(tags...)
		if conf != language.No {
			return supportedTags[idx]
		}
	}
	return def
}

// Printer returns a message printer for the supplied tag.
func Printer(tag language.Tag) *message.Printer {
	return message.NewPrinter(tag)
}

// Middleware resolves the language from ?lang= or Accept-Language and stores
// a printer on the gin context.
func Middleware(defaultLang string) gin.HandlerFunc {
	def := Match(language.Spanish, defaultLang)
	return func(c *gin.Context) {
		tag := Match(def, c.Query(LangParam), c.GetHeader("Accept-Language"))
		c.Set(contextPrinter, Printer(tag))
		c.Next()
	}
}

// FromContext returns the request printer, or a Spanish printer when the
// middleware did not run.
func FromContext(c *gin.Context) *message.Printer {
	if c != nil {
		if v, ok := c.Get(contextPrinter); ok {
			if p, ok := v.(*message.Printer); ok {
				return p
			}
		}
	}
	return Printer(language.Spanish)
}
