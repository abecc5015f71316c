// Package i18n picks a language from an Accept-Language header and renders
// catalog messages in it.
package i18n

import (
	"errors"
	"fmt"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// ErrNoLanguages is returned when a Translator is built without any catalog.
var ErrNoLanguages = errors.New("i18n: at least one language is required")

// Messages maps a message key to its format string for one language.
type Messages map[string]string

// Translator renders keyed messages in the best supported language.
type Translator struct {
	supported []language.Tag
	matcher   language.Matcher
	printers  map[language.Tag]*message.Printer
}

// New builds a Translator. fallback must be present in catalogs; it is used
// when nothing in the request matches.
func New(fallback language.Tag, catalogs map[language.Tag]Messages) (*Translator, error) {
	if len(catalogs) == 0 {
		return nil, ErrNoLanguages
	}
	if _, ok := catalogs[fallback]; !ok {
		return nil, fmt.Errorf("i18n: fallback %s has no catalog", fallback)
	}

	b := catalog.NewBuilder(catalog.Fallback(fallback))
	supported := []language.Tag{fallback}
	for tag, msgs := range catalogs {
		for key, msg := range msgs {
			if err := b.SetString(tag, key, msg); err != nil {
				return nil, fmt.Errorf("i18n: set %s/%s: %w", tag, key, err)
			}
		}
		if tag != fallback {
			supported = append(supported, tag)
		}
	}

	printers := make(map[language.Tag]*message.Printer, len(supported))
	for _, tag := range supported {
		printers[tag] = message.NewPrinter(tag, message.Catalog(b))
	}

	return &Translator{
		supported: supported,
		matcher:   language.NewMatcher(supported),
		printers:  printers,
	}, nil
}

// Match returns the supported language that best fits an Accept-Language
// header value. Malformed or empty headers get the fallback.
func (t *Translator) Match(acceptLanguage string) language.Tag {
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return t.supported[0]
	}

	_, idx, _ := t.matcher.Match(tags...)
	return t.supported[idx]
}

// Sprintf renders key in tag. Unknown keys render as the key itself.
func (t *Translator) Sprintf(tag language.Tag, key string, args ...any) string {
	p, ok := t.printers[tag]
	if !ok {
		p = t.printers[t.supported[0]]
	}
	return p.Sprintf(key, args...)
}
