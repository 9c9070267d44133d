package localize

import (
	"fmt"
	"io"
	"strconv"

	"github.com/dgallion1/numref/internal/doctree"
	"github.com/dgallion1/numref/internal/numbering"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
	"gopkg.in/yaml.v3"
)

// Built-in caption prefixes. Each message takes the count as a single %s
// argument so that digits are never regrouped by locale rules.
var defaults = map[string]map[string]string{
	"en": {
		numbering.FigurePrefixKey: "Figure %s:",
		numbering.TablePrefixKey:  "Table %s:",
	},
	"fr": {
		numbering.FigurePrefixKey: "Figure %s :",
		numbering.TablePrefixKey:  "Tableau %s :",
	},
	"de": {
		numbering.FigurePrefixKey: "Abbildung %s:",
		numbering.TablePrefixKey:  "Tabelle %s:",
	},
	"es": {
		numbering.FigurePrefixKey: "Figura %s:",
		numbering.TablePrefixKey:  "Tabla %s:",
	},
}

// Catalog is the localization lookup for caption prefixes. It implements
// numbering.Translator for one locale.
type Catalog struct {
	builder *catalog.Builder
	want    string
	tag     language.Tag
	printer *message.Printer
}

// New creates a catalog with the built-in translations, printing in locale.
func New(locale string) (*Catalog, error) {
	c := &Catalog{builder: catalog.NewBuilder(catalog.Fallback(language.English))}
	for loc, msgs := range defaults {
		if err := c.add(loc, msgs); err != nil {
			return nil, err
		}
	}
	if err := c.setLocale(locale); err != nil {
		return nil, err
	}
	return c, nil
}

// LoadYAML merges translations from r. The document maps locales to
// translation keys to format strings:
//
//	it:
//	  transformation.numberedReferences.figurePrefix: "Figura %s:"
func (c *Catalog) LoadYAML(r io.Reader) error {
	var doc map[string]map[string]string
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if err == io.EOF {
			return nil
		}
		return fmt.Errorf("decode catalog: %w", err)
	}
	for loc, msgs := range doc {
		if err := c.add(loc, msgs); err != nil {
			return err
		}
	}
	// Newly added languages may match the current locale better.
	return c.setLocale(c.want)
}

// WithLocale returns a catalog sharing the same translations but printing
// in another locale.
func (c *Catalog) WithLocale(locale string) (*Catalog, error) {
	cp := &Catalog{builder: c.builder}
	if err := cp.setLocale(locale); err != nil {
		return nil, err
	}
	return cp, nil
}

// Locale returns the matched locale the catalog prints in, which may differ
// from the requested one.
func (c *Catalog) Locale() language.Tag { return c.tag }

// Translate renders the message for key with count and tokenizes it.
func (c *Catalog) Translate(t *doctree.Tree, key string, count int) []doctree.NodeID {
	return doctree.Tokenize(t, c.printer.Sprintf(key, strconv.Itoa(count)))
}

func (c *Catalog) add(locale string, msgs map[string]string) error {
	tag, err := language.Parse(locale)
	if err != nil {
		return fmt.Errorf("parse locale %q: %w", locale, err)
	}
	for key, msg := range msgs {
		if err := c.builder.SetString(tag, key, msg); err != nil {
			return fmt.Errorf("set %s/%s: %w", locale, key, err)
		}
	}
	return nil
}

func (c *Catalog) setLocale(locale string) error {
	want, err := language.Parse(locale)
	if err != nil {
		return fmt.Errorf("parse locale %q: %w", locale, err)
	}
	langs := c.builder.Languages()
	tag := language.English
	if len(langs) > 0 {
		_, idx, conf := language.NewMatcher(langs).Match(want)
		if conf != language.No {
			tag = langs[idx]
		}
	}
	c.want = locale
	c.tag = tag
	c.printer = message.NewPrinter(tag, message.Catalog(c.builder))
	return nil
}
