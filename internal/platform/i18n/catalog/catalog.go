// Package catalog loads the embedded message catalogs and registers them
// with golang.org/x/text/message.
//
// Catalog files live at locales/<locale>/<namespace>.yaml and use a small
// quoted subset of YAML:
//
//	locale: "en-US"
//	namespace: "userdesk"
//	messages:
//	  "users.title": "User Management"
package catalog

import (
	"bufio"
	"bytes"
	"embed"
	"fmt"
	"io/fs"
	"maps"
	"path"
	"slices"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// BaseLocale is the locale every other locale is checked against.
const BaseLocale = "en-US"

//go:embed locales/*/*.yaml
var embeddedCatalogFS embed.FS

var defaultBundle = mustLoadAndRegisterEmbedded()

// Default returns the process-wide embedded bundle.
func Default() *Bundle {
	return defaultBundle
}

// Bundle holds the messages of every loaded locale.
type Bundle struct {
	locales map[string]map[string]string
}

type catalogFile struct {
	locale    string
	namespace string
	messages  map[string]string
}

// LoadEmbedded loads the catalogs shipped with this package.
func LoadEmbedded() (*Bundle, error) {
	return LoadFromFS(embeddedCatalogFS)
}

// LoadFromFS loads every locales/*/*.yaml file in catalogFS.
func LoadFromFS(catalogFS fs.FS) (*Bundle, error) {
	paths, err := fs.Glob(catalogFS, "locales/*/*.yaml")
	if err != nil {
		return nil, fmt.Errorf("glob locale catalogs: %w", err)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no catalog files found")
	}
	slices.Sort(paths)

	bundle := &Bundle{locales: map[string]map[string]string{}}
	for _, filePath := range paths {
		data, err := fs.ReadFile(catalogFS, filePath)
		if err != nil {
			return nil, fmt.Errorf("read catalog %s: %w", filePath, err)
		}
		file, err := parseCatalogFile(data)
		if err != nil {
			return nil, fmt.Errorf("parse catalog %s: %w", filePath, err)
		}
		if err := bundle.add(filePath, file); err != nil {
			return nil, err
		}
	}
	if !bundle.HasLocale(BaseLocale) {
		return nil, fmt.Errorf("base locale %s is not defined in catalogs", BaseLocale)
	}
	return bundle, nil
}

func (b *Bundle) add(filePath string, file catalogFile) error {
	dirLocale := path.Base(path.Dir(filePath))
	fileNamespace := strings.TrimSuffix(path.Base(filePath), path.Ext(filePath))
	if file.locale != dirLocale {
		return fmt.Errorf("catalog %s: locale %q must match path locale %q", filePath, file.locale, dirLocale)
	}
	if file.namespace != fileNamespace {
		return fmt.Errorf("catalog %s: namespace %q must match filename %q", filePath, file.namespace, fileNamespace)
	}
	if _, err := language.Parse(file.locale); err != nil {
		return fmt.Errorf("catalog %s: parse locale: %w", filePath, err)
	}

	messages, ok := b.locales[file.locale]
	if !ok {
		messages = map[string]string{}
		b.locales[file.locale] = messages
	}
	for key, value := range file.messages {
		if _, exists := messages[key]; exists {
			return fmt.Errorf("catalog %s: duplicate key %q in locale %q", filePath, key, file.locale)
		}
		messages[key] = value
	}
	return nil
}

// Register installs every message into the x/text default catalog, under the
// exact locale tag and its base language.
func (b *Bundle) Register() error {
	if b == nil {
		return nil
	}
	for _, locale := range b.Locales() {
		tag, err := language.Parse(locale)
		if err != nil {
			return fmt.Errorf("parse locale tag %q: %w", locale, err)
		}
		tags := []language.Tag{tag}
		if base, confidence := tag.Base(); confidence != language.No {
			if baseTag, err := language.Parse(base.String()); err == nil && baseTag != tag {
				tags = append(tags, baseTag)
			}
		}
		messages := b.locales[locale]
		for _, key := range slices.Sorted(maps.Keys(messages)) {
			for _, registerTag := range tags {
				if err := message.SetString(registerTag, key, messages[key]); err != nil {
					return fmt.Errorf("register %s %q: %w", locale, key, err)
				}
			}
		}
	}
	return nil
}

// HasLocale reports whether locale was loaded.
func (b *Bundle) HasLocale(locale string) bool {
	if b == nil {
		return false
	}
	_, ok := b.locales[strings.TrimSpace(locale)]
	return ok
}

// Locales returns the loaded locale identifiers, sorted.
func (b *Bundle) Locales() []string {
	if b == nil {
		return nil
	}
	return slices.Sorted(maps.Keys(b.locales))
}

// Message returns one message, falling back to the base locale.
func (b *Bundle) Message(locale, key string) (string, bool) {
	if b == nil {
		return "", false
	}
	key = strings.TrimSpace(key)
	if value, ok := b.locales[strings.TrimSpace(locale)][key]; ok {
		return value, true
	}
	value, ok := b.locales[BaseLocale][key]
	return value, ok
}

// MissingKeys lists the base-locale keys that locale does not translate.
func (b *Bundle) MissingKeys(locale string) []string {
	if b == nil {
		return nil
	}
	messages := b.locales[strings.TrimSpace(locale)]
	var missing []string
	for _, key := range slices.Sorted(maps.Keys(b.locales[BaseLocale])) {
		if _, ok := messages[key]; !ok {
			missing = append(missing, key)
		}
	}
	return missing
}

func mustLoadAndRegisterEmbedded() *Bundle {
	bundle, err := LoadEmbedded()
	if err != nil {
		panic(err)
	}
	if err := bundle.Register(); err != nil {
		panic(err)
	}
	return bundle
}

func parseCatalogFile(data []byte) (catalogFile, error) {
	out := catalogFile{messages: map[string]string{}}
	inMessages := false
	scanner := bufio.NewScanner(bytes.NewReader(data))
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		var err error
		switch {
		case strings.HasPrefix(line, "locale:"):
			out.locale, err = strconv.Unquote(strings.TrimSpace(strings.TrimPrefix(line, "locale:")))
		case strings.HasPrefix(line, "namespace:"):
			out.namespace, err = strconv.Unquote(strings.TrimSpace(strings.TrimPrefix(line, "namespace:")))
		case line == "messages:":
			inMessages = true
		case inMessages:
			var key, value string
			key, value, err = parseMessageEntry(line)
			if err == nil {
				if _, exists := out.messages[key]; exists {
					err = fmt.Errorf("duplicate key %q", key)
				}
				out.messages[key] = value
			}
		default:
			err = fmt.Errorf("unexpected line %q", line)
		}
		if err != nil {
			return catalogFile{}, fmt.Errorf("line %d: %w", lineNo, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return catalogFile{}, err
	}

	switch {
	case out.locale == "":
		return catalogFile{}, fmt.Errorf("missing locale")
	case out.namespace == "":
		return catalogFile{}, fmt.Errorf("missing namespace")
	case len(out.messages) == 0:
		return catalogFile{}, fmt.Errorf("missing messages")
	}
	return out, nil
}

// parseMessageEntry splits a `"key": "value"` line.
func parseMessageEntry(line string) (string, string, error) {
	keyToken, err := strconv.QuotedPrefix(line)
	if err != nil {
		return "", "", fmt.Errorf("expected quoted key: %w", err)
	}
	key, err := strconv.Unquote(keyToken)
	if err != nil {
		return "", "", err
	}
	if strings.TrimSpace(key) == "" {
		return "", "", fmt.Errorf("message key cannot be blank")
	}
	rest := strings.TrimSpace(line[len(keyToken):])
	valueToken, ok := strings.CutPrefix(rest, ":")
	if !ok {
		return "", "", fmt.Errorf("missing ':' separator")
	}
	value, err := strconv.Unquote(strings.TrimSpace(valueToken))
	if err != nil {
		return "", "", fmt.Errorf("unquote value: %w", err)
	}
	return strings.TrimSpace(key), value, nil
}
