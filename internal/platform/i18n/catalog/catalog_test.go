package catalog

import (
	"testing"
	"testing/fstest"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

func TestLoadEmbeddedHasExpectedLocales(t *testing.T) {
	bundle, err := LoadEmbedded()
	if err != nil {
		t.Fatalf("load embedded catalogs: %v", err)
	}
	for _, locale := range []string{BaseLocale, "pt-BR"} {
		if !bundle.HasLocale(locale) {
			t.Fatalf("expected locale %s", locale)
		}
	}
	if got, want := bundle.Locales(), []string{"en-US", "pt-BR"}; len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("Locales() = %v, want %v", got, want)
	}
}

func TestEmbeddedLocalesTranslateEveryKey(t *testing.T) {
	bundle, err := LoadEmbedded()
	if err != nil {
		t.Fatalf("load embedded catalogs: %v", err)
	}
	for _, locale := range bundle.Locales() {
		if missing := bundle.MissingKeys(locale); len(missing) > 0 {
			t.Fatalf("locale %s is missing keys %v", locale, missing)
		}
	}
}

func TestFailureMessagesMatchEnglishCopy(t *testing.T) {
	bundle := Default()
	tests := map[string]string{
		"error.fetch_users": "Failed to fetch users. Please try again.",
		"error.save_user":   "Failed to save user. Please try again.",
		"error.delete_user": "Failed to delete user. Please try again.",
	}
	for key, want := range tests {
		got, ok := bundle.Message(BaseLocale, key)
		if !ok || got != want {
			t.Fatalf("Message(%q) = %q, %v, want %q", key, got, ok, want)
		}
	}
}

func TestMessageFallsBackToBaseLocale(t *testing.T) {
	bundle, err := LoadFromFS(fstest.MapFS{
		"locales/en-US/userdesk.yaml": {Data: []byte(`locale: "en-US"
namespace: "userdesk"
messages:
  "a": "A"
  "b": "B"
`)},
		"locales/pt-BR/userdesk.yaml": {Data: []byte(`locale: "pt-BR"
namespace: "userdesk"
messages:
  "a": "Á"
`)},
	})
	if err != nil {
		t.Fatalf("LoadFromFS() error = %v", err)
	}
	if got, _ := bundle.Message("pt-BR", "a"); got != "Á" {
		t.Fatalf("Message(pt-BR, a) = %q, want Á", got)
	}
	if got, _ := bundle.Message("pt-BR", "b"); got != "B" {
		t.Fatalf("Message(pt-BR, b) = %q, want fallback B", got)
	}
	if _, ok := bundle.Message("pt-BR", "missing"); ok {
		t.Fatal("expected missing key to report false")
	}
	if missing := bundle.MissingKeys("pt-BR"); len(missing) != 1 || missing[0] != "b" {
		t.Fatalf("MissingKeys(pt-BR) = %v, want [b]", missing)
	}
}

func TestLoadFromFSRejectsInvalidCatalogs(t *testing.T) {
	tests := map[string]fstest.MapFS{
		"empty": {},
		"no base locale": {
			"locales/pt-BR/userdesk.yaml": {Data: []byte("locale: \"pt-BR\"\nnamespace: \"userdesk\"\nmessages:\n  \"a\": \"b\"\n")},
		},
		"locale mismatch": {
			"locales/en-US/userdesk.yaml": {Data: []byte("locale: \"pt-BR\"\nnamespace: \"userdesk\"\nmessages:\n  \"a\": \"b\"\n")},
		},
		"namespace mismatch": {
			"locales/en-US/userdesk.yaml": {Data: []byte("locale: \"en-US\"\nnamespace: \"other\"\nmessages:\n  \"a\": \"b\"\n")},
		},
		"duplicate key across files": {
			"locales/en-US/a.yaml": {Data: []byte("locale: \"en-US\"\nnamespace: \"a\"\nmessages:\n  \"k\": \"1\"\n")},
			"locales/en-US/b.yaml": {Data: []byte("locale: \"en-US\"\nnamespace: \"b\"\nmessages:\n  \"k\": \"2\"\n")},
		},
		"unquoted value": {
			"locales/en-US/userdesk.yaml": {Data: []byte("locale: \"en-US\"\nnamespace: \"userdesk\"\nmessages:\n  \"a\": b\n")},
		},
		"stray line": {
			"locales/en-US/userdesk.yaml": {Data: []byte("locale: \"en-US\"\nnamespace: \"userdesk\"\nhello\n")},
		},
	}
	for name, catalogFS := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := LoadFromFS(catalogFS); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestParseMessageEntry(t *testing.T) {
	key, value, err := parseMessageEntry(`"users.title": "Say \"hi\": ok"`)
	if err != nil {
		t.Fatalf("parseMessageEntry() error = %v", err)
	}
	if key != "users.title" || value != `Say "hi": ok` {
		t.Fatalf("parseMessageEntry() = %q, %q", key, value)
	}
	for _, line := range []string{`users.title: "x"`, `"": "x"`, `"a" "x"`} {
		if _, _, err := parseMessageEntry(line); err == nil {
			t.Fatalf("parseMessageEntry(%q) expected error", line)
		}
	}
}

func TestDefaultRegistersPrinterMessages(t *testing.T) {
	Default()
	printer := message.NewPrinter(language.MustParse("pt-BR"))
	if got := printer.Sprintf("users.table.delete"); got != "Excluir" {
		t.Fatalf("pt-BR delete = %q, want Excluir", got)
	}
	printer = message.NewPrinter(language.Portuguese)
	if got := printer.Sprintf("users.table.edit"); got != "Editar" {
		t.Fatalf("pt edit = %q, want Editar", got)
	}
}
