package i18n

import (
	"embed"
	"encoding/json"
	"io/fs"
	"log"
	"strings"
	"sync"

	"golang.org/x/text/language"
	"kyc-dashboard.gomodule/typespec/common"
)

// DefaultLanguage is the fallback language when no match is found
const DefaultLanguage = "en-US"

//go:embed translations
var translationFiles embed.FS

// catalog holds all translations: lang -> namespace -> key -> value
var (
	catalog        = make(map[string]map[string]map[string]string)
	catalogOnce    sync.Once
	matcher        language.Matcher
	supportedCodes []string // Stores language codes in matcher order for index lookup
)

func init() {
	loadCatalog()
}

func loadCatalog() {
	catalogOnce.Do(func() {
		entries, err := fs.ReadDir(translationFiles, "translations")
		if err != nil {
			log.Printf("i18n: failed to read translations dir: %v", err)
			return
		}

		var supportedTags []language.Tag
		var langCodes []string

		for _, langDir := range entries {
			if !langDir.IsDir() {
				continue
			}
			lang := langDir.Name()
			catalog[lang] = make(map[string]map[string]string)

			loadLanguageDir(lang, "translations/"+lang)

			tag, err := language.Parse(lang)
			if err != nil {
				log.Printf("i18n: invalid language tag %q: %v", lang, err)
				continue
			}
			supportedTags = append(supportedTags, tag)
			langCodes = append(langCodes, lang)
		}

		// The matcher returns an index into this combined slice
		defaultTag := language.MustParse(DefaultLanguage)
		allTags := append([]language.Tag{defaultTag}, supportedTags...)
		matcher = language.NewMatcher(allTags)

		supportedCodes = append([]string{DefaultLanguage}, langCodes...)
	})
}

func loadLanguageDir(lang, path string) {
	entries, err := fs.ReadDir(translationFiles, path)
	if err != nil {
		log.Printf("i18n: failed to read dir %s: %v", path, err)
		return
	}

	for _, entry := range entries {
		fullPath := path + "/" + entry.Name()
		if entry.IsDir() {
			loadLanguageDir(lang, fullPath)
		} else if strings.HasSuffix(entry.Name(), ".json") {
			loadJSONFile(lang, fullPath)
		}
	}
}

func loadJSONFile(lang, path string) {
	data, err := fs.ReadFile(translationFiles, path)
	if err != nil {
		log.Printf("i18n: failed to read %s: %v", path, err)
		return
	}

	var messages map[string]string
	if err := json.Unmarshal(data, &messages); err != nil {
		log.Printf("i18n: failed to parse %s: %v", path, err)
		return
	}

	// Use relative path as namespace: "validation"
	relPath := strings.TrimPrefix(path, "translations/"+lang+"/")
	namespace := strings.TrimSuffix(relPath, ".json")

	// Filter out metadata keys (starting with _)
	filtered := make(map[string]string)
	for k, v := range messages {
		if !strings.HasPrefix(k, "_") {
			filtered[k] = v
		}
	}

	catalog[lang][namespace] = filtered
}

// Match finds the best supported language for an Accept-Language header value
// or a single BCP 47 tag. Falls back to DefaultLanguage.
func Match(acceptLanguage string) string {
	if acceptLanguage == "" || matcher == nil {
		return DefaultLanguage
	}

	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return DefaultLanguage
	}

	_, index, confidence := matcher.Match(tags...)
	if confidence == language.No {
		return DefaultLanguage
	}
	if index >= 0 && index < len(supportedCodes) {
		return supportedCodes[index]
	}

	return DefaultLanguage
}

// T returns a translated string for the given language, namespace, and key.
// Falls back to the default language, then to the key itself.
func T(lang, namespace, key string) string {
	if msg, ok := lookup(lang, namespace, key); ok {
		return msg
	}
	if lang != DefaultLanguage {
		if msg, ok := lookup(DefaultLanguage, namespace, key); ok {
			return msg
		}
	}
	return key
}

func lookup(lang, namespace, key string) (string, bool) {
	if ns, ok := catalog[lang]; ok {
		if msgs, ok := ns[namespace]; ok {
			msg, ok := msgs[key]
			return msg, ok
		}
	}
	return "", false
}

// Localize rewrites validation messages into lang using their codes. Errors
// without a code, or without a translation, keep their English message.
func Localize(lang string, errs []common.ValidationError) []common.ValidationError {
	out := make([]common.ValidationError, len(errs))
	for i, e := range errs {
		out[i] = e
		if e.Code == "" {
			continue
		}
		if msg, ok := lookup(lang, "validation", e.Code); ok {
			out[i].Message = msg
		}
	}
	return out
}
