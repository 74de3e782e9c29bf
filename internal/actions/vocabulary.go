package actions

import (
	_ "embed"
	"log/slog"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed vocabulary.yml
var vocabularyFile []byte

type vocabularyEntry struct {
	Cart     []string          `yaml:"cart"`
	Movement []string          `yaml:"movement"`
	Orders   []string          `yaml:"orders"`
	Aliases  map[string]string `yaml:"aliases"`
}

// vocabulary is the parsed verb table. Lookups are case-insensitive.
type vocabulary struct {
	categories map[string]Category
	aliases    map[string]string
}

var (
	vocab     *vocabulary
	vocabOnce sync.Once
)

func getVocabulary() *vocabulary {
	vocabOnce.Do(func() {
		vocab = &vocabulary{
			categories: make(map[string]Category),
			aliases:    make(map[string]string),
		}

		var entry vocabularyEntry
		if err := yaml.Unmarshal(vocabularyFile, &entry); err != nil {
			slog.Error("failed to parse action vocabulary", slog.Any("error", err))
			return
		}

		for _, verb := range entry.Cart {
			vocab.categories[strings.ToLower(verb)] = CategoryCart
		}
		for _, verb := range entry.Movement {
			vocab.categories[strings.ToLower(verb)] = CategoryMovement
		}
		for _, verb := range entry.Orders {
			vocab.categories[strings.ToLower(verb)] = CategoryOrders
		}
		for from, to := range entry.Aliases {
			vocab.aliases[strings.ToLower(from)] = to
		}
	})
	return vocab
}

// category returns the category of a verb, if it is known.
func (v *vocabulary) category(verb string) (Category, bool) {
	c, ok := v.categories[strings.ToLower(strings.TrimSpace(verb))]
	return c, ok
}

// canonical folds alternative spellings onto one kind.
func (v *vocabulary) canonical(verb string) string {
	verb = strings.TrimSpace(verb)
	if to, ok := v.aliases[strings.ToLower(verb)]; ok {
		return to
	}
	return strings.ToLower(verb)
}

// Categorize reports the category of an action verb such as "add_to_cart"
// or "track_order".
func Categorize(verb string) (Category, bool) {
	return getVocabulary().category(verb)
}
