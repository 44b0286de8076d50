// Package category maps free-text and foreign-language labels onto the
// canonical display categories.
//
// Resolution runs an ordered rule list and stops at the first match:
//
//  1. exact, case-insensitive match against every synonym, in table order
//  2. substring containment of any synonym, longest key first
//  3. labels written in Cyrillic are returned unchanged
//  4. anything else is returned with its first letter capitalized
//
// Custom synonyms are placed ahead of the built-in table, so they win both
// passes.
package category

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/yurifrl/finsight/pkg/models"
)

// Canonical labels.
const (
	Salary        = "Зарплата"
	Bonus         = "Премия"
	Rent          = "Аренда"
	Food          = "Еда"
	Transport     = "Транспорт"
	Utilities     = "Коммунальные услуги"
	Health        = "Здоровье"
	Entertainment = "Развлечения"
	Shopping      = "Покупки"
	Transfers     = "Переводы"
	Interest      = "Проценты"
	Loans         = "Кредиты"
	Other         = "Прочее"
)

// Synonym maps a lowercase key to its canonical label.
type Synonym struct {
	Key   string `mapstructure:"key" yaml:"key" json:"key"`
	Label string `mapstructure:"label" yaml:"label" json:"label"`
}

// DefaultSynonyms is the built-in translation table. Its order breaks ties
// between substring keys of equal length.
var DefaultSynonyms = []Synonym{
	{"salary", Salary}, {"payroll", Salary}, {"wages", Salary}, {"зарплата", Salary},
	{"bonus", Bonus}, {"премия", Bonus},
	{"rent", Rent}, {"lease", Rent}, {"аренда", Rent},
	{"food", Food}, {"groceries", Food}, {"grocery", Food}, {"restaurant", Food}, {"cafe", Food}, {"еда", Food}, {"продукты", Food},
	{"transport", Transport}, {"taxi", Transport}, {"metro", Transport}, {"fuel", Transport}, {"транспорт", Transport},
	{"utilities", Utilities}, {"utility", Utilities}, {"electricity", Utilities}, {"internet", Utilities}, {"mobile", Utilities},
	{"health", Health}, {"pharmacy", Health}, {"medical", Health}, {"здоровье", Health},
	{"entertainment", Entertainment}, {"cinema", Entertainment}, {"movie", Entertainment},
	{"shopping", Shopping}, {"clothes", Shopping},
	{"transfer", Transfers}, {"перевод", Transfers},
	{"interest", Interest}, {"dividend", Interest},
	{"loan", Loans}, {"mortgage", Loans}, {"credit", Loans},
	{"misc", Other}, {"other", Other},
}

// Rule is one step of the resolution order.
type Rule struct {
	Name  string
	Match func(lower string) bool
	Label string
}

// Resolver resolves raw labels. It is immutable after construction and safe
// for concurrent use.
type Resolver struct {
	rules []Rule
}

// New builds a resolver from custom synonyms followed by DefaultSynonyms.
func New(custom ...Synonym) *Resolver {
	own := make([]Synonym, 0, len(custom))
	for _, s := range custom {
		key := strings.ToLower(strings.TrimSpace(s.Key))
		if key == "" || strings.TrimSpace(s.Label) == "" {
			continue
		}
		own = append(own, Synonym{Key: key, Label: strings.TrimSpace(s.Label)})
	}
	return &Resolver{rules: buildRules(own, DefaultSynonyms)}
}

// buildRules orders every exact match first. Substring matches follow,
// custom keys before built-in ones, and within each group longer keys
// before shorter ones so "interest" wins over the "rent" inside it. Equal
// lengths keep table order.
func buildRules(custom, builtin []Synonym) []Rule {
	table := append(append([]Synonym{}, custom...), builtin...)
	rules := make([]Rule, 0, 2*len(table))
	for _, s := range table {
		key := s.Key
		rules = append(rules, Rule{
			Name:  "exact:" + key,
			Match: func(lower string) bool { return lower == key },
			Label: s.Label,
		})
	}
	for _, group := range [][]Synonym{custom, builtin} {
		for _, s := range longestFirst(group) {
			key := s.Key
			rules = append(rules, Rule{
				Name:  "contains:" + key,
				Match: func(lower string) bool { return strings.Contains(lower, key) },
				Label: s.Label,
			})
		}
	}
	return rules
}

func longestFirst(table []Synonym) []Synonym {
	out := append([]Synonym{}, table...)
	sort.SliceStable(out, func(i, j int) bool {
		return utf8.RuneCountInString(out[i].Key) > utf8.RuneCountInString(out[j].Key)
	})
	return out
}

// Resolve returns the canonical label for raw.
func (r *Resolver) Resolve(raw string) string {
	label, _ := r.Explain(raw)
	return label
}

// Explain returns the canonical label and the name of the rule that
// produced it.
func (r *Resolver) Explain(raw string) (string, string) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return models.Uncategorized, "empty"
	}
	lower := strings.ToLower(raw)
	for _, rule := range r.rules {
		if rule.Match(lower) {
			return rule.Label, rule.Name
		}
	}
	if isNative(raw) {
		return raw, "native"
	}
	return capitalize(raw), "passthrough"
}

// Meaningful reports whether label is a resolved category.
func Meaningful(label string) bool {
	label = strings.TrimSpace(label)
	return label != "" && !strings.EqualFold(label, models.Uncategorized)
}

func isNative(s string) bool {
	for _, r := range s {
		if unicode.Is(unicode.Cyrillic, r) {
			return true
		}
	}
	return false
}

func capitalize(s string) string {
	first, size := utf8.DecodeRuneInString(s)
	if first == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(first)) + s[size:]
}
