package listing

import (
	"log/slog"
	"strings"

	"booklister/internal/domain/book"
)

// Leaf category ids in the books subtree.
const (
	CategoryNonfiction = "29223"
	CategoryChildrens  = "29792"
)

// Per-category aspect exclusion sets. The nonfiction category rejects
// audience-style aspects; the children's category rejects bibliographic
// detail aspects.
var excludedAspects = map[string]map[string]bool{
	CategoryNonfiction: {
		"Genre":             true,
		"Narrative Type":    true,
		"Intended Audience": true,
	},
	CategoryChildrens: {
		"Binding":              true,
		"Subject":              true,
		"Place of Publication": true,
	},
}

// requiredAspects lists aspects the marketplace rejects listings
// without, per category.
var requiredAspects = map[string][]string{
	CategoryChildrens: {"Author", "Language", "Book Title"},
}

func KnownCategory(categoryID string) bool {
	_, ok := excludedAspects[categoryID]
	return ok
}

// AspectAllowed reports whether an aspect name may be sent for the
// category. Unknown categories pass everything through; the caller logs
// the pass-through once.
func AspectAllowed(categoryID, name string) bool {
	excluded, ok := excludedAspects[categoryID]
	if !ok {
		return true
	}
	return !excluded[name]
}

func RequiredAspects(categoryID string) []string {
	return requiredAspects[categoryID]
}

var childrenKeywords = []string{
	"children", "child", "juvenile", "kids", "young adult", "teen", "picture book",
}

// ResolveCategory picks the target category: explicit argument first,
// then the book's previously saved category, then a keyword heuristic
// over the AI-extracted audience and genre fields.
func ResolveCategory(explicit string, b *book.BookRecord) string {
	if explicit != "" {
		return explicit
	}
	if b.CategoryID != "" {
		return b.CategoryID
	}
	return autoSelectCategory(b)
}

func autoSelectCategory(b *book.BookRecord) string {
	hints := specificText(b.Specifics, "Intended Audience") + " " + specificText(b.Specifics, "Genre")
	hints = strings.ToLower(hints)
	for _, kw := range childrenKeywords {
		if strings.Contains(hints, kw) {
			slog.Debug("auto-selected children's category", "book_id", b.ID, "matched", kw)
			return CategoryChildrens
		}
	}
	return CategoryNonfiction
}

// specificText flattens a free-form specifics value to a single string
// for keyword matching.
func specificText(specifics map[string]any, key string) string {
	v, ok := specifics[key]
	if !ok {
		return ""
	}
	switch t := v.(type) {
	case string:
		return t
	case []string:
		return strings.Join(t, " ")
	case []any:
		parts := make([]string, 0, len(t))
		for _, e := range t {
			if s, ok := e.(string); ok {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, " ")
	default:
		return ""
	}
}
