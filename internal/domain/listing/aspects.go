package listing

import (
	"fmt"
	"log/slog"
	"strings"
	"unicode"
	"unicode/utf8"

	"booklister/internal/domain/book"
)

const maxAuthorLength = 65

// specificsKeys are the AI-extracted fields considered as aspect
// candidates. Anything else in the specifics map is ignored.
var specificsKeys = []string{
	"Genre",
	"Narrative Type",
	"Intended Audience",
	"Subject",
	"Topic",
	"Place of Publication",
	"Illustrator",
	"Series",
	"Features",
	"Country/Region of Manufacture",
	"Type",
}

// booleanAspects default to "No" rather than being omitted. Omitting
// them makes relisted items silently lose the attribute upstream.
var booleanAspects = []string{"Signed", "Inscribed"}

// BuildAspects derives the category-filtered aspect map for a book.
// Every surviving value is a non-empty array of normalized strings.
func BuildAspects(b *book.BookRecord, categoryID string) map[string][]string {
	candidates := map[string]any{
		"Author":           truncateAuthor(b.Author),
		"Book Title":       firstNonEmpty(b.AITitle, b.Title),
		"Publisher":        normalizePublisher(b.Publisher),
		"Publication Year": b.Year,
		"Language":         b.Language,
		"Edition":          b.Edition,
		"Format":           b.Format,
		"Binding":          b.Format,
		"Book Series":      b.Series,
	}
	for _, key := range specificsKeys {
		if v, ok := b.Specifics[key]; ok {
			candidates[key] = v
		}
	}
	for _, key := range booleanAspects {
		if v, ok := b.Specifics[key]; ok {
			candidates[key] = v
		} else {
			candidates[key] = "No"
		}
	}

	if !KnownCategory(categoryID) {
		slog.Warn("unknown category, aspect filtering skipped", "category_id", categoryID)
	}

	aspects := make(map[string][]string, len(candidates))
	for name, raw := range candidates {
		if !AspectAllowed(categoryID, name) {
			continue
		}
		values := normalizeValues(raw)
		if len(values) == 0 {
			continue
		}
		aspects[name] = values
	}

	fillRequiredAspects(b, categoryID, aspects)
	return aspects
}

// fillRequiredAspects retries one fallback source for each required
// aspect still missing, then logs a warning instead of failing. A
// missing required aspect degrades search placement but does not block
// the listing.
func fillRequiredAspects(b *book.BookRecord, categoryID string, aspects map[string][]string) {
	for _, name := range RequiredAspects(categoryID) {
		if len(aspects[name]) > 0 {
			continue
		}
		var fallback any
		switch name {
		case "Author":
			fallback = b.Specifics["Author"]
		case "Language":
			fallback = "English"
		case "Book Title":
			fallback = b.Title
		}
		if values := normalizeValues(fallback); len(values) > 0 {
			aspects[name] = values
			continue
		}
		slog.Warn("required aspect missing after fallback", "aspect", name, "category_id", categoryID, "book_id", b.ID)
	}
}

// normalizeValues converts a scalar or list candidate into the
// array-of-strings form the upstream schema requires, applying the full
// cleanup pipeline to each element and dropping blanks.
func normalizeValues(raw any) []string {
	var elems []string
	switch v := raw.(type) {
	case nil:
		return nil
	case string:
		elems = []string{v}
	case []string:
		elems = v
	case []any:
		for _, e := range v {
			elems = append(elems, scalarString(e))
		}
	default:
		elems = []string{scalarString(v)}
	}

	out := make([]string, 0, len(elems))
	for _, e := range elems {
		if s := normalizeValue(e); s != "" {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func scalarString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case bool:
		if t {
			return "Yes"
		}
		return "No"
	case float64:
		if t == float64(int64(t)) {
			return fmt.Sprintf("%d", int64(t))
		}
		return fmt.Sprintf("%g", t)
	case int:
		return fmt.Sprintf("%d", t)
	default:
		return fmt.Sprintf("%v", t)
	}
}

// normalizeValue trims, strips control characters, collapses internal
// whitespace, and re-encodes invalid UTF-8 losing the bad bytes.
func normalizeValue(s string) string {
	if !utf8.ValidString(s) {
		s = strings.ToValidUTF8(s, "")
	}
	var b strings.Builder
	b.Grow(len(s))
	lastSpace := true
	for _, r := range s {
		if unicode.IsControl(r) {
			continue
		}
		if unicode.IsSpace(r) {
			if !lastSpace {
				b.WriteRune(' ')
			}
			lastSpace = true
			continue
		}
		b.WriteRune(r)
		lastSpace = false
	}
	return strings.TrimSpace(b.String())
}

// normalizePublisher rewrites ampersands, which the aspect validator
// upstream rejects in publisher names.
func normalizePublisher(publisher string) string {
	return strings.ReplaceAll(publisher, "&", "and")
}

func truncateAuthor(author string) string {
	if utf8.RuneCountInString(author) <= maxAuthorLength {
		return author
	}
	runes := []rune(author)
	return strings.TrimSpace(string(runes[:maxAuthorLength]))
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
