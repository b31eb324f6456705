package slug

import (
	"fmt"
	"math/rand"
	"regexp"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

var reSlug = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

func TestNormalize(t *testing.T) {
	tests := []struct {
		Name     string
		Title    string
		Expected string
	}{
		{"simple", "Dark Matter 101", "dark-matter-101"},
		{"accents", "Évènements Médicaux", "evenements-medicaux"},
		{"collapse separators", "Hello   --  World!!!", "hello-world"},
		{"punctuation joins", "Schrödinger's cat", "schrodingers-cat"},
		{"leading and trailing", "  -- Quantum --  ", "quantum"},
		{"tabs and newlines", "Lab\tnotes\nvol 2", "lab-notes-vol-2"},
		{"only emoji", "🔬🧪", ""},
		{"only punctuation", "?!...", ""},
		{"empty", "", ""},
		{"non-latin dropped", "Физика and physics", "and-physics"},
		{"ligatures and ß are dropped", "straße", "strae"},
		{"no-break and ideographic spaces", "Dark\u00a0Matter\u3000101", "dark-matter-101"},
		{"byte order mark separates", "Dark\ufeffMatter", "dark-matter"},
		{"next line is not a space", "Dark\u0085Matter", "darkmatter"},
		{"line separator", "Dark\u2028Matter", "dark-matter"},
	}

	for _, test := range tests {
		t.Run(test.Name, func(t *testing.T) {
			assert.Equal(t, test.Expected, Normalize(test.Title))
		})
	}
}

func TestNormalizeAccentFolding(t *testing.T) {
	result := Normalize("Évènements Médicaux")
	assert.True(t, strings.HasPrefix(result, "evenements-medicaux"))
	for _, r := range result {
		assert.False(t, r > 127, "found non-ASCII rune %q", r)
		assert.False(t, 'A' <= r && r <= 'Z', "found uppercase rune %q", r)
	}
}

func TestNormalizeLength(t *testing.T) {
	long := strings.Repeat("Gravitational waves from merging black holes ", 10)
	result := Normalize(long)
	assert.LessOrEqual(t, len(result), MaxTitleLength)
	assert.Regexp(t, reSlug, result)

	// A cut that lands right after a separator must not leave a dangling hyphen.
	exact := strings.Repeat("a", MaxTitleLength-1) + " bcd"
	assert.Equal(t, strings.Repeat("a", MaxTitleLength-1), Normalize(exact))
}

func TestNormalizeShape(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	alphabet := []rune("aZé9 -_!?.\t\nÅøçΩ🔭")
	for i := 0; i < 500; i++ {
		n := r.Intn(120)
		title := make([]rune, n)
		for j := range title {
			title[j] = alphabet[r.Intn(len(alphabet))]
		}

		result := Normalize(string(title))
		if result != "" {
			assert.Regexp(t, reSlug, result, "title %q", string(title))
		}
		assert.LessOrEqual(t, len(result), MaxTitleLength)
	}
}

func TestShortID(t *testing.T) {
	assert.Equal(t, "3f2a9c1e", ShortID("3f2a9c1e-77b0-4d4e-9a51-0c8f0e6b2d11"))
	assert.Equal(t, "3f2a9c1e", ShortID("3f2a-9c1e-77b0"))
	assert.Equal(t, "abc", ShortID("a-b-c"))
	assert.Equal(t, "", ShortID(""))
}

func TestArticlePath(t *testing.T) {
	id := "5b1e0f3a-2c44-4f5b-8d0e-1a2b3c4d5e6f"
	assert.Equal(t, "/article/dark-matter-101-5b1e0f3a", ArticlePath("Dark Matter 101", id))
	assert.Equal(t, "/article/-5b1e0f3a", ArticlePath("???", id))

	t.Run("deterministic", func(t *testing.T) {
		for i := 0; i < 50; i++ {
			id := uuid.New().String()
			title := fmt.Sprintf("Seminar #%d: Über Entropie", i)
			assert.Equal(t, ArticlePath(title, id), ArticlePath(title, id))
		}
	})
}

func TestExtractShortID(t *testing.T) {
	assert.Equal(t, "5b1e0f3a", ExtractShortID("dark-matter-101-5b1e0f3a"))
	assert.Equal(t, "5b1e0f3a", ExtractShortID("-5b1e0f3a"))
	assert.Equal(t, "5b1e0f3a", ExtractShortID("5b1e0f3a"))
	assert.Equal(t, "", ExtractShortID("trailing-"))
}

func TestRoundTrip(t *testing.T) {
	titles := []string{
		"",
		"🔬",
		"2024",
		"Top 10 experiments of 2023-2024",
		"Évènements Médicaux",
		strings.Repeat("long title ", 30),
		"x-1-2-3",
	}
	for _, title := range titles {
		for i := 0; i < 20; i++ {
			id := uuid.New().String()
			path := ArticlePath(title, id)
			segment := strings.TrimPrefix(path, ArticlePrefix)

			assert.Equal(t, strings.ReplaceAll(id, "-", "")[:ShortIDLength], ExtractShortID(segment), "title %q id %s", title, id)
			assert.True(t, IsCanonical(segment, title, id))
		}
	}
}

func TestIsCanonical(t *testing.T) {
	id := "5b1e0f3a-2c44-4f5b-8d0e-1a2b3c4d5e6f"
	assert.True(t, IsCanonical("dark-matter-5b1e0f3a", "Dark Matter", id))
	assert.False(t, IsCanonical("old-title-5b1e0f3a", "Dark Matter", id))
	assert.False(t, IsCanonical("5b1e0f3a", "Dark Matter", id))
}
