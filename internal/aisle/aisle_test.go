package aisle

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleConf = `-- categories in store-walking order

[produce]
garlic
spring onion|green onion|scallion

[dairy]
butter
`

func parseSample(t *testing.T) *Conf {
	t.Helper()
	conf, err := Parse(strings.NewReader(sampleConf))
	require.NoError(t, err)
	return conf
}

func TestParse(t *testing.T) {
	conf := parseSample(t)

	require.Len(t, conf.Categories, 2)
	assert.Equal(t, []string{"produce", "dairy"}, conf.CategoryNames())

	produce := conf.Categories[0]
	require.Len(t, produce.Items, 2)
	assert.Equal(t, "spring onion", produce.Items[1].Name)
	assert.Equal(t, []string{"green onion", "scallion"}, produce.Items[1].Synonyms)
}

func TestParseItemOutsideCategory(t *testing.T) {
	_, err := Parse(strings.NewReader("stray item\n[produce]\ngarlic\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 1")
}

func TestKnows(t *testing.T) {
	conf := parseSample(t)

	assert.True(t, conf.Knows("garlic"))
	assert.True(t, conf.Knows("Green Onion"))
	assert.True(t, conf.Knows("  scallion "))
	assert.False(t, conf.Knows("saffron"))
}

func TestKnownNames(t *testing.T) {
	conf := parseSample(t)
	assert.Equal(t,
		[]string{"garlic", "spring onion", "green onion", "scallion", "butter"},
		conf.KnownNames())
}

func TestAddSynonym(t *testing.T) {
	conf := parseSample(t)

	require.NoError(t, conf.AddSynonym("garlic", "garlic clove"))
	assert.True(t, conf.Knows("garlic clove"))

	// already present, no duplicate
	require.NoError(t, conf.AddSynonym("spring onion", "Scallion"))
	assert.Equal(t, []string{"green onion", "scallion"}, conf.Categories[0].Items[1].Synonyms)

	err := conf.AddSynonym("saffron", "azafran")
	require.ErrorIs(t, err, ErrItemNotFound)
}

func TestAddItem(t *testing.T) {
	conf := parseSample(t)

	conf.AddItem("dairy", "cream")
	assert.True(t, conf.Knows("cream"))

	conf.AddItem("spices", "saffron")
	require.Len(t, conf.Categories, 3)
	assert.Equal(t, "spices", conf.Categories[2].Name)
	assert.True(t, conf.Knows("saffron"))
}

func TestRenderRoundTrip(t *testing.T) {
	conf := parseSample(t)
	conf.AddSynonym("garlic", "garlic clove")
	conf.AddItem("spices", "saffron")

	var b strings.Builder
	require.NoError(t, conf.Render(&b))

	again, err := Parse(strings.NewReader(b.String()))
	require.NoError(t, err)
	assert.Equal(t, conf.CategoryNames(), again.CategoryNames())
	assert.True(t, again.Knows("garlic clove"))
	assert.True(t, again.Knows("saffron"))
}
