package model

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidJurisdiction(t *testing.T) {
	c := DefaultCatalog()

	assert.True(t, c.ValidJurisdiction("法国"))
	assert.True(t, c.ValidJurisdiction("土耳其"))
	assert.False(t, c.ValidJurisdiction("日本"))
	assert.False(t, c.ValidJurisdiction(""))
}

func TestIsEUMember(t *testing.T) {
	c := DefaultCatalog()

	assert.True(t, c.IsEUMember("法国"))
	assert.True(t, c.IsEUMember("荷兰"))
	assert.False(t, c.IsEUMember("英国"))
	assert.False(t, c.IsEUMember("阿根廷"))
}

func TestSelectQuestionsOrdering(t *testing.T) {
	c := DefaultCatalog()

	// Input order must not matter; output is ascending numeric.
	qs := c.SelectQuestions([]string{"3", "1", "7", "2"})
	require.Len(t, qs, 4)
	assert.Equal(t, "1", qs[0].ID)
	assert.Equal(t, "2", qs[1].ID)
	assert.Equal(t, "3", qs[2].ID)
	assert.Equal(t, "7", qs[3].ID)
}

func TestSelectQuestionsDropsUnknown(t *testing.T) {
	c := DefaultCatalog()

	qs := c.SelectQuestions([]string{"1", "99", "3"})
	require.Len(t, qs, 2)
	assert.Equal(t, "1", qs[0].ID)
	assert.Equal(t, "3", qs[1].ID)
}

func TestSelectQuestionsDeduplicates(t *testing.T) {
	c := DefaultCatalog()

	qs := c.SelectQuestions([]string{"2", "2", "2"})
	require.Len(t, qs, 1)
	assert.Equal(t, "2", qs[0].ID)
}

func TestSelectQuestionsEmpty(t *testing.T) {
	c := DefaultCatalog()

	assert.Empty(t, c.SelectQuestions(nil))
	assert.Empty(t, c.SelectQuestions([]string{"99"}))
}

func TestCatalogCopiesAreIsolated(t *testing.T) {
	c := DefaultCatalog()

	js := c.Jurisdictions()
	require.NotEmpty(t, js)
	js[0] = "mutated"
	assert.NotEqual(t, "mutated", c.Jurisdictions()[0])

	qs := c.Questions()
	qs[0] = Question{ID: "mutated"}
	_, ok := c.Question("1")
	assert.True(t, ok)
	assert.Equal(t, "1", c.Questions()[0].ID)
}

func TestQuestionsOrdered(t *testing.T) {
	c := DefaultCatalog()

	qs := c.Questions()
	require.Len(t, qs, 7)
	for i, q := range qs {
		assert.Equal(t, strconv.Itoa(i+1), q.ID)
	}
}
