package guji_test

import (
	"testing"

	"github.com/fwojciec/guji"
	"github.com/stretchr/testify/assert"
)

func TestAnchors(t *testing.T) {
	t.Parallel()

	t.Run("keeps han characters", func(t *testing.T) {
		t.Parallel()

		anchors := guji.Anchors([]string{"第一卷 夢林玄解"})

		assert.Equal(t, []string{"第一卷-夢林玄解"}, anchors)
	})

	t.Run("generates URL-safe anchors", func(t *testing.T) {
		t.Parallel()

		anchors := guji.Anchors([]string{"Getting Started With Go"})

		assert.Equal(t, []string{"getting-started-with-go"}, anchors)
	})

	t.Run("handles duplicate titles with numeric suffixes", func(t *testing.T) {
		t.Parallel()

		anchors := guji.Anchors([]string{"序", "序", "序"})

		assert.Equal(t, []string{"序", "序-1", "序-2"}, anchors)
	})

	t.Run("strips punctuation", func(t *testing.T) {
		t.Parallel()

		anchors := guji.Anchors([]string{"卷一（上）：占夢", "API Reference (v2.0)"})

		assert.Equal(t, []string{"卷一上占夢", "api-reference-v20"}, anchors)
	})

	t.Run("returns nil for no titles", func(t *testing.T) {
		t.Parallel()

		assert.Nil(t, guji.Anchors(nil))
	})
}
