package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCloneKeyboard_DeepCopy(t *testing.T) {
	kb := []KeyboardRow{
		{{Text: "Go", LinkedScreenID: "s2"}},
		{{Text: "Site", URL: "https://example.com"}, {Text: "Act", CallbackData: "x"}},
	}

	c := CloneKeyboard(kb)
	require.Equal(t, kb, c)

	// mutating the copy must not reach the original
	c[0][0].Text = "changed"
	c[1][1].CallbackData = "y"
	assert.Equal(t, "Go", kb[0][0].Text)
	assert.Equal(t, "x", kb[1][1].CallbackData)
}

func TestCloneKeyboard_Nil(t *testing.T) {
	assert.Nil(t, CloneKeyboard(nil))
}

func TestScreen_Clone(t *testing.T) {
	s := &Screen{
		Id:             "s1",
		Name:           "start",
		MessageContent: "hello",
		Keyboard:       []KeyboardRow{{{Text: "next", LinkedScreenID: "s2"}}},
	}

	c := s.Clone()
	require.Equal(t, s, c)

	c.Keyboard[0][0].LinkedScreenID = "s3"
	c.MessageContent = "bye"
	assert.Equal(t, "s2", s.Keyboard[0][0].LinkedScreenID)
	assert.Equal(t, "hello", s.MessageContent)
}
