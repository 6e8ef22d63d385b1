package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHighlightJSON(t *testing.T) {
	SetEnabled(true)
	t.Cleanup(func() { SetEnabled(!checkNoColor()) })

	out := HighlightJSON(`{"provider":"gpt4o","ok":true,"latency":12}`)
	assert.Contains(t, out, Blue+`"provider"`+ResetCode+":")
	assert.Contains(t, out, Green+`"gpt4o"`+ResetCode)
	assert.Contains(t, out, Yellow+"true"+ResetCode)
	assert.Contains(t, out, Purple+"12"+ResetCode)

	results := HighlightJSON(`{"gemini":"Error: timeout"}`)
	assert.Contains(t, results, Red+`"Error: timeout"`+ResetCode)
}

func TestDisabled(t *testing.T) {
	SetEnabled(false)
	t.Cleanup(func() { SetEnabled(!checkNoColor()) })

	in := `{"a":1}`
	assert.Equal(t, in, HighlightJSON(in))
	assert.Equal(t, "fanout", Stylize("fanout", Red))
	assert.Equal(t, "fanout", Banner("fanout"))
}
