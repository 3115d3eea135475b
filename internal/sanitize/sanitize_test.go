package sanitize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPolicy_StripsScripts(t *testing.T) {
	out := Policy().Sanitize(`<p>ok</p><script>alert(1)</script><a href="javascript:alert(1)">x</a>`)
	assert.NotContains(t, out, "<script")
	assert.NotContains(t, out, "javascript:")
	assert.Contains(t, out, "<p>ok</p>")
}

func TestPolicy_KeepsMarkupExtensions(t *testing.T) {
	out := Policy().Sanitize(`<mark>m</mark><sup>1</sup><sub>2</sub><h2 id="intro">I</h2><code class="language-go">x</code>`)
	assert.Contains(t, out, "<mark>m</mark>")
	assert.Contains(t, out, "<sup>1</sup>")
	assert.Contains(t, out, "<sub>2</sub>")
	assert.Contains(t, out, `id="intro"`)
	assert.Contains(t, out, `class="language-go"`)
}

func TestPolicy_DropsEventHandlers(t *testing.T) {
	out := Policy().Sanitize(`<span class="x" onclick="steal()">hi</span>`)
	assert.NotContains(t, out, "onclick")
	assert.Contains(t, out, "hi")
}
