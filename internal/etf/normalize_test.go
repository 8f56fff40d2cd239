package etf

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeHTML(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "tags stripped",
			input:    "<html><body><div>淨值 <b>43.27</b></div></body></html>",
			expected: "淨值 43.27",
		},
		{
			name:     "script removed",
			input:    "<html><body><script>var x = '市價 99.99';</script><p>市價 43.80</p></body></html>",
			expected: "市價 43.80",
		},
		{
			name:     "style removed",
			input:    "<html><head><style>.price { color: red; }</style></head><body>市價 43.80</body></html>",
			expected: "市價 43.80",
		},
		{
			name:     "entities decoded",
			input:    "<p>a &amp; b &lt;c&gt; &quot;d&quot; &#39;e&#39;</p>",
			expected: `a & b <c> "d" 'e'`,
		},
		{
			name:     "named nbsp collapsed",
			input:    "<p>淨值&nbsp;&nbsp;43.27</p>",
			expected: "淨值 43.27",
		},
		{
			name:     "numeric nbsp collapsed",
			input:    "<p>淨值&#160;43.27</p>",
			expected: "淨值 43.27",
		},
		{
			name:     "newlines and tabs collapse to single spaces",
			input:    "<div>市價\n\t 43.80\n\n淨值   43.27</div>",
			expected: "市價 43.80 淨值 43.27",
		},
		{
			name:     "block elements separated",
			input:    "<div>市價 43.80</div><div>淨值 43.27</div>",
			expected: "市價 43.80淨值 43.27",
		},
		{
			name:     "empty input",
			input:    "",
			expected: "",
		},
		{
			name:     "whitespace only",
			input:    "   \n\t  ",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeHTML(tt.input))
		})
	}
}

func TestNormalizeHTML_FullPage(t *testing.T) {
	page := `<!DOCTYPE html>
<html>
<head><title>0050</title><style>td { padding: 2px; }</style></head>
<body>
<script type="text/javascript">document.write("decoy 淨值 0.01");</script>
<table>
<tr><td>市價</td><td>43.80</td></tr>
<tr><td>淨值</td><td>43.27</td></tr>
</table>
</body>
</html>`

	out := NormalizeHTML(page)
	assert.Contains(t, out, "市價")
	assert.Contains(t, out, "43.80")
	assert.Contains(t, out, "淨值")
	assert.NotContains(t, out, "decoy")
	assert.NotContains(t, out, "padding")
	assert.NotContains(t, out, "\n")
}
