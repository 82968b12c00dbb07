package fileprocessor

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecodeTextValidUTF8(t *testing.T) {
	assert.Equal(t, "hello مرحبا", DecodeText([]byte("hello مرحبا")))
}

func TestAnalysisToTextOmitsEmptyFields(t *testing.T) {
	text := AnalysisToText(ClassBusinessCard, map[string]any{
		"name":    "Ahmad",
		"name_ar": "أحمد",
		"email":   "",
	})
	assert.Contains(t, text, "name: Ahmad")
	assert.Contains(t, text, "name_ar: أحمد")
	assert.NotContains(t, text, "email")
}

func TestClassifyExpenseCategory(t *testing.T) {
	assert.Equal(t, "groceries", classifyExpenseCategory("Al Othaim Supermarket"))
	assert.Equal(t, "dining", classifyExpenseCategory("Nice Cafe"))
	assert.Equal(t, "general", classifyExpenseCategory("Random Shop"))
}

func TestStripHTMLSkipsScriptAndStyle(t *testing.T) {
	doc := `<html><head><style>.a{color:red}</style></head><body><script>alert(1)</script><p>Hello World</p></body></html>`
	out := stripHTML(doc)
	assert.Contains(t, out, "Hello World")
	assert.NotContains(t, out, "alert")
	assert.NotContains(t, out, "color:red")
}

func TestGithubRepoRootPattern(t *testing.T) {
	assert.True(t, githubRepoRootPattern.MatchString("/owner/repo"))
	assert.True(t, githubRepoRootPattern.MatchString("/owner/repo/"))
	assert.False(t, githubRepoRootPattern.MatchString("/owner/repo/blob/main/file.md"))
}
