package ingest

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectSource(t *testing.T) {
	tests := []struct {
		input string
		want  SourceType
	}{
		{"https://example.com/makale", SourceURL},
		{"http://example.com", SourceURL},
		{"rapor.pdf", SourcePDF},
		{"RAPOR.PDF", SourcePDF},
		{"notlar.txt", SourceText},
		{"sadece bir konu", SourceText},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, DetectSource(tt.input), tt.input)
	}
}

func TestTextIngestAndFocusHint(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notlar.txt")
	require.NoError(t, os.WriteFile(path, []byte("Şehir İçi Dikey Tarım\nKuleler halinde sera üretimi.\n"), 0o644))

	content, err := NewIngester(path).Ingest(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "Şehir İçi Dikey Tarım", content.Title)
	assert.Equal(t, 8, content.WordCount)

	hint := content.FocusHint()
	assert.True(t, strings.HasPrefix(hint, "Başlık: Şehir İçi Dikey Tarım\nAçıklama: "))
}

func TestFocusHintTruncatesOnRuneBoundary(t *testing.T) {
	c := &Content{Title: "Uzun", Text: strings.Repeat("ş", maxFocusRunes+100)}
	hint := c.FocusHint()
	assert.True(t, strings.HasSuffix(hint, "..."))
	assert.True(t, strings.Contains(hint, strings.Repeat("ş", maxFocusRunes)))
	assert.False(t, strings.Contains(hint, strings.Repeat("ş", maxFocusRunes+1)))
}

func TestTextIngestRejectsMissingFile(t *testing.T) {
	_, err := (&TextIngester{}).Ingest(context.Background(), "/yok/boyle/bir/dosya.txt")
	assert.Error(t, err)
}

func TestTitleFromText(t *testing.T) {
	assert.Equal(t, "Başlıksız Kaynak", titleFromText("   \nfoo", 80))
	long := strings.Repeat("ü", 100)
	got := titleFromText(long, 80)
	assert.Equal(t, string([]rune(long)[:80])+"...", got)
}
