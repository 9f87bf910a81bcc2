package artifacts

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errx "github.com/ia-assistant/server/internal/core/error"
	"github.com/ia-assistant/server/internal/pipeline/model"
)

func runeWidth(s string) float64 { return float64(len([]rune(s))) }

func newTestStore(t *testing.T, at time.Time) *Store {
	t.Helper()
	s, err := NewStore(model.ArtifactConfig{Dir: filepath.Join(t.TempDir(), "pdfs"), Prefix: "respuesta"})
	require.NoError(t, err)
	s.now = func() time.Time { return at }
	return s
}

func TestWrapText_KeepsLinesUnderWidth(t *testing.T) {
	lines := WrapText("uno dos tres cuatro cinco seis", 10, runeWidth)

	assert.Equal(t, []string{"uno dos", "tres", "cuatro", "cinco", "seis"}, lines)
	for _, l := range lines {
		assert.Less(t, runeWidth(l), 10.0)
	}
}

func TestWrapText_PreservesLineBreaksAndBlankLines(t *testing.T) {
	lines := WrapText("primera\n\nsegunda", 100, runeWidth)
	assert.Equal(t, []string{"primera", "", "segunda"}, lines)
}

func TestWrapText_LongWordGetsOwnLine(t *testing.T) {
	lines := WrapText("a supercalifragilistico b", 5, runeWidth)
	assert.Equal(t, []string{"a", "supercalifragilistico", "b"}, lines)
}

func TestTextRenderer_Layout(t *testing.T) {
	at := time.Date(2024, 3, 5, 14, 7, 9, 0, time.UTC)
	var buf bytes.Buffer

	r := NewTextRenderer()
	require.NoError(t, r.Render(&buf, NewDocument("What is 2+2?", "4", at)))

	want := "=== Respuesta de IA Assistant ===\n\n" +
		"Fecha: 2024-03-05 14:07:09\n\n" +
		"Tu pregunta:\nWhat is 2+2?\n\n" +
		"Respuesta:\n4"
	assert.Equal(t, want, buf.String())
	assert.Equal(t, "txt", r.Extension())
	assert.Equal(t, ContentTypeBytes, r.ContentType())
	assert.Equal(t, Available, r.Capability())
}

func TestPDFRenderer_Capability(t *testing.T) {
	assert.Equal(t, Available, NewPDFRenderer(true).Capability())
	assert.Equal(t, Unavailable, NewPDFRenderer(false).Capability())

	var nilRenderer *PDFRenderer
	assert.Equal(t, Unavailable, nilRenderer.Capability())
}

func TestPDFRenderer_WritesPDF(t *testing.T) {
	at := time.Date(2024, 3, 5, 14, 7, 9, 0, time.UTC)
	answer := strings.Repeat("La respuesta es útil y está envuelta en varias líneas. ", 200)

	s := newTestStore(t, at)
	art, err := s.Save("pdf", func(w io.Writer) error {
		return NewPDFRenderer(true).Render(w, NewDocument("¿Qué es 2+2?", answer, at))
	})
	require.NoError(t, err)

	data, err := os.ReadFile(art.Path)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")))

	pages, err := PageCount(art.Path)
	require.NoError(t, err)
	assert.Greater(t, pages, 1, "long answers flow onto more pages")
}

func TestStore_NamesByTimestamp(t *testing.T) {
	at := time.Date(2024, 3, 5, 14, 7, 9, 0, time.UTC)
	s := newTestStore(t, at)

	art, err := s.Save("txt", func(w io.Writer) error {
		_, err := io.WriteString(w, "hola")
		return err
	})
	require.NoError(t, err)

	assert.Equal(t, "respuesta_20240305_140709.txt", art.Filename)
	assert.Equal(t, filepath.Join(s.Dir(), art.Filename), art.Path)
	assert.True(t, s.Exists(art.Path))
}

func TestStore_SameSecondDoesNotOverwrite(t *testing.T) {
	at := time.Date(2024, 3, 5, 14, 7, 9, 0, time.UTC)
	s := newTestStore(t, at)
	write := func(body string) func(io.Writer) error {
		return func(w io.Writer) error {
			_, err := io.WriteString(w, body)
			return err
		}
	}

	first, err := s.Save("pdf", write("first"))
	require.NoError(t, err)
	second, err := s.Save("pdf", write("second"))
	require.NoError(t, err)

	assert.Equal(t, "respuesta_20240305_140709.pdf", first.Filename)
	assert.Equal(t, "respuesta_20240305_140709_2.pdf", second.Filename)

	data, err := os.ReadFile(first.Path)
	require.NoError(t, err)
	assert.Equal(t, "first", string(data))
}

func TestStore_FailedWriteLeavesNoFile(t *testing.T) {
	s := newTestStore(t, time.Now())

	_, err := s.Save("pdf", func(io.Writer) error { return errors.New("disk full") })
	require.Error(t, err)

	entries, err := os.ReadDir(s.Dir())
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestStore_Open(t *testing.T) {
	s := newTestStore(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	art, err := s.Save("txt", func(w io.Writer) error {
		_, err := io.WriteString(w, "contenido")
		return err
	})
	require.NoError(t, err)

	f, err := s.Open(art.Filename)
	require.NoError(t, err)
	defer f.Close()
	data, err := io.ReadAll(f)
	require.NoError(t, err)
	assert.Equal(t, "contenido", string(data))

	for _, name := range []string{"", "../secret.txt", ".env", "missing.pdf", "sub/file.pdf"} {
		_, err := s.Open(name)
		require.Error(t, err, name)
		assert.ErrorIs(t, err, errx.ErrNotFound, name)
	}
}

func TestStore_ExistsRejectsDirsAndEmpty(t *testing.T) {
	s := newTestStore(t, time.Now())
	assert.False(t, s.Exists(""))
	assert.False(t, s.Exists(s.Dir()))
	assert.False(t, s.Exists(filepath.Join(s.Dir(), "nope.pdf")))
}

func TestStore_Read(t *testing.T) {
	s := newTestStore(t, time.Now())
	art, err := s.Save("txt", func(w io.Writer) error {
		_, err := io.WriteString(w, "hola")
		return err
	})
	require.NoError(t, err)

	data, err := s.Read(art.Path)
	require.NoError(t, err)
	assert.Equal(t, "hola", string(data))

	_, err = s.Read(filepath.Join(s.Dir(), "gone.pdf"))
	assert.ErrorIs(t, err, errx.ErrNotFound)
}
