package quiz

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCatalog(t *testing.T) {
	c := DefaultCatalog()

	list := c.List()
	require.Len(t, list, 2)
	assert.Equal(t, "kop", list[0].Slug)
	assert.Equal(t, "transporte", list[1].Slug)

	for _, d := range list {
		assert.Len(t, d.Questions, 12, d.Slug)
		assert.Equal(t, 24, d.MaxScore(), d.Slug)
		assert.NoError(t, d.Validate(), d.Slug)
	}

	tr, ok := c.Lookup("transporte")
	require.True(t, ok)
	assert.Equal(t, RevealOnRequest, tr.Reveal)

	kop, ok := c.Lookup("kop")
	require.True(t, ok)
	assert.Equal(t, RevealOnComplete, kop.Reveal)

	_, ok = c.Lookup("missing")
	assert.False(t, ok)
}

func TestDiagnosticValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(d *Diagnostic)
	}{
		{name: "empty slug", mutate: func(d *Diagnostic) { d.Slug = " " }},
		{name: "empty service", mutate: func(d *Diagnostic) { d.ServiceLabel = "" }},
		{name: "no questions", mutate: func(d *Diagnostic) { d.Questions = nil }},
		{name: "duplicate id", mutate: func(d *Diagnostic) { d.Questions[1].ID = 1 }},
		{name: "id out of range", mutate: func(d *Diagnostic) { d.Questions[0].ID = 40 }},
		{name: "blank text", mutate: func(d *Diagnostic) { d.Questions[3].Text = "" }},
		{name: "unknown reveal", mutate: func(d *Diagnostic) { d.Reveal = "sometimes" }},
		{name: "bucket without badge", mutate: func(d *Diagnostic) { d.Buckets.Medium.Badge = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Transport()
			tt.mutate(&d)
			assert.Error(t, d.Validate())
		})
	}
}

const extraCatalog = `
diagnostics:
  - slug: limpieza
    service: Diagnóstico de Limpieza
    theme:
      title: ¿Qué tan limpio está tu sitio?
    questions:
      - id: 1
        text: ¿Hay rutinas documentadas?
      - id: 2
        text: ¿Se auditan semanalmente?
    buckets:
      low: {badge: Muy pobre, heading: Mal}
      medium: {badge: Regular, heading: Más o menos}
      high: {badge: Sólido, heading: Bien}
`

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(extraCatalog), 0o644))

	c, err := LoadFile(path, DefaultCatalog())
	require.NoError(t, err)
	assert.Len(t, c.List(), 3)

	d, ok := c.Lookup("limpieza")
	require.True(t, ok)
	assert.Equal(t, RevealOnRequest, d.Reveal)
	assert.Equal(t, 4, d.MaxScore())
	assert.Equal(t, "Sólido", d.Resolve(24).Badge)
}

func TestLoadFileErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadFile(filepath.Join(dir, "nope.yaml"), nil)
	assert.Error(t, err)

	empty := filepath.Join(dir, "empty.yaml")
	require.NoError(t, os.WriteFile(empty, []byte("diagnostics: []\n"), 0o644))
	_, err = LoadFile(empty, nil)
	assert.Error(t, err)

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("diagnostics:\n  - slug: x\n    questions: []\n"), 0o644))
	_, err = LoadFile(bad, nil)
	assert.Error(t, err)
}
