package render

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chantierplus/internal/models"
)

type memArtifacts map[string][]byte

func (m memArtifacts) Get(ref string) ([]byte, error) {
	b, ok := m[ref]
	if !ok {
		return nil, errors.New("missing")
	}
	return b, nil
}

func encoded(t *testing.T, asJPEG bool) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 40, 20))
	for x := 0; x < 40; x++ {
		img.Set(x, 10, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	if asJPEG {
		require.NoError(t, jpeg.Encode(&buf, img, nil))
	} else {
		require.NoError(t, png.Encode(&buf, img))
	}
	return buf.Bytes()
}

func ptr(s string) *string { return &s }

func regieSnapshot() Snapshot {
	return Snapshot{
		AvenantID:       uuid.MustParse("5b1f6c1e-3c1a-4a53-9d7e-2f7f5b0f0a11"),
		CompanyName:     "BTP Express",
		ChantierName:    "Villa Dupont",
		ChantierAddress: "12 rue de la Paix, Paris",
		Description:     "Reprise d'enduit façade nord",
		Mode:            models.ModeRegie,
		Hours:           decimal.NewNullDecimal(decimal.RequireFromString("3.5")),
		HourlyRate:      decimal.NewNullDecimal(decimal.RequireFromString("45")),
		TotalHT:         decimal.RequireFromString("157.5"),
		CreatedAt:       time.Date(2026, 3, 7, 14, 5, 0, 0, time.UTC),
	}
}

func TestRender(t *testing.T) {
	store := memArtifacts{
		"photo.jpg": encoded(t, true),
		"sig.png":   encoded(t, false),
		"bad.png":   []byte("not an image"),
	}

	t.Run("produces a pdf with two-decimal amounts and a dd/mm/yyyy date", func(t *testing.T) {
		r := New(store)
		r.compress = false
		out, err := r.Render(regieSnapshot())
		require.NoError(t, err)
		assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
		assert.Contains(t, string(out), "Total HT : 157.50")
		assert.Contains(t, string(out), "Taux horaire")
		assert.Contains(t, string(out), "45.00")
		assert.Contains(t, string(out), "3.50")
		assert.Contains(t, string(out), "07/03/2026")
	})

	t.Run("forfait shows the fixed amount only", func(t *testing.T) {
		s := regieSnapshot()
		s.Mode = models.ModeForfait
		s.Price = decimal.NewNullDecimal(decimal.RequireFromString("1500"))
		s.TotalHT = decimal.RequireFromString("1500")
		r := New(store)
		r.compress = false
		out, err := r.Render(s)
		require.NoError(t, err)
		assert.Contains(t, string(out), "1500.00")
		assert.NotContains(t, string(out), "Taux horaire")
	})

	t.Run("is deterministic for the same snapshot", func(t *testing.T) {
		s := regieSnapshot()
		s.PhotoRef = ptr("photo.jpg")
		s.SignatureRef = ptr("sig.png")
		a, err := New(store).Render(s)
		require.NoError(t, err)
		b, err := New(store).Render(s)
		require.NoError(t, err)
		assert.Equal(t, a, b)
	})

	t.Run("embeds images inline and tolerates missing ones", func(t *testing.T) {
		bare, err := New(store).Render(regieSnapshot())
		require.NoError(t, err)

		s := regieSnapshot()
		s.PhotoRef = ptr("photo.jpg")
		s.SignatureRef = ptr("sig.png")
		withImages, err := New(store).Render(s)
		require.NoError(t, err)
		assert.Greater(t, len(withImages), len(bare))

		s.PhotoRef = ptr("gone.jpg")
		s.SignatureRef = ptr("bad.png")
		missing, err := New(store).Render(s)
		require.NoError(t, err)
		assert.Equal(t, bare, missing)
	})

	t.Run("rejects an incomplete snapshot", func(t *testing.T) {
		_, err := New(store).Render(Snapshot{Mode: models.ModeForfait})
		assert.Error(t, err)
		s := regieSnapshot()
		s.Mode = "AUTRE"
		_, err = New(store).Render(s)
		assert.Error(t, err)
	})
}

func TestHelpers(t *testing.T) {
	id := uuid.MustParse("5b1f6c1e-3c1a-4a53-9d7e-2f7f5b0f0a11")
	assert.Equal(t, "avenant_5b1f6c1e-3c1a-4a53-9d7e-2f7f5b0f0a11.pdf", FileName(id))
	assert.Equal(t, "01/12/2025", FormatDate(time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "0.10", Money(decimal.RequireFromString("0.1")))
}
