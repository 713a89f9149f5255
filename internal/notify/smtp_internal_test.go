package notify

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildMsg(t *testing.T) {
	mm, err := buildMsg("ChantierPlus", "noreply@chantierplus.fr", Message{
		To:      "client@example.fr",
		Subject: "Avenant - Villa",
		HTML:    "<p>Bonjour</p>",
		Attachments: []Attachment{
			{Filename: "avenant_1.pdf", Data: []byte("%PDF-1.3"), ContentType: "application/pdf"},
		},
	})
	require.NoError(t, err)

	var buf bytes.Buffer
	_, err = mm.WriteTo(&buf)
	require.NoError(t, err)
	raw := buf.String()
	assert.Contains(t, raw, "client@example.fr")
	assert.Contains(t, raw, "ChantierPlus")
	assert.Contains(t, raw, "<noreply@chantierplus.fr>")
	assert.Contains(t, raw, "Subject: Avenant - Villa")
	assert.Contains(t, raw, "text/html")
	assert.Contains(t, raw, "avenant_1.pdf")
	assert.Contains(t, raw, "application/pdf")
}

func TestBuildMsgRejectsBadAddress(t *testing.T) {
	_, err := buildMsg("ChantierPlus", "noreply@chantierplus.fr", Message{To: "not an address"})
	assert.Error(t, err)
}
