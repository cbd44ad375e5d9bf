package legal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newIdentifier(t *testing.T) *Identifier {
	t.Helper()
	return NewIdentifier(zap.NewNop())
}

func TestIdentifyCourtDocumentWithEvidence(t *testing.T) {
	id := newIdentifier(t)

	finding := id.Identify("OBVODNÍ SOUD PRO PRAHU 4\n" +
		"sp. zn. 4 T 123/2023\n" +
		"ROZSUDEK\n" +
		"jménem republiky\n" +
		"samosoudce JUDr. Jan Novák")

	require.NotNil(t, finding)
	assert.Equal(t, TypeCourtDocument, finding.DocumentType)
	assert.Equal(t, 90, finding.Confidence)
	assert.True(t, finding.IsLegal)

	assert.Equal(t, "4 T 123/2023", finding.Metadata["case_number"])
	assert.Equal(t, "OBVODNÍ SOUD PRO PRAHU 4", finding.Metadata["court_name"])
	assert.Equal(t, "Rozsudek", finding.Metadata["document_subtype"])

	assert.Contains(t, finding.Tags, "soudní-spis")
	assert.Contains(t, finding.Tags, "právní")
	assert.Contains(t, finding.Tags, "rozsudek")
	assert.Contains(t, finding.Tags, "obvodní-soud")
	assert.Contains(t, finding.Tags, "cz")
}

func TestIdentifyBareCourtHeader(t *testing.T) {
	id := newIdentifier(t)

	finding := id.Identify("KRAJSKÝ SOUD V BRNĚ\nběžná korespondence bez příloh")

	require.NotNil(t, finding)
	assert.Equal(t, TypeCourtDocument, finding.DocumentType)
	assert.Equal(t, 60, finding.Confidence)
}

func TestIdentifyPoliceLegalVsAdmin(t *testing.T) {
	id := newIdentifier(t)

	t.Run("legal refs upgrade to police_legal", func(t *testing.T) {
		finding := id.Identify("POLICIE ČESKÉ REPUBLIKY\n" +
			"Krajské ředitelství policie hl. m. Prahy\n" +
			"podle § 158 odstavec 3 trestního řádu\n" +
			"č. j. KRPA-12345-67/TC-2023-001")

		require.NotNil(t, finding)
		assert.Equal(t, TypePoliceLegal, finding.DocumentType)
		assert.Equal(t, 90, finding.Confidence)
		assert.Contains(t, finding.Tags, "KRPA")
		assert.Equal(t, "KRPA-12345-67/TC-2023-001", finding.Metadata["case_number"])
		assert.Equal(t, "Krajské ředitelství policie hl. m. Prahy", finding.Metadata["police_department"])
	})

	t.Run("bare header is administrative", func(t *testing.T) {
		finding := id.Identify("POLICIE ČESKÉ REPUBLIKY\nOznámení o změně úředních hodin")

		require.NotNil(t, finding)
		assert.Equal(t, TypePoliceAdmin, finding.DocumentType)
		assert.Equal(t, 70, finding.Confidence)
		assert.Contains(t, finding.Tags, "administrativní")
	})
}

func TestIdentifyProsecutor(t *testing.T) {
	id := newIdentifier(t)

	finding := id.Identify("MĚSTSKÉ STÁTNÍ ZASTUPITELSTVÍ V PRAZE\n" +
		"vyrozumění o postoupení věci\n" +
		"státní zástupce Mgr. Eva Dvořáková")

	require.NotNil(t, finding)
	assert.Equal(t, TypeProsecutor, finding.DocumentType)
	assert.Equal(t, 90, finding.Confidence)
	assert.Contains(t, finding.Tags, "státní-zastupitelství")
	assert.Equal(t, "STÁTNÍ ZASTUPITELSTVÍ V PRAZE", finding.Metadata["prosecutor_name"])
}

func TestIdentifyGermanDocuments(t *testing.T) {
	id := newIdentifier(t)

	t.Run("court with case number", func(t *testing.T) {
		finding := id.Identify("Amtsgericht München\nAktenzeichen: 12 C 456/2023")

		require.NotNil(t, finding)
		assert.Equal(t, TypeGermanCourt, finding.DocumentType)
		assert.Equal(t, 90, finding.Confidence)
		assert.Contains(t, finding.Tags, "de")
		assert.Equal(t, "Amtsgericht München", finding.Metadata["court_name"])
	})

	t.Run("bare police keyword", func(t *testing.T) {
		finding := id.Identify("Die Polizei informiert über Verkehrskontrollen.")

		require.NotNil(t, finding)
		assert.Equal(t, TypeGermanPolice, finding.DocumentType)
		assert.Equal(t, 50, finding.Confidence)
	})
}

func TestIdentifyNonLegalText(t *testing.T) {
	id := newIdentifier(t)

	assert.Nil(t, id.Identify("Dobrý den, posílám zápis ze schůzky. S pozdravem"))
	assert.Nil(t, id.Identify(""))
}

func TestIdentifyStrayLegalMarker(t *testing.T) {
	id := newIdentifier(t)

	// a case-number shape without any institutional header
	finding := id.Identify("k věci 4 T 123/2023 se vyjádříme později")

	require.NotNil(t, finding)
	assert.Equal(t, TypeUnknown, finding.DocumentType)
	assert.Equal(t, 50, finding.Confidence)
	assert.False(t, finding.IsLegal)
}
