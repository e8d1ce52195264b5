package detect

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fundsight/casextract/internal/cas"
	"github.com/fundsight/casextract/internal/document"
)

func docFromLines(pages ...[]string) *document.Document {
	doc := &document.Document{}
	for i, lines := range pages {
		page := document.Page{Number: i + 1}
		for j, text := range lines {
			page.Lines = append(page.Lines,
				document.NewLine(float64(700-10*j), document.Word{Text: text, X: 40, W: 200}))
		}
		doc.Pages = append(doc.Pages, page)
	}
	return doc
}

func TestDetect(t *testing.T) {
	// Detection must be total: every hand-labeled document classifies to
	// its label, documents matching neither registrar are rejected.
	corpus := []struct {
		name  string
		doc   *document.Document
		want  cas.Registrar
		isErr bool
	}{
		{
			name: "CAMS by company name",
			doc: docFromLines([]string{
				"Consolidated Account Statement",
				"Computer Age Management Services Limited",
			}),
			want: cas.RegistrarCAMS,
		},
		{
			name: "CAMS by statement title",
			doc: docFromLines([]string{
				"CAMS - Consolidated Account Statement",
				"01-Jan-2023 To 30-Jun-2023",
			}),
			want: cas.RegistrarCAMS,
		},
		{
			name: "NSDL by depository name",
			doc: docFromLines([]string{
				"National Securities Depository Limited",
				"Statement for the period",
			}),
			want: cas.RegistrarNSDL,
		},
		{
			name: "NSDL by statement title",
			doc: docFromLines([]string{
				"NSDL Consolidated Account Statement",
			}),
			want: cas.RegistrarNSDL,
		},
		{
			name: "fingerprint on second page still detects",
			doc: docFromLines(
				[]string{"Statement of holdings"},
				[]string{"CAMS Financial Information Services Private Limited"},
			),
			want: cas.RegistrarCAMS,
		},
		{
			name:  "neither registrar",
			doc:   docFromLines([]string{"Some Random Bank", "Account Statement"}),
			isErr: true,
		},
		{
			name: "both registrars is ambiguous",
			doc: docFromLines([]string{
				"Computer Age Management Services Limited",
				"National Securities Depository Limited",
			}),
			isErr: true,
		},
	}

	for _, tc := range corpus {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Detect(tc.doc)
			if tc.isErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, cas.ErrUnsupportedFormat))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestDetectIgnoresLaterPages(t *testing.T) {
	// Fingerprints beyond the scanned page window must not classify.
	doc := docFromLines(
		[]string{"page one"},
		[]string{"page two"},
		[]string{"Computer Age Management Services Limited"},
	)
	_, err := Detect(doc)
	require.Error(t, err)
	assert.True(t, errors.Is(err, cas.ErrUnsupportedFormat))
}
