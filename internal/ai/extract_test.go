package ai

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/xxxsen/normhelper/internal/pkg/apperr"
)

func TestExtractText_StrictWalk(t *testing.T) {
	cases := []struct {
		name string
		body string
		kind apperr.Kind
	}{
		{name: "empty body", body: "", kind: apperr.KindEmptyResponse},
		{name: "whitespace body", body: "  \n ", kind: apperr.KindEmptyResponse},
		{name: "json null", body: "null", kind: apperr.KindEmptyResponse},
		{name: "not json", body: "<html>bad gateway</html>", kind: apperr.KindUpstreamMalformed},
		{name: "no choices field", body: `{"id":"x"}`, kind: apperr.KindMissingChoices},
		{name: "null choices", body: `{"choices":null}`, kind: apperr.KindMissingChoices},
		{name: "empty choices", body: `{"choices":[]}`, kind: apperr.KindNoChoices},
		{name: "choice without message", body: `{"choices":[{}]}`, kind: apperr.KindMissingMessage},
		{name: "null message", body: `{"choices":[{"message":null}]}`, kind: apperr.KindMissingMessage},
		{name: "message without content", body: `{"choices":[{"message":{}}]}`, kind: apperr.KindMissingContent},
		{name: "null content", body: `{"choices":[{"message":{"content":null}}]}`, kind: apperr.KindMissingContent},
		{name: "blank content", body: `{"choices":[{"message":{"content":"  "}}]}`, kind: apperr.KindMissingContent},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ExtractText([]byte(tc.body))
			require.Error(t, err)
			require.True(t, apperr.IsKind(err, tc.kind), "got %v, want kind %s", err, tc.kind)
		})
	}
}

func TestExtractText_Success(t *testing.T) {
	text, err := ExtractText([]byte(`{"choices":[{"message":{"content":"  The answer (Section 4.2). "}}]}`))
	require.NoError(t, err)
	require.Equal(t, "The answer (Section 4.2).", text)
}

func TestExtractText_UsesFirstChoice(t *testing.T) {
	body := `{"choices":[{"message":{"content":"first"}},{"message":{"content":"second"}}]}`
	text, err := ExtractText([]byte(body))
	require.NoError(t, err)
	require.Equal(t, "first", text)
}
