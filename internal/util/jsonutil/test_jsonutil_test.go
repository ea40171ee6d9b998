package jsonutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Zeta  string `json:"zeta"`
	Alpha int    `json:"alpha"`
}

func TestMarshalNoEscapeIndentKeepsOrderAndHTML(t *testing.T) {
	out, err := MarshalNoEscapeIndent(sample{Zeta: "a<b>&c", Alpha: 1})
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"zeta\": \"a<b>&c\",\n  \"alpha\": 1\n}\n", string(out))
}

func TestUnmarshalStrict(t *testing.T) {
	var s sample
	require.NoError(t, UnmarshalStrict([]byte(`{"zeta":"x","alpha":2}`), &s))
	assert.Equal(t, sample{Zeta: "x", Alpha: 2}, s)
	assert.Error(t, UnmarshalStrict([]byte(`{"zeta":"x","beta":2}`), &s))
	assert.Error(t, UnmarshalStrict([]byte(`{"zeta":"x"} {}`), &s))
}
