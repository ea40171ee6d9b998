package identity

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeIdentifier(t *testing.T) {
	cases := map[string]string{
		"Main Scene":  "Main_Scene",
		"3DLevel":     "_3DLevel",
		"a-b.c":       "a_b_c",
		"already_ok1": "already_ok1",
	}
	for in, want := range cases {
		assert.Equal(t, want, SanitizeIdentifier(in, "item"), in)
	}
	assert.Equal(t, "fallback", SanitizeIdentifier("   ", "fallback"))
	assert.Equal(t, "item", SanitizeIdentifier("", ""))
}

func TestToSnakeCase(t *testing.T) {
	assert.Equal(t, "player_controller", ToSnakeCase("PlayerController", "item"))
	assert.Equal(t, "my_scene", ToSnakeCase("My Scene", "item"))
	assert.Equal(t, "a_b", ToSnakeCase("a_B", "item"))
}

func TestStableIDDeterministic(t *testing.T) {
	a := StableID("Root/Child", "")
	b := StableID("Root/Child", "")
	require.Equal(t, a, b)
	assert.True(t, strings.HasPrefix(a, EntityIDPrefix))
	assert.Len(t, a, len(EntityIDPrefix)+16)

	assert.NotEqual(t, a, StableID("Root/Other", ""))
	assert.NotEqual(t, a, StableID("Root/Child", "GlobalObjectId_V1-2-abc"))
}

func TestMaterialIDDependsOnTextures(t *testing.T) {
	base := MaterialID("Wood", "assets/textures/wood.png", "", "", "")
	assert.Equal(t, base, MaterialID("Wood", "assets/textures/wood.png", "", "", ""))
	assert.NotEqual(t, base, MaterialID("Wood", "assets/textures/oak.png", "", "", ""))
	assert.True(t, strings.HasPrefix(base, "mat_"))
}

func TestEscapeCppString(t *testing.T) {
	assert.Equal(t, `a\\b\"c`, EscapeCppString(`a\b"c`))
}

func TestSafeDirName(t *testing.T) {
	assert.Equal(t, "My_Game_", SafeDirName(" My:Game? ", "X"))
	assert.Equal(t, "X", SafeDirName("  ", "X"))
}
