package settings

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyCodeFor_ClosedAlphabetIsBijective(t *testing.T) {
	seen := make(map[KeyCode]rune)
	for _, c := range KeyAlphabet {
		code, err := KeyCodeFor(c)
		require.NoError(t, err, "char %q", c)

		prev, dup := seen[code]
		require.False(t, dup, "chars %q and %q share code 0x%02x", prev, c, code)
		seen[code] = c

		back, err := CharFor(code)
		require.NoError(t, err)
		assert.Equal(t, c, back)
	}
	assert.Len(t, seen, 40)
}

func TestKeyCodeFor_KnownCodes(t *testing.T) {
	cases := map[rune]KeyCode{
		'w': 0x57,
		'W': 0x57,
		'a': 0x41,
		'0': 0x30,
		'9': 0x39,
		'^': KeyUp,
		',': KeyDown,
		'<': KeyLeft,
		'>': KeyRight,
	}
	for c, want := range cases {
		got, err := KeyCodeFor(c)
		require.NoError(t, err)
		assert.Equal(t, want, got, "char %q", c)
	}
}

func TestKeyCodeFor_RejectsOutsideAlphabet(t *testing.T) {
	for _, c := range []rune{' ', '!', '.', 'ñ', '\n', 'v' + 100, '\u212a', '\u0130', 'Ｗ'} {
		_, err := KeyCodeFor(c)
		assert.ErrorIs(t, err, ErrUnknownKey, "char %q", c)
	}
	_, err := CharFor(0x70)
	assert.ErrorIs(t, err, ErrUnknownKey)
}

func TestParseAction(t *testing.T) {
	a, ok := ParseAction("strafe_l")
	require.True(t, ok)
	assert.Equal(t, StrafeLeft, a)

	a, ok = ParseAction("RIGHT")
	require.True(t, ok)
	assert.Equal(t, StrafeRight, a)

	_, ok = ParseAction("jump")
	assert.False(t, ok)
}

func TestKeyBinding_JSONRoundTrip(t *testing.T) {
	in := Defaults().KeyMap()
	raw, err := json.Marshal(in)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"action":"strafe_r"`)

	var out []KeyBinding
	require.NoError(t, json.Unmarshal(raw, &out))
	assert.Equal(t, in, out)

	var bad KeyBinding
	assert.ErrorIs(t, json.Unmarshal([]byte(`{"action":"jump","key_code":65}`), &bad), ErrInvalidValue)
}
