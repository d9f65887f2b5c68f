package dimension

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/injurylens/internal/store"
)

func TestBuiltinSelectors(t *testing.T) {
	reg := New()
	rec := &store.Record{
		Diagnosis: "fracture",
		BodyPart:  "wrist",
		Location:  "home",
		Race:      "white",
		Sex:       store.SexFemale,
	}

	cases := map[string]string{
		"diagnosis": "fracture",
		"body_part": "wrist",
		"location":  "home",
		"race":      "white",
		"sex":       "female",
	}
	for name, want := range cases {
		fn, ok := reg.Lookup(name)
		require.True(t, ok, "selector %q must be registered", name)
		assert.Equal(t, want, fn(rec))
	}
}

func TestValidate(t *testing.T) {
	reg := New()

	assert.NoError(t, reg.Validate("diagnosis", "location"))

	err := reg.Validate("diagnosis", "favourite_colour")
	require.Error(t, err)
	assert.ErrorContains(t, err, "unknown dimension")
}

func TestNamesSorted(t *testing.T) {
	reg := New()
	names := reg.Names()
	assert.Equal(t, []string{"body_part", "diagnosis", "location", "race", "sex"}, names)
}
