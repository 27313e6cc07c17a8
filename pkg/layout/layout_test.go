package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keibalab/racefeed/pkg/feed"
)

func TestCentralKindCount(t *testing.T) {
	kinds := Kinds(feed.Central)
	assert.Len(t, kinds, 38)
}

func TestRegionalAddsOwnKinds(t *testing.T) {
	kinds := Kinds(feed.Regional)
	set := make(map[string]bool)
	for _, k := range kinds {
		set[k] = true
	}
	for _, k := range []string{"HA", "NU", "NC"} {
		assert.True(t, set[k], "regional kind %s missing", k)
	}
	assert.Len(t, kinds, 41)
}

func TestRegionalOnlyKindsInvisibleToCentral(t *testing.T) {
	for _, k := range []string{"HA", "NU", "NC"} {
		_, ok := Lookup(feed.Central, k)
		assert.False(t, ok, "kind %s must not resolve for the central feed", k)
	}
}

func TestRegionalOverridesDifferingLayouts(t *testing.T) {
	central, ok := Lookup(feed.Central, "SE")
	require.True(t, ok)
	reg, ok := Lookup(feed.Regional, "SE")
	require.True(t, ok)
	assert.NotEqual(t, central.Length, reg.Length)

	// Compatible layouts are shared.
	cRA, _ := Lookup(feed.Central, "RA")
	rRA, _ := Lookup(feed.Regional, "RA")
	assert.Same(t, cRA, rRA)
}

func TestEveryLayoutDeclaresKey(t *testing.T) {
	for _, f := range []feed.Feed{feed.Central, feed.Regional} {
		for _, kind := range Kinds(f) {
			l, ok := Lookup(f, kind)
			require.True(t, ok)
			assert.NotEmpty(t, l.Key, "kind %s has no primary key", kind)

			names := make(map[string]bool)
			for _, n := range l.FieldNames() {
				names[n] = true
			}
			for _, k := range l.Key {
				assert.True(t, names[k], "kind %s key column %s undeclared", kind, k)
			}
		}
	}
}

func TestFieldNamesUnique(t *testing.T) {
	for _, f := range []feed.Feed{feed.Central, feed.Regional} {
		for _, kind := range Kinds(f) {
			l, _ := Lookup(f, kind)
			seen := make(map[string]bool)
			for _, n := range l.FieldNames() {
				assert.False(t, seen[n], "kind %s duplicate field %s", kind, n)
				seen[n] = true
			}
		}
	}
}

func TestDuplicateNamesGetNumericSuffix(t *testing.T) {
	um, ok := Lookup(feed.Central, "UM")
	require.True(t, ok)

	names := um.FieldNames()
	has := func(n string) bool {
		for _, x := range names {
			if x == n {
				return true
			}
		}
		return false
	}
	assert.True(t, has("Ketto3InfoHansyokuNum"))
	assert.True(t, has("Ketto3InfoHansyokuNum2"))
	assert.True(t, has("Ketto3InfoBamei14"))
}

func TestFieldsWithinRecordLength(t *testing.T) {
	for _, f := range []feed.Feed{feed.Central, feed.Regional} {
		for _, kind := range Kinds(f) {
			l, _ := Lookup(f, kind)
			for _, fd := range l.Fields {
				assert.LessOrEqual(t, fd.Off+fd.Len, l.Length,
					"kind %s field %s out of bounds", kind, fd.Name)
			}
			for _, b := range l.Blocks {
				assert.LessOrEqual(t, b.Off+b.Stride*b.Count, l.Length,
					"kind %s block out of bounds", kind)
			}
			for _, sub := range l.Sub {
				for _, b := range sub.Blocks {
					assert.LessOrEqual(t, b.Off+b.Stride*b.Count, sub.Length,
						"kind %s sub %s block out of bounds", kind, sub.Kind)
				}
			}
		}
	}
}

func TestOddsCombinatorialCounts(t *testing.T) {
	// Row cardinality mirrors the combination key: single, paired,
	// triple.
	o1, _ := Lookup(feed.Central, "O1")
	o2, _ := Lookup(feed.Central, "O2")
	o4, _ := Lookup(feed.Central, "O4")
	o5, _ := Lookup(feed.Central, "O5")
	o6, _ := Lookup(feed.Central, "O6")

	assert.Equal(t, 28, o1.Blocks[0].Count)
	assert.Equal(t, 153, o2.Blocks[0].Count)  // 18 choose 2
	assert.Equal(t, 306, o4.Blocks[0].Count)  // 18 permute 2
	assert.Equal(t, 816, o5.Blocks[0].Count)  // 18 choose 3
	assert.Equal(t, 4896, o6.Blocks[0].Count) // 18 permute 3
}

func TestO1CarriesAllThreeFamilies(t *testing.T) {
	o1, ok := Lookup(feed.Central, "O1")
	require.True(t, ok)
	assert.Equal(t, 962, o1.Length)

	// Win and place arrays run in parallel per runner.
	require.Len(t, o1.Blocks, 2)
	assert.Equal(t, 43, o1.Blocks[0].Off)
	assert.Equal(t, 8, o1.Blocks[0].Stride)
	assert.Equal(t, 267, o1.Blocks[1].Off)
	assert.Equal(t, 12, o1.Blocks[1].Stride)
	assert.Equal(t, o1.Blocks[0].Count, o1.Blocks[1].Count)

	// The bracket-quinella family is a sub layout with its own pair key.
	require.Len(t, o1.Sub, 1)
	w := o1.Sub[0]
	assert.Equal(t, "O1W", w.Kind)
	require.Len(t, w.Blocks, 1)
	assert.Equal(t, 603, w.Blocks[0].Off)
	assert.Equal(t, 9, w.Blocks[0].Stride)
	assert.Equal(t, 36, w.Blocks[0].Count)
	assert.Contains(t, w.Key, "Kumi")
}

func TestResolveFindsSubFamilies(t *testing.T) {
	w, ok := Resolve(feed.Central, "O1W")
	require.True(t, ok)
	assert.Equal(t, "O1W", w.Kind)

	// Sub kinds carry no wire tag of their own.
	_, ok = Lookup(feed.Central, "O1W")
	assert.False(t, ok)

	kinds := Kinds(feed.Central)
	for _, k := range kinds {
		assert.NotEqual(t, "O1W", k)
	}
}
