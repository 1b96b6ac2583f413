package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTasteKeywordRefs_Scan(t *testing.T) {
	tests := []struct {
		name  string
		input interface{}
		want  TasteKeywordRefs
	}{
		{"nil", nil, TasteKeywordRefs{}},
		{"bytes", []byte(`[{"id":"chocolate"},{"id":"vanilla","label":"바닐라"}]`), TasteKeywordRefs{{ID: "chocolate"}, {ID: "vanilla", Label: "바닐라"}}},
		{"drops non objects", `["chocolate", {"id":" mint "}, 3]`, TasteKeywordRefs{{ID: "mint"}}},
		{"not an array", `{"id":"chocolate"}`, TasteKeywordRefs{}},
		{"garbage", `not json`, TasteKeywordRefs{}},
		{"unsupported type", 42, TasteKeywordRefs{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var refs TasteKeywordRefs
			require.NoError(t, refs.Scan(tt.input))
			assert.Equal(t, tt.want, refs)
		})
	}
}

func TestTasteKeywordRefs_Value(t *testing.T) {
	v, err := TasteKeywordRefs(nil).Value()
	require.NoError(t, err)
	assert.Equal(t, "[]", v)

	v, err = TasteKeywordRefs{{ID: "chocolate"}}.Value()
	require.NoError(t, err)
	assert.Equal(t, `[{"id":"chocolate"}]`, v)
}

func TestTasteKeywordRefs_IDs(t *testing.T) {
	refs := TasteKeywordRefs{{ID: "a"}, {ID: ""}, {ID: "b"}, {ID: "a"}}
	assert.Equal(t, []string{"a", "b"}, refs.IDs())
}

func TestFlavorItem_Title(t *testing.T) {
	item := FlavorItem{Brand: "Myprotein", ProductName: "Impact Whey", FlavorName: "Chocolate"}
	assert.Equal(t, "Myprotein Impact Whey Chocolate", item.Title())
	assert.Equal(t, "flavor_search_view", item.TableName())
}
