package catalog

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrice_Coercion(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{`5`, 5},
		{`19.99`, 19.99},
		{`"7.5"`, 7.5},
		{`" 3 "`, 3},
		{`"abc"`, 0},
		{`true`, 0},
		{`{}`, 0},
		{`[]`, 0},
		{`-2`, 0},
		{`"NaN"`, 0},
		{`"Inf"`, 0},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			var patch ProductPatch
			require.NoError(t, json.Unmarshal([]byte(`{"price":`+tt.in+`}`), &patch))
			require.NotNil(t, patch.Price)
			assert.Equal(t, tt.want, float64(*patch.Price))
		})
	}
}

func TestProductPatch_AbsentPriceIsNil(t *testing.T) {
	var patch ProductPatch
	require.NoError(t, json.Unmarshal([]byte(`{"name":"x"}`), &patch))
	assert.Nil(t, patch.Price)
	assert.Equal(t, 0.0, patch.Product().Price)
}

func TestProductPatch_ApplyMergesOnlyPresentFields(t *testing.T) {
	base := Product{
		ID:          "4",
		Name:        "Lamp",
		Description: "Desk lamp",
		Price:       20,
		Category:    "Home",
		PictureURL:  "http://lamp",
	}

	var patch ProductPatch
	require.NoError(t, json.Unmarshal([]byte(`{"id":"99","price":10}`), &patch))

	got := patch.Apply(base)

	want := base
	want.Price = 10
	assert.Equal(t, want, got)
}

func TestProductPatch_EmptyStringOverrides(t *testing.T) {
	var patch ProductPatch
	require.NoError(t, json.Unmarshal([]byte(`{"description":""}`), &patch))

	got := patch.Apply(Product{ID: "1", Description: "old"})
	assert.Equal(t, "", got.Description)
}

func TestProduct_JSONFieldNames(t *testing.T) {
	raw, err := json.Marshal(Product{ID: "1", Name: "n", PictureURL: "u"})
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(raw, &m))

	assert.Contains(t, m, "pictureUrl")
	assert.NotContains(t, m, "status", "empty status is omitted")
	assert.Equal(t, "1", m["id"])
}
