package regulation_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sevigo/stairreg/regulation"
)

func TestMergeString(t *testing.T) {
	testCases := []struct {
		model, fallback, def, want string
	}{
		{"住宅建筑规范", "其他", "未知规范", "住宅建筑规范"},
		{"", "其他", "未知规范", "其他"},
		{"", "", "未知规范", "未知规范"},
		{"", "", "", ""},
	}
	for _, tc := range testCases {
		assert.Equal(t, tc.want, regulation.MergeString(tc.model, tc.fallback, tc.def))
	}
}

func decode(t *testing.T, raw string) *regulation.Response {
	t.Helper()
	resp, err := regulation.DecodeResponse(raw)
	require.NoError(t, err)
	return resp
}

func TestMerge(t *testing.T) {
	t.Run("empty model code uses fallback", func(t *testing.T) {
		resp := decode(t, `{"regulation_name": "饮食建筑设计标准", "regulation_code": ""}`)
		reg := regulation.Merge(resp, regulation.Fallback{Name: "ignored", Code: "JGJ 64-2017"})
		assert.Equal(t, "饮食建筑设计标准", reg.RegulationName)
		assert.Equal(t, "JGJ 64-2017", reg.RegulationCode)
	})

	t.Run("sentinel name when nothing found", func(t *testing.T) {
		reg := regulation.Merge(decode(t, `{}`), regulation.Fallback{})
		assert.Equal(t, regulation.UnknownRegulationName, reg.RegulationName)
		assert.Empty(t, reg.RegulationCode)
		assert.Nil(t, reg.RiserHeight)
		assert.Nil(t, reg.TreadDepth)
		assert.Nil(t, reg.TwoRPlusG)
		assert.Nil(t, reg.LandingLength)
	})

	t.Run("nil response", func(t *testing.T) {
		reg := regulation.Merge(nil, regulation.Fallback{Code: "GB 1-2000"})
		assert.Equal(t, "GB 1-2000", reg.RegulationCode)
	})

	t.Run("null text members become empty strings", func(t *testing.T) {
		resp := decode(t, `{"riser_height": {"max_value": 0.175, "unit": null, "source": null, "full_text": null}}`)
		reg := regulation.Merge(resp, regulation.Fallback{})
		require.NotNil(t, reg.RiserHeight)
		assert.Equal(t, "", reg.RiserHeight.Source)
		assert.Equal(t, "", reg.RiserHeight.FullText)
		assert.Equal(t, "", reg.RiserHeight.Unit)
		assert.Nil(t, reg.RiserHeight.MinValue)
		require.NotNil(t, reg.RiserHeight.MaxValue)
		assert.InDelta(t, 0.175, *reg.RiserHeight.MaxValue, 1e-9)
	})

	t.Run("missing unit defaults to meters", func(t *testing.T) {
		resp := decode(t, `{"two_r_plus_g": {"min_value": 0.54, "max_value": "0.62"}}`)
		reg := regulation.Merge(resp, regulation.Fallback{})
		require.NotNil(t, reg.TwoRPlusG)
		assert.Equal(t, regulation.DefaultUnit, reg.TwoRPlusG.Unit)
		assert.Empty(t, reg.TwoRPlusG.Source)
		assert.InDelta(t, 0.62, *reg.TwoRPlusG.MaxValue, 1e-9)
	})
}
