package strategy

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.NoError(t, cfg.Validate())
	assert.True(t, cfg.Coherent())
	assert.False(t, cfg.AdaptiveLearning)
}

func TestValidateRejectsOutOfRange(t *testing.T) {
	cfg := DefaultConfig()
	cfg.BluffProbability = 1.5
	cfg.FoldThreshold = -0.1

	err := cfg.Validate()
	assert.ErrorContains(t, err, "bluff_probability")
	assert.ErrorContains(t, err, "fold_threshold")
}

func TestCoherent(t *testing.T) {
	cfg := DefaultConfig()
	cfg.CallThreshold = 0.7
	assert.NoError(t, cfg.Validate(), "ordering is not enforced")
	assert.False(t, cfg.Coherent())
}

func TestKindText(t *testing.T) {
	for _, k := range []Kind{Fold, Check, Call, Raise, AllIn} {
		text, err := k.MarshalText()
		assert.NoError(t, err)

		var back Kind
		assert.NoError(t, back.UnmarshalText(text))
		assert.Equal(t, k, back)
	}

	var k Kind
	assert.Error(t, k.UnmarshalText([]byte("SHOVE")))
	assert.Equal(t, "ALL_IN", AllIn.String())
	assert.Equal(t, "RAISE 40", Action{Kind: Raise, Amount: 40}.String())
}
