package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidatePercent(t *testing.T) {
	assert.NoError(t, validatePercent("0"))
	assert.NoError(t, validatePercent("70"))
	assert.NoError(t, validatePercent("100"))
	assert.NoError(t, validatePercent("87.5"))

	assert.Error(t, validatePercent("-1"))
	assert.Error(t, validatePercent("101"))
	assert.Error(t, validatePercent("seventy"))
	assert.Error(t, validatePercent(""))
}
