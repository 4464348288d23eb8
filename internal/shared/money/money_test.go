package money

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormat(t *testing.T) {
	assert.Equal(t, "₹0", Format(0))
	assert.Equal(t, "₹735", Format(735))
	assert.Equal(t, "₹14,700", Format(14700))
	assert.Equal(t, "₹1,250,000", Format(1250000))
}
