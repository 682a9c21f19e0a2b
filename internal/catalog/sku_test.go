package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateSKU(t *testing.T) {
	tests := []struct {
		product, shop, want string
	}{
		{"Phone Case", "Gadget Hub", "GAD-PHO-1A2B3C4D"},
		{"TV", "My Shop", "MYS-TV-1A2B3C4D"},
		{"  smart watch", "ab", "AB-SMA-1A2B3C4D"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, GenerateSKU(tt.product, tt.shop, "1A2B3C4D"))
	}
}
