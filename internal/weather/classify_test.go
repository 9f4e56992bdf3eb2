package weather

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify_KnownCodes(t *testing.T) {
	tests := []struct {
		code int
		want Condition
	}{
		{0, Condition{"Trời quang", "clear"}},
		{3, Condition{"U ám", "overcast"}},
		{45, Condition{"Sương mù", "fog"}},
		{61, Condition{"Mưa nhỏ", "rain"}},
		{80, Condition{"Mưa rào nhẹ", "showers"}},
		{95, Condition{"Dông", "thunderstorm"}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Classify(tt.code), "code %d", tt.code)
	}
}

func TestClassify_UnknownCodesAreTotal(t *testing.T) {
	for _, code := range []int{-1, 4, 44, 50, 100, 1000, -2147483648, 2147483647} {
		got := Classify(code)
		assert.Equal(t, Unknown, got, "code %d", code)
		assert.Equal(t, got, Classify(code), "Classify must be idempotent for %d", code)
	}
}

func TestClassify_TableHasNoEmptyEntries(t *testing.T) {
	for code, c := range wmoConditions {
		assert.NotEmpty(t, c.Description, "code %d description", code)
		assert.NotEmpty(t, c.Icon, "code %d icon", code)
		assert.NotEqual(t, Unknown, c, "code %d must not collide with Unknown", code)
	}
}
