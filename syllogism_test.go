package mreasoner

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSyllogism_Premises(t *testing.T) {
	tests := []struct {
		syl    Syllogism
		p1, p2 string
	}{
		{"AA1", "All A are B", "All B are C"},
		{"AA2", "All B are A", "All C are B"},
		{"AA3", "All A are B", "All C are B"},
		{"AA4", "All B are A", "All B are C"},
		{"EI2", "No B are A", "Some C are B"},
		{"IO4", "Some B are A", "Some B are not C"},
		{"OE3", "Some A are not B", "No C are B"},
		{"OO4", "Some B are not A", "Some B are not C"},
	}
	for _, tt := range tests {
		t.Run(string(tt.syl), func(t *testing.T) {
			p1, p2, err := tt.syl.Premises()
			require.NoError(t, err)
			assert.Equal(t, tt.p1, p1)
			assert.Equal(t, tt.p2, p2)
		})
	}
}

// All 64 identifiers render, and the rendering is a pure function of the
// identifier.
func TestSyllogism_FullDomain(t *testing.T) {
	for _, q1 := range "AIEO" {
		for _, q2 := range "AIEO" {
			for fig := 1; fig <= 4; fig++ {
				syl := Syllogism(fmt.Sprintf("%c%c%d", q1, q2, fig))

				p1, p2, err := syl.Premises()
				require.NoError(t, err, "syllogism %s", syl)
				assert.NotEmpty(t, p1)
				assert.NotEmpty(t, p2)

				again1, again2, err := syl.Premises()
				require.NoError(t, err)
				assert.Equal(t, p1, again1)
				assert.Equal(t, p2, again2)
			}
		}
	}
}

func TestSyllogism_Invalid(t *testing.T) {
	for _, syl := range []Syllogism{"", "AA", "AA12", "XA1", "AX1", "AA5", "AA0", "aa1"} {
		t.Run(fmt.Sprintf("%q", string(syl)), func(t *testing.T) {
			_, _, err := syl.Premises()
			require.ErrorIs(t, err, ErrInvalidSyllogism)
		})
	}
}
