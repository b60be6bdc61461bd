package flip

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProtocolFee(t *testing.T) {
	tests := []struct {
		name   string
		pot    int64
		feeBps int64
		want   int64
	}{
		{"five percent of 200", 200, 500, 10},
		{"zero fee", 200000, 0, 0},
		{"truncates toward zero", 199, 500, 9},
		{"max fee on large pot", 1000000, 500, 50000},
		{"small pot rounds to zero", 19, 500, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ProtocolFee(tt.pot, tt.feeBps))
		})
	}
}

func TestWinnerPayout(t *testing.T) {
	// 200-unit pot at 500 bps: fee 10, each of the single winner gets 190.
	assert.Equal(t, int64(190), WinnerPayout(200, 10, 1))

	// Uneven division drops the remainder as dust.
	assert.Equal(t, int64(63), WinnerPayout(200, 10, 3))
}

func TestPayoutNeverExceedsPot(t *testing.T) {
	for _, teamSize := range []int{1, 2, 3, 4, 5} {
		for _, bet := range []int64{1000, 1001, 33333} {
			pot := bet * int64(teamSize) * 2
			fee := ProtocolFee(pot, MaxFeeBps)
			payout := WinnerPayout(pot, fee, teamSize)
			assert.LessOrEqual(t, payout*int64(teamSize)+fee, pot,
				"teamSize=%d bet=%d", teamSize, bet)
		}
	}
}
