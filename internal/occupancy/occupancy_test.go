package occupancy

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeSTM(t *testing.T) {
	assert.Equal(t, ManySeatsAvailable, Normalize(1, STM))
	assert.Equal(t, FewSeatsAvailable, Normalize(2, STM))
	assert.Equal(t, StandingRoomOnly, Normalize(3, STM))
	assert.Equal(t, Full, Normalize(4, STM))
	assert.Equal(t, Unknown, Normalize(0, STM))
	assert.Equal(t, Unknown, Normalize(5, STM))
}

func TestNormalizeExo(t *testing.T) {
	assert.Equal(t, ManySeatsAvailable, Normalize(1, Exo))
	assert.Equal(t, FewSeatsAvailable, Normalize(2, Exo))
	assert.Equal(t, StandingRoomOnly, Normalize(3, Exo))
	assert.Equal(t, Full, Normalize(4, Exo))
	assert.Equal(t, Unknown, Normalize(6, Exo))
}

func TestNormalizeStandard(t *testing.T) {
	assert.Equal(t, NotAcceptingPassengers, Normalize(6, Standard))
	assert.Equal(t, Full, Normalize(5, Standard))
	assert.Equal(t, StandingRoomOnly, Normalize(4, Standard))
}

func TestNormalizeIsTotal(t *testing.T) {
	valid := map[Level]bool{
		ManySeatsAvailable: true, FewSeatsAvailable: true, StandingRoomOnly: true,
		Full: true, NotAcceptingPassengers: true, Unknown: true,
	}
	for _, agency := range []Agency{STM, Exo, Standard, Agency("nobody")} {
		for code := int32(-3); code <= 10; code++ {
			assert.True(t, valid[Normalize(code, agency)], "agency %s code %d", agency, code)
		}
	}
	for _, s := range []string{"", "FULL", "full", "Near_Empty", "Light", "Medium", "7", "abc", "🚍", "99999999999"} {
		assert.NotPanics(t, func() {
			assert.True(t, valid[NormalizeString(s, Exo)])
		})
	}
}

func TestNormalizeString(t *testing.T) {
	assert.Equal(t, ManySeatsAvailable, NormalizeString("Near_Empty", Exo))
	assert.Equal(t, FewSeatsAvailable, NormalizeString("light", Exo))
	assert.Equal(t, Full, NormalizeString(" 4 ", STM))
	assert.Equal(t, NotAcceptingPassengers, NormalizeString("NOT_ACCEPTING_PASSENGERS", STM))
	assert.Equal(t, Unknown, NormalizeString("crowded", STM))
	assert.Equal(t, Unknown, NormalizeString("99999999999", STM))
}

func TestNormalizer(t *testing.T) {
	n := NewNormalizer(Exo)
	code := int32(3)

	assert.Equal(t, Exo, n.Agency())
	assert.Equal(t, StandingRoomOnly, n.Normalize(&code))
	assert.Equal(t, Unknown, n.Normalize(nil))
}
