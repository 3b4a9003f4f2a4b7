package main

import (
	"slices"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestArrangement(t *testing.T, words ...string) *Arrangement {
	t.Helper()
	if len(words) == 0 {
		words = []string{"HELLO", "WORLD", "REACT"}
	}
	return NewArrangement(words, testRand(11))
}

// placeLetters drops the given letters into consecutive slots, taking each
// one from the bank.
func placeLetters(t *testing.T, a *Arrangement, letters string) {
	t.Helper()
	for i, r := range letters {
		l := string(r)
		idx := slices.Index(a.View().Bank, l)
		require.GreaterOrEqual(t, idx, 0, "letter %s not in bank", l)
		require.True(t, a.Place(BankPayload(l, idx), i), "place %s into slot %d", l, i)
	}
}

// letterMultiset returns every letter held by the bank and slots, sorted.
func letterMultiset(v ArrangementView) []string {
	all := slices.Clone(v.Bank)
	for _, s := range v.Slots {
		if s.Letter != nil {
			all = append(all, *s.Letter)
		}
	}
	slices.Sort(all)
	return all
}

func wordMultiset(word string) []string {
	l := strings.Split(word, "")
	slices.Sort(l)
	return l
}

func TestNewArrangement(t *testing.T) {
	a := newTestArrangement(t)
	v := a.View()

	assert.Equal(t, "HELLO", v.Word)
	require.Len(t, v.Slots, 5)
	for i, s := range v.Slots {
		assert.Equal(t, "slot-"+string(rune('0'+i)), s.ID)
		assert.Nil(t, s.Letter)
	}
	assert.Equal(t, wordMultiset("HELLO"), letterMultiset(v))
	assert.Equal(t, ResultNone, v.Result)
}

func TestVerifyCorrectWord(t *testing.T) {
	a := newTestArrangement(t)
	placeLetters(t, a, "HELLO")

	assert.Equal(t, "HELLO", a.Assembled())
	assert.Equal(t, ResultCorrect, a.Verify())
	assert.Empty(t, a.View().Bank)
}

func TestVerifyWrongPosition(t *testing.T) {
	a := newTestArrangement(t)
	placeLetters(t, a, "HELOL")
	assert.Equal(t, ResultError, a.Verify())

	// Swapping the last two letters through the bank fixes the word.
	require.True(t, a.ReturnToBank(SlotPayload("O", 3)))
	require.True(t, a.Place(SlotPayload("L", 4), 3))
	idx := slices.Index(a.View().Bank, "O")
	require.True(t, a.Place(BankPayload("O", idx), 4))
	assert.Equal(t, ResultCorrect, a.Verify())
}

func TestVerifyIncomplete(t *testing.T) {
	a := newTestArrangement(t)
	assert.Equal(t, ResultError, a.Verify())

	placeLetters(t, a, "HELL")
	assert.Equal(t, ResultError, a.Verify())
}

func TestPlaceOnOccupiedSlotIsNoop(t *testing.T) {
	a := newTestArrangement(t)
	placeLetters(t, a, "H")
	before := a.View()

	idx := slices.Index(before.Bank, "E")
	assert.False(t, a.Place(BankPayload("E", idx), 0))

	after := a.View()
	assert.Equal(t, before, after)
	assert.Equal(t, wordMultiset("HELLO"), letterMultiset(after))
}

func TestPlaceRejectsMismatchedPayload(t *testing.T) {
	a := newTestArrangement(t)
	bank := a.View().Bank

	wrong := "Z"
	assert.False(t, a.Place(BankPayload(wrong, 0), 0), "letter not at bank index")
	assert.False(t, a.Place(BankPayload(bank[0], len(bank)), 0), "bank index out of range")
	assert.False(t, a.Place(BankPayload(bank[0], 0), 9), "slot out of range")
	assert.False(t, a.Place(SlotPayload("H", 1), 0), "source slot is empty")
	assert.Equal(t, wordMultiset("HELLO"), letterMultiset(a.View()))
}

func TestPlaceMovesBetweenSlots(t *testing.T) {
	a := newTestArrangement(t)
	placeLetters(t, a, "H")

	require.True(t, a.Place(SlotPayload("H", 0), 4))
	v := a.View()
	assert.Nil(t, v.Slots[0].Letter)
	require.NotNil(t, v.Slots[4].Letter)
	assert.Equal(t, "H", *v.Slots[4].Letter)

	assert.False(t, a.Place(SlotPayload("H", 4), 4), "dropping on its own slot")
}

func TestReturnToBank(t *testing.T) {
	a := newTestArrangement(t)
	placeLetters(t, a, "HE")

	require.True(t, a.ReturnToBank(SlotPayload("E", 1)))
	v := a.View()
	assert.Nil(t, v.Slots[1].Letter)
	assert.Equal(t, "E", v.Bank[len(v.Bank)-1], "returned letter is appended")

	assert.False(t, a.ReturnToBank(BankPayload(v.Bank[0], 0)), "bank source is ignored")
	assert.False(t, a.ReturnToBank(SlotPayload("E", 1)), "slot is already empty")
}

func TestMutationResetsResult(t *testing.T) {
	a := newTestArrangement(t)
	placeLetters(t, a, "HELLO")
	a.Verify()

	require.True(t, a.ReturnToBank(SlotPayload("O", 4)))
	assert.Equal(t, ResultNone, a.View().Result)
}

func TestClear(t *testing.T) {
	a := newTestArrangement(t)
	placeLetters(t, a, "HEL")
	a.Verify()

	a.Clear()
	v := a.View()
	for _, s := range v.Slots {
		assert.Nil(t, s.Letter)
	}
	assert.Len(t, v.Bank, 5)
	assert.Equal(t, wordMultiset("HELLO"), letterMultiset(v))
	assert.Equal(t, ResultNone, v.Result)
}

func TestNextCyclesWords(t *testing.T) {
	a := newTestArrangement(t)
	placeLetters(t, a, "HE")

	a.Next()
	v := a.View()
	assert.Equal(t, "WORLD", v.Word)
	assert.Equal(t, 1, v.WordIndex)
	assert.Equal(t, wordMultiset("WORLD"), letterMultiset(v))
	for _, s := range v.Slots {
		assert.Nil(t, s.Letter)
	}

	a.Next()
	a.Next()
	assert.Equal(t, "HELLO", a.Target())
}

func TestConservationUnderRandomOperations(t *testing.T) {
	rng := testRand(99)
	a := newTestArrangement(t, "BANANA")

	for step := range 2000 {
		v := a.View()
		switch rng.IntN(4) {
		case 0:
			if len(v.Bank) > 0 {
				i := rng.IntN(len(v.Bank))
				a.Place(BankPayload(v.Bank[i], i), rng.IntN(len(v.Slots)))
			}
		case 1:
			from := rng.IntN(len(v.Slots))
			if l := v.Slots[from].Letter; l != nil {
				a.Place(SlotPayload(*l, from), rng.IntN(len(v.Slots)))
			}
		case 2:
			from := rng.IntN(len(v.Slots))
			if l := v.Slots[from].Letter; l != nil {
				a.ReturnToBank(SlotPayload(*l, from))
			}
		case 3:
			if rng.IntN(10) == 0 {
				a.Clear()
			}
		}
		require.Equal(t, wordMultiset("BANANA"), letterMultiset(a.View()), "step %d", step)
	}
}

func TestViewIsACopy(t *testing.T) {
	a := newTestArrangement(t)
	placeLetters(t, a, "H")

	v := a.View()
	*v.Slots[0].Letter = "Z"
	v.Bank[0] = "Z"

	again := a.View()
	assert.Equal(t, "H", *again.Slots[0].Letter)
	assert.Equal(t, wordMultiset("HELLO"), letterMultiset(again))
}
