package event

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBus_DeliversNextTick(t *testing.T) {
	b := NewBus()
	var got []string
	Subscribe(b, func(m Message) { got = append(got, m.Text) })

	Emit(b, Message{Text: "hello"})

	b.DispatchAll()
	assert.Empty(t, got, "nothing is readable before the swap")

	b.SwapBuffers()
	b.DispatchAll()
	assert.Equal(t, []string{"hello"}, got)

	// the buffer is empty once delivered
	b.SwapBuffers()
	b.DispatchAll()
	assert.Equal(t, []string{"hello"}, got)
}

func TestBus_TypedRouting(t *testing.T) {
	b := NewBus()
	var music, scrolls int
	Subscribe(b, func(MusicChanged) { music++ })
	Subscribe(b, func(MapScrolled) { scrolls++ })

	Emit(b, MusicChanged{Track: 3})
	Emit(b, MapScrolled{DX: 1})
	Emit(b, MapScrolled{DY: 1})
	b.SwapBuffers()
	b.DispatchAll()

	assert.Equal(t, 1, music)
	assert.Equal(t, 2, scrolls)
}

func TestEmit_NilBus(t *testing.T) {
	assert.NotPanics(t, func() { Emit[Message](nil, Message{Text: "x"}) })
}
