package event

import "github.com/wograld/server/internal/core/ecs"

// Notifications raised by the object engine for the presentation layer.
// Each carries the player object's id; the tag is kept so a consumer can
// tell whether the player record was recycled before delivery.

type MapScrolled struct {
	Player ecs.EntityID
	Tag    uint32
	DX, DY int
}

type MusicChanged struct {
	Player ecs.EntityID
	Tag    uint32
	Track  int
}

type MapEntered struct {
	Player ecs.EntityID
	Tag    uint32
	Map    string
	X, Y   int
}

// Message is a line of in-world text addressed to one player.
type Message struct {
	To   ecs.EntityID
	Tag  uint32
	Text string
}

// ItemChanged reports a stack change in something the player can see.
// Deleted is set when the item left the player's view entirely.
type ItemChanged struct {
	Player  ecs.EntityID
	Item    ecs.EntityID
	ItemTag uint32
	Nrof    uint32
	Deleted bool
}
