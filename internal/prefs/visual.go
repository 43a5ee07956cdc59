package prefs

// VisualSet names a sequence of emoji that fill in as a session progresses.
type VisualSet string

const (
	Moon    VisualSet = "moon"
	Plant   VisualSet = "plant"
	Chicken VisualSet = "chicken"
	Stars   VisualSet = "stars"
)

// VisualSets lists the sets in cycling order.
var VisualSets = []VisualSet{Moon, Plant, Chicken, Stars}

var visualSets = map[VisualSet][]string{
	Moon:    {"🌑", "🌒", "🌓", "🌔", "🌕"},
	Plant:   {"🌱", "🌿", "🌳"},
	Chicken: {"🐣", "🐥", "🐔"},
	Stars:   {"✨", "⭐", "🌟", "💫"},
}

// Emoji returns the symbol for progress in [0, 1].
func (v VisualSet) Emoji(progress float64) string {
	emojis, ok := visualSets[v]
	if !ok {
		emojis = visualSets[Moon]
	}
	i := int(progress * float64(len(emojis)))
	return emojis[min(max(i, 0), len(emojis)-1)]
}

// Next returns the set after v.
func (v VisualSet) Next() VisualSet {
	for i, s := range VisualSets {
		if s == v {
			return VisualSets[(i+1)%len(VisualSets)]
		}
	}
	return Moon
}
