// Package locations resolves the country, province, canton and district
// cascade used by location forms, and serves the cached reference lists the
// forms are built from.
package locations

// Level is a rank of the location cascade.
type Level int

const (
	Country Level = iota
	Province
	Canton
	District

	levelCount = 4
)

var levelNames = [levelCount]string{"country", "province", "canton", "district"}

func (l Level) String() string {
	if !l.valid() {
		return "unknown"
	}
	return levelNames[l]
}

func (l Level) valid() bool { return l >= Country && l <= District }

// ParseLevel parses a level name as used in routes.
func ParseLevel(s string) (Level, bool) {
	for i, name := range levelNames {
		if name == s {
			return Level(i), true
		}
	}
	return 0, false
}

// Option is one entry of a level's list.
type Option struct {
	ID   int    `json:"id"`
	Name string `json:"nombre"`
	Code string `json:"codigo,omitempty"`
}

// Chain holds a selected id per level; 0 means nothing selected.
type Chain [levelCount]int

// complete reports whether every level above l has a selection.
func (c Chain) complete(l Level) bool {
	for i := Country; i < l; i++ {
		if c[i] <= 0 {
			return false
		}
	}
	return true
}

// LevelState is the state of one level's control.
type LevelState struct {
	Selected int      `json:"selected,omitempty"`
	Options  []Option `json:"options"`
	Enabled  bool     `json:"enabled"`
	Loading  bool     `json:"loading"`
}

// State is the whole cascade. It is a value: transitions return a new State.
type State struct {
	Levels [levelCount]LevelState

	// pending holds selections cleared by an upstream change, restored when
	// the level's fresh list still contains them.
	pending Chain
	gen     [levelCount]uint64
}

// Fetch asks for the list of Level given the upstream Chain. Its result must
// be handed back to Resolve together with the Fetch.
type Fetch struct {
	Level      Level
	Chain      Chain
	Generation uint64
}

// Start returns the initial state: the country control enabled and loading.
func Start() (State, *Fetch) {
	var s State
	for l := range s.Levels {
		s.Levels[l] = emptyLevel()
	}
	return s.begin(Country)
}

// emptyLevel is a disabled level with an empty list.
func emptyLevel() LevelState {
	return LevelState{Options: []Option{}}
}

// Selection returns the selected id of every level.
func (s State) Selection() Chain {
	var c Chain
	for i := range s.Levels {
		c[i] = s.Levels[i].Selected
	}
	return c
}

// Generation returns the generation of level l, bumped whenever l is
// invalidated by an upstream change.
func (s State) Generation(l Level) uint64 {
	if !l.valid() {
		return 0
	}
	return s.gen[l]
}

// Has reports whether id is in level l's current list.
func (s State) Has(l Level, id int) bool {
	if !l.valid() {
		return false
	}
	for _, o := range s.Levels[l].Options {
		if o.ID == id {
			return true
		}
	}
	return false
}

// Select changes the selection at level l to id (0 clears it). All deeper
// levels are cleared and disabled at once; their previous selections are
// remembered for restoring. When the chain down to l is complete, level l+1
// is enabled and the returned Fetch loads its list.
func Select(s State, l Level, id int) (State, *Fetch) {
	if !l.valid() {
		return s, nil
	}
	if id < 0 {
		id = 0
	}
	s.Levels[l].Selected = id
	s.pending[l] = 0
	return s.invalidateBelow(l, true)
}

// Preset loads a known chain, as when editing a saved location. The chain
// is restored level by level as each list arrives, starting at the country,
// and dropping whatever is no longer listed.
func Preset(s State, chain Chain) (State, *Fetch) {
	s.pending = chain
	for d := Province; d <= District; d++ {
		s.Levels[d] = emptyLevel()
		s.gen[d]++
	}
	if s.Levels[Country].Loading {
		s.Levels[Country].Selected = 0
		return s, nil
	}
	want := s.pending[Country]
	s.pending[Country] = 0
	if want == 0 || !s.Has(Country, want) {
		s.Levels[Country].Selected = 0
		s.dropPending(Country)
		return s, nil
	}
	s.Levels[Country].Selected = want
	return s.invalidateBelow(Country, false)
}

// Resolve applies the result of f. Results for a level invalidated since f
// was issued are discarded. A failure leaves the level's list empty and its
// loading flag off without touching upstream selections. A success restores
// the remembered selection when it is still listed, which may issue the next
// Fetch.
func Resolve(s State, f Fetch, options []Option, err error) (State, *Fetch) {
	l := f.Level
	if !l.valid() || s.gen[l] != f.Generation || !s.Levels[l].Loading {
		return s, nil
	}
	lvl := &s.Levels[l]
	lvl.Loading = false
	if err != nil {
		lvl.Options = []Option{}
		s.dropPending(l)
		return s, nil
	}
	lvl.Options = append([]Option(nil), options...)
	if lvl.Options == nil {
		lvl.Options = []Option{}
	}

	want := s.pending[l]
	s.pending[l] = 0
	if want == 0 {
		return s, nil
	}
	if !s.Has(l, want) {
		s.dropPending(l)
		return s, nil
	}
	lvl.Selected = want
	return s.invalidateBelow(l, false)
}

// Refresh reloads the list of level l when its upstream chain is complete,
// as a manual retry after a failure. Current selections from l down are
// restored when still listed.
func Refresh(s State, l Level) (State, *Fetch) {
	if !l.valid() || !s.Selection().complete(l) {
		return s, nil
	}
	for d := l; d <= District; d++ {
		if s.Levels[d].Selected != 0 {
			s.pending[d] = s.Levels[d].Selected
		}
		if d > l {
			s.Levels[d] = emptyLevel()
		}
		s.gen[d]++
	}
	return s.begin(l)
}

func (s State) invalidateBelow(l Level, remember bool) (State, *Fetch) {
	for d := l + 1; d <= District; d++ {
		if remember && s.Levels[d].Selected != 0 {
			s.pending[d] = s.Levels[d].Selected
		}
		s.Levels[d] = emptyLevel()
		s.gen[d]++
	}
	next := l + 1
	if next > District {
		return s, nil
	}
	if s.Levels[l].Selected == 0 || !s.Selection().complete(next) {
		s.dropPending(next)
		return s, nil
	}
	return s.begin(next)
}

func (s State) begin(l Level) (State, *Fetch) {
	s.Levels[l].Enabled = true
	s.Levels[l].Loading = true
	s.Levels[l].Options = []Option{}
	s.Levels[l].Selected = 0
	var chain Chain
	sel := s.Selection()
	copy(chain[:l], sel[:l])
	return s, &Fetch{Level: l, Chain: chain, Generation: s.gen[l]}
}

// dropPending forgets remembered selections from level l down.
func (s *State) dropPending(l Level) {
	for d := l; d <= District; d++ {
		s.pending[d] = 0
	}
}
