package game

// Input is one lane press or release as seen by the session, stamped with the tick
// it was applied on.
type Input struct {
	Tick    uint64
	Lane    int
	Pressed bool
}
