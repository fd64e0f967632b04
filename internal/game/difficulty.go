package game

type Difficulty struct {
	Name  string
	Meter string
	NKeys uint8
}

// NKeyMap maps StepMania chart types to their lane count.
var NKeyMap = map[string]uint8{
	"dance-single": 4,
	"dance-solo":   6,
	"dance-double": 8,
	"pump-single":  5,
	"pump-double":  10,
}
