package game

import "testing"

var classifications = map[float64]Outcome{
	0:      Perfect,
	49.9:   Perfect,
	50:     Perfect,
	50.001: Good,
	100:    Good,
	120:    Ok,
	150:    Ok,
	150.5:  TooEarly,
	1000:   TooEarly,
}

func TestClassify(t *testing.T) {
	w := DefaultWindows()
	for abs, expected := range classifications {
		if o := w.Classify(abs); o != expected {
			t.Log("distance", abs)
			t.Log("outcome ", o)
			t.Log("expected", expected)
			t.Fail()
		}
	}
}

func TestIndicator(t *testing.T) {
	for _, o := range Outcomes {
		want := o
		if o == TooEarly {
			want = Miss
		}
		if o.Indicator() != want {
			t.Fatalf("%v shown as %v", o, o.Indicator())
		}
		if o.Successful() != (o == Perfect || o == Good || o == Ok) {
			t.Fatalf("%v successful = %v", o, o.Successful())
		}
	}
}

func TestWindowsValid(t *testing.T) {
	if !DefaultWindows().Valid() {
		t.Fatal("default windows are not valid")
	}
	if (Windows{Perfect: 60, Good: 50, Ok: 150, Miss: 200}).Valid() {
		t.Fatal("perfect wider than good accepted")
	}
}

func TestChartPlayable(t *testing.T) {
	var nilChart *Chart
	if nilChart.Playable() {
		t.Fatal("nil chart is playable")
	}
	c := &Chart{BPM: 120, Steps: [][]bool{{false, true}, {true, true}}, Lanes: 2}
	if !c.Playable() || c.NoteCount() != 3 {
		t.Fatalf("playable %v notes %d", c.Playable(), c.NoteCount())
	}
}
