package audio

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/faiface/beep"
	"github.com/faiface/beep/mp3"
	"github.com/faiface/beep/vorbis"
	"github.com/faiface/beep/wav"
)

// ErrNoStems is returned when the audio directory holds no decodable files.
var ErrNoStems = errors.New("no audio stems found")

// Stem is one decoded track of the song.
type Stem struct {
	Name     string
	Streamer beep.StreamSeekCloser
	Format   beep.Format
}

// StemFiles lists the playable files in dir. A file named lead.* comes first,
// the rest follow in name order.
func StemFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if nil != err {
		return nil, fmt.Errorf("unable to read audio directory: %w", err)
	}
	files := []string{}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".mp3", ".ogg", ".wav":
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoStems, dir)
	}
	sort.SliceStable(files, func(i, j int) bool {
		li, lj := isLead(files[i]), isLead(files[j])
		if li != lj {
			return li
		}
		return files[i] < files[j]
	})
	return files, nil
}

func isLead(file string) bool {
	base := filepath.Base(file)
	return strings.TrimSuffix(base, filepath.Ext(base)) == "lead"
}

// Decode opens file and decodes it by extension.
func Decode(file string) (*Stem, error) {
	f, err := os.Open(file)
	if nil != err {
		return nil, err
	}
	var streamer beep.StreamSeekCloser
	var format beep.Format
	switch strings.ToLower(filepath.Ext(file)) {
	case ".mp3":
		streamer, format, err = mp3.Decode(f)
	case ".ogg":
		streamer, format, err = vorbis.Decode(f)
	case ".wav":
		streamer, format, err = wav.Decode(f)
	default:
		err = fmt.Errorf("unsupported audio format %s", filepath.Ext(file))
	}
	if nil != err {
		f.Close()
		return nil, fmt.Errorf("unable to decode %s: %w", file, err)
	}
	return &Stem{Name: filepath.Base(file), Streamer: streamer, Format: format}, nil
}

// LoadStems decodes every stem in dir.
func LoadStems(dir string) ([]*Stem, error) {
	files, err := StemFiles(dir)
	if nil != err {
		return nil, err
	}
	stems := make([]*Stem, 0, len(files))
	for _, file := range files {
		stem, err := Decode(file)
		if nil != err {
			for _, s := range stems {
				s.Streamer.Close()
			}
			return nil, err
		}
		stems = append(stems, stem)
	}
	return stems, nil
}
