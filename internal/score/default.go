package score

import (
	"crypto/sha256"
	"database/sql"
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/sirupsen/logrus"

	"git.lost.host/meutraa/lanes/internal/game"
	"git.lost.host/meutraa/lanes/internal/logging"
)

type DefaultScorer struct {
	Path string
	Log  logrus.FieldLogger

	db *sql.DB
}

func (s *DefaultScorer) Init() error {
	if s.Log == nil {
		s.Log = logging.Discard()
	}
	path := s.Path
	if path == "" {
		path = "./scores.db"
	}
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return fmt.Errorf("unable to open score database: %w", err)
	}

	initStatement := `
	create table if not exists scores
	  (
		  id integer not null primary key,
		  sum text not null,
		  bpm integer,
		  total integer,
		  max_combo integer,
		  counts text,
		  tick integer,
		  inputs blob,
		  played integer,
		  ticks integer not null default 0,
		  settings text not null default '{}'
	  );
	create index if not exists scores_sum on scores(sum);
	`
	if _, err = db.Exec(initStatement); nil != err {
		db.Close()
		return fmt.Errorf("unable to create score table: %w", err)
	}
	if err := migrate(db); nil != err {
		db.Close()
		return err
	}

	s.db = db
	return nil
}

// Columns added after the first release, for databases created before them.
var migrations = []string{
	"alter table scores add column ticks integer not null default 0",
	"alter table scores add column settings text not null default '{}'",
}

func migrate(db *sql.DB) error {
	for _, m := range migrations {
		if _, err := db.Exec(m); nil != err && !strings.Contains(err.Error(), "duplicate column") {
			return fmt.Errorf("unable to migrate score table: %w", err)
		}
	}
	return nil
}

func (s *DefaultScorer) Deinit() {
	if nil != s.db {
		s.db.Close()
		s.db = nil
	}
}

// HashChart identifies a chart by its tempo and steps.
func HashChart(c *game.Chart) string {
	h := sha256.New()
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(c.BPM))
	h.Write(buf[:])
	for _, row := range c.Steps {
		line := make([]byte, len(row)+1)
		for i, on := range row {
			if on {
				line[i] = '1'
			} else {
				line[i] = '0'
			}
		}
		line[len(row)] = '\n'
		h.Write(line)
	}
	return base64.StdEncoding.EncodeToString(h.Sum(nil))
}

func (s *DefaultScorer) Save(c *game.Chart, r *Result) error {
	if nil == s.db {
		return ErrNoDatabase
	}
	inputs, err := json.Marshal(compactInputs(r.Inputs))
	if nil != err {
		return fmt.Errorf("unable to marshal inputs: %w", err)
	}
	counts, err := json.Marshal(r.Stats)
	if nil != err {
		return fmt.Errorf("unable to marshal counts: %w", err)
	}
	settings, err := json.Marshal(r.Settings)
	if nil != err {
		return fmt.Errorf("unable to marshal settings: %w", err)
	}
	played := r.Played
	if played.IsZero() {
		played = time.Now()
	}
	_, err = s.db.Exec(
		"insert into scores(sum, bpm, total, max_combo, counts, tick, inputs, played, ticks, settings) values(?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
		HashChart(c), c.BPM, r.Score.TotalScore, r.Score.MaxCombo, string(counts), int64(r.Tick), inputs, played.Unix(),
		int64(r.Ticks), string(settings),
	)
	if nil != err {
		return fmt.Errorf("unable to save score: %w", err)
	}
	s.Log.WithField("score", r.Score.TotalScore).Info("score saved")
	return nil
}

func (s *DefaultScorer) query(q string, args ...interface{}) ([]Result, error) {
	if nil == s.db {
		return nil, ErrNoDatabase
	}
	histories := []Result{}
	rows, err := s.db.Query(q, args...)
	if nil != err {
		return nil, fmt.Errorf("unable to load scores: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			r      Result
			counts string
			inputs []byte
			tick     int64
			played   int64
			ticks    int64
			settings string
		)
		if err := rows.Scan(&r.Sum, &r.BPM, &r.Score.TotalScore, &r.Score.MaxCombo, &counts, &tick, &inputs, &played, &ticks, &settings); nil != err {
			return nil, fmt.Errorf("unable to scan score: %w", err)
		}
		if err := json.Unmarshal([]byte(counts), &r.Stats); nil != err {
			s.Log.WithError(err).Warn("unable to unmarshal counts")
			continue
		}
		var ins []InputsCompact
		if err := json.Unmarshal(inputs, &ins); nil != err {
			s.Log.WithError(err).Warn("unable to unmarshal input history")
			continue
		}
		if err := json.Unmarshal([]byte(settings), &r.Settings); nil != err {
			s.Log.WithError(err).Warn("unable to unmarshal settings")
			continue
		}
		r.Inputs = uncompactInputs(ins)
		r.Ticks = uint64(ticks)
		r.Tick = time.Duration(tick)
		r.Played = time.Unix(played, 0)
		histories = append(histories, r)
	}
	return histories, rows.Err()
}

const columns = "sum, bpm, total, max_combo, counts, tick, inputs, played, ticks, settings"

func (s *DefaultScorer) Load(c *game.Chart) ([]Result, error) {
	return s.query("select "+columns+" from scores where sum = ? order by played desc, id desc", HashChart(c))
}

func (s *DefaultScorer) Best(c *game.Chart) (*Result, error) {
	rs, err := s.query("select "+columns+" from scores where sum = ? order by total desc, id asc limit 1", HashChart(c))
	if nil != err {
		return nil, err
	}
	if len(rs) == 0 {
		return nil, nil
	}
	return &rs[0], nil
}
