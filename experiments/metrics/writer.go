package metrics

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// SessionRecord compares a distributed session with the sequential search of
// the same move.
type SessionRecord struct {
	ID               int
	Position         string
	Move             string
	Score            float64
	SequentialTime   time.Duration
	SequentialResult float64
	SessionMetric
}

func (r SessionRecord) Speedup() float64 {
	if r.Duration == 0 {
		return 0
	}
	return float64(r.SequentialTime) / float64(r.Duration)
}

type SearchRecord struct {
	ID       int
	Position string
	Move     string
	Score    float64
	SearchMetric
}

type GameRecord struct {
	ID     int
	First  string
	Second string
	GameMetric
}

type MoveRecord struct {
	Game int // GameRecord.ID
	MoveMetric
}

type Writer struct {
	baseDir string
}

// NewWriter creates experiments/<name>/<timestamp> under dir.
func NewWriter(dir, name string) (*Writer, error) {
	timestamp := time.Now().UTC().Format("20060102T150405Z")
	baseDir := filepath.Join(dir, "experiments", name, timestamp)
	err := os.MkdirAll(baseDir, 0755)
	if err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	return &Writer{
		baseDir: baseDir,
	}, nil
}

func (w *Writer) Dir() string {
	return w.baseDir
}

func (w *Writer) write(file string, header []string, rows [][]string) error {
	path := filepath.Join(w.baseDir, file)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", file, err)
	}
	defer f.Close()

	writer := csv.NewWriter(f)
	err = writer.Write(header)
	if err != nil {
		return fmt.Errorf("failed to write %s header: %w", file, err)
	}
	err = writer.WriteAll(rows)
	if err != nil {
		return fmt.Errorf("failed to write %s rows: %w", file, err)
	}
	return f.Close()
}

func (w *Writer) WriteSessionRecords(records []SessionRecord) error {
	header := []string{"id", "position", "move", "session", "workers", "depth", "split_depth", "tasks",
		"score", "sequential_score", "duration", "sequential_duration", "speedup"}
	rows := make([][]string, 0, len(records))
	for _, record := range records {
		rows = append(rows, []string{
			strconv.Itoa(record.ID),
			record.Position,
			record.Move,
			strconv.FormatUint(record.Session, 10),
			strconv.Itoa(record.Workers),
			strconv.Itoa(record.Depth),
			strconv.Itoa(record.SplitDepth),
			strconv.Itoa(record.Tasks),
			strconv.FormatFloat(record.Score, 'g', -1, 64),
			strconv.FormatFloat(record.SequentialResult, 'g', -1, 64),
			record.Duration.String(),
			record.SequentialTime.String(),
			strconv.FormatFloat(record.Speedup(), 'f', 3, 64),
		})
	}
	return w.write("session_records.csv", header, rows)
}

func (w *Writer) WriteSearchRecords(records []SearchRecord) error {
	header := []string{"id", "position", "move", "depth", "score", "duration", "nodes", "cutoffs", "horizons", "terminal"}
	rows := make([][]string, 0, len(records))
	for _, record := range records {
		rows = append(rows, []string{
			strconv.Itoa(record.ID),
			record.Position,
			record.Move,
			strconv.Itoa(record.Depth),
			strconv.FormatFloat(record.Score, 'g', -1, 64),
			record.Duration.String(),
			strconv.FormatInt(record.Nodes, 10),
			strconv.FormatInt(record.Cutoffs, 10),
			strconv.FormatInt(record.Horizons, 10),
			strconv.FormatInt(record.Terminal, 10),
		})
	}
	return w.write("search_records.csv", header, rows)
}

func (w *Writer) WriteGameRecords(records []GameRecord) error {
	header := []string{"id", "first", "second", "winner", "turns", "start_time", "end_time", "duration"}
	rows := make([][]string, 0, len(records))
	for _, record := range records {
		rows = append(rows, []string{
			strconv.Itoa(record.ID),
			record.First,
			record.Second,
			record.Winner,
			strconv.Itoa(record.Turns),
			record.StartTime.Format(time.RFC3339),
			record.EndTime.Format(time.RFC3339),
			record.Duration.String(),
		})
	}
	return w.write("game_records.csv", header, rows)
}

func (w *Writer) WriteMoveRecords(records []MoveRecord) error {
	header := []string{"game", "step", "player", "move", "score", "duration"}
	rows := make([][]string, 0, len(records))
	for _, record := range records {
		rows = append(rows, []string{
			strconv.Itoa(record.Game),
			strconv.Itoa(record.Step),
			record.Player,
			record.Move,
			strconv.FormatFloat(record.Score, 'g', -1, 64),
			record.Duration.String(),
		})
	}
	return w.write("move_records.csv", header, rows)
}
