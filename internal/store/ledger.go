// Package store persists a study's trial history durably and resumably.
// The ledger is append-only: once written, a trial record is never mutated
// or deleted, so recovery by replay is always consistent with what ran.
package store

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/sam-harri/GaussianPI/pkg/models"
)

// Ledger is the durable, append-only record of one study's trials.
// A single study controller owns the ledger for the duration of a run;
// concurrent writers are not supported.
type Ledger struct {
	path   string
	names  []string // ordered parameter names, fixed for the study
	file   *os.File
	writer *csv.Writer
	trials []models.Trial
	nextID int
}

// LedgerPath returns the ledger file location for a named study
func LedgerPath(dataDir, study string) string {
	return filepath.Join(dataDir, study+".csv")
}

// OpenLedger opens the ledger for a study, creating it when absent. An
// existing ledger is replayed to reconstruct the trial history and the next
// available id, so re-running a named study appends instead of starting over.
func OpenLedger(path string, paramNames []string) (*Ledger, error) {
	if len(paramNames) == 0 {
		return nil, fmt.Errorf("ledger requires at least one parameter name")
	}

	l := &Ledger{
		path:  path,
		names: append([]string(nil), paramNames...),
	}

	if _, err := os.Stat(path); err == nil {
		if err := l.replay(); err != nil {
			return nil, fmt.Errorf("failed to replay ledger %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to stat ledger %s: %w", path, err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create ledger directory: %w", err)
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open ledger %s: %w", path, err)
	}
	l.file = file
	l.writer = csv.NewWriter(file)

	// Fresh ledger: write the header row once.
	if len(l.trials) == 0 {
		info, err := file.Stat()
		if err != nil {
			file.Close()
			return nil, fmt.Errorf("failed to stat ledger %s: %w", path, err)
		}
		if info.Size() == 0 {
			if err := l.writeRow(l.header()); err != nil {
				file.Close()
				return nil, fmt.Errorf("failed to write ledger header: %w", err)
			}
		}
	}

	return l, nil
}

func (l *Ledger) header() []string {
	header := make([]string, 0, len(l.names)+3)
	header = append(header, "id")
	header = append(header, l.names...)
	header = append(header, "loss", "status")
	return header
}

// replay reads every persisted record back into memory
func (l *Ledger) replay() error {
	file, err := os.Open(l.path)
	if err != nil {
		return err
	}
	defer file.Close()

	rows, err := csv.NewReader(file).ReadAll()
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return fmt.Errorf("ledger exists but has no header")
	}

	want := l.header()
	if len(rows[0]) != len(want) {
		return fmt.Errorf("ledger header has %d columns, want %d", len(rows[0]), len(want))
	}
	for i, col := range want {
		if rows[0][i] != col {
			return fmt.Errorf("ledger column %d is %q, want %q (search space changed?)", i, rows[0][i], col)
		}
	}

	for _, row := range rows[1:] {
		trial, err := l.parseRow(row)
		if err != nil {
			return err
		}
		if trial.ID < l.nextID {
			return fmt.Errorf("trial ids not strictly increasing at id %d", trial.ID)
		}
		l.trials = append(l.trials, trial)
		l.nextID = trial.ID + 1
	}
	return nil
}

func (l *Ledger) parseRow(row []string) (models.Trial, error) {
	if len(row) != len(l.names)+3 {
		return models.Trial{}, fmt.Errorf("record has %d fields, want %d", len(row), len(l.names)+3)
	}

	id, err := strconv.Atoi(row[0])
	if err != nil {
		return models.Trial{}, fmt.Errorf("bad trial id %q: %w", row[0], err)
	}

	params := make(map[string]float64, len(l.names))
	for i, name := range l.names {
		v, err := strconv.ParseFloat(row[1+i], 64)
		if err != nil {
			return models.Trial{}, fmt.Errorf("trial %d: bad %s value %q: %w", id, name, row[1+i], err)
		}
		params[name] = v
	}

	lossIdx := 1 + len(l.names)
	lossVal, err := strconv.ParseFloat(row[lossIdx], 64)
	if err != nil {
		return models.Trial{}, fmt.Errorf("trial %d: bad loss %q: %w", id, row[lossIdx], err)
	}

	status := models.TrialStatus(row[lossIdx+1])
	if status != models.TrialCompleted && status != models.TrialFailed {
		return models.Trial{}, fmt.Errorf("trial %d: non-terminal status %q in ledger", id, status)
	}

	return models.Trial{
		ID:     id,
		Params: params,
		Status: status,
		Loss:   lossVal,
	}, nil
}

func (l *Ledger) writeRow(row []string) error {
	if err := l.writer.Write(row); err != nil {
		return err
	}
	l.writer.Flush()
	if err := l.writer.Error(); err != nil {
		return err
	}
	return l.file.Sync()
}

// Append durably writes one terminal trial record. The write is flushed and
// synced before returning, so a crash after Append never loses the trial.
func (l *Ledger) Append(t *models.Trial) error {
	if !t.Terminal() {
		return fmt.Errorf("cannot append non-terminal trial %d (status %s)", t.ID, t.Status)
	}
	if t.ID < l.nextID {
		return fmt.Errorf("trial id %d not strictly increasing (next is %d)", t.ID, l.nextID)
	}

	row := make([]string, 0, len(l.names)+3)
	row = append(row, strconv.Itoa(t.ID))
	for _, name := range l.names {
		v, ok := t.Params[name]
		if !ok {
			return fmt.Errorf("trial %d missing parameter %s", t.ID, name)
		}
		row = append(row, strconv.FormatFloat(v, 'g', -1, 64))
	}
	row = append(row, strconv.FormatFloat(t.Loss, 'g', -1, 64))
	row = append(row, string(t.Status))

	if err := l.writeRow(row); err != nil {
		return fmt.Errorf("failed to append trial %d: %w", t.ID, err)
	}

	l.trials = append(l.trials, *t)
	l.nextID = t.ID + 1
	return nil
}

// Trials returns the replayed-plus-appended trial history in proposal order
func (l *Ledger) Trials() []models.Trial {
	out := make([]models.Trial, len(l.trials))
	copy(out, l.trials)
	return out
}

// NextID returns the next available trial id
func (l *Ledger) NextID() int {
	return l.nextID
}

// Len returns the number of persisted trials
func (l *Ledger) Len() int {
	return len(l.trials)
}

// ParamNames returns the ledger's ordered parameter names
func (l *Ledger) ParamNames() []string {
	return append([]string(nil), l.names...)
}

// Close releases the underlying file
func (l *Ledger) Close() error {
	return l.file.Close()
}
