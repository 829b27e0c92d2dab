package runstore

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/MarcoAyalaT/Vicente/internal/domain"
	"github.com/MarcoAyalaT/Vicente/internal/ports"
)

const (
	defaultRunsDir = "runs"
	indexFile      = "index.jsonl"
)

type JSONStore struct {
	rootDir    string
	runsDir    string
	writeIndex bool
	now        func() time.Time
}

type Option func(*JSONStore)

// WithIndex enables a simple JSONL index: runs/index.jsonl
func WithIndex(enabled bool) Option {
	return func(s *JSONStore) { s.writeIndex = enabled }
}

// WithNow is useful for tests.
func WithNow(now func() time.Time) Option {
	return func(s *JSONStore) { s.now = now }
}

func NewJSONStore(root string, cfg domain.Config, opts ...Option) *JSONStore {
	runsDir := cfg.Paths.RunsDir
	if strings.TrimSpace(runsDir) == "" {
		runsDir = defaultRunsDir
	}
	if !filepath.IsAbs(runsDir) {
		runsDir = filepath.Join(root, runsDir)
	}

	s := &JSONStore{
		rootDir:    root,
		runsDir:    runsDir,
		writeIndex: true,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var _ ports.RunStore = (*JSONStore)(nil)

// Dir is where run artifacts are written.
func (s *JSONStore) Dir() string {
	return s.runsDir
}

func (s *JSONStore) SaveRun(run domain.SweepRun) (string, error) {
	dir := s.runsDir
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", &domain.OpError{
			Op:   "runstore.mkdir",
			Kind: domain.KindExecution,
			Path: dir,
			Err:  err,
		}
	}

	ts := run.StartedAt
	if ts.IsZero() {
		ts = s.now()
	}
	ts = ts.UTC()

	toSave := run
	if toSave.StartedAt.IsZero() {
		toSave.StartedAt = ts
	}
	slug := slugify(strings.TrimSuffix(filepath.Base(run.ConfigPath), filepath.Ext(run.ConfigPath)))
	if slug == "" {
		slug = "sweep"
	}

	base := fmt.Sprintf("%s_%s", ts.Format("20060102T150405Z"), slug)
	id := base
	for n := 2; ; n++ {
		if _, err := os.Stat(filepath.Join(dir, id+".json")); errors.Is(err, os.ErrNotExist) {
			break
		}
		id = fmt.Sprintf("%s_%d", base, n)
	}
	filename := id + ".json"
	path := filepath.Join(dir, filename)
	toSave.ID = id

	b, err := json.MarshalIndent(toSave, "", "  ")
	if err != nil {
		return "", &domain.OpError{
			Op:   "runstore.marshal",
			Kind: domain.KindExecution,
			Path: path,
			Err:  err,
		}
	}

	// Atomic-ish write: tmp then rename.
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o600); err != nil {
		return "", &domain.OpError{
			Op:   "runstore.write",
			Kind: domain.KindExecution,
			Path: tmp,
			Err:  err,
		}
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return "", &domain.OpError{
			Op:   "runstore.rename",
			Kind: domain.KindExecution,
			Path: path,
			Err:  err,
		}
	}

	if s.writeIndex {
		_ = s.appendIndex(dir, refOf(id, filename, toSave))
	}

	return id, nil
}

func refOf(id, filename string, run domain.SweepRun) domain.RunRef {
	return domain.RunRef{
		ID:         id,
		File:       filename,
		ConfigPath: run.ConfigPath,
		StartedAt:  run.StartedAt,
		Items:      len(run.Items),
		Solved:     run.Count(domain.ItemSolved),
	}
}

func (s *JSONStore) appendIndex(dir string, ref domain.RunRef) error {
	line, err := json.Marshal(ref)
	if err != nil {
		return err
	}

	indexPath := filepath.Join(dir, indexFile)
	f, err := os.OpenFile(indexPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return err
	}
	defer f.Close()

	_, _ = f.Write(append(line, '\n'))
	return nil
}

// ListRuns returns stored runs, newest first. The index is used when
// present; otherwise run files are read one by one.
func (s *JSONStore) ListRuns() ([]domain.RunRef, error) {
	refs, err := s.readIndex()
	if err != nil {
		refs, err = s.scanDir()
		if err != nil {
			return nil, err
		}
	}
	sort.SliceStable(refs, func(i, j int) bool {
		if refs[i].StartedAt.Equal(refs[j].StartedAt) {
			return refs[i].ID > refs[j].ID
		}
		return refs[i].StartedAt.After(refs[j].StartedAt)
	})
	return refs, nil
}

func (s *JSONStore) readIndex() ([]domain.RunRef, error) {
	f, err := os.Open(filepath.Join(s.runsDir, indexFile))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var refs []domain.RunRef
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		var ref domain.RunRef
		if err := json.Unmarshal([]byte(line), &ref); err != nil {
			// a torn append must not hide the other runs
			continue
		}
		if _, err := os.Stat(filepath.Join(s.runsDir, ref.File)); err != nil {
			continue
		}
		refs = append(refs, ref)
	}
	return refs, sc.Err()
}

func (s *JSONStore) scanDir() ([]domain.RunRef, error) {
	entries, err := os.ReadDir(s.runsDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, &domain.OpError{Op: "runstore.list", Kind: domain.KindExecution, Path: s.runsDir, Err: err}
	}

	var refs []domain.RunRef
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || filepath.Ext(name) != ".json" {
			continue
		}
		id := strings.TrimSuffix(name, ".json")
		run, _, err := s.LoadRun(id)
		if err != nil {
			continue
		}
		refs = append(refs, refOf(id, name, run))
	}
	return refs, nil
}

// LoadRun reads a run by ID. The raw JSON is returned for querying.
func (s *JSONStore) LoadRun(id string) (domain.SweepRun, []byte, error) {
	id = strings.TrimSuffix(strings.TrimSpace(id), ".json")
	if id == "" || strings.ContainsAny(id, `/\`) {
		return domain.SweepRun{}, nil, &domain.OpError{
			Op:   "runstore.load",
			Kind: domain.KindInvalidConfig,
			Path: id,
			Err:  fmt.Errorf("invalid run id %q: %w", id, domain.ErrInvalidConfig),
		}
	}
	path := filepath.Join(s.runsDir, id+".json")

	b, err := os.ReadFile(path)
	if err != nil {
		kind := domain.KindExecution
		if errors.Is(err, os.ErrNotExist) {
			kind = domain.KindNotFound
			err = fmt.Errorf("run %s: %w", id, domain.ErrNotFound)
		}
		return domain.SweepRun{}, nil, &domain.OpError{Op: "runstore.load", Kind: kind, Path: path, Err: err}
	}

	var run domain.SweepRun
	if err := json.Unmarshal(b, &run); err != nil {
		return domain.SweepRun{}, nil, &domain.OpError{Op: "runstore.decode", Kind: domain.KindExecution, Path: path, Err: err}
	}
	if run.ID == "" {
		run.ID = id
	}
	return run, b, nil
}

// slugify produces a safe filename component.
func slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return ""
	}

	var b strings.Builder
	b.Grow(len(s))

	lastDash := false
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}

	return strings.Trim(b.String(), "-")
}
