package approval

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"rscapproval/internal/workflow"
)

// DefaultStorePath is the submissions file location relative to the working
// directory.
const DefaultStorePath = "rscapproval-submissions.yaml"

// ErrSubmissionNotFound is returned when no record matches an id.
var ErrSubmissionNotFound = errors.New("submission not found")

// ErrEmptyBundle is returned when a submission carries no documents.
var ErrEmptyBundle = errors.New("submission has no documents")

// Submission is the payload a researcher sends at the end of a wizard run.
type Submission struct {
	// Token deduplicates retries. Submitting the same token twice returns the
	// first record. An empty token gets a fresh one.
	Token     string
	PathID    string
	Submitter string
	Documents []workflow.BundleDocument
}

// HistoryEntry records one status change.
type HistoryEntry struct {
	Role   Role      `yaml:"role" json:"role"`
	Actor  string    `yaml:"actor,omitempty" json:"actor,omitempty"`
	From   Status    `yaml:"from,omitempty" json:"from,omitempty"`
	To     Status    `yaml:"to" json:"to"`
	Reason string    `yaml:"reason,omitempty" json:"reason,omitempty"`
	At     time.Time `yaml:"at" json:"at"`
}

// Record is a stored submission.
type Record struct {
	ID          string                    `yaml:"id" json:"id"`
	Token       string                    `yaml:"token" json:"token"`
	PathID      string                    `yaml:"path_id" json:"path_id"`
	Submitter   string                    `yaml:"submitter" json:"submitter"`
	Status      Status                    `yaml:"status" json:"status"`
	Documents   []workflow.BundleDocument `yaml:"documents" json:"documents"`
	SubmittedAt time.Time                 `yaml:"submitted_at" json:"submitted_at"`
	History     []HistoryEntry            `yaml:"history" json:"history"`
}

// storeFile is the YAML layout of the submissions file.
type storeFile struct {
	Submissions []Record `yaml:"submissions"`
}

// Filter narrows [Store.List]. Zero values mean "no filter".
type Filter struct {
	Status    Status
	Submitter string
}

// Store keeps submission records in a single YAML file.
//
// Every mutation rewrites the file atomically (temp file, then rename).
// Store is safe for concurrent use within one process.
type Store struct {
	mu     sync.Mutex
	path   string
	chain  *Chain
	logger *slog.Logger
	now    func() time.Time
}

// NewStore creates a [Store] backed by the file at path. The file is created
// on first write. A nil logger discards log output.
func NewStore(path string, chain *Chain, logger *slog.Logger) *Store {
	if path == "" {
		path = DefaultStorePath
	}
	if chain == nil {
		chain = NewChain()
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Store{
		path:   path,
		chain:  chain,
		logger: logger.With("component", "approval"),
		now:    time.Now,
	}
}

// Path returns the backing file path.
func (s *Store) Path() string {
	return s.path
}

// Chain returns the approval chain the store enforces.
func (s *Store) Chain() *Chain {
	return s.chain
}

func (s *Store) read() (*storeFile, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return &storeFile{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read submissions: %w", err)
	}

	var f storeFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse submissions: %w", err)
	}
	return &f, nil
}

func (s *Store) write(f *storeFile) error {
	data, err := yaml.Marshal(f)
	if err != nil {
		return fmt.Errorf("failed to marshal submissions: %w", err)
	}

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to write submissions: %w", err)
		}
	}

	tmpPath := s.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write submissions: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write submissions: %w", err)
	}
	return nil
}

// Submit stores a new submission at the start of the chain.
//
// If a record with the same token already exists it is returned unchanged and
// created is false, so retried submits are at-most-once.
func (s *Store) Submit(sub Submission) (rec *Record, created bool, err error) {
	if len(sub.Documents) == 0 {
		return nil, false, ErrEmptyBundle
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := s.read()
	if err != nil {
		return nil, false, err
	}

	if sub.Token == "" {
		sub.Token = uuid.NewString()
	}
	for i := range f.Submissions {
		if f.Submissions[i].Token == sub.Token {
			s.logger.Info("duplicate submission ignored", "token", sub.Token, "id", f.Submissions[i].ID)
			existing := f.Submissions[i]
			return &existing, false, nil
		}
	}

	now := s.now().UTC()
	status := s.chain.Initial()
	r := Record{
		ID:          uuid.NewString(),
		Token:       sub.Token,
		PathID:      sub.PathID,
		Submitter:   sub.Submitter,
		Status:      status,
		Documents:   sub.Documents,
		SubmittedAt: now,
		History: []HistoryEntry{{
			Role:  RoleResearcher,
			Actor: sub.Submitter,
			To:    status,
			At:    now,
		}},
	}
	f.Submissions = append(f.Submissions, r)

	if err := s.write(f); err != nil {
		return nil, false, err
	}

	s.logger.Info("submission stored", "id", r.ID, "path", r.PathID, "documents", len(r.Documents))
	return &r, true, nil
}

// Get returns the record with the given id.
func (s *Store) Get(id string) (*Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := s.read()
	if err != nil {
		return nil, err
	}
	for i := range f.Submissions {
		if f.Submissions[i].ID == id {
			r := f.Submissions[i]
			return &r, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrSubmissionNotFound, id)
}

// List returns matching records, oldest first.
func (s *Store) List(filter Filter) ([]Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := s.read()
	if err != nil {
		return nil, err
	}

	out := []Record{}
	for _, r := range f.Submissions {
		if filter.Status != "" && r.Status != filter.Status {
			continue
		}
		if filter.Submitter != "" && r.Submitter != filter.Submitter {
			continue
		}
		out = append(out, r)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].SubmittedAt.Before(out[j].SubmittedAt)
	})
	return out, nil
}

// Approve moves a record one stage along the chain on behalf of role.
func (s *Store) Approve(id string, role Role, actor string) (*Record, error) {
	return s.transition(id, role, actor, "", s.chain.Approve)
}

// Reject ends the chain for a record on behalf of role.
func (s *Store) Reject(id string, role Role, actor, reason string) (*Record, error) {
	return s.transition(id, role, actor, reason, s.chain.Reject)
}

func (s *Store) transition(id string, role Role, actor, reason string, next func(Status, Role) (Status, error)) (*Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := s.read()
	if err != nil {
		return nil, err
	}

	for i := range f.Submissions {
		r := &f.Submissions[i]
		if r.ID != id {
			continue
		}

		to, err := next(r.Status, role)
		if err != nil {
			s.logger.Warn("status transition refused", "id", id, "role", role, "status", r.Status, "error", err)
			return nil, err
		}

		r.History = append(r.History, HistoryEntry{
			Role:   role,
			Actor:  actor,
			From:   r.Status,
			To:     to,
			Reason: reason,
			At:     s.now().UTC(),
		})
		from := r.Status
		r.Status = to

		if err := s.write(f); err != nil {
			return nil, err
		}

		s.logger.Info("status changed", "id", id, "role", role, "from", from, "to", to)
		out := *r
		return &out, nil
	}

	return nil, fmt.Errorf("%w: %s", ErrSubmissionNotFound, id)
}
