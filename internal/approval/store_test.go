package approval

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rscapproval/internal/workflow"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	s := NewStore(filepath.Join(t.TempDir(), "submissions.yaml"), nil, nil)
	clock := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	s.now = func() time.Time {
		clock = clock.Add(time.Minute)
		return clock
	}
	return s
}

func testSubmission(token string) Submission {
	return Submission{
		Token:     token,
		PathID:    "project",
		Submitter: "somchai",
		Documents: []workflow.BundleDocument{
			{Kind: workflow.BundleProject, Label: "Research project request", Data: workflow.FormData{"title": "Soil survey"}},
		},
	}
}

func TestStore_SubmitCreatesPendingAdmin(t *testing.T) {
	s := newTestStore(t)

	rec, created, err := s.Submit(testSubmission("tok-1"))

	require.NoError(t, err)
	assert.True(t, created)
	assert.NotEmpty(t, rec.ID)
	assert.Equal(t, "tok-1", rec.Token)
	assert.Equal(t, StatusPendingAdmin, rec.Status)
	require.Len(t, rec.History, 1)
	assert.Equal(t, RoleResearcher, rec.History[0].Role)

	_, err = os.Stat(s.Path())
	assert.NoError(t, err)
	_, err = os.Stat(s.Path() + ".tmp")
	assert.True(t, os.IsNotExist(err), "temp file should be renamed away")
}

func TestStore_SubmitIsAtMostOnce(t *testing.T) {
	s := newTestStore(t)

	first, created, err := s.Submit(testSubmission("tok-1"))
	require.NoError(t, err)
	require.True(t, created)

	again, created, err := s.Submit(testSubmission("tok-1"))

	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, again.ID)

	all, err := s.List(Filter{})
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestStore_SubmitGeneratesToken(t *testing.T) {
	s := newTestStore(t)

	a, _, err := s.Submit(testSubmission(""))
	require.NoError(t, err)
	b, _, err := s.Submit(testSubmission(""))
	require.NoError(t, err)

	assert.NotEmpty(t, a.Token)
	assert.NotEqual(t, a.Token, b.Token)
}

func TestStore_SubmitEmptyBundle(t *testing.T) {
	s := newTestStore(t)

	_, _, err := s.Submit(Submission{Token: "x"})

	assert.ErrorIs(t, err, ErrEmptyBundle)
}

func TestStore_GetRoundTripsThroughFile(t *testing.T) {
	s := newTestStore(t)
	rec, _, err := s.Submit(testSubmission("tok-1"))
	require.NoError(t, err)

	reopened := NewStore(s.Path(), nil, nil)
	got, err := reopened.Get(rec.ID)

	require.NoError(t, err)
	assert.Equal(t, rec.ID, got.ID)
	assert.Equal(t, "project", got.PathID)
	require.Len(t, got.Documents, 1)
	assert.Equal(t, workflow.BundleProject, got.Documents[0].Kind)
}

func TestStore_GetNotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Get("missing")

	assert.ErrorIs(t, err, ErrSubmissionNotFound)
}

func TestStore_FullApprovalChain(t *testing.T) {
	s := newTestStore(t)
	rec, _, err := s.Submit(testSubmission("tok-1"))
	require.NoError(t, err)

	_, err = s.Approve(rec.ID, RoleDirector, "dr-a")
	assert.ErrorIs(t, err, ErrNotYourTurn)

	rec, err = s.Approve(rec.ID, RoleAdmin, "admin-b")
	require.NoError(t, err)
	assert.Equal(t, StatusPendingDirector, rec.Status)

	rec, err = s.Approve(rec.ID, RoleDirector, "dr-a")
	require.NoError(t, err)
	assert.Equal(t, StatusApproved, rec.Status)

	_, err = s.Reject(rec.ID, RoleDirector, "dr-a", "changed my mind")
	assert.ErrorIs(t, err, ErrAlreadyFinal)

	got, err := s.Get(rec.ID)
	require.NoError(t, err)
	require.Len(t, got.History, 3)
	assert.Equal(t, StatusPendingAdmin, got.History[1].From)
	assert.Equal(t, StatusPendingDirector, got.History[1].To)
	assert.Equal(t, "admin-b", got.History[1].Actor)
}

func TestStore_Reject(t *testing.T) {
	s := newTestStore(t)
	rec, _, err := s.Submit(testSubmission("tok-1"))
	require.NoError(t, err)

	rec, err = s.Reject(rec.ID, RoleAdmin, "admin-b", "missing budget code")

	require.NoError(t, err)
	assert.Equal(t, StatusRejected, rec.Status)
	assert.Equal(t, "missing budget code", rec.History[len(rec.History)-1].Reason)
}

func TestStore_TransitionNotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Approve("missing", RoleAdmin, "")

	assert.ErrorIs(t, err, ErrSubmissionNotFound)
}

func TestStore_ListFilter(t *testing.T) {
	s := newTestStore(t)
	a, _, err := s.Submit(testSubmission("a"))
	require.NoError(t, err)
	b, _, err := s.Submit(testSubmission("b"))
	require.NoError(t, err)
	other := testSubmission("c")
	other.Submitter = "malee"
	_, _, err = s.Submit(other)
	require.NoError(t, err)

	_, err = s.Approve(b.ID, RoleAdmin, "")
	require.NoError(t, err)

	pending, err := s.List(Filter{Status: StatusPendingAdmin})
	require.NoError(t, err)
	assert.Len(t, pending, 2)
	assert.Equal(t, a.ID, pending[0].ID)

	mine, err := s.List(Filter{Submitter: "somchai"})
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	all, err := s.List(Filter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestStore_ListEmptyWhenNoFile(t *testing.T) {
	s := newTestStore(t)

	all, err := s.List(Filter{})

	require.NoError(t, err)
	assert.NotNil(t, all)
	assert.Empty(t, all)
}

func TestStore_InvalidYAML(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, os.WriteFile(s.Path(), []byte("submissions: {not: [a list"), 0644))

	_, err := s.List(Filter{})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse submissions")
}

func TestStore_CreatesParentDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "subs.yaml")
	s := NewStore(path, nil, nil)

	_, _, err := s.Submit(testSubmission("tok"))

	require.NoError(t, err)
	_, err = os.Stat(path)
	assert.NoError(t, err)
}
