package service

import (
	"context"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/raksha/internal/domain"
	"github.com/spec-kit/raksha/internal/persistence"
	"github.com/spec-kit/raksha/internal/remote"
	"github.com/spec-kit/raksha/internal/repository"
	apperrors "github.com/spec-kit/raksha/pkg/util/errorutil"
)

type fakeComplaintRemote struct {
	fileErr error
	listErr error
	getErr  error
	filed   []domain.Complaint
	list    []domain.Complaint
	detail  *domain.Complaint
}

func (f *fakeComplaintRemote) FileComplaint(_ context.Context, c domain.Complaint) (*domain.Complaint, error) {
	if f.fileErr != nil {
		return nil, f.fileErr
	}
	f.filed = append(f.filed, c)
	c.Synced = true
	return &c, nil
}

func (f *fakeComplaintRemote) ListComplaints(context.Context, string) ([]domain.Complaint, error) {
	return f.list, f.listErr
}

func (f *fakeComplaintRemote) GetComplaint(context.Context, string) (*domain.Complaint, error) {
	return f.detail, f.getErr
}

func newComplaintFixture(t *testing.T) (*ComplaintService, repository.ComplaintRepository, *fakeComplaintRemote, *flakyBackend, *clock.Mock) {
	t.Helper()
	store, backend := newFlakyStore(t)
	repo := repository.NewComplaintRepository(store)
	fake := &fakeComplaintRemote{}
	mock := clock.NewMock()
	mock.Set(time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC))
	svc := NewComplaintService(ComplaintDependencies{Repo: repo, Remote: fake, Clock: mock})
	return svc, repo, fake, backend, mock
}

func TestFileComplaintValidation(t *testing.T) {
	svc, _, _, _, _ := newComplaintFixture(t)
	ctx := context.Background()

	_, _, err := svc.FileComplaint(ctx, "u-1", "Hi", "Someone followed me home")
	assert.True(t, apperrors.IsCode(err, apperrors.CodeValidation))

	_, _, err = svc.FileComplaint(ctx, "u-1", "Harassment at station", "short")
	assert.True(t, apperrors.IsCode(err, apperrors.CodeValidation))

	_, _, err = svc.FileComplaint(ctx, "u-1", "   ", "")
	assert.True(t, apperrors.IsCode(err, apperrors.CodeValidation))
}

func TestFileComplaintOutcomes(t *testing.T) {
	ctx := context.Background()

	t.Run("synced", func(t *testing.T) {
		svc, _, fake, _, _ := newComplaintFixture(t)
		c, msg, err := svc.FileComplaint(ctx, "u-1", "Harassment at station", "Verbal abuse on platform 2")
		require.NoError(t, err)
		assert.Equal(t, MessageComplaintFiled, msg)
		assert.True(t, c.Synced)
		assert.Equal(t, domain.ComplaintStatusPending, c.Status)
		assert.Len(t, fake.filed, 1)

		list, err := svc.UserComplaints(ctx, "u-1", nil)
		require.NoError(t, err)
		assert.Empty(t, list, "backend list is authoritative once reachable")
	})

	t.Run("rejected", func(t *testing.T) {
		svc, repo, fake, _, _ := newComplaintFixture(t)
		fake.fileErr = rejected(remote.EndpointComplaintFile, "invalid token")
		c, msg, err := svc.FileComplaint(ctx, "u-1", "Harassment at station", "Verbal abuse on platform 2")
		require.NoError(t, err)
		assert.Equal(t, MessageComplaintPending, msg)
		assert.False(t, c.Synced)
		_, ok := repo.GetByID(ctx, c.ComplaintID)
		assert.True(t, ok)
	})

	t.Run("offline", func(t *testing.T) {
		svc, _, fake, _, _ := newComplaintFixture(t)
		fake.fileErr = offline(remote.EndpointComplaintFile)
		fake.listErr = offline(remote.EndpointComplaintList)
		c, msg, err := svc.FileComplaint(ctx, "u-1", "Harassment at station", "Verbal abuse on platform 2")
		require.NoError(t, err)
		assert.Equal(t, MessageComplaintOffline, msg)

		list, err := svc.UserComplaints(ctx, "u-1", nil)
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, c.ComplaintID, list[0].ComplaintID)
	})

	t.Run("local save failure", func(t *testing.T) {
		svc, _, _, backend, _ := newComplaintFixture(t)
		backend.failWrites(persistence.KeyComplaints, true)
		_, _, err := svc.FileComplaint(ctx, "u-1", "Harassment at station", "Verbal abuse on platform 2")
		assert.True(t, apperrors.IsCode(err, apperrors.CodePersistence))
	})
}

func TestUserComplaintsRepushesUnsynced(t *testing.T) {
	svc, repo, fake, _, mock := newComplaintFixture(t)
	ctx := context.Background()

	fake.fileErr = offline(remote.EndpointComplaintFile)
	pending, _, err := svc.FileComplaint(ctx, "u-1", "Broken streetlight", "Lane near the market is dark")
	require.NoError(t, err)

	mock.Add(time.Hour)
	fake.fileErr = nil
	fake.list = []domain.Complaint{
		{ComplaintID: "c-remote", UserID: "u-1", Title: "Earlier report", Timestamp: mock.Now().Add(-48 * time.Hour), Status: domain.ComplaintStatusUnderReview, Synced: true},
		{ComplaintID: "c-other", UserID: "u-2", Title: "Not mine", Timestamp: mock.Now(), Synced: true},
	}

	list, err := svc.UserComplaints(ctx, "u-1", nil)
	require.NoError(t, err)
	require.Len(t, fake.filed, 1)
	assert.Equal(t, pending.ComplaintID, fake.filed[0].ComplaintID)

	ids := []string{}
	for _, c := range list {
		ids = append(ids, c.ComplaintID)
	}
	assert.Equal(t, []string{"c-remote"}, ids, "re-pushed complaint is expected back from the backend list")

	fake.fileErr = rejected(remote.EndpointComplaintFile, "nope")
	unsynced, _, err := svc.FileComplaint(ctx, "u-1", "Second report", "Another incident near the park")
	require.NoError(t, err)
	list, err = svc.UserComplaints(ctx, "u-1", nil)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, unsynced.ComplaintID, list[0].ComplaintID)

	underReview := domain.ComplaintStatusUnderReview
	filtered, err := svc.UserComplaints(ctx, "u-1", &underReview)
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, "c-remote", filtered[0].ComplaintID)
	_, ok := repo.GetByID(ctx, "c-other")
	assert.False(t, ok)
}

func TestComplaintByID(t *testing.T) {
	svc, repo, fake, _, _ := newComplaintFixture(t)
	ctx := context.Background()

	fake.getErr = offline(remote.EndpointComplaintDetail)
	_, err := svc.ComplaintByID(ctx, "missing")
	assert.True(t, apperrors.IsCode(err, apperrors.CodeNotFound))

	require.NoError(t, repo.Append(ctx, domain.Complaint{ComplaintID: "c-1", UserID: "u-1", Title: "Broken light", Status: domain.ComplaintStatusPending}))
	cached, err := svc.ComplaintByID(ctx, "c-1")
	require.NoError(t, err)
	assert.Equal(t, domain.ComplaintStatusPending, cached.Status)

	notes := "Fixed by municipality"
	fake.getErr = nil
	fake.detail = &domain.Complaint{ComplaintID: "c-1", Title: "Broken light", Status: domain.ComplaintStatusResolved, ResolutionNotes: &notes, Synced: true}
	fresh, err := svc.ComplaintByID(ctx, "c-1")
	require.NoError(t, err)
	assert.Equal(t, domain.ComplaintStatusResolved, fresh.Status)
	assert.Equal(t, "u-1", fresh.UserID)

	stored, _ := repo.GetByID(ctx, "c-1")
	assert.Equal(t, domain.ComplaintStatusResolved, stored.Status)
}

func TestRefusedComplaintsAreNotPushedAgain(t *testing.T) {
	svc, repo, fake, _, _ := newComplaintFixture(t)
	ctx := context.Background()

	fake.fileErr = rejected(remote.EndpointComplaintFile, "title not allowed")
	refused, msg, err := svc.FileComplaint(ctx, "u-1", "Harassment at station", "Verbal abuse on platform 2")
	require.NoError(t, err)
	assert.Equal(t, MessageComplaintPending, msg)
	assert.True(t, refused.SyncRejected)

	fake.fileErr = &remote.SyncError{Endpoint: remote.EndpointComplaintFile, Kind: remote.KindRejected, StatusCode: 401, Message: "token expired"}
	authFailed, _, err := svc.FileComplaint(ctx, "u-1", "Stalking near campus", "Same person outside the gate daily")
	require.NoError(t, err)
	assert.False(t, authFailed.SyncRejected)

	fake.fileErr = nil
	fake.listErr = offline(remote.EndpointComplaintList)
	for i := 0; i < 3; i++ {
		_, err := svc.UserComplaints(ctx, "u-1", nil)
		require.NoError(t, err)
	}

	require.Len(t, fake.filed, 1, "only the auth failure is retried, and only until it syncs")
	assert.Equal(t, authFailed.ComplaintID, fake.filed[0].ComplaintID)

	stored, ok := repo.GetByID(ctx, refused.ComplaintID)
	require.True(t, ok)
	assert.True(t, stored.SyncRejected)
	assert.False(t, stored.Synced)
}

func TestPushMarksComplaintRefusedOnRetry(t *testing.T) {
	svc, repo, fake, _, _ := newComplaintFixture(t)
	ctx := context.Background()

	fake.fileErr = offline(remote.EndpointComplaintFile)
	c, _, err := svc.FileComplaint(ctx, "u-1", "Broken streetlight", "Lane near the market is dark")
	require.NoError(t, err)

	fake.fileErr = rejected(remote.EndpointComplaintFile, "duplicate")
	fake.listErr = offline(remote.EndpointComplaintList)
	_, err = svc.UserComplaints(ctx, "u-1", nil)
	require.NoError(t, err)

	stored, ok := repo.GetByID(ctx, c.ComplaintID)
	require.True(t, ok)
	assert.True(t, stored.SyncRejected)
}
