// ABOUTME: Tests for recurring categories, temporal clusters, and era transitions
// ABOUTME: Timelines are built in memory with explicit dates
package core

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/harper/lifeline/internal/models"
	"github.com/harper/lifeline/internal/storage/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDetector(store *sqlite.Storage, cfg PatternConfig) *PatternDetector {
	return NewPatternDetector(store.Events(), store.Eras(), store.Embeddings(), "fake", "fake-v1", cfg)
}

func dailyEvents(prefix, start string, n int, category string) []models.Event {
	first := date(start)
	events := make([]models.Event, n)
	for i := range events {
		events[i] = models.Event{
			ID:        fmt.Sprintf("%s_%02d", prefix, i),
			Title:     fmt.Sprintf("%s day %d", prefix, i),
			Category:  category,
			StartDate: first.AddDate(0, 0, i),
		}
	}
	return events
}

func TestDetectTemporalClustersDenseRun(t *testing.T) {
	store := newTestStorage(t)
	saveEvents(t, store, dailyEvents("evt_trip", "2021-07-01", 5, "travel")...)

	clusters, err := newTestDetector(store, PatternConfig{}).DetectTemporalClusters(context.Background(), 7, 3)
	require.NoError(t, err)
	require.Len(t, clusters, 1)

	cluster := clusters[0]
	assert.Len(t, cluster.MemberEventIDs, 5)
	assert.Equal(t, date("2021-07-01"), cluster.Start)
	assert.Equal(t, date("2021-07-05"), cluster.End)
	assert.Equal(t, "travel", cluster.Theme)
	assert.Equal(t, 0.0, cluster.Cohesion, "no embeddings means no cohesion")
}

func TestDetectTemporalClustersSparseTimeline(t *testing.T) {
	store := newTestStorage(t)
	for i := 0; i < 6; i++ {
		saveEvents(t, store, models.Event{
			ID:        fmt.Sprintf("evt_month_%d", i),
			Title:     "monthly",
			StartDate: date("2021-01-01").AddDate(0, i, 0),
		})
	}

	clusters, err := newTestDetector(store, PatternConfig{}).DetectTemporalClusters(context.Background(), 7, 3)
	require.NoError(t, err)
	assert.NotNil(t, clusters)
	assert.Empty(t, clusters)
}

func TestDetectTemporalClustersSeparatesRuns(t *testing.T) {
	store := newTestStorage(t)
	saveEvents(t, store, dailyEvents("evt_first", "2021-01-01", 3, "work")...)
	saveEvents(t, store, dailyEvents("evt_second", "2021-06-01", 4, "travel")...)

	clusters, err := newTestDetector(store, PatternConfig{}).DetectTemporalClusters(context.Background(), 7, 3)
	require.NoError(t, err)
	require.Len(t, clusters, 2)
	assert.Len(t, clusters[0].MemberEventIDs, 3)
	assert.Equal(t, "work", clusters[0].Theme)
	assert.Len(t, clusters[1].MemberEventIDs, 4)
	assert.Equal(t, "travel", clusters[1].Theme)
}

func TestDetectTemporalClustersCohesion(t *testing.T) {
	store := newTestStorage(t)
	events := dailyEvents("evt_c", "2021-03-01", 3, "")
	saveEvents(t, store, events...)
	putEmbedding(t, store, "evt_c_00", "fake", "fake-v1", 1, 0)
	putEmbedding(t, store, "evt_c_01", "fake", "fake-v1", 1, 0)
	putEmbedding(t, store, "evt_c_02", "fake", "fake-v1", 0, 1)
	// Another space never contributes
	putEmbedding(t, store, "evt_unrelated", "other", "other-v1", 1, 0)

	clusters, err := newTestDetector(store, PatternConfig{}).DetectTemporalClusters(context.Background(), 7, 3)
	require.NoError(t, err)
	require.Len(t, clusters, 1)
	assert.InDelta(t, 1.0/3.0, clusters[0].Cohesion, 1e-9)
	assert.Equal(t, "", clusters[0].Theme)
}

func TestDetectTemporalClustersValidation(t *testing.T) {
	store := newTestStorage(t)
	detector := newTestDetector(store, PatternConfig{})

	_, err := detector.DetectTemporalClusters(context.Background(), 0, 3)
	assert.ErrorIs(t, err, models.ErrValidation)
	_, err = detector.DetectTemporalClusters(context.Background(), 7, 0)
	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestDetectRecurringCategories(t *testing.T) {
	store := newTestStorage(t)
	saveEvents(t, store,
		models.Event{ID: "evt_w1", Title: "job", Category: "work", StartDate: date("2019-01-10")},
		models.Event{ID: "evt_w2", Title: "promotion", Category: "work", StartDate: date("2021-01-10")},
		models.Event{ID: "evt_w3", Title: "new team", Category: "work", StartDate: date("2021-06-10")},
		models.Event{ID: "evt_w4", Title: "new job", Category: "work", StartDate: date("2021-06-20")},
		models.Event{ID: "evt_t1", Title: "rome", Category: "travel", StartDate: date("2019-03-01")},
		models.Event{ID: "evt_t2", Title: "oslo", Category: "travel", StartDate: date("2019-05-01")},
		models.Event{ID: "evt_t3", Title: "lima", Category: "travel", StartDate: date("2019-07-01")},
		models.Event{ID: "evt_h1", Title: "flu", Category: "health", StartDate: date("2020-02-01")},
		models.Event{ID: "evt_x", Title: "uncategorized", StartDate: date("2021-12-31")},
	)

	patterns, err := newTestDetector(store, PatternConfig{}).DetectRecurringCategories(context.Background(), 3)
	require.NoError(t, err)
	require.Len(t, patterns, 2)

	work := patterns[0]
	assert.Equal(t, "work", work.Category)
	assert.Equal(t, 4, work.Occurrences)
	assert.Equal(t, date("2019-01-10"), work.FirstSeen)
	assert.Equal(t, date("2021-06-20"), work.LastSeen)
	assert.Equal(t, []string{"evt_w1", "evt_w2", "evt_w3", "evt_w4"}, work.EventIDs)
	assert.Equal(t, 2, work.Distribution["2021-06"])
	assert.Equal(t, models.TrendIncreasing, work.Trend)

	travel := patterns[1]
	assert.Equal(t, "travel", travel.Category)
	assert.Equal(t, 3, travel.Occurrences)
	assert.Equal(t, models.TrendDecreasing, travel.Trend)
}

func TestDetectRecurringCategoriesIgnoresCase(t *testing.T) {
	store := newTestStorage(t)
	saveEvents(t, store,
		models.Event{ID: "evt_1", Title: "first job", Category: "Work", StartDate: date("2020-01-10")},
		models.Event{ID: "evt_2", Title: "promotion", Category: "work", StartDate: date("2020-02-10")},
		models.Event{ID: "evt_3", Title: "new team", Category: " WORK ", StartDate: date("2020-03-10")},
	)

	patterns, err := newTestDetector(store, PatternConfig{}).DetectRecurringCategories(context.Background(), 3)
	require.NoError(t, err)
	require.Len(t, patterns, 1)
	assert.Equal(t, "Work", patterns[0].Category)
	assert.Equal(t, 3, patterns[0].Occurrences)
	assert.Equal(t, []string{"evt_1", "evt_2", "evt_3"}, patterns[0].EventIDs)
}

func TestDetectRecurringCategoriesEmpty(t *testing.T) {
	store := newTestStorage(t)
	detector := newTestDetector(store, PatternConfig{})

	patterns, err := detector.DetectRecurringCategories(context.Background(), 3)
	require.NoError(t, err)
	assert.NotNil(t, patterns)
	assert.Empty(t, patterns)

	_, err = detector.DetectRecurringCategories(context.Background(), 0)
	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestTrend(t *testing.T) {
	assert.Equal(t, models.TrendStable, trend(2, 2, false))
	assert.Equal(t, models.TrendStable, trend(0, 5, true))
	assert.Equal(t, models.TrendIncreasing, trend(1, 3, false))
	assert.Equal(t, models.TrendDecreasing, trend(3, 1, false))
}

func TestDetectEraTransitions(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()
	require.NoError(t, store.Eras().Save(ctx, &models.Era{ID: "era_school", Name: "College", StartDate: date("2016-09-01")}))
	require.NoError(t, store.Eras().Save(ctx, &models.Era{ID: "era_work", Name: "Career", StartDate: date("2020-06-01")}))
	saveEvents(t, store,
		models.Event{ID: "evt_exam", Title: "finals", Category: "Education", StartDate: date("2020-04-01")},
		models.Event{ID: "evt_grad", Title: "graduation", Category: "education", StartDate: date("2020-05-15")},
		models.Event{ID: "evt_job", Title: "first job", Category: "work", StartDate: date("2020-06-01")},
		models.Event{ID: "evt_review", Title: "review", Category: "work", StartDate: date("2020-09-01")},
		models.Event{ID: "evt_far", Title: "long ago", Category: "travel", StartDate: date("2018-01-01")},
	)

	transitions, err := newTestDetector(store, PatternConfig{}).DetectEraTransitions(ctx, 180)
	require.NoError(t, err)
	require.Len(t, transitions, 1)

	transition := transitions[0]
	assert.Equal(t, date("2020-06-01"), transition.BoundaryDate)
	assert.Equal(t, "College", transition.FromEra)
	assert.Equal(t, "Career", transition.ToEra)
	assert.Equal(t, models.CategoryShift{From: "education", To: "work"}, transition.CategoryShift)
	assert.Equal(t, 2, transition.BeforeCount)
	assert.Equal(t, 2, transition.AfterCount)
}

func TestDetectEraTransitionsNoShift(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()
	require.NoError(t, store.Eras().Save(ctx, &models.Era{ID: "era_one", Name: "One", StartDate: date("2020-06-01")}))
	saveEvents(t, store,
		models.Event{ID: "evt_before", Title: "before", Category: "work", StartDate: date("2020-05-01")},
		models.Event{ID: "evt_after", Title: "after", Category: "work", StartDate: date("2020-07-01")},
	)

	transitions, err := newTestDetector(store, PatternConfig{}).DetectEraTransitions(ctx, 90)
	require.NoError(t, err)
	assert.NotNil(t, transitions)
	assert.Empty(t, transitions)
}

// brokenEras fails every listing
type brokenEras struct{}

func (brokenEras) List(ctx context.Context) ([]models.Era, error) {
	return nil, errors.New("era store offline")
}

func TestDetectPatternsReportsPartialFailures(t *testing.T) {
	store := newTestStorage(t)
	saveEvents(t, store, dailyEvents("evt_run", "2021-07-01", 4, "work")...)
	detector := NewPatternDetector(store.Events(), brokenEras{}, store.Embeddings(), "fake", "fake-v1", PatternConfig{
		MinCategorySupport: 3,
		ClusterWindowDays:  7,
		ClusterMinEvents:   3,
		EraWindowDays:      180,
	})

	report, err := detector.DetectPatterns(context.Background())
	require.NoError(t, err)
	require.Len(t, report.CategoryPatterns, 1)
	require.Len(t, report.TemporalClusters, 1)
	assert.NotNil(t, report.EraTransitions)
	assert.Empty(t, report.EraTransitions)
	require.Len(t, report.Errors, 1)
	assert.Contains(t, report.Errors[0], "era transitions: ")
	assert.Contains(t, report.Errors[0], "era store offline")
}
