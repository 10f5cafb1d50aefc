package services

import (
	"fmt"
	"testing"
	"time"

	"sefy/models/course"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&course.Course{},
		&course.Lecture{},
		&course.Enrollment{},
		&course.LectureCompletion{},
		&course.LectureProgress{},
		&course.Certificate{},
	))
	return db
}

// seedEnrollment creates a published course with the given lectures and an
// active enrollment for user 1.
func seedEnrollment(t *testing.T, db *gorm.DB, lectureCount int) (*course.Enrollment, []course.Lecture) {
	t.Helper()

	c := course.Course{Title: "Forklift Safety", Status: "ACTIVE", IsPublished: true}
	require.NoError(t, db.Create(&c).Error)

	lectures := make([]course.Lecture, 0, lectureCount)
	for i := 1; i <= lectureCount; i++ {
		l := course.Lecture{
			CourseID:        c.ID,
			Title:           fmt.Sprintf("Lecture %d", i),
			TotalSeconds:    600,
			RequiredSeconds: 540,
			OrderIndex:      i,
			IsPublished:     true,
		}
		require.NoError(t, db.Create(&l).Error)
		lectures = append(lectures, l)
	}

	e := course.Enrollment{UserID: 1, CourseID: c.ID, Status: course.EnrollmentActive, TotalLectures: lectureCount}
	require.NoError(t, db.Create(&e).Error)
	return &e, lectures
}

func newTestEngine(t *testing.T) (*ProgressEngine, *gorm.DB) {
	db := openTestDB(t)
	return NewProgressEngine(db, NewCertificateIssuer(db), 90), db
}

func TestRecordLectureCompleteRoundsPercent(t *testing.T) {
	engine, db := newTestEngine(t)
	enrollment, lectures := seedEnrollment(t, db, 3)

	updated, err := engine.RecordLectureComplete(enrollment.ID, lectures[0].ID)
	require.NoError(t, err)
	assert.Equal(t, 33, updated.ProgressPercent)
	assert.Equal(t, 1, updated.CompletedLectures)
	assert.Equal(t, course.EnrollmentActive, updated.Status)

	updated, err = engine.RecordLectureComplete(enrollment.ID, lectures[1].ID)
	require.NoError(t, err)
	assert.Equal(t, 67, updated.ProgressPercent)
}

func TestRecordLectureCompleteIsIdempotent(t *testing.T) {
	engine, db := newTestEngine(t)
	enrollment, lectures := seedEnrollment(t, db, 4)

	_, err := engine.RecordLectureComplete(enrollment.ID, lectures[0].ID)
	require.NoError(t, err)
	updated, err := engine.RecordLectureComplete(enrollment.ID, lectures[0].ID)
	require.NoError(t, err)

	assert.Equal(t, 25, updated.ProgressPercent)

	var completions int64
	db.Model(&course.LectureCompletion{}).Where("enrollment_id = ?", enrollment.ID).Count(&completions)
	assert.EqualValues(t, 1, completions)
}

func TestCompletionBoundary(t *testing.T) {
	engine, db := newTestEngine(t)
	enrollment, lectures := seedEnrollment(t, db, 4)

	for i := 0; i < 3; i++ {
		updated, err := engine.RecordLectureComplete(enrollment.ID, lectures[i].ID)
		require.NoError(t, err)
		assert.Equal(t, course.EnrollmentActive, updated.Status)
		assert.Nil(t, updated.CompletedAt)
	}

	var mid course.Enrollment
	require.NoError(t, db.First(&mid, enrollment.ID).Error)
	assert.Equal(t, 75, mid.ProgressPercent)

	// No certificate before the boundary.
	var certs int64
	db.Model(&course.Certificate{}).Where("enrollment_id = ?", enrollment.ID).Count(&certs)
	assert.EqualValues(t, 0, certs)

	updated, err := engine.RecordLectureComplete(enrollment.ID, lectures[3].ID)
	require.NoError(t, err)
	assert.Equal(t, 100, updated.ProgressPercent)
	assert.Equal(t, course.EnrollmentCompleted, updated.Status)
	require.NotNil(t, updated.CompletedAt)

	db.Model(&course.Certificate{}).Where("enrollment_id = ?", enrollment.ID).Count(&certs)
	assert.EqualValues(t, 1, certs)
}

func TestCompletionSideEffectsFireOnce(t *testing.T) {
	engine, db := newTestEngine(t)
	enrollment, lectures := seedEnrollment(t, db, 2)

	_, err := engine.RecordLectureComplete(enrollment.ID, lectures[0].ID)
	require.NoError(t, err)
	first, err := engine.RecordLectureComplete(enrollment.ID, lectures[1].ID)
	require.NoError(t, err)
	require.NotNil(t, first.CompletedAt)
	completedAt := *first.CompletedAt

	// Reconciling a completed enrollment must not re-issue or re-stamp.
	again, err := engine.Reconcile(enrollment.ID)
	require.NoError(t, err)
	assert.Equal(t, course.EnrollmentCompleted, again.Status)
	require.NotNil(t, again.CompletedAt)
	assert.WithinDuration(t, completedAt, *again.CompletedAt, time.Second)

	var certs int64
	db.Model(&course.Certificate{}).Where("enrollment_id = ?", enrollment.ID).Count(&certs)
	assert.EqualValues(t, 1, certs)
}

func TestRecordLectureCompleteUnknownEnrollment(t *testing.T) {
	engine, _ := newTestEngine(t)
	_, err := engine.RecordLectureComplete(999, 1)
	assert.ErrorIs(t, err, ErrEnrollmentNotFound)
}

func TestRecordLectureCompleteLectureFromOtherCourse(t *testing.T) {
	engine, db := newTestEngine(t)
	enrollment, _ := seedEnrollment(t, db, 2)

	other := course.Lecture{CourseID: enrollment.CourseID + 100, Title: "Stray", IsPublished: true}
	require.NoError(t, db.Create(&other).Error)

	_, err := engine.RecordLectureComplete(enrollment.ID, other.ID)
	assert.ErrorIs(t, err, ErrLectureNotFound)
}

func TestUpdateWatchProgressBelowThreshold(t *testing.T) {
	engine, db := newTestEngine(t)
	enrollment, lectures := seedEnrollment(t, db, 2)

	// 500s watched: short of both the 540s requirement and 90% of 600s.
	updated, err := engine.UpdateWatchProgress(enrollment.ID, lectures[0].ID, 500, 600)
	require.NoError(t, err)
	assert.Equal(t, 0, updated.ProgressPercent)

	var persisted course.LectureProgress
	require.NoError(t, db.Where("enrollment_id = ? AND lecture_id = ?", enrollment.ID, lectures[0].ID).First(&persisted).Error)
	assert.Equal(t, 500, persisted.WatchedSeconds)
}

func TestUpdateWatchProgressCrossesThreshold(t *testing.T) {
	engine, db := newTestEngine(t)
	enrollment, lectures := seedEnrollment(t, db, 2)

	updated, err := engine.UpdateWatchProgress(enrollment.ID, lectures[0].ID, 560, 600)
	require.NoError(t, err)
	assert.Equal(t, 50, updated.ProgressPercent)
	assert.Equal(t, 1, updated.CompletedLectures)
}

func TestUpdateWatchProgressRequiresBothConditions(t *testing.T) {
	engine, db := newTestEngine(t)
	enrollment, lectures := seedEnrollment(t, db, 1)

	// Past the required seconds but under 90% of the runtime: not complete.
	lecture := lectures[0]
	require.NoError(t, db.Model(&course.Lecture{}).Where("id = ?", lecture.ID).Update("required_seconds", 300).Error)

	updated, err := engine.UpdateWatchProgress(enrollment.ID, lecture.ID, 400, 600)
	require.NoError(t, err)
	assert.Equal(t, 0, updated.CompletedLectures)

	updated, err = engine.UpdateWatchProgress(enrollment.ID, lecture.ID, 540, 600)
	require.NoError(t, err)
	assert.Equal(t, 1, updated.CompletedLectures)
}

func TestWatchProgressNeverRegresses(t *testing.T) {
	engine, db := newTestEngine(t)
	enrollment, lectures := seedEnrollment(t, db, 2)

	_, err := engine.UpdateWatchProgress(enrollment.ID, lectures[0].ID, 400, 600)
	require.NoError(t, err)
	// A stale, lower report must not shrink the recorded watch time.
	_, err = engine.UpdateWatchProgress(enrollment.ID, lectures[0].ID, 120, 600)
	require.NoError(t, err)

	var persisted course.LectureProgress
	require.NoError(t, db.Where("enrollment_id = ? AND lecture_id = ?", enrollment.ID, lectures[0].ID).First(&persisted).Error)
	assert.Equal(t, 400, persisted.WatchedSeconds)
}

func TestWatchStateSurvivesSessionEnd(t *testing.T) {
	engine, db := newTestEngine(t)
	enrollment, lectures := seedEnrollment(t, db, 2)

	_, err := engine.UpdateWatchProgress(enrollment.ID, lectures[0].ID, 400, 600)
	require.NoError(t, err)
	engine.EndSession(enrollment.ID)

	// The next session warms its cache from the store, so a stale low
	// report cannot shrink the recorded watch time.
	_, err = engine.UpdateWatchProgress(enrollment.ID, lectures[0].ID, 120, 600)
	require.NoError(t, err)

	var persisted course.LectureProgress
	require.NoError(t, db.Where("enrollment_id = ? AND lecture_id = ?", enrollment.ID, lectures[0].ID).First(&persisted).Error)
	assert.Equal(t, 400, persisted.WatchedSeconds)
}

func TestProgressPercentMonotonicWhenCourseGrows(t *testing.T) {
	engine, db := newTestEngine(t)
	enrollment, lectures := seedEnrollment(t, db, 4)

	_, err := engine.RecordLectureComplete(enrollment.ID, lectures[0].ID)
	require.NoError(t, err)
	_, err = engine.RecordLectureComplete(enrollment.ID, lectures[1].ID)
	require.NoError(t, err)

	// Publishing two more lectures would push the raw ratio down to 33%;
	// the stored percent must hold at 50.
	for i := 0; i < 2; i++ {
		l := course.Lecture{CourseID: enrollment.CourseID, Title: "Added later", IsPublished: true}
		require.NoError(t, db.Create(&l).Error)
	}

	updated, err := engine.Reconcile(enrollment.ID)
	require.NoError(t, err)
	assert.Equal(t, 50, updated.ProgressPercent)
	assert.Equal(t, 6, updated.TotalLectures)
}
