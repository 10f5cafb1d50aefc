package services

import (
	"log"
	"math"
	"sync"
	"time"

	"sefy/models/course"

	"gorm.io/gorm"
)

// watchState is the engine-owned per-lecture watch cache entry.
type watchState struct {
	WatchedSeconds int
	TotalSeconds   int
}

// ProgressEngine owns enrollment records: it recomputes percent-complete
// from the completed-lecture set, detects the completion boundary and
// triggers certificate issuance exactly once.
type ProgressEngine struct {
	db              *gorm.DB
	issuer          *CertificateIssuer
	minWatchPercent int

	mu    sync.Mutex
	watch map[uint]map[uint]*watchState // enrollmentID -> lectureID
}

func NewProgressEngine(db *gorm.DB, issuer *CertificateIssuer, minWatchPercent int) *ProgressEngine {
	if minWatchPercent < 1 || minWatchPercent > 100 {
		minWatchPercent = 90
	}
	return &ProgressEngine{
		db:              db,
		issuer:          issuer,
		minWatchPercent: minWatchPercent,
		watch:           make(map[uint]map[uint]*watchState),
	}
}

// RecordLectureComplete marks a lecture done for an enrollment. Idempotent:
// a lecture already in the completed set is a no-op. Crossing into 100%
// transitions the enrollment to COMPLETED, stamps CompletedAt once and
// issues the certificate, guarded against duplicates by the issuer's
// pre-check.
func (e *ProgressEngine) RecordLectureComplete(enrollmentID, lectureID uint) (*course.Enrollment, error) {
	var enrollment course.Enrollment
	if err := e.db.Where("id = ? AND is_deleted = ?", enrollmentID, false).First(&enrollment).Error; err != nil {
		return nil, ErrEnrollmentNotFound
	}

	var lecture course.Lecture
	if err := e.db.Where("id = ? AND course_id = ? AND is_deleted = ?", lectureID, enrollment.CourseID, false).First(&lecture).Error; err != nil {
		return nil, ErrLectureNotFound
	}

	var existing course.LectureCompletion
	if err := e.db.Where("enrollment_id = ? AND lecture_id = ? AND is_deleted = ?", enrollmentID, lectureID, false).First(&existing).Error; err == nil {
		// Already counted; nothing changes.
		return &enrollment, nil
	}

	completion := course.LectureCompletion{
		EnrollmentID: enrollmentID,
		UserID:       enrollment.UserID,
		CourseID:     enrollment.CourseID,
		LectureID:    lectureID,
		Status:       "COMPLETED",
	}
	if err := e.db.Create(&completion).Error; err != nil {
		return nil, err
	}

	return e.recompute(&enrollment)
}

// recompute refreshes counts and percent from the completed-lecture set and
// applies the completion transition. Recomputation happens-before the
// completion check, always in the same call.
func (e *ProgressEngine) recompute(enrollment *course.Enrollment) (*course.Enrollment, error) {
	var total, completed int64
	e.db.Model(&course.Lecture{}).
		Where("course_id = ? AND is_deleted = ? AND is_published = ?", enrollment.CourseID, false, true).
		Count(&total)
	e.db.Model(&course.LectureCompletion{}).
		Where("enrollment_id = ? AND is_deleted = ?", enrollment.ID, false).
		Count(&completed)

	enrollment.CompletedLectures = int(completed)
	enrollment.TotalLectures = int(total)

	percent := progressPercent(int(completed), int(total))
	// Percent is monotonic non-decreasing for a given enrollment.
	if percent > enrollment.ProgressPercent {
		enrollment.ProgressPercent = percent
	}
	enrollment.LastAccessedAt = time.Now()

	justCompleted := enrollment.ProgressPercent >= 100 && enrollment.Status != course.EnrollmentCompleted
	if justCompleted {
		enrollment.Status = course.EnrollmentCompleted
		if enrollment.CompletedAt == nil {
			now := time.Now()
			enrollment.CompletedAt = &now
		}
	}

	if err := e.db.Save(enrollment).Error; err != nil {
		return enrollment, err
	}

	if justCompleted && e.issuer != nil {
		// Issuance failure is reported, never rolled into the enrollment:
		// completion stands and a retry is suppressed by the issuer's
		// duplicate pre-check.
		if _, err := e.issuer.Issue(enrollment); err != nil {
			log.Printf("[PROGRESS] certificate issuance failed for enrollment %d: %v", enrollment.ID, err)
		}
	}

	return enrollment, nil
}

// UpdateWatchProgress persists per-lecture watch state and promotes the
// lecture to completed once the watch threshold is crossed: at least the
// lecture's required seconds AND at least the configured minimum percentage
// of its runtime. Sub-threshold updates never regress anything.
func (e *ProgressEngine) UpdateWatchProgress(enrollmentID, lectureID uint, watchedSeconds, totalSeconds int) (*course.Enrollment, error) {
	var enrollment course.Enrollment
	if err := e.db.Where("id = ? AND is_deleted = ?", enrollmentID, false).First(&enrollment).Error; err != nil {
		return nil, ErrEnrollmentNotFound
	}

	var lecture course.Lecture
	if err := e.db.Where("id = ? AND course_id = ? AND is_deleted = ?", lectureID, enrollment.CourseID, false).First(&lecture).Error; err != nil {
		return nil, ErrLectureNotFound
	}

	if lecture.TotalSeconds > 0 {
		totalSeconds = lecture.TotalSeconds
	}
	if watchedSeconds < 0 {
		watchedSeconds = 0
	}

	state := e.watchStateFor(enrollmentID, lectureID)
	if watchedSeconds > state.WatchedSeconds {
		state.WatchedSeconds = watchedSeconds
	}
	state.TotalSeconds = totalSeconds

	if err := e.persistWatchState(enrollmentID, lectureID, state); err != nil {
		return &enrollment, err
	}

	if e.thresholdCrossed(&lecture, state) {
		return e.RecordLectureComplete(enrollmentID, lectureID)
	}

	enrollment.LastAccessedAt = time.Now()
	if err := e.db.Save(&enrollment).Error; err != nil {
		return &enrollment, err
	}
	return &enrollment, nil
}

func (e *ProgressEngine) thresholdCrossed(lecture *course.Lecture, state *watchState) bool {
	if state.WatchedSeconds < lecture.RequiredSeconds {
		return false
	}
	if state.TotalSeconds <= 0 {
		// No runtime to measure against: required seconds alone decide.
		return true
	}
	return state.WatchedSeconds*100 >= e.minWatchPercent*state.TotalSeconds
}

func (e *ProgressEngine) watchStateFor(enrollmentID, lectureID uint) *watchState {
	e.mu.Lock()
	defer e.mu.Unlock()

	lectures, ok := e.watch[enrollmentID]
	if !ok {
		lectures = make(map[uint]*watchState)
		e.watch[enrollmentID] = lectures
	}
	state, ok := lectures[lectureID]
	if !ok {
		state = &watchState{}
		lectures[lectureID] = state

		// Warm from the store so restarts do not lose watch time.
		var persisted course.LectureProgress
		if err := e.db.Where("enrollment_id = ? AND lecture_id = ? AND is_deleted = ?", enrollmentID, lectureID, false).First(&persisted).Error; err == nil {
			state.WatchedSeconds = persisted.WatchedSeconds
			state.TotalSeconds = persisted.TotalSeconds
		}
	}
	return state
}

func (e *ProgressEngine) persistWatchState(enrollmentID, lectureID uint, state *watchState) error {
	var record course.LectureProgress
	err := e.db.Where("enrollment_id = ? AND lecture_id = ? AND is_deleted = ?", enrollmentID, lectureID, false).First(&record).Error
	if err != nil {
		record = course.LectureProgress{
			EnrollmentID:   enrollmentID,
			LectureID:      lectureID,
			WatchedSeconds: state.WatchedSeconds,
			TotalSeconds:   state.TotalSeconds,
		}
		return e.db.Create(&record).Error
	}

	if state.WatchedSeconds > record.WatchedSeconds {
		record.WatchedSeconds = state.WatchedSeconds
	}
	record.TotalSeconds = state.TotalSeconds
	return e.db.Save(&record).Error
}

// EndSession evicts an enrollment's watch cache; persisted state remains the
// source of truth for the next session.
func (e *ProgressEngine) EndSession(enrollmentID uint) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.watch, enrollmentID)
}

// Reconcile recomputes one enrollment's progress from the store. Used by the
// reconciliation job to repair drift after reported persistence failures.
func (e *ProgressEngine) Reconcile(enrollmentID uint) (*course.Enrollment, error) {
	var enrollment course.Enrollment
	if err := e.db.Where("id = ? AND is_deleted = ?", enrollmentID, false).First(&enrollment).Error; err != nil {
		return nil, ErrEnrollmentNotFound
	}
	return e.recompute(&enrollment)
}

// progressPercent rounds to the nearest integer so 100 is reached exactly
// when the last lecture completes.
func progressPercent(completed, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(completed) / float64(total) * 100))
}
