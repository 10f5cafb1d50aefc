package utils

import (
	"log"

	"sefy/database"
	courseModels "sefy/models/course"
	"sefy/services"

	"github.com/robfig/cron/v3"
)

// InitializeReconcileScheduler sets up the nightly progress reconciliation.
// Progress writes are not rolled back on persistence failures, so drift
// between an enrollment row and its completed-lecture set is repaired here
// against the store.
func InitializeReconcileScheduler(engine *services.ProgressEngine) {
	log.Println("[RECONCILER] Initializing progress reconciliation scheduler...")

	c := cron.New()

	// Run daily at 3 AM
	c.AddFunc("0 3 * * *", func() {
		log.Println("[RECONCILER] Running nightly enrollment reconciliation...")
		ReconcileEnrollments(engine)
	})

	c.Start()
	log.Println("[RECONCILER] Scheduler started - runs daily at 3 AM")
}

// ReconcileEnrollments recomputes progress for every active enrollment.
func ReconcileEnrollments(engine *services.ProgressEngine) {
	db := database.Database.Db

	var enrollments []courseModels.Enrollment
	if err := db.Where("status = ? AND is_deleted = ?", courseModels.EnrollmentActive, false).
		Find(&enrollments).Error; err != nil {
		log.Printf("[RECONCILER] Error fetching active enrollments: %v", err)
		return
	}

	repaired := 0
	for _, enrollment := range enrollments {
		before := enrollment.ProgressPercent
		updated, err := engine.Reconcile(enrollment.ID)
		if err != nil {
			log.Printf("[RECONCILER] Error reconciling enrollment %d: %v", enrollment.ID, err)
			continue
		}
		if updated.ProgressPercent != before || updated.Status != enrollment.Status {
			repaired++
		}
	}

	log.Printf("[RECONCILER] Checked %d enrollments, repaired %d", len(enrollments), repaired)
}
