package jobs

import (
	"fmt"
	"log"
	"time"

	"github.com/apprenticeapex/backend/database"
	"github.com/apprenticeapex/backend/models"
	"github.com/apprenticeapex/backend/notifications"
)

// SendInterviewReminders emails both sides of an interview starting in
// roughly one hour. The 5-minute window matches the cron cadence so each
// interview is picked up exactly once.
func SendInterviewReminders() {
	log.Println("Running job: SendInterviewReminders...")

	now := time.Now()
	lowerBound := now.Add(60 * time.Minute)
	upperBound := now.Add(65 * time.Minute)

	var upcomingInterviews []models.Application

	err := database.DB.
		Preload("Candidate").
		Preload("Apprenticeship").
		Preload("Apprenticeship.Employer").
		Where("status = ? AND interview_at BETWEEN ? AND ?", "interview", lowerBound, upperBound).
		Find(&upcomingInterviews).Error

	if err != nil {
		log.Printf("Error checking for upcoming interviews: %v", err)
		return
	}

	if len(upcomingInterviews) == 0 {
		return
	}

	for _, application := range upcomingInterviews {
		log.Printf("Sending interview reminder for application: %s", application.Reference)

		emailSubject := "Reminder: Your Interview Starts in 1 Hour!"
		emailBody := fmt.Sprintf(
			"<h1>Interview Reminder</h1><p>Hi there,</p><p>This is a friendly reminder that the interview for \"%s\" (reference %s) is scheduled for %s.</p>",
			application.Apprenticeship.Title,
			application.Reference,
			application.InterviewAt.Format(time.Kitchen),
		)

		go notifications.SendEmail(application.Candidate.FullName, application.Candidate.Email, emailSubject, emailBody)
		go notifications.SendEmail(application.Apprenticeship.Employer.FullName, application.Apprenticeship.Employer.Email, emailSubject, emailBody)
	}
}
