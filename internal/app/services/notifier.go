package services

import (
	"context"
	"sync"
	"time"

	"github.com/yigit/scholarhub/internal/app/models"
	"github.com/yigit/scholarhub/internal/app/repositories"
	"github.com/yigit/scholarhub/internal/pkg/email"
	"github.com/yigit/scholarhub/internal/pkg/logger"
)

const notifyTimeout = 30 * time.Second

// Notifier emails students about their applications in the background.
// A nil *Notifier is valid and sends nothing.
type Notifier struct {
	applicationRepo *repositories.ApplicationRepository
	mailer          email.EmailService
	wg              sync.WaitGroup
}

// NewNotifier creates a new Notifier
func NewNotifier(applicationRepo *repositories.ApplicationRepository, mailer email.EmailService) *Notifier {
	return &Notifier{
		applicationRepo: applicationRepo,
		mailer:          mailer,
	}
}

// ApplicationSubmitted confirms receipt of a submitted application
func (n *Notifier) ApplicationSubmitted(applicationID int64) {
	n.dispatch(applicationID, func(view *models.ApplicationDetail) error {
		return n.mailer.SendSubmissionReceivedEmail(view.Student.Email, studentName(view.Student), view.Scholarship.Name)
	})
}

// StatusChanged tells the student about a review decision
func (n *Notifier) StatusChanged(applicationID int64) {
	n.dispatch(applicationID, func(view *models.ApplicationDetail) error {
		return n.mailer.SendStatusChangeEmail(view.Student.Email, studentName(view.Student), view.Scholarship.Name,
			string(view.Application.Status), view.Application.Remarks)
	})
}

// Wait blocks until every pending email has been handled
func (n *Notifier) Wait() {
	if n == nil {
		return
	}
	n.wg.Wait()
}

func (n *Notifier) dispatch(applicationID int64, send func(view *models.ApplicationDetail) error) {
	if n == nil || n.mailer == nil {
		return
	}

	n.wg.Add(1)
	go func() {
		defer n.wg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
		defer cancel()

		view, err := n.applicationRepo.GetApplicationView(ctx, applicationID)
		if err != nil {
			logger.Error().Err(err).Int64("applicationID", applicationID).Msg("Failed to load application for notification")
			return
		}
		if view.Student == nil || view.Student.Email == "" {
			return
		}
		if err := send(view); err != nil {
			logger.Error().Err(err).Int64("applicationID", applicationID).Msg("Failed to send application email")
		}
	}()
}

func studentName(s *models.Student) string {
	return s.FirstName + " " + s.LastName
}
