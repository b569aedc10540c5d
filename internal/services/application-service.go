package services

import (
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/SundayYogurt/rolematch/internal/apperr"
	"github.com/SundayYogurt/rolematch/internal/domain"
	"github.com/SundayYogurt/rolematch/internal/dto"
	"github.com/SundayYogurt/rolematch/internal/helper"
	"github.com/SundayYogurt/rolematch/internal/interfaces"
	"github.com/SundayYogurt/rolematch/internal/metrics"
	"github.com/SundayYogurt/rolematch/internal/repository"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	msgProjectNotOpen    = "project is not published or already terminated"
	msgRoleNotRecruiting = "role is not recruiting"
	msgRoleFull          = "role has no open seats"
	msgAlreadyApplied    = "already applied for this role"
	msgAlreadyMember     = "already a member of this project"
	msgAppNotFound       = "application not found"
	msgNotPending        = "application is not pending"
)

type ApplicationService interface {
	Submit(roleID, studentID uint, motivation string) (uint, error)
	Cancel(applicationID, studentID uint) error
	Review(applicationID, enterpriseID uint, decision string) error
	ListForStudent(studentID uint) ([]dto.StudentApplicationRow, error)
	ListForRole(roleID, enterpriseID uint) ([]dto.RoleApplicantRow, error)
}

type applicationService struct {
	repo     repository.ApplicationRepository
	roleRepo repository.RoleRepository
	userRepo repository.UserRepository

	// messaging
	producer interfaces.ProducerHandler

	log logrus.FieldLogger
	now func() time.Time
}

func NewApplicationService(
	repo repository.ApplicationRepository,
	roleRepo repository.RoleRepository,
	userRepo repository.UserRepository,
	producer interfaces.ProducerHandler,
	log logrus.FieldLogger,
) ApplicationService {
	return &applicationService{
		repo:     repo,
		roleRepo: roleRepo,
		userRepo: userRepo,
		producer: producer,
		log:      log,
		now:      time.Now,
	}
}

func (s *applicationService) Submit(roleID, studentID uint, motivation string) (uint, error) {
	motivation = strings.TrimSpace(motivation)

	var app *domain.RoleApplication
	err := s.repo.WithinTx(func(tx repository.ApplicationTx) error {
		project, role, err := tx.LockSeat(roleID)
		if err != nil {
			if helper.IsNotFound(err) {
				return apperr.NotFound("role not found")
			}
			return err
		}
		if !project.Status.Published() {
			return apperr.InvalidState(msgProjectNotOpen)
		}
		if role.Status != domain.RoleStatusRecruiting {
			return apperr.InvalidState(msgRoleNotRecruiting)
		}
		if !role.HasOpenSeat() {
			return apperr.Full(msgRoleFull)
		}

		existing, err := tx.FindByRoleAndStudent(role.ID, studentID)
		if err != nil && !helper.IsNotFound(err) {
			return err
		}
		if existing != nil && existing.Status.Active() {
			return apperr.Conflict(msgAlreadyApplied)
		}

		member, err := tx.HasAcceptedInProject(project.ID, studentID)
		if err != nil {
			return err
		}
		if member {
			return apperr.Conflict(msgAlreadyMember)
		}

		now := s.now()
		if existing != nil {
			if err := tx.Reopen(existing.ID, motivation, now); err != nil {
				return err
			}
			existing.Motivation = motivation
			existing.Status = domain.ApplicationStatusPending
			existing.UpdatedAt = now
			app = existing
			return nil
		}

		app = &domain.RoleApplication{
			RoleID:     role.ID,
			ProjectID:  project.ID,
			StudentID:  studentID,
			Motivation: motivation,
			Status:     domain.ApplicationStatusPending,
			AppliedAt:  now,
			UpdatedAt:  now,
		}
		return tx.Create(app)
	})
	if err != nil {
		return 0, s.fail("submit", err)
	}

	s.committed(dto.EventApplicationSubmitted, app)
	return app.ID, nil
}

func (s *applicationService) Cancel(applicationID, studentID uint) error {
	ok, err := s.repo.CancelPending(applicationID, studentID, s.now())
	if err != nil {
		return s.fail("cancel", err)
	}
	if !ok {
		return s.fail("cancel", apperr.Conflict("application cannot be cancelled"))
	}

	app, err := s.repo.FindByID(applicationID)
	if err != nil {
		s.log.WithError(err).WithField("application_id", applicationID).Warn("cancelled application could not be reloaded")
		return nil
	}
	s.committed(dto.EventApplicationCancelled, app)
	return nil
}

// Review applies an enterprise decision to a pending application. An
// application that does not exist and one belonging to another publisher are
// indistinguishable to the caller.
func (s *applicationService) Review(applicationID, enterpriseID uint, decision string) error {
	d, err := domain.ParseReviewDecision(decision)
	if err != nil {
		return s.fail("review", apperr.Validation("decision must be accepted or rejected"))
	}

	var app *domain.RoleApplication
	err = s.repo.WithinTx(func(tx repository.ApplicationTx) error {
		current, err := tx.FindApplication(applicationID)
		if err != nil {
			if helper.IsNotFound(err) {
				return apperr.NotFound(msgAppNotFound)
			}
			return err
		}

		project, role, err := tx.LockSeat(current.RoleID)
		if err != nil {
			if helper.IsNotFound(err) {
				return apperr.NotFound(msgAppNotFound)
			}
			return err
		}
		if project.PublisherID != enterpriseID {
			return apperr.NotFound(msgAppNotFound)
		}

		locked, err := tx.LockApplication(applicationID)
		if err != nil {
			if helper.IsNotFound(err) {
				return apperr.NotFound(msgAppNotFound)
			}
			return err
		}
		if !locked.Status.CanTransition(d.Status()) {
			return apperr.InvalidState(msgNotPending)
		}

		if d == domain.DecisionAccepted {
			if !project.Status.Published() {
				return apperr.InvalidState(msgProjectNotOpen)
			}
			if role.Status != domain.RoleStatusRecruiting {
				return apperr.InvalidState(msgRoleNotRecruiting)
			}
			if !role.HasOpenSeat() {
				return apperr.Full(msgRoleFull)
			}
			member, err := tx.HasAcceptedInProject(project.ID, locked.StudentID)
			if err != nil {
				return err
			}
			if member {
				return apperr.Conflict("student is " + msgAlreadyMember)
			}
		}

		now := s.now()
		moved, err := tx.Transition(locked.ID, domain.ApplicationStatusPending, d.Status(), now)
		if err != nil {
			return err
		}
		if !moved {
			return apperr.InvalidState(msgNotPending)
		}

		if d == domain.DecisionAccepted {
			if _, err := tx.TakeSeat(role.ID); err != nil {
				if errors.Is(err, repository.ErrNoSeat) {
					return apperr.Full(msgRoleFull)
				}
				return err
			}
		}

		locked.Status = d.Status()
		locked.UpdatedAt = now
		app = locked
		return nil
	})
	if err != nil {
		return s.fail("review", err)
	}

	eventType := dto.EventApplicationRejected
	if d == domain.DecisionAccepted {
		eventType = dto.EventApplicationAccepted
	}
	s.committed(eventType, app)
	return nil
}

func (s *applicationService) ListForStudent(studentID uint) ([]dto.StudentApplicationRow, error) {
	rows, err := s.repo.ListByStudent(studentID)
	if err != nil {
		return nil, s.fail("list student applications", err)
	}
	return rows, nil
}

func (s *applicationService) ListForRole(roleID, enterpriseID uint) ([]dto.RoleApplicantRow, error) {
	owned, err := s.roleRepo.IsOwnedBy(roleID, enterpriseID)
	if err != nil {
		return nil, s.fail("list role applicants", err)
	}
	if !owned {
		return nil, apperr.NotFound("role not found")
	}

	rows, err := s.repo.ListByRole(roleID)
	if err != nil {
		return nil, s.fail("list role applicants", err)
	}
	return rows, nil
}

// fail converts err into an *apperr.Error. Kinds already decided by the state
// machine pass through; anything else is an unexpected storage fault.
func (s *applicationService) fail(op string, err error) error {
	var appErr *apperr.Error
	if !errors.As(err, &appErr) {
		if helper.IsUniqueViolation(err) {
			appErr = apperr.Wrap(apperr.KindConflict, msgAlreadyApplied, err)
		} else {
			s.log.WithError(err).WithField("op", op).Error("application operation failed")
			appErr = apperr.Wrap(apperr.KindInternal, "internal server error", err)
		}
	}
	metrics.RecordRejection(string(appErr.Kind))
	return appErr
}

func (s *applicationService) committed(eventType string, app *domain.RoleApplication) {
	if app == nil {
		return
	}
	s.log.WithFields(logrus.Fields{
		"application_id": app.ID,
		"role_id":        app.RoleID,
		"student_id":     app.StudentID,
		"status":         app.Status,
	}).Info(eventType)
	metrics.RecordTransition(string(app.Status))

	if s.producer == nil {
		return
	}

	event := dto.ApplicationEvent{
		EventID:       uuid.NewString(),
		Type:          eventType,
		ApplicationID: app.ID,
		RoleID:        app.RoleID,
		ProjectID:     app.ProjectID,
		StudentID:     app.StudentID,
		Status:        string(app.Status),
		OccurredAt:    app.UpdatedAt,
	}
	if s.userRepo != nil {
		if student, err := s.userRepo.FindUserById(app.StudentID); err == nil {
			event.StudentName = student.RealName
			event.StudentContact = student.Contact
		}
	}

	payload, err := json.Marshal(event)
	if err != nil {
		s.log.WithError(err).Warn("failed to encode application event")
		return
	}
	key := []byte(strconv.FormatUint(uint64(app.ID), 10))
	if err := s.producer.PublishMessage(key, payload); err != nil {
		s.log.WithError(err).WithField("application_id", app.ID).Warn("failed to publish application event")
	}
}
