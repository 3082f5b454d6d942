package services

import (
	"encoding/json"
	"fmt"
	"log"

	"github.com/yukikurage/task-colab-api/internal/metrics"
	"github.com/yukikurage/task-colab-api/internal/models"
	"github.com/yukikurage/task-colab-api/internal/repository"
	"gorm.io/datatypes"
)

// Cascade names used for metrics and activity payloads.
const (
	CascadeRequestAcceptance = "request_acceptance"
	CascadeAutoCompletion    = "auto_completion"
	CascadeSubmissionReview  = "submission_review"
	CascadeTaskCreation      = "task_creation"
	CascadeSubmissionCreate  = "submission_create"
	CascadeSubmissionDelete  = "submission_delete"
	CascadeProjectReopen     = "project_reopen"
	CascadeTaskReturned      = "task_returned"
)

// ActivityService appends the audit trail written next to every status change.
type ActivityService struct {
	repo repository.ActivityRepository
}

// NewActivityService creates a new ActivityService
func NewActivityService(repo repository.ActivityRepository) *ActivityService {
	return &ActivityService{repo: repo}
}

// Record appends an event. A failure is logged and never fails the caller.
func (s *ActivityService) Record(entity models.EntityType, entityID, projectID, actorID uint64, action string, payload map[string]interface{}) {
	event := &models.ActivityEvent{
		EntityType: entity,
		EntityID:   entityID,
		ProjectID:  projectID,
		ActorID:    actorID,
		Action:     action,
	}
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			log.Printf("activity: failed to encode payload for %s %d: %v", entity, entityID, err)
		} else {
			event.Payload = datatypes.JSON(raw)
		}
	}

	if err := s.repo.Create(event); err != nil {
		log.Printf("activity: failed to record %s on %s %d: %v", action, entity, entityID, err)
	}
}

// Transition records a status change and counts it.
func (s *ActivityService) Transition(entity models.EntityType, entityID, projectID, actorID uint64, from, to string) {
	metrics.ObserveTransition(string(entity), from, to)
	s.Record(entity, entityID, projectID, actorID, "status_changed", map[string]interface{}{
		"from": from,
		"to":   to,
	})
}

// CascadeStep records one completed step of a multi-entity cascade.
func (s *ActivityService) CascadeStep(cascade, step string, entity models.EntityType, entityID, projectID, actorID uint64, payload map[string]interface{}) {
	metrics.ObserveCascadeStep(cascade, step)
	if payload == nil {
		payload = map[string]interface{}{}
	}
	payload["cascade"] = cascade
	s.Record(entity, entityID, projectID, actorID, step, payload)
}

// ListForProject returns the events of a project, newest first.
func (s *ActivityService) ListForProject(projectID uint64, page, pageSize int) ([]models.ActivityEvent, int64, error) {
	events, total, err := s.repo.ListByProject(projectID, page, pageSize)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list activity: %w", err)
	}
	return events, total, nil
}
