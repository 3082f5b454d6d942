package workflow

import "github.com/yukikurage/task-colab-api/internal/models"

// ProjectTransitions is the project lifecycle.
var ProjectTransitions = Table[models.ProjectStatus]{
	models.ProjectStatusOpen: {
		models.ProjectStatusAssigned:  PartyBuyer | PartyAdmin,
		models.ProjectStatusCancelled: PartyBuyer | PartyAdmin,
	},
	models.ProjectStatusAssigned: {
		models.ProjectStatusInProgress: PartyBuyer | PartyAssignedSolver | PartyAdmin,
		models.ProjectStatusOpen:       PartyBuyer | PartyAssignedSolver | PartyAdmin,
		models.ProjectStatusCancelled:  PartyBuyer | PartyAssignedSolver | PartyAdmin,
	},
	models.ProjectStatusInProgress: {
		models.ProjectStatusCompleted: PartyBuyer | PartyAdmin,
		models.ProjectStatusCancelled: PartyBuyer | PartyAdmin,
	},
	models.ProjectStatusCompleted: {},
	models.ProjectStatusCancelled: {},
}

// TaskTransitions is the task lifecycle for manual status changes. Submission
// creation and review move tasks outside this table.
var TaskTransitions = Table[models.TaskStatus]{
	models.TaskStatusTodo: {
		models.TaskStatusInProgress: PartyAssignedSolver,
	},
	models.TaskStatusInProgress: {
		models.TaskStatusReview: PartyAssignedSolver,
		models.TaskStatusTodo:   PartyAssignedSolver,
	},
	models.TaskStatusReview: {
		models.TaskStatusCompleted:  PartyBuyer | PartyAdmin,
		models.TaskStatusInProgress: PartyBuyer | PartyAdmin,
	},
	models.TaskStatusCompleted: {},
}

// RequestTransitions is the request lifecycle. Every non-pending status is terminal.
var RequestTransitions = Table[models.RequestStatus]{
	models.RequestStatusPending: {
		models.RequestStatusAccepted:  PartyBuyer,
		models.RequestStatusRejected:  PartyBuyer,
		models.RequestStatusWithdrawn: PartyApplicant,
	},
	models.RequestStatusAccepted:  {},
	models.RequestStatusRejected:  {},
	models.RequestStatusWithdrawn: {},
}

// SubmissionReviews is the submission review: one decision, from pending only.
var SubmissionReviews = Table[models.SubmissionStatus]{
	models.SubmissionStatusPending: {
		models.SubmissionStatusAccepted:          PartyBuyer | PartyAdmin,
		models.SubmissionStatusRejected:          PartyBuyer | PartyAdmin,
		models.SubmissionStatusRevisionRequested: PartyBuyer | PartyAdmin,
	},
	models.SubmissionStatusAccepted:          {},
	models.SubmissionStatusRejected:          {},
	models.SubmissionStatusRevisionRequested: {},
}

// TaskStatusAfterReview maps a review outcome to the task status it forces.
var TaskStatusAfterReview = map[models.SubmissionStatus]models.TaskStatus{
	models.SubmissionStatusAccepted:          models.TaskStatusCompleted,
	models.SubmissionStatusRejected:          models.TaskStatusInProgress,
	models.SubmissionStatusRevisionRequested: models.TaskStatusInProgress,
}

// TaskAcceptsSubmissions lists the task statuses a new submission may be created in.
var TaskAcceptsSubmissions = map[models.TaskStatus]bool{
	models.TaskStatusTodo:       true,
	models.TaskStatusInProgress: true,
}

// ProjectAcceptsTasks lists the project statuses tasks may be created in.
var ProjectAcceptsTasks = map[models.ProjectStatus]bool{
	models.ProjectStatusAssigned:   true,
	models.ProjectStatusInProgress: true,
}

// ProjectEditable lists the project statuses in which fields may be edited.
var ProjectEditable = map[models.ProjectStatus]bool{
	models.ProjectStatusOpen:     true,
	models.ProjectStatusAssigned: true,
}

// ProjectDeletable lists the project statuses from which a project may be deleted.
var ProjectDeletable = map[models.ProjectStatus]bool{
	models.ProjectStatusOpen:      true,
	models.ProjectStatusCancelled: true,
}
