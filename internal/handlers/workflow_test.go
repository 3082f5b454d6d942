package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/yukikurage/task-colab-api/internal/dto"
	"github.com/yukikurage/task-colab-api/internal/models"
	"github.com/yukikurage/task-colab-api/internal/testutil"
)

func coverLetter() string {
	return strings.Repeat("I have shipped this before. ", 3)
}

func (suite *HandlerTestSuite) TestRequestAcceptanceCascade() {
	project := testutil.CreateProject(suite.T(), suite.db, suite.buyer, models.ProjectStatusOpen, nil)

	w := suite.do(http.MethodPost, "/api/requests", map[string]interface{}{
		"project_id":   project.ID,
		"cover_letter": coverLetter(),
	}, suite.solver)
	suite.requireStatus(w, http.StatusCreated)
	var mine dto.RequestDTO
	suite.decode(w, &mine)

	w = suite.do(http.MethodPost, "/api/requests", map[string]interface{}{
		"project_id":   project.ID,
		"cover_letter": coverLetter(),
	}, suite.other)
	suite.requireStatus(w, http.StatusCreated)
	var sibling dto.RequestDTO
	suite.decode(w, &sibling)

	w = suite.do(http.MethodPost, "/api/requests", map[string]interface{}{
		"project_id":   project.ID,
		"cover_letter": coverLetter(),
	}, suite.solver)
	suite.requireStatus(w, http.StatusConflict)

	w = suite.do(http.MethodGet, idPath("/api/requests/project", project.ID), nil, suite.buyer)
	suite.requireStatus(w, http.StatusOK)
	var listed []dto.RequestDTO
	suite.decode(w, &listed)
	suite.Len(listed, 2)

	w = suite.do(http.MethodPost, idPath("/api/requests", mine.ID)+"/accept", nil, suite.solver)
	suite.requireStatus(w, http.StatusForbidden)

	w = suite.do(http.MethodPost, idPath("/api/requests", mine.ID)+"/accept", nil, suite.buyer)
	suite.requireStatus(w, http.StatusOK)
	var accepted dto.RequestDTO
	suite.decode(w, &accepted)
	suite.Equal(models.RequestStatusAccepted, accepted.Status)

	reloaded := suite.reloadProject(project.ID)
	suite.Equal(models.ProjectStatusAssigned, reloaded.Status)
	suite.True(reloaded.IsAssignedTo(suite.solver.ID))

	w = suite.do(http.MethodGet, idPath("/api/requests", sibling.ID), nil, suite.other)
	suite.requireStatus(w, http.StatusOK)
	var rejected dto.RequestDTO
	suite.decode(w, &rejected)
	suite.Equal(models.RequestStatusRejected, rejected.Status)
	suite.Equal("Another problem solver was selected", rejected.RejectionReason)
}

func (suite *HandlerTestSuite) TestRequest_BuyerCannotApply() {
	project := testutil.CreateProject(suite.T(), suite.db, suite.buyer, models.ProjectStatusOpen, nil)

	w := suite.do(http.MethodPost, "/api/requests", map[string]interface{}{
		"project_id":   project.ID,
		"cover_letter": coverLetter(),
	}, suite.buyer)
	suite.requireStatus(w, http.StatusForbidden)
}

func (suite *HandlerTestSuite) TestRejectAndWithdrawRequest() {
	project := testutil.CreateProject(suite.T(), suite.db, suite.buyer, models.ProjectStatusOpen, nil)
	first := testutil.CreateRequest(suite.T(), suite.db, project, suite.solver, models.RequestStatusPending)
	second := testutil.CreateRequest(suite.T(), suite.db, project, suite.other, models.RequestStatusPending)

	w := suite.do(http.MethodPost, idPath("/api/requests", first.ID)+"/reject",
		map[string]string{"reason": "Not a fit"}, suite.buyer)
	suite.requireStatus(w, http.StatusOK)
	var rejected dto.RequestDTO
	suite.decode(w, &rejected)
	suite.Equal("Not a fit", rejected.RejectionReason)

	w = suite.do(http.MethodPost, idPath("/api/requests", second.ID)+"/reject", nil, suite.buyer)
	suite.requireStatus(w, http.StatusOK)

	third := testutil.CreateRequest(suite.T(), suite.db, project, testutil.CreateUser(suite.T(), suite.db, models.RoleProblemSolver), models.RequestStatusPending)
	w = suite.do(http.MethodPost, idPath("/api/requests", third.ID)+"/withdraw", nil, suite.solver)
	suite.requireStatus(w, http.StatusForbidden)

	w = suite.do(http.MethodGet, "/api/requests/mine?status=rejected", nil, suite.solver)
	suite.requireStatus(w, http.StatusOK)
	var mine []dto.RequestDTO
	suite.decode(w, &mine)
	suite.Require().Len(mine, 1)
	suite.Equal(first.ID, mine[0].ID)
}

func (suite *HandlerTestSuite) TestTaskLifecycle_PromotesAndCompletesProject() {
	project := testutil.CreateProject(suite.T(), suite.db, suite.buyer, models.ProjectStatusAssigned, suite.solver)

	w := suite.do(http.MethodPost, "/api/tasks", map[string]interface{}{
		"project_id": project.ID,
		"title":      "Wireframes",
		"due_date":   time.Now().Add(7 * 24 * time.Hour).Format(time.RFC3339),
	}, suite.buyer)
	suite.requireStatus(w, http.StatusForbidden)

	w = suite.do(http.MethodPost, "/api/tasks", map[string]interface{}{
		"project_id": project.ID,
		"title":      "Wireframes",
		"due_date":   time.Now().Add(7 * 24 * time.Hour).Format(time.RFC3339),
	}, suite.solver)
	suite.requireStatus(w, http.StatusCreated)
	var task dto.TaskDTO
	suite.decode(w, &task)
	suite.Equal(models.TaskStatusTodo, task.Status)
	suite.Equal(1, task.Order)
	suite.Equal(models.ProjectStatusInProgress, suite.reloadProject(project.ID).Status)

	w = suite.do(http.MethodPatch, idPath("/api/tasks", task.ID)+"/status",
		map[string]string{"status": "completed"}, suite.solver)
	suite.requireStatus(w, http.StatusBadRequest)

	for _, status := range []string{"in_progress", "review"} {
		w = suite.do(http.MethodPatch, idPath("/api/tasks", task.ID)+"/status",
			map[string]string{"status": status}, suite.solver)
		suite.requireStatus(w, http.StatusOK)
	}

	w = suite.do(http.MethodPatch, idPath("/api/tasks", task.ID)+"/status",
		map[string]string{"status": "completed"}, suite.solver)
	suite.requireStatus(w, http.StatusForbidden)

	w = suite.do(http.MethodPatch, idPath("/api/tasks", task.ID)+"/status",
		map[string]string{"status": "completed"}, suite.buyer)
	suite.requireStatus(w, http.StatusOK)

	reloaded := suite.reloadProject(project.ID)
	suite.Equal(models.ProjectStatusCompleted, reloaded.Status)
	suite.NotNil(reloaded.CompletedAt)
}

func (suite *HandlerTestSuite) TestCreateTask_MissingDueDate() {
	project := testutil.CreateProject(suite.T(), suite.db, suite.buyer, models.ProjectStatusInProgress, suite.solver)

	w := suite.do(http.MethodPost, "/api/tasks", map[string]interface{}{
		"project_id": project.ID,
		"title":      "No due date",
	}, suite.solver)
	suite.requireStatus(w, http.StatusBadRequest)
}

func (suite *HandlerTestSuite) TestReorderAndListTasks() {
	project := testutil.CreateProject(suite.T(), suite.db, suite.buyer, models.ProjectStatusInProgress, suite.solver)
	a := testutil.CreateTask(suite.T(), suite.db, project, suite.solver, models.TaskStatusTodo, 1)
	b := testutil.CreateTask(suite.T(), suite.db, project, suite.solver, models.TaskStatusTodo, 2)

	w := suite.do(http.MethodPost, idPath("/api/tasks/project", project.ID)+"/reorder", map[string]interface{}{
		"tasks": []map[string]interface{}{
			{"task_id": a.ID, "order": 2},
			{"task_id": b.ID, "order": 1},
		},
	}, suite.solver)
	suite.requireStatus(w, http.StatusOK)

	w = suite.do(http.MethodGet, idPath("/api/tasks/project", project.ID), nil, suite.buyer)
	suite.requireStatus(w, http.StatusOK)
	var tasks []dto.TaskDTO
	suite.decode(w, &tasks)
	suite.Require().Len(tasks, 2)
	suite.Equal(b.ID, tasks[0].ID)
	suite.Equal(a.ID, tasks[1].ID)

	w = suite.do(http.MethodGet, idPath("/api/tasks/project", project.ID), nil, suite.other)
	suite.requireStatus(w, http.StatusForbidden)
}

func (suite *HandlerTestSuite) TestSuggestTasks_Unavailable() {
	project := testutil.CreateProject(suite.T(), suite.db, suite.buyer, models.ProjectStatusAssigned, suite.solver)

	w := suite.do(http.MethodPost, idPath("/api/tasks/project", project.ID)+"/suggest", nil, suite.solver)
	suite.requireStatus(w, http.StatusServiceUnavailable)
}

func (suite *HandlerTestSuite) TestSubmissionUploadAndReview() {
	project := testutil.CreateProject(suite.T(), suite.db, suite.buyer, models.ProjectStatusInProgress, suite.solver)
	task := testutil.CreateTask(suite.T(), suite.db, project, suite.solver, models.TaskStatusInProgress, 1)

	w := suite.upload(task.ID, "work.pdf", pdfContent, suite.solver)
	suite.requireStatus(w, http.StatusBadRequest)

	w = suite.upload(task.ID, "work.zip", zipContent, suite.other)
	suite.requireStatus(w, http.StatusForbidden)

	w = suite.upload(task.ID, "work.zip", zipContent, suite.solver)
	suite.requireStatus(w, http.StatusCreated)
	var submission dto.SubmissionDTO
	suite.decode(w, &submission)
	suite.Equal(1, submission.Version)
	suite.Equal("work.zip", submission.File.Name)
	suite.Equal(models.SubmissionStatusPending, submission.Status)

	w = suite.do(http.MethodGet, idPath("/api/tasks", task.ID), nil, suite.buyer)
	suite.requireStatus(w, http.StatusOK)
	var reviewed dto.TaskDTO
	suite.decode(w, &reviewed)
	suite.Equal(models.TaskStatusReview, reviewed.Status)

	w = suite.do(http.MethodPost, idPath("/api/submissions", submission.ID)+"/review",
		map[string]string{"status": "accepted"}, suite.solver)
	suite.requireStatus(w, http.StatusForbidden)

	w = suite.do(http.MethodPost, idPath("/api/submissions", submission.ID)+"/review",
		map[string]string{"status": "accepted", "feedback": "Great"}, suite.buyer)
	suite.requireStatus(w, http.StatusOK)

	w = suite.do(http.MethodPost, idPath("/api/submissions", submission.ID)+"/review",
		map[string]string{"status": "rejected"}, suite.buyer)
	suite.requireStatus(w, http.StatusBadRequest)

	suite.Equal(models.ProjectStatusCompleted, suite.reloadProject(project.ID).Status)

	w = suite.do(http.MethodGet, idPath("/api/submissions/task", task.ID), nil, suite.buyer)
	suite.requireStatus(w, http.StatusOK)
	var listed []dto.SubmissionDTO
	body := suite.decode(w, &listed)
	suite.Len(listed, 1)
	suite.Equal(int64(1), body.Meta.Total)
}

func (suite *HandlerTestSuite) TestSubmission_MissingFile() {
	project := testutil.CreateProject(suite.T(), suite.db, suite.buyer, models.ProjectStatusInProgress, suite.solver)
	task := testutil.CreateTask(suite.T(), suite.db, project, suite.solver, models.TaskStatusTodo, 1)

	w := suite.do(http.MethodPost, "/api/submissions", map[string]interface{}{"task_id": task.ID}, suite.solver)
	suite.requireStatus(w, http.StatusBadRequest)
}

func (suite *HandlerTestSuite) TestDeleteSubmission_ReopensTask() {
	project := testutil.CreateProject(suite.T(), suite.db, suite.buyer, models.ProjectStatusInProgress, suite.solver)
	task := testutil.CreateTask(suite.T(), suite.db, project, suite.solver, models.TaskStatusReview, 1)
	submission := testutil.CreateSubmission(suite.T(), suite.db, task, suite.solver, models.SubmissionStatusPending, 1)

	w := suite.do(http.MethodDelete, idPath("/api/submissions", submission.ID), nil, suite.solver)
	suite.requireStatus(w, http.StatusOK)

	var reloaded models.Task
	suite.Require().NoError(suite.db.First(&reloaded, task.ID).Error)
	suite.Equal(models.TaskStatusInProgress, reloaded.Status)
}
