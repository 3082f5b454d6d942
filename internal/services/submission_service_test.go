package services

import (
	"mime/multipart"
	"net/textproto"

	"github.com/yukikurage/task-colab-api/internal/constants"
	"github.com/yukikurage/task-colab-api/internal/models"
	"github.com/yukikurage/task-colab-api/internal/testutil"
	"github.com/yukikurage/task-colab-api/internal/workflow"
)

func (suite *ServiceTestSuite) submit(task *models.Task) *models.Submission {
	input := suite.zip()
	input.TaskID = task.ID
	submission, err := suite.submissions.Create(suite.actor(suite.solver), input)
	suite.Require().NoError(err)
	return submission
}

func (suite *ServiceTestSuite) TestSubmission_RejectAndResubmit() {
	project := suite.inProgressProject()
	task := testutil.CreateTask(suite.T(), suite.db, project, suite.solver, models.TaskStatusTodo, 1)

	v1 := suite.submit(task)
	suite.Equal(1, v1.Version)
	suite.Equal(models.SubmissionStatusPending, v1.Status)
	suite.Equal("application/zip", v1.File.MimeType)
	suite.Equal(models.TaskStatusReview, suite.reloadTask(task.ID).Status)

	_, err := suite.submissions.Review(suite.actor(suite.buyer), v1.ID, ReviewSubmissionInput{
		Status:   models.SubmissionStatusRejected,
		Feedback: "Missing assets",
	})
	suite.Require().NoError(err)
	suite.Equal(models.TaskStatusInProgress, suite.reloadTask(task.ID).Status)

	v2 := suite.submit(task)
	suite.Equal(2, v2.Version)
	suite.Equal(models.TaskStatusReview, suite.reloadTask(task.ID).Status)
}

func (suite *ServiceTestSuite) TestSubmission_VersionsNeverReused() {
	project := suite.inProgressProject()
	task := testutil.CreateTask(suite.T(), suite.db, project, suite.solver, models.TaskStatusInProgress, 1)

	v1 := suite.submit(task)
	suite.Require().NoError(suite.submissions.Delete(suite.actor(suite.solver), v1.ID))
	suite.Equal(models.TaskStatusInProgress, suite.reloadTask(task.ID).Status)

	v2 := suite.submit(task)
	suite.Equal(2, v2.Version)

	_, err := suite.submissions.Review(suite.actor(suite.buyer), v2.ID, ReviewSubmissionInput{Status: models.SubmissionStatusRevisionRequested})
	suite.Require().NoError(err)

	v3 := suite.submit(task)
	suite.Equal(3, v3.Version)

	list, total, err := suite.submissions.ListForTask(suite.actor(suite.buyer), task.ID, ListSubmissionsInput{})
	suite.Require().NoError(err)
	suite.Equal(int64(2), total)
	suite.Equal(3, list[0].Version)
}

func (suite *ServiceTestSuite) TestSubmission_AcceptCompletesTaskAndProject() {
	project := suite.inProgressProject()
	task := testutil.CreateTask(suite.T(), suite.db, project, suite.solver, models.TaskStatusInProgress, 1)
	submission := suite.submit(task)

	reviewed, err := suite.submissions.Review(suite.actor(suite.admin), submission.ID, ReviewSubmissionInput{Status: models.SubmissionStatusAccepted})
	suite.Require().NoError(err)
	suite.Equal(models.SubmissionStatusAccepted, reviewed.Status)
	suite.Require().NotNil(reviewed.ReviewedByID)
	suite.Equal(suite.admin.ID, *reviewed.ReviewedByID)
	suite.NotNil(reviewed.ReviewedAt)

	reloadedTask := suite.reloadTask(task.ID)
	suite.Equal(models.TaskStatusCompleted, reloadedTask.Status)
	suite.NotNil(reloadedTask.CompletedAt)
	suite.Equal(models.ProjectStatusCompleted, suite.reloadProject(project.ID).Status)

	_, err = suite.submissions.Review(suite.actor(suite.buyer), submission.ID, ReviewSubmissionInput{Status: models.SubmissionStatusRejected})
	suite.ErrorIs(err, workflow.ErrTerminalState)
}

func (suite *ServiceTestSuite) TestSubmission_AcceptWithOpenTasksKeepsProjectRunning() {
	project := suite.inProgressProject()
	task := testutil.CreateTask(suite.T(), suite.db, project, suite.solver, models.TaskStatusInProgress, 1)
	testutil.CreateTask(suite.T(), suite.db, project, suite.solver, models.TaskStatusTodo, 2)
	submission := suite.submit(task)

	_, err := suite.submissions.Review(suite.actor(suite.buyer), submission.ID, ReviewSubmissionInput{Status: models.SubmissionStatusAccepted})
	suite.Require().NoError(err)
	suite.Equal(models.TaskStatusCompleted, suite.reloadTask(task.ID).Status)
	suite.Equal(models.ProjectStatusInProgress, suite.reloadProject(project.ID).Status)
}

func (suite *ServiceTestSuite) TestSubmission_ReviewGuards() {
	project := suite.inProgressProject()
	task := testutil.CreateTask(suite.T(), suite.db, project, suite.solver, models.TaskStatusTodo, 1)
	submission := suite.submit(task)

	_, err := suite.submissions.Review(suite.actor(suite.solver), submission.ID, ReviewSubmissionInput{Status: models.SubmissionStatusAccepted})
	suite.requireKind(err, KindForbidden)

	_, err = suite.submissions.Review(suite.actor(suite.buyer), submission.ID, ReviewSubmissionInput{Status: models.SubmissionStatusPending})
	suite.ErrorIs(err, ErrInvalidReviewStatus)

	_, err = suite.submissions.Review(suite.actor(suite.buyer), 9999, ReviewSubmissionInput{Status: models.SubmissionStatusAccepted})
	suite.ErrorIs(err, ErrSubmissionNotFound)
}

func (suite *ServiceTestSuite) TestSubmission_CreateGuards() {
	project := suite.inProgressProject()
	task := testutil.CreateTask(suite.T(), suite.db, project, suite.solver, models.TaskStatusTodo, 1)

	input := suite.zip()
	input.TaskID = task.ID
	_, err := suite.submissions.Create(suite.actor(suite.other), input)
	suite.ErrorIs(err, ErrNotAssignedSolver)

	pdf := CreateSubmissionInput{
		TaskID: task.ID,
		File:   testutil.Upload(suite.T(), "work.pdf", "application/pdf", []byte("%PDF-1.4 document")),
	}
	_, err = suite.submissions.Create(suite.actor(suite.solver), pdf)
	suite.ErrorIs(err, ErrInvalidFileType)

	disguised := CreateSubmissionInput{
		TaskID: task.ID,
		File:   testutil.Upload(suite.T(), "work.zip", "application/zip", []byte("plain text, not an archive")),
	}
	_, err = suite.submissions.Create(suite.actor(suite.solver), disguised)
	suite.ErrorIs(err, ErrInvalidFileType)

	big := CreateSubmissionInput{
		TaskID: task.ID,
		File: &multipart.FileHeader{
			Filename: "huge.zip",
			Size:     constants.MaxSubmissionFileSize + 1,
			Header:   textproto.MIMEHeader{"Content-Type": {"application/x-zip-compressed"}},
		},
	}
	_, err = suite.submissions.Create(suite.actor(suite.solver), big)
	suite.ErrorIs(err, ErrFileTooLarge)

	_, err = suite.submissions.Create(suite.actor(suite.solver), CreateSubmissionInput{TaskID: task.ID})
	suite.ErrorIs(err, ErrFileRequired)

	suite.submit(task)
	// The task is now in review and takes no further submissions.
	_, err = suite.submissions.Create(suite.actor(suite.solver), input)
	suite.ErrorIs(err, ErrTaskNotAcceptingSubmissions)
}

func (suite *ServiceTestSuite) TestSubmission_Delete() {
	project := suite.inProgressProject()
	task := testutil.CreateTask(suite.T(), suite.db, project, suite.solver, models.TaskStatusTodo, 1)
	submission := suite.submit(task)

	suite.ErrorIs(suite.submissions.Delete(suite.actor(suite.buyer), submission.ID), ErrSubmissionPermission)

	_, err := suite.submissions.Review(suite.actor(suite.buyer), submission.ID, ReviewSubmissionInput{Status: models.SubmissionStatusRejected})
	suite.Require().NoError(err)
	suite.ErrorIs(suite.submissions.Delete(suite.actor(suite.solver), submission.ID), ErrSubmissionNotPending)

	second := suite.submit(task)
	suite.Require().NoError(suite.submissions.Delete(suite.actor(suite.admin), second.ID))
	suite.Equal(models.TaskStatusInProgress, suite.reloadTask(task.ID).Status)

	_, err = suite.submissions.Get(suite.actor(suite.solver), second.ID)
	suite.ErrorIs(err, ErrSubmissionNotFound)
}

func (suite *ServiceTestSuite) TestSubmission_Visibility() {
	project := suite.inProgressProject()
	task := testutil.CreateTask(suite.T(), suite.db, project, suite.solver, models.TaskStatusTodo, 1)
	submission := suite.submit(task)

	_, err := suite.submissions.Get(suite.actor(suite.other), submission.ID)
	suite.ErrorIs(err, ErrNotProjectParticipant)

	found, err := suite.submissions.Get(suite.actor(suite.buyer), submission.ID)
	suite.Require().NoError(err)
	suite.Equal(suite.solver.ID, found.Solver.ID)

	_, total, err := suite.submissions.ListForProject(suite.actor(suite.buyer), project.ID, ListSubmissionsInput{})
	suite.Require().NoError(err)
	suite.Equal(int64(1), total)

	_, total, err = suite.submissions.ListMine(suite.actor(suite.other), ListSubmissionsInput{})
	suite.Require().NoError(err)
	suite.Equal(int64(0), total)
}

func (suite *ServiceTestSuite) TestValidateSubmissionFile() {
	for _, mime := range []string{"application/zip", "application/x-zip-compressed", "application/x-zip"} {
		suite.NoError(ValidateSubmissionFile(mime, constants.MaxSubmissionFileSize))
	}
	suite.ErrorIs(ValidateSubmissionFile("application/gzip", 10), ErrInvalidFileType)
	suite.ErrorIs(ValidateSubmissionFile("application/zip", constants.MaxSubmissionFileSize+1), ErrFileTooLarge)
}

func (suite *ServiceTestSuite) TestSubmission_ReturningTaskRequestsRevision() {
	project := suite.inProgressProject()
	task := testutil.CreateTask(suite.T(), suite.db, project, suite.solver, models.TaskStatusInProgress, 1)
	v1 := suite.submit(task)

	_, err := suite.tasks.UpdateStatus(suite.actor(suite.buyer), task.ID, models.TaskStatusInProgress)
	suite.Require().NoError(err)

	returned, err := suite.submissions.Get(suite.actor(suite.buyer), v1.ID)
	suite.Require().NoError(err)
	suite.Equal(models.SubmissionStatusRevisionRequested, returned.Status)
	suite.Require().NotNil(returned.ReviewedByID)
	suite.Equal(suite.buyer.ID, *returned.ReviewedByID)

	v2 := suite.submit(task)
	suite.Equal(2, v2.Version)

	pending := models.SubmissionStatusPending
	_, total, err := suite.submissions.ListForTask(suite.actor(suite.buyer), task.ID, ListSubmissionsInput{Status: &pending})
	suite.Require().NoError(err)
	suite.Equal(int64(1), total)

	// v1 is settled; only v2 decides the task now.
	_, err = suite.submissions.Review(suite.actor(suite.buyer), v1.ID, ReviewSubmissionInput{Status: models.SubmissionStatusRejected})
	suite.ErrorIs(err, workflow.ErrTerminalState)
	suite.Equal(models.TaskStatusReview, suite.reloadTask(task.ID).Status)
}

func (suite *ServiceTestSuite) TestSubmission_OnePendingPerTask() {
	project := suite.inProgressProject()
	task := testutil.CreateTask(suite.T(), suite.db, project, suite.solver, models.TaskStatusInProgress, 1)
	testutil.CreateSubmission(suite.T(), suite.db, task, suite.solver, models.SubmissionStatusPending, 1)

	input := suite.zip()
	input.TaskID = task.ID
	_, err := suite.submissions.Create(suite.actor(suite.solver), input)
	suite.ErrorIs(err, ErrPendingSubmissionExists)
	suite.requireKind(err, KindConflict)
	suite.Equal(models.TaskStatusInProgress, suite.reloadTask(task.ID).Status)
}
