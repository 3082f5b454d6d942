package services

import (
	"strings"

	"github.com/yukikurage/task-colab-api/internal/constants"
	"github.com/yukikurage/task-colab-api/internal/models"
	"github.com/yukikurage/task-colab-api/internal/testutil"
	"github.com/yukikurage/task-colab-api/internal/workflow"
)

const coverLetter = "I have built several marketing sites with this exact stack."

func (suite *ServiceTestSuite) apply(project *models.Project, solver *models.User) *models.Request {
	request, err := suite.requests.Create(suite.actor(solver), CreateRequestInput{
		ProjectID:   project.ID,
		CoverLetter: coverLetter,
	})
	suite.Require().NoError(err)
	return request
}

func (suite *ServiceTestSuite) TestRequest_AcceptanceCascade() {
	project := testutil.CreateProject(suite.T(), suite.db, suite.buyer, models.ProjectStatusOpen, nil)
	third := testutil.CreateUser(suite.T(), suite.db, models.RoleProblemSolver)

	r1 := suite.apply(project, suite.solver)
	r2 := suite.apply(project, suite.other)
	r3 := suite.apply(project, third)
	_, err := suite.requests.Withdraw(suite.actor(third), r3.ID)
	suite.Require().NoError(err)

	accepted, err := suite.requests.Accept(suite.actor(suite.buyer), r1.ID)
	suite.Require().NoError(err)
	suite.Equal(models.RequestStatusAccepted, accepted.Status)
	suite.NotNil(accepted.RespondedAt)

	sibling := suite.reloadRequest(r2.ID)
	suite.Equal(models.RequestStatusRejected, sibling.Status)
	suite.Equal(constants.AutoRejectionReason, sibling.RejectionReason)
	suite.Equal(models.RequestStatusWithdrawn, suite.reloadRequest(r3.ID).Status)

	reloaded := suite.reloadProject(project.ID)
	suite.Equal(models.ProjectStatusAssigned, reloaded.Status)
	suite.Require().NotNil(reloaded.AssignedToID)
	suite.Equal(suite.solver.ID, *reloaded.AssignedToID)

	var acceptedCount int64
	suite.Require().NoError(suite.db.Model(&models.Request{}).
		Where("project_id = ? AND status = ?", project.ID, models.RequestStatusAccepted).
		Count(&acceptedCount).Error)
	suite.Equal(int64(1), acceptedCount)

	events, _, err := suite.activity.ListForProject(project.ID, 1, 50)
	suite.Require().NoError(err)
	steps := map[string]bool{}
	for _, e := range events {
		steps[e.Action] = true
	}
	suite.True(steps["request_accepted"])
	suite.True(steps["project_assigned"])
	suite.True(steps["siblings_rejected"])
}

func (suite *ServiceTestSuite) TestRequest_AcceptGuards() {
	project := testutil.CreateProject(suite.T(), suite.db, suite.buyer, models.ProjectStatusOpen, nil)
	r1 := suite.apply(project, suite.solver)
	r2 := suite.apply(project, suite.other)

	_, err := suite.requests.Accept(suite.actor(suite.solver), r1.ID)
	suite.ErrorIs(err, workflow.ErrPartyNotAllowed)
	suite.requireKind(err, KindForbidden)

	_, err = suite.requests.Accept(suite.actor(suite.buyer), r1.ID)
	suite.Require().NoError(err)

	// r2 was rejected by the cascade and the project is no longer open.
	_, err = suite.requests.Accept(suite.actor(suite.buyer), r2.ID)
	suite.ErrorIs(err, workflow.ErrTerminalState)

	_, err = suite.requests.Accept(suite.actor(suite.buyer), 9999)
	suite.ErrorIs(err, ErrRequestNotFound)
}

func (suite *ServiceTestSuite) TestRequest_AcceptRequiresOpenProject() {
	project := testutil.CreateProject(suite.T(), suite.db, suite.buyer, models.ProjectStatusOpen, nil)
	request := suite.apply(project, suite.solver)
	suite.Require().NoError(suite.db.Model(project).Update("status", models.ProjectStatusCancelled).Error)

	_, err := suite.requests.Accept(suite.actor(suite.buyer), request.ID)
	suite.ErrorIs(err, ErrProjectNotOpen)
	suite.Equal(models.RequestStatusPending, suite.reloadRequest(request.ID).Status)
}

func (suite *ServiceTestSuite) TestRequest_CreateGuards() {
	project := testutil.CreateProject(suite.T(), suite.db, suite.buyer, models.ProjectStatusOpen, nil)

	_, err := suite.requests.Create(suite.actor(suite.buyer), CreateRequestInput{ProjectID: project.ID, CoverLetter: coverLetter})
	suite.ErrorIs(err, ErrOnlySolversApply)

	_, err = suite.requests.Create(suite.actor(suite.solver), CreateRequestInput{ProjectID: project.ID, CoverLetter: "too short"})
	suite.ErrorIs(err, ErrCoverLetterLength)

	_, err = suite.requests.Create(suite.actor(suite.solver), CreateRequestInput{ProjectID: project.ID, CoverLetter: strings.Repeat("a", 2001)})
	suite.ErrorIs(err, ErrCoverLetterLength)

	closed := testutil.CreateProject(suite.T(), suite.db, suite.buyer, models.ProjectStatusCancelled, nil)
	_, err = suite.requests.Create(suite.actor(suite.solver), CreateRequestInput{ProjectID: closed.ID, CoverLetter: coverLetter})
	suite.ErrorIs(err, ErrProjectNotOpen)

	_, err = suite.requests.Create(suite.actor(suite.solver), CreateRequestInput{ProjectID: 9999, CoverLetter: coverLetter})
	suite.ErrorIs(err, ErrProjectNotFound)
}

func (suite *ServiceTestSuite) TestRequest_DuplicateIsConflict() {
	project := testutil.CreateProject(suite.T(), suite.db, suite.buyer, models.ProjectStatusOpen, nil)
	first := suite.apply(project, suite.solver)

	_, err := suite.requests.Create(suite.actor(suite.solver), CreateRequestInput{ProjectID: project.ID, CoverLetter: coverLetter})
	suite.ErrorIs(err, ErrDuplicateRequest)
	suite.requireKind(err, KindConflict)

	_, err = suite.requests.Withdraw(suite.actor(suite.solver), first.ID)
	suite.Require().NoError(err)

	// A withdrawn request no longer blocks a new application.
	suite.apply(project, suite.solver)
}

func (suite *ServiceTestSuite) TestRequest_WithdrawAndApplicants() {
	project := testutil.CreateProject(suite.T(), suite.db, suite.buyer, models.ProjectStatusOpen, nil)
	request := suite.apply(project, suite.solver)
	suite.Equal(1, suite.reloadProject(project.ID).ApplicantsCount)

	_, err := suite.requests.Withdraw(suite.actor(suite.other), request.ID)
	suite.requireKind(err, KindForbidden)

	_, err = suite.requests.Withdraw(suite.actor(suite.buyer), request.ID)
	suite.requireKind(err, KindForbidden)

	withdrawn, err := suite.requests.Withdraw(suite.actor(suite.solver), request.ID)
	suite.Require().NoError(err)
	suite.Equal(models.RequestStatusWithdrawn, withdrawn.Status)
	suite.Equal(0, suite.reloadProject(project.ID).ApplicantsCount)

	_, err = suite.requests.Withdraw(suite.actor(suite.solver), request.ID)
	suite.ErrorIs(err, workflow.ErrTerminalState)
	suite.Equal(0, suite.reloadProject(project.ID).ApplicantsCount)
}

func (suite *ServiceTestSuite) TestRequest_Reject() {
	project := testutil.CreateProject(suite.T(), suite.db, suite.buyer, models.ProjectStatusOpen, nil)
	request := suite.apply(project, suite.solver)

	_, err := suite.requests.Reject(suite.actor(suite.admin), request.ID, "no")
	suite.requireKind(err, KindForbidden)

	rejected, err := suite.requests.Reject(suite.actor(suite.buyer), request.ID, " Not a fit ")
	suite.Require().NoError(err)
	suite.Equal(models.RequestStatusRejected, rejected.Status)
	suite.Equal("Not a fit", rejected.RejectionReason)

	_, err = suite.requests.Reject(suite.actor(suite.buyer), request.ID, "")
	suite.requireKind(err, KindBadRequest)
	suite.Equal(models.ProjectStatusOpen, suite.reloadProject(project.ID).Status)
}

func (suite *ServiceTestSuite) TestRequest_Visibility() {
	project := testutil.CreateProject(suite.T(), suite.db, suite.buyer, models.ProjectStatusOpen, nil)
	request := suite.apply(project, suite.solver)
	suite.apply(project, suite.other)

	_, err := suite.requests.Get(suite.actor(suite.other), request.ID)
	suite.ErrorIs(err, ErrRequestPermission)

	for _, viewer := range []*models.User{suite.solver, suite.buyer, suite.admin} {
		_, err := suite.requests.Get(suite.actor(viewer), request.ID)
		suite.NoError(err)
	}

	_, total, err := suite.requests.ListForProject(suite.actor(suite.buyer), project.ID, ListRequestsInput{})
	suite.Require().NoError(err)
	suite.Equal(int64(2), total)

	_, _, err = suite.requests.ListForProject(suite.actor(suite.solver), project.ID, ListRequestsInput{})
	suite.ErrorIs(err, ErrProjectPermission)

	mine, total, err := suite.requests.ListMine(suite.actor(suite.solver), ListRequestsInput{})
	suite.Require().NoError(err)
	suite.Equal(int64(1), total)
	suite.Equal(request.ID, mine[0].ID)
}

func (suite *ServiceTestSuite) countAccepted(projectID uint64) int64 {
	var count int64
	suite.Require().NoError(suite.db.Model(&models.Request{}).
		Where("project_id = ? AND status = ?", projectID, models.RequestStatusAccepted).
		Count(&count).Error)
	return count
}

func (suite *ServiceTestSuite) TestRequest_UnassignReleasesAcceptedRequest() {
	project := testutil.CreateProject(suite.T(), suite.db, suite.buyer, models.ProjectStatusOpen, nil)
	third := testutil.CreateUser(suite.T(), suite.db, models.RoleProblemSolver)

	first := suite.apply(project, suite.solver)
	_, err := suite.requests.Accept(suite.actor(suite.buyer), first.ID)
	suite.Require().NoError(err)

	_, err = suite.projects.Unassign(suite.actor(suite.buyer), project.ID)
	suite.Require().NoError(err)

	released := suite.reloadRequest(first.ID)
	suite.Equal(models.RequestStatusWithdrawn, released.Status)
	suite.Equal(constants.ReopenedReason, released.RejectionReason)
	suite.Equal(int64(0), suite.countAccepted(project.ID))

	second := suite.apply(project, third)
	_, err = suite.requests.Accept(suite.actor(suite.buyer), second.ID)
	suite.Require().NoError(err)

	suite.Equal(int64(1), suite.countAccepted(project.ID))
	suite.Equal(models.RequestStatusAccepted, suite.reloadRequest(second.ID).Status)

	events, _, err := suite.activity.ListForProject(project.ID, 1, 50)
	suite.Require().NoError(err)
	var releasedStep bool
	for _, e := range events {
		if e.Action == "accepted_request_released" {
			releasedStep = true
		}
	}
	suite.True(releasedStep)
}

func (suite *ServiceTestSuite) TestRequest_ReopenByStatusReleasesAcceptedRequest() {
	project := testutil.CreateProject(suite.T(), suite.db, suite.buyer, models.ProjectStatusOpen, nil)
	first := suite.apply(project, suite.solver)
	_, err := suite.requests.Accept(suite.actor(suite.buyer), first.ID)
	suite.Require().NoError(err)

	_, err = suite.projects.UpdateStatus(suite.actor(suite.buyer), project.ID, models.ProjectStatusOpen)
	suite.Require().NoError(err)
	suite.Equal(models.RequestStatusWithdrawn, suite.reloadRequest(first.ID).Status)

	// The released solver may apply again and be picked again.
	again := suite.apply(project, suite.solver)
	_, err = suite.requests.Accept(suite.actor(suite.buyer), again.ID)
	suite.Require().NoError(err)
	suite.Equal(int64(1), suite.countAccepted(project.ID))
}
