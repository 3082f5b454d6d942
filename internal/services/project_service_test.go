package services

import (
	"time"

	"github.com/yukikurage/task-colab-api/internal/models"
	"github.com/yukikurage/task-colab-api/internal/testutil"
	"github.com/yukikurage/task-colab-api/internal/workflow"
)

func (suite *ServiceTestSuite) projectInput() CreateProjectInput {
	return CreateProjectInput{
		Title:        "Marketing site",
		Description:  "Five page marketing site with a contact form",
		Category:     "web",
		Budget:       models.Budget{Min: 100, Max: 500},
		Deadline:     time.Now().Add(30 * 24 * time.Hour),
		Requirements: []string{"React", " ", "Tailwind"},
	}
}

func (suite *ServiceTestSuite) TestProject_Create() {
	project, err := suite.projects.Create(suite.actor(suite.buyer), suite.projectInput())
	suite.Require().NoError(err)

	suite.Equal(models.ProjectStatusOpen, project.Status)
	suite.Equal(suite.buyer.ID, project.BuyerID)
	suite.Equal(suite.buyer.ID, project.Buyer.ID)
	suite.Equal("USD", project.Budget.Currency)
	suite.Equal(models.PriorityMedium, project.Priority)
	suite.Equal([]string{"React", "Tailwind"}, []string(project.Requirements))
}

func (suite *ServiceTestSuite) TestProject_CreateValidation() {
	_, err := suite.projects.Create(suite.actor(suite.solver), suite.projectInput())
	suite.ErrorIs(err, ErrOnlyBuyersCreate)

	input := suite.projectInput()
	input.Budget = models.Budget{Min: 500, Max: 100}
	_, err = suite.projects.Create(suite.actor(suite.buyer), input)
	suite.ErrorIs(err, ErrInvalidBudget)
	suite.requireKind(err, KindBadRequest)

	input = suite.projectInput()
	input.Deadline = time.Time{}
	_, err = suite.projects.Create(suite.actor(suite.buyer), input)
	suite.ErrorIs(err, ErrDeadlineRequired)

	input = suite.projectInput()
	start := input.Deadline.Add(time.Hour)
	input.StartDate = &start
	_, err = suite.projects.Create(suite.actor(suite.buyer), input)
	suite.ErrorIs(err, ErrInvalidTimeline)

	_, err = suite.projects.Create(suite.actor(suite.admin), suite.projectInput())
	suite.NoError(err)
}

func (suite *ServiceTestSuite) TestProject_OpenToCompletedIsBadRequest() {
	project := testutil.CreateProject(suite.T(), suite.db, suite.buyer, models.ProjectStatusOpen, nil)

	_, err := suite.projects.UpdateStatus(suite.actor(suite.buyer), project.ID, models.ProjectStatusCompleted)
	suite.ErrorIs(err, workflow.ErrTransitionNotAllowed)
	suite.requireKind(err, KindBadRequest)

	_, err = suite.projects.UpdateStatus(suite.actor(suite.buyer), project.ID, "archived")
	suite.ErrorIs(err, ErrInvalidProjectStatus)
}

func (suite *ServiceTestSuite) TestProject_StatusLifecycle() {
	project := testutil.CreateProject(suite.T(), suite.db, suite.buyer, models.ProjectStatusAssigned, suite.solver)

	_, err := suite.projects.UpdateStatus(suite.actor(suite.other), project.ID, models.ProjectStatusInProgress)
	suite.ErrorIs(err, workflow.ErrPartyNotAllowed)
	suite.requireKind(err, KindForbidden)

	updated, err := suite.projects.UpdateStatus(suite.actor(suite.solver), project.ID, models.ProjectStatusInProgress)
	suite.Require().NoError(err)
	suite.Equal(models.ProjectStatusInProgress, updated.Status)
	suite.NotNil(updated.Timeline.StartDate)

	_, err = suite.projects.UpdateStatus(suite.actor(suite.solver), project.ID, models.ProjectStatusCompleted)
	suite.requireKind(err, KindForbidden)

	updated, err = suite.projects.UpdateStatus(suite.actor(suite.buyer), project.ID, models.ProjectStatusCompleted)
	suite.Require().NoError(err)
	suite.NotNil(updated.CompletedAt)

	_, err = suite.projects.UpdateStatus(suite.actor(suite.admin), project.ID, models.ProjectStatusCancelled)
	suite.ErrorIs(err, workflow.ErrTerminalState)
}

func (suite *ServiceTestSuite) TestProject_InProgressRequiresAssignee() {
	project := testutil.CreateProject(suite.T(), suite.db, suite.buyer, models.ProjectStatusOpen, nil)

	_, err := suite.projects.UpdateStatus(suite.actor(suite.buyer), project.ID, models.ProjectStatusAssigned)
	suite.ErrorIs(err, ErrAssigneeRequired)

	// Rows written around the service must still never reach in_progress unassigned.
	suite.Require().NoError(suite.db.Model(project).Update("status", models.ProjectStatusAssigned).Error)
	_, err = suite.projects.UpdateStatus(suite.actor(suite.buyer), project.ID, models.ProjectStatusInProgress)
	suite.ErrorIs(err, ErrAssigneeRequired)
	suite.Equal(models.ProjectStatusAssigned, suite.reloadProject(project.ID).Status)
}

func (suite *ServiceTestSuite) TestProject_AssignAndUnassign() {
	project := testutil.CreateProject(suite.T(), suite.db, suite.buyer, models.ProjectStatusOpen, nil)

	_, err := suite.projects.Assign(suite.actor(suite.buyer), project.ID, suite.buyer.ID)
	suite.ErrorIs(err, ErrInvalidAssignee)

	suite.Require().NoError(suite.db.Model(suite.other).Update("status", models.UserStatusBlocked).Error)
	_, err = suite.projects.Assign(suite.actor(suite.buyer), project.ID, suite.other.ID)
	suite.ErrorIs(err, ErrInvalidAssignee)

	_, err = suite.projects.Assign(suite.actor(suite.solver), project.ID, suite.solver.ID)
	suite.ErrorIs(err, ErrProjectPermission)

	assigned, err := suite.projects.Assign(suite.actor(suite.buyer), project.ID, suite.solver.ID)
	suite.Require().NoError(err)
	suite.Equal(models.ProjectStatusAssigned, assigned.Status)
	suite.Require().NotNil(assigned.AssignedTo)
	suite.Equal(suite.solver.ID, assigned.AssignedTo.ID)

	_, err = suite.projects.Assign(suite.actor(suite.buyer), project.ID, suite.solver.ID)
	suite.ErrorIs(err, ErrProjectNotOpen)

	_, err = suite.projects.Unassign(suite.actor(suite.solver), project.ID)
	suite.ErrorIs(err, ErrProjectPermission)

	reopened, err := suite.projects.Unassign(suite.actor(suite.buyer), project.ID)
	suite.Require().NoError(err)
	suite.Equal(models.ProjectStatusOpen, reopened.Status)
	suite.Nil(reopened.AssignedToID)

	_, err = suite.projects.Unassign(suite.actor(suite.buyer), project.ID)
	suite.ErrorIs(err, ErrProjectNotAssigned)
}

func (suite *ServiceTestSuite) TestProject_AssignedBackToOpenClearsAssignee() {
	project := testutil.CreateProject(suite.T(), suite.db, suite.buyer, models.ProjectStatusAssigned, suite.solver)

	updated, err := suite.projects.UpdateStatus(suite.actor(suite.solver), project.ID, models.ProjectStatusOpen)
	suite.Require().NoError(err)
	suite.Equal(models.ProjectStatusOpen, updated.Status)
	suite.Nil(updated.AssignedToID)
}

func (suite *ServiceTestSuite) TestProject_Update() {
	project := testutil.CreateProject(suite.T(), suite.db, suite.buyer, models.ProjectStatusOpen, nil)

	tooHigh := 1000.0
	_, err := suite.projects.Update(suite.actor(suite.buyer), project.ID, UpdateProjectInput{BudgetMin: &tooHigh})
	suite.ErrorIs(err, ErrInvalidBudget)

	title := "Renamed"
	_, err = suite.projects.Update(suite.actor(suite.solver), project.ID, UpdateProjectInput{Title: &title})
	suite.ErrorIs(err, ErrProjectPermission)

	updated, err := suite.projects.Update(suite.actor(suite.admin), project.ID, UpdateProjectInput{
		Title:     &title,
		BudgetMax: &tooHigh,
		Tags:      []string{"design"},
	})
	suite.Require().NoError(err)
	suite.Equal("Renamed", updated.Title)
	suite.Equal(1000.0, updated.Budget.Max)
	suite.Equal(suite.buyer.ID, updated.BuyerID)

	running := suite.inProgressProject()
	_, err = suite.projects.Update(suite.actor(suite.buyer), running.ID, UpdateProjectInput{Title: &title})
	suite.ErrorIs(err, ErrProjectNotEditable)
}

func (suite *ServiceTestSuite) TestProject_Delete() {
	running := suite.inProgressProject()
	suite.ErrorIs(suite.projects.Delete(suite.actor(suite.buyer), running.ID), ErrProjectNotDeletable)

	project := testutil.CreateProject(suite.T(), suite.db, suite.buyer, models.ProjectStatusOpen, nil)
	suite.ErrorIs(suite.projects.Delete(suite.actor(suite.solver), project.ID), ErrProjectPermission)
	suite.Require().NoError(suite.projects.Delete(suite.actor(suite.buyer), project.ID))

	_, err := suite.projects.Get(project.ID)
	suite.ErrorIs(err, ErrProjectNotFound)
	suite.requireKind(err, KindNotFound)

	suite.True(suite.reloadProject(project.ID).IsDeleted)
}

func (suite *ServiceTestSuite) TestProject_Listing() {
	open := testutil.CreateProject(suite.T(), suite.db, suite.buyer, models.ProjectStatusOpen, nil)
	mine := suite.inProgressProject()

	projects, total, err := suite.projects.ListOpen(ListProjectsInput{Page: 1, PageSize: 10})
	suite.Require().NoError(err)
	suite.Equal(int64(1), total)
	suite.Equal(open.ID, projects[0].ID)

	projects, _, err = suite.projects.ListMine(suite.actor(suite.solver), ListProjectsInput{})
	suite.Require().NoError(err)
	suite.Require().Len(projects, 1)
	suite.Equal(mine.ID, projects[0].ID)

	_, total, err = suite.projects.ListMine(suite.actor(suite.buyer), ListProjectsInput{})
	suite.Require().NoError(err)
	suite.Equal(int64(2), total)

	_, total, err = suite.projects.ListMine(suite.actor(suite.admin), ListProjectsInput{})
	suite.Require().NoError(err)
	suite.Equal(int64(2), total)
}

func (suite *ServiceTestSuite) TestProject_ProgressAndActivity() {
	project := suite.inProgressProject()
	testutil.CreateTask(suite.T(), suite.db, project, suite.solver, models.TaskStatusCompleted, 1)
	testutil.CreateTask(suite.T(), suite.db, project, suite.solver, models.TaskStatusTodo, 2)
	testutil.CreateTask(suite.T(), suite.db, project, suite.solver, models.TaskStatusReview, 3)
	testutil.CreateTask(suite.T(), suite.db, project, suite.solver, models.TaskStatusCompleted, 4)

	progress, err := suite.projects.Progress(suite.actor(suite.buyer), project.ID)
	suite.Require().NoError(err)
	suite.Equal(int64(4), progress.TotalTasks)
	suite.Equal(int64(2), progress.CompletedTasks)
	suite.Equal(50.0, progress.PercentComplete)
	suite.Equal(int64(0), progress.ByStatus[models.TaskStatusInProgress])

	_, err = suite.projects.Progress(suite.actor(suite.other), project.ID)
	suite.ErrorIs(err, ErrNotProjectParticipant)

	_, err = suite.projects.UpdateStatus(suite.actor(suite.buyer), project.ID, models.ProjectStatusCancelled)
	suite.Require().NoError(err)

	events, total, err := suite.projects.Activity(suite.actor(suite.solver), project.ID, 1, 20)
	suite.Require().NoError(err)
	suite.Equal(int64(1), total)
	suite.Equal("status_changed", events[0].Action)
}
