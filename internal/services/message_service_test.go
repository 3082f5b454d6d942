package services

import (
	"strings"

	"github.com/yukikurage/task-colab-api/internal/models"
	"github.com/yukikurage/task-colab-api/internal/testutil"
)

func (suite *ServiceTestSuite) TestMessage_ConversationLifecycle() {
	open := testutil.CreateProject(suite.T(), suite.db, suite.buyer, models.ProjectStatusOpen, nil)
	_, err := suite.messages.GetOrCreateConversation(suite.actor(suite.buyer), open.ID)
	suite.ErrorIs(err, ErrAssigneeRequired)

	project := testutil.CreateProject(suite.T(), suite.db, suite.buyer, models.ProjectStatusAssigned, suite.solver)
	_, err = suite.messages.GetOrCreateConversation(suite.actor(suite.other), project.ID)
	suite.ErrorIs(err, ErrNotProjectParticipant)

	conversation, err := suite.messages.GetOrCreateConversation(suite.actor(suite.buyer), project.ID)
	suite.Require().NoError(err)
	again, err := suite.messages.GetOrCreateConversation(suite.actor(suite.solver), project.ID)
	suite.Require().NoError(err)
	suite.Equal(conversation.ID, again.ID)

	_, err = suite.messages.Send(suite.actor(suite.buyer), conversation.ID, "Hi, welcome aboard")
	suite.Require().NoError(err)
	_, err = suite.messages.Send(suite.actor(suite.buyer), conversation.ID, "Kickoff tomorrow?")
	suite.Require().NoError(err)

	unread, err := suite.messages.UnreadCount(suite.actor(suite.solver))
	suite.Require().NoError(err)
	suite.Equal(int64(2), unread)

	unread, err = suite.messages.UnreadCount(suite.actor(suite.buyer))
	suite.Require().NoError(err)
	suite.Equal(int64(0), unread)

	marked, err := suite.messages.MarkRead(suite.actor(suite.solver), conversation.ID)
	suite.Require().NoError(err)
	suite.Equal(int64(2), marked)

	messages, total, err := suite.messages.ListMessages(suite.actor(suite.admin), conversation.ID, 1, 20)
	suite.Require().NoError(err)
	suite.Equal(int64(2), total)
	suite.Equal("Hi, welcome aboard", messages[0].Content)
	suite.NotNil(messages[0].ReadAt)

	conversations, err := suite.messages.ListConversations(suite.actor(suite.solver))
	suite.Require().NoError(err)
	suite.Require().Len(conversations, 1)
	suite.NotNil(conversations[0].LastMessageAt)
}

func (suite *ServiceTestSuite) TestMessage_SendGuards() {
	project := testutil.CreateProject(suite.T(), suite.db, suite.buyer, models.ProjectStatusAssigned, suite.solver)
	conversation, err := suite.messages.GetOrCreateConversation(suite.actor(suite.admin), project.ID)
	suite.Require().NoError(err)

	_, err = suite.messages.Send(suite.actor(suite.admin), conversation.ID, "hello")
	suite.ErrorIs(err, ErrNotParticipant)

	_, err = suite.messages.Send(suite.actor(suite.other), conversation.ID, "hello")
	suite.ErrorIs(err, ErrNotParticipant)

	_, err = suite.messages.Send(suite.actor(suite.solver), conversation.ID, "   ")
	suite.ErrorIs(err, ErrMessageLength)

	_, err = suite.messages.Send(suite.actor(suite.solver), conversation.ID, strings.Repeat("x", 5001))
	suite.ErrorIs(err, ErrMessageLength)

	_, _, err = suite.messages.ListMessages(suite.actor(suite.other), conversation.ID, 1, 20)
	suite.ErrorIs(err, ErrNotParticipant)

	_, err = suite.messages.Send(suite.actor(suite.solver), 9999, "hello")
	suite.ErrorIs(err, ErrConversationNotFound)
}

func (suite *ServiceTestSuite) TestMessage_FollowsReassignment() {
	project := testutil.CreateProject(suite.T(), suite.db, suite.buyer, models.ProjectStatusAssigned, suite.solver)
	conversation, err := suite.messages.GetOrCreateConversation(suite.actor(suite.buyer), project.ID)
	suite.Require().NoError(err)

	_, err = suite.projects.Unassign(suite.actor(suite.buyer), project.ID)
	suite.Require().NoError(err)
	_, err = suite.projects.Assign(suite.actor(suite.buyer), project.ID, suite.other.ID)
	suite.Require().NoError(err)

	updated, err := suite.messages.GetOrCreateConversation(suite.actor(suite.other), project.ID)
	suite.Require().NoError(err)
	suite.Equal(conversation.ID, updated.ID)
	suite.Equal(suite.other.ID, updated.SolverID)

	_, err = suite.messages.Send(suite.actor(suite.other), conversation.ID, "Taking over from here")
	suite.NoError(err)
}

func (suite *ServiceTestSuite) TestMessage_MembershipFollowsAssigneeWithoutReopening() {
	project := testutil.CreateProject(suite.T(), suite.db, suite.buyer, models.ProjectStatusAssigned, suite.solver)
	conversation, err := suite.messages.GetOrCreateConversation(suite.actor(suite.solver), project.ID)
	suite.Require().NoError(err)
	_, err = suite.messages.Send(suite.actor(suite.buyer), conversation.ID, "Status update please")
	suite.Require().NoError(err)

	_, err = suite.projects.Unassign(suite.actor(suite.buyer), project.ID)
	suite.Require().NoError(err)
	_, err = suite.projects.Assign(suite.actor(suite.buyer), project.ID, suite.other.ID)
	suite.Require().NoError(err)

	// The former solver lost access even though nobody reopened the conversation.
	_, err = suite.messages.Send(suite.actor(suite.solver), conversation.ID, "Still here")
	suite.ErrorIs(err, ErrNotParticipant)
	_, _, err = suite.messages.ListMessages(suite.actor(suite.solver), conversation.ID, 1, 20)
	suite.ErrorIs(err, ErrNotParticipant)
	_, err = suite.messages.MarkRead(suite.actor(suite.solver), conversation.ID)
	suite.ErrorIs(err, ErrNotParticipant)

	mine, err := suite.messages.ListConversations(suite.actor(suite.solver))
	suite.Require().NoError(err)
	suite.Empty(mine)
	unread, err := suite.messages.UnreadCount(suite.actor(suite.solver))
	suite.Require().NoError(err)
	suite.Equal(int64(0), unread)

	messages, total, err := suite.messages.ListMessages(suite.actor(suite.other), conversation.ID, 1, 20)
	suite.Require().NoError(err)
	suite.Equal(int64(1), total)
	suite.Equal("Status update please", messages[0].Content)

	_, err = suite.messages.Send(suite.actor(suite.other), conversation.ID, "Picking this up")
	suite.Require().NoError(err)

	theirs, err := suite.messages.ListConversations(suite.actor(suite.other))
	suite.Require().NoError(err)
	suite.Require().Len(theirs, 1)
	suite.Equal(suite.other.ID, theirs[0].SolverID)
}
