// Package testutil provides an in-memory database and fixtures for tests.
package testutil

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"net/textproto"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/yukikurage/task-colab-api/internal/auth"
	"github.com/yukikurage/task-colab-api/internal/database"
	"github.com/yukikurage/task-colab-api/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Password is the plain password of every fixture user.
const Password = "password123"

var (
	seq          atomic.Uint64
	hashOnce     sync.Once
	passwordHash string
)

// NewDB opens a migrated in-memory SQLite database.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	// Each connection to :memory: is a separate database.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(models.All()...))
	require.NoError(t, database.AddIndexes(db))

	return db
}

// CreateUser inserts an active user with the given role.
func CreateUser(t testing.TB, db *gorm.DB, role models.UserRole) *models.User {
	t.Helper()

	hashOnce.Do(func() {
		hash, err := auth.HashPassword(Password)
		if err != nil {
			panic(err)
		}
		passwordHash = hash
	})

	n := seq.Add(1)
	user := &models.User{
		Name:         fmt.Sprintf("User %d", n),
		Email:        fmt.Sprintf("user%d@example.com", n),
		PasswordHash: passwordHash,
		Role:         role,
		Status:       models.UserStatusActive,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

// CreateProject inserts a project owned by buyer. A non-nil solver is set as the assignee.
func CreateProject(t testing.TB, db *gorm.DB, buyer *models.User, status models.ProjectStatus, solver *models.User) *models.Project {
	t.Helper()

	project := &models.Project{
		Title:       fmt.Sprintf("Project %d", seq.Add(1)),
		Description: "Build a landing page for the product launch",
		BuyerID:     buyer.ID,
		Status:      status,
		Category:    "web",
		Priority:    models.PriorityMedium,
		Budget:      models.Budget{Min: 100, Max: 500, Currency: "USD"},
		Timeline:    models.ProjectTimeline{Deadline: time.Now().Add(30 * 24 * time.Hour)},
	}
	if solver != nil {
		project.AssignedToID = &solver.ID
	}
	require.NoError(t, db.Omit("Buyer", "AssignedTo").Create(project).Error)
	return project
}

// CreateRequest inserts a request from solver to project.
func CreateRequest(t testing.TB, db *gorm.DB, project *models.Project, solver *models.User, status models.RequestStatus) *models.Request {
	t.Helper()

	request := &models.Request{
		ProjectID:   project.ID,
		SolverID:    solver.ID,
		CoverLetter: "I have shipped many similar projects and can start right away.",
		Status:      status,
	}
	require.NoError(t, db.Omit("Project", "Solver").Create(request).Error)
	if status == models.RequestStatusPending {
		require.NoError(t, db.Model(project).UpdateColumn("applicants_count", gorm.Expr("applicants_count + 1")).Error)
	}
	return request
}

// CreateTask inserts a task on project.
func CreateTask(t testing.TB, db *gorm.DB, project *models.Project, creator *models.User, status models.TaskStatus, order int) *models.Task {
	t.Helper()

	task := &models.Task{
		ProjectID:   project.ID,
		CreatedByID: creator.ID,
		Title:       fmt.Sprintf("Task %d", seq.Add(1)),
		Status:      status,
		Priority:    models.PriorityMedium,
		Timeline:    models.TaskTimeline{DueDate: time.Now().Add(7 * 24 * time.Hour)},
		Order:       order,
	}
	require.NoError(t, db.Omit("Project", "CreatedBy").Create(task).Error)
	return task
}

// CreateSubmission inserts a submission for task.
func CreateSubmission(t testing.TB, db *gorm.DB, task *models.Task, solver *models.User, status models.SubmissionStatus, version int) *models.Submission {
	t.Helper()

	submission := &models.Submission{
		TaskID:    task.ID,
		ProjectID: task.ProjectID,
		SolverID:  solver.ID,
		File: models.SubmissionFile{
			Name:     "deliverable.zip",
			URL:      "/uploads/submissions/deliverable.zip",
			Size:     1024,
			MimeType: "application/zip",
		},
		Status:  status,
		Version: version,
	}
	require.NoError(t, db.Omit("Task", "Solver").Create(submission).Error)
	return submission
}

// Upload builds a multipart file header as gin would hand it to a handler.
func Upload(t testing.TB, filename, contentType string, content []byte) *multipart.FileHeader {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, filename))
	header.Set("Content-Type", contentType)
	part, err := writer.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	form, err := multipart.NewReader(body, writer.Boundary()).ReadForm(1 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { form.RemoveAll() })

	require.Len(t, form.File["file"], 1)
	return form.File["file"][0]
}
