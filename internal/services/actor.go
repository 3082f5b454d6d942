package services

import "github.com/yukikurage/task-colab-api/internal/models"

// Actor is the authenticated user a service call runs on behalf of.
type Actor struct {
	ID   uint64
	Role models.UserRole
}

// ActorFromUser builds an Actor from a loaded user.
func ActorFromUser(user *models.User) Actor {
	return Actor{ID: user.ID, Role: user.Role}
}

func (a Actor) IsAdmin() bool {
	return a.Role == models.RoleAdmin
}

func (a Actor) IsBuyer() bool {
	return a.Role == models.RoleBuyer
}

func (a Actor) IsProblemSolver() bool {
	return a.Role == models.RoleProblemSolver
}
