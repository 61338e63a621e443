package mongodb

import (
	"go.mongodb.org/mongo-driver/mongo"

	"portfolioapi/internal/model"
)

// Stores groups one Store per collection of the portfolio database.
type Stores struct {
	Users         *Store[model.User]
	Organizations *Store[model.Organization]
	Projects      *Store[model.Project]
	Tasks         *Store[model.Task]
	Teams         *Store[model.Team]
	Comments      *Store[model.Comment]
	Files         *Store[model.File]
	Notifications *Store[model.Notification]
	Roles         *Store[model.CustomRole]
	Integrations  *Store[model.Integration]
}

// NewStores binds every store to its collection in db.
func NewStores(db *mongo.Database) *Stores {
	return &Stores{
		Users:         NewStore[model.User](db.Collection(CollUsers)),
		Organizations: NewStore[model.Organization](db.Collection(CollOrganizations)),
		Projects:      NewStore[model.Project](db.Collection(CollProjects)),
		Tasks:         NewStore[model.Task](db.Collection(CollTasks)),
		Teams:         NewStore[model.Team](db.Collection(CollTeams)),
		Comments:      NewStore[model.Comment](db.Collection(CollComments)),
		Files:         NewStore[model.File](db.Collection(CollFiles)),
		Notifications: NewStore[model.Notification](db.Collection(CollNotifications)),
		Roles:         NewStore[model.CustomRole](db.Collection(CollRoles)),
		Integrations:  NewStore[model.Integration](db.Collection(CollIntegrations)),
	}
}
