package handlers

import (
	"time"

	"github.com/AnshRaj112/hiddenmood-backend/internal/services"
)

// Dependencies are the collaborators the handlers use. main wires the real
// Postgres/Redis/Mongo/Cloudinary implementations; tests pass fakes.
type Dependencies struct {
	History    services.HistoryStore
	Users      services.UserStore
	Classifier services.Classifier
	Articles   services.ArticleStore
	ResetCodes services.ResetCodeStore
	Mailer     services.Mailer
	Images     services.ImageStore // nil when Cloudinary is not configured

	// Location is the timezone of dashboard day buckets.
	Location *time.Location
	Now      func() time.Time
}

var deps Dependencies

// Init installs the handler dependencies. Call it once before serving.
func Init(d Dependencies) {
	if d.Location == nil {
		d.Location = time.UTC
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	deps = d
}
