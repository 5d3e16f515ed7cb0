package internal

import (
	"userhub/admin-api/internal/service"
	"userhub/admin-api/pkg/security"

	"gorm.io/gorm"
)

// Deps bundles everything the handlers need. Built once in app.NewRouter and
// threaded through every endpoint
type Deps struct {
	DB     *gorm.DB
	Argon  *security.ArgonHash
	Issuer *security.TokenIssuer
	Tokens *service.Tokens
	Mailer service.Mailer
}
