package internal

import (
	"tdls-api/internal/friends"
	"tdls-api/internal/service"
	"tdls-api/internal/verification"
	"tdls-api/pkg/security"

	"gorm.io/gorm"
)

type Deps struct {
	DB       *gorm.DB
	Argon    *security.ArgonHash
	Verifier *verification.Verifier
	Friends  *friends.Engine
	Storage  service.ObjectStorage
}
