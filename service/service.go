package service

import (
	"kiosk/config"
	"kiosk/core"
)

// Services is the service container handed to the HTTP layer.
type Services struct {
	Exhibits    *ExhibitStore
	Diagnostics *DiagnosticsService
}

// NewServices builds the services around one diagnostics ring.
func NewServices(settings *config.Config, diag *core.Diagnostics) *Services {
	if diag == nil {
		diag = core.Diag
	}
	return &Services{
		Exhibits:    NewExhibitStore(settings, diag),
		Diagnostics: NewDiagnosticsService(diag),
	}
}
