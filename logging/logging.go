package logging

import "go.uber.org/zap"

// New creates a new zap logger, production encoding unless environment says otherwise
func New(environment string) *zap.SugaredLogger {
	var logger *zap.Logger
	var err error
	if environment == "production" {
		logger, err = zap.NewProduction()
	} else {
		logger, err = zap.NewDevelopment()
	}
	if err != nil {
		logger = zap.NewExample()
	}
	defer logger.Sync()
	return logger.Sugar().Named("pickup-notify")
}
