// Package docs Pickup Notify API.
//
// Documentation of the Pickup Notify API: device push tokens, in-app notifications,
// the daily pickup reminder and outbound email.
//
//     Schemes: https
//     BasePath: /
//     Version: 1.0.0
//
//     Consumes:
//     - application/json
//
//     Produces:
//     - application/json
//
//     Security:
//     - bearer
//
//    SecurityDefinitions:
//    bearer:
//      type: apiKey
//      name: Authorization
//      in: header
//
// swagger:meta
package docs

import (
	"github.com/linesmerrill/pickup-notify-api/api/scheduler"
	"github.com/linesmerrill/pickup-notify-api/models"
)

// swagger:route GET /health health healthEndpointID
// Lists the healthchex of the web service api.
// responses:
//   200: healthResponse

// Shows the current health of the api. true means it is alive.
// swagger:response healthResponse
type healthResponseWrapper struct {
	// in:body
	Body struct {
		Alive bool `json:"alive"`
	}
}

// swagger:route POST /api/v1/push-tokens pushTokens registerPushToken
// Saves the caller's device push token, replacing the previous one.
// responses:
//   200: successResponse

// swagger:parameters registerPushToken
type registerPushTokenParams struct {
	// in:body
	Body models.RegisterPushTokenRequest
}

// swagger:route GET /api/v1/users/{user_id}/notifications notifications userNotifications
// Lists the user's most recent in-app notifications, newest first.
// responses:
//   200: notificationsResponse

// swagger:response notificationsResponse
type notificationsResponseWrapper struct {
	// in:body
	Body []models.Notification
}

// swagger:route POST /api/v1/admin/reminders/trigger admin triggerReminder
// Runs the pickup reminder now. Admin only.
// responses:
//   200: reminderRunResponse

// swagger:response reminderRunResponse
type reminderRunResponseWrapper struct {
	// in:body
	Body scheduler.RunResult
}

// swagger:route POST /api/v1/admin/email admin sendEmail
// Sends an email through the provider fallback chain. Admin only.
// responses:
//   200: successResponse
//   502: successResponse

// swagger:parameters sendEmail
type sendEmailParams struct {
	// in:body
	Body models.SendEmailRequest
}

// swagger:response successResponse
type successResponseWrapper struct {
	// in:body
	Body struct {
		Success bool `json:"success"`
	}
}
