// Package audit provides security audit logging for SIEM consumption.
// It logs security-relevant events in structured JSON format for easy parsing
// and integration with security information and event management systems.
package audit

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/social-scuba/divelog/pkg/auth"
)

// SecurityEventType categorizes security-relevant events for filtering and alerting.
type SecurityEventType string

const (
	// EventLoginFailure is logged when a login or a password check fails.
	EventLoginFailure SecurityEventType = "login_failure"
	// EventAccessDenied is logged when a user tries to change something they do not own.
	EventAccessDenied SecurityEventType = "access_denied"
	// EventAccountDeleted is logged when a user deletes their account.
	EventAccountDeleted SecurityEventType = "account_deleted"
)

// SecurityEvent represents an auditable security event with all relevant context
// for SIEM ingestion and analysis.
type SecurityEvent struct {
	Timestamp time.Time         `json:"timestamp"`
	EventType SecurityEventType `json:"event_type"`
	UserID    int               `json:"user_id,omitempty"`
	ClientIP  string            `json:"client_ip,omitempty"`
	Details   any               `json:"details"`
	Severity  string            `json:"severity"` // info, warning, critical
}

// AccessDeniedDetails names the resource a user was refused.
type AccessDeniedDetails struct {
	Action     string `json:"action"`   // edit, delete
	Resource   string `json:"resource"` // dive, divesite
	ResourceID int    `json:"resource_id"`
}

// SecurityAuditor logs security events for SIEM consumption.
// Events are logged in structured JSON format with appropriate severity levels.
type SecurityAuditor struct {
	logger *zap.Logger
}

// NewSecurityAuditor creates a new security auditor with a dedicated logger namespace.
// The logger is automatically configured with "security_audit" namespace for easy
// filtering in SIEM systems.
func NewSecurityAuditor(logger *zap.Logger) *SecurityAuditor {
	return &SecurityAuditor{logger: logger.Named("security_audit")}
}

// LogLoginFailure records a rejected username/password pair. The password is
// never logged.
func (a *SecurityAuditor) LogLoginFailure(ctx context.Context, username, clientIP string) {
	userID, _ := auth.UserIDFromContext(ctx)

	event := SecurityEvent{
		Timestamp: time.Now().UTC(),
		EventType: EventLoginFailure,
		UserID:    userID,
		ClientIP:  clientIP,
		Details: map[string]string{
			"username": username,
		},
		Severity: "warning",
	}

	a.log(zapcore.WarnLevel, "Login failed", event,
		zap.String("username", username),
		zap.String("client_ip", clientIP),
		zap.Int("user_id", userID),
	)
}

// LogAccessDenied records an attempt to edit or delete another user's data.
//
// Example usage:
//
//	auditor.LogAccessDenied(ctx, audit.AccessDeniedDetails{
//	    Action: "delete", Resource: "dive", ResourceID: 42,
//	}, r.RemoteAddr)
func (a *SecurityAuditor) LogAccessDenied(ctx context.Context, details AccessDeniedDetails, clientIP string) {
	userID, _ := auth.UserIDFromContext(ctx)

	event := SecurityEvent{
		Timestamp: time.Now().UTC(),
		EventType: EventAccessDenied,
		UserID:    userID,
		ClientIP:  clientIP,
		Details:   details,
		Severity:  "warning",
	}

	a.log(zapcore.WarnLevel, "Access denied", event,
		zap.String("action", details.Action),
		zap.String("resource", details.Resource),
		zap.Int("resource_id", details.ResourceID),
		zap.String("client_ip", clientIP),
		zap.Int("user_id", userID),
	)
}

// LogAccountDeleted records a user deleting their own account.
func (a *SecurityAuditor) LogAccountDeleted(ctx context.Context, clientIP string) {
	userID, _ := auth.UserIDFromContext(ctx)

	event := SecurityEvent{
		Timestamp: time.Now().UTC(),
		EventType: EventAccountDeleted,
		UserID:    userID,
		ClientIP:  clientIP,
		Details:   map[string]string{},
		Severity:  "info",
	}

	a.log(zapcore.InfoLevel, "Account deleted", event,
		zap.String("client_ip", clientIP),
		zap.Int("user_id", userID),
	)
}

func (a *SecurityAuditor) log(level zapcore.Level, msg string, event SecurityEvent, fields ...zap.Field) {
	// Marshaling known types cannot fail.
	eventJSON, _ := json.Marshal(event)

	fields = append([]zap.Field{zap.String("event_json", string(eventJSON))}, fields...)
	fields = append(fields, zap.String("severity", event.Severity))
	a.logger.Log(level, msg, fields...)
}
