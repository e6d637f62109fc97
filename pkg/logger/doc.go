// Package logger builds the process-wide slog.Logger: JSON in production,
// text elsewhere, with the deployment environment attached to every record.
package logger
