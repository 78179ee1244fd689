// Package repositories implements SQLite persistence for listener run history.
//
// [RunRepository] implements models.Repository for [models.Run]. Rows record when a run started,
// how it ended and the provider error code if any. Authorization codes and state tokens are
// never written to the database.
package repositories
