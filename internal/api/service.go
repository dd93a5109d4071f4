package api

import "context"

// Service is the remote trainer backend as seen by the core. Catalog and
// stats are always full snapshots; there are no partial updates.
type Service interface {
	// FetchCatalog returns every question merged with the user's progress.
	FetchCatalog(ctx context.Context) ([]Question, error)

	// FetchStats returns the aggregate progress snapshot.
	FetchStats(ctx context.Context) (*Stats, error)

	// SubmitProgress records one attempt. The backend short-circuits a
	// solved submission for an already solved question with StatusAlreadySolved.
	SubmitProgress(ctx context.Context, questionID, elapsedSeconds int, solved bool) (ProgressStatus, error)

	// ResetProgress wipes all progress of the current user. Irreversible.
	ResetProgress(ctx context.Context) error

	// CurrentUser fails with *AuthError when no valid credential is held.
	CurrentUser(ctx context.Context) (*User, error)

	Login(ctx context.Context, username, password string) error
	Register(ctx context.Context, username, password string) (*User, error)

	// Logout drops the held credential. It never contacts the backend.
	Logout(ctx context.Context) error
}
