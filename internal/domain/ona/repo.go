package ona

import "context"

type Repository interface {
	// UpsertForm creates or refreshes a form by its ona uuid. The active
	// flag of an existing row is left alone.
	UpsertForm(ctx context.Context, f *Form) error

	ListForms(ctx context.Context) ([]*Form, error)
	ListActiveForms(ctx context.Context) ([]*Form, error)
	SetActive(ctx context.Context, onaUUID string, active bool) error
}
