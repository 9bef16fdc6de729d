package validation_test

import (
	"context"
	"errors"
	"slices"
	"testing"

	"github.com/limaudio/taskman/internal/validation"
)

type mockStore struct {
	exists  bool
	err     error
	gotArgs []any
}

func (m *mockStore) Exists(_ context.Context, table, column, value string, excludeID int64) (bool, error) {
	m.gotArgs = []any{table, column, value, excludeID}

	return m.exists, m.err
}

func TestValidate_CollectsAllMessages(t *testing.T) {
	t.Parallel()

	engine := validation.NewEngine(&mockStore{})

	fields := []validation.Field{
		{Name: "email", Value: "", Constraints: []validation.Constraint{
			validation.Required(), validation.Email(),
		}},
		{Name: "password", Value: "", Constraints: []validation.Constraint{
			validation.Required(),
		}},
	}

	messages, err := engine.Validate(context.Background(), fields, 0)
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}

	want := []string{"email is required", "password is required"}
	if !slices.Equal(messages, want) {
		t.Errorf("Validate() = %v, want %v", messages, want)
	}
}

func TestValidate_Email(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		value   string
		wantMsg bool
	}{
		{name: "valid", value: "user@example.com", wantMsg: false},
		{name: "missing at", value: "user.example.com", wantMsg: true},
		{name: "missing domain dot", value: "user@example", wantMsg: true},
		{name: "contains space", value: "us er@example.com", wantMsg: true},
		{name: "empty skipped", value: "", wantMsg: false},
	}

	engine := validation.NewEngine(&mockStore{})

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			fields := []validation.Field{
				{Name: "email", Value: tt.value, Constraints: []validation.Constraint{validation.Email()}},
			}

			messages, err := engine.Validate(context.Background(), fields, 0)
			if err != nil {
				t.Fatalf("Validate() error = %v", err)
			}

			if got := len(messages) > 0; got != tt.wantMsg {
				t.Errorf("Validate() = %v, want message %v", messages, tt.wantMsg)
			}
		})
	}
}

func TestValidate_MinLength(t *testing.T) {
	t.Parallel()

	engine := validation.NewEngine(&mockStore{})

	fields := []validation.Field{
		{Name: "password", Value: "abc", Constraints: []validation.Constraint{validation.MinLength(6)}},
	}

	messages, err := engine.Validate(context.Background(), fields, 0)
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}

	want := []string{"password must be at least 6 characters"}
	if !slices.Equal(messages, want) {
		t.Errorf("Validate() = %v, want %v", messages, want)
	}
}

func TestValidate_Date(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		value  string
		format string
		want   []string
	}{
		{name: "rfc3339", value: "2026-03-01T10:00:00Z", want: []string{}},
		{name: "date only", value: "2026-03-01", want: []string{}},
		{name: "garbage", value: "not-a-date", want: []string{"due_at must be a valid date"}},
		{
			name:   "valid date wrong format",
			value:  "2026-03-01",
			format: "2006-01-02 15:04:05",
			want:   []string{"due_at must match format 2006-01-02 15:04:05"},
		},
		{name: "empty skipped", value: "", want: []string{}},
	}

	engine := validation.NewEngine(&mockStore{})

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			fields := []validation.Field{
				{Name: "due_at", Value: tt.value, Constraints: []validation.Constraint{
					validation.Date(tt.format),
				}},
			}

			messages, err := engine.Validate(context.Background(), fields, 0)
			if err != nil {
				t.Fatalf("Validate() error = %v", err)
			}

			if !slices.Equal(messages, tt.want) {
				t.Errorf("Validate() = %v, want %v", messages, tt.want)
			}
		})
	}
}

func TestValidate_Unique(t *testing.T) {
	t.Parallel()

	t.Run("duplicate reported", func(t *testing.T) {
		t.Parallel()

		store := &mockStore{exists: true}
		engine := validation.NewEngine(store)

		fields := []validation.Field{
			{Name: "email", Value: "user@example.com", Constraints: []validation.Constraint{
				validation.Unique("users", "email"),
			}},
		}

		messages, err := engine.Validate(context.Background(), fields, 7)
		if err != nil {
			t.Fatalf("Validate() error = %v", err)
		}

		want := []string{"email already exists"}
		if !slices.Equal(messages, want) {
			t.Errorf("Validate() = %v, want %v", messages, want)
		}

		wantArgs := []any{"users", "email", "user@example.com", int64(7)}
		if !slices.Equal(store.gotArgs, wantArgs) {
			t.Errorf("Exists args = %v, want %v", store.gotArgs, wantArgs)
		}
	})

	t.Run("store failure is an error", func(t *testing.T) {
		t.Parallel()

		storeErr := errors.New("db gone")
		engine := validation.NewEngine(&mockStore{err: storeErr})

		fields := []validation.Field{
			{Name: "name", Value: "sales", Constraints: []validation.Constraint{
				validation.Unique("roles", "name"),
			}},
		}

		if _, err := engine.Validate(context.Background(), fields, 0); !errors.Is(err, storeErr) {
			t.Errorf("Validate() error = %v, want %v", err, storeErr)
		}
	})
}
