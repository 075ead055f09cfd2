package command

import (
	"context"
	"errors"
	"testing"

	"coursehub/pkg/notification"
)

type renameCourse struct {
	ID   string
	Name string
}

func (renameCourse) CommandName() string { return "RenameCourse" }

func (c renameCourse) Validate() []Error {
	var v Validation
	v.Require("ID", c.ID, "id is required")
	v.Require("Name", c.Name, "name is required")
	v.Check(len(c.Name) <= 10, "Name", "name is too long")
	return v.Errors()
}

type otherCommand struct{}

func (otherCommand) CommandName() string { return "Other" }
func (otherCommand) Validate() []Error   { return nil }

type fakeUoW struct {
	ok      bool
	err     error
	commits int
}

func (u *fakeUoW) Commit(context.Context) (bool, error) {
	u.commits++
	return u.ok, u.err
}

func TestValidation(t *testing.T) {
	tests := []struct {
		name   string
		cmd    renameCourse
		fields []string
	}{
		{"valid", renameCourse{ID: "c-1", Name: "Go"}, nil},
		{"blank id", renameCourse{ID: "  ", Name: "Go"}, []string{"ID"}},
		{"everything wrong", renameCourse{Name: ""}, []string{"ID", "Name"}},
		{"too long", renameCourse{ID: "c-1", Name: "Distributed Systems"}, []string{"Name"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := tt.cmd.Validate()
			if len(errs) != len(tt.fields) {
				t.Fatalf("expected %d errors, got %+v", len(tt.fields), errs)
			}
			for i, f := range tt.fields {
				if errs[i].Field != f {
					t.Errorf("error %d: expected field %s, got %s", i, f, errs[i].Field)
				}
			}
			if IsValid(tt.cmd) != (len(tt.fields) == 0) {
				t.Errorf("IsValid disagrees with Validate")
			}
		})
	}
}

func TestRejectPublishesOnePerError(t *testing.T) {
	c := notification.NewCollector(nil)
	res := Reject(context.Background(), c, renameCourse{}.Validate())

	if res.OK() || res.Kind != Rejected {
		t.Fatalf("expected Rejected, got %v", res.Kind)
	}
	if n := len(c.Notifications()); n != 2 {
		t.Errorf("expected 2 notifications, got %d", n)
	}
}

func TestCommit(t *testing.T) {
	tests := []struct {
		name    string
		uow     *fakeUoW
		want    Kind
		wantErr bool
	}{
		{"committed", &fakeUoW{ok: true}, Succeeded, false},
		{"not committed", &fakeUoW{ok: false}, NotCommitted, false},
		{"cancelled", &fakeUoW{err: context.Canceled}, Succeeded, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Commit(context.Background(), tt.uow)
			if (err != nil) != tt.wantErr {
				t.Fatalf("unexpected error: %v", err)
			}
			if !tt.wantErr && res.Kind != tt.want {
				t.Errorf("expected %v, got %v", tt.want, res.Kind)
			}
			if tt.uow.commits != 1 {
				t.Errorf("expected exactly one commit, got %d", tt.uow.commits)
			}
		})
	}
}

func TestDispatcher(t *testing.T) {
	d := NewDispatcher(nil)
	var handled renameCourse
	d.Register("RenameCourse", Typed(func(ctx context.Context, cmd renameCourse) (Result, error) {
		handled = cmd
		return Result{Kind: Succeeded}, nil
	}))

	res, err := d.Send(context.Background(), renameCourse{ID: "c-1", Name: "Go"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.OK() {
		t.Errorf("expected OK, got %v", res.Kind)
	}
	if handled.ID != "c-1" {
		t.Errorf("handler did not receive the command: %+v", handled)
	}

	if _, err := d.Send(context.Background(), otherCommand{}); !errors.Is(err, ErrNoHandler) {
		t.Errorf("expected ErrNoHandler, got %v", err)
	}
}

func TestTypedRejectsWrongCommand(t *testing.T) {
	h := Typed(func(ctx context.Context, cmd renameCourse) (Result, error) {
		return Result{Kind: Succeeded}, nil
	})
	if _, err := h.Handle(context.Background(), otherCommand{}); err == nil {
		t.Fatal("expected an error for a mismatched command type")
	}
}

func TestScopeReleaseRunsOnce(t *testing.T) {
	calls := 0
	s := NewScope(NewDispatcher(nil), notification.NewCollector(nil), func() { calls++ })
	s.Release()
	s.Release()
	if calls != 1 {
		t.Errorf("expected release to run once, got %d", calls)
	}
}
