package command

import (
	"encoding/json"
	"errors"
	"sort"
	"testing"
)

func TestInvoke_UnknownCommand(t *testing.T) {
	d := NewDispatcher()

	err := d.Invoke("open_dashboard", nil)
	if !errors.Is(err, ErrUnknownCommand) {
		t.Errorf("Expected ErrUnknownCommand, got %v", err)
	}
}

func TestInvoke_RoutesToHandler(t *testing.T) {
	d := NewDispatcher()

	var got json.RawMessage
	d.Register("echo", func(args json.RawMessage) error {
		got = args
		return nil
	})

	if err := d.Invoke("echo", json.RawMessage(`{"a":1}`)); err != nil {
		t.Fatalf("Invoke failed: %v", err)
	}
	if string(got) != `{"a":1}` {
		t.Errorf("Expected args to be forwarded, got %s", got)
	}
}

func TestInvoke_ReturnsHandlerError(t *testing.T) {
	d := NewDispatcher()
	boom := errors.New("boom")
	d.Register("fail", func(json.RawMessage) error { return boom })

	if err := d.Invoke("fail", nil); !errors.Is(err, boom) {
		t.Errorf("Expected handler error, got %v", err)
	}
}

func TestNames(t *testing.T) {
	d := NewDispatcher()
	d.Register(SetTrayStatus, TrayStatusHandler(func(string) {}))
	d.Register("other", func(json.RawMessage) error { return nil })

	names := d.Names()
	sort.Strings(names)
	if len(names) != 2 || names[0] != "other" || names[1] != SetTrayStatus {
		t.Errorf("Unexpected names: %v", names)
	}
}

func TestTrayStatusHandler(t *testing.T) {
	tests := []struct {
		name    string
		args    string
		want    string
		applied bool
	}{
		{"status", `{"status":"ready"}`, "ready", true},
		{"unrecognized passes through", `{"status":"Ready"}`, "Ready", true},
		{"deployment state", `{"deployment_state":"ERROR"}`, "error", true},
		{"deployment queued", `{"deployment_state":"QUEUED"}`, "building", true},
		{"status wins", `{"status":"ready","deployment_state":"ERROR"}`, "ready", true},
		{"missing status", `{}`, "", true},
		{"no args", ``, "", true},
		{"malformed", `{"status":`, "", false},
		{"wrong type", `{"status":5}`, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []string
			h := TrayStatusHandler(func(s string) { got = append(got, s) })

			if err := h(json.RawMessage(tt.args)); err != nil {
				t.Fatalf("Expected success, got %v", err)
			}
			if !tt.applied {
				if len(got) != 0 {
					t.Errorf("Expected no status to be applied, got %v", got)
				}
				return
			}
			if len(got) != 1 || got[0] != tt.want {
				t.Errorf("Expected [%q], got %v", tt.want, got)
			}
		})
	}
}
