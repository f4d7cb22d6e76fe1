package app

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

func TestCommands_TickConstructors(t *testing.T) {
	cmds := NewCommands(nil)
	if cmds.Tick(time.Millisecond) == nil {
		t.Error("Tick returned nil")
	}
	if cmds.DefaultTick() == nil {
		t.Error("DefaultTick returned nil")
	}
}

func TestCommands_NotifyDurations(t *testing.T) {
	cmds := NewCommands(nil)

	cases := map[string]struct {
		fn           func(string) tea.Cmd
		wantType     NotificationType
		wantDuration time.Duration
	}{
		"success": {cmds.NotifySuccess, NotificationSuccess, DefaultNotificationDuration},
		"error":   {cmds.NotifyError, NotificationError, LongNotificationDuration},
		"warning": {cmds.NotifyWarning, NotificationWarning, DefaultNotificationDuration},
		"info":    {cmds.NotifyInfo, NotificationInfo, QuickNotificationDuration},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			msg, ok := tc.fn("msg")().(AddNotificationMsg)
			if !ok {
				t.Fatal("notify command did not produce AddNotificationMsg")
			}
			if msg.Type != tc.wantType {
				t.Errorf("Type = %v, want %v", msg.Type, tc.wantType)
			}
			if msg.Message != "msg" {
				t.Errorf("Message = %q, want msg", msg.Message)
			}
			if msg.Duration != tc.wantDuration {
				t.Errorf("Duration = %v, want %v", msg.Duration, tc.wantDuration)
			}
		})
	}
}

func TestCommands_ClearNotification(t *testing.T) {
	if NewCommands(nil).ClearNotification("id", time.Millisecond) == nil {
		t.Error("ClearNotification returned nil")
	}
}

func TestCommands_Quit(t *testing.T) {
	msg := NewCommands(nil).Quit()()
	if _, ok := msg.(tea.QuitMsg); !ok {
		t.Errorf("Quit produced %T, want tea.QuitMsg", msg)
	}
}

func TestCommands_BatchAndDelayed(t *testing.T) {
	cmds := NewCommands(nil)
	if cmds.Batch(cmds.Quit(), cmds.NotifyInfo("test")) == nil {
		t.Error("Batch returned nil")
	}
	if cmds.Delayed(time.Millisecond, RefreshMsg{Resource: "all"}) == nil {
		t.Error("Delayed returned nil")
	}
}
