package cmd

import (
	"testing"
)

func TestTokenCmd(t *testing.T) {
	t.Setenv("AUTH_JWT_SECRET", "")
	c := TokenCmd()
	c.SetArgs([]string{"alice"})
	if err := c.Execute(); err == nil {
		t.Error("expected an error without AUTH_JWT_SECRET")
	}

	t.Setenv("AUTH_JWT_SECRET", "test-secret")
	c = TokenCmd()
	c.SetArgs([]string{"alice", "--expiry", "1h"})
	if err := c.Execute(); err != nil {
		t.Errorf("token failed: %v", err)
	}

	c = TokenCmd()
	c.SetArgs([]string{})
	if err := c.Execute(); err == nil {
		t.Error("expected an error without a user id")
	}
}

func TestVapidGenerate(t *testing.T) {
	c := VapidCmd()
	c.SetArgs([]string{"generate"})
	if err := c.Execute(); err != nil {
		t.Errorf("vapid generate failed: %v", err)
	}
}

func TestJobCmdRejectsBadTime(t *testing.T) {
	c := JobCmd()
	c.SetArgs([]string{"scan-reminders", "--at", "tomorrow"})
	t.Setenv("APP_ENV", "")
	// Config fails before the time is parsed; either way the command errors.
	if err := c.Execute(); err == nil {
		t.Error("expected an error")
	}
}
