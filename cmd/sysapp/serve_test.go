package main

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Fooracles/SystemApp-sub000/internal/config"
)

func TestServeRefusesRemoteBind(t *testing.T) {
	tmp := t.TempDir()
	t.Chdir(tmp)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(tmp, "xdg-config"))
	t.Setenv("SYSAPP_AUTH_TOKEN", "")
	if err := config.Initialize(); err != nil {
		t.Fatalf("config.Initialize: %v", err)
	}

	if err := serveCmd.Flags().Set("listen", "0.0.0.0:0"); err != nil {
		t.Fatalf("set listen: %v", err)
	}
	t.Cleanup(func() {
		_ = serveCmd.Flags().Set("listen", "")
		serveCmd.Flags().Lookup("listen").Changed = false
		serveAllowRemote = false
	})

	tests := []struct {
		name        string
		allowRemote bool
		want        string
	}{
		{name: "without allow-remote", allowRemote: false, want: "refusing remote bind"},
		{name: "without token", allowRemote: true, want: "requires auth-token"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			serveAllowRemote = tt.allowRemote
			err := runServe(context.Background(), serveCmd)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("runServe() error = %v, want %q", err, tt.want)
			}
		})
	}
}
