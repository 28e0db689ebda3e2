package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_RejectsBadInvocations(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{name: "no command", args: []string{"admin"}, wantErr: "missing command"},
		{name: "unknown command", args: []string{"admin", "explode"}, wantErr: "unknown command: explode"},
		{name: "reset without confirmation", args: []string{"admin", "reset"}, wantErr: "--yes is required"},
		{name: "reset bad flag", args: []string{"admin", "reset", "--force"}, wantErr: "flag provided but not defined"},
		{name: "create-user missing fields", args: []string{"admin", "create-user", "--username", "root"}, wantErr: "are required"},
		{name: "migrate without direction", args: []string{"admin", "migrate"}, wantErr: "missing migrate subcommand"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("ADMIN_USER_PASSWORD", "")
			err := run(context.Background(), tt.args)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
