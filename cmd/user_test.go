package cmd

import (
	"bytes"
	"context"
	"testing"

	"github.com/vibast-solutions/ms-go-sessionauth/app/password"
	"github.com/vibast-solutions/ms-go-sessionauth/app/service"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestCreateUser(t *testing.T) {
	svc := service.NewUserAuthService(&memoryUsers{}, password.NewBcryptHasher(bcrypt.MinCost))
	var out bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&out)

	require.NoError(t, createUser(context.Background(), cmd, svc, "bob@me.com", "pwd"))
	assert.Equal(t, "user_id: 1\nemail: bob@me.com\n", out.String())

	err := createUser(context.Background(), cmd, svc, "bob@me.com", "pwd")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already registered")

	assert.Error(t, createUser(context.Background(), cmd, svc, "", "pwd"))
}

func TestRootCommandRegistersSubcommands(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"serve", "migrate", "user"} {
		assert.True(t, names[want], "missing subcommand %s", want)
	}
}
