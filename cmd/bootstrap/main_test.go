package main

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"todo-app/internal/logging"
	"todo-app/internal/testutils"
	"todo-app/internal/user"
)

func setupBootstrap(t *testing.T) (*user.UserService, func(input string) (string, error)) {
	factory, dbManager := testutils.SetupTestRepositoryFactory(t)
	service := user.NewUserService(factory.NewUserRepository(), dbManager, logging.Discard())

	runWith := func(input string) (string, error) {
		var out bytes.Buffer
		err := run(context.Background(), newLinePrompter(strings.NewReader(input), &out), service, &out)
		return out.String(), err
	}
	return service, runWith
}

func TestBootstrapCreatesUser(t *testing.T) {
	service, runWith := setupBootstrap(t)

	out, err := runWith("\n  admin  \nsecret\nsecret\n")
	require.NoError(t, err)
	assert.Contains(t, out, "Username (required): ")
	assert.Contains(t, out, "User 'admin' created.")

	_, err = service.Authenticate(context.Background(), "admin", "secret")
	assert.NoError(t, err)
}

func TestBootstrapRetriesPasswords(t *testing.T) {
	service, runWith := setupBootstrap(t)

	out, err := runWith("admin\n\n\none\ntwo\nsecret\nsecret\n")
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(out, "Passwords do not match or empty. Try again."))

	_, err = service.Authenticate(context.Background(), "admin", "secret")
	assert.NoError(t, err)
}

func TestBootstrapLongPassword(t *testing.T) {
	service, runWith := setupBootstrap(t)
	long := strings.Repeat("k", 90)

	out, err := runWith("admin\n" + long + "\n" + long + "\n")
	require.NoError(t, err)
	assert.Contains(t, out, "User 'admin' created.")

	_, err = service.Authenticate(context.Background(), "admin", long)
	assert.NoError(t, err)
}

func TestBootstrapExistingUser(t *testing.T) {
	service, runWith := setupBootstrap(t)
	_, err := service.Create(context.Background(), "admin", "original")
	require.NoError(t, err)

	out, err := runWith("admin\n")
	require.NoError(t, err)
	assert.Contains(t, out, "User 'admin' already exists, nothing to do.")
	assert.NotContains(t, out, "Password:")
}

func TestBootstrapEOF(t *testing.T) {
	_, runWith := setupBootstrap(t)

	_, err := runWith("admin\nsecret\n")
	assert.ErrorIs(t, err, io.EOF)
}
