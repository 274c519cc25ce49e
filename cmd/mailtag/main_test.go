package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

func runWithFlags(t *testing.T, flags []cli.Flag, action cli.ActionFunc, args ...string) error {
	t.Helper()
	app := &cli.App{
		Name: "mailtag",
		Commands: []*cli.Command{
			{Name: "test", Flags: flags, Action: action},
		},
	}
	return app.Run(append([]string{"mailtag", "test"}, args...))
}

func TestResolvePrompt(t *testing.T) {
	flags := []cli.Flag{
		&cli.StringFlag{Name: "prompt"},
		&cli.StringFlag{Name: "prompt-file"},
	}

	t.Run("inline prompt", func(t *testing.T) {
		err := runWithFlags(t, flags, func(c *cli.Context) error {
			prompt, err := resolvePrompt(c)
			require.NoError(t, err)
			assert.Equal(t, "extract the tags", prompt)
			return nil
		}, "--prompt", "extract the tags")
		require.NoError(t, err)
	})

	t.Run("prompt file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "prompt.txt")
		require.NoError(t, os.WriteFile(path, []byte("file prompt\n"), 0o644))

		err := runWithFlags(t, flags, func(c *cli.Context) error {
			prompt, err := resolvePrompt(c)
			require.NoError(t, err)
			assert.Equal(t, "file prompt\n", prompt)
			return nil
		}, "--prompt-file", path)
		require.NoError(t, err)
	})

	t.Run("missing both fails", func(t *testing.T) {
		err := runWithFlags(t, flags, func(c *cli.Context) error {
			_, err := resolvePrompt(c)
			return err
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "required")
	})

	t.Run("both set fails", func(t *testing.T) {
		err := runWithFlags(t, flags, func(c *cli.Context) error {
			_, err := resolvePrompt(c)
			return err
		}, "--prompt", "inline", "--prompt-file", "/tmp/x")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "mutually exclusive")
	})

	t.Run("empty prompt file fails", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "empty.txt")
		require.NoError(t, os.WriteFile(path, []byte("  \n"), 0o644))

		err := runWithFlags(t, flags, func(c *cli.Context) error {
			_, err := resolvePrompt(c)
			return err
		}, "--prompt-file", path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "empty")
	})

	t.Run("unreadable prompt file fails", func(t *testing.T) {
		err := runWithFlags(t, flags, func(c *cli.Context) error {
			_, err := resolvePrompt(c)
			return err
		}, "--prompt-file", filepath.Join(t.TempDir(), "absent.txt"))
		require.Error(t, err)
	})
}

func TestSetupLogger(t *testing.T) {
	newApp := func() *cli.App {
		return &cli.App{
			Name: "test",
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "log-level", Value: "info"},
			},
			Before: setupLogger,
			Action: func(c *cli.Context) error { return nil },
		}
	}

	t.Run("valid log levels", func(t *testing.T) {
		for _, level := range []string{"debug", "info", "warn", "error"} {
			err := newApp().Run([]string{"test", "--log-level", level})
			require.NoError(t, err, "level %s", level)
		}
	})

	t.Run("case insensitive", func(t *testing.T) {
		for _, level := range []string{"DEBUG", "Info", "WaRn"} {
			err := newApp().Run([]string{"test", "--log-level", level})
			require.NoError(t, err, "level %s", level)
		}
	})

	t.Run("invalid log level returns error", func(t *testing.T) {
		err := newApp().Run([]string{"test", "--log-level", "verbose"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid log level")
	})
}

func TestTagCommand_RequiresIndexName(t *testing.T) {
	app := &cli.App{
		Name: "mailtag",
		Commands: []*cli.Command{
			{
				Name:   "tag",
				Action: tagCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "index-name", Required: true},
				},
			},
		},
	}

	err := app.Run([]string{"mailtag", "tag"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "index-name")
}
