package main

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"syscall"

	"onyxminer/internal/config"
	"onyxminer/internal/ipc"
)

type commandContext struct {
	dataDirFlag *string
	socketFlag  *string

	storeOnce sync.Once
	store     *config.Store
	storeErr  error
}

func newCommandContext(dataDirFlag, socketFlag *string) *commandContext {
	return &commandContext{
		dataDirFlag: dataDirFlag,
		socketFlag:  socketFlag,
	}
}

func (c *commandContext) ensureStore() (*config.Store, error) {
	c.storeOnce.Do(func() {
		var dir string
		if c.dataDirFlag != nil {
			dir = strings.TrimSpace(*c.dataDirFlag)
		}
		c.store, c.storeErr = config.Open(dir)
	})
	return c.store, c.storeErr
}

func (c *commandContext) dataDir() string {
	if c.dataDirFlag == nil {
		return ""
	}
	return strings.TrimSpace(*c.dataDirFlag)
}

func (c *commandContext) socketPath() (string, error) {
	if c.socketFlag != nil && strings.TrimSpace(*c.socketFlag) != "" {
		return strings.TrimSpace(*c.socketFlag), nil
	}
	store, err := c.ensureStore()
	if err != nil {
		return "", err
	}
	return store.SocketPath(), nil
}

func (c *commandContext) pidPath() (string, error) {
	store, err := c.ensureStore()
	if err != nil {
		return "", err
	}
	return store.PIDPath(), nil
}

func (c *commandContext) withClient(fn func(*ipc.Client) error) error {
	client, err := c.dialClient()
	if err != nil {
		return err
	}
	defer client.Close()
	return fn(client)
}

func (c *commandContext) dialClient() (*ipc.Client, error) {
	socket, err := c.socketPath()
	if err != nil {
		return nil, err
	}
	client, err := ipc.Dial(socket)
	if err != nil {
		return nil, wrapDialError(err, socket)
	}
	return client, nil
}

func wrapDialError(err error, socket string) error {
	switch {
	case errors.Is(err, syscall.ENOENT) || os.IsNotExist(err):
		return fmt.Errorf("connect to daemon: socket %s not found; start the daemon with `onyx start`", socket)
	case errors.Is(err, syscall.ECONNREFUSED):
		return fmt.Errorf("connect to daemon: socket %s refused the connection; verify the daemon is running", socket)
	default:
		return fmt.Errorf("connect to daemon: %w", err)
	}
}

func daemonExecutable() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("resolve executable: %w", err)
	}
	return exe, nil
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
