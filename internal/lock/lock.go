// Package lock provides a single-writer lockfile kept next to the store. The
// file records the owner's PID and executable name; a lock whose owner is no
// longer in the process table is treated as stale and reclaimed.
package lock

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	ps "github.com/mitchellh/go-ps"

	"github.com/julianstephens/habitpulse/internal/constants"
	"github.com/julianstephens/habitpulse/internal/logger"
)

var ErrLocked = errors.New("store is locked by another process")

var (
	findProcessFunc = ps.FindProcess
	getpid          = os.Getpid
	nowFunc         = time.Now
)

// Owner describes the process recorded in a lockfile.
type Owner struct {
	PID        int
	Executable string
	AcquiredAt time.Time
}

// Lock is a held lockfile. Release it when done.
type Lock struct {
	path  string
	owner Owner
}

// Path returns the lockfile path for a store located in dir.
func Path(dir string) string {
	return filepath.Join(dir, constants.LockfileName)
}

// Acquire takes the lockfile in dir. It returns ErrLocked when a live process
// holds it. Stale lockfiles are removed and the acquisition retried.
func Acquire(dir string) (*Lock, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create lock directory: %w", err)
	}

	path := Path(dir)
	self := Owner{
		PID:        getpid(),
		Executable: selfExecutable(),
		AcquiredAt: nowFunc().UTC(),
	}

	var lastErr error
	for attempt := 0; attempt < constants.LockRetries; attempt++ {
		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0600)
		if err == nil {
			_, werr := f.WriteString(encode(self))
			cerr := f.Close()
			if werr != nil || cerr != nil {
				os.Remove(path)
				return nil, fmt.Errorf("failed to write lockfile: %w", errors.Join(werr, cerr))
			}
			logger.Debug("Acquired lock", "path", path, "pid", self.PID)
			return &Lock{path: path, owner: self}, nil
		}
		if !os.IsExist(err) {
			return nil, fmt.Errorf("failed to create lockfile: %w", err)
		}

		owner, err := ReadOwner(path)
		if err == nil && isAlive(owner) {
			return nil, fmt.Errorf("%w (pid %d, %s)", ErrLocked, owner.PID, owner.Executable)
		}
		if err != nil && os.IsNotExist(err) {
			// Released between our create and read
			continue
		}

		logger.Warn("Removing stale lockfile", "path", path, "error", err)
		if rmErr := os.Remove(path); rmErr != nil && !os.IsNotExist(rmErr) {
			return nil, fmt.Errorf("failed to remove stale lockfile: %w", rmErr)
		}
		lastErr = err
		time.Sleep(constants.LockRetryDelay)
	}

	if lastErr == nil {
		lastErr = errors.New("lockfile kept reappearing")
	}
	return nil, fmt.Errorf("failed to acquire lock after %d attempts: %w", constants.LockRetries, lastErr)
}

// Release removes the lockfile if this lock still owns it.
func (l *Lock) Release() error {
	if l == nil {
		return nil
	}
	owner, err := ReadOwner(l.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	if owner.PID != l.owner.PID {
		return fmt.Errorf("lockfile now owned by pid %d", owner.PID)
	}
	if err := os.Remove(l.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove lockfile: %w", err)
	}
	return nil
}

// ReadOwner parses the lockfile at path.
func ReadOwner(path string) (Owner, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return Owner{}, err
	}
	return decode(string(content))
}

// Status reports the current holder of the lock in dir, if any. held is false
// when there is no lockfile or its owner is gone.
func Status(dir string) (owner Owner, held bool, err error) {
	owner, err = ReadOwner(Path(dir))
	if os.IsNotExist(err) {
		return Owner{}, false, nil
	}
	if err != nil {
		return Owner{}, false, err
	}
	return owner, isAlive(owner), nil
}

func encode(o Owner) string {
	return fmt.Sprintf("%d|%s|%s", o.PID, o.Executable, o.AcquiredAt.Format(time.RFC3339))
}

func decode(content string) (Owner, error) {
	parts := strings.Split(strings.TrimSpace(content), "|")
	if len(parts) != 3 {
		return Owner{}, errors.New("lockfile is malformed")
	}

	pid, err := strconv.Atoi(parts[0])
	if err != nil || pid <= 0 {
		return Owner{}, errors.New("invalid process ID in lockfile")
	}
	if strings.TrimSpace(parts[1]) == "" {
		return Owner{}, errors.New("executable in lockfile is empty")
	}
	acquired, err := time.Parse(time.RFC3339, parts[2])
	if err != nil {
		return Owner{}, errors.New("invalid timestamp in lockfile")
	}

	return Owner{PID: pid, Executable: parts[1], AcquiredAt: acquired}, nil
}

// isAlive reports whether the recorded PID is running the recorded
// executable. A recycled PID running something else counts as dead.
func isAlive(o Owner) bool {
	process, err := findProcessFunc(o.PID)
	if err != nil || process == nil {
		return false
	}
	return process.Executable() == o.Executable
}

func selfExecutable() string {
	if process, err := findProcessFunc(getpid()); err == nil && process != nil {
		return process.Executable()
	}
	if exe, err := os.Executable(); err == nil {
		return filepath.Base(exe)
	}
	return constants.AppName
}
