package client

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mitchellh/go-ps"
)

// ExecutableName is the binary name searched for among local processes.
const ExecutableName = "alarm-clock"

// processLister enumerates processes; replaced in tests.
type processLister func() ([]ps.Process, error)

// localServers returns the PIDs of other alarm-clock processes on this machine.
func localServers(list processLister) ([]int, error) {
	processes, err := list()
	if err != nil {
		return nil, fmt.Errorf("list processes: %w", err)
	}

	self := os.Getpid()

	var pids []int

	for _, process := range processes {
		if process.Pid() == self {
			continue
		}

		name := strings.TrimSuffix(filepath.Base(process.Executable()), ".exe")
		if strings.EqualFold(name, ExecutableName) {
			pids = append(pids, process.Pid())
		}
	}

	return pids, nil
}
